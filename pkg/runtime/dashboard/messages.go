package dashboard

import (
	"context"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/de-tools/ledger-atlas/pkg/services/session"
)

// uploadSettledMsg fires when a submit has reached a terminal state.
type uploadSettledMsg struct{}

// noticeTickMsg re-renders after the success notice expires.
type noticeTickMsg struct{}

// errReader surfaces an open failure through the upload path so it lands in
// the session error state like any other transport failure.
type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

// submitCmd runs one blocking submit through the controller. The controller
// enforces last-write-wins, so a command settling late is harmless.
func submitCmd(controller *session.Controller, path string) tea.Cmd {
	return func() tea.Msg {
		file, err := os.Open(path)
		if err != nil {
			controller.SubmitFile(context.Background(), path, errReader{err: err})
			return uploadSettledMsg{}
		}
		defer file.Close()
		controller.SubmitFile(context.Background(), path, file)
		return uploadSettledMsg{}
	}
}

// noticeCmd schedules a repaint slightly after the controller clears the
// uploaded notice on its own timer.
func noticeCmd(ttl time.Duration) tea.Cmd {
	return tea.Tick(ttl+50*time.Millisecond, func(time.Time) tea.Msg {
		return noticeTickMsg{}
	})
}
