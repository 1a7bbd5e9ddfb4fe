// Package dashboard renders the upload session in the terminal. It wraps a
// session.Controller: the model owns presentation only, all state transitions
// happen in the controller so the web dashboard and the TUI stay in sync on
// behavior.
package dashboard

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/de-tools/ledger-atlas/pkg/services/session"
)

type Model struct {
	controller *session.Controller
	styles     Styles
	noticeTTL  time.Duration

	input      textinput.Model
	spin       spinner.Model
	session    session.Session
	submitting bool
	width      int
	quitting   bool
}

func NewModel(controller *session.Controller, styles Styles) *Model {
	ti := textinput.New()
	ti.Placeholder = "path/to/ledger.csv"
	ti.Prompt = "> "
	ti.PromptStyle = styles.Prompt
	ti.CharLimit = 512
	ti.Width = 48
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	return &Model{
		controller: controller,
		styles:     styles,
		noticeTTL:  session.DefaultNoticeTTL,
		input:      ti,
		spin:       sp,
		session:    controller.Session(),
	}
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			path := strings.TrimSpace(m.input.Value())
			if path == "" {
				return m, nil
			}
			m.submitting = true
			return m, tea.Batch(m.spin.Tick, submitCmd(m.controller, path))

		case "tab":
			if m.session.ActiveView == session.ViewOverview {
				m.controller.SetActiveView(session.ViewRecommendations)
			} else {
				m.controller.SetActiveView(session.ViewOverview)
			}
			m.session = m.controller.Session()
			return m, nil

		// Plain "r" would land in the focused path input, so reset
		// rides on a control chord.
		case "ctrl+r":
			m.controller.Reset()
			m.input.SetValue("")
			m.session = m.controller.Session()
			return m, nil
		}

	case spinner.TickMsg:
		m.session = m.controller.Session()
		if m.submitting {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case uploadSettledMsg:
		m.submitting = false
		m.session = m.controller.Session()
		if m.session.Notice != "" {
			return m, noticeCmd(m.noticeTTL)
		}
		return m, nil

	case noticeTickMsg:
		m.session = m.controller.Session()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// Run starts the dashboard and blocks until the user quits.
func Run(controller *session.Controller) error {
	program := tea.NewProgram(NewModel(controller, DefaultStyles()), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
