package session

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/de-tools/ledger-atlas/pkg/models/api"
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

type View string

const (
	ViewOverview        View = "overview"
	ViewRecommendations View = "recommendations"
)

const (
	// NotCSVMessage rejects files before any network call is made.
	NotCSVMessage = "Please upload a CSV file"
	// UploadedNotice is the transient notice shown after a successful upload.
	UploadedNotice = "CSV uploaded and analyzed successfully"
	// DefaultNoticeTTL is how long the success notice stays visible.
	DefaultNoticeTTL = 3 * time.Second
)

// Session is a snapshot of one upload interaction. Error is set only while
// Status is failed, Result only while it is succeeded.
type Session struct {
	SelectedFile string
	Status       Status
	Error        string
	Result       *api.AnalysisResult
	Notice       string
	ActiveView   View
}

// Uploader submits one CSV to the analysis endpoint.
type Uploader interface {
	Upload(ctx context.Context, fileName string, content io.Reader) (*api.AnalysisResult, error)
}

// Controller owns the upload session state machine. A generation counter
// keeps overlapping uploads last-write-wins: a response lands only if no
// newer submit or reset has taken over since its upload began.
type Controller struct {
	uploader  Uploader
	noticeTTL time.Duration

	mu         sync.Mutex
	generation uint64
	session    Session
}

type Options struct {
	Uploader Uploader
	// NoticeTTL overrides the success notice lifetime. Zero means the
	// default of three seconds.
	NoticeTTL time.Duration
}

func NewController(opts Options) *Controller {
	ttl := opts.NoticeTTL
	if ttl <= 0 {
		ttl = DefaultNoticeTTL
	}
	return &Controller{
		uploader:  opts.Uploader,
		noticeTTL: ttl,
		session:   Session{Status: StatusIdle, ActiveView: ViewOverview},
	}
}

// Session returns a snapshot of the current state.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// SubmitFile validates the file name, then uploads the content and applies
// the outcome. Names not ending in ".csv" fail immediately with no network
// call. The call blocks until the session reaches a terminal state; callers
// that need it off the main loop run it from their own goroutine.
func (c *Controller) SubmitFile(ctx context.Context, fileName string, content io.Reader) {
	if !strings.HasSuffix(fileName, ".csv") || content == nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.session.SelectedFile = fileName
		c.session.Status = StatusFailed
		c.session.Error = NotCSVMessage
		c.session.Result = nil
		c.session.Notice = ""
		return
	}

	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.session.SelectedFile = fileName
	c.session.Status = StatusLoading
	c.session.Error = ""
	c.session.Result = nil
	c.session.Notice = ""
	c.mu.Unlock()

	result, err := c.uploader.Upload(ctx, fileName, content)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		// A newer submit or reset took over while this upload ran.
		return
	}
	if err != nil {
		c.session.Status = StatusFailed
		c.session.Error = errorMessage(err)
		c.session.Result = nil
		return
	}
	c.session.Status = StatusSucceeded
	c.session.Result = result
	c.session.Error = ""
	c.session.Notice = UploadedNotice
	c.scheduleNoticeClear(gen)
}

// Reset clears the session back to idle. The active view is left alone.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	view := c.session.ActiveView
	c.session = Session{Status: StatusIdle, ActiveView: view}
}

// SetActiveView switches the visible tab. No other state is touched.
func (c *Controller) SetActiveView(view View) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.ActiveView = view
}

func (c *Controller) scheduleNoticeClear(gen uint64) {
	time.AfterFunc(c.noticeTTL, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.generation == gen {
			c.session.Notice = ""
		}
	})
}

func errorMessage(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "Upload failed"
}
