package check

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gitlab.com/pagek/page"
	"gitlab.com/pagek/pagek"
)

// Screenshotter sessions can capture the page when a check fails
type Screenshotter interface {
	Screenshot(ctx context.Context) (string, error)
}

// Result of checking a single page
type Result struct {
	RunID      string        `msgpack:"run_id"`
	Page       string        `msgpack:"page"`
	URL        string        `msgpack:"url"`
	Passed     bool          `msgpack:"passed"`
	Failures   []string      `msgpack:"failures"`
	Started    time.Time     `msgpack:"started"`
	Duration   time.Duration `msgpack:"duration"`
	Screenshot string        `msgpack:"screenshot,omitempty"` // base64 png, only for failures
}

// Runner checks pages against one session
type Runner struct {
	Setup *pagek.Setup
	RunID string

	// Screenshots of failed pages, when the session supports it
	Screenshots bool
}

// NewRunner for setup, results are tagged with runID
func NewRunner(setup *pagek.Setup, runID string) *Runner {
	return &Runner{Setup: setup, RunID: runID}
}

// Run opens spec's page and runs every declared check. Checks run on their own
// goroutine, a fatal failure stops that goroutine the way testing.T does.
func (r *Runner) Run(ctx context.Context, spec *PageSpec) *Result {
	result := &Result{RunID: r.RunID, Page: spec.Name, Started: time.Now()}
	logger := log.Ctx(ctx).With().Str("page", spec.Name).Logger()
	ctx = logger.WithContext(ctx)

	rec := &recorder{}
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.run(ctx, rec, spec)
	}()
	<-done

	result.Failures = rec.messages()
	result.Passed = !rec.failed() && len(result.Failures) == 0
	result.Duration = time.Since(result.Started)

	if url, err := r.Setup.Session.CurrentURL(ctx); err == nil {
		result.URL = url
	}
	if !result.Passed && r.Screenshots {
		r.screenshot(ctx, result)
	}

	logger.Debug().Bool("passed", result.Passed).Dur("took", result.Duration).Msg("page checked")
	return result
}

func (r *Runner) run(ctx context.Context, t *recorder, spec *PageSpec) {
	def, err := NewDefinition(spec)
	if err != nil {
		t.fatal(err)
		return
	}

	if err := page.New(r.Setup, t, nil).Open(ctx, def.Path()); err != nil {
		t.fatal(err)
		return
	}

	if rootLoc, ok := def.RootLocator(); ok {
		// the root is looked up once, it has to exist before the page can be built
		if err := page.New(r.Setup, t, nil).WaitForElementPresent(ctx, rootLoc); err != nil {
			t.fatal(err)
			return
		}
		if err := def.Resolve(ctx, r.Setup.Session); err != nil {
			t.fatal(err)
			return
		}
	}

	p := page.New(r.Setup, t, def)
	if def.ExpectedTitle() != "" && !p.IsCurrentPage(ctx) {
		return
	}
	if def.ExpectedURL() != "" && !p.IsCurrentURL(ctx) {
		return
	}

	for _, loc := range def.Present {
		if err := p.WaitForElementPresent(ctx, loc); err != nil {
			t.fatal(err)
			return
		}
	}
	for _, loc := range def.Visible {
		if err := p.WaitForElementVisible(ctx, loc); err != nil {
			t.fatal(err)
			return
		}
	}
	for _, loc := range def.Hidden {
		hidden, err := p.WaitForElementNotVisible(ctx, loc)
		if err != nil {
			t.fatal(err)
			return
		}
		if !hidden {
			t.Errorf("%s is still visible", loc)
		}
	}
	for _, loc := range def.Absent {
		gone, err := p.WaitForElementNotPresent(ctx, loc)
		if err != nil {
			t.fatal(err)
			return
		}
		if !gone {
			t.Errorf("%s is still present", loc)
		}
	}
}

func (r *Runner) screenshot(ctx context.Context, result *Result) {
	shooter, ok := r.Setup.Session.(Screenshotter)
	if !ok {
		return
	}
	img, err := shooter.Screenshot(ctx)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("failed to take screenshot")
		return
	}
	result.Screenshot = img
}

// recorder is the page.TestingT handed to page objects by Run
type recorder struct {
	mu       sync.Mutex
	errors   []string
	isFailed bool
}

func (t *recorder) Errorf(format string, args ...interface{}) {
	t.mu.Lock()
	t.errors = append(t.errors, fmt.Sprintf(format, args...))
	t.mu.Unlock()
}

// FailNow stops the check goroutine, deferred restores still run
func (t *recorder) FailNow() {
	t.mu.Lock()
	t.isFailed = true
	t.mu.Unlock()
	runtime.Goexit()
}

func (t *recorder) Helper() {}

// fatal records err unless the page already failed on it
func (t *recorder) fatal(err error) {
	if page.IsFatal(err) && t.failed() {
		return
	}
	t.Errorf("%s", err)
	t.FailNow()
}

func (t *recorder) failed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.isFailed
}

func (t *recorder) messages() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.errors...)
}
