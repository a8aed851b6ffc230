package mock

import (
	"fmt"
	"runtime"
	"sync"
)

// T records assertion failures instead of stopping the test, so callers can
// inspect what a page object reported.
type T struct {
	mu     sync.Mutex
	Errors []string
	Failed bool

	// Goexit makes FailNow behave like testing.T and stop the calling goroutine.
	Goexit bool
}

// Errorf implements page.TestingT
func (t *T) Errorf(format string, args ...interface{}) {
	t.mu.Lock()
	t.Errors = append(t.Errors, fmt.Sprintf(format, args...))
	t.mu.Unlock()
}

// FailNow implements page.TestingT
func (t *T) FailNow() {
	t.mu.Lock()
	t.Failed = true
	t.mu.Unlock()
	if t.Goexit {
		runtime.Goexit()
	}
}

// Helper is a no-op so T also satisfies helper aware interfaces
func (t *T) Helper() {}

// HasFailed reports if FailNow was called
func (t *T) HasFailed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.Failed
}

// Messages recorded by Errorf
func (t *T) Messages() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.Errors...)
}
