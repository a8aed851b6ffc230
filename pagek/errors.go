package pagek

import (
	"github.com/pkg/errors"
)

// revive:exported
var (
	ErrNoSuchElement      = errors.New("no such element")
	ErrElementNotVisible  = errors.New("element not visible")
	ErrStaleElement       = errors.New("stale element reference")
	ErrTimedOut           = errors.New("timed out")
	ErrInvalidLocator     = errors.New("invalid locator")
	ErrUnsupportedLocator = errors.New("unsupported locator")
)

// ElementNotFoundErr carries the locator that failed to match
type ElementNotFoundErr struct {
	Locator Locator
}

func (e *ElementNotFoundErr) Error() string {
	return "Unable to find element " + e.Locator.String()
}

// Is lets errors.Is match ElementNotFoundErr against ErrNoSuchElement
func (e *ElementNotFoundErr) Is(target error) bool {
	return target == ErrNoSuchElement
}

// IsNotFound reports if err means the lookup matched nothing
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNoSuchElement)
}

// IsIgnorable reports if err only means "not yet" to a polling wait
func IsIgnorable(err error) bool {
	return errors.Is(err, ErrNoSuchElement) ||
		errors.Is(err, ErrElementNotVisible) ||
		errors.Is(err, ErrStaleElement)
}
