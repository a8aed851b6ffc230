package page

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gitlab.com/pagek/pagek"
)

// FatalError is returned by waits that also failed the test through TestingT.
// The test case is over, callers should not carry on with it.
type FatalError struct {
	Op      string
	Locator pagek.Locator
	Err     error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Locator, e.Err)
}

// Unwrap the underlying cause, usually pagek.ErrTimedOut
func (e *FatalError) Unwrap() error {
	return e.Err
}

// IsFatal reports if err ended the test case
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}

// withoutImplicitWait runs fn with the session implicit wait disabled and always puts
// the session default back, also when fn fails the test or panics. A restore error is
// returned unless fn already failed.
func (p *Page) withoutImplicitWait(fn func() error) (err error) {
	if err := p.session.SetImplicitWait(0); err != nil {
		return errors.Wrap(err, "failed to disable implicit wait")
	}
	defer func() {
		// set back to where you once belonged
		if rerr := p.session.SetImplicitWait(p.setup.DefaultImplicitWait); rerr != nil && err == nil {
			err = errors.Wrap(rerr, "failed to restore implicit wait")
		}
	}()
	return fn()
}

// IsElementPresent does a single lookup with implicit wait disabled. Only a not found
// result is turned into false, other driver errors are returned.
func (p *Page) IsElementPresent(ctx context.Context, loc pagek.Locator) (bool, error) {
	present := false
	err := p.withoutImplicitWait(func() error {
		_, err := p.root.FindElement(ctx, loc)
		if err != nil {
			if pagek.IsNotFound(err) {
				return nil
			}
			return err
		}
		present = true
		return nil
	})
	return present, err
}

// IsElementVisible does a single lookup, true only if found and displayed
func (p *Page) IsElementVisible(ctx context.Context, loc pagek.Locator) (bool, error) {
	visible, err := p.displayed(ctx, loc)
	if err != nil {
		if pagek.IsIgnorable(err) {
			return false, nil
		}
		return false, err
	}
	return visible, nil
}

// WaitForElementVisible polls until the element is found and displayed. Timing out
// fails the test and returns a *FatalError.
func (p *Page) WaitForElementVisible(ctx context.Context, loc pagek.Locator) error {
	p.helper()
	return p.withoutImplicitWait(func() error {
		err := p.wait().Until(ctx, func(ctx context.Context) (bool, error) {
			return p.displayed(ctx, loc)
		})
		return p.fatalOnTimeout(ctx, "wait for visible", loc, err)
	})
}

// WaitForElementNotVisible polls until the element is gone or hidden. Timing out
// returns false, the caller decides what that means.
func (p *Page) WaitForElementNotVisible(ctx context.Context, loc pagek.Locator) (bool, error) {
	hidden := false
	err := p.withoutImplicitWait(func() error {
		err := p.wait().Until(ctx, func(ctx context.Context) (bool, error) {
			visible, err := p.displayed(ctx, loc)
			if err != nil {
				if pagek.IsIgnorable(err) {
					return true, nil
				}
				return false, err
			}
			return !visible, nil
		})
		if errors.Is(err, pagek.ErrTimedOut) {
			log.Ctx(ctx).Debug().Str("locator", loc.String()).Msg("element still visible")
			return nil
		}
		if err != nil {
			return err
		}
		hidden = true
		return nil
	})
	return hidden, err
}

// WaitForElementPresent polls until a lookup succeeds. Timing out fails the test
// and returns a *FatalError.
func (p *Page) WaitForElementPresent(ctx context.Context, loc pagek.Locator) error {
	p.helper()
	return p.withoutImplicitWait(func() error {
		err := p.wait().Until(ctx, func(ctx context.Context) (bool, error) {
			if _, err := p.root.FindElement(ctx, loc); err != nil {
				return false, err
			}
			return true, nil
		})
		return p.fatalOnTimeout(ctx, "wait for present", loc, err)
	})
}

// WaitForElementNotPresent polls until nothing matches loc. Timing out returns false.
func (p *Page) WaitForElementNotPresent(ctx context.Context, loc pagek.Locator) (bool, error) {
	gone := false
	err := p.withoutImplicitWait(func() error {
		err := p.wait().Until(ctx, func(ctx context.Context) (bool, error) {
			elements, err := p.root.FindElements(ctx, loc)
			if err != nil {
				return false, err
			}
			return len(elements) < 1, nil
		})
		if errors.Is(err, pagek.ErrTimedOut) {
			log.Ctx(ctx).Debug().Str("locator", loc.String()).Msg("element still present")
			return nil
		}
		if err != nil {
			return err
		}
		gone = true
		return nil
	})
	return gone, err
}

func (p *Page) displayed(ctx context.Context, loc pagek.Locator) (bool, error) {
	ele, err := p.root.FindElement(ctx, loc)
	if err != nil {
		return false, err
	}
	return ele.IsDisplayed(ctx)
}

func (p *Page) fatalOnTimeout(ctx context.Context, op string, loc pagek.Locator, err error) error {
	if err == nil {
		return nil
	}
	if !errors.Is(err, pagek.ErrTimedOut) {
		return err
	}
	fatal := &FatalError{Op: op, Locator: loc, Err: err}
	log.Ctx(ctx).Debug().Err(err).Str("locator", loc.String()).Msg(op + " timed out")
	p.fail(fatal.Error())
	return fatal
}
