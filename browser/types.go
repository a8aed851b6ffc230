package browser

import (
	"github.com/pkg/errors"
	"github.com/wirepair/gcd/gcdapi"
)

// TabDisconnectedHandler is called when the tab crashes or the inspector was disconnected
type TabDisconnectedHandler func(tab *Tab, reason string)

// revive:exported
var (
	ErrNavigationTimedOut = errors.New("navigation timed out")
	ErrTabCrashed         = errors.New("tab crashed")
	ErrTabClosing         = errors.New("closing")
	ErrNavigating         = errors.New("error in navigation")
	ErrBrowserClosing     = errors.New("unable to take browser, as closing down")
	ErrUnexpectedResult   = errors.New("unexpected script result")
)

// ScriptEvaluationErr returned when an injected script caused an error
type ScriptEvaluationErr struct {
	Message          string
	ExceptionText    string
	ExceptionDetails *gcdapi.RuntimeExceptionDetails
}

func (e *ScriptEvaluationErr) Error() string {
	return e.Message + " " + e.ExceptionText
}

func newScriptEvaluationErr(msg string, details *gcdapi.RuntimeExceptionDetails) *ScriptEvaluationErr {
	return &ScriptEvaluationErr{
		Message:          msg,
		ExceptionText:    details.Text,
		ExceptionDetails: details,
	}
}
