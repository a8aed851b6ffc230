package browser

import (
	"sync"

	"github.com/gobuffalo/packr/v2"
	"github.com/pkg/errors"
)

// scripts bundled from ./js
var scripts = packr.New("pagek-browser-js", "./js")

var (
	scriptOnce sync.Once
	scriptErr  error

	// visibleFn is called on an element, true if a user could see it
	visibleFn string
	// readyExpr evaluates to true once the document finished loading
	readyExpr string
)

func loadScripts() error {
	scriptOnce.Do(func() {
		if visibleFn, scriptErr = scripts.FindString("visible.js"); scriptErr != nil {
			scriptErr = errors.Wrap(scriptErr, "failed to load visible.js")
			return
		}
		if readyExpr, scriptErr = scripts.FindString("ready.js"); scriptErr != nil {
			scriptErr = errors.Wrap(scriptErr, "failed to load ready.js")
		}
	})
	return scriptErr
}
