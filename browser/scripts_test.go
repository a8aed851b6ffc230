package browser

import (
	"strings"
	"testing"
)

func TestLoadScripts(t *testing.T) {
	if err := loadScripts(); err != nil {
		t.Fatalf("failed to load bundled scripts: %s\n", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(visibleFn), "function") {
		t.Fatalf("visible.js must be a function declaration for callFunctionOn")
	}
	if !strings.Contains(readyExpr, "readyState") {
		t.Fatalf("ready.js did not load")
	}
}
