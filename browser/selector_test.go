package browser

import (
	"testing"

	"github.com/pkg/errors"
	"gitlab.com/pagek/pagek"
)

func TestCSSSelector(t *testing.T) {
	var inputs = []struct {
		in       pagek.Locator
		expected string
	}{
		{pagek.ByCSS("#main > li"), "#main > li"},
		{pagek.ByID("login"), `[id="login"]`},
		{pagek.ByID(`we"ird`), `[id="we\"ird"]`},
		{pagek.ByName("q"), `[name="q"]`},
		{pagek.ByClassName("btn"), `[class~="btn"]`},
		{pagek.ByTagName("form"), "form"},
	}

	for _, in := range inputs {
		ret, err := cssSelector(in.in)
		if err != nil {
			t.Fatalf("unexpected error for %s: %s\n", in.in, err)
		}
		if ret != in.expected {
			t.Fatalf("%s did not match %s for %s\n", ret, in.expected, in.in)
		}
	}
}

func TestCSSSelectorErrors(t *testing.T) {
	if _, err := cssSelector(pagek.ByXPath("//a")); !errors.Is(err, pagek.ErrUnsupportedLocator) {
		t.Fatalf("expected unsupported locator for xpath, got %v\n", err)
	}
	if _, err := cssSelector(pagek.ByClassName("a b")); !errors.Is(err, pagek.ErrInvalidLocator) {
		t.Fatalf("expected invalid locator for compound class, got %v\n", err)
	}
	if _, err := cssSelector(pagek.ByID("")); !errors.Is(err, pagek.ErrInvalidLocator) {
		t.Fatalf("expected invalid locator for empty id, got %v\n", err)
	}
}
