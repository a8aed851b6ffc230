package browser

import (
	"strings"

	"github.com/pkg/errors"
	"gitlab.com/pagek/pagek"
)

var attrEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// cssSelector translates every css expressible strategy. XPath is handled by
// DOM.performSearch instead.
func cssSelector(loc pagek.Locator) (string, error) {
	if loc.Value == "" {
		return "", errors.Wrap(pagek.ErrInvalidLocator, "empty value")
	}

	switch loc.By {
	case pagek.CSS:
		return loc.Value, nil
	case pagek.ID:
		return `[id="` + attrEscaper.Replace(loc.Value) + `"]`, nil
	case pagek.Name:
		return `[name="` + attrEscaper.Replace(loc.Value) + `"]`, nil
	case pagek.ClassName:
		if strings.ContainsAny(loc.Value, " \t\n") {
			return "", errors.Wrap(pagek.ErrInvalidLocator, "compound class names are not permitted")
		}
		return `[class~="` + attrEscaper.Replace(loc.Value) + `"]`, nil
	case pagek.TagName:
		return loc.Value, nil
	}
	return "", errors.Wrapf(pagek.ErrUnsupportedLocator, "strategy %s", loc.By)
}
