package pagek

import (
	"strings"

	"github.com/pkg/errors"
)

// By is the strategy used to find an element
type By int8

// revive:disable:var-naming
const (
	ID By = iota + 1
	Name
	CSS
	XPath
	ClassName
	TagName
)

var byStrMap = map[By]string{
	ID:        "id",
	Name:      "name",
	CSS:       "css",
	XPath:     "xpath",
	ClassName: "class",
	TagName:   "tag",
}

var strByMap = map[string]By{
	"id":    ID,
	"name":  Name,
	"css":   CSS,
	"xpath": XPath,
	"class": ClassName,
	"tag":   TagName,
}

func (b By) String() string {
	if s, ok := byStrMap[b]; ok {
		return s
	}
	return "unknown"
}

// Locator is a (strategy, value) pair, passed through to the session untouched.
type Locator struct {
	By    By
	Value string
}

func (l Locator) String() string {
	return l.By.String() + ":" + l.Value
}

// ByID locates by the id attribute
func ByID(id string) Locator {
	return Locator{By: ID, Value: id}
}

// ByName locates by the name attribute
func ByName(name string) Locator {
	return Locator{By: Name, Value: name}
}

// ByCSS locates by css selector
func ByCSS(selector string) Locator {
	return Locator{By: CSS, Value: selector}
}

// ByXPath locates by an xpath expression
func ByXPath(expr string) Locator {
	return Locator{By: XPath, Value: expr}
}

// ByClassName locates by a single class name
func ByClassName(class string) Locator {
	return Locator{By: ClassName, Value: class}
}

// ByTagName locates by element tag
func ByTagName(tag string) Locator {
	return Locator{By: TagName, Value: tag}
}

// ParseLocator parses strategy:value. Input without a known strategy prefix is
// treated as a css selector, so "div:nth-child(2)" still works.
func ParseLocator(input string) (Locator, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Locator{}, errors.Wrap(ErrInvalidLocator, "empty locator")
	}

	parts := strings.SplitN(input, ":", 2)
	if len(parts) == 2 {
		if by, ok := strByMap[strings.ToLower(parts[0])]; ok {
			if parts[1] == "" {
				return Locator{}, errors.Wrapf(ErrInvalidLocator, "%s has no value", input)
			}
			return Locator{By: by, Value: parts[1]}, nil
		}
	}
	return ByCSS(input), nil
}

// ParseLocators parses every input or returns the first error
func ParseLocators(inputs []string) ([]Locator, error) {
	locators := make([]Locator, 0, len(inputs))
	for _, in := range inputs {
		loc, err := ParseLocator(in)
		if err != nil {
			return nil, err
		}
		locators = append(locators, loc)
	}
	return locators, nil
}
