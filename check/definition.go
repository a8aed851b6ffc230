// Package check runs page objects declared in configuration instead of Go code.
package check

import (
	"context"

	"github.com/pkg/errors"
	"gitlab.com/pagek/pagek"
)

// PageSpec declares a page, decoded from the [[pages]] tables of the config
type PageSpec = pagek.PageConfig

// Definition is the page object a PageSpec describes
type Definition struct {
	spec    *PageSpec
	rootLoc *pagek.Locator
	root    pagek.SearchRoot

	Present []pagek.Locator
	Visible []pagek.Locator
	Hidden  []pagek.Locator
	Absent  []pagek.Locator
}

// NewDefinition parses every locator of spec
func NewDefinition(spec *PageSpec) (*Definition, error) {
	var err error
	d := &Definition{spec: spec}

	if spec.Root != "" {
		loc, err := pagek.ParseLocator(spec.Root)
		if err != nil {
			return nil, errors.Wrap(err, "root")
		}
		d.rootLoc = &loc
	}

	if d.Present, err = pagek.ParseLocators(spec.Present); err != nil {
		return nil, errors.Wrap(err, "present")
	}
	if d.Visible, err = pagek.ParseLocators(spec.Visible); err != nil {
		return nil, errors.Wrap(err, "visible")
	}
	if d.Hidden, err = pagek.ParseLocators(spec.Hidden); err != nil {
		return nil, errors.Wrap(err, "hidden")
	}
	if d.Absent, err = pagek.ParseLocators(spec.Absent); err != nil {
		return nil, errors.Wrap(err, "absent")
	}
	return d, nil
}

// Name of the page
func (d *Definition) Name() string {
	return d.spec.Name
}

// Path opened relative to the base url
func (d *Definition) Path() string {
	return d.spec.Path
}

// ExpectedTitle implements page.Titled
func (d *Definition) ExpectedTitle() string {
	return d.spec.Title
}

// ExpectedURL implements page.Located
func (d *Definition) ExpectedURL() string {
	return d.spec.URL
}

// RootElement implements page.Rooted, nil until Resolve found the root
func (d *Definition) RootElement() pagek.SearchRoot {
	return d.root
}

// RootLocator declared for the page, if any
func (d *Definition) RootLocator() (pagek.Locator, bool) {
	if d.rootLoc == nil {
		return pagek.Locator{}, false
	}
	return *d.rootLoc, true
}

// Resolve looks up the declared root in the opened document
func (d *Definition) Resolve(ctx context.Context, session pagek.Session) error {
	if d.rootLoc == nil {
		return nil
	}
	root, err := session.FindElement(ctx, *d.rootLoc)
	if err != nil {
		return errors.Wrapf(err, "failed to resolve root %s", d.rootLoc)
	}
	d.root = root
	return nil
}
