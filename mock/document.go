package mock

import (
	"context"
	"sync"
	"time"

	"gitlab.com/pagek/pagek"
)

// Element is an in-memory element, matched by the locators it was added under.
type Element struct {
	doc       *Document
	displayed bool
	children  *Document
}

// Document is a tiny fake DOM keyed by locator
type Document struct {
	mu       sync.RWMutex
	elements map[pagek.Locator][]*Element
}

// NewDocument creates an empty document
func NewDocument() *Document {
	return &Document{elements: make(map[pagek.Locator][]*Element)}
}

// Add a new element matched by loc
func (d *Document) Add(loc pagek.Locator, displayed bool) *Element {
	ele := &Element{doc: d, displayed: displayed, children: NewDocument()}
	d.mu.Lock()
	d.elements[loc] = append(d.elements[loc], ele)
	d.mu.Unlock()
	return ele
}

// AddAfter adds the element once delay has passed
func (d *Document) AddAfter(delay time.Duration, loc pagek.Locator, displayed bool) {
	time.AfterFunc(delay, func() {
		d.Add(loc, displayed)
	})
}

// Remove every element matched by loc
func (d *Document) Remove(loc pagek.Locator) {
	d.mu.Lock()
	delete(d.elements, loc)
	d.mu.Unlock()
}

// RemoveAfter removes the elements once delay has passed
func (d *Document) RemoveAfter(delay time.Duration, loc pagek.Locator) {
	time.AfterFunc(delay, func() {
		d.Remove(loc)
	})
}

// Find returns a copy of the matches for loc
func (d *Document) Find(loc pagek.Locator) []*Element {
	d.mu.RLock()
	defer d.mu.RUnlock()
	found := make([]*Element, len(d.elements[loc]))
	copy(found, d.elements[loc])
	return found
}

func (d *Document) findElement(loc pagek.Locator) (pagek.Element, error) {
	found := d.Find(loc)
	if len(found) == 0 {
		return nil, &pagek.ElementNotFoundErr{Locator: loc}
	}
	return found[0], nil
}

func (d *Document) findElements(loc pagek.Locator) []pagek.Element {
	found := d.Find(loc)
	elements := make([]pagek.Element, len(found))
	for i, ele := range found {
		elements[i] = ele
	}
	return elements
}

// Children of this element, used when the element is a page root
func (e *Element) Children() *Document {
	return e.children
}

// SetDisplayed toggles visibility
func (e *Element) SetDisplayed(displayed bool) {
	e.doc.mu.Lock()
	e.displayed = displayed
	e.doc.mu.Unlock()
}

// HideAfter hides the element once delay has passed
func (e *Element) HideAfter(delay time.Duration) {
	time.AfterFunc(delay, func() {
		e.SetDisplayed(false)
	})
}

// ShowAfter shows the element once delay has passed
func (e *Element) ShowAfter(delay time.Duration) {
	time.AfterFunc(delay, func() {
		e.SetDisplayed(true)
	})
}

// IsDisplayed implements pagek.Element
func (e *Element) IsDisplayed(ctx context.Context) (bool, error) {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	return e.displayed, nil
}

// FindElement under this element
func (e *Element) FindElement(ctx context.Context, loc pagek.Locator) (pagek.Element, error) {
	return e.children.findElement(loc)
}

// FindElements under this element
func (e *Element) FindElements(ctx context.Context, loc pagek.Locator) ([]pagek.Element, error) {
	return e.children.findElements(loc), nil
}
