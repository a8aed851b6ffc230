package browser

import (
	"context"

	"github.com/pkg/errors"
	"github.com/wirepair/gcd/gcdapi"
	"gitlab.com/pagek/pagek"
)

// Element is a node in a Tab's document, identified by chrome's nodeID.
// The nodeID becomes stale once the document is replaced.
type Element struct {
	tab    *Tab
	nodeID int
}

func newElement(tab *Tab, nodeID int) *Element {
	return &Element{tab: tab, nodeID: nodeID}
}

// NodeID of this element
func (e *Element) NodeID() int {
	return e.nodeID
}

func (e *Element) root() (int, error) {
	return e.nodeID, nil
}

// FindElement among this element's descendants
func (e *Element) FindElement(ctx context.Context, loc pagek.Locator) (pagek.Element, error) {
	ids, err := e.tab.lookup(ctx, e.root, false, loc, false)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, &pagek.ElementNotFoundErr{Locator: loc}
	}
	return newElement(e.tab, ids[0]), nil
}

// FindElements among this element's descendants
func (e *Element) FindElements(ctx context.Context, loc pagek.Locator) ([]pagek.Element, error) {
	ids, err := e.tab.lookup(ctx, e.root, false, loc, true)
	if err != nil {
		return nil, err
	}
	return e.tab.toElements(ids), nil
}

// IsDisplayed runs visible.js against the resolved node
func (e *Element) IsDisplayed(ctx context.Context) (bool, error) {
	if err := loadScripts(); err != nil {
		return false, err
	}

	obj, err := e.tab.t.DOM.ResolveNodeWithParams(&gcdapi.DOMResolveNodeParams{
		NodeId:      e.nodeID,
		ObjectGroup: objectGroup,
	})
	if err != nil {
		return false, classifyNodeErr(err)
	}
	defer e.tab.t.Runtime.ReleaseObject(obj.ObjectId)

	rro, exp, err := e.tab.t.Runtime.CallFunctionOnWithParams(&gcdapi.RuntimeCallFunctionOnParams{
		FunctionDeclaration: visibleFn,
		ObjectId:            obj.ObjectId,
		ReturnByValue:       true,
		Silent:              true,
	})
	if err != nil {
		return false, classifyNodeErr(err)
	}
	if exp != nil {
		return false, newScriptEvaluationErr("visibility check failed", exp)
	}

	visible, ok := rro.Value.(bool)
	if !ok {
		return false, errors.Wrapf(ErrUnexpectedResult, "visibility check returned %T", rro.Value)
	}
	return visible, nil
}
