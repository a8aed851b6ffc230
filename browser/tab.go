package browser

import (
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/wirepair/gcd"
	"github.com/wirepair/gcd/gcdapi"
	"gitlab.com/pagek/pagek"
)

const objectGroup = "pagek"

var tabCounter int64

// Tab is a chromium browser tab implementing pagek.Session
type Tab struct {
	g                   *gcd.Gcd
	t                   *gcd.ChromeTarget
	id                  int64
	topNodeID           int64                  // nodeID of the current #document, 0 once invalidated
	implicitWait        int64                  // nanoseconds lookups keep retrying for
	navigationCh        chan struct{}          // signals Page.loadEventFired
	crashedCh           chan string            // the chrome tab crashed with a reason
	exitCh              chan struct{}          // for when we close the tab
	shutdown            int32                  // have we already shut down
	disconnectedHandler TabDisconnectedHandler // called with reason the tab was disconnected from the debugger service
	navigationTimeout   time.Duration          // amount of time to wait before failing navigation
	pollInterval        time.Duration          // how often lookups retry while implicitly waiting
}

// NewTab wraps an opened chrome target
func NewTab(ctx context.Context, gcdBrowser *gcd.Gcd, target *gcd.ChromeTarget) *Tab {
	t := &Tab{
		g:                 gcdBrowser,
		t:                 target,
		id:                atomic.AddInt64(&tabCounter, 1),
		navigationCh:      make(chan struct{}, 1),
		crashedCh:         make(chan string, 1),
		exitCh:            make(chan struct{}),
		navigationTimeout: 30 * time.Second,
		pollInterval:      100 * time.Millisecond,
	}
	t.disconnectedHandler = t.defaultDisconnectedHandler
	t.subscribeBrowserEvents(ctx)
	return t
}

// ID of this tab
func (t *Tab) ID() int64 {
	return t.id
}

// SetDisconnectedHandler so caller can trap when the debugger was disconnected/crashed.
func (t *Tab) SetDisconnectedHandler(handlerFn TabDisconnectedHandler) {
	t.disconnectedHandler = handlerFn
}

func (t *Tab) defaultDisconnectedHandler(tab *Tab, reason string) {
	log.Debug().Int64("tab", tab.id).Msgf("tab %s", reason)
}

// SetNavigationTimeout to wait for the load event before giving up, default is 30 seconds
func (t *Tab) SetNavigationTimeout(timeout time.Duration) {
	t.navigationTimeout = timeout
}

// SetPollInterval between lookups while implicitly waiting, default is 100ms
func (t *Tab) SetPollInterval(interval time.Duration) {
	t.pollInterval = interval
}

// Close the tab's event handling, the target itself is closed by the pool
func (t *Tab) Close() {
	if atomic.CompareAndSwapInt32(&t.shutdown, 0, 1) {
		close(t.exitCh)
	}
}

// Navigate to url and wait for the load event
func (t *Tab) Navigate(ctx context.Context, url string) error {
	// drop a load event left over from a previous navigation
	select {
	case <-t.navigationCh:
	default:
	}

	navParams := &gcdapi.PageNavigateParams{Url: url, TransitionType: "typed"}
	_, _, errText, err := t.t.Page.NavigateWithParams(navParams)
	if err != nil {
		return err
	}
	if errText != "" {
		return errors.Wrap(ErrNavigating, errText)
	}

	err = t.waitLoad(ctx)
	atomic.StoreInt64(&t.topNodeID, 0)
	log.Ctx(ctx).Debug().Str("url", url).Err(err).Msg("navigation complete")
	return err
}

func (t *Tab) waitLoad(ctx context.Context) error {
	navTimer := time.NewTimer(t.navigationTimeout)
	defer navTimer.Stop()

	select {
	case <-t.navigationCh:
		return nil
	case <-navTimer.C:
		// fragment only navigations never fire a load event
		if ready, err := t.documentReady(); err == nil && ready {
			return nil
		}
		return ErrNavigationTimedOut
	case <-ctx.Done():
		return ctx.Err()
	case <-t.exitCh:
		return ErrTabClosing
	case reason := <-t.crashedCh:
		return errors.Wrap(ErrTabCrashed, reason)
	}
}

func (t *Tab) documentReady() (bool, error) {
	if err := loadScripts(); err != nil {
		return false, err
	}
	rro, err := t.EvaluateScript(readyExpr)
	if err != nil {
		return false, err
	}
	ready, ok := rro.Value.(bool)
	return ok && ready, nil
}

// Title of the current document, may be empty while loading
func (t *Tab) Title(ctx context.Context) (string, error) {
	rro, err := t.EvaluateScript("document.title")
	if err != nil {
		return "", err
	}
	title, ok := rro.Value.(string)
	if !ok {
		return "", errors.Wrapf(ErrUnexpectedResult, "document.title returned %T", rro.Value)
	}
	return title, nil
}

// CurrentURL by looking at the navigation history
func (t *Tab) CurrentURL(ctx context.Context) (string, error) {
	idx, entries, err := t.t.Page.GetNavigationHistory()
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", nil
	}
	if idx < 0 || idx >= len(entries) {
		idx = len(entries) - 1
	}
	return entries[idx].Url, nil
}

// SetImplicitWait for element lookups, lookups are retried until something matches
// or d has passed
func (t *Tab) SetImplicitWait(d time.Duration) error {
	if d < 0 {
		return errors.Errorf("implicit wait must not be negative: %s", d)
	}
	atomic.StoreInt64(&t.implicitWait, int64(d))
	return nil
}

// ImplicitWait currently applied to lookups
func (t *Tab) ImplicitWait() time.Duration {
	return time.Duration(atomic.LoadInt64(&t.implicitWait))
}

// FindElement in the top level document
func (t *Tab) FindElement(ctx context.Context, loc pagek.Locator) (pagek.Element, error) {
	ids, err := t.lookup(ctx, t.documentNodeID, true, loc, false)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, &pagek.ElementNotFoundErr{Locator: loc}
	}
	return newElement(t, ids[0]), nil
}

// FindElements in the top level document
func (t *Tab) FindElements(ctx context.Context, loc pagek.Locator) ([]pagek.Element, error) {
	ids, err := t.lookup(ctx, t.documentNodeID, true, loc, true)
	if err != nil {
		return nil, err
	}
	return t.toElements(ids), nil
}

func (t *Tab) toElements(ids []int) []pagek.Element {
	elements := make([]pagek.Element, len(ids))
	for i, id := range ids {
		elements[i] = newElement(t, id)
	}
	return elements
}

// lookup queries under root until something matches or the implicit wait passes.
// An empty result is not an error here.
func (t *Tab) lookup(ctx context.Context, root func() (int, error), isDocument bool, loc pagek.Locator, all bool) ([]int, error) {
	deadline := time.Now().Add(t.ImplicitWait())
	for {
		rootID, err := root()
		if err != nil {
			return nil, err
		}

		ids, err := t.query(rootID, isDocument, loc, all)
		if err != nil {
			return nil, err
		}
		if len(ids) > 0 || !time.Now().Before(deadline) {
			return ids, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.exitCh:
			return nil, ErrTabClosing
		case <-time.After(t.pollInterval):
		}
	}
}

// query runs a single lookup
func (t *Tab) query(rootID int, isDocument bool, loc pagek.Locator, all bool) ([]int, error) {
	if loc.By == pagek.XPath {
		if !isDocument {
			return nil, errors.Wrap(pagek.ErrUnsupportedLocator, "xpath is only supported from the document")
		}
		return t.search(loc.Value, all)
	}

	selector, err := cssSelector(loc)
	if err != nil {
		return nil, err
	}

	if all {
		ids, err := t.t.DOM.QuerySelectorAll(rootID, selector)
		if err != nil {
			return nil, classifyNodeErr(err)
		}
		return ids, nil
	}

	id, err := t.t.DOM.QuerySelector(rootID, selector)
	if err != nil {
		return nil, classifyNodeErr(err)
	}
	if id == 0 {
		return nil, nil
	}
	return []int{id}, nil
}

// search the whole document with an xpath expression
func (t *Tab) search(expr string, all bool) ([]int, error) {
	var s gcdapi.DOMPerformSearchParams
	s.Query = expr
	s.IncludeUserAgentShadowDOM = false
	searchID, count, err := t.t.DOM.PerformSearchWithParams(&s)
	if err != nil {
		return nil, err
	}
	defer t.t.DOM.DiscardSearchResults(searchID)

	if count < 1 {
		return nil, nil
	}
	if !all {
		count = 1
	}

	var r gcdapi.DOMGetSearchResultsParams
	r.SearchId = searchID
	r.FromIndex = 0
	r.ToIndex = count
	return t.t.DOM.GetSearchResultsWithParams(&r)
}

// documentNodeID returns the current #document, requesting it again after a
// navigation or documentUpdated event invalidated the old one.
func (t *Tab) documentNodeID() (int, error) {
	if id := atomic.LoadInt64(&t.topNodeID); id != 0 {
		return int(id), nil
	}
	doc, err := t.t.DOM.GetDocument(1, false)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get document")
	}
	atomic.StoreInt64(&t.topNodeID, int64(doc.NodeId))
	return doc.NodeId, nil
}

// EvaluateScript in the global context.
func (t *Tab) EvaluateScript(scriptSource string) (*gcdapi.RuntimeRemoteObject, error) {
	params := &gcdapi.RuntimeEvaluateParams{
		Expression:            scriptSource,
		ObjectGroup:           objectGroup,
		IncludeCommandLineAPI: false,
		Silent:                true,
		ReturnByValue:         true,
		GeneratePreview:       false,
		UserGesture:           false,
		AwaitPromise:          false,
		ThrowOnSideEffect:     false,
		Timeout:               1000,
	}
	r, exp, err := t.t.Runtime.EvaluateWithParams(params)
	if err != nil {
		return nil, err
	}
	if exp != nil {
		return nil, newScriptEvaluationErr("failed to evaluate script", exp)
	}
	return r, nil
}

// Screenshot returns a png image, base64 encoded, or error if failed
func (t *Tab) Screenshot(ctx context.Context) (string, error) {
	params := &gcdapi.PageCaptureScreenshotParams{
		Format:  "png",
		Quality: 100,
		Clip: &gcdapi.PageViewport{
			X:      0,
			Y:      0,
			Width:  1024,
			Height: 768,
			Scale:  float64(1)},
		FromSurface: true,
	}

	return t.t.Page.CaptureScreenshotWithParams(params)
}

func (t *Tab) subscribeBrowserEvents(ctx context.Context) {
	t.t.DOM.Enable()
	t.t.Inspector.Enable()
	t.t.Page.Enable()

	t.t.Subscribe("Inspector.targetCrashed", func(target *gcd.ChromeTarget, payload []byte) {
		log.Ctx(ctx).Warn().Msgf("tab crashed: %s", string(payload))
		t.disconnected("crashed")
	})

	t.t.Subscribe("Inspector.detached", func(target *gcd.ChromeTarget, payload []byte) {
		header := &gcdapi.InspectorDetachedEvent{}
		reason := "detached"
		if err := json.Unmarshal(payload, header); err == nil {
			reason = header.Params.Reason
		}
		t.disconnected(reason)
	})

	t.t.Subscribe("Page.loadEventFired", func(target *gcd.ChromeTarget, payload []byte) {
		select {
		case t.navigationCh <- struct{}{}:
		default:
		}
	})

	// node ids from the old document are useless now
	t.t.Subscribe("DOM.documentUpdated", func(target *gcd.ChromeTarget, payload []byte) {
		atomic.StoreInt64(&t.topNodeID, 0)
	})
}

func (t *Tab) disconnected(reason string) {
	select {
	case t.crashedCh <- reason:
	default:
	}
	if t.disconnectedHandler != nil {
		t.disconnectedHandler(t, reason)
	}
}

// classifyNodeErr maps chrome's unknown node errors to pagek.ErrStaleElement
func classifyNodeErr(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "Could not find node") || strings.Contains(msg, "No node with given id") {
		return errors.Wrap(pagek.ErrStaleElement, msg)
	}
	return err
}
