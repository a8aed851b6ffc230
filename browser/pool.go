package browser

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/wirepair/gcd"
)

var startupFlags = []string{
	"--enable-automation",
	"--test-type",
	"--disable-client-side-phishing-detection",
	"--disable-component-update",
	"--disable-infobars",
	"--disable-background-networking",
	"--disable-sync",
	"--disable-new-browser-first-run",
	"--disable-default-apps",
	"--disable-popup-blocking",
	"--disable-extensions",
	"--disable-features=TranslateUI",
	"--disable-gpu",
	"--disable-dev-shm-usage",
	"--no-sandbox",
	"--no-first-run",
	"--window-size=1024,768",
	"--password-store=basic",
	"--headless",
	"about:blank",
}

// Pool of chrome processes, each Take opens a fresh tab in one of them
type Pool struct {
	maxBrowsers       int
	browsers          chan *gcd.Gcd
	leaser            LeaserService
	closing           int32
	acquired          int32
	navigationTimeout time.Duration

	leasedLock sync.Mutex
	leased     map[*Tab]*leasedTab
}

type leasedTab struct {
	browser *gcd.Gcd
	target  *gcd.ChromeTarget
}

// NewPool of maxBrowsers started through leaser. Call Init before Take.
func NewPool(maxBrowsers int, leaser LeaserService) *Pool {
	if maxBrowsers < 1 {
		maxBrowsers = 1
	}
	return &Pool{
		maxBrowsers:       maxBrowsers,
		browsers:          make(chan *gcd.Gcd, maxBrowsers),
		leaser:            leaser,
		navigationTimeout: 30 * time.Second,
		leased:            make(map[*Tab]*leasedTab),
	}
}

// SetNavigationTimeout applied to every tab handed out
func (p *Pool) SetNavigationTimeout(timeout time.Duration) {
	p.navigationTimeout = timeout
}

// Init cleans up anything left from a previous run and starts the browsers
func (p *Pool) Init(ctx context.Context) error {
	if _, err := p.leaser.Cleanup(); err != nil {
		return errors.Wrap(err, "failed to clean up old browsers")
	}

	log.Ctx(ctx).Info().Int("browsers", p.maxBrowsers).Msg("creating browsers")
	for i := 0; i < p.maxBrowsers; i++ {
		browser, err := p.startBrowser()
		if err != nil {
			return err
		}
		p.browsers <- browser
		log.Ctx(ctx).Debug().Int("i", i).Msg("browser created")
	}
	return nil
}

func (p *Pool) startBrowser() (*gcd.Gcd, error) {
	port, err := p.leaser.Acquire()
	if err != nil {
		return nil, errors.Wrap(err, "unable to acquire new browser")
	}

	browser := gcd.NewChromeDebugger()
	if err := browser.ConnectToInstance("localhost", port); err != nil {
		p.leaser.Return(port)
		return nil, errors.Wrap(err, "failed to connect to instance")
	}
	return browser, nil
}

// Take a browser and open a new tab in it. The tab must be handed back with Return.
func (p *Pool) Take(ctx context.Context) (*Tab, error) {
	if atomic.LoadInt32(&p.closing) == 1 {
		return nil, ErrBrowserClosing
	}

	var browser *gcd.Gcd
	select {
	case browser = <-p.browsers:
	case <-ctx.Done():
		log.Ctx(ctx).Warn().Err(ctx.Err()).Msg("failed to acquire browser from pool")
		return nil, ctx.Err()
	}

	target, err := browser.NewTab()
	if err != nil {
		p.recycle(ctx, browser)
		return nil, errors.Wrap(err, "failed to open tab")
	}

	tab := NewTab(ctx, browser, target)
	tab.SetNavigationTimeout(p.navigationTimeout)

	p.leasedLock.Lock()
	p.leased[tab] = &leasedTab{browser: browser, target: target}
	p.leasedLock.Unlock()

	atomic.AddInt32(&p.acquired, 1)
	log.Ctx(ctx).Debug().Int64("tab", tab.ID()).Int32("acquired", atomic.LoadInt32(&p.acquired)).Msg("acquired browser")
	return tab, nil
}

// Return a tab, its browser goes back into the pool
func (p *Pool) Return(ctx context.Context, tab *Tab) {
	p.leasedLock.Lock()
	lease, ok := p.leased[tab]
	delete(p.leased, tab)
	p.leasedLock.Unlock()
	if !ok {
		log.Ctx(ctx).Warn().Int64("tab", tab.ID()).Msg("returned tab was not leased from this pool")
		return
	}

	tab.Close()
	atomic.AddInt32(&p.acquired, -1)

	if err := lease.browser.CloseTab(lease.target); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("failed to close tab, replacing browser")
		p.recycle(ctx, lease.browser)
		return
	}

	if atomic.LoadInt32(&p.closing) == 1 {
		p.release(ctx, lease.browser)
		return
	}
	p.browsers <- lease.browser
}

// recycle replaces a misbehaving browser with a fresh one
func (p *Pool) recycle(ctx context.Context, browser *gcd.Gcd) {
	p.release(ctx, browser)
	if atomic.LoadInt32(&p.closing) == 1 {
		return
	}

	replacement, err := p.startBrowser()
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to replace browser")
		return
	}
	p.browsers <- replacement
}

func (p *Pool) release(ctx context.Context, browser *gcd.Gcd) {
	if err := p.leaser.Return(browser.Port()); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to return browser")
	}
}

// Close all idle browsers, tabs still leased release their browser on Return
func (p *Pool) Close(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&p.closing, 0, 1) {
		return nil
	}

	for {
		select {
		case browser := <-p.browsers:
			p.release(ctx, browser)
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}
}
