package browser

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"go-jobsearch-rpa/internal/dom"
)

const (
	fallbackWidth  = 1920
	fallbackHeight = 1080
	clickTimeout   = 5 * time.Second
)

type PlaywrightManager struct {
	pw         *playwright.Playwright
	browser    playwright.Browser
	context    playwright.BrowserContext
	page       playwright.Page
	persistent bool
	log        *zap.SugaredLogger
}

// NewPlaywright launches the browser. With a profile directory the context
// is persistent and reuses its first tab.
func NewPlaywright(ctx context.Context, opts Options) (*PlaywrightManager, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	pw, err := playwright.Run()
	if err != nil {
		return nil, errors.WithHint(errors.Wrap(err, "could not start playwright"),
			"install the driver with: go run github.com/playwright-community/playwright-go/cmd/playwright install --with-deps chromium")
	}
	pm := &PlaywrightManager{pw: pw, log: log, persistent: opts.ProfileDir != ""}

	var ch *string
	if c := channel(opts.Browser); c != "" {
		ch = playwright.String(c)
	}

	if pm.persistent {
		bctx, err := pw.Chromium.LaunchPersistentContext(opts.ProfileDir, playwright.BrowserTypeLaunchPersistentContextOptions{
			Channel:  ch,
			Headless: playwright.Bool(opts.Headless),
			Args:     launchArgs,
		})
		if err != nil {
			_ = pw.Stop()
			return nil, errors.Wrapf(err, "launch persistent context in %s", opts.ProfileDir)
		}
		pm.context = bctx
		if pages := bctx.Pages(); len(pages) > 0 {
			pm.page = pages[0]
		}
	} else {
		b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
			Channel:  ch,
			Headless: playwright.Bool(opts.Headless),
			Args:     launchArgs,
		})
		if err != nil {
			_ = pw.Stop()
			return nil, errors.Wrap(err, "launch browser")
		}
		pm.browser = b
		bctx, err := b.NewContext()
		if err != nil {
			_ = pm.Close()
			return nil, errors.Wrap(err, "create browser context")
		}
		pm.context = bctx
	}

	if opts.CookiesPath != "" {
		if err := pm.addCookies(opts.CookiesPath); err != nil {
			log.Warnf("⚠️ Could not load cookies: %v. Continuing.", err)
		}
	}

	if pm.page == nil {
		page, err := pm.context.NewPage()
		if err != nil {
			_ = pm.Close()
			return nil, errors.Wrap(err, "create page")
		}
		pm.page = page
	}

	if !opts.Headless {
		pm.maximize()
	}
	log.Info("✅ Browser initialized successfully!")
	return pm, nil
}

func (pm *PlaywrightManager) addCookies(path string) error {
	cookies, err := LoadCookies(path)
	if err != nil {
		return err
	}
	pwCookies := make([]playwright.OptionalCookie, len(cookies))
	for i, c := range cookies {
		pwCookies[i] = c.ToPlayWright()
	}
	if err := pm.context.AddCookies(pwCookies); err != nil {
		return errors.Wrap(err, "add cookies")
	}
	pm.log.Infof("🍪 Loaded %d cookies", len(pwCookies))
	return nil
}

// maximize asks the browser to maximise its window over CDP and sizes the
// viewport to match, falling back to 1920x1080.
func (pm *PlaywrightManager) maximize() {
	width, height, err := pm.cdpMaximize()
	if err != nil {
		pm.log.Debugf("cdp maximize failed: %v", err)
		width, height = fallbackWidth, fallbackHeight
	}
	if err := pm.page.SetViewportSize(width, height); err != nil {
		pm.log.Warnf("⚠️ Could not set viewport: %v", err)
	}
}

func (pm *PlaywrightManager) cdpMaximize() (int, int, error) {
	session, err := pm.context.NewCDPSession(pm.page)
	if err != nil {
		return 0, 0, err
	}
	defer session.Detach()

	info, err := session.Send("Browser.getWindowForTarget", nil)
	if err != nil {
		return 0, 0, err
	}
	windowID, ok := info.(map[string]interface{})["windowId"]
	if !ok {
		return 0, 0, errors.New("no window id")
	}
	_, err = session.Send("Browser.setWindowBounds", map[string]interface{}{
		"windowId": windowID,
		"bounds":   map[string]interface{}{"windowState": "maximized"},
	})
	if err != nil {
		return 0, 0, err
	}
	time.Sleep(500 * time.Millisecond)

	res, err := session.Send("Browser.getWindowBounds", map[string]interface{}{"windowId": windowID})
	if err != nil {
		return 0, 0, err
	}
	bounds, _ := res.(map[string]interface{})["bounds"].(map[string]interface{})
	w, _ := bounds["width"].(float64)
	h, _ := bounds["height"].(float64)
	if w <= 0 || h <= 0 {
		return 0, 0, errors.New("window has no size")
	}
	return int(w), int(h), nil
}

func (pm *PlaywrightManager) Page() dom.Page {
	return &pwPage{page: pm.page}
}

// Raw exposes the underlying page, for screenshots and tests.
func (pm *PlaywrightManager) Raw() playwright.Page { return pm.page }

func (pm *PlaywrightManager) Close() error {
	var errs error
	if pm.context != nil {
		if err := pm.context.Close(); err != nil {
			errs = errors.CombineErrors(errs, err)
		}
	}
	if pm.browser != nil {
		if err := pm.browser.Close(); err != nil {
			errs = errors.CombineErrors(errs, err)
		}
	}
	if pm.pw != nil {
		if err := pm.pw.Stop(); err != nil {
			errs = errors.CombineErrors(errs, err)
		}
	}
	return errs
}

type pwPage struct {
	page playwright.Page
}

// classify marks errors caused by a closed page or browser.
func (p *pwPage) classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTargetClosed) || p.page.IsClosed() {
		return errors.Wrapf(dom.ErrDisconnected, "playwright: %v", err)
	}
	return err
}

func ms(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}

func (p *pwPage) WaitForSelector(selector string, timeout time.Duration) (dom.Element, error) {
	el, err := p.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{Timeout: ms(timeout)})
	if err != nil {
		return nil, p.classify(err)
	}
	if el == nil {
		return nil, dom.ErrNotFound
	}
	return &pwElement{el: el, page: p}, nil
}

func (p *pwPage) QuerySelectorAll(selector string) ([]dom.Element, error) {
	handles, err := p.page.QuerySelectorAll(selector)
	if err != nil {
		return nil, p.classify(err)
	}
	out := make([]dom.Element, 0, len(handles))
	for _, h := range handles {
		out = append(out, &pwElement{el: h, page: p})
	}
	return out, nil
}

func (p *pwPage) Evaluate(script string, arg any) error {
	_, err := p.page.Evaluate(script, arg)
	return p.classify(err)
}

func (p *pwPage) Goto(url string) error {
	_, err := p.page.Goto(url)
	return p.classify(err)
}

func (p *pwPage) URL() string { return p.page.URL() }

func (p *pwPage) PressKey(key string) error {
	return p.classify(p.page.Keyboard().Press(key))
}

func (p *pwPage) Screenshot() ([]byte, error) {
	buf, err := p.page.Screenshot(playwright.PageScreenshotOptions{FullPage: playwright.Bool(true)})
	return buf, p.classify(err)
}

type pwElement struct {
	el   playwright.ElementHandle
	page *pwPage
}

func (e *pwElement) Query(selector string) (dom.Element, error) {
	h, err := e.el.QuerySelector(selector)
	if err != nil {
		return nil, e.page.classify(err)
	}
	if h == nil {
		return nil, nil
	}
	return &pwElement{el: h, page: e.page}, nil
}

func (e *pwElement) WaitVisible(timeout time.Duration) error {
	err := e.el.WaitForElementState(*playwright.ElementStateVisible, playwright.ElementHandleWaitForElementStateOptions{Timeout: ms(timeout)})
	return e.page.classify(err)
}

func (e *pwElement) Click(force bool) error {
	return e.page.classify(e.el.Click(playwright.ElementHandleClickOptions{
		Force:   playwright.Bool(force),
		Timeout: ms(clickTimeout),
	}))
}

func (e *pwElement) DOMClick() error {
	_, err := e.el.Evaluate("el => el.click()")
	return e.page.classify(err)
}

func (e *pwElement) ScrollIntoView() error {
	return e.page.classify(e.el.ScrollIntoViewIfNeeded())
}

func (e *pwElement) Fill(text string) error {
	return e.page.classify(e.el.Fill(text))
}

func (e *pwElement) InnerText() (string, error) {
	text, err := e.el.InnerText()
	return text, e.page.classify(err)
}

func (e *pwElement) Remove() error {
	_, err := e.el.Evaluate("el => el.remove()")
	return e.page.classify(err)
}
