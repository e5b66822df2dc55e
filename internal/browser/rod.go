package browser

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"go-jobsearch-rpa/internal/dom"
)

// RodManager drives a local Chromium through the DevTools protocol.
type RodManager struct {
	lnch    *launcher.Launcher
	browser *rod.Browser
	page    *rod.Page
	log     *zap.SugaredLogger
}

func NewRod(ctx context.Context, opts Options) (*RodManager, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	l := launcher.New().
		Headless(opts.Headless).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-infobars").
		Set("start-maximized")
	if opts.ProfileDir != "" {
		l = l.UserDataDir(opts.ProfileDir)
	}
	if path, ok := launcher.LookPath(); ok {
		l = l.Bin(path)
	}

	u, err := l.Context(ctx).Launch()
	if err != nil {
		return nil, errors.Wrap(err, "browser: launch")
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, errors.Wrap(err, "browser: connect")
	}
	b = b.NoDefaultDevice()
	rm := &RodManager{lnch: l, browser: b, log: log}

	if opts.CookiesPath != "" {
		if err := rm.addCookies(opts.CookiesPath); err != nil {
			log.Warnf("⚠️ Could not load cookies: %v. Continuing.", err)
		}
	}

	page, err := b.Page(proto.TargetCreateTarget{URL: ""})
	if err != nil {
		_ = rm.Close()
		return nil, errors.Wrap(err, "browser: new page")
	}
	rm.page = page
	log.Info("✅ Browser initialized successfully!")
	return rm, nil
}

func (rm *RodManager) addCookies(path string) error {
	cookies, err := LoadCookies(path)
	if err != nil {
		return err
	}
	params := make([]*proto.NetworkCookieParam, len(cookies))
	for i, c := range cookies {
		params[i] = c.ToRod()
	}
	if err := rm.browser.SetCookies(params); err != nil {
		return errors.Wrap(err, "set cookies")
	}
	rm.log.Infof("🍪 Loaded %d cookies", len(params))
	return nil
}

func (rm *RodManager) Page() dom.Page { return &rodPage{page: rm.page} }

func (rm *RodManager) Close() error {
	var err error
	if rm.browser != nil {
		err = rm.browser.Close()
	}
	if rm.lnch != nil {
		rm.lnch.Kill()
	}
	return err
}

type rodPage struct {
	page *rod.Page
}

// classify turns an error into dom.ErrDisconnected when the page no longer
// answers.
func (p *rodPage) classify(err error) error {
	if err == nil {
		return nil
	}
	if _, infoErr := p.page.Info(); infoErr != nil {
		return errors.Wrapf(dom.ErrDisconnected, "rod: %v", err)
	}
	return err
}

func (p *rodPage) WaitForSelector(selector string, timeout time.Duration) (dom.Element, error) {
	el, err := p.page.Timeout(timeout).Element(selector)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, dom.ErrNotFound
		}
		return nil, p.classify(err)
	}
	// Element only waits for attachment; match Playwright's visible default.
	if err := el.Timeout(timeout).WaitVisible(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, dom.ErrNotFound
		}
		return nil, p.classify(err)
	}
	return &rodElement{el: el.CancelTimeout(), page: p}, nil
}

func (p *rodPage) QuerySelectorAll(selector string) ([]dom.Element, error) {
	els, err := p.page.Elements(selector)
	if err != nil {
		return nil, p.classify(err)
	}
	out := make([]dom.Element, 0, len(els))
	for _, el := range els {
		out = append(out, &rodElement{el: el, page: p})
	}
	return out, nil
}

func (p *rodPage) Evaluate(script string, arg any) error {
	_, err := p.page.Evaluate(rod.Eval(script, arg))
	return p.classify(err)
}

func (p *rodPage) Goto(url string) error {
	if err := p.page.Navigate(url); err != nil {
		return p.classify(err)
	}
	return p.classify(p.page.WaitLoad())
}

func (p *rodPage) URL() string {
	info, err := p.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

var rodKeys = map[string]input.Key{
	"Enter":  input.Enter,
	"Escape": input.Escape,
	"Tab":    input.Tab,
}

func (p *rodPage) PressKey(key string) error {
	k, ok := rodKeys[key]
	if !ok {
		return errors.Newf("rod: unsupported key %q", key)
	}
	return p.classify(p.page.Keyboard.Press(k))
}

func (p *rodPage) Screenshot() ([]byte, error) {
	buf, err := p.page.Screenshot(true, nil)
	return buf, p.classify(err)
}

type rodElement struct {
	el   *rod.Element
	page *rodPage
}

func (e *rodElement) Query(selector string) (dom.Element, error) {
	has, el, err := e.el.Has(selector)
	if err != nil {
		return nil, e.page.classify(err)
	}
	if !has {
		return nil, nil
	}
	return &rodElement{el: el, page: e.page}, nil
}

func (e *rodElement) WaitVisible(timeout time.Duration) error {
	return e.page.classify(e.el.Timeout(timeout).WaitVisible())
}

func (e *rodElement) Click(force bool) error {
	if !force {
		return e.page.classify(e.el.Timeout(clickTimeout).Click(proto.InputMouseButtonLeft, 1))
	}
	// A forced click dispatches the mouse events at the element's centre
	// without waiting for it to be interactable.
	shape, err := e.el.Shape()
	if err != nil {
		return e.page.classify(err)
	}
	pt := shape.OnePointInside()
	if pt == nil {
		return errors.New("rod: element has no clickable area")
	}
	mouse := e.page.page.Mouse
	if err := mouse.MoveTo(*pt); err != nil {
		return e.page.classify(err)
	}
	return e.page.classify(mouse.Click(proto.InputMouseButtonLeft, 1))
}

func (e *rodElement) DOMClick() error {
	_, err := e.el.Eval(`() => this.click()`)
	return e.page.classify(err)
}

func (e *rodElement) ScrollIntoView() error {
	return e.page.classify(e.el.ScrollIntoView())
}

func (e *rodElement) Fill(text string) error {
	if err := e.el.SelectAllText(); err != nil {
		return e.page.classify(err)
	}
	return e.page.classify(e.el.Input(text))
}

func (e *rodElement) InnerText() (string, error) {
	text, err := e.el.Text()
	return text, e.page.classify(err)
}

func (e *rodElement) Remove() error {
	_, err := e.el.Eval(`() => this.remove()`)
	return e.page.classify(err)
}
