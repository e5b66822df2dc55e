package glassdoor

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"go-jobsearch-rpa/internal/dom"
	"go-jobsearch-rpa/internal/notify"
)

// Checkpointer is the pause safe point consulted before each card.
type Checkpointer interface {
	Checkpoint(ctx context.Context) error
}

// Timing holds every delay and probe used against the live page.
type Timing struct {
	// Wait is the default lookup timeout and the settle delay after
	// navigation or a load-more click.
	Wait          time.Duration
	ModalProbe    time.Duration
	ModalSettle   time.Duration
	ModalCycles   int
	LoadMoreProbe time.Duration
	// MaxLoadMore caps load-more rounds. Zero means no cap.
	MaxLoadMore  int
	DetailSettle time.Duration
}

// DefaultTiming returns the production delays around the given wait time.
func DefaultTiming(wait time.Duration) Timing {
	if wait <= 0 {
		wait = 3 * time.Second
	}
	return Timing{
		Wait:          wait,
		ModalProbe:    1500 * time.Millisecond,
		ModalSettle:   500 * time.Millisecond,
		ModalCycles:   3,
		LoadMoreProbe: 2 * time.Second,
		MaxLoadMore:   200,
		DetailSettle:  2 * time.Second,
	}
}

// Options configures a Page.
type Options struct {
	Selectors Selectors
	Timing    Timing
	Plane     Checkpointer
	Notifier  notify.Notifier
	Debug     bool
	Log       *zap.SugaredLogger
	Actuator  []dom.ActuatorOption
}

// Page is the Glassdoor jobs page.
type Page struct {
	gw       *dom.Gateway
	act      *dom.Actuator
	sel      Selectors
	timing   Timing
	plane    Checkpointer
	notifier notify.Notifier
	debug    bool
	log      *zap.SugaredLogger
}

func NewPage(page dom.Page, opts Options) *Page {
	log := opts.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	n := opts.Notifier
	if n == nil {
		n = notify.Nop{}
	}
	gw := dom.NewGateway(page, opts.Timing.Wait, log)
	return &Page{
		gw:       gw,
		act:      dom.NewActuator(gw, log, opts.Actuator...),
		sel:      opts.Selectors,
		timing:   opts.Timing,
		plane:    opts.Plane,
		notifier: n,
		debug:    opts.Debug,
		log:      log,
	}
}

// Err reports a lost browser channel.
func (p *Page) Err() error { return p.gw.Err() }

func (p *Page) settle(ctx context.Context) error {
	return dom.Sleep(ctx, p.gw.Wait())
}

// stopErr is the error a long operation returns when it ends early.
func (p *Page) stopErr(ctx context.Context) error {
	if err := p.gw.Err(); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return context.Cause(ctx)
	}
	return nil
}

func (p *Page) goTo(target string) error {
	if err := p.gw.Page().Goto(target); err != nil {
		p.gw.Observe(err)
		return errors.Wrapf(err, "navigate to %s", target)
	}
	return nil
}

func (p *Page) IsLoggedIn(ctx context.Context) bool {
	_, ok := p.gw.FindOne(ctx, p.sel.LoggedIn, 0)
	return ok
}

func (p *Page) AcceptCookies(ctx context.Context) bool {
	if p.sel.AcceptCookies == "" {
		return false
	}
	return p.act.SafeClick(ctx, p.sel.AcceptCookies, dom.Retries(1))
}

// SearchJob fills the search bar and submits it.
func (p *Page) SearchJob(ctx context.Context, term, country string) error {
	if !p.act.FillInput(ctx, p.sel.SearchTitle, term) {
		p.log.Warnf("⚠️ Could not fill job title %q", term)
	}
	if !p.act.FillInput(ctx, p.sel.SearchLocation, country) {
		p.log.Warnf("⚠️ Could not fill location %q", country)
	}
	if err := p.gw.Page().PressKey("Enter"); err != nil {
		p.gw.Observe(err)
		p.log.Warnf("⚠️ Could not submit search: %v", err)
	}
	if err := p.settle(ctx); err != nil {
		return err
	}
	return p.stopErr(ctx)
}

// FilteredURL sorts results newest first and limits them to fromAge days.
func FilteredURL(current string, fromAge int) string {
	u, err := url.Parse(current)
	if err != nil {
		sep := "?"
		if strings.Contains(current, "?") {
			sep = "&"
		}
		return current + sep + "sortBy=date_desc&fromAge=" + strconv.Itoa(fromAge)
	}
	q := u.Query()
	q.Set("sortBy", "date_desc")
	q.Set("fromAge", strconv.Itoa(fromAge))
	u.RawQuery = q.Encode()
	return u.String()
}
