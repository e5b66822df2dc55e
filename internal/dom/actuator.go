package dom

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultClickRetries = 8
	DefaultClickWait    = 500 * time.Millisecond
	DefaultProbeTimeout = 2 * time.Second
)

// Strategy is one way of activating an element. Escalation policies are
// ordered slices of strategies, tried until one succeeds.
type Strategy struct {
	Name string
	Do   func(el Element) error
}

var (
	// DirectClick is a real, actionability-checked pointer click.
	DirectClick = Strategy{Name: "direct", Do: func(el Element) error { return el.Click(false) }}
	// DOMClick calls el.click() in page script.
	DOMClick = Strategy{Name: "dom", Do: func(el Element) error { return el.DOMClick() }}
	// ForceClick is a pointer click ignoring visibility and occlusion.
	ForceClick = Strategy{Name: "force", Do: func(el Element) error { return el.Click(true) }}
)

// fillScript assigns the value directly when a standard fill fails.
const fillScript = `([sel, val]) => {
	const el = document.querySelector(sel);
	if (!el) { throw new Error("no element for " + sel); }
	el.value = val;
	el.dispatchEvent(new Event("input", { bubbles: true }));
}`

// Actuator performs click and fill operations through a Gateway, retrying
// and escalating on failure. Its methods report failure as false, never as
// an error.
type Actuator struct {
	gw         *Gateway
	log        *zap.SugaredLogger
	retries    int
	retryDelay time.Duration
	probe      time.Duration
}

// ActuatorOption customises an Actuator.
type ActuatorOption func(*Actuator)

// WithDefaultRetries sets the SafeClick retry count.
func WithDefaultRetries(n int) ActuatorOption {
	return func(a *Actuator) { a.retries = n }
}

// WithDefaultRetryDelay sets the wait between SafeClick attempts.
func WithDefaultRetryDelay(d time.Duration) ActuatorOption {
	return func(a *Actuator) { a.retryDelay = d }
}

// WithProbeTimeout sets the short lookup and visibility timeout used per attempt.
func WithProbeTimeout(d time.Duration) ActuatorOption {
	return func(a *Actuator) { a.probe = d }
}

// NewActuator builds an Actuator on gw.
func NewActuator(gw *Gateway, log *zap.SugaredLogger, opts ...ActuatorOption) *Actuator {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	a := &Actuator{
		gw:         gw,
		log:        log,
		retries:    DefaultClickRetries,
		retryDelay: DefaultClickWait,
		probe:      DefaultProbeTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Click looks selector up once and clicks it.
func (a *Actuator) Click(ctx context.Context, selector string) bool {
	el, ok := a.gw.FindOne(ctx, selector, 0)
	if !ok {
		return false
	}
	return a.Invoke(ctx, el, DirectClick)
}

type clickOptions struct {
	retries int
	delay   time.Duration
	force   bool
}

// ClickOption overrides SafeClick defaults for one call.
type ClickOption func(*clickOptions)

func Retries(n int) ClickOption { return func(o *clickOptions) { o.retries = n } }
func RetryDelay(d time.Duration) ClickOption { return func(o *clickOptions) { o.delay = d } }
func Force(force bool) ClickOption { return func(o *clickOptions) { o.force = force } }

// SafeClick retries a click on selector. Each attempt looks the element up
// with a short timeout, waits for visibility, and clicks. A failed click
// scrolls the element into view before the next attempt. On the last attempt
// the click escalates to a script click and then, if force is set, to a
// forced pointer click.
func (a *Actuator) SafeClick(ctx context.Context, selector string, opts ...ClickOption) bool {
	o := clickOptions{retries: a.retries, delay: a.retryDelay, force: true}
	for _, opt := range opts {
		opt(&o)
	}

	fallbacks := []Strategy{DOMClick}
	if o.force {
		fallbacks = append(fallbacks, ForceClick)
	}

	for attempt := 0; attempt < o.retries; attempt++ {
		el, ok := a.gw.FindOne(ctx, selector, a.probe)
		if !ok {
			if Sleep(ctx, o.delay) != nil {
				return false
			}
			continue
		}

		// Visibility is best-effort; the click decides.
		_ = el.WaitVisible(a.probe)
		if a.Invoke(ctx, el, DirectClick) {
			return true
		}

		_ = el.ScrollIntoView()
		if Sleep(ctx, o.delay) != nil {
			return false
		}

		if attempt == o.retries-1 && a.Invoke(ctx, el, fallbacks...) {
			return true
		}
	}
	a.log.Debugf("safe click exhausted for %s after %d attempts", selector, o.retries)
	return false
}

// Invoke tries each strategy on el in order and reports whether one succeeded.
func (a *Actuator) Invoke(ctx context.Context, el Element, chain ...Strategy) bool {
	for _, s := range chain {
		if ctx.Err() != nil {
			return false
		}
		err := s.Do(el)
		if err == nil {
			return true
		}
		a.gw.Observe(err)
		a.log.Debugf("%s click failed: %v", s.Name, err)
	}
	return false
}

// FillInput fills selector with text, falling back to assigning the value
// through page script.
func (a *Actuator) FillInput(ctx context.Context, selector, text string) bool {
	el, ok := a.gw.FindOne(ctx, selector, 0)
	if !ok {
		return false
	}
	err := el.Fill(text)
	if err == nil {
		return true
	}
	a.gw.Observe(err)

	if err := a.gw.Page().Evaluate(fillScript, []any{selector, text}); err != nil {
		a.gw.Observe(err)
		a.log.Debugf("fill fallback failed for %s: %v", selector, err)
		return false
	}
	return true
}
