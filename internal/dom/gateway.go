package dom

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// DefaultWait is the lookup timeout used when no wait time is configured.
const DefaultWait = 5 * time.Second

// Gateway performs timeout-bounded element lookups. Lookup failures degrade
// to absence; only a lost browser channel is remembered, see Err.
type Gateway struct {
	page Page
	wait time.Duration
	log  *zap.SugaredLogger

	mu    sync.Mutex
	fatal error
}

// NewGateway wraps page. wait is the default lookup timeout.
func NewGateway(page Page, wait time.Duration, log *zap.SugaredLogger) *Gateway {
	if wait <= 0 {
		wait = DefaultWait
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Gateway{page: page, wait: wait, log: log}
}

// Page returns the underlying driver page.
func (g *Gateway) Page() Page { return g.page }

// Wait returns the configured default lookup timeout.
func (g *Gateway) Wait() time.Duration { return g.wait }

// FindOne waits up to timeout for selector. A non-positive timeout uses the
// configured wait time. The bool is false when nothing matched.
func (g *Gateway) FindOne(ctx context.Context, selector string, timeout time.Duration) (Element, bool) {
	if ctx.Err() != nil || g.Err() != nil {
		return nil, false
	}
	if timeout <= 0 {
		timeout = g.wait
	}
	el, err := g.page.WaitForSelector(selector, timeout)
	if err != nil {
		g.Observe(err)
		return nil, false
	}
	if el == nil {
		return nil, false
	}
	return el, true
}

// FindAll waits for the first match of selector, then returns all matches.
// The result is empty when nothing matched within timeout.
func (g *Gateway) FindAll(ctx context.Context, selector string, timeout time.Duration) []Element {
	if _, ok := g.FindOne(ctx, selector, timeout); !ok {
		return nil
	}
	els, err := g.page.QuerySelectorAll(selector)
	if err != nil {
		g.Observe(err)
		return nil
	}
	return els
}

// Text returns the trimmed inner text of the first match, or "".
func (g *Gateway) Text(ctx context.Context, selector string) string {
	el, ok := g.FindOne(ctx, selector, 0)
	if !ok {
		return ""
	}
	return TextOf(el)
}

// Observe records err as fatal when it reports a lost browser channel.
// Other errors are ignored.
func (g *Gateway) Observe(err error) {
	if err == nil || !errors.Is(err, ErrDisconnected) {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fatal == nil {
		g.fatal = err
		g.log.Errorf("❌ Browser channel lost: %v", err)
	}
}

// Err returns the first fatal driver error seen, if any.
func (g *Gateway) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fatal
}

// TextOf returns the trimmed inner text of el. A nil element or a failed
// read yields "".
func TextOf(el Element) string {
	if el == nil {
		return ""
	}
	text, err := el.InnerText()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		if ctx.Err() != nil {
			return context.Cause(ctx)
		}
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return context.Cause(ctx)
	case <-t.C:
		return nil
	}
}
