package dom_test

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"

	"go-jobsearch-rpa/internal/dom"
	"go-jobsearch-rpa/internal/dom/domtest"
)

var errIntercepted = errors.New("element is not receiving pointer events")

func newActuator(page dom.Page) *dom.Actuator {
	gw := dom.NewGateway(page, 20*time.Millisecond, nil)
	return dom.NewActuator(gw, nil,
		dom.WithDefaultRetryDelay(time.Millisecond),
		dom.WithProbeTimeout(time.Millisecond),
	)
}

func TestClick(t *testing.T) {
	page := domtest.NewPage()
	btn := domtest.NewNode("ok")
	page.Set("#ok", btn)
	act := newActuator(page)

	assert.True(t, act.Click(context.Background(), "#ok"))
	assert.False(t, act.Click(context.Background(), "#missing"))

	btn.ClickErr = errIntercepted
	assert.False(t, act.Click(context.Background(), "#ok"))
	assert.Equal(t, 0, btn.DOMClicks, "single click never escalates")
}

func TestSafeClick_FirstAttemptSucceeds(t *testing.T) {
	page := domtest.NewPage()
	btn := domtest.NewNode("more")
	page.Set("#more", btn)

	assert.True(t, newActuator(page).SafeClick(context.Background(), "#more"))
	assert.Equal(t, 1, btn.Clicks)
	assert.Equal(t, 0, btn.Scrolls)
}

func TestSafeClick_ExhaustsEveryStrategy(t *testing.T) {
	page := domtest.NewPage()
	btn := domtest.NewNode("more")
	btn.ClickErr = errIntercepted
	btn.ForceErr = errIntercepted
	btn.DOMClickErr = errIntercepted
	page.Set("#more", btn)

	ok := newActuator(page).SafeClick(context.Background(), "#more", dom.Retries(5))

	assert.False(t, ok)
	assert.Equal(t, 5, page.Lookups("#more"))
	assert.Equal(t, 5, btn.Clicks, "one direct click per attempt")
	assert.Equal(t, 5, btn.Scrolls)
	assert.Equal(t, 1, btn.DOMClicks, "script click only on the final attempt")
	assert.Equal(t, 1, btn.ForceClicks, "forced click only on the final attempt")
}

func TestSafeClick_DefaultRetryCount(t *testing.T) {
	page := domtest.NewPage()
	btn := domtest.NewNode("more")
	btn.ClickErr = errIntercepted
	btn.ForceErr = errIntercepted
	btn.DOMClickErr = errIntercepted
	page.Set("#more", btn)

	assert.False(t, newActuator(page).SafeClick(context.Background(), "#more"))
	assert.Equal(t, dom.DefaultClickRetries, btn.Clicks)
}

func TestSafeClick_EscalatesToScriptClick(t *testing.T) {
	page := domtest.NewPage()
	btn := domtest.NewNode("more")
	btn.ClickErr = errIntercepted
	page.Set("#more", btn)

	assert.True(t, newActuator(page).SafeClick(context.Background(), "#more", dom.Retries(3)))
	assert.Equal(t, 3, btn.Clicks)
	assert.Equal(t, 1, btn.DOMClicks)
	assert.Equal(t, 0, btn.ForceClicks)
}

func TestSafeClick_NoForceSkipsForcedClick(t *testing.T) {
	page := domtest.NewPage()
	btn := domtest.NewNode("more")
	btn.ClickErr = errIntercepted
	btn.DOMClickErr = errIntercepted
	page.Set("#more", btn)

	ok := newActuator(page).SafeClick(context.Background(), "#more", dom.Retries(2), dom.Force(false))
	assert.False(t, ok)
	assert.Equal(t, 0, btn.ForceClicks)
}

func TestSafeClick_AbsentElementRetriesThenFails(t *testing.T) {
	page := domtest.NewPage()

	assert.False(t, newActuator(page).SafeClick(context.Background(), "#gone", dom.Retries(4)))
	assert.Equal(t, 4, page.Lookups("#gone"))
}

func TestSafeClick_AppearsOnLaterAttempt(t *testing.T) {
	page := domtest.NewPage()
	btn := domtest.NewNode("late")
	act := newActuator(page)

	// The first lookup misses; the node shows up before the second one.
	done := make(chan bool)
	go func() {
		done <- act.SafeClick(context.Background(), "#late",
			dom.Retries(50), dom.RetryDelay(5*time.Millisecond))
	}()
	time.Sleep(20 * time.Millisecond)
	page.Set("#late", btn)

	assert.True(t, <-done)
}

func TestSafeClick_StopsWhenCancelled(t *testing.T) {
	page := domtest.NewPage()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, newActuator(page).SafeClick(ctx, "#gone"))
}

func TestInvoke_OrderedChain(t *testing.T) {
	page := domtest.NewPage()
	el := domtest.NewNode("trigger")
	el.DOMClickErr = errIntercepted
	act := newActuator(page)

	assert.True(t, act.Invoke(context.Background(), el, dom.DOMClick, dom.DirectClick))
	assert.Equal(t, 1, el.DOMClicks)
	assert.Equal(t, 1, el.Clicks)

	el.ClickErr = errIntercepted
	assert.False(t, act.Invoke(context.Background(), el, dom.DOMClick, dom.DirectClick))
}

func TestFillInput(t *testing.T) {
	page := domtest.NewPage()
	input := domtest.NewNode("")
	page.Set("#q", input)
	act := newActuator(page)

	assert.True(t, act.FillInput(context.Background(), "#q", "golang"))
	assert.Equal(t, "golang", input.Value)
	assert.Empty(t, page.Evals)
}

func TestFillInput_FallsBackToScript(t *testing.T) {
	page := domtest.NewPage()
	input := domtest.NewNode("")
	input.FillErr = errors.New("element is not editable")
	page.Set("#q", input)
	act := newActuator(page)

	assert.True(t, act.FillInput(context.Background(), "#q", "golang"))
	assert.Len(t, page.Evals, 1)

	page.EvalErr = errors.New("script blocked")
	assert.False(t, act.FillInput(context.Background(), "#q", "golang"))
	assert.False(t, act.FillInput(context.Background(), "#missing", "golang"))
}
