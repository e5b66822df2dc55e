package dom_test

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobsearch-rpa/internal/dom"
	"go-jobsearch-rpa/internal/dom/domtest"
)

func TestGateway_MissingSelectorDegradesToAbsence(t *testing.T) {
	page := domtest.NewPage()
	gw := dom.NewGateway(page, 50*time.Millisecond, nil)
	ctx := context.Background()

	start := time.Now()
	el, ok := gw.FindOne(ctx, ".never", 0)
	assert.False(t, ok)
	assert.Nil(t, el)

	all := gw.FindAll(ctx, ".never", 10*time.Millisecond)
	assert.Empty(t, all)
	assert.Less(t, time.Since(start), time.Second)

	assert.Equal(t, "", gw.Text(ctx, ".never"))
	assert.NoError(t, gw.Err(), "absence is not fatal")
}

func TestGateway_FindAllReturnsEveryMatch(t *testing.T) {
	page := domtest.NewPage()
	page.Set(".card", domtest.NewNode("a"), domtest.NewNode("b"), domtest.NewNode("c"))
	gw := dom.NewGateway(page, time.Second, nil)

	all := gw.FindAll(context.Background(), ".card", 0)
	require.Len(t, all, 3)
	assert.Equal(t, "b", dom.TextOf(all[1]))
}

func TestGateway_TextTrimsWhitespace(t *testing.T) {
	page := domtest.NewPage()
	page.Set("h1", domtest.NewNode("  Senior Engineer \n"))
	gw := dom.NewGateway(page, time.Second, nil)

	assert.Equal(t, "Senior Engineer", gw.Text(context.Background(), "h1"))
}

func TestGateway_CancelledContextShortCircuits(t *testing.T) {
	page := domtest.NewPage()
	page.Set(".card", domtest.NewNode("a"))
	gw := dom.NewGateway(page, time.Second, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := gw.FindOne(ctx, ".card", 0)
	assert.False(t, ok)
	assert.Equal(t, 0, page.Lookups(".card"))
}

func TestGateway_DisconnectIsSticky(t *testing.T) {
	page := domtest.NewPage()
	page.Set(".card", domtest.NewNode("a"))
	gw := dom.NewGateway(page, time.Second, nil)
	page.Close()

	_, ok := gw.FindOne(context.Background(), ".card", 0)
	assert.False(t, ok)
	require.Error(t, gw.Err())
	assert.True(t, errors.Is(gw.Err(), dom.ErrDisconnected))

	// Later lookups do not touch the dead page.
	_, _ = gw.FindOne(context.Background(), ".card", 0)
	assert.Equal(t, 0, page.Lookups(".card"))
}

func TestTextOf(t *testing.T) {
	assert.Equal(t, "", dom.TextOf(nil))

	broken := domtest.NewNode("x")
	broken.TextErr = errors.New("detached")
	assert.Equal(t, "", dom.TextOf(broken))
}

func TestSleep_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancelCause(context.Background())
	cause := errors.New("restart")
	cancel(cause)

	err := dom.Sleep(ctx, time.Hour)
	assert.ErrorIs(t, err, cause)
	assert.NoError(t, dom.Sleep(context.Background(), time.Millisecond))
}
