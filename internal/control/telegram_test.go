package control

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"go-jobsearch-rpa/internal/telegram"
)

type fakeFeed struct {
	cmds []telegram.Command

	mu      sync.Mutex
	replies []string
}

func (f *fakeFeed) Commands(ctx context.Context) <-chan telegram.Command {
	out := make(chan telegram.Command)
	go func() {
		defer close(out)
		for _, c := range f.cmds {
			select {
			case out <- c:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (f *fakeFeed) SendStatus(_ context.Context, msg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, msg)
	return nil
}

func TestTelegramSourceAppliesCommands(t *testing.T) {
	p, _, e := newPlane(t)
	feed := &fakeFeed{cmds: []telegram.Command{
		{Name: "pause"},
		{Name: "status"},
		{Name: "dance"},
		{Name: "resume"},
		{Name: "kill"},
	}}

	assert.NoError(t, NewTelegram(feed, nil).Listen(context.Background(), p))

	assert.False(t, p.State().Paused)
	assert.Equal(t, int32(1), e.calls.Load())
	assert.Equal(t, []string{
		"pause accepted",
		"paused=true kill=false restart=false",
		"Unknown command /dance. Try /pause, /resume, /restart, /kill or /status.",
		"resume accepted",
	}, feed.replies)
}

func TestServeStopsAllSources(t *testing.T) {
	p, _, _ := newPlane(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Serve(ctx, p, nil, NewSignals(nil), NewTelegram(&fakeFeed{}, nil))
	assert.NoError(t, err)
}
