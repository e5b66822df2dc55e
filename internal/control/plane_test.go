package control

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"go-jobsearch-rpa/internal/notify"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("os/signal.signal_recv"),
		goleak.IgnoreAnyFunction("os/signal.loop"),
	)
}

type overlayCounter struct {
	mu        sync.Mutex
	raised    int
	dismissed int
}

func (o *overlayCounter) Notify(context.Context, string, string) error { return nil }

func (o *overlayCounter) Overlay(string) notify.Handle {
	o.mu.Lock()
	o.raised++
	o.mu.Unlock()
	return notify.HandleFunc(func() {
		o.mu.Lock()
		o.dismissed++
		o.mu.Unlock()
	})
}

func (o *overlayCounter) counts() (int, int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.raised, o.dismissed
}

type exitRecorder struct {
	calls atomic.Int32
	code  atomic.Int32
}

func (e *exitRecorder) exit(code int) {
	e.calls.Add(1)
	e.code.Store(int32(code))
}

func newPlane(t *testing.T) (*Plane, *overlayCounter, *exitRecorder) {
	t.Helper()
	o := &overlayCounter{}
	e := &exitRecorder{}
	return NewPlane(o, WithExit(e.exit), WithPollInterval(5*time.Millisecond)), o, e
}

func TestPauseResumeIdempotent(t *testing.T) {
	p, o, _ := newPlane(t)

	p.Pause()
	p.Pause()
	assert.True(t, p.State().Paused)

	p.Resume()
	p.Resume()
	assert.False(t, p.State().Paused)

	raised, dismissed := o.counts()
	assert.Equal(t, 1, raised)
	assert.Equal(t, 1, dismissed)
}

func TestCheckpointBlocksUntilResume(t *testing.T) {
	p, _, _ := newPlane(t)
	p.Pause()

	done := make(chan error)
	go func() { done <- p.Checkpoint(context.Background()) }()

	select {
	case <-done:
		t.Fatal("checkpoint returned while paused")
	case <-time.After(30 * time.Millisecond):
	}

	p.Resume()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("checkpoint did not observe resume")
	}
}

func TestCheckpointUnpausedReturnsImmediately(t *testing.T) {
	p, _, _ := newPlane(t)
	assert.NoError(t, p.Checkpoint(context.Background()))
}

func TestKillExitsWithCodeOne(t *testing.T) {
	p, _, e := newPlane(t)
	p.Pause()
	p.Kill()

	assert.Equal(t, int32(1), e.calls.Load())
	assert.Equal(t, int32(ExitKilled), e.code.Load())
	assert.True(t, p.State().KillRequested)
}

func TestKillWinsOverRestart(t *testing.T) {
	p, _, e := newPlane(t)
	ctx, stop := p.Begin(context.Background())
	defer stop()

	p.Kill()
	p.Restart()

	assert.Equal(t, int32(1), e.calls.Load())
	assert.False(t, p.State().RestartRequested)
	assert.NoError(t, ctx.Err())
}

func TestRestartCancelsRunOnce(t *testing.T) {
	p, o, e := newPlane(t)
	ctx, stop := p.Begin(context.Background())
	defer stop()

	p.Pause()
	p.Restart()
	p.Restart()

	require.Error(t, ctx.Err())
	assert.ErrorIs(t, context.Cause(ctx), ErrRestart)
	assert.True(t, p.State().RestartRequested)
	assert.False(t, p.State().Paused, "restart releases a paused run")
	assert.Equal(t, int32(0), e.calls.Load())

	_, dismissed := o.counts()
	assert.Equal(t, 1, dismissed)

	// Terminal: later pause commands are ignored.
	p.Pause()
	assert.False(t, p.State().Paused)
}

func TestRestartWakesPausedCheckpoint(t *testing.T) {
	p, _, _ := newPlane(t)
	ctx, stop := p.Begin(context.Background())
	defer stop()
	p.Pause()

	done := make(chan error)
	go func() { done <- p.Checkpoint(ctx) }()
	p.Restart()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrRestart)
	case <-time.After(time.Second):
		t.Fatal("checkpoint stayed blocked after restart")
	}
}

func TestBeginResetsState(t *testing.T) {
	p, _, _ := newPlane(t)
	_, stop := p.Begin(context.Background())
	p.Restart()
	stop()

	ctx, stop := p.Begin(context.Background())
	defer stop()
	assert.Equal(t, Snapshot{}, p.State())
	assert.NoError(t, ctx.Err())

	p.Pause()
	assert.True(t, p.State().Paused)
}

func TestRestartBetweenRunsStaysQueued(t *testing.T) {
	p, _, _ := newPlane(t)
	_, stop := p.Begin(context.Background())
	stop()

	p.Restart()
	assert.True(t, p.State().RestartRequested, "request visible until the next run")

	ctx, stop := p.Begin(context.Background())
	defer stop()
	assert.NoError(t, ctx.Err(), "the new run is the relaunch")
	assert.False(t, p.State().RestartRequested)
}

func TestApplyAndParse(t *testing.T) {
	p, _, _ := newPlane(t)

	a, err := ParseAction(" Pause ")
	require.NoError(t, err)
	require.NoError(t, p.Apply(a))
	assert.True(t, p.State().Paused)

	_, err = ParseAction("explode")
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.ErrorIs(t, p.Apply(Action("explode")), ErrUnknownAction)
}

func TestSignalFromAnotherGoroutine(t *testing.T) {
	p, _, _ := newPlane(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Pause()
			p.Resume()
		}()
	}
	wg.Wait()
	assert.NoError(t, p.Checkpoint(context.Background()))
}
