// Package notify raises operator-facing messages: blocking notifications and
// non-blocking overlays.
package notify

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
)

// Handle dismisses an overlay. Dismiss is safe to call more than once.
type Handle interface {
	Dismiss()
}

// Notifier is the visual notification layer.
type Notifier interface {
	// Notify shows a message and blocks until the operator acknowledges it
	// or ctx is done. Remote notifiers return once the message is sent.
	Notify(ctx context.Context, title, message string) error
	// Overlay shows text without blocking until the handle is dismissed.
	Overlay(text string) Handle
}

// HandleFunc adapts a function to Handle. The function runs at most once.
func HandleFunc(f func()) Handle {
	return &onceHandle{f: f}
}

type onceHandle struct {
	once sync.Once
	f    func()
}

func (h *onceHandle) Dismiss() {
	h.once.Do(func() {
		if h.f != nil {
			h.f()
		}
	})
}

// Multi fans out to every notifier. Notify runs them in order and joins
// their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, title, message string) error {
	var errs error
	for _, n := range m {
		if err := n.Notify(ctx, title, message); err != nil {
			errs = errors.CombineErrors(errs, err)
		}
	}
	return errs
}

func (m Multi) Overlay(text string) Handle {
	handles := make([]Handle, 0, len(m))
	for _, n := range m {
		handles = append(handles, n.Overlay(text))
	}
	return HandleFunc(func() {
		for _, h := range handles {
			h.Dismiss()
		}
	})
}

// Nop discards everything.
type Nop struct{}

func (Nop) Notify(context.Context, string, string) error { return nil }
func (Nop) Overlay(string) Handle                        { return HandleFunc(nil) }
