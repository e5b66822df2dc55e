package notify

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/pterm/pterm"
)

// Console prints to a terminal. Notify waits for the operator to press Enter.
type Console struct {
	out io.Writer
	in  <-chan string

	mu sync.Mutex
}

// NewConsole reads acknowledgements from in and writes to out.
func NewConsole(in io.Reader, out io.Writer) *Console {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return &Console{out: out, in: lines}
}

func (c *Console) Notify(ctx context.Context, title, message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	box := pterm.DefaultBox.WithTitle(pterm.LightCyan(title)).Sprint(message)
	fmt.Fprintln(c.out, box)
	fmt.Fprintln(c.out, pterm.Gray("Press Enter to continue..."))

	select {
	case <-ctx.Done():
		return context.Cause(ctx)
	case <-c.in:
		// A closed input means no terminal is attached; nothing to wait for.
		return nil
	}
}

func (c *Console) Overlay(text string) Handle {
	spinner, err := pterm.DefaultSpinner.WithWriter(c.out).WithRemoveWhenDone(true).Start(text)
	if err != nil {
		fmt.Fprintln(c.out, pterm.Yellow("⏸  "+text))
		return HandleFunc(nil)
	}
	return HandleFunc(func() { _ = spinner.Stop() })
}
