package glassdoor

import (
	"context"

	"go-jobsearch-rpa/internal/dom"
)

type modalState int

const (
	modalChecking modalState = iota
	modalDismissing
	modalResolved
	modalStuck
)

func (s modalState) String() string {
	switch s {
	case modalChecking:
		return "checking"
	case modalDismissing:
		return "dismissing"
	case modalResolved:
		return "resolved"
	case modalStuck:
		return "stuck"
	}
	return "unknown"
}

// CloseModalIfExists dismisses a blocking modal. It returns false only when
// the modal survived every dismissal cycle; callers carry on regardless.
func (p *Page) CloseModalIfExists(ctx context.Context) bool {
	var (
		state  = modalChecking
		modal  dom.Element
		cycles int
	)
	for {
		switch state {
		case modalChecking:
			el, ok := p.gw.FindOne(ctx, p.sel.Modal, p.timing.ModalProbe)
			switch {
			case !ok:
				state = modalResolved
			case cycles >= p.timing.ModalCycles:
				state = modalStuck
			default:
				modal = el
				state = modalDismissing
			}

		case modalDismissing:
			p.dismiss(ctx, modal)
			cycles++
			if dom.Sleep(ctx, p.timing.ModalSettle) != nil {
				return true
			}
			state = modalChecking

		case modalResolved:
			if cycles > 0 {
				p.log.Debugf("modal closed after %d cycle(s)", cycles)
			}
			return true

		case modalStuck:
			p.log.Warnf("⚠️ Modal still present after %d attempts, continuing", cycles)
			return false
		}
	}
}

// dismiss clicks the modal's close control, or removes the modal when there
// is none or it does not respond. Failures are logged and dropped.
func (p *Page) dismiss(ctx context.Context, modal dom.Element) {
	if p.sel.CloseTrigger != "" {
		btn, err := modal.Query(p.sel.CloseTrigger)
		p.gw.Observe(err)
		if btn != nil && p.act.Invoke(ctx, btn, dom.DOMClick, dom.DirectClick) {
			return
		}
	}
	if err := modal.Remove(); err != nil {
		p.gw.Observe(err)
		p.log.Debugf("modal removal failed: %v", err)
	}
}
