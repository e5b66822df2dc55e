package glassdoor

import (
	"time"

	"go-jobsearch-rpa/internal/dom"
	"go-jobsearch-rpa/internal/dom/domtest"
)

var sel = DefaultSelectors()

func fastTiming() Timing {
	return Timing{
		Wait:          5 * time.Millisecond,
		ModalProbe:    time.Millisecond,
		ModalSettle:   time.Millisecond,
		ModalCycles:   3,
		LoadMoreProbe: time.Millisecond,
		MaxLoadMore:   50,
		DetailSettle:  time.Millisecond,
	}
}

func fastActuator() []dom.ActuatorOption {
	return []dom.ActuatorOption{
		dom.WithDefaultRetryDelay(time.Millisecond),
		dom.WithProbeTimeout(time.Millisecond),
	}
}

func newTestPage(fake *domtest.Page, opts Options) *Page {
	opts.Selectors = sel
	if opts.Timing == (Timing{}) {
		opts.Timing = fastTiming()
	}
	opts.Actuator = fastActuator()
	return NewPage(fake, opts)
}

// jobCard builds a card. With a detail trigger, clicking it puts desc into
// the document-level detail pane.
func jobCard(fake *domtest.Page, title, company, location, desc string, withTrigger bool) (*domtest.Node, *domtest.Node) {
	card := domtest.NewNode("").
		With(sel.Title, domtest.NewNode(title)).
		With(sel.Company, domtest.NewNode(company)).
		With(sel.Location, domtest.NewNode(location))
	if !withTrigger {
		return card, nil
	}
	trigger := domtest.NewNode("View")
	trigger.OnClick = func() { fake.Set(sel.Description, domtest.NewNode(desc)) }
	card.With(sel.DetailTrigger, trigger)
	return card, trigger
}
