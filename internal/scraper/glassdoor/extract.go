package glassdoor

import (
	"context"

	"go-jobsearch-rpa/internal/dom"
	"go-jobsearch-rpa/internal/filter"
	"go-jobsearch-rpa/internal/models"
)

// Extract reads every loaded job card and returns the ones no keyword
// rejects. The card list is taken once, up front.
//
// Before each card the pause checkpoint runs. On cancellation or a lost
// browser the records accepted so far are returned with the error; a card
// interrupted half way is dropped.
func (p *Page) Extract(ctx context.Context, keywords []string) ([]models.JobRecord, error) {
	kw := filter.NewKeywords(keywords)
	cards := p.gw.FindAll(ctx, p.sel.JobCard, 0)
	p.log.Infof("📦 Found %d job cards", len(cards))

	var out []models.JobRecord
	for i, card := range cards {
		if err := p.checkpoint(ctx); err != nil {
			return out, err
		}
		if err := p.gw.Err(); err != nil {
			return out, err
		}

		rec, err := p.readCard(ctx, card)
		if err != nil {
			return out, err
		}

		if term, hit := kw.Match(rec); hit {
			p.log.Infof("🚫 Ignored [%d/%d] %s (keyword %q)", i+1, len(cards), rec.Title, term)
			continue
		}
		out = append(out, rec)
		p.log.Infof("✅ [%d/%d] %s - %s", i+1, len(cards), rec.Title, rec.Company)

		if p.debug {
			if err := p.notifier.Notify(ctx, "Keyword Result", "NOT FOUND: no keywords matched.\n"+rec.Title); err != nil {
				if ctx.Err() != nil {
					return out, context.Cause(ctx)
				}
				p.log.Warnf("⚠️ Notify failed: %v", err)
			}
		}
	}
	return out, p.stopErr(ctx)
}

func (p *Page) checkpoint(ctx context.Context) error {
	if p.plane == nil {
		if ctx.Err() != nil {
			return context.Cause(ctx)
		}
		return nil
	}
	return p.plane.Checkpoint(ctx)
}

// readCard fills a record from the card and, when the card has a detail
// trigger, from the detail pane it opens.
func (p *Page) readCard(ctx context.Context, card dom.Element) (models.JobRecord, error) {
	rec := models.JobRecord{
		Title:    p.sub(card, p.sel.Title),
		Company:  p.sub(card, p.sel.Company),
		Location: p.sub(card, p.sel.Location),
	}

	trigger, err := card.Query(p.sel.DetailTrigger)
	p.gw.Observe(err)
	if trigger == nil {
		return rec, nil
	}

	p.gw.Observe(trigger.ScrollIntoView())
	if !p.act.Invoke(ctx, trigger, dom.DOMClick, dom.DirectClick) {
		p.log.Debugf("detail pane did not open for %q", rec.Title)
	}
	if err := dom.Sleep(ctx, p.timing.DetailSettle); err != nil {
		return rec, err
	}
	p.CloseModalIfExists(ctx)

	if _, ok := p.gw.FindOne(ctx, p.sel.ShowMore, 0); ok {
		p.act.SafeClick(ctx, p.sel.ShowMore)
		if err := dom.Sleep(ctx, p.timing.DetailSettle); err != nil {
			return rec, err
		}
	}
	rec.Description = p.gw.Text(ctx, p.sel.Description)

	if err := p.stopErr(ctx); err != nil {
		return rec, err
	}
	return rec, nil
}

func (p *Page) sub(card dom.Element, selector string) string {
	el, err := card.Query(selector)
	p.gw.Observe(err)
	return dom.TextOf(el)
}
