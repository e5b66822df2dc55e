package glassdoor

import "context"

// LoadAll clicks "load more" until the control disappears or stops
// responding. Both endings are success. It returns an error only when ctx
// ends or the browser is gone.
func (p *Page) LoadAll(ctx context.Context) error {
	rounds := 0
	for {
		p.CloseModalIfExists(ctx)
		if err := p.stopErr(ctx); err != nil {
			return err
		}

		if _, ok := p.gw.FindOne(ctx, p.sel.LoadMore, p.timing.LoadMoreProbe); !ok {
			p.log.Infof("✅ All listings loaded after %d page(s)", rounds)
			break
		}
		if !p.act.SafeClick(ctx, p.sel.LoadMore) {
			p.log.Infof("⚠️ Load more did not respond after %d page(s), using what is loaded", rounds)
			break
		}
		rounds++
		if p.timing.MaxLoadMore > 0 && rounds >= p.timing.MaxLoadMore {
			p.log.Warnf("⚠️ Stopped loading after %d pages", rounds)
			break
		}
		if err := p.settle(ctx); err != nil {
			return err
		}
	}
	return p.stopErr(ctx)
}
