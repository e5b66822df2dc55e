package glassdoor

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"go-jobsearch-rpa/internal/dom"
	"go-jobsearch-rpa/internal/models"
	"go-jobsearch-rpa/internal/notify"
	"go-jobsearch-rpa/internal/scraper"
)

const DefaultStartURL = "https://www.glassdoor.co.uk/Job/index.htm"

// Config is the site-level configuration of a Glassdoor run.
type Config struct {
	StartURL  string
	FromAge   int
	Selectors Selectors
	Timing    Timing
	Debug     bool
	Actuator  []dom.ActuatorOption
}

type Scraper struct {
	cfg      Config
	plane    Checkpointer
	notifier notify.Notifier
	log      *zap.SugaredLogger
}

var _ scraper.Scraper = (*Scraper)(nil)

func NewScraper(cfg Config, plane Checkpointer, n notify.Notifier, log *zap.SugaredLogger) *Scraper {
	if cfg.StartURL == "" {
		cfg.StartURL = DefaultStartURL
	}
	if n == nil {
		n = notify.Nop{}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Scraper{cfg: cfg, plane: plane, notifier: n, log: log}
}

func (s *Scraper) Name() string {
	return "Glassdoor"
}

// Scrape opens the jobs page, searches, loads every listing and extracts
// the cards. A logged-out session blocks on the notifier until the operator
// has logged in by hand.
func (s *Scraper) Scrape(ctx context.Context, page dom.Page, q scraper.Query) ([]models.JobRecord, error) {
	gd := NewPage(page, Options{
		Selectors: s.cfg.Selectors,
		Timing:    s.cfg.Timing,
		Plane:     s.plane,
		Notifier:  s.notifier,
		Debug:     s.cfg.Debug,
		Log:       s.log,
		Actuator:  s.cfg.Actuator,
	})

	s.log.Info("🔍 Navigating directly to Glassdoor jobs page...")
	if err := gd.goTo(s.cfg.StartURL); err != nil {
		return nil, err
	}

	if !gd.IsLoggedIn(ctx) {
		s.log.Warn("🔐 Not logged in, waiting for the operator")
		err := s.notifier.Notify(ctx, "RPA Login", "Login required on Glassdoor. Please log in manually and confirm.")
		if err != nil {
			return nil, errors.Wrap(err, "login prompt")
		}
	}
	if err := gd.settle(ctx); err != nil {
		return nil, err
	}
	if gd.AcceptCookies(ctx) {
		s.log.Info("🍪 Cookie banner accepted")
	}

	s.log.Infof("🔎 Searching %q in %q", q.Term, q.Country)
	if err := gd.SearchJob(ctx, q.Term, q.Country); err != nil {
		return nil, err
	}
	gd.CloseModalIfExists(ctx)

	filtered := FilteredURL(page.URL(), s.cfg.FromAge)
	s.log.Infof("🔗 Navigating to filtered URL: %s", filtered)
	if err := gd.goTo(filtered); err != nil {
		return nil, err
	}
	if err := gd.settle(ctx); err != nil {
		return nil, err
	}

	if err := gd.LoadAll(ctx); err != nil {
		return nil, err
	}
	gd.CloseModalIfExists(ctx)

	s.log.Infof("🏷️  Rejecting keywords: %v", q.Keywords)
	return gd.Extract(ctx, q.Keywords)
}
