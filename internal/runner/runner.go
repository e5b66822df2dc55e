// Package runner executes one scrape run end to end and relaunches it when
// the operator asks for a restart.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"go-jobsearch-rpa/internal/browser"
	"go-jobsearch-rpa/internal/control"
	"go-jobsearch-rpa/internal/database"
	"go-jobsearch-rpa/internal/models"
	"go-jobsearch-rpa/internal/scraper"
	"go-jobsearch-rpa/utils"
)

// Outcome tells the supervisor what to do after a run.
type Outcome int

const (
	OutcomeDone Outcome = iota
	OutcomeRestart
)

func (o Outcome) String() string {
	if o == OutcomeRestart {
		return "restart"
	}
	return "done"
}

// persistTimeout bounds the writes made after the run context is gone.
const persistTimeout = 30 * time.Second

// Plane scopes a run and exposes the operator flags.
type Plane interface {
	Begin(parent context.Context) (context.Context, context.CancelFunc)
	State() control.Snapshot
}

// Ledger remembers persisted records across runs.
type Ledger interface {
	IsSeen(rec models.JobRecord) bool
	Add(recs []models.JobRecord) error
}

// Reporter receives the results of a run.
type Reporter interface {
	SendJob(ctx context.Context, job models.JobRecord) error
	SendStatus(ctx context.Context, message string) error
	SendError(ctx context.Context, err error) error
}

// Deps are the collaborators of a run. Seen, Reporter, Screenshots and
// ExportDir are optional.
type Deps struct {
	// Defaults are used when no search params are stored.
	Defaults models.SearchParams
	// Keywords are added to the stored keywords of the job title.
	Keywords []string

	Store       database.Store
	Seen        Ledger
	Browser     browser.Factory
	Scraper     scraper.Scraper
	Plane       Plane
	Reporter    Reporter
	Screenshots *utils.ScreenShotDebugger
	ExportDir   string
	Log         *zap.SugaredLogger
}

// Run performs one scrape. Records extracted before a failure or restart
// are still persisted. A restart is reported as OutcomeRestart with a nil
// error unless persisting failed.
func Run(ctx context.Context, d Deps) (Outcome, error) {
	log := d.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	var (
		runCtx context.Context
		stop   context.CancelFunc
	)
	if d.Plane != nil {
		runCtx, stop = d.Plane.Begin(ctx)
	} else {
		runCtx, stop = context.WithCancel(ctx)
	}
	defer stop()

	fail := func(err error, msg string) (Outcome, error) {
		if restarting(runCtx, err, d.Plane) {
			log.Info("🔄 Run interrupted for restart")
			return OutcomeRestart, nil
		}
		return OutcomeDone, errors.Wrap(err, msg)
	}

	params, err := searchParams(runCtx, d)
	if err != nil {
		return fail(err, "resolve search params")
	}
	log.Infof("🎯 Searching %q in %s", params.Term, params.Country)

	countryID, err := d.Store.GetOrCreate(runCtx, database.EntityCountry, params.Country)
	if err != nil {
		return fail(err, "resolve country")
	}
	titleID, err := d.Store.GetOrCreate(runCtx, database.EntityJobTitle, params.Term)
	if err != nil {
		return fail(err, "resolve job title")
	}
	keywords, err := d.Store.Keywords(runCtx, titleID)
	if err != nil {
		return fail(err, "load keywords")
	}
	keywords = append(keywords, d.Keywords...)
	log.Infof("🔑 Loaded %d reject keywords", len(keywords))

	sess, err := d.Browser(runCtx)
	if err != nil {
		return fail(err, "open browser")
	}
	defer func() {
		if err := sess.Close(); err != nil {
			log.Warnf("⚠️ Failed to close browser: %v", err)
		}
	}()

	log.Infof("🕷️ Starting %s scraper", d.Scraper.Name())
	records, scrapeErr := d.Scraper.Scrape(runCtx, sess.Page(), scraper.Query{
		Country:  params.Country,
		Term:     params.Term,
		Keywords: keywords,
	})
	log.Infof("📦 Scraper returned %d records", len(records))

	// The run context may already be cancelled here.
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	saved, persistErr := persist(pctx, d, countryID, titleID, records)
	if persistErr != nil {
		log.Errorf("❌ Failed to persist jobs: %v", persistErr)
	}
	if d.ExportDir != "" && len(saved) > 0 {
		if path, err := saveJobs(d.ExportDir, saved); err != nil {
			log.Warnf("⚠️ Failed to export jobs: %v", err)
		} else {
			log.Infof("📁 Results saved to %s", path)
		}
	}
	report(pctx, d, log, saved, len(records))

	if restarting(runCtx, scrapeErr, d.Plane) {
		log.Info("🔄 Run interrupted for restart")
		return OutcomeRestart, persistErr
	}
	if scrapeErr != nil {
		log.Errorf("❌ Scrape failed: %v", scrapeErr)
		if d.Screenshots != nil {
			if _, err := d.Screenshots.CaptureAndLog(sess.Page(), "run_failed", "Capturing page after failure"); err != nil {
				log.Warnf("⚠️ No failure screenshot: %v", err)
			}
		}
		if d.Reporter != nil {
			_ = d.Reporter.SendError(pctx, scrapeErr)
		}
		return OutcomeDone, errors.CombineErrors(errors.Wrap(scrapeErr, "scrape"), persistErr)
	}

	log.Info("🏁 Execution finished.")
	return OutcomeDone, persistErr
}

// Supervise runs until a run ends without a restart request. A restart that
// arrives after a run has wound down still triggers a relaunch.
func Supervise(ctx context.Context, d Deps) error {
	for attempt := 1; ; attempt++ {
		out, err := Run(ctx, d)
		if err != nil {
			return err
		}
		queued := d.Plane != nil && d.Plane.State().RestartRequested
		if out != OutcomeRestart && !queued {
			return nil
		}
		if ctx.Err() != nil {
			return context.Cause(ctx)
		}
		if d.Log != nil {
			d.Log.Infof("🔁 Relaunching (run %d)", attempt+1)
		}
	}
}

func searchParams(ctx context.Context, d Deps) (models.SearchParams, error) {
	p, ok, err := d.Store.SearchParams(ctx)
	if err != nil {
		return p, err
	}
	if !ok || p.Country == "" || p.Term == "" {
		return d.Defaults, nil
	}
	return p, nil
}

func restarting(ctx context.Context, err error, p Plane) bool {
	if errors.Is(err, control.ErrRestart) || errors.Is(context.Cause(ctx), control.ErrRestart) {
		return true
	}
	return p != nil && p.State().RestartRequested
}

// persist inserts the records not yet in the ledger and returns them. The
// ones inserted before a failing insert still go into the ledger.
func persist(ctx context.Context, d Deps, countryID, titleID int64, records []models.JobRecord) ([]models.JobRecord, error) {
	var insertErr error
	saved := make([]models.JobRecord, 0, len(records))
	for _, rec := range records {
		if d.Seen != nil && d.Seen.IsSeen(rec) {
			continue
		}
		if err := d.Store.InsertJob(ctx, countryID, titleID, rec); err != nil {
			insertErr = err
			break
		}
		saved = append(saved, rec)
	}
	if d.Seen != nil && len(saved) > 0 {
		if err := d.Seen.Add(saved); err != nil {
			return saved, errors.CombineErrors(insertErr, errors.Wrap(err, "update seen jobs"))
		}
	}
	return saved, insertErr
}

func report(ctx context.Context, d Deps, log *zap.SugaredLogger, saved []models.JobRecord, scraped int) {
	if d.Reporter == nil {
		return
	}
	for _, job := range saved {
		if err := d.Reporter.SendJob(ctx, job); err != nil {
			log.Warnf("⚠️ Failed to send job %q: %v", job.Title, err)
		}
	}
	msg := formatSummary(d.Scraper.Name(), len(saved), scraped)
	if err := d.Reporter.SendStatus(ctx, msg); err != nil {
		log.Warnf("⚠️ Failed to send status: %v", err)
	}
}

func formatSummary(site string, saved, scraped int) string {
	return fmt.Sprintf("%s: %d new jobs saved, %d skipped", site, saved, scraped-saved)
}
