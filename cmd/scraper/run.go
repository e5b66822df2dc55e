package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"go-jobsearch-rpa/internal/browser"
	"go-jobsearch-rpa/internal/control"
	"go-jobsearch-rpa/internal/database"
	"go-jobsearch-rpa/internal/dedup"
	"go-jobsearch-rpa/internal/models"
	"go-jobsearch-rpa/internal/notify"
	"go-jobsearch-rpa/internal/runner"
	"go-jobsearch-rpa/internal/scraper/glassdoor"
	"go-jobsearch-rpa/internal/telegram"
	"go-jobsearch-rpa/utils"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scrape, relaunching on operator restart",
	RunE:  runScrape,
}

func runScrape(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	log.Info("🚀 Starting job search RPA...")

	store, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.WithHint(err, "check database_url or DATABASE_URL")
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	seen, err := dedup.NewJobCache(cfg.CachePath, log)
	if err != nil {
		return err
	}

	var bot *telegram.Bot
	notifiers := notify.Multi{notify.NewConsole(os.Stdin, os.Stdout)}
	if cfg.TelegramEnabled() {
		bot, err = telegram.NewBot(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			return errors.Wrap(err, "failed to init Telegram bot")
		}
		log.Info("🤖 Telegram Bot initialized.")
		notifiers = append(notifiers, notify.NewTelegram(bot, log))
	}

	plane := control.NewPlane(notifiers, control.WithLogger(log))

	sources := []control.Source{control.NewSignals(log)}
	if cfg.ControlEnabled() {
		sources = append(sources, control.NewHTTP(cfg.ControlAddr, log))
	}
	if bot != nil {
		sources = append(sources, control.NewTelegram(bot, log))
	}
	go func() {
		if err := control.Serve(ctx, plane, log, sources...); err != nil {
			log.Errorf("❌ Control plane stopped: %v", err)
		}
	}()

	selectors, err := cfg.GlassdoorSelectors()
	if err != nil {
		return err
	}
	site := glassdoor.NewScraper(glassdoor.Config{
		StartURL:  cfg.StartURL,
		FromAge:   cfg.FromAge,
		Selectors: selectors,
		Timing:    glassdoor.DefaultTiming(cfg.Wait()),
		Debug:     cfg.Debug,
	}, plane, notifiers, log)

	deps := runner.Deps{
		Defaults: models.SearchParams{Country: cfg.Country, Term: cfg.SearchTerm},
		Keywords: cfg.Keywords,
		Store:    store,
		Seen:     seen,
		Browser: browser.NewFactory(browser.Options{
			Driver:      cfg.Driver,
			Browser:     cfg.Browser,
			Headless:    cfg.Headless,
			ProfileDir:  cfg.ProfileDir(),
			CookiesPath: cfg.CookiesPath,
			Log:         log,
		}),
		Scraper:   site,
		Plane:     plane,
		ExportDir: cfg.ExportDir,
		Log:       log,
	}
	if bot != nil {
		deps.Reporter = bot
	}
	if cfg.Debug {
		deps.Screenshots = utils.NewScreenShotDebugger(filepath.Join(cfg.ExportDir, "screenshots"), log)
	}

	return runner.Supervise(ctx, deps)
}
