package main

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"go-jobsearch-rpa/internal/config"
	"go-jobsearch-rpa/internal/logger"
)

var (
	configPath string
	jsonLogs   bool
	cfg        *config.Config
	log        *zap.SugaredLogger
)

var rootCmd = &cobra.Command{
	Use:   "scraper",
	Short: "Glassdoor job search RPA",
	Long: `scraper drives a real browser through Glassdoor job listings, filters
them by reject keywords and stores the survivors.

While a run is active it can be paused, resumed, restarted or killed over
HTTP, Telegram or process signals.

Examples:
  scraper run                       # Run the scrape (default)
  scraper config                    # Show the effective configuration
  scraper db migrate                # Create the schema
  scraper db keyword add senior     # Reject cards mentioning "senior"`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		log, err = logger.New(cfg.Debug, jsonLogs)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
	RunE: runScrape,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Path to the YAML config file")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Log JSON lines instead of console output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(dbCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Printfln("%+v", err)
		os.Exit(1)
	}
}
