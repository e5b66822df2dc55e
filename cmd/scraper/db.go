package main

import (
	"context"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"go-jobsearch-rpa/internal/database"
	"go-jobsearch-rpa/internal/models"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the job database",
	Long: `Manage the job database.

Examples:
  scraper db migrate                          # Create tables
  scraper db ping                             # Check connectivity and count jobs
  scraper db keyword add senior               # Add a reject keyword for the search term
  scraper db keyword list
  scraper db params set "Ireland" "golang"    # Store the search criteria`,
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the schema if missing",
	RunE: withStore(func(ctx context.Context, s database.Store, args []string) error {
		if err := s.Migrate(ctx); err != nil {
			return err
		}
		pterm.Success.Println("Schema is up to date")
		return nil
	}),
}

var dbPingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check the database connection",
	RunE: withStore(func(ctx context.Context, s database.Store, args []string) error {
		if err := s.Ping(ctx); err != nil {
			return err
		}
		n, err := s.CountJobs(ctx)
		if err != nil {
			return err
		}
		pterm.Success.Printfln("Database reachable, %d jobs stored", n)
		return nil
	}),
}

var dbKeywordCmd = &cobra.Command{
	Use:   "keyword",
	Short: "Manage reject keywords of the configured search term",
}

var dbKeywordAddCmd = &cobra.Command{
	Use:   "add <keyword>...",
	Short: "Add reject keywords",
	Args:  cobra.MinimumNArgs(1),
	RunE: withStore(func(ctx context.Context, s database.Store, args []string) error {
		titleID, err := currentTitle(ctx, s)
		if err != nil {
			return err
		}
		added := 0
		for _, kw := range args {
			kw = strings.TrimSpace(kw)
			if kw == "" {
				continue
			}
			if err := s.AddKeyword(ctx, titleID, kw); err != nil {
				return err
			}
			added++
		}
		pterm.Success.Printfln("Added %d keywords", added)
		return nil
	}),
}

var dbKeywordListCmd = &cobra.Command{
	Use:   "list",
	Short: "List reject keywords",
	RunE: withStore(func(ctx context.Context, s database.Store, args []string) error {
		titleID, err := currentTitle(ctx, s)
		if err != nil {
			return err
		}
		kws, err := s.Keywords(ctx, titleID)
		if err != nil {
			return err
		}
		items := make([]pterm.BulletListItem, 0, len(kws))
		for _, kw := range kws {
			items = append(items, pterm.BulletListItem{Level: 0, Text: kw})
		}
		return pterm.DefaultBulletList.WithItems(items).Render()
	}),
}

var dbParamsCmd = &cobra.Command{
	Use:   "params",
	Short: "Manage stored search criteria",
}

var dbParamsSetCmd = &cobra.Command{
	Use:   "set <country> <search term>",
	Short: "Store the search criteria used by the next run",
	Args:  cobra.ExactArgs(2),
	RunE: withStore(func(ctx context.Context, s database.Store, args []string) error {
		p := models.SearchParams{Country: args[0], Term: args[1]}
		if err := s.SaveSearchParams(ctx, p); err != nil {
			return err
		}
		pterm.Success.Printfln("Next run searches %q in %s", p.Term, p.Country)
		return nil
	}),
}

func init() {
	dbKeywordCmd.AddCommand(dbKeywordAddCmd, dbKeywordListCmd)
	dbParamsCmd.AddCommand(dbParamsSetCmd)
	dbCmd.AddCommand(dbMigrateCmd, dbPingCmd, dbKeywordCmd, dbParamsCmd)
}

// withStore opens and migrates the configured store for one command.
func withStore(fn func(ctx context.Context, s database.Store, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := database.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.Migrate(ctx); err != nil {
			return err
		}
		return fn(ctx, s, args)
	}
}

// currentTitle resolves the job title keywords belong to: the stored
// search term, or the configured one.
func currentTitle(ctx context.Context, s database.Store) (int64, error) {
	p, ok, err := s.SearchParams(ctx)
	if err != nil {
		return 0, err
	}
	term := cfg.SearchTerm
	if ok && p.Term != "" {
		term = p.Term
	}
	return s.GetOrCreate(ctx, database.EntityJobTitle, term)
}
