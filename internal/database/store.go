package database

import (
	"context"
	"strings"

	"go-jobsearch-rpa/internal/models"
)

// Entity is a lookup table with a unique text column. Only the entities
// declared here exist, so their names are safe to format into SQL.
type Entity struct {
	table  string
	column string
}

var (
	EntityCountry  = Entity{table: "countries", column: "name"}
	EntityJobTitle = Entity{table: "job_titles", column: "title"}
)

func (e Entity) String() string { return e.table }

// Store is the persistence collaborator of a run.
type Store interface {
	// GetOrCreate returns the id of value in e, inserting it when missing.
	GetOrCreate(ctx context.Context, e Entity, value string) (int64, error)
	InsertJob(ctx context.Context, countryID, titleID int64, job models.JobRecord) error
	CountJobs(ctx context.Context) (int64, error)
	// Keywords returns the reject keywords of a job title in insertion order.
	Keywords(ctx context.Context, titleID int64) ([]string, error)
	AddKeyword(ctx context.Context, titleID int64, keyword string) error
	// SearchParams returns the newest saved search. ok is false when none
	// has been saved.
	SearchParams(ctx context.Context) (p models.SearchParams, ok bool, err error)
	SaveSearchParams(ctx context.Context, p models.SearchParams) error
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close()
}

// Open picks the backend from the URL: postgres:// and postgresql:// use
// PostgreSQL, anything else is a SQLite file path (an optional sqlite:
// prefix is stripped).
func Open(ctx context.Context, url string) (Store, error) {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return ConnectDB(ctx, url)
	}
	return OpenSQLite(ctx, strings.TrimPrefix(url, "sqlite:"))
}
