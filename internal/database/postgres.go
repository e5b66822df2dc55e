package database

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-jobsearch-rpa/internal/models"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS countries (
		id BIGSERIAL PRIMARY KEY,
		name TEXT UNIQUE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS job_titles (
		id BIGSERIAL PRIMARY KEY,
		title TEXT UNIQUE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS jobs (
		id BIGSERIAL PRIMARY KEY,
		country_id BIGINT REFERENCES countries(id),
		job_title_id BIGINT REFERENCES job_titles(id),
		title TEXT,
		company TEXT,
		location TEXT,
		description TEXT,
		date_scraped TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS keywords (
		id BIGSERIAL PRIMARY KEY,
		job_title_id BIGINT NOT NULL REFERENCES job_titles(id),
		keyword TEXT NOT NULL,
		UNIQUE (job_title_id, keyword)
	)`,
	`CREATE TABLE IF NOT EXISTS search_params (
		id BIGSERIAL PRIMARY KEY,
		country TEXT NOT NULL,
		search_term TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// Repository is the PostgreSQL store.
type Repository struct {
	db *pgxpool.Pool
}

var _ Store = (*Repository)(nil)

func ConnectDB(ctx context.Context, connString string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse database url")
	}

	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = time.Hour

	// Connection poolers in transaction mode (PgBouncer, Supabase) do not
	// support prepared statements, so the statement cache stays off.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, errors.Wrap(err, "unable to connect to database")
	}

	// Ping to ensure connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "database unreachable")
	}

	return &Repository{db: pool}, nil
}

func (r *Repository) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *Repository) Migrate(ctx context.Context) error {
	for _, stmt := range postgresSchema {
		if _, err := r.db.Exec(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to migrate schema")
		}
	}
	return nil
}

// ---------------- LOOKUP OPERATIONS ----------------

func (r *Repository) GetOrCreate(ctx context.Context, e Entity, value string) (int64, error) {
	var id int64

	// Try to get it first
	err := r.db.QueryRow(ctx, fmt.Sprintf("SELECT id FROM %s WHERE %s = $1", e.table, e.column), value).Scan(&id)

	if errors.Is(err, pgx.ErrNoRows) {
		// Doesn't exist; a concurrent insert turns into a no-op update
		query := fmt.Sprintf(`
			INSERT INTO %[1]s (%[2]s) VALUES ($1)
			ON CONFLICT (%[2]s) DO UPDATE SET %[2]s = EXCLUDED.%[2]s
			RETURNING id`, e.table, e.column)
		err = r.db.QueryRow(ctx, query, value).Scan(&id)
	}

	if err != nil {
		return 0, errors.Wrapf(err, "failed to get or create %s %q", e, value)
	}
	return id, nil
}

// ---------------- JOB OPERATIONS ----------------

func (r *Repository) InsertJob(ctx context.Context, countryID, titleID int64, job models.JobRecord) error {
	query := `
		INSERT INTO jobs (country_id, job_title_id, title, company, location, description, date_scraped)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.Exec(ctx, query, countryID, titleID, job.Title, job.Company, job.Location, job.Description, time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "failed to insert job")
	}
	return nil
}

func (r *Repository) CountJobs(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, "SELECT count(*) FROM jobs").Scan(&n); err != nil {
		return 0, errors.Wrap(err, "failed to count jobs")
	}
	return n, nil
}

// ---------------- SEARCH OPERATIONS ----------------

func (r *Repository) Keywords(ctx context.Context, titleID int64) ([]string, error) {
	rows, err := r.db.Query(ctx, "SELECT keyword FROM keywords WHERE job_title_id = $1 ORDER BY id", titleID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load keywords")
	}
	keywords, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, errors.Wrap(err, "failed to load keywords")
	}
	return keywords, nil
}

func (r *Repository) AddKeyword(ctx context.Context, titleID int64, keyword string) error {
	_, err := r.db.Exec(ctx,
		"INSERT INTO keywords (job_title_id, keyword) VALUES ($1, $2) ON CONFLICT (job_title_id, keyword) DO NOTHING",
		titleID, keyword)
	if err != nil {
		return errors.Wrap(err, "failed to add keyword")
	}
	return nil
}

func (r *Repository) SearchParams(ctx context.Context) (models.SearchParams, bool, error) {
	var p models.SearchParams
	err := r.db.QueryRow(ctx, "SELECT country, search_term FROM search_params ORDER BY id DESC LIMIT 1").
		Scan(&p.Country, &p.Term)
	if errors.Is(err, pgx.ErrNoRows) {
		return p, false, nil
	}
	if err != nil {
		return p, false, errors.Wrap(err, "failed to load search params")
	}
	return p, true, nil
}

func (r *Repository) SaveSearchParams(ctx context.Context, p models.SearchParams) error {
	_, err := r.db.Exec(ctx, "INSERT INTO search_params (country, search_term) VALUES ($1, $2)", p.Country, p.Term)
	if err != nil {
		return errors.Wrap(err, "failed to save search params")
	}
	return nil
}
