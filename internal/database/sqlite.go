package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite"

	"go-jobsearch-rpa/internal/models"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS countries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS job_titles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS jobs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		country_id INTEGER,
		job_title_id INTEGER,
		title TEXT,
		company TEXT,
		location TEXT,
		description TEXT,
		date_scraped TEXT,
		FOREIGN KEY(country_id) REFERENCES countries(id),
		FOREIGN KEY(job_title_id) REFERENCES job_titles(id)
	)`,
	`CREATE TABLE IF NOT EXISTS keywords (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_title_id INTEGER NOT NULL,
		keyword TEXT NOT NULL,
		UNIQUE(job_title_id, keyword),
		FOREIGN KEY(job_title_id) REFERENCES job_titles(id)
	)`,
	`CREATE TABLE IF NOT EXISTS search_params (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		country TEXT NOT NULL,
		search_term TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
}

// SQLiteStore is the local file store.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (creating if needed) the database at path. ":memory:"
// gives a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.Wrapf(err, "create database directory for %s", path)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open sqlite %s", path)
	}
	// One writer; also keeps ":memory:" on a single connection.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "enable foreign keys")
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() {
	_ = s.db.Close()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	for _, stmt := range sqliteSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to migrate schema")
		}
	}
	return nil
}

func (s *SQLiteStore) GetOrCreate(ctx context.Context, e Entity, value string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT id FROM %s WHERE %s = ?", e.table, e.column), value).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		query := fmt.Sprintf(`
			INSERT INTO %[1]s (%[2]s) VALUES (?)
			ON CONFLICT (%[2]s) DO UPDATE SET %[2]s = excluded.%[2]s
			RETURNING id`, e.table, e.column)
		err = s.db.QueryRowContext(ctx, query, value).Scan(&id)
	}
	if err != nil {
		return 0, errors.Wrapf(err, "failed to get or create %s %q", e, value)
	}
	return id, nil
}

func (s *SQLiteStore) InsertJob(ctx context.Context, countryID, titleID int64, job models.JobRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO jobs (country_id, job_title_id, title, company, location, description, date_scraped)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		countryID, titleID, job.Title, job.Company, job.Location, job.Description, time.Now().Format(time.RFC3339))
	if err != nil {
		return errors.Wrap(err, "failed to insert job")
	}
	return nil
}

func (s *SQLiteStore) CountJobs(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM jobs").Scan(&n); err != nil {
		return 0, errors.Wrap(err, "failed to count jobs")
	}
	return n, nil
}

func (s *SQLiteStore) Keywords(ctx context.Context, titleID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT keyword FROM keywords WHERE job_title_id = ? ORDER BY id", titleID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load keywords")
	}
	defer rows.Close()

	var keywords []string
	for rows.Next() {
		var kw string
		if err := rows.Scan(&kw); err != nil {
			return nil, errors.Wrap(err, "failed to load keywords")
		}
		keywords = append(keywords, kw)
	}
	return keywords, errors.Wrap(rows.Err(), "failed to load keywords")
}

func (s *SQLiteStore) AddKeyword(ctx context.Context, titleID int64, keyword string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO keywords (job_title_id, keyword) VALUES (?, ?) ON CONFLICT (job_title_id, keyword) DO NOTHING",
		titleID, keyword)
	if err != nil {
		return errors.Wrap(err, "failed to add keyword")
	}
	return nil
}

func (s *SQLiteStore) SearchParams(ctx context.Context) (models.SearchParams, bool, error) {
	var p models.SearchParams
	err := s.db.QueryRowContext(ctx, "SELECT country, search_term FROM search_params ORDER BY id DESC LIMIT 1").
		Scan(&p.Country, &p.Term)
	if errors.Is(err, sql.ErrNoRows) {
		return p, false, nil
	}
	if err != nil {
		return p, false, errors.Wrap(err, "failed to load search params")
	}
	return p, true, nil
}

func (s *SQLiteStore) SaveSearchParams(ctx context.Context, p models.SearchParams) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO search_params (country, search_term, created_at) VALUES (?, ?, ?)",
		p.Country, p.Term, time.Now().Format(time.RFC3339))
	if err != nil {
		return errors.Wrap(err, "failed to save search params")
	}
	return nil
}
