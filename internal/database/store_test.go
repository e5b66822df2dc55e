package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobsearch-rpa/internal/models"
)

func openTestStores(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()
	stores := map[string]Store{}

	sqlite, err := OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(sqlite.Close)
	stores["sqlite"] = sqlite

	if url := os.Getenv("TEST_DATABASE_URL"); url != "" && !testing.Short() {
		pg, err := ConnectDB(ctx, url)
		require.NoError(t, err)
		t.Cleanup(pg.Close)
		stores["postgres"] = pg
	}

	for name, s := range stores {
		require.NoError(t, s.Migrate(ctx), name)
	}
	return stores
}

func TestStore(t *testing.T) {
	for name, s := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			ukID, err := s.GetOrCreate(ctx, EntityCountry, "United Kingdom")
			require.NoError(t, err)
			again, err := s.GetOrCreate(ctx, EntityCountry, "United Kingdom")
			require.NoError(t, err)
			assert.Equal(t, ukID, again, "get-or-create is idempotent")

			titleID, err := s.GetOrCreate(ctx, EntityJobTitle, "visa sponsorship")
			require.NoError(t, err)

			kws, err := s.Keywords(ctx, titleID)
			require.NoError(t, err)
			assert.Empty(t, kws)

			require.NoError(t, s.AddKeyword(ctx, titleID, "senior"))
			require.NoError(t, s.AddKeyword(ctx, titleID, "lead"))
			require.NoError(t, s.AddKeyword(ctx, titleID, "senior"))
			kws, err = s.Keywords(ctx, titleID)
			require.NoError(t, err)
			assert.Equal(t, []string{"senior", "lead"}, kws)

			before, err := s.CountJobs(ctx)
			require.NoError(t, err)
			require.NoError(t, s.InsertJob(ctx, ukID, titleID, models.JobRecord{Title: "Go Developer", Company: "Acme"}))
			after, err := s.CountJobs(ctx)
			require.NoError(t, err)
			assert.Equal(t, before+1, after)

			require.NoError(t, s.Ping(ctx))
		})
	}
}

func TestSearchParamsNewestWins(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Migrate(ctx))

	_, ok, err := s.SearchParams(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SaveSearchParams(ctx, models.SearchParams{Country: "Ireland", Term: "golang"}))
	require.NoError(t, s.SaveSearchParams(ctx, models.SearchParams{Country: "United Kingdom", Term: "platform engineer"}))

	p, ok, err := s.SearchParams(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.SearchParams{Country: "United Kingdom", Term: "platform engineer"}, p)
}

func TestOpenCreatesSQLiteFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "jobsearch.db")

	s, err := Open(ctx, "sqlite:"+path)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Migrate(ctx))

	_, err = os.Stat(path)
	assert.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
}

func TestEntityString(t *testing.T) {
	assert.Equal(t, "countries", EntityCountry.String())
	assert.Equal(t, "job_titles", EntityJobTitle.String())
}
