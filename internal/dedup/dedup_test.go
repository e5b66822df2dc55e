package dedup

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobsearch-rpa/internal/models"
)

func TestJobCache_AddAndReload(t *testing.T) {
	dir := t.TempDir()
	jc, err := NewJobCache(dir, nil)
	require.NoError(t, err)

	rec := models.JobRecord{Title: "Go Developer", Company: "Acme", Location: "London"}
	assert.False(t, jc.IsSeen(rec))

	require.NoError(t, jc.Add([]models.JobRecord{rec}))
	assert.True(t, jc.IsSeen(rec))

	// Same card with different casing and spacing is the same record.
	assert.True(t, jc.IsSeen(models.JobRecord{Title: "go  developer", Company: "ACME", Location: "London"}))

	reloaded, err := NewJobCache(dir, nil)
	require.NoError(t, err)
	assert.True(t, reloaded.IsSeen(rec))
	assert.Equal(t, 1, reloaded.Len())
}

func TestJobCache_ExpiredEntriesDropped(t *testing.T) {
	dir := t.TempDir()
	old := time.Now().Add(-31 * 24 * time.Hour).UnixMilli()
	fresh := time.Now().Add(-time.Hour).UnixMilli()
	data, err := json.Marshal([]seenEntry{
		{Key: "old|acme|london", Timestamp: old},
		{Key: "fresh|acme|london", Timestamp: fresh},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), data, 0o644))

	jc, err := NewJobCache(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, jc.Len())
	assert.True(t, jc.IsSeen(models.JobRecord{Title: "Fresh", Company: "Acme", Location: "London"}))
	assert.False(t, jc.IsSeen(models.JobRecord{Title: "Old", Company: "Acme", Location: "London"}))
}

func TestJobCache_CorruptLedgerStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("{not json"), 0o644))

	jc, err := NewJobCache(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, jc.Len())
}

func TestJobCache_AddWithoutChangesSkipsWrite(t *testing.T) {
	dir := t.TempDir()
	jc, err := NewJobCache(dir, nil)
	require.NoError(t, err)

	require.NoError(t, jc.Add(nil))
	_, err = os.Stat(filepath.Join(dir, FileName))
	assert.True(t, os.IsNotExist(err))
}
