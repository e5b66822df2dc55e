// Package dedup remembers which job records were already persisted so a
// relaunched run does not store the same card twice.
package dedup

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"go-jobsearch-rpa/internal/filter"
	"go-jobsearch-rpa/internal/models"
)

// FileName is the ledger file inside the cache directory.
const FileName = "seen_jobs.json"

// DefaultTTL is how long a persisted record stays remembered.
const DefaultTTL = 30 * 24 * time.Hour

type seenEntry struct {
	Key       string `json:"key"`
	Timestamp int64  `json:"timestamp"`
}

type JobCache struct {
	mu       sync.Mutex
	filePath string
	ttl      time.Duration
	now      func() time.Time
	log      *zap.SugaredLogger
	seen     map[string]int64
}

// NewJobCache creates or loads the ledger in cacheDir. An unreadable or
// corrupt ledger is logged and treated as empty.
func NewJobCache(cacheDir string, log *zap.SugaredLogger) (*JobCache, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create cache directory %s", cacheDir)
	}
	jc := &JobCache{
		filePath: filepath.Join(cacheDir, FileName),
		ttl:      DefaultTTL,
		now:      time.Now,
		log:      log,
		seen:     make(map[string]int64),
	}
	jc.load()
	return jc, nil
}

// IsSeen reports whether rec was persisted within the TTL.
func (jc *JobCache) IsSeen(rec models.JobRecord) bool {
	key := filter.Key(rec)
	jc.mu.Lock()
	defer jc.mu.Unlock()
	_, exists := jc.seen[key]
	return exists
}

// Len returns the number of remembered records.
func (jc *JobCache) Len() int {
	jc.mu.Lock()
	defer jc.mu.Unlock()
	return len(jc.seen)
}

// Add remembers recs and writes the ledger when anything changed.
func (jc *JobCache) Add(recs []models.JobRecord) error {
	jc.mu.Lock()
	defer jc.mu.Unlock()

	now := jc.now().UnixMilli()
	changed := false
	for _, rec := range recs {
		key := filter.Key(rec)
		if _, exists := jc.seen[key]; !exists {
			jc.seen[key] = now
			changed = true
		}
	}

	if !changed {
		return nil
	}
	return jc.save()
}

func (jc *JobCache) load() {
	data, err := os.ReadFile(jc.filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			jc.log.Warnf("⚠️ Failed to read %s: %v", FileName, err)
		}
		return
	}

	var entries []seenEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		jc.log.Warnf("⚠️ Failed to parse %s: %v", FileName, err)
		return
	}

	cutoff := jc.now().Add(-jc.ttl).UnixMilli()
	loaded := 0
	for _, e := range entries {
		if e.Timestamp > cutoff {
			jc.seen[e.Key] = e.Timestamp
			loaded++
		}
	}
	jc.log.Infof("📋 Loaded %d previously seen jobs (%d expired and removed)", loaded, len(entries)-loaded)
}

// save must be called with jc.mu held.
func (jc *JobCache) save() error {
	entries := make([]seenEntry, 0, len(jc.seen))
	for key, ts := range jc.seen {
		entries = append(entries, seenEntry{Key: key, Timestamp: ts})
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal seen jobs")
	}
	// Write then rename so a crash never leaves a truncated ledger.
	tmp := jc.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", tmp)
	}
	if err := os.Rename(tmp, jc.filePath); err != nil {
		return errors.Wrapf(err, "replace %s", jc.filePath)
	}
	jc.log.Debugf("💾 Saved %d seen jobs to cache", len(entries))
	return nil
}
