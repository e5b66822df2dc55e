package runner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"

	"go-jobsearch-rpa/internal/models"
)

// saveJobs appends jobs to logs/job-search-YYYY-MM-DD.json so a restarted
// run adds to the day's file instead of replacing it.
func saveJobs(dir string, jobs []models.JobRecord) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create %s", dir)
	}

	filename := fmt.Sprintf("job-search-%s.json", time.Now().Format("2006-01-02"))
	path := filepath.Join(dir, filename)

	var all []models.JobRecord
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, &all); err != nil {
			return "", errors.Wrapf(err, "parse existing %s", path)
		}
	} else if !os.IsNotExist(err) {
		return "", errors.Wrapf(err, "read %s", path)
	}
	all = append(all, jobs...)

	data, err := json.MarshalIndent(all, "", " ")
	if err != nil {
		return "", errors.Wrap(err, "marshal jobs")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "write %s", path)
	}
	return path, nil
}
