package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"go-jobsearch-rpa/internal/dom"
)

// ScreenShotDebugger saves debug screenshots of the live page.
type ScreenShotDebugger struct {
	outputDir string
	log       *zap.SugaredLogger
}

func NewScreenShotDebugger(dir string, log *zap.SugaredLogger) *ScreenShotDebugger {
	if dir == "" {
		dir = filepath.Join(".", "logs", "screenshots")
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &ScreenShotDebugger{outputDir: dir, log: log}
}

// CaptureAndLog writes a PNG named name_<timestamp>.png and returns its path.
func (s *ScreenShotDebugger) CaptureAndLog(page dom.Page, name, message string) (string, error) {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	path := filepath.Join(s.outputDir, fmt.Sprintf("%s_%s.png", name, timestamp))
	s.log.Infof("📸 %s", message)

	png, err := page.Screenshot()
	if err != nil {
		s.log.Warnf("⚠️ Failed to capture screenshot: %v", err)
		return "", errors.Wrap(err, "capture screenshot")
	}
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create %s", s.outputDir)
	}
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return "", errors.Wrapf(err, "write %s", path)
	}

	s.log.Infof("   Screenshot saved: %s", path)
	return path, nil
}
