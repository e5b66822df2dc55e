// Package browser launches the automated browser and adapts it to dom.Page.
package browser

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"go-jobsearch-rpa/internal/dom"
)

const (
	DriverPlaywright = "playwright"
	DriverRod        = "rod"
)

// launchArgs hide the "controlled by automated software" markers.
var launchArgs = []string{
	"--disable-blink-features=AutomationControlled",
	"--disable-infobars",
}

// Options configures a browser session.
type Options struct {
	Driver string
	// Browser is EDGE, CHROME or CHROMIUM.
	Browser  string
	Headless bool
	// ProfileDir, when set, keeps the session in a persistent profile so a
	// manual login survives relaunches.
	ProfileDir  string
	CookiesPath string
	Log         *zap.SugaredLogger
}

// Session is an open browser with one page.
type Session interface {
	Page() dom.Page
	Close() error
}

// Open starts a session with the configured driver.
func Open(ctx context.Context, opts Options) (Session, error) {
	if opts.Log == nil {
		opts.Log = zap.NewNop().Sugar()
	}
	switch strings.ToLower(opts.Driver) {
	case "", DriverPlaywright:
		return NewPlaywright(ctx, opts)
	case DriverRod:
		return NewRod(ctx, opts)
	}
	return nil, errors.Newf("unknown browser driver %q", opts.Driver)
}

// channel maps the configured browser name to a Playwright channel.
// Chromium uses the bundled build.
func channel(name string) string {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "EDGE", "MSEDGE":
		return "msedge"
	case "CHROME":
		return "chrome"
	case "CHROMIUM":
		return ""
	}
	return strings.ToLower(name)
}

// Factory opens sessions for the runner.
type Factory func(ctx context.Context) (Session, error)

// NewFactory binds opts into a Factory.
func NewFactory(opts Options) Factory {
	return func(ctx context.Context) (Session, error) {
		return Open(ctx, opts)
	}
}
