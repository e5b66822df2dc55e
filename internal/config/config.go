// Load envs from .env
// Load YAML config
// Override with env vars
// Provide default values
// Validate config

package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"go-jobsearch-rpa/internal/browser"
	"go-jobsearch-rpa/internal/scraper/glassdoor"
)

// DefaultPath is read when no --config flag is given.
const DefaultPath = "configs/config.yaml"

// ControlOff disables the HTTP control API.
const ControlOff = "off"

type Config struct {
	// Search criteria; a row in search_params takes precedence.
	Country    string   `yaml:"country"`
	SearchTerm string   `yaml:"search_term"`
	Keywords   []string `yaml:"keywords"`
	StartURL   string   `yaml:"start_url"`
	FromAge    int      `yaml:"from_age"`

	// Browser
	Browser              string `yaml:"browser"`
	Driver               string `yaml:"driver"`
	Headless             bool   `yaml:"headless"`
	UsePersistentBrowser bool   `yaml:"use_persistent_browser"`
	BrowserProfilePath   string `yaml:"browser_profile_path"`
	WaitTime             int    `yaml:"wait_time"`
	Debug                bool   `yaml:"debug"`

	// Collaborators
	DatabaseURL    string `yaml:"database_url"`
	TelegramToken  string `yaml:"telegram_token"`
	TelegramChatID int64  `yaml:"telegram_chat_id"`
	ControlAddr    string `yaml:"control_addr"`

	// Paths
	CookiesPath string `yaml:"cookies_path"`
	CachePath   string `yaml:"cache_path"`
	ExportDir   string `yaml:"export_dir"`

	Selectors map[string]string `yaml:"selectors"`
}

// Load reads .env, then the YAML file at path, then environment overrides,
// then fills defaults and validates. A missing YAML file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "error parsing %s", path)
		}
	case !os.IsNotExist(err):
		return nil, errors.Wrapf(err, "could not read %s", path)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString("COUNTRY", &c.Country)
	setString("SEARCH_TERM", &c.SearchTerm)
	setString("BROWSER", &c.Browser)
	setString("BROWSER_DRIVER", &c.Driver)
	setString("BROWSER_PROFILE_PATH", &c.BrowserProfilePath)
	setString("DATABASE_URL", &c.DatabaseURL)
	setString("TELEGRAM_BOT_TOKEN", &c.TelegramToken)
	setString("CONTROL_ADDR", &c.ControlAddr)
	setString("COOKIES_PATH", &c.CookiesPath)
	setString("CACHE_PATH", &c.CachePath)

	bools := map[string]*bool{
		"USE_PERSISTENT_BROWSER": &c.UsePersistentBrowser,
		"DEBUG":                  &c.Debug,
		"HEADLESS":               &c.Headless,
	}
	for key, dst := range bools {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return errors.Wrapf(err, "invalid %s", key)
			}
			*dst = b
		}
	}

	ints := map[string]*int{
		"WAIT_TIME": &c.WaitTime,
		"FROM_AGE":  &c.FromAge,
	}
	for key, dst := range ints {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return errors.Wrapf(err, "invalid %s", key)
			}
			*dst = n
		}
	}

	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return errors.Wrap(err, "invalid TELEGRAM_CHAT_ID")
		}
		c.TelegramChatID = id
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Country == "" {
		c.Country = "United Kingdom"
	}
	if c.SearchTerm == "" {
		c.SearchTerm = "visa sponsorship"
	}
	if c.StartURL == "" {
		c.StartURL = glassdoor.DefaultStartURL
	}
	if c.FromAge == 0 {
		c.FromAge = 14
	}
	if c.Browser == "" {
		c.Browser = "EDGE"
	}
	if c.Driver == "" {
		c.Driver = browser.DriverPlaywright
	}
	if c.WaitTime == 0 {
		c.WaitTime = 3
	}
	if c.BrowserProfilePath == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			base = os.TempDir()
		}
		c.BrowserProfilePath = filepath.Join(base, "RPA_Browser_Profile")
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = "data/jobsearch.db"
	}
	if c.ControlAddr == "" {
		c.ControlAddr = "127.0.0.1:8765"
	}
	if c.CachePath == "" {
		c.CachePath = ".cache"
	}
	if c.ExportDir == "" {
		c.ExportDir = "logs"
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.WaitTime < 0 {
		return errors.Newf("wait_time must not be negative, got %d", c.WaitTime)
	}
	if c.FromAge < 0 {
		return errors.Newf("from_age must not be negative, got %d", c.FromAge)
	}
	switch strings.ToLower(c.Driver) {
	case browser.DriverPlaywright, browser.DriverRod:
	default:
		return errors.WithHint(errors.Newf("unknown driver %q", c.Driver), "use playwright or rod")
	}
	if c.TelegramToken != "" && c.TelegramChatID == 0 {
		return errors.WithHint(errors.New("TELEGRAM_CHAT_ID is required when a bot token is set"),
			"set telegram_chat_id in the config file or TELEGRAM_CHAT_ID in .env")
	}
	sel, err := c.GlassdoorSelectors()
	if err != nil {
		return err
	}
	return sel.Validate()
}

// Wait is the element lookup timeout.
func (c *Config) Wait() time.Duration {
	return time.Duration(c.WaitTime) * time.Second
}

// GlassdoorSelectors returns the default selectors with the configured
// overrides applied.
func (c *Config) GlassdoorSelectors() (glassdoor.Selectors, error) {
	return glassdoor.DefaultSelectors().Override(c.Selectors)
}

// ControlEnabled reports whether the HTTP control API should listen.
func (c *Config) ControlEnabled() bool {
	return !strings.EqualFold(c.ControlAddr, ControlOff)
}

// TelegramEnabled reports whether both bot credentials are present.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

// ProfileDir is the persistent profile path, or "" for a fresh context.
func (c *Config) ProfileDir() string {
	if !c.UsePersistentBrowser {
		return ""
	}
	return c.BrowserProfilePath
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.TelegramToken != "" {
		keep := 4
		if len(c.TelegramToken) <= keep {
			keep = 0
		}
		c.TelegramToken = c.TelegramToken[:keep] + strings.Repeat("*", 8)
	}
	if i := strings.Index(c.DatabaseURL, "@"); i > 0 {
		if j := strings.Index(c.DatabaseURL, "://"); j > 0 && j < i {
			c.DatabaseURL = c.DatabaseURL[:j+3] + "****" + c.DatabaseURL[i:]
		}
	}
	return c
}
