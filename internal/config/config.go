// internal/config/config.go
//
// This package handles configuration and the ~/.airwave directory structure.
// Every machine that runs Airwave gets a .airwave/ folder in the user's home.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// AirwaveDirName is the name of the directory we create in the user's home.
	AirwaveDirName = ".airwave"

	defaultUserID       = "presenter"
	defaultLLMAPIURL    = "https://api.openai.com/v1/chat/completions"
	defaultLLMModel     = "gpt-4o-mini"
	defaultFetchLimit   = 10
	defaultDatabaseFile = "airwave.db"
)

const defaultAppConfigYAML = `# airwave configuration
version: 1

# Identity used for profiles and script ownership.
user: presenter

llm:
  api_url: https://api.openai.com/v1/chat/completions
  model: gpt-4o-mini
  # Leave empty to run with the built-in mock completer.
  api_key: ""

news:
  limit: 10
  # Optional category filter, e.g. [politics, sports]. Empty keeps everything.
  sources:
    - name: bbc-world
      feed: https://feeds.bbci.co.uk/news/world/rss.xml
    - name: reuters-top
      feed: https://www.reutersagency.com/feed/
`

// NewsSourceRef declares one news source entry inside ~/.airwave/config.yaml.
// Feed is an RSS URL; Page is an optional HTML page scraped when the feed
// cannot be read.
type NewsSourceRef struct {
	Name string `yaml:"name"`
	Feed string `yaml:"feed,omitempty"`
	Page string `yaml:"page,omitempty"`
}

// LLMConfig captures the chat-completions endpoint settings.
type LLMConfig struct {
	APIURL string `yaml:"api_url"`
	Model  string `yaml:"model"`
	APIKey string `yaml:"api_key,omitempty"`
}

// NewsConfig captures fetch preferences.
type NewsConfig struct {
	Limit      int             `yaml:"limit"`
	Categories []string        `yaml:"categories,omitempty"`
	Sources    []NewsSourceRef `yaml:"sources"`
}

// AppConfig models ~/.airwave/config.yaml.
type AppConfig struct {
	Version int        `yaml:"version"`
	User    string     `yaml:"user"`
	LLM     LLMConfig  `yaml:"llm"`
	News    NewsConfig `yaml:"news"`
}

// Config holds the runtime configuration for Airwave.
type Config struct {
	// AirwaveDir is the on-disk data directory, normally ~/.airwave.
	AirwaveDir string

	// DBPathOverride, when non-empty, wins over the default database location.
	DBPathOverride string

	App AppConfig
}

// InitAirwaveDir creates the .airwave directory structure under home.
// This is called when the TUI or server starts up.
//
// Structure created:
// .airwave/
// ├── logs/         <- Session logbooks
// └── config.yaml   <- Written with defaults when missing
func InitAirwaveDir(airwaveDir string) error {
	dirs := []string{
		airwaveDir,
		filepath.Join(airwaveDir, "logs"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return ensureAppConfig(filepath.Join(airwaveDir, "config.yaml"))
}

// New creates a Config rooted at ~/.airwave, initializes the directory
// structure, loads config.yaml, and applies environment overrides.
func New() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("config: resolve home directory: %w", err)
	}
	return NewAt(filepath.Join(home, AirwaveDirName))
}

// NewAt is New with an explicit data directory. Tests use it with t.TempDir.
func NewAt(airwaveDir string) (*Config, error) {
	if err := InitAirwaveDir(airwaveDir); err != nil {
		return nil, fmt.Errorf("config: init %s: %w", airwaveDir, err)
	}
	cfg := &Config{
		AirwaveDir: airwaveDir,
		App:        defaultAppConfig(),
	}
	if err := cfg.loadAppConfig(); err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

// ConfigPath returns the on-disk location for the config file. The
// AIRWAVE_CONFIG environment variable relocates it.
func (c *Config) ConfigPath() string {
	if path := os.Getenv("AIRWAVE_CONFIG"); path != "" {
		return path
	}
	return filepath.Join(c.AirwaveDir, "config.yaml")
}

// LogsDir returns the path to the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.AirwaveDir, "logs")
}

// LogbookPath returns the session logbook file.
func (c *Config) LogbookPath() string {
	return filepath.Join(c.LogsDir(), "session.log")
}

// DBPath returns the sqlite database location.
func (c *Config) DBPath() string {
	if c.DBPathOverride != "" {
		return c.DBPathOverride
	}
	return filepath.Join(c.AirwaveDir, defaultDatabaseFile)
}

// UserID returns the configured presenter identity.
func (c *Config) UserID() string {
	return c.App.User
}

// Sources returns the configured news sources.
func (c *Config) Sources() []NewsSourceRef {
	return c.App.News.Sources
}

func (c *Config) loadAppConfig() error {
	path := c.ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed AppConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.App = parsed
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("AIRWAVE_DB_PATH"); v != "" {
		c.DBPathOverride = v
	}
	if v := os.Getenv("AIRWAVE_LLM_API_KEY"); v != "" {
		c.App.LLM.APIKey = v
	}
	if v := os.Getenv("AIRWAVE_LLM_MODEL"); v != "" {
		c.App.LLM.Model = v
	}
	if v := os.Getenv("AIRWAVE_USER"); v != "" {
		c.App.User = v
	}
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Version: 1,
		User:    defaultUserID,
		LLM: LLMConfig{
			APIURL: defaultLLMAPIURL,
			Model:  defaultLLMModel,
		},
		News: NewsConfig{
			Limit: defaultFetchLimit,
		},
	}
}

func (ac *AppConfig) applyDefaults() {
	if ac.Version == 0 {
		ac.Version = 1
	}
	if ac.User == "" {
		ac.User = defaultUserID
	}
	if ac.LLM.APIURL == "" {
		ac.LLM.APIURL = defaultLLMAPIURL
	}
	if ac.LLM.Model == "" {
		ac.LLM.Model = defaultLLMModel
	}
	if ac.News.Limit <= 0 {
		ac.News.Limit = defaultFetchLimit
	}
}

func (ac *AppConfig) normalize() {
	ac.User = strings.TrimSpace(ac.User)
	ac.LLM.APIURL = strings.TrimSpace(ac.LLM.APIURL)
	ac.LLM.Model = strings.TrimSpace(ac.LLM.Model)
	for i := range ac.News.Sources {
		ac.News.Sources[i].Name = strings.TrimSpace(ac.News.Sources[i].Name)
		ac.News.Sources[i].Feed = strings.TrimSpace(ac.News.Sources[i].Feed)
		ac.News.Sources[i].Page = strings.TrimSpace(ac.News.Sources[i].Page)
	}
	for i := range ac.News.Categories {
		ac.News.Categories[i] = strings.ToLower(strings.TrimSpace(ac.News.Categories[i]))
	}
}

func (ac *AppConfig) validate() error {
	if ac.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if ac.User == "" {
		return fmt.Errorf("user is required")
	}
	for i, src := range ac.News.Sources {
		if src.Name == "" {
			return fmt.Errorf("news sources[%d]: name is required", i)
		}
		if src.Feed == "" && src.Page == "" {
			return fmt.Errorf("news sources[%d] (%s): feed or page is required", i, src.Name)
		}
	}
	return nil
}

func ensureAppConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultAppConfigYAML), 0644)
}
