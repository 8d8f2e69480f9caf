package config

import (
	"errors"
	"feedwords/analysis"
	"feedwords/feeds"
	"feedwords/models"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultPath is where the configuration file is looked up when no path is given
const DefaultPath = "config/feedwords.toml"

// TomlLimits bounds the analysis payload, 0 or less disables a cap
type TomlLimits struct {
	Global  int `toml:"global"`
	PerFeed int `toml:"per_feed"`
	Sources int `toml:"sources"`
}

// TomlFetch configures feed fetching
type TomlFetch struct {
	MaxEntries int    `toml:"max_entries"`
	Timeout    string `toml:"timeout"` // Go duration, e.g. "30s"
	UserAgent  string `toml:"user_agent"`
	Retries    int    `toml:"retries"`
}

// TomlServer configures the HTTP server
type TomlServer struct {
	CorsOrigins string `toml:"cors_origins"`
}

// Config represents the top-level configuration
type Config struct {
	Limit  TomlLimits `toml:"limits"`
	Fetch  TomlFetch  `toml:"fetch"`
	Server TomlServer `toml:"server"`

	// Replaces the built-in feed catalog when not empty
	Feeds []models.Feed `toml:"catalog"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	limits := analysis.DefaultLimits()
	fetch := feeds.DefaultFetcherConfig()
	return &Config{
		Limit: TomlLimits{
			Global:  limits.Global,
			PerFeed: limits.PerFeed,
			Sources: limits.Sources,
		},
		Fetch: TomlFetch{
			MaxEntries: fetch.MaxEntries,
			Timeout:    fetch.Timeout.String(),
			UserAgent:  fetch.UserAgent,
			Retries:    fetch.Retries,
		},
		Server: TomlServer{
			CorsOrigins: "*",
		},
	}
}

// LoadConfig reads the TOML file at path on top of the defaults.
// A missing file is not an error and yields the defaults.
func LoadConfig(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if _, err := c.timeout(); err != nil {
		return err
	}
	if c.Fetch.Retries < 0 {
		return fmt.Errorf("fetch.retries must not be negative, got %d", c.Fetch.Retries)
	}
	for i, feed := range c.Feeds {
		if feed.Name == "" || feed.URL == "" {
			return fmt.Errorf("catalog entry %d needs both name and url", i+1)
		}
	}
	return nil
}

func (c *Config) timeout() (time.Duration, error) {
	if c.Fetch.Timeout == "" {
		return 0, nil
	}
	timeout, err := time.ParseDuration(c.Fetch.Timeout)
	if err != nil {
		return 0, fmt.Errorf("fetch.timeout: %w", err)
	}
	return timeout, nil
}

func (c *Config) Limits() analysis.Limits {
	return analysis.Limits{
		Global:  c.Limit.Global,
		PerFeed: c.Limit.PerFeed,
		Sources: c.Limit.Sources,
	}
}

// FetcherConfig returns the fetcher settings, zero values fall back to the fetcher defaults
func (c *Config) FetcherConfig() feeds.FetcherConfig {
	timeout, _ := c.timeout()
	config := feeds.DefaultFetcherConfig()
	config.MaxEntries = c.Fetch.MaxEntries
	config.Timeout = timeout
	config.UserAgent = c.Fetch.UserAgent
	config.Retries = c.Fetch.Retries
	return config
}

// Catalog returns the configured feed catalog or the built-in one
func (c *Config) Catalog() []models.Feed {
	if len(c.Feeds) > 0 {
		catalog := make([]models.Feed, len(c.Feeds))
		copy(catalog, c.Feeds)
		return catalog
	}
	return feeds.Catalog()
}
