// Package config loads heycochrane settings from TOML files and the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "heycochrane.toml"

// Config holds all configuration for heycochrane
type Config struct {
	Data     string        `toml:"data"`
	Template string        `toml:"template"`
	Output   string        `toml:"output"`
	Tags     string        `toml:"tags"` // empty means tags.yml next to the data file
	LogLevel string        `toml:"log_level"`
	Publish  PublishConfig `toml:"publish"`
	Watch    WatchConfig   `toml:"watch"`
	Dates    DatesConfig   `toml:"dates"`
	Update   UpdateConfig  `toml:"update"`
}

// PublishConfig holds git publishing settings
type PublishConfig struct {
	Remote  string `toml:"remote"`
	Branch  string `toml:"branch"`
	Message string `toml:"message"`
	NoPush  bool   `toml:"no_push"`
}

// WatchConfig holds watch mode settings
type WatchConfig struct {
	Patterns []string `toml:"patterns"`
	Debounce string   `toml:"debounce"`
}

// GetDebounce parses and returns the debounce duration
func (c *WatchConfig) GetDebounce() time.Duration {
	d, err := time.ParseDuration(c.Debounce)
	if err != nil {
		return 100 * time.Millisecond
	}
	return d
}

// DatesConfig holds publication date lookup settings
type DatesConfig struct {
	Workers     int     `toml:"workers"`
	CrossrefURL string  `toml:"crossref_url"`
	CochraneURL string  `toml:"cochrane_url"`
	Timeout     string  `toml:"timeout"`
	CrossrefRPS float64 `toml:"crossref_rps"`
	CochraneRPS float64 `toml:"cochrane_rps"`
}

// GetTimeout parses and returns the timeout duration
func (c *DatesConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// UpdateConfig holds review discovery and drafting settings
type UpdateConfig struct {
	RSSURL          string       `toml:"rss_url"`
	NewsURL         string       `toml:"news_url"`
	CochraneURL     string       `toml:"cochrane_url"`
	MaxReviews      int          `toml:"max_reviews"`
	Timeout         string       `toml:"timeout"`
	RPS             float64      `toml:"rps"`
	SummarizePrompt string       `toml:"summarize_prompt"` // file path, empty for the built-in prompt
	EnrichPrompt    string       `toml:"enrich_prompt"`    // file path, empty for the built-in prompt
	Gemini          GeminiConfig `toml:"gemini"`
}

// GetTimeout parses and returns the timeout duration
func (c *UpdateConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Data:     "summaries.yml",
		Template: "template.html",
		Output:   "index.html",
		LogLevel: "info",
		Publish: PublishConfig{
			Remote:  "origin",
			Message: "Update site",
		},
		Watch: WatchConfig{
			Debounce: "100ms",
		},
		Dates: DatesConfig{
			Workers:     5,
			CrossrefURL: "https://api.crossref.org",
			CochraneURL: "https://www.cochrane.org",
			Timeout:     "15s",
			CrossrefRPS: 10,
			CochraneRPS: 2,
		},
		Update: UpdateConfig{
			RSSURL:      "https://www.cochranelibrary.com/cdsr/table-of-contents/rss.xml",
			NewsURL:     "https://www.cochrane.org/news",
			CochraneURL: "https://www.cochrane.org",
			MaxReviews:  10,
			Timeout:     "30s",
			RPS:         2,
			Gemini: GeminiConfig{
				Model: "gemini-2.0-flash",
			},
		},
	}
}

// Load loads configuration from files with environment overrides.
// Later files override earlier ones; missing files are skipped.
func Load(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("HEYCOCHRANE_DATA"); v != "" {
		config.Data = v
	}
	if v := os.Getenv("HEYCOCHRANE_TEMPLATE"); v != "" {
		config.Template = v
	}
	if v := os.Getenv("HEYCOCHRANE_OUTPUT"); v != "" {
		config.Output = v
	}
	if v := os.Getenv("HEYCOCHRANE_TAGS"); v != "" {
		config.Tags = v
	}
	if v := os.Getenv("HEYCOCHRANE_LOG_LEVEL"); v != "" {
		config.LogLevel = v
	}
	for _, name := range []string{"GEMINI_API_KEY", "HEYCOCHRANE_GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			config.Update.Gemini.APIKey = v
			break
		}
	}
	if v := os.Getenv("HEYCOCHRANE_DATE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.Dates.Workers = n
		}
	}
}
