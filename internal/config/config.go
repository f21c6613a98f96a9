// internal/config/config.go
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dm/statusbadge/internal/engine"
	"github.com/dm/statusbadge/internal/format"
)

// Fetcher names.
const (
	FetcherBrowser = "browser"
	FetcherHTTP    = "http"
)

type Config struct {
	OutputDir      string `yaml:"output_dir"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Fetcher        string `yaml:"fetcher"`

	// Browser
	ExecutablePath           string `yaml:"executable_path"`
	NavigationTimeoutSeconds int    `yaml:"navigation_timeout_seconds"`
	SelectorTimeoutSeconds   int    `yaml:"selector_timeout_seconds"`

	// HTTP
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
	UserAgent             string `yaml:"user_agent"`

	Selectors SelectorConfig `yaml:"selectors"`

	// The two vocabularies are independent: cleaner terms are stripped from
	// labels, detect terms find a status in free text.
	CleanerTerms []string `yaml:"cleaner_terms"`
	DetectTerms  []string `yaml:"detect_terms"`
}

// ---- SELECTORS ----

type SelectorConfig struct {
	Item   string `yaml:"item"`
	Label  string `yaml:"label"`
	Status string `yaml:"status"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		OutputDir:                "status_badges",
		TimeoutSeconds:           int(engine.DefaultTimeout / time.Second),
		Fetcher:                  FetcherBrowser,
		NavigationTimeoutSeconds: 60,
		SelectorTimeoutSeconds:   45,
		RequestTimeoutSeconds:    30,
		Selectors: SelectorConfig{
			Item:   engine.DefaultSelectors.Item,
			Label:  engine.DefaultSelectors.Label,
			Status: engine.DefaultSelectors.Status,
		},
		CleanerTerms: append([]string(nil), format.DefaultCleanerTerms...),
		DetectTerms:  append([]string(nil), engine.DefaultDetectTerms...),
	}
}

// Load reads a YAML config file on top of Default. Keys that are absent keep
// their default; unknown keys are an error. An empty file yields Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Timeout returns the overall scrape timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// NavigationTimeout returns the browser page-load timeout.
func (c *Config) NavigationTimeout() time.Duration {
	return time.Duration(c.NavigationTimeoutSeconds) * time.Second
}

// SelectorTimeout returns how long the browser waits for service blocks.
func (c *Config) SelectorTimeout() time.Duration {
	return time.Duration(c.SelectorTimeoutSeconds) * time.Second
}

// RequestTimeout returns the plain HTTP request timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// EngineSelectors converts the selector config for the extractor.
func (c *Config) EngineSelectors() engine.Selectors {
	return engine.Selectors{
		Item:   c.Selectors.Item,
		Label:  c.Selectors.Label,
		Status: c.Selectors.Status,
	}
}
