// internal/config/validate.go
package config

import (
	"fmt"

	"github.com/andybalholm/cascadia"
)

// Validate checks configuration correctness.
// It does not mutate the configuration.
func Validate(cfg *Config) error {
	if cfg.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}

	switch cfg.Fetcher {
	case FetcherBrowser, FetcherHTTP:
	default:
		return fmt.Errorf("fetcher must be %q or %q, got %q", FetcherBrowser, FetcherHTTP, cfg.Fetcher)
	}

	for name, v := range map[string]int{
		"navigation_timeout_seconds": cfg.NavigationTimeoutSeconds,
		"selector_timeout_seconds":   cfg.SelectorTimeoutSeconds,
		"request_timeout_seconds":    cfg.RequestTimeoutSeconds,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative, got %d", name, v)
		}
	}

	// selectors are compiled up front; goquery would silently match nothing
	for name, sel := range map[string]string{
		"selectors.item":   cfg.Selectors.Item,
		"selectors.label":  cfg.Selectors.Label,
		"selectors.status": cfg.Selectors.Status,
	} {
		if sel == "" {
			return fmt.Errorf("%s must not be empty", name)
		}
		if _, err := cascadia.ParseGroup(sel); err != nil {
			return fmt.Errorf("%s: invalid selector %q: %w", name, sel, err)
		}
	}
	return nil
}
