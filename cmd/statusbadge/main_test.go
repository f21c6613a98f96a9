package main

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dm/statusbadge/internal/config"
	"github.com/dm/statusbadge/internal/engine"
	"github.com/dm/statusbadge/internal/model"
)

func TestValidateStatusURL(t *testing.T) {
	tests := []struct {
		name      string
		uri       string
		wantError bool
	}{
		{name: "plain http URI", uri: "http://status.example.com"},
		{name: "https with path", uri: "https://status.example.com/history"},
		{name: "URI with port", uri: "http://localhost:8080"},
		{name: "URI with query string", uri: "https://example.com/status?region=eu"},
		{name: "port 65535 accepted", uri: "http://localhost:65535"},
		{name: "no scheme", uri: "status.example.com", wantError: true},
		{name: "host and port without scheme", uri: "localhost:9200", wantError: true},
		{name: "unsupported scheme", uri: "ftp://status.example.com", wantError: true},
		{name: "file scheme", uri: "file:///tmp/status.html", wantError: true},
		{name: "empty URI", uri: "", wantError: true},
		{name: "hostless URI", uri: "http://", wantError: true},
		{name: "port-only authority", uri: "http://:9200", wantError: true},
		{name: "port zero", uri: "http://localhost:0", wantError: true},
		{name: "port too high", uri: "http://localhost:70000", wantError: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validateStatusURL(tc.uri)
			if tc.wantError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

type stubFetcher struct {
	set *model.StatusSet
	err error
}

func (s stubFetcher) FetchStatuses(context.Context, string) (*model.StatusSet, error) {
	return s.set, s.err
}

type fetchFunc func(ctx context.Context, url string) (*model.StatusSet, error)

func (f fetchFunc) FetchStatuses(ctx context.Context, url string) (*model.StatusSet, error) {
	return f(ctx, url)
}

type harness struct {
	app     *app
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
	fetched *config.Config
}

func newHarness(f engine.StatusFetcher) *harness {
	h := &harness{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	h.app = &app{
		stdout: h.stdout,
		stderr: h.stderr,
		newFetcher: func(cfg *config.Config, _ *log.Logger) engine.StatusFetcher {
			h.fetched = cfg
			return f
		},
	}
	return h
}

func (h *harness) run(args ...string) int {
	return h.runContext(context.Background(), args...)
}

func (h *harness) runContext(ctx context.Context, args ...string) int {
	h.stdout.Reset()
	h.stderr.Reset()
	return h.app.execute(ctx, args)
}

func readBadge(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(data)
}

func svgFiles(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*.svg"))
	require.NoError(t, err)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, filepath.Base(m))
	}
	sort.Strings(names)
	return names
}

func statusSet(pairs ...string) *model.StatusSet {
	s := model.NewStatusSet()
	for i := 0; i+1 < len(pairs); i += 2 {
		s.Set(pairs[i], pairs[i+1])
	}
	return s
}

func TestUsageErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		args []string
	}{
		{name: "no mode", args: nil},
		{name: "both modes", args: []string{"--status-url", "https://s.example.com", "--debug-badge", "API", "Operational"}},
		{name: "debug badge without status", args: []string{"--debug-badge", "API"}},
		{name: "debug badge with extra value", args: []string{"--debug-badge", "API", "Operational", "extra"}},
		{name: "positional in scrape mode", args: []string{"--status-url", "https://s.example.com", "stray"}},
		{name: "non-numeric timeout", args: []string{"--status-url", "https://s.example.com", "--timeout", "soon"}},
		{name: "unknown flag", args: []string{"--bogus"}},
		{name: "missing config file", args: []string{"--debug-badge", "API", "Operational", "--config", filepath.Join(dir, "missing.yaml")}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(stubFetcher{set: statusSet("API", "Operational")})
			args := append([]string{"--output-dir", dir}, tc.args...)
			assert.Equal(t, 2, h.run(args...))
			assert.Contains(t, h.stderr.String(), "error:")
			assert.Nil(t, h.fetched, "no scrape should start")
		})
	}
	assert.Empty(t, svgFiles(t, dir))
}

func TestDebugBadge(t *testing.T) {
	dir := t.TempDir()
	h := newHarness(nil)

	code := h.run("--debug-badge", "API Gateway (Degraded Performance)", "Degraded Performance", "--output-dir", dir)

	assert.Equal(t, 0, code)
	assert.Equal(t, []string{"API_Gateway.svg"}, svgFiles(t, dir))
	data, err := os.ReadFile(filepath.Join(dir, "API_Gateway.svg"))
	require.NoError(t, err)
	assert.Contains(t, string(data), ">API Gateway<")
	assert.Contains(t, string(data), "#fe7d37")
	assert.Contains(t, h.stdout.String(), "1 of 1 badges written to "+dir)
	assert.Contains(t, h.stderr.String(), "debug badge generation complete")
	assert.Nil(t, h.fetched)
}

func TestDebugBadge_KeepsExistingBadges(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Old.svg"), []byte("<svg/>"), 0o644))
	h := newHarness(nil)

	require.Equal(t, 0, h.run("--debug-badge", "API", "Operational", "--output-dir", dir))
	assert.Equal(t, []string{"API.svg", "Old.svg"}, svgFiles(t, dir))
}

func TestDebugBadge_UnwritableDirStillExitsZero(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	h := newHarness(nil)

	code := h.run("--debug-badge", "API", "Operational", "--output-dir", blocker)

	assert.Equal(t, 0, code)
	assert.Contains(t, h.stdout.String(), "0 of 1 badges written")
	assert.Contains(t, h.stdout.String(), "write failed")
}

func TestScrape_WritesBadgePerService(t *testing.T) {
	dir := t.TempDir()
	h := newHarness(stubFetcher{set: statusSet(
		"API Gateway", "Operational",
		"Database", "Major Outage",
	)})

	code := h.run("--status-url", "https://status.example.com", "--output-dir", dir)

	assert.Equal(t, 0, code)
	assert.Equal(t, []string{"API_Gateway.svg", "Database.svg"}, svgFiles(t, dir))
	assert.Contains(t, h.stdout.String(), "2 of 2 badges written")
	assert.Contains(t, h.stderr.String(), "scraping status from https://status.example.com")
	assert.Contains(t, h.stderr.String(), "badge generation complete")
}

func TestScrape_FailureBecomesScrapingStatusBadge(t *testing.T) {
	tests := []struct {
		name       string
		fetcher    stubFetcher
		want       string
		wantErrLog bool
	}{
		{name: "fetch error", fetcher: stubFetcher{err: errors.New("connection refused")}, want: "Execution Error", wantErrLog: true},
		{name: "nothing extracted", fetcher: stubFetcher{set: model.NewStatusSet()}, want: "No Data"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			h := newHarness(tc.fetcher)

			assert.Equal(t, 0, h.run("--status-url", "https://status.example.com", "--output-dir", dir))
			assert.Equal(t, []string{"Scraping_Status.svg"}, svgFiles(t, dir))
			data, err := os.ReadFile(filepath.Join(dir, "Scraping_Status.svg"))
			require.NoError(t, err)
			assert.Contains(t, string(data), tc.want)
			if tc.wantErrLog {
				assert.Contains(t, h.stderr.String(), "scraping process encountered an error")
			} else {
				assert.NotContains(t, h.stderr.String(), "scraping process encountered an error")
			}
		})
	}
}

func TestScrape_InvalidURLBecomesExecutionErrorBadge(t *testing.T) {
	for _, raw := range []string{"status.example.com", "not a url", "ftp://status.example.com", "http://localhost:0"} {
		t.Run(raw, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "API.svg"), []byte("<svg/>"), 0o644))
			h := newHarness(stubFetcher{set: statusSet("API", "Operational")})

			code := h.run("--status-url", raw, "--output-dir", dir)

			assert.Equal(t, 0, code)
			assert.Nil(t, h.fetched, "an invalid URL is never fetched")
			assert.Equal(t, []string{"Scraping_Status.svg"}, svgFiles(t, dir))
			assert.Contains(t, readBadge(t, dir, "Scraping_Status.svg"), ">Execution Error<")
			assert.Contains(t, h.stderr.String(), "scraping process encountered an error")
			assert.NotContains(t, h.stderr.String(), "error: ")
		})
	}
}

func TestScrape_NonPositiveTimeoutBecomesTimeoutBadge(t *testing.T) {
	for _, timeout := range []string{"0", "-5"} {
		t.Run(timeout, func(t *testing.T) {
			dir := t.TempDir()
			h := newHarness(stubFetcher{set: statusSet("API", "Operational")})

			code := h.run("--status-url", "https://status.example.com", "--timeout", timeout, "--output-dir", dir)

			assert.Equal(t, 0, code)
			assert.Equal(t, []string{"Scraping_Status.svg"}, svgFiles(t, dir))
			assert.Contains(t, readBadge(t, dir, "Scraping_Status.svg"), ">Timeout Error<")
		})
	}
}

func TestScrape_CancelledKeepsExistingBadges(t *testing.T) {
	tests := []struct {
		name  string
		setup func() (context.Context, engine.StatusFetcher)
	}{
		{
			name: "cancelled before start",
			setup: func() (context.Context, engine.StatusFetcher) {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx, fetchFunc(func(ctx context.Context, _ string) (*model.StatusSet, error) {
					return nil, ctx.Err()
				})
			},
		},
		{
			name: "cancelled during fetch",
			setup: func() (context.Context, engine.StatusFetcher) {
				ctx, cancel := context.WithCancel(context.Background())
				return ctx, fetchFunc(func(ctx context.Context, _ string) (*model.StatusSet, error) {
					cancel()
					<-ctx.Done()
					return statusSet("Partial", "Operational"), ctx.Err()
				})
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "API.svg"), []byte("<svg/>"), 0o644))
			ctx, f := tc.setup()
			h := newHarness(f)

			code := h.runContext(ctx, "--status-url", "https://status.example.com", "--output-dir", dir)

			assert.Equal(t, exitCancelled, code)
			assert.Equal(t, []string{"API.svg"}, svgFiles(t, dir))
			assert.Equal(t, "<svg/>", readBadge(t, dir, "API.svg"))
			assert.Contains(t, h.stderr.String(), "existing badges left in place")
			assert.Empty(t, h.stdout.String())
		})
	}
}

func TestScrape_SecondRunReplacesBadges(t *testing.T) {
	dir := t.TempDir()
	first := newHarness(stubFetcher{set: statusSet("A", "Operational")})
	require.Equal(t, 0, first.run("--status-url", "https://status.example.com", "--output-dir", dir))
	require.Equal(t, []string{"A.svg"}, svgFiles(t, dir))

	second := newHarness(stubFetcher{set: model.NewStatusSet()})
	require.Equal(t, 0, second.run("--status-url", "https://status.example.com", "--output-dir", dir))
	assert.Equal(t, []string{"Scraping_Status.svg"}, svgFiles(t, dir))
}

func TestScrape_ConfigFileAndFlagPrecedence(t *testing.T) {
	root := t.TempDir()
	cfgDir := filepath.Join(root, "from-config")
	flagDir := filepath.Join(root, "from-flag")
	cfgPath := filepath.Join(root, "statusbadge.yaml")
	yaml := strings.Join([]string{
		"output_dir: " + cfgDir,
		"timeout_seconds: 30",
		"executable_path: /opt/chrome",
	}, "\n")
	require.NoError(t, os.WriteFile(cfgPath, []byte(yaml), 0o644))

	h := newHarness(stubFetcher{set: statusSet("A", "Operational")})
	require.Equal(t, 0, h.run("--status-url", "https://s.example.com", "--config", cfgPath))
	require.NotNil(t, h.fetched)
	assert.Equal(t, cfgDir, h.fetched.OutputDir)
	assert.Equal(t, 30, h.fetched.TimeoutSeconds)
	assert.Equal(t, "/opt/chrome", h.fetched.ExecutablePath)
	assert.Equal(t, config.FetcherBrowser, h.fetched.Fetcher)
	assert.Equal(t, []string{"A.svg"}, svgFiles(t, cfgDir))

	require.Equal(t, 0, h.run("--status-url", "https://s.example.com", "--config", cfgPath,
		"--output-dir", flagDir, "--timeout", "5", "--executable-path", "/usr/bin/chromium", "--no-browser"))
	assert.Equal(t, flagDir, h.fetched.OutputDir)
	assert.Equal(t, 5, h.fetched.TimeoutSeconds)
	assert.Equal(t, "/usr/bin/chromium", h.fetched.ExecutablePath)
	assert.Equal(t, config.FetcherHTTP, h.fetched.Fetcher)
	assert.Equal(t, []string{"A.svg"}, svgFiles(t, flagDir))
}

func TestScrape_DefaultsWithoutConfig(t *testing.T) {
	dir := t.TempDir()
	h := newHarness(stubFetcher{set: statusSet("A", "Operational")})

	require.Equal(t, 0, h.run("--status-url", "https://s.example.com", "--output-dir", dir))
	require.NotNil(t, h.fetched)
	assert.Equal(t, 120, h.fetched.TimeoutSeconds)
	assert.Equal(t, config.FetcherBrowser, h.fetched.Fetcher)
	assert.Empty(t, h.fetched.ExecutablePath)
}

func TestNewFetcher(t *testing.T) {
	logger := log.New(&bytes.Buffer{}, "", 0)
	for _, kind := range []string{config.FetcherBrowser, config.FetcherHTTP} {
		t.Run(kind, func(t *testing.T) {
			cfg := config.Default()
			cfg.Fetcher = kind
			f := newFetcher(cfg, logger)
			assert.IsType(t, &engine.Extractor{}, f)
		})
	}
}
