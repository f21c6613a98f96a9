package client

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"
)

// PageSource fetches the HTML of a status page.
type PageSource interface {
	FetchHTML(ctx context.Context, url string) (string, error)
}

// HTTPConfig holds configuration for HTTPSource.
type HTTPConfig struct {
	RequestTimeout     time.Duration
	InsecureSkipVerify bool
	UserAgent          string
}

// HTTPSource implements PageSource with a plain GET. It suits status pages
// that are rendered on the server; client-side rendered pages need a
// BrowserSource.
type HTTPSource struct {
	http   *http.Client
	config HTTPConfig
}

// NewHTTPSource constructs an HTTPSource from the given config.
// A non-positive RequestTimeout defaults to 30s.
func NewHTTPSource(cfg HTTPConfig) *HTTPSource {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec
	}

	return &HTTPSource{
		http: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: transport,
		},
		config: cfg,
	}
}

// FetchHTML performs a GET request for url and returns the body.
// Returns an error on non-2xx status.
func (s *HTTPSource) FetchHTML(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	if s.config.UserAgent != "" {
		req.Header.Set("User-Agent", s.config.UserAgent)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	const maxResponseBytes = 32 * 1024 * 1024
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	return string(body), nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
