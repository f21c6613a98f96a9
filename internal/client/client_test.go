package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// newTestSource creates an HTTPSource with a short request timeout.
func newTestSource(t *testing.T) *HTTPSource {
	t.Helper()
	return NewHTTPSource(HTTPConfig{RequestTimeout: 5 * time.Second})
}

func TestFetchHTML(t *testing.T) {
	const page = `<html><body><div class="MuiAccordion-root">API</div></body></html>`
	var gotAccept, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/status" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		gotAccept = r.Header.Get("Accept")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	s := NewHTTPSource(HTTPConfig{RequestTimeout: 5 * time.Second, UserAgent: "statusbadge-test"})
	html, err := s.FetchHTML(context.Background(), srv.URL+"/status")
	if err != nil {
		t.Fatalf("FetchHTML: %v", err)
	}
	if html != page {
		t.Errorf("html = %q, want %q", html, page)
	}
	if !strings.Contains(gotAccept, "text/html") {
		t.Errorf("Accept = %q, want text/html", gotAccept)
	}
	if gotUA != "statusbadge-test" {
		t.Errorf("User-Agent = %q, want %q", gotUA, "statusbadge-test")
	}
}

func TestFetchHTML_DefaultTimeout(t *testing.T) {
	s := NewHTTPSource(HTTPConfig{})
	if s.http.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", s.http.Timeout)
	}
}

func TestFetchHTML_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(strings.Repeat("x", 500)))
	}))
	defer srv.Close()

	s := newTestSource(t)
	_, err := s.FetchHTML(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("error %q does not contain %q", err.Error(), "503")
	}
	if !strings.HasSuffix(err.Error(), "...") {
		t.Errorf("error body not truncated: %q", err.Error())
	}
}

func TestFetchHTML_InvalidURL(t *testing.T) {
	s := newTestSource(t)
	if _, err := s.FetchHTML(context.Background(), "://nope"); err == nil {
		t.Error("expected error for invalid URL, got nil")
	}
}

func TestFetchHTML_ContextCancellation(t *testing.T) {
	started := make(chan struct{})
	var once sync.Once
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(started) })
		// Block until the client disconnects
		<-r.Context().Done()
	}))
	defer srv.Close()

	s := newTestSource(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := s.FetchHTML(ctx, srv.URL)
		done <- err
	}()

	<-started
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Error("expected error after context cancellation, got nil")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for cancelled request to return")
	}
}

func TestFetchHTML_TLSSkipVerify(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html></html>`))
	}))
	defer srv.Close()

	// Without InsecureSkipVerify, TLS handshake should fail (self-signed cert).
	s := NewHTTPSource(HTTPConfig{RequestTimeout: 5 * time.Second})
	if _, err := s.FetchHTML(context.Background(), srv.URL); err == nil {
		t.Error("expected TLS certificate error without InsecureSkipVerify, got nil")
	}

	s2 := NewHTTPSource(HTTPConfig{RequestTimeout: 5 * time.Second, InsecureSkipVerify: true})
	if _, err := s2.FetchHTML(context.Background(), srv.URL); err != nil {
		t.Errorf("FetchHTML with InsecureSkipVerify=true: %v", err)
	}
}

func TestNewBrowserSource_Defaults(t *testing.T) {
	b := NewBrowserSource(BrowserConfig{}, nil)
	if b.config.NavigationTimeout != 60*time.Second {
		t.Errorf("NavigationTimeout = %v, want 60s", b.config.NavigationTimeout)
	}
	if b.config.SelectorTimeout != 45*time.Second {
		t.Errorf("SelectorTimeout = %v, want 45s", b.config.SelectorTimeout)
	}
}
