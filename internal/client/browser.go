package client

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// BrowserConfig holds configuration for BrowserSource.
type BrowserConfig struct {
	// ExecutablePath overrides the Chrome/Chromium binary. Empty uses the
	// one found on PATH.
	ExecutablePath string
	// WaitSelector is waited for (visible) before the DOM is captured.
	WaitSelector      string
	NavigationTimeout time.Duration
	SelectorTimeout   time.Duration
}

// BrowserSource implements PageSource with a headless Chrome, for status
// pages that render their content client-side.
type BrowserSource struct {
	config BrowserConfig
	logger *log.Logger
}

// NewBrowserSource returns a BrowserSource. Non-positive timeouts default to
// 60s for navigation and 45s for the selector wait.
func NewBrowserSource(cfg BrowserConfig, logger *log.Logger) *BrowserSource {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 60 * time.Second
	}
	if cfg.SelectorTimeout <= 0 {
		cfg.SelectorTimeout = 45 * time.Second
	}
	return &BrowserSource{config: cfg, logger: logger}
}

// FetchHTML loads url in a fresh headless browser and returns the rendered
// document once the network has been idle for 500ms. Navigation and the idle
// wait share the navigation timeout. The selector wait runs alongside the
// idle wait; if it times out that is logged and the page is captured as it
// is. The browser is closed before returning.
func (b *BrowserSource) FetchHTML(ctx context.Context, url string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("disable-setuid-sandbox", true),
	)
	if b.config.ExecutablePath != "" {
		b.logger.Printf("using browser binary at %s", b.config.ExecutablePath)
		opts = append(opts, chromedp.ExecPath(b.config.ExecutablePath))
	} else {
		b.logger.Printf("using default browser installation")
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithErrorf(b.logger.Printf))
	defer cancelTab()

	// Start the browser on the tab context itself so the per-step timeouts
	// below only bound their own step.
	if err := chromedp.Run(tabCtx); err != nil {
		return "", fmt.Errorf("start browser: %w", err)
	}

	tracker := newIdleTracker()
	chromedp.ListenTarget(tabCtx, tracker.handle)

	b.logger.Printf("navigating to %s", url)
	navCtx, cancelNav := context.WithTimeout(tabCtx, b.config.NavigationTimeout)
	defer cancelNav()
	if err := chromedp.Run(navCtx, network.Enable(), chromedp.Navigate(url)); err != nil {
		return "", fmt.Errorf("navigate to %s: %w", url, err)
	}

	idle := func(ctx context.Context) error {
		if deadline, ok := navCtx.Deadline(); ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithDeadline(ctx, deadline)
			defer cancel()
		}
		if err := tracker.wait(ctx, networkIdleQuiet); err != nil {
			return fmt.Errorf("wait for network idle on %s: %w", url, err)
		}
		return nil
	}
	elements := func(ctx context.Context) error {
		if b.config.WaitSelector == "" {
			return nil
		}
		waitCtx, cancelWait := context.WithTimeout(ctx, b.config.SelectorTimeout)
		defer cancelWait()
		if err := chromedp.Run(waitCtx, chromedp.WaitVisible(b.config.WaitSelector, chromedp.ByQuery)); err != nil {
			b.logger.Printf("waiting for service elements failed (url=%s): %v; scraping available content anyway", url, err)
			return nil
		}
		b.logger.Printf("service elements found")
		return nil
	}
	if err := settle(tabCtx, idle, elements); err != nil {
		return "", err
	}

	var html string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("capture page content: %w", err)
	}
	return html, nil
}
