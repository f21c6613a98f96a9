package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dm/statusbadge/internal/client"
	"github.com/dm/statusbadge/internal/config"
	"github.com/dm/statusbadge/internal/engine"
	"github.com/dm/statusbadge/internal/format"
	"github.com/dm/statusbadge/internal/model"
	"github.com/dm/statusbadge/internal/output"
	"github.com/dm/statusbadge/internal/tui"
)

// app carries the process-level collaborators so tests can swap them.
type app struct {
	stdout io.Writer
	stderr io.Writer
	// spinOut receives the progress spinner; nil disables it.
	spinOut    *os.File
	newFetcher func(cfg *config.Config, logger *log.Logger) engine.StatusFetcher
}

type options struct {
	configPath     string
	statusURL      string
	debugBadge     string
	executablePath string
	outputDir      string
	timeout        int
	noBrowser      bool
}

// validateStatusURL reports whether raw can name a status page.
func validateStatusURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q (must be http or https)", u.Scheme)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("invalid URL %q: host is required", raw)
	}
	if p := u.Port(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 || n > 65535 {
			return fmt.Errorf("invalid port %q: must be 1-65535", p)
		}
	}
	return nil
}

// newFetcher builds the extractor over the page source selected by cfg.
func newFetcher(cfg *config.Config, logger *log.Logger) engine.StatusFetcher {
	var src client.PageSource
	switch cfg.Fetcher {
	case config.FetcherHTTP:
		src = client.NewHTTPSource(client.HTTPConfig{
			RequestTimeout: cfg.RequestTimeout(),
			UserAgent:      cfg.UserAgent,
		})
	default:
		src = client.NewBrowserSource(client.BrowserConfig{
			ExecutablePath:    cfg.ExecutablePath,
			WaitSelector:      cfg.Selectors.Item,
			NavigationTimeout: cfg.NavigationTimeout(),
			SelectorTimeout:   cfg.SelectorTimeout(),
		}, logger)
	}
	return engine.NewExtractor(src, cfg.EngineSelectors(), cfg.DetectTerms, logger)
}

func newRootCmd(a *app) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "statusbadge (--status-url URL | --debug-badge SERVICE_NAME STATUS)",
		Short: "Scrape a service status page into SVG status badges",
		Example: `  statusbadge --status-url https://status.example.com
  statusbadge --status-url https://status.example.com --executable-path /usr/bin/chromium --timeout 60
  statusbadge --debug-badge "API Gateway" "Degraded Performance"`,
		Args: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("debug-badge") {
				if len(args) != 1 {
					return fmt.Errorf("--debug-badge takes two values: SERVICE_NAME STATUS")
				}
				return nil
			}
			return cobra.NoArgs(cmd, args)
		},
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Flags and args are valid past this point.
			cmd.SilenceUsage = true
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("debug-badge") {
				a.runDebug(cfg, opts.debugBadge, args[0])
				return nil
			}
			return a.runScrape(cmd.Context(), cfg, opts.statusURL)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.statusURL, "status-url", "", "URL of the status page to scrape")
	f.StringVar(&opts.debugBadge, "debug-badge", "", "generate a single badge; takes SERVICE_NAME followed by STATUS")
	f.StringVar(&opts.executablePath, "executable-path", "", "path to the Chrome/Chromium binary (scrape mode)")
	f.IntVar(&opts.timeout, "timeout", int(engine.DefaultTimeout.Seconds()), "overall scrape timeout in seconds")
	f.StringVar(&opts.configPath, "config", "", "YAML config file")
	f.StringVar(&opts.outputDir, "output-dir", "", `badge directory (default "status_badges")`)
	f.BoolVar(&opts.noBrowser, "no-browser", false, "fetch the page with a plain HTTP GET instead of a headless browser")
	cmd.MarkFlagsMutuallyExclusive("status-url", "debug-badge")
	cmd.MarkFlagsOneRequired("status-url", "debug-badge")
	return cmd
}

// loadConfig reads the config file, if any, and applies explicitly set flags
// on top of it.
func loadConfig(cmd *cobra.Command, opts options) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return nil, err
		}
	}

	f := cmd.Flags()
	if f.Changed("timeout") {
		cfg.TimeoutSeconds = opts.timeout
	}
	if f.Changed("executable-path") {
		cfg.ExecutablePath = opts.executablePath
	}
	if f.Changed("output-dir") {
		cfg.OutputDir = opts.outputDir
	}
	if opts.noBrowser {
		cfg.Fetcher = config.FetcherHTTP
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (a *app) generator(cfg *config.Config, logger *log.Logger) (*engine.Generator, *output.Dir) {
	dir := output.NewDir(cfg.OutputDir, logger)
	if err := dir.Ensure(); err != nil {
		// Writes will fail individually and be reported.
		logger.Printf("%v", err)
	}
	return engine.NewGenerator(format.NewCleaner(cfg.CleanerTerms), dir, logger), dir
}

func (a *app) runDebug(cfg *config.Config, service, status string) {
	logger := log.New(a.stderr, "", log.LstdFlags)
	gen, dir := a.generator(cfg, logger)

	res := gen.Debug(service, status)
	logger.Printf("debug badge generation complete")
	fmt.Fprint(a.stdout, tui.RenderSummary([]engine.Result{res}, dir.Path()))
}

type scrapeOutcome struct {
	set *model.StatusSet
	err error
}

// runScrape replaces the badge set with the statuses found at statusURL. A
// cancelled scrape returns engine.ErrCancelled and leaves the existing badges
// untouched.
func (a *app) runScrape(ctx context.Context, cfg *config.Config, statusURL string) error {
	logger := log.New(a.stderr, "", log.LstdFlags)
	gen, dir := a.generator(cfg, logger)

	if err := validateStatusURL(statusURL); err != nil {
		logger.Printf("scrape failed (url=%q): %v", statusURL, err)
		a.writeBadges(logger, gen, dir, model.ErrorSet(model.ErrExecution))
		return nil
	}

	// While the spinner owns the terminal, scrape logs are held back and
	// printed once it is gone.
	var held bytes.Buffer
	scrapeLogger := logger
	if a.spinOut != nil {
		scrapeLogger = log.New(&held, "", log.LstdFlags)
	}

	logger.Printf("scraping status from %s", statusURL)
	runner := engine.NewRunner(a.newFetcher(cfg, scrapeLogger), cfg.Timeout(), scrapeLogger)
	out := tui.Spin(ctx, a.spinOut, "scraping "+statusURL, func(ctx context.Context) scrapeOutcome {
		set, err := runner.Scrape(ctx, statusURL)
		return scrapeOutcome{set: set, err: err}
	})
	_, _ = a.stderr.Write(held.Bytes())
	if out.err != nil {
		return out.err
	}

	a.writeBadges(logger, gen, dir, out.set)
	return nil
}

func (a *app) writeBadges(logger *log.Logger, gen *engine.Generator, dir *output.Dir, set *model.StatusSet) {
	results := gen.Generate(set)
	logger.Printf("badge generation complete")
	fmt.Fprint(a.stdout, tui.RenderSummary(results, dir.Path()))
}

// Exit codes.
const (
	exitOK        = 0
	exitUsage     = 2
	exitCancelled = 130
)

// execute runs the CLI and returns the process exit code. Scrape and write
// failures end up in badges and logs; only invalid usage and cancellation
// are non-zero.
func (a *app) execute(ctx context.Context, args []string) int {
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)
	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, engine.ErrCancelled):
		fmt.Fprintf(a.stderr, "%v; existing badges left in place\n", err)
		return exitCancelled
	default:
		fmt.Fprintf(a.stderr, "error: %v\n", err)
		return exitUsage
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := &app{
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		newFetcher: newFetcher,
	}
	if tui.IsTerminal(os.Stderr) {
		a.spinOut = os.Stderr
	}
	code := a.execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
