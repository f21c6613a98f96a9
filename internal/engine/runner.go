package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dm/statusbadge/internal/model"
)

// DefaultTimeout bounds a whole scrape, page load and extraction included.
const DefaultTimeout = 120 * time.Second

// ErrCancelled is returned by Scrape when the caller's context is cancelled
// before the scrape completes. No status set is produced in that case.
var ErrCancelled = errors.New("scrape cancelled")

// panicError carries a panic recovered from a fetcher.
type panicError struct{ value any }

func (p *panicError) Error() string { return fmt.Sprintf("fetcher panic: %v", p.value) }

type fetchOutcome struct {
	set *model.StatusSet
	err error
}

// Runner runs a StatusFetcher under an overall timeout. Every failure except
// cancellation by the caller is turned into a single Scraping Status entry.
type Runner struct {
	fetcher StatusFetcher
	timeout time.Duration
	logger  *log.Logger
}

// NewRunner returns a Runner. A non-positive timeout expires immediately.
func NewRunner(fetcher StatusFetcher, timeout time.Duration, logger *log.Logger) *Runner {
	return &Runner{fetcher: fetcher, timeout: timeout, logger: logger}
}

// Scrape fetches the statuses at url. Unless ctx is cancelled, the result is
// never empty:
//   - timeout → {"Scraping Status": "Timeout Error"}, partial results are discarded
//   - fetcher panic → "Unexpected Error"
//   - fetcher error with nothing extracted → "Execution Error"
//   - nothing extracted → "No Data"
//
// A fetcher error that comes with partial results keeps the partial results.
// If ctx is cancelled Scrape returns ErrCancelled and a nil set.
func (r *Runner) Scrape(ctx context.Context, url string) (*model.StatusSet, error) {
	if err := ctx.Err(); err != nil {
		return r.interrupted(ctx, url)
	}
	if r.timeout <= 0 {
		r.logger.Printf("scrape timed out (url=%s): non-positive timeout %s", url, r.timeout)
		return model.ErrorSet(model.ErrTimeout), nil
	}

	r.logger.Printf("starting scrape of %s with an overall timeout of %s", url, r.timeout)
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// The fetcher may not honour ctx; the buffered channel lets it finish in
	// the background after a timeout without leaking a blocked send.
	done := make(chan fetchOutcome, 1)
	go func() {
		var out fetchOutcome
		defer func() {
			if p := recover(); p != nil {
				out = fetchOutcome{err: &panicError{value: p}}
			}
			done <- out
		}()
		out.set, out.err = r.fetcher.FetchStatuses(ctx, url)
	}()

	var out fetchOutcome
	select {
	case out = <-done:
	case <-ctx.Done():
		return r.interrupted(ctx, url)
	}

	set, err := out.set, out.err
	var pe *panicError
	switch {
	case errors.As(err, &pe):
		r.logger.Printf("unexpected error during scrape (url=%s): %v", url, err)
		return model.ErrorSet(model.ErrUnexpected), nil
	case err != nil && ctx.Err() != nil:
		return r.interrupted(ctx, url)
	case err != nil && set.Len() == 0:
		r.logger.Printf("scrape failed (url=%s): %v", url, err)
		return model.ErrorSet(model.ErrExecution), nil
	case err != nil:
		r.logger.Printf("scrape failed after %d services (url=%s): %v; keeping partial results", set.Len(), url, err)
	}

	if set.Len() == 0 {
		r.logger.Printf("no service statuses found (url=%s)", url)
		return model.ErrorSet(model.ErrNoData), nil
	}
	return set, nil
}

// interrupted maps a done ctx to its outcome. Only the Runner's own deadline
// yields DeadlineExceeded; a caller deadline is treated the same way.
func (r *Runner) interrupted(ctx context.Context, url string) (*model.StatusSet, error) {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		r.logger.Printf("scrape timed out after %s (url=%s)", r.timeout, url)
		return model.ErrorSet(model.ErrTimeout), nil
	}
	r.logger.Printf("scrape cancelled (url=%s): %v", url, ctx.Err())
	return nil, ErrCancelled
}
