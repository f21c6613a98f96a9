package client

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"golang.org/x/sync/errgroup"
)

const (
	// networkIdleQuiet is how long a page must have no request in flight to
	// count as loaded.
	networkIdleQuiet = 500 * time.Millisecond
	idlePollInterval = 50 * time.Millisecond
)

// idleTracker follows the requests of one browser tab, fed by
// chromedp.ListenTarget.
type idleTracker struct {
	mu       sync.Mutex
	inflight map[network.RequestID]struct{}
	last     time.Time
}

func newIdleTracker() *idleTracker {
	return &idleTracker{
		inflight: make(map[network.RequestID]struct{}),
		last:     time.Now(),
	}
}

// handle records network events; anything else is ignored. It runs on the
// tab's event loop and must not block.
func (t *idleTracker) handle(ev any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		// redirects reuse the request ID
		t.inflight[e.RequestID] = struct{}{}
	case *network.EventLoadingFinished:
		delete(t.inflight, e.RequestID)
	case *network.EventLoadingFailed:
		delete(t.inflight, e.RequestID)
	default:
		return
	}
	t.last = time.Now()
}

func (t *idleTracker) idleFor(quiet time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inflight) == 0 && time.Since(t.last) >= quiet
}

// wait blocks until no request has been in flight for quiet, or ctx is done.
func (t *idleTracker) wait(ctx context.Context, quiet time.Duration) error {
	tick := time.NewTicker(idlePollInterval)
	defer tick.Stop()
	for {
		if t.idleFor(quiet) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
		}
	}
}

// settle runs the network idle wait and the element wait side by side. An
// idle failure cancels the element wait and is returned; the element wait
// reports its own failures and should return nil for best-effort waits.
func settle(ctx context.Context, idle, elements func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return idle(gctx) })
	g.Go(func() error { return elements(gctx) })
	return g.Wait()
}
