// Package source contains the adapters that translate external event feeds
// into the canonical event record.
package source

import (
	"context"
	"sync"
	"time"

	"github.com/explorenyc/eventscout/internal/event"
)

// Criteria is the common search input every adapter accepts. All fields are
// optional except Limit; dates are YYYY-MM-DD strings.
type Criteria struct {
	Location   string
	Categories []string
	StartDate  string
	EndDate    string
	Limit      int
}

// Category is one entry of an adapter's upstream category taxonomy.
type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

// Source is the capability contract each external feed adapter implements.
// Search returns canonical events; an upstream failure comes back as an
// *apperr.UpstreamError and never as a panic, so the aggregator can treat the
// adapter's contribution as empty.
type Source interface {
	Name() string
	Search(ctx context.Context, c Criteria) ([]event.Event, error)
	Categories(ctx context.Context) ([]Category, error)
}

// minRequestInterval is the floor each adapter keeps between its own
// outbound calls. Rate limiting is per-adapter, not global.
const minRequestInterval = time.Second

// rateGate spaces outbound requests for one adapter instance. Each adapter
// owns its gate so instances stay independently testable and safe to use
// from concurrent workers.
type rateGate struct {
	mu    sync.Mutex
	last  time.Time
	delay time.Duration
}

func newRateGate() *rateGate {
	return &rateGate{delay: minRequestInterval}
}

// wait sleeps out the remainder of the delay floor since the previous
// request, honoring ctx cancellation, then stamps the request time.
func (g *rateGate) wait(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.last.IsZero() {
		if remaining := g.delay - time.Since(g.last); remaining > 0 {
			timer := time.NewTimer(remaining)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	g.last = time.Now()
	return nil
}
