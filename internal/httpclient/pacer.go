package httpclient

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Pacer enforces a fixed minimum gap between consecutive requests.
// The first Wait returns immediately.
type Pacer struct {
	limiter *rate.Limiter
	name    string
}

// NewPacer returns a pacer allowing one request per interval.
// A non-positive interval disables pacing.
func NewPacer(name string, interval time.Duration) *Pacer {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Pacer{limiter: rate.NewLimiter(limit, 1), name: name}
}

// Wait blocks until the next request may be sent or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("pacer %s: %w", p.name, err)
	}
	return nil
}
