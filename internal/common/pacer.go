package common

import (
	"context"
	"time"
)

// A pacer spaces out bursts of requests so that successive calls
// are at least the configured interval apart. Discord allows editing
// messages only so fast, so bulk embed updates go through one of these
type Pacer struct {
	interval time.Duration
	last     time.Time
}

func NewPacer(interval time.Duration) Pacer {
	return Pacer{interval: interval}
}

// Block until the next call is allowed, or until the context is cancelled
func (p *Pacer) Wait(ctx context.Context) error {

	wait := p.interval - time.Since(p.last)
	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	p.last = time.Now()
	return nil
}
