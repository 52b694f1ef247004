package fetch

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HostPacer enforces a minimum interval between successive requests to the
// same host. It is shared by reference across all concurrent domain jobs so
// pacing stays global per host, no matter which pipeline issues the request.
type HostPacer struct {
	interval time.Duration
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewHostPacer(interval time.Duration) *HostPacer {
	return &HostPacer{
		interval: interval,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until a request to host is allowed.
func (p *HostPacer) Wait(ctx context.Context, host string) error {
	if p.interval <= 0 {
		return nil
	}
	p.mu.Lock()
	lim, ok := p.limiters[host]
	if !ok {
		lim = rate.NewLimiter(rate.Every(p.interval), 1)
		p.limiters[host] = lim
	}
	p.mu.Unlock()
	return lim.Wait(ctx)
}
