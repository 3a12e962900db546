package gateway

import (
	"sync"

	"golang.org/x/time/rate"
)

// maxTrackedIPs caps the limiter map to prevent memory exhaustion from
// rotating source addresses.
const maxTrackedIPs = 4096

// ipLimiter enforces a per-client-IP request budget. Safe for concurrent use.
type ipLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// newIPLimiter builds a limiter from a requests-per-minute budget.
// rpm <= 0 disables limiting.
func newIPLimiter(rpm int) *ipLimiter {
	if rpm <= 0 {
		return &ipLimiter{}
	}
	return &ipLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(float64(rpm) / 60.0),
		burst:    max(rpm/6, 1),
	}
}

func (l *ipLimiter) enabled() bool { return l.limiters != nil }

// Allow reports whether the client identified by ip may proceed.
func (l *ipLimiter) Allow(ip string) bool {
	if !l.enabled() {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[ip]
	if !ok {
		if len(l.limiters) >= maxTrackedIPs {
			for k := range l.limiters {
				delete(l.limiters, k)
				break
			}
		}
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[ip] = lim
	}
	return lim.Allow()
}
