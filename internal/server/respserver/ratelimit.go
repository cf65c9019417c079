package respserver

import (
	"net"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/yndnr/respkv/pkg/cmap"
)

// rateLimiter holds one token bucket per client IP.
type rateLimiter struct {
	limit   rate.Limit
	burst   int
	clients *cmap.Map[*clientLimiter]
	now     func() time.Time
}

type clientLimiter struct {
	lim      *rate.Limiter
	lastSeen atomic.Int64 // unix nanos
}

func newRateLimiter(requestsPerSecond int) *rateLimiter {
	return &rateLimiter{
		limit:   rate.Limit(requestsPerSecond),
		burst:   requestsPerSecond,
		clients: cmap.New[*clientLimiter](),
		now:     time.Now,
	}
}

// allow reports whether a request from ip may proceed.
func (rl *rateLimiter) allow(ip string) bool {
	now := rl.now()
	c, _ := rl.clients.GetOrSet(ip, &clientLimiter{lim: rate.NewLimiter(rl.limit, rl.burst)})
	c.lastSeen.Store(now.UnixNano())
	return c.lim.AllowN(now, 1)
}

// prune drops limiters for clients not seen within idle.
func (rl *rateLimiter) prune(idle time.Duration) int {
	cutoff := rl.now().Add(-idle).UnixNano()
	return rl.clients.DeleteIf(func(_ string, c *clientLimiter) bool {
		return c.lastSeen.Load() < cutoff
	})
}

// clientIP strips the port from a remote address.
func clientIP(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
