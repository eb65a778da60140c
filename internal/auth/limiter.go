package auth

import (
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoginLimiter throttles login attempts per client host.
type LoginLimiter struct {
	mu      sync.Mutex
	every   time.Duration
	burst   int
	clients map[string]*limiterEntry
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLoginLimiter allows burst attempts per host, refilled one every interval.
func NewLoginLimiter(every time.Duration, burst int) *LoginLimiter {
	return &LoginLimiter{
		every:   every,
		burst:   burst,
		clients: make(map[string]*limiterEntry),
	}
}

// Allow reports whether a login attempt from remoteAddr may proceed.
func (l *LoginLimiter) Allow(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	e, ok := l.clients[host]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rate.Every(l.every), l.burst)}
		l.clients[host] = e
	}
	e.lastSeen = now
	l.sweep(now)
	return e.limiter.AllowN(now, 1)
}

// sweep drops hosts idle long enough for their bucket to be full again.
func (l *LoginLimiter) sweep(now time.Time) {
	idle := l.every * time.Duration(l.burst+1)
	for host, e := range l.clients {
		if now.Sub(e.lastSeen) > idle {
			delete(l.clients, host)
		}
	}
}
