// Package ratelimit enforces a minimum, jittered delay between requests
// to the same network host.
package ratelimit

import (
	"math/rand"
	"net/url"
	"sync"
	"time"
)

// Limiter tracks the last request time per host and blocks callers that
// would exceed the configured request rate for that host. Calls for
// different hosts never block each other.
type Limiter struct {
	baseDelay time.Duration

	mu    sync.Mutex
	hosts map[string]*hostState
}

type hostState struct {
	mu   sync.Mutex
	last time.Time
}

func NewLimiter(baseDelay time.Duration) *Limiter {
	return &Limiter{
		baseDelay: baseDelay,
		hosts:     make(map[string]*hostState),
	}
}

// Wait blocks until it is safe to issue another request to the host of
// rawURL. The effective delay is the base delay plus a uniform random
// term in [0, base/2), recomputed on every call; when a wait is needed
// a second jitter term in [0, 500ms) is added. The host's timestamp is
// always advanced to now, whether or not a wait occurred.
func (l *Limiter) Wait(rawURL string) {
	host := hostOf(rawURL)

	l.mu.Lock()
	state, ok := l.hosts[host]
	if !ok {
		state = &hostState{}
		l.hosts[host] = state
	}
	l.mu.Unlock()

	// Per-host lock is held across the sleep so concurrent callers to
	// the same host serialize, without stalling other hosts.
	state.mu.Lock()
	defer state.mu.Unlock()

	delay := l.baseDelay + jitter(l.baseDelay/2)
	if !state.last.IsZero() {
		elapsed := time.Since(state.last)
		if elapsed < delay {
			time.Sleep(delay - elapsed + jitter(500*time.Millisecond))
		}
	}
	state.last = time.Now()
}

func jitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(max)))
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
