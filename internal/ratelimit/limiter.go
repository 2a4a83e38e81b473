// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ratelimit guards the upstream call with a per-client fixed
// window counter. Stale windows are evicted by a periodic sweep and by a
// hard cap on the number of tracked clients.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/pdiddy/feastfit/pkg/types"
)

const (
	defaultWindow      = time.Minute
	defaultMaxRequests = 10
)

// window is the per-client admission state.
type window struct {
	count int
	start time.Time
}

// Limiter admits at most MaxRequests per client within each window.
// It is safe for concurrent use.
type Limiter struct {
	mu         sync.Mutex
	windows    map[string]*window
	length     time.Duration
	max        int
	maxClients int
	now        func() time.Time
}

// New creates a Limiter from cfg. Zero values fall back to a one-minute
// window of ten requests with no client cap.
func New(cfg types.RateLimitConfig) *Limiter {
	length := cfg.Window
	if length <= 0 {
		length = defaultWindow
	}
	maxRequests := cfg.MaxRequests
	if maxRequests <= 0 {
		maxRequests = defaultMaxRequests
	}
	return &Limiter{
		windows:    make(map[string]*window),
		length:     length,
		max:        maxRequests,
		maxClients: cfg.MaxClients,
		now:        time.Now,
	}
}

// Admit counts a request from clientID and reports whether it is within
// the limit. The window resets once more than one window length has passed
// since it started.
func (l *Limiter) Admit(clientID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[clientID]
	if !ok {
		l.makeRoom(now)
		w = &window{start: now}
		l.windows[clientID] = w
	}

	if now.Sub(w.start) > l.length {
		w.count = 0
		w.start = now
	}

	w.count++
	return w.count <= l.max
}

// Sweep removes every window that has expired and returns how many were
// removed.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sweepLocked(l.now())
}

// Run sweeps every interval until ctx is cancelled.
func (l *Limiter) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = l.length
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

// Len returns the number of tracked clients.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

func (l *Limiter) sweepLocked(now time.Time) int {
	removed := 0
	for id, w := range l.windows {
		if now.Sub(w.start) > l.length {
			delete(l.windows, id)
			removed++
		}
	}
	return removed
}

// makeRoom keeps the map under maxClients before a new client is added.
// Expired windows go first; if none expired the oldest window is dropped.
func (l *Limiter) makeRoom(now time.Time) {
	if l.maxClients <= 0 || len(l.windows) < l.maxClients {
		return
	}
	if l.sweepLocked(now) > 0 {
		return
	}

	var oldestID string
	var oldest time.Time
	for id, w := range l.windows {
		if oldestID == "" || w.start.Before(oldest) {
			oldestID, oldest = id, w.start
		}
	}
	delete(l.windows, oldestID)
}
