// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// clientWindow holds the recent request times for one client IP.
type clientWindow struct {
	mu   sync.Mutex
	hits []time.Time
}

// RateLimiter throttles requests per client IP using a sliding window.
// The router mounts it on the login endpoint to slow credential stuffing.
type RateLimiter struct {
	mu        sync.RWMutex
	perClient map[string]*clientWindow
	limit     int
	window    time.Duration
	stopCh    chan struct{}
}

// NewRateLimiter allows limit requests per window for each client. A
// background goroutine sweeps idle clients out of the map.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		perClient: make(map[string]*clientWindow),
		limit:     limit,
		window:    window,
		stopCh:    make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.sweep()
			case <-rl.stopCh:
				return
			}
		}
	}()

	return rl
}

// Stop terminates the background sweep goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// take records a request for key and reports whether it fits the window.
func (rl *RateLimiter) take(key string) bool {
	rl.mu.RLock()
	cw := rl.perClient[key]
	rl.mu.RUnlock()

	if cw == nil {
		rl.mu.Lock()
		// Another request may have registered the client meanwhile.
		if cw = rl.perClient[key]; cw == nil {
			cw = &clientWindow{}
			rl.perClient[key] = cw
		}
		rl.mu.Unlock()
	}

	now := time.Now()
	cutoff := now.Add(-rl.window)

	cw.mu.Lock()
	defer cw.mu.Unlock()

	kept := 0
	for _, hit := range cw.hits {
		if hit.After(cutoff) {
			cw.hits[kept] = hit
			kept++
		}
	}
	cw.hits = cw.hits[:kept]

	if kept >= rl.limit {
		return false
	}

	cw.hits = append(cw.hits, now)
	return true
}

// sweep drops clients whose every recorded hit has aged out.
func (rl *RateLimiter) sweep() {
	cutoff := time.Now().Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, cw := range rl.perClient {
		cw.mu.Lock()
		idle := true
		for _, hit := range cw.hits {
			if hit.After(cutoff) {
				idle = false
				break
			}
		}
		cw.mu.Unlock()

		if idle {
			delete(rl.perClient, key)
		}
	}
}

// Middleware rate-limits by client IP, answering 429 with a Retry-After
// hint when the window is exhausted.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.take(clientIP(r)) {
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			jsonError(w, http.StatusTooManyRequests, "Too many requests, slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the client's IP address, checking X-Forwarded-For
// and X-Real-IP headers for proxied requests.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// The leftmost entry is the original client.
		if idx := strings.IndexByte(xff, ','); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fall back to RemoteAddr (strip port).
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
