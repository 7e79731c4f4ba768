// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// stats.go provides a short-TTL Valkey cache for the dashboard stats
// payload. The counts come from three aggregate queries; caching keeps a
// polling dashboard from hammering the DB.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	statsKey = "stats:overview"

	// DefaultStatsTTL is how long a stats snapshot stays cached.
	DefaultStatsTTL = 30 * time.Second
)

// StatsCache caches the serialized stats payload in Valkey. A nil client
// disables caching; every call is then a miss.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = DefaultStatsTTL
	}
	return &StatsCache{client: client, ttl: ttl}
}

// Get retrieves a cached stats payload. Returns false on miss or error.
func (sc *StatsCache) Get(ctx context.Context, out any) bool {
	if sc.client == nil {
		return false
	}
	val, err := sc.client.Get(ctx, statsKey).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		slog.Warn("stats cache get error", "error", err)
		return false
	}
	if err := json.Unmarshal(val, out); err != nil {
		slog.Warn("stats cache decode error", "error", err)
		return false
	}
	return true
}

// Set stores a stats payload with the configured TTL.
func (sc *StatsCache) Set(ctx context.Context, payload any) {
	if sc.client == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Warn("stats cache encode error", "error", err)
		return
	}
	if err := sc.client.Set(ctx, statsKey, data, sc.ttl).Err(); err != nil {
		slog.Warn("stats cache set error", "error", err)
	}
}

// Invalidate drops the cached snapshot. Called after bulk transitions so
// the dashboard reflects them immediately.
func (sc *StatsCache) Invalidate(ctx context.Context) {
	if sc.client == nil {
		return
	}
	if err := sc.client.Del(ctx, statsKey).Err(); err != nil {
		slog.Warn("stats cache invalidate error", "error", err)
	}
}
