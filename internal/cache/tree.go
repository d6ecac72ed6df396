// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// tree.go caches the serialized category forest in Valkey. Building the
// tree means loading every category; the public tree endpoint is the
// hottest read in the system, so the rendered JSON is cached and
// invalidated on every category mutation. Cache failures degrade to DB
// reads, never to errors.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	treeKeyActive = "categorytree:active"
	treeKeyAll    = "categorytree:all"

	// DefaultTreeTTL is how long a cached tree stays valid without an
	// explicit invalidation.
	DefaultTreeTTL = 5 * time.Minute
)

// TreeCache manages the cached category-tree JSON in Valkey.
type TreeCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTreeCache creates a tree cache backed by the given Valkey client.
func NewTreeCache(client *redis.Client, ttl time.Duration) *TreeCache {
	if ttl == 0 {
		ttl = DefaultTreeTTL
	}
	return &TreeCache{client: client, ttl: ttl}
}

func treeKey(includeInactive bool) string {
	if includeInactive {
		return treeKeyAll
	}
	return treeKeyActive
}

// Get retrieves the cached tree JSON for the given view. Returns false on miss.
func (tc *TreeCache) Get(ctx context.Context, includeInactive bool) ([]byte, bool) {
	val, err := tc.client.Get(ctx, treeKey(includeInactive)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("tree cache get error", "error", err)
		return nil, false
	}
	return val, true
}

// Set stores the serialized tree for the given view with the configured TTL.
func (tc *TreeCache) Set(ctx context.Context, includeInactive bool, payload []byte) {
	if err := tc.client.Set(ctx, treeKey(includeInactive), payload, tc.ttl).Err(); err != nil {
		slog.Warn("tree cache set error", "error", err)
	}
}

// Invalidate drops both cached views. Called after every category mutation.
func (tc *TreeCache) Invalidate(ctx context.Context) {
	if err := tc.client.Del(ctx, treeKeyActive, treeKeyAll).Err(); err != nil {
		slog.Warn("tree cache invalidate error", "error", err)
	}
	slog.Debug("tree cache invalidated")
}
