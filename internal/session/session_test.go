// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Tests are skipped when Valkey is unavailable.
package session

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func testStore(t *testing.T) *Store {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     envOr("VALKEY_HOST", "localhost") + ":" + envOr("VALKEY_PORT", "6379"),
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "refresh:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return NewStore(client)
}

func TestCreateAndGet(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	userID := uuid.New()
	token, err := store.Create(ctx, &Data{
		UserID:      userID,
		Email:       "session-test@polycms.local",
		DisplayName: "Session Test",
		Role:        "editor",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(token) != idLength*2 {
		t.Errorf("token length = %d, want %d hex chars", len(token), idLength*2)
	}

	data, err := store.Get(ctx, token)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if data == nil {
		t.Fatal("session missing after create")
	}
	if data.UserID != userID {
		t.Errorf("user id = %s, want %s", data.UserID, userID)
	}
	if data.CreatedAt.IsZero() {
		t.Error("created_at not set")
	}
}

func TestGetUnknownTokenIsNil(t *testing.T) {
	store := testStore(t)

	data, err := store.Get(context.Background(), "deadbeef")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if data != nil {
		t.Error("unknown token should yield nil data")
	}
}

func TestRotateRevokesOldToken(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	old, err := store.Create(ctx, &Data{UserID: uuid.New(), Email: "rotate@polycms.local", Role: "admin"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	fresh, data, err := store.Rotate(ctx, old)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if data == nil {
		t.Fatal("rotate should return the session data")
	}
	if fresh == old {
		t.Error("rotate should issue a different token")
	}

	stale, err := store.Get(ctx, old)
	if err != nil {
		t.Fatalf("get old: %v", err)
	}
	if stale != nil {
		t.Error("old token should be revoked after rotation")
	}

	current, err := store.Get(ctx, fresh)
	if err != nil {
		t.Fatalf("get fresh: %v", err)
	}
	if current == nil {
		t.Error("fresh token should be live after rotation")
	}
}

func TestRotateUnknownTokenIsNil(t *testing.T) {
	store := testStore(t)

	fresh, data, err := store.Rotate(context.Background(), "not-a-token")
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if fresh != "" || data != nil {
		t.Error("rotating an unknown token should yield nothing")
	}
}

func TestRevoke(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	token, err := store.Create(ctx, &Data{UserID: uuid.New(), Email: "revoke@polycms.local", Role: "editor"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := store.Revoke(ctx, token); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	data, err := store.Get(ctx, token)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if data != nil {
		t.Error("revoked token should be gone")
	}

	// Revoking again is a no-op.
	if err := store.Revoke(ctx, token); err != nil {
		t.Errorf("double revoke: %v", err)
	}
}
