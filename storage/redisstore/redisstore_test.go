package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/mauritsl/restapir/auth"
	"github.com/mauritsl/restapir/redis"
)

// These tests exercise TokenStore/QueryCache against a live Redis instance,
// matching the teacher's own redis package tests. They use a Redis server
// at the default options and skip when none is reachable.

func TestTokenStore_SaveAndLookup(t *testing.T) {
	if _, err := redis.OpenConnection(redis.DefaultOptions()); err != nil {
		t.Skipf("redis not available: %v", err)
	}
	defer redis.CloseConnection()

	cache := redis.NewCache()
	if err := cache.Ping(context.Background()); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}
	store := NewTokenStore(cache, time.Minute)

	tok := auth.Token{Token: "test-token-1", UserID: "u1", IssuedAt: time.Now(), TTL: time.Hour}
	if err := store.Save(context.Background(), tok); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok, err := store.Lookup(context.Background(), "test-token-1")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !ok || got.UserID != "u1" {
		t.Fatalf("unexpected lookup result: %#v, ok=%v", got, ok)
	}
}

func TestQueryCache_SetGetInvalidate(t *testing.T) {
	if _, err := redis.OpenConnection(redis.DefaultOptions()); err != nil {
		t.Skipf("redis not available: %v", err)
	}
	defer redis.CloseConnection()

	cache := redis.NewCache()
	ctx := context.Background()
	if err := cache.Ping(ctx); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}
	qc := NewQueryCache(cache, time.Minute)
	if err := qc.Set(ctx, "k1", map[string]any{"n": 1.0}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	out, ok, err := qc.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || out["n"] != 1.0 {
		t.Fatalf("unexpected cached result: %#v, ok=%v", out, ok)
	}
	if err := qc.Invalidate(ctx, "k1"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok, _ := qc.Get(ctx, "k1"); ok {
		t.Fatalf("expected cache entry to be gone after invalidation")
	}
}
