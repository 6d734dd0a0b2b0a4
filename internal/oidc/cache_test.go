package oidc

import (
	"testing"
	"time"
)

func TestTTLCacheServesFreshAndExpiresStale(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	cache := newTTLCache[string](60*time.Second, func() time.Time { return now })

	if _, ok := cache.get("k"); ok {
		t.Fatal("empty cache reported a hit")
	}

	cache.put("k", "v")
	if got, ok := cache.get("k"); !ok || got != "v" {
		t.Fatalf("get after put = %q, %v; want \"v\", true", got, ok)
	}

	now = now.Add(59 * time.Second)
	if _, ok := cache.get("k"); !ok {
		t.Error("entry expired before its TTL")
	}

	now = now.Add(2 * time.Second)
	if _, ok := cache.get("k"); ok {
		t.Error("entry served past its TTL")
	}
}

func TestTTLCacheRefreshResetsClock(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	cache := newTTLCache[int](60*time.Second, func() time.Time { return now })

	cache.put("k", 1)
	now = now.Add(50 * time.Second)
	cache.put("k", 2)
	now = now.Add(50 * time.Second)

	if got, ok := cache.get("k"); !ok || got != 2 {
		t.Errorf("get = %d, %v; want 2, true", got, ok)
	}
}
