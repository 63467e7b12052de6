package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/dropDatabas3/idcore/internal/cache"
)

func TestMemoryCache_SetGetDelete(t *testing.T) {
	c := cache.NewMemory("t")
	ctx := context.Background()

	if _, err := c.Get(ctx, "missing"); !cache.IsNotFound(err) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	if err := c.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := c.Get(ctx, "k")
	if err != nil || got != "v" {
		t.Fatalf("get: %q %v", got, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := c.Get(ctx, "k"); !cache.IsNotFound(err) {
		t.Fatalf("want ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryCache_TTLExpires(t *testing.T) {
	c := cache.NewMemory("")
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", 20*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(40 * time.Millisecond)
	if _, err := c.Get(ctx, "k"); !cache.IsNotFound(err) {
		t.Fatalf("want expiry, got %v", err)
	}
}

func TestMemoryCache_PrefixIsolation(t *testing.T) {
	ctx := context.Background()
	a := cache.NewMemory("a")
	b := cache.NewMemory("b")

	_ = a.Set(ctx, "k", "from-a", 0)
	if _, err := b.Get(ctx, "k"); !cache.IsNotFound(err) {
		t.Fatalf("instances must be isolated, got %v", err)
	}
}
