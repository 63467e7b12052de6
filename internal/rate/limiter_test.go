package rate_test

import (
	"context"
	"testing"
	"time"

	"github.com/dropDatabas3/idcore/internal/rate"
)

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	l := rate.NewMemoryLimiter(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := l.Allow(ctx, "k1")
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !res.Allowed {
			t.Fatalf("hit %d should be allowed", i+1)
		}
	}

	res, err := l.Allow(ctx, "k1")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if res.Allowed {
		t.Fatal("4th hit must be denied")
	}
	if res.Remaining != 0 {
		t.Fatalf("remaining = %d", res.Remaining)
	}
	if res.RetryAfter <= 0 || res.RetryAfter > time.Minute {
		t.Fatalf("retry after = %v", res.RetryAfter)
	}
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	l := rate.NewMemoryLimiter(1, time.Minute)
	ctx := context.Background()

	if res, _ := l.Allow(ctx, "a"); !res.Allowed {
		t.Fatal("first hit on a must pass")
	}
	if res, _ := l.Allow(ctx, "a"); res.Allowed {
		t.Fatal("second hit on a must be denied")
	}
	if res, _ := l.Allow(ctx, "b"); !res.Allowed {
		t.Fatal("first hit on b must pass")
	}
}
