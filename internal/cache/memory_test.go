package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"dispatchBack/internal/models"
)

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemoryLocationCache()
	ctx := context.Background()

	locs, err := c.Get(ctx, "req-1")
	if err != nil {
		t.Fatalf("Get on empty cache: %v", err)
	}
	if locs.Requester != nil || locs.Provider != nil {
		t.Fatal("expected both entries absent")
	}

	now := time.Now()
	if err := c.Set(ctx, "req-1", models.RoleRequester, models.LiveLocation{Lat: 1, Lng: 2, UpdatedAt: now}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	locs, _ = c.Get(ctx, "req-1")
	if locs.Requester == nil || locs.Requester.Lat != 1 {
		t.Fatalf("requester entry missing or wrong: %+v", locs.Requester)
	}
	if locs.Provider != nil {
		t.Fatal("provider entry must stay absent")
	}

	// Returned entries are copies; mutating them must not touch the cache.
	locs.Requester.Lat = 99
	again, _ := c.Get(ctx, "req-1")
	if again.Requester.Lat != 1 {
		t.Fatal("cache entry mutated through returned pointer")
	}
}

func TestMemoryCacheConcurrentWriters(t *testing.T) {
	c := NewMemoryLocationCache()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			requestID := fmt.Sprintf("req-%d", n%5)
			role := models.RoleRequester
			if n%2 == 0 {
				role = models.RoleProvider
			}
			_ = c.Set(ctx, requestID, role, models.LiveLocation{Lat: float64(n), Lng: float64(n), UpdatedAt: time.Now()})
			_, _ = c.Get(ctx, requestID)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 5; i++ {
		locs, err := c.Get(ctx, fmt.Sprintf("req-%d", i))
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if locs.Requester == nil || locs.Provider == nil {
			t.Fatalf("expected both roles present for req-%d", i)
		}
	}
}
