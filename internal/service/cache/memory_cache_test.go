package cache

import (
	"context"
	"testing"
	"time"

	"FinSight/internal/domain/models"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryAnswerCache(time.Minute)
	ctx := context.Background()

	if _, ok := c.Get(ctx, "q1"); ok {
		t.Fatal("unexpected hit on empty cache")
	}

	c.Set(ctx, "q1", &models.QueryResponse{Answer: "cached"})
	resp, ok := c.Get(ctx, "q1")
	if !ok || resp.Answer != "cached" {
		t.Fatalf("get = %+v ok=%v", resp, ok)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryAnswerCache(10 * time.Millisecond)
	ctx := context.Background()

	c.Set(ctx, "q1", &models.QueryResponse{Answer: "cached"})
	time.Sleep(25 * time.Millisecond)
	if _, ok := c.Get(ctx, "q1"); ok {
		t.Fatal("entry must expire")
	}
}

func TestMemoryCacheZeroTTLNeverExpires(t *testing.T) {
	c := NewMemoryAnswerCache(0)
	ctx := context.Background()

	c.Set(ctx, "q1", &models.QueryResponse{Answer: "cached"})
	time.Sleep(10 * time.Millisecond)
	if _, ok := c.Get(ctx, "q1"); !ok {
		t.Fatal("zero TTL entry must persist")
	}
}
