package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestHostLimiter_PerHost(t *testing.T) {
	hl := NewHostLimiter(1, 1)
	ctx := context.Background()

	start := time.Now()
	if err := hl.Wait(ctx, "https://a.test/x"); err != nil {
		t.Fatal(err)
	}
	if err := hl.Wait(ctx, "https://b.test/x"); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("Different hosts should not share a bucket, waited %v", elapsed)
	}
}

func TestHostLimiter_BlocksSameHost(t *testing.T) {
	hl := NewHostLimiter(1, 1)
	hl.Wait(context.Background(), "https://a.test/1")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := hl.Wait(ctx, "https://a.test/2"); err == nil {
		t.Error("Expected second request to the same host to be limited")
	}
}

func TestHostLimiter_Unlimited(t *testing.T) {
	hl := NewHostLimiter(0, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	for i := 0; i < 100; i++ {
		if err := hl.Wait(ctx, "https://a.test/"); err != nil {
			t.Fatalf("Unexpected limit at request %d: %v", i, err)
		}
	}
}

func TestHostLimiter_InvalidURL(t *testing.T) {
	hl := NewHostLimiter(1, 1)
	if err := hl.Wait(context.Background(), "::bad"); err != nil {
		t.Errorf("Expected invalid URL to pass through, got %v", err)
	}
}
