package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_BurstDefaults(t *testing.T) {
	if NewLimiter(10, -1).defaultBurst != 5 {
		t.Error("negative burst must fall back to default 5")
	}
}

func TestLimiter_PerHostIsolation(t *testing.T) {
	limiter := NewLimiter(1, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "https://leginfo.legislature.ca.gov/faces"); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}

	// Burst of 1 is now exhausted for that host only.
	if limiter.Allow("https://leginfo.legislature.ca.gov/other") {
		t.Error("second request to same host must be throttled")
	}
	if !limiter.Allow("https://www.courtlistener.com/") {
		t.Error("a different host has its own budget")
	}
}

func TestLimiter_SetHostRate(t *testing.T) {
	limiter := NewLimiter(10, 10)
	limiter.SetHostRate("slow.example.com", 0.1, 1)

	if !limiter.Allow("https://slow.example.com/a") {
		t.Error("first request within burst must pass")
	}
	if limiter.Allow("https://slow.example.com/b") {
		t.Error("host-specific rate must throttle the second request")
	}
	if !limiter.Allow("https://fast.example.com/") {
		t.Error("other hosts keep the default rate")
	}
}

func TestLimiter_WaitWithDelay(t *testing.T) {
	limiter := NewLimiter(100, 1)

	start := time.Now()
	if err := limiter.WaitWithDelay(context.Background(), "https://example.com", 50*time.Millisecond); err != nil {
		t.Fatalf("WaitWithDelay failed: %v", err)
	}
	if time.Since(start) < 50*time.Millisecond {
		t.Error("crawl delay was not honored")
	}
}

func TestLimiter_WaitRespectsCancellation(t *testing.T) {
	limiter := NewLimiter(0.001, 1)
	ctx := context.Background()
	_ = limiter.Wait(ctx, "https://example.com") // consume the burst token

	cancelled, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(cancelled, "https://example.com"); err == nil {
		t.Error("wait on an exhausted limiter must fail when the context expires")
	}
}

func TestExtractHost(t *testing.T) {
	host, err := extractHost("https://example.com/foo")
	if err != nil {
		t.Fatalf("extractHost failed: %v", err)
	}
	if host != "example.com" {
		t.Errorf("expected example.com, got %s", host)
	}

	if _, err := extractHost("::invalid"); err == nil {
		t.Error("expected error for invalid URL")
	}
}
