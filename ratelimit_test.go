package main

import (
	"testing"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(10, 20)

	// First request should be allowed
	if !rl.Allow("1.2.3.4") {
		t.Error("first request should be allowed")
	}

	// Different IP should also be allowed
	if !rl.Allow("5.6.7.8") {
		t.Error("different IP should be allowed")
	}
}

func TestRateLimiter_Burst(t *testing.T) {
	rl := NewRateLimiter(5, 10)

	ip := "10.0.0.1"

	// Should allow the configured burst but not an unbounded run
	allowed := 0
	for i := 0; i < 40; i++ {
		if rl.Allow(ip) {
			allowed++
		}
	}

	if allowed < 10 {
		t.Errorf("expected at least the burst of 10 allowed, got %d", allowed)
	}
	if allowed >= 40 {
		t.Error("rate limiter should have blocked some requests")
	}
}

func TestRateLimiter_PerIPIsolation(t *testing.T) {
	rl := NewRateLimiter(1, 1)

	if !rl.Allow("10.0.0.1") {
		t.Fatal("first request should pass")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("second request from same IP should be limited")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("an exhausted bucket must not affect another IP")
	}
}
