package http

import (
	"testing"
	"time"
)

func TestRateLimiter_AllowExhaustsTokens(t *testing.T) {

	limiter := NewRateLimiter(2, time.Minute)
	defer limiter.Stop()

	if !limiter.Allow("1.2.3.4") {
		t.Fatalf("first request should be allowed")
	}
	if !limiter.Allow("1.2.3.4") {
		t.Fatalf("second request should be allowed")
	}
	if limiter.Allow("1.2.3.4") {
		t.Errorf("third request should be rejected")
	}

	// Otra IP tiene su propio bucket
	if !limiter.Allow("5.6.7.8") {
		t.Errorf("different client should be allowed")
	}
}
