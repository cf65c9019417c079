package respserver

import (
	"net"
	"testing"
	"time"
)

func TestRateLimiter_Allow(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := newRateLimiter(3)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !rl.allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	if rl.allow("10.0.0.1") {
		t.Error("fourth request in the same instant should be limited")
	}
	if !rl.allow("10.0.0.2") {
		t.Error("other clients have their own bucket")
	}

	now = now.Add(time.Second)
	if !rl.allow("10.0.0.1") {
		t.Error("bucket should refill after a second")
	}
}

func TestRateLimiter_Prune(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := newRateLimiter(10)
	rl.now = func() time.Time { return now }

	rl.allow("old")
	now = now.Add(time.Hour)
	rl.allow("fresh")

	if n := rl.prune(10 * time.Minute); n != 1 {
		t.Errorf("prune() = %d, want 1", n)
	}
	if rl.clients.Has("old") {
		t.Error("idle client should be pruned")
	}
	if !rl.clients.Has("fresh") {
		t.Error("recent client should remain")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		addr net.Addr
		want string
	}{
		{&net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 5000}, "127.0.0.1"},
		{&net.TCPAddr{IP: net.ParseIP("::1"), Port: 5000}, "::1"},
		{nil, ""},
	}

	for _, tt := range tests {
		if got := clientIP(tt.addr); got != tt.want {
			t.Errorf("clientIP(%v) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}
