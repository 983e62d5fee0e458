package RateLimitRepository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gitlab.com/devpro_studio/Paranoia/pkg/cache/redis"
	"gitlab.com/devpro_studio/Paranoia/pkg/logger/mock_log"
)

func fixedNow() time.Time {
	return time.Date(2025, 6, 15, 12, 0, 30, 0, time.UTC)
}

func TestAllow_ZeroLimitDisablesLimiting(t *testing.T) {
	repo := NewForTest(&redis.Mock{Data: map[string]string{}}, mock_log.New(true), fixedNow)

	for i := 0; i < 100; i++ {
		if !repo.Allow(context.Background(), "u1", 0) {
			t.Fatalf("limit 0 must never reject")
		}
	}
}

func TestAllow_UnderLimit(t *testing.T) {
	repo := NewForTest(&redis.Mock{Data: map[string]string{}}, mock_log.New(true), fixedNow)

	if !repo.Allow(context.Background(), "u1", 3) {
		t.Fatalf("first request must pass")
	}
	if !repo.Allow(context.Background(), "u1", 3) {
		t.Fatalf("second request must pass")
	}
}

func TestAllow_AtLimit(t *testing.T) {
	window := fixedNow().Unix() / 60
	key := fmt.Sprintf("rate:u1:%d", window)

	repo := NewForTest(&redis.Mock{Data: map[string]string{key: "5"}}, mock_log.New(true), fixedNow)

	if repo.Allow(context.Background(), "u1", 5) {
		t.Fatalf("request at the limit must be rejected")
	}
	if !repo.Allow(context.Background(), "u2", 5) {
		t.Fatalf("another client must not be affected")
	}
}
