package evaluator

import (
	"time"

	"gitlab.com/devpro_studio/FeatureGate/src/model/db"
	"gitlab.com/devpro_studio/FeatureGate/src/model/dto"
)

// Evaluate resolves a flag verdict for one principal at a fixed point in
// time. It is pure: same inputs always yield the same verdict.
//
// Resolution order, first match wins:
//  1. per-user override
//  2. global enabled bit
//  3. date window (inclusive on both ends)
//  4. minimum subscription tier
//  5. percentage rollout bucket
func Evaluate(flag *db.Flag, override *db.Override, p dto.Principal, now time.Time) bool {
	if flag == nil {
		return false
	}
	if override != nil {
		return override.Enabled
	}
	if !flag.Enabled {
		return false
	}
	if flag.StartAt != nil && now.Before(*flag.StartAt) {
		return false
	}
	if flag.EndAt != nil && now.After(*flag.EndAt) {
		return false
	}
	if flag.MinTier != nil && !p.Tier.AtLeast(*flag.MinTier) {
		return false
	}
	return rolloutHit(flag.Key, p.UserID, flag.PercentageRollout)
}

// Bucket returns the rollout bucket [0..99] a user lands in for a flag.
// The flag is enabled for the user when the bucket is below the rollout
// percentage.
func Bucket(flagKey string, userID string) int {
	const (
		offset64 = 1469598103934665603
		prime64  = 1099511628211
	)
	var hash uint64 = offset64
	for i := 0; i < len(flagKey); i++ {
		hash ^= uint64(flagKey[i])
		hash *= prime64
	}
	// '::'
	hash ^= uint64(':')
	hash *= prime64
	hash ^= uint64(':')
	hash *= prime64
	for i := 0; i < len(userID); i++ {
		hash ^= uint64(userID[i])
		hash *= prime64
	}
	return int(hash % 100)
}

// rolloutHit buckets the user with FNV-1a, without allocations.
func rolloutHit(flagKey string, userID string, percent int) bool {
	// clamp percent
	if percent <= 0 {
		return false
	}
	if percent >= 100 {
		return true
	}
	return Bucket(flagKey, userID) < percent
}
