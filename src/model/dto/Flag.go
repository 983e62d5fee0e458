package dto

import "time"

// FlagInput carries all fields of a new flag definition. The key is fixed at
// creation and never changes afterwards.
type FlagInput struct {
	Key               string
	Name              string
	Description       string
	Enabled           bool
	MinTier           *Tier
	PercentageRollout int
	StartAt           *time.Time
	EndAt             *time.Time
	Metadata          map[string]string
}

// FlagPatch is a partial update: nil fields keep their current value. The
// Clear flags unset optional fields, which a nil pointer cannot express.
type FlagPatch struct {
	Name              *string
	Description       *string
	Enabled           *bool
	MinTier           *Tier
	ClearMinTier      bool
	PercentageRollout *int
	StartAt           *time.Time
	EndAt             *time.Time
	ClearWindow       bool
	Metadata          map[string]string
}
