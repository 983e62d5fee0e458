package db

import (
	"time"

	"gitlab.com/devpro_studio/FeatureGate/src/model/dto"
)

type Flag struct {
	Key               string
	Name              string
	Description       string
	Enabled           bool
	MinTier           *dto.Tier
	PercentageRollout int
	StartAt           *time.Time
	EndAt             *time.Time
	Metadata          map[string]string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
