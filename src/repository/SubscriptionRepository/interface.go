package SubscriptionRepository

import (
	"context"

	"gitlab.com/devpro_studio/FeatureGate/src/model/dto"
)

type Interface interface {
	GetTierByUserID(c context.Context, userID string) (dto.Tier, error)
}
