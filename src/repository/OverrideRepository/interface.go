package OverrideRepository

import (
	"context"

	"gitlab.com/devpro_studio/FeatureGate/src/model/db"
	"gitlab.com/devpro_studio/Paranoia/pkg/database/postgres"
)

type Interface interface {
	GetOverride(c context.Context, flagKey string, userID string) (*db.Override, error)
	UpsertOverride(c context.Context, flagKey string, userID string, enabled bool) (*db.Override, error)
	DeleteOverride(c context.Context, flagKey string, userID string) (bool, error)

	DeleteByFlagKey(c context.Context, tx postgres.SQLTx, flagKey string) error
}
