package AdminService

import (
	"context"

	"gitlab.com/devpro_studio/FeatureGate/src/model/db"
	"gitlab.com/devpro_studio/FeatureGate/src/model/dto"
)

// Interface covers every mutation the admin surface exposes. Validation
// failures come back as errs.ConstraintViolation, duplicate keys as
// errs.ErrDuplicateKey, missing targets as errs.ErrNotFound and store
// trouble as errs.ErrStoreUnavailable.
type Interface interface {
	CreateFlag(c context.Context, input dto.FlagInput) (*db.Flag, error)
	UpdateFlag(c context.Context, key string, patch dto.FlagPatch) (*db.Flag, error)
	DeleteFlag(c context.Context, key string) error

	SetOverride(c context.Context, flagKey string, userID string, enabled bool) (*db.Override, error)
	DeleteOverride(c context.Context, flagKey string, userID string) error
}
