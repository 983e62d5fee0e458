package FlagService

import (
	"context"

	"gitlab.com/devpro_studio/FeatureGate/src/model/db"
	"gitlab.com/devpro_studio/FeatureGate/src/model/dto"
)

type Interface interface {
	// IsEnabled resolves a flag for a principal. The boolean is always safe
	// to act on: missing flags and store failures resolve to false. The
	// error, when set, is errs.ErrStoreUnavailable and exists for logging.
	IsEnabled(c context.Context, flagKey string, p dto.Principal) (bool, error)
	GetStatus(c context.Context, flagKey string, p dto.Principal) (bool, error)

	GetFlag(c context.Context, flagKey string) (*db.Flag, error)
	ListAll(c context.Context) ([]*db.Flag, error)

	InvalidateFlag(flagKey string)
	InvalidateOverride(flagKey string, userID string)
	ClearCache()
}
