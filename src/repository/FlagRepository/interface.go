package FlagRepository

import (
	"context"

	"gitlab.com/devpro_studio/FeatureGate/src/model/db"
)

// Absent records come back as (nil, nil); an error always means the store
// itself failed.
type Interface interface {
	GetFlag(c context.Context, key string) (*db.Flag, error)
	ListFlags(c context.Context) ([]*db.Flag, error)

	CreateFlag(c context.Context, flag *db.Flag) error
	UpdateFlag(c context.Context, flag *db.Flag) error
	DeleteFlag(c context.Context, key string) (bool, error)
}
