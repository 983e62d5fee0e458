package SubscriptionRepository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"gitlab.com/devpro_studio/FeatureGate/names"
	"gitlab.com/devpro_studio/FeatureGate/src/model/dto"
	"gitlab.com/devpro_studio/Paranoia/paranoia/interfaces"
	"gitlab.com/devpro_studio/Paranoia/paranoia/repository"
	"gitlab.com/devpro_studio/Paranoia/pkg/database/postgres"
)

type Repository struct {
	repository.Mock
	logger interfaces.ILogger
	db     postgres.IPostgres
}

func New(name string) *Repository {
	return &Repository{
		Mock: repository.Mock{
			NamePkg: name,
		},
	}
}

func NewForTest(db postgres.IPostgres, logger interfaces.ILogger) *Repository {
	return &Repository{db: db, logger: logger}
}

func (t *Repository) Init(app interfaces.IEngine, _ map[string]interface{}) error {
	t.logger = app.GetLogger()
	t.db = app.GetPkg(interfaces.PkgDatabase, names.DatabasePrimary).(postgres.IPostgres)

	return nil
}

// GetTierByUserID resolves the caller's tier from their active subscription.
// Users without one stay on the free tier; so do callers when the store
// fails, which keeps tier-gated flags closed.
func (t *Repository) GetTierByUserID(c context.Context, userID string) (dto.Tier, error) {
	row, err := t.db.QueryRow(c, `
SELECT
    s.tier
FROM subscriptions AS s
WHERE s.user_id = $1
  AND s.status = 'active'
ORDER BY s.created_at DESC
LIMIT 1
`, userID)

	if err != nil {
		t.logger.Error(c, err)
		return dto.TierFree, err
	}

	var raw string
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dto.TierFree, nil
		}
		t.logger.Error(c, err)
		return dto.TierFree, err
	}

	tier, ok := dto.ParseTier(raw)
	if !ok {
		return dto.TierFree, nil
	}

	return tier, nil
}
