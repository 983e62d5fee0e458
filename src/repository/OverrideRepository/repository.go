package OverrideRepository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"gitlab.com/devpro_studio/FeatureGate/names"
	"gitlab.com/devpro_studio/FeatureGate/src/model/db"
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

func (t *Repository) GetOverride(c context.Context, flagKey string, userID string) (*db.Override, error) {
	row, err := t.db.QueryRow(c, `
SELECT
    o.id,
    o.flag_key,
    o.user_id,
    o.enabled,
    o.created_at,
    o.updated_at
FROM flag_overrides AS o
WHERE o.flag_key = $1
  AND o.user_id = $2
`, flagKey, userID)

	if err != nil {
		t.logger.Error(c, err)
		return nil, err
	}

	var item db.Override
	if err := row.Scan(&item.ID, &item.FlagKey, &item.UserID, &item.Enabled, &item.CreatedAt, &item.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		t.logger.Error(c, err)
		return nil, err
	}

	return &item, nil
}

func (t *Repository) UpsertOverride(c context.Context, flagKey string, userID string, enabled bool) (*db.Override, error) {
	row, err := t.db.QueryRow(c, `
INSERT INTO flag_overrides (id, flag_key, user_id, enabled, created_at, updated_at)
VALUES ($1, $2, $3, $4, NOW(), NOW())
ON CONFLICT (flag_key, user_id) DO UPDATE SET enabled = EXCLUDED.enabled, updated_at = NOW()
RETURNING id, flag_key, user_id, enabled, created_at, updated_at
`, uuid.New(), flagKey, userID, enabled)

	if err != nil {
		t.logger.Error(c, err)
		return nil, err
	}

	var item db.Override
	if err := row.Scan(&item.ID, &item.FlagKey, &item.UserID, &item.Enabled, &item.CreatedAt, &item.UpdatedAt); err != nil {
		t.logger.Error(c, err)
		return nil, err
	}

	return &item, nil
}

func (t *Repository) DeleteOverride(c context.Context, flagKey string, userID string) (bool, error) {
	row, err := t.db.QueryRow(c, `
DELETE FROM flag_overrides
WHERE flag_key = $1
  AND user_id = $2
RETURNING id
`, flagKey, userID)

	if err != nil {
		t.logger.Error(c, err)
		return false, err
	}

	var id uuid.UUID
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		t.logger.Error(c, err)
		return false, err
	}

	return true, nil
}

func (t *Repository) DeleteByFlagKey(c context.Context, tx postgres.SQLTx, flagKey string) error {
	return tx.Exec(c, `DELETE FROM flag_overrides WHERE flag_key = $1`, flagKey)
}
