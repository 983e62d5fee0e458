package FlagRepository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"gitlab.com/devpro_studio/FeatureGate/names"
	"gitlab.com/devpro_studio/FeatureGate/src/errs"
	"gitlab.com/devpro_studio/FeatureGate/src/model/db"
	"gitlab.com/devpro_studio/FeatureGate/src/model/dto"
	"gitlab.com/devpro_studio/FeatureGate/src/repository/OverrideRepository"
	"gitlab.com/devpro_studio/Paranoia/paranoia/interfaces"
	"gitlab.com/devpro_studio/Paranoia/paranoia/repository"
	"gitlab.com/devpro_studio/Paranoia/pkg/database/postgres"
)

const pgUniqueViolation = "23505"

type Repository struct {
	repository.Mock
	db                 postgres.IPostgres
	logger             interfaces.ILogger
	overrideRepository OverrideRepository.Interface
}

func New(name string) *Repository {
	return &Repository{
		Mock: repository.Mock{
			NamePkg: name,
		},
	}
}

func NewForTest(db postgres.IPostgres, overrideRepository OverrideRepository.Interface, logger interfaces.ILogger) *Repository {
	return &Repository{db: db, overrideRepository: overrideRepository, logger: logger}
}

func (t *Repository) Init(app interfaces.IEngine, _ map[string]interface{}) error {
	t.logger = app.GetLogger()
	t.db = app.GetPkg(interfaces.PkgDatabase, names.DatabasePrimary).(postgres.IPostgres)
	t.overrideRepository = app.GetModule(interfaces.ModuleRepository, names.OverrideRepository).(OverrideRepository.Interface)

	return nil
}

func (t *Repository) GetFlag(c context.Context, key string) (*db.Flag, error) {
	row, err := t.db.QueryRow(c, `
SELECT
    f.key,
    f.name,
    f.description,
    f.enabled,
    f.min_tier,
    f.percentage_rollout,
    f.start_at,
    f.end_at,
    f.metadata,
    f.created_at,
    f.updated_at
FROM flags AS f
WHERE f.key = $1
`, key)

	if err != nil {
		t.logger.Error(c, err)
		return nil, err
	}

	item, err := scanFlag(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		t.logger.Error(c, err)
		return nil, err
	}

	return item, nil
}

func (t *Repository) ListFlags(c context.Context) ([]*db.Flag, error) {
	rows, err := t.db.Query(c, `
SELECT
    f.key,
    f.name,
    f.description,
    f.enabled,
    f.min_tier,
    f.percentage_rollout,
    f.start_at,
    f.end_at,
    f.metadata,
    f.created_at,
    f.updated_at
FROM flags AS f
ORDER BY f.key
`)

	if err != nil {
		t.logger.Error(c, err)
		return nil, err
	}
	defer rows.Close()
	res := make([]*db.Flag, 0)

	for rows.Next() {
		item, err := scanFlag(rows)
		if err != nil {
			t.logger.Error(c, err)
			continue
		}
		res = append(res, item)
	}

	return res, nil
}

func (t *Repository) CreateFlag(c context.Context, flag *db.Flag) error {
	metadata, err := encodeMetadata(flag.Metadata)
	if err != nil {
		return err
	}

	tx, err := t.db.BeginTx(c)
	if err != nil {
		t.logger.Error(c, err)
		return err
	}

	defer tx.Rollback(c)

	row, err := tx.QueryRow(c, `SELECT 1 FROM flags WHERE key = $1`, flag.Key)
	if err != nil {
		t.logger.Error(c, err)
		return err
	}

	var one int
	if err := row.Scan(&one); err == nil {
		return errs.ErrDuplicateKey
	}

	if err := tx.Exec(c, `
INSERT INTO flags (key, name, description, enabled, min_tier, percentage_rollout, start_at, end_at, metadata, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`, flag.Key, flag.Name, flag.Description, flag.Enabled, tierColumn(flag.MinTier), flag.PercentageRollout,
		flag.StartAt, flag.EndAt, metadata, flag.CreatedAt, flag.UpdatedAt); err != nil {
		// the unique index backs up the pre-check under concurrent creates
		if isUniqueViolation(err) {
			return errs.ErrDuplicateKey
		}
		t.logger.Error(c, err)
		return err
	}

	if err := tx.Commit(c); err != nil {
		t.logger.Error(c, err)
		return err
	}

	return nil
}

func (t *Repository) UpdateFlag(c context.Context, flag *db.Flag) error {
	metadata, err := encodeMetadata(flag.Metadata)
	if err != nil {
		return err
	}

	row, err := t.db.QueryRow(c, `
UPDATE flags
SET name = $2,
    description = $3,
    enabled = $4,
    min_tier = $5,
    percentage_rollout = $6,
    start_at = $7,
    end_at = $8,
    metadata = $9,
    updated_at = $10
WHERE key = $1
RETURNING key
`, flag.Key, flag.Name, flag.Description, flag.Enabled, tierColumn(flag.MinTier), flag.PercentageRollout,
		flag.StartAt, flag.EndAt, metadata, flag.UpdatedAt)

	if err != nil {
		t.logger.Error(c, err)
		return err
	}

	var key string
	if err := row.Scan(&key); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.ErrNotFound
		}
		t.logger.Error(c, err)
		return err
	}

	return nil
}

func (t *Repository) DeleteFlag(c context.Context, key string) (bool, error) {
	tx, err := t.db.BeginTx(c)
	if err != nil {
		t.logger.Error(c, err)
		return false, err
	}

	defer tx.Rollback(c)

	if err := t.overrideRepository.DeleteByFlagKey(c, tx, key); err != nil {
		t.logger.Error(c, err)
		return false, err
	}

	row, err := tx.QueryRow(c, `DELETE FROM flags WHERE key = $1 RETURNING key`, key)
	if err != nil {
		t.logger.Error(c, err)
		return false, err
	}

	var deleted string
	if err := row.Scan(&deleted); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		t.logger.Error(c, err)
		return false, err
	}

	if err := tx.Commit(c); err != nil {
		t.logger.Error(c, err)
		return false, err
	}

	return true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFlag(row scanner) (*db.Flag, error) {
	var item db.Flag
	var minTier *string
	var metadata []byte

	if err := row.Scan(&item.Key, &item.Name, &item.Description, &item.Enabled, &minTier, &item.PercentageRollout,
		&item.StartAt, &item.EndAt, &metadata, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}

	if minTier != nil {
		tier := dto.Tier(*minTier)
		item.MinTier = &tier
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &item.Metadata); err != nil {
			return nil, err
		}
	}

	return &item, nil
}

func tierColumn(tier *dto.Tier) any {
	if tier == nil {
		return nil
	}
	return string(*tier)
}

func encodeMetadata(m map[string]string) ([]byte, error) {
	if len(m) == 0 {
		return nil, nil
	}
	return json.Marshal(m)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
