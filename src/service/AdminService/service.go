package AdminService

import (
	"context"
	"errors"
	"regexp"
	"time"

	"gitlab.com/devpro_studio/FeatureGate/names"
	"gitlab.com/devpro_studio/FeatureGate/src/errs"
	"gitlab.com/devpro_studio/FeatureGate/src/model/db"
	"gitlab.com/devpro_studio/FeatureGate/src/model/dto"
	"gitlab.com/devpro_studio/FeatureGate/src/repository/FlagRepository"
	"gitlab.com/devpro_studio/FeatureGate/src/repository/OverrideRepository"
	"gitlab.com/devpro_studio/FeatureGate/src/repository/VersionRepository"
	"gitlab.com/devpro_studio/FeatureGate/src/service/FlagService"
	"gitlab.com/devpro_studio/Paranoia/paranoia/interfaces"
	"gitlab.com/devpro_studio/Paranoia/paranoia/service"
)

var keyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,127}$`)

type Service struct {
	service.Mock
	logger      interfaces.ILogger
	flags       FlagRepository.Interface
	overrides   OverrideRepository.Interface
	versions    VersionRepository.Interface
	flagService FlagService.Interface
	nowFn       func() time.Time
}

func New(name string) *Service {
	return &Service{Mock: service.Mock{NamePkg: name}}
}

func (t *Service) Init(app interfaces.IEngine, _ map[string]interface{}) error {
	t.logger = app.GetLogger()
	t.flags = app.GetModule(interfaces.ModuleRepository, names.FlagRepository).(FlagRepository.Interface)
	t.overrides = app.GetModule(interfaces.ModuleRepository, names.OverrideRepository).(OverrideRepository.Interface)
	t.versions = app.GetModule(interfaces.ModuleRepository, names.VersionRepository).(VersionRepository.Interface)
	t.flagService = app.GetModule(interfaces.ModuleService, names.FlagService).(FlagService.Interface)
	t.nowFn = time.Now
	return nil
}

func (t *Service) CreateFlag(c context.Context, input dto.FlagInput) (*db.Flag, error) {
	if !keyPattern.MatchString(input.Key) {
		return nil, errs.Constraint("key", "must be 1-128 chars of a-z 0-9 _ - and start with a letter or digit")
	}

	now := t.nowFn()
	flag := &db.Flag{
		Key:               input.Key,
		Name:              input.Name,
		Description:       input.Description,
		Enabled:           input.Enabled,
		MinTier:           input.MinTier,
		PercentageRollout: input.PercentageRollout,
		StartAt:           input.StartAt,
		EndAt:             input.EndAt,
		Metadata:          input.Metadata,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := validateFlag(flag); err != nil {
		return nil, err
	}

	if err := t.flags.CreateFlag(c, flag); err != nil {
		if errors.Is(err, errs.ErrDuplicateKey) {
			return nil, err
		}
		t.logger.Error(c, err)
		return nil, errs.ErrStoreUnavailable
	}

	// a recent miss for this key may still be cached as a negative verdict
	t.flagService.InvalidateFlag(flag.Key)
	t.bump(c)

	return flag, nil
}

func (t *Service) UpdateFlag(c context.Context, key string, patch dto.FlagPatch) (*db.Flag, error) {
	flag, err := t.flags.GetFlag(c, key)
	if err != nil {
		t.logger.Error(c, err)
		return nil, errs.ErrStoreUnavailable
	}
	if flag == nil {
		return nil, errs.ErrNotFound
	}

	applyPatch(flag, patch)
	if err := validateFlag(flag); err != nil {
		return nil, err
	}
	flag.UpdatedAt = t.nowFn()

	if err := t.flags.UpdateFlag(c, flag); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, err
		}
		t.logger.Error(c, err)
		return nil, errs.ErrStoreUnavailable
	}

	t.flagService.InvalidateFlag(key)
	t.bump(c)

	return flag, nil
}

func (t *Service) DeleteFlag(c context.Context, key string) error {
	deleted, err := t.flags.DeleteFlag(c, key)
	if err != nil {
		t.logger.Error(c, err)
		return errs.ErrStoreUnavailable
	}
	if !deleted {
		return errs.ErrNotFound
	}

	t.flagService.InvalidateFlag(key)
	t.bump(c)

	return nil
}

func (t *Service) SetOverride(c context.Context, flagKey string, userID string, enabled bool) (*db.Override, error) {
	if userID == "" {
		return nil, errs.Constraint("user_id", "required")
	}

	flag, err := t.flags.GetFlag(c, flagKey)
	if err != nil {
		t.logger.Error(c, err)
		return nil, errs.ErrStoreUnavailable
	}
	if flag == nil {
		return nil, errs.ErrNotFound
	}

	item, err := t.overrides.UpsertOverride(c, flagKey, userID, enabled)
	if err != nil {
		t.logger.Error(c, err)
		return nil, errs.ErrStoreUnavailable
	}

	t.flagService.InvalidateOverride(flagKey, userID)
	t.bump(c)

	return item, nil
}

func (t *Service) DeleteOverride(c context.Context, flagKey string, userID string) error {
	deleted, err := t.overrides.DeleteOverride(c, flagKey, userID)
	if err != nil {
		t.logger.Error(c, err)
		return errs.ErrStoreUnavailable
	}

	// removing an absent override is a success, the cached verdict still goes
	t.flagService.InvalidateOverride(flagKey, userID)
	if deleted {
		t.bump(c)
	}

	return nil
}

// bump advances the config version clients poll for. A failed bump never
// fails the mutation itself, the cache TTL still bounds staleness.
func (t *Service) bump(c context.Context) {
	if _, err := t.versions.Bump(c); err != nil {
		t.logger.Error(c, err)
	}
}

func validateFlag(flag *db.Flag) error {
	if flag.PercentageRollout < 0 || flag.PercentageRollout > 100 {
		return errs.Constraint("percentage_rollout", "must be between 0 and 100")
	}
	if flag.MinTier != nil && !flag.MinTier.Valid() {
		return errs.Constraint("min_tier", "unknown subscription tier")
	}
	if flag.StartAt != nil && flag.EndAt != nil && flag.EndAt.Before(*flag.StartAt) {
		return errs.Constraint("end_at", "must not precede start_at")
	}
	return nil
}

func applyPatch(flag *db.Flag, patch dto.FlagPatch) {
	if patch.Name != nil {
		flag.Name = *patch.Name
	}
	if patch.Description != nil {
		flag.Description = *patch.Description
	}
	if patch.Enabled != nil {
		flag.Enabled = *patch.Enabled
	}
	if patch.MinTier != nil {
		flag.MinTier = patch.MinTier
	}
	if patch.ClearMinTier {
		flag.MinTier = nil
	}
	if patch.PercentageRollout != nil {
		flag.PercentageRollout = *patch.PercentageRollout
	}
	if patch.StartAt != nil {
		flag.StartAt = patch.StartAt
	}
	if patch.EndAt != nil {
		flag.EndAt = patch.EndAt
	}
	if patch.ClearWindow {
		flag.StartAt = nil
		flag.EndAt = nil
	}
	if patch.Metadata != nil {
		flag.Metadata = patch.Metadata
	}
}
