package AdminService

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gitlab.com/devpro_studio/FeatureGate/src/errs"
	"gitlab.com/devpro_studio/FeatureGate/src/model/db"
	"gitlab.com/devpro_studio/FeatureGate/src/model/dto"
	FlagRepo "gitlab.com/devpro_studio/FeatureGate/src/repository/FlagRepository"
	OverrideRepo "gitlab.com/devpro_studio/FeatureGate/src/repository/OverrideRepository"
	VersionRepo "gitlab.com/devpro_studio/FeatureGate/src/repository/VersionRepository"
	"gitlab.com/devpro_studio/FeatureGate/src/service/FlagService"
	"gitlab.com/devpro_studio/Paranoia/pkg/database/postgres"
	"gitlab.com/devpro_studio/Paranoia/pkg/logger/mock_log"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// opLog is shared across the fakes so tests can assert the order of
// persist, invalidate and version bump.
type opLog struct {
	ops []string
}

func (l *opLog) add(op string) { l.ops = append(l.ops, op) }

type fakeFlagRepo struct {
	log       *opLog
	flags     map[string]*db.Flag
	getErr    error
	createErr error
	updateErr error
	deleteErr error
}

func (f *fakeFlagRepo) GetFlag(_ context.Context, key string) (*db.Flag, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.flags[key], nil
}

func (f *fakeFlagRepo) ListFlags(context.Context) ([]*db.Flag, error) { return nil, nil }

func (f *fakeFlagRepo) CreateFlag(_ context.Context, flag *db.Flag) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.flags[flag.Key] = flag
	f.log.add("persist:create:" + flag.Key)
	return nil
}

func (f *fakeFlagRepo) UpdateFlag(_ context.Context, flag *db.Flag) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.flags[flag.Key] = flag
	f.log.add("persist:update:" + flag.Key)
	return nil
}

func (f *fakeFlagRepo) DeleteFlag(_ context.Context, key string) (bool, error) {
	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	if _, ok := f.flags[key]; !ok {
		return false, nil
	}
	delete(f.flags, key)
	f.log.add("persist:delete:" + key)
	return true, nil
}

type fakeOverrideRepo struct {
	log       *opLog
	overrides map[string]*db.Override
	err       error
}

func (f *fakeOverrideRepo) GetOverride(_ context.Context, flagKey string, userID string) (*db.Override, error) {
	return f.overrides[flagKey+"/"+userID], f.err
}

func (f *fakeOverrideRepo) UpsertOverride(_ context.Context, flagKey string, userID string, enabled bool) (*db.Override, error) {
	if f.err != nil {
		return nil, f.err
	}
	item := &db.Override{FlagKey: flagKey, UserID: userID, Enabled: enabled}
	f.overrides[flagKey+"/"+userID] = item
	f.log.add("persist:override:" + flagKey + "/" + userID)
	return item, nil
}

func (f *fakeOverrideRepo) DeleteOverride(_ context.Context, flagKey string, userID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	key := flagKey + "/" + userID
	if _, ok := f.overrides[key]; !ok {
		return false, nil
	}
	delete(f.overrides, key)
	f.log.add("persist:delete_override:" + key)
	return true, nil
}

func (f *fakeOverrideRepo) DeleteByFlagKey(context.Context, postgres.SQLTx, string) error { return nil }

type fakeVersionRepo struct {
	log     *opLog
	version int64
	err     error
}

func (f *fakeVersionRepo) Current(context.Context) int64 { return f.version }

func (f *fakeVersionRepo) Bump(context.Context) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.version++
	f.log.add("bump")
	return f.version, nil
}

type fakeFlagService struct {
	log *opLog
}

func (f *fakeFlagService) IsEnabled(context.Context, string, dto.Principal) (bool, error) {
	return false, nil
}
func (f *fakeFlagService) GetStatus(context.Context, string, dto.Principal) (bool, error) {
	return false, nil
}
func (f *fakeFlagService) GetFlag(context.Context, string) (*db.Flag, error) { return nil, nil }
func (f *fakeFlagService) ListAll(context.Context) ([]*db.Flag, error)       { return nil, nil }
func (f *fakeFlagService) InvalidateFlag(flagKey string)                     { f.log.add("invalidate:" + flagKey) }
func (f *fakeFlagService) InvalidateOverride(flagKey string, userID string) {
	f.log.add("invalidate:" + flagKey + "/" + userID)
}
func (f *fakeFlagService) ClearCache() { f.log.add("clear") }

var (
	_ FlagRepo.Interface     = (*fakeFlagRepo)(nil)
	_ OverrideRepo.Interface = (*fakeOverrideRepo)(nil)
	_ VersionRepo.Interface  = (*fakeVersionRepo)(nil)
	_ FlagService.Interface  = (*fakeFlagService)(nil)
)

type fixture struct {
	log       *opLog
	flags     *fakeFlagRepo
	overrides *fakeOverrideRepo
	versions  *fakeVersionRepo
	svc       *Service
}

func newFixture() *fixture {
	log := &opLog{}
	f := &fixture{
		log:       log,
		flags:     &fakeFlagRepo{log: log, flags: map[string]*db.Flag{}},
		overrides: &fakeOverrideRepo{log: log, overrides: map[string]*db.Override{}},
		versions:  &fakeVersionRepo{log: log},
	}
	f.svc = &Service{
		logger:      mock_log.New(true),
		flags:       f.flags,
		overrides:   f.overrides,
		versions:    f.versions,
		flagService: &fakeFlagService{log: log},
		nowFn:       func() time.Time { return testNow },
	}
	return f
}

func assertOps(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected ops %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected ops %v, got %v", want, got)
		}
	}
}

func TestCreateFlag_PersistsBeforeInvalidateAndBump(t *testing.T) {
	f := newFixture()

	flag, err := f.svc.CreateFlag(context.Background(), dto.FlagInput{Key: "beta_search", Name: "Beta search", Enabled: true, PercentageRollout: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flag.CreatedAt != testNow || flag.UpdatedAt != testNow {
		t.Fatalf("expected creation timestamps %v, got %v/%v", testNow, flag.CreatedAt, flag.UpdatedAt)
	}

	assertOps(t, f.log.ops, "persist:create:beta_search", "invalidate:beta_search", "bump")
}

func TestCreateFlag_Validation(t *testing.T) {
	badTier := dto.Tier("platinum")
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)

	type test struct {
		name  string
		input dto.FlagInput
		field string
	}

	tests := []test{
		{"empty key", dto.FlagInput{}, "key"},
		{"uppercase key", dto.FlagInput{Key: "Beta"}, "key"},
		{"leading dash", dto.FlagInput{Key: "-beta"}, "key"},
		{"key too long", dto.FlagInput{Key: strings.Repeat("a", 129)}, "key"},
		{"rollout below range", dto.FlagInput{Key: "f", PercentageRollout: -1}, "percentage_rollout"},
		{"rollout above range", dto.FlagInput{Key: "f", PercentageRollout: 101}, "percentage_rollout"},
		{"unknown tier", dto.FlagInput{Key: "f", MinTier: &badTier}, "min_tier"},
		{"window ends before it starts", dto.FlagInput{Key: "f", StartAt: &start, EndAt: &end}, "end_at"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.svc.CreateFlag(context.Background(), tc.input)
			if !errors.Is(err, errs.ErrConstraintViolation) {
				t.Fatalf("expected constraint violation, got %v", err)
			}
			var cv *errs.ConstraintViolation
			if !errors.As(err, &cv) || cv.Field != tc.field {
				t.Fatalf("expected field %q, got %v", tc.field, err)
			}
			if len(f.log.ops) != 0 {
				t.Fatalf("rejected input must not touch the store, got %v", f.log.ops)
			}
		})
	}
}

func TestCreateFlag_DuplicateKeyPassesThrough(t *testing.T) {
	f := newFixture()
	f.flags.createErr = errs.ErrDuplicateKey

	_, err := f.svc.CreateFlag(context.Background(), dto.FlagInput{Key: "taken"})
	if !errors.Is(err, errs.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
	if len(f.log.ops) != 0 {
		t.Fatalf("failed create must not invalidate or bump, got %v", f.log.ops)
	}
}

func TestCreateFlag_StoreFailure(t *testing.T) {
	f := newFixture()
	f.flags.createErr = errors.New("connection refused")

	_, err := f.svc.CreateFlag(context.Background(), dto.FlagInput{Key: "f"})
	if !errors.Is(err, errs.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if len(f.log.ops) != 0 {
		t.Fatalf("failed create must not invalidate or bump, got %v", f.log.ops)
	}
}

func TestUpdateFlag_PatchSemantics(t *testing.T) {
	f := newFixture()
	tier := dto.TierPro
	start := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	created := testNow.Add(-24 * time.Hour)
	f.flags.flags["f"] = &db.Flag{
		Key: "f", Name: "old", Description: "keep me", Enabled: true,
		MinTier: &tier, PercentageRollout: 25, StartAt: &start, EndAt: &end,
		CreatedAt: created, UpdatedAt: created,
	}

	name := "new"
	enabled := false
	flag, err := f.svc.UpdateFlag(context.Background(), "f", dto.FlagPatch{
		Name:         &name,
		Enabled:      &enabled,
		ClearMinTier: true,
		ClearWindow:  true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if flag.Name != "new" || flag.Enabled {
		t.Fatalf("patched fields not applied: %+v", flag)
	}
	if flag.Description != "keep me" || flag.PercentageRollout != 25 {
		t.Fatalf("untouched fields must keep their values: %+v", flag)
	}
	if flag.MinTier != nil || flag.StartAt != nil || flag.EndAt != nil {
		t.Fatalf("clear flags must unset optional fields: %+v", flag)
	}
	if flag.CreatedAt != created || flag.UpdatedAt != testNow {
		t.Fatalf("expected UpdatedAt bump only, got %v/%v", flag.CreatedAt, flag.UpdatedAt)
	}

	assertOps(t, f.log.ops, "persist:update:f", "invalidate:f", "bump")
}

func TestUpdateFlag_MissingFlag(t *testing.T) {
	f := newFixture()
	if _, err := f.svc.UpdateFlag(context.Background(), "ghost", dto.FlagPatch{}); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateFlag_InvalidPatch(t *testing.T) {
	f := newFixture()
	f.flags.flags["f"] = &db.Flag{Key: "f"}

	bad := 150
	_, err := f.svc.UpdateFlag(context.Background(), "f", dto.FlagPatch{PercentageRollout: &bad})
	if !errors.Is(err, errs.ErrConstraintViolation) {
		t.Fatalf("expected constraint violation, got %v", err)
	}
	if len(f.log.ops) != 0 {
		t.Fatalf("rejected patch must not persist, got %v", f.log.ops)
	}
}

func TestDeleteFlag(t *testing.T) {
	f := newFixture()
	f.flags.flags["f"] = &db.Flag{Key: "f"}

	if err := f.svc.DeleteFlag(context.Background(), "f"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertOps(t, f.log.ops, "persist:delete:f", "invalidate:f", "bump")

	if err := f.svc.DeleteFlag(context.Background(), "ghost"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetOverride(t *testing.T) {
	f := newFixture()
	f.flags.flags["f"] = &db.Flag{Key: "f"}

	item, err := f.svc.SetOverride(context.Background(), "f", "u1", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.FlagKey != "f" || item.UserID != "u1" || !item.Enabled {
		t.Fatalf("unexpected override: %+v", item)
	}
	assertOps(t, f.log.ops, "persist:override:f/u1", "invalidate:f/u1", "bump")
}

func TestSetOverride_MissingFlag(t *testing.T) {
	f := newFixture()
	if _, err := f.svc.SetOverride(context.Background(), "ghost", "u1", true); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetOverride_EmptyUser(t *testing.T) {
	f := newFixture()
	f.flags.flags["f"] = &db.Flag{Key: "f"}

	_, err := f.svc.SetOverride(context.Background(), "f", "", true)
	var cv *errs.ConstraintViolation
	if !errors.As(err, &cv) || cv.Field != "user_id" {
		t.Fatalf("expected user_id constraint, got %v", err)
	}
}

func TestDeleteOverride(t *testing.T) {
	f := newFixture()
	f.overrides.overrides["f/u1"] = &db.Override{FlagKey: "f", UserID: "u1", Enabled: true}

	if err := f.svc.DeleteOverride(context.Background(), "f", "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertOps(t, f.log.ops, "persist:delete_override:f/u1", "invalidate:f/u1", "bump")
}

func TestDeleteOverride_AbsentIsNoOp(t *testing.T) {
	f := newFixture()

	if err := f.svc.DeleteOverride(context.Background(), "f", "ghost"); err != nil {
		t.Fatalf("expected no-op success, got %v", err)
	}
	// the cached verdict is still dropped, but nothing was persisted or bumped
	assertOps(t, f.log.ops, "invalidate:f/ghost")
}

func TestBumpFailureDoesNotFailMutation(t *testing.T) {
	f := newFixture()
	f.versions.err = errors.New("redis down")

	if _, err := f.svc.CreateFlag(context.Background(), dto.FlagInput{Key: "f"}); err != nil {
		t.Fatalf("a failed version bump must not fail the mutation, got %v", err)
	}
	assertOps(t, f.log.ops, "persist:create:f", "invalidate:f")
}
