package FlagService

import (
	"context"
	"time"

	"gitlab.com/devpro_studio/FeatureGate/names"
	"gitlab.com/devpro_studio/FeatureGate/src/errs"
	"gitlab.com/devpro_studio/FeatureGate/src/evaluator"
	"gitlab.com/devpro_studio/FeatureGate/src/flagcache"
	"gitlab.com/devpro_studio/FeatureGate/src/model/db"
	"gitlab.com/devpro_studio/FeatureGate/src/model/dto"
	"gitlab.com/devpro_studio/FeatureGate/src/repository/FlagRepository"
	"gitlab.com/devpro_studio/FeatureGate/src/repository/OverrideRepository"
	"gitlab.com/devpro_studio/Paranoia/paranoia/interfaces"
	"gitlab.com/devpro_studio/Paranoia/paranoia/service"
	"gitlab.com/devpro_studio/go_utils/decode"
)

type Service struct {
	service.Mock
	logger             interfaces.ILogger
	flagRepository     FlagRepository.Interface
	overrideRepository OverrideRepository.Interface
	cache              *flagcache.Cache
	storeTimeout       time.Duration
	nowFn              func() time.Time

	config Config
}

type Config struct {
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
	StoreTimeoutMS  int `yaml:"store_timeout_ms"`
}

func New(name string) *Service {
	return &Service{
		Mock: service.Mock{
			NamePkg: name,
		},
	}
}

func NewForTest(
	flagRepository FlagRepository.Interface,
	overrideRepository OverrideRepository.Interface,
	logger interfaces.ILogger,
	cache *flagcache.Cache,
	nowFn func() time.Time,
) *Service {
	return &Service{
		logger:             logger,
		flagRepository:     flagRepository,
		overrideRepository: overrideRepository,
		cache:              cache,
		storeTimeout:       2 * time.Second,
		nowFn:              nowFn,
	}
}

func (t *Service) Init(app interfaces.IEngine, cfg map[string]interface{}) error {
	t.logger = app.GetLogger()
	t.flagRepository = app.GetModule(interfaces.ModuleRepository, names.FlagRepository).(FlagRepository.Interface)
	t.overrideRepository = app.GetModule(interfaces.ModuleRepository, names.OverrideRepository).(OverrideRepository.Interface)

	err := decode.Decode(cfg, &t.config, "yaml", decode.DecoderStrongFoundDst)
	if err != nil {
		return err
	}

	if t.config.CacheTTLSeconds <= 0 {
		t.config.CacheTTLSeconds = 300
	}
	if t.config.StoreTimeoutMS <= 0 {
		t.config.StoreTimeoutMS = 2000
	}

	t.cache = flagcache.New(time.Duration(t.config.CacheTTLSeconds) * time.Second)
	t.storeTimeout = time.Duration(t.config.StoreTimeoutMS) * time.Millisecond
	t.nowFn = time.Now

	return nil
}

// IsEnabled is the read path: cached verdict first, otherwise one bounded
// round of store lookups, evaluate, cache, return. A missing flag is a
// cacheable false, never an error.
func (t *Service) IsEnabled(c context.Context, flagKey string, p dto.Principal) (bool, error) {
	if v, ok := t.cache.Get(flagKey, p.UserID); ok {
		return v, nil
	}

	storeCtx, cancel := context.WithTimeout(c, t.storeTimeout)
	defer cancel()

	flag, err := t.flagRepository.GetFlag(storeCtx, flagKey)
	if err != nil {
		t.logger.Error(c, err)
		return false, errs.ErrStoreUnavailable
	}

	var override *db.Override
	if flag != nil {
		override, err = t.overrideRepository.GetOverride(storeCtx, flagKey, p.UserID)
		if err != nil {
			t.logger.Error(c, err)
			return false, errs.ErrStoreUnavailable
		}
	}

	verdict := evaluator.Evaluate(flag, override, p, t.nowFn())
	t.cache.Put(flagKey, p.UserID, verdict)

	return verdict, nil
}

// GetStatus is the public status contract; it resolves exactly like IsEnabled.
func (t *Service) GetStatus(c context.Context, flagKey string, p dto.Principal) (bool, error) {
	return t.IsEnabled(c, flagKey, p)
}

func (t *Service) GetFlag(c context.Context, flagKey string) (*db.Flag, error) {
	storeCtx, cancel := context.WithTimeout(c, t.storeTimeout)
	defer cancel()

	flag, err := t.flagRepository.GetFlag(storeCtx, flagKey)
	if err != nil {
		t.logger.Error(c, err)
		return nil, errs.ErrStoreUnavailable
	}

	return flag, nil
}

// ListAll reads definitions straight from the store; admin views must not
// see stale verdict-cache state.
func (t *Service) ListAll(c context.Context) ([]*db.Flag, error) {
	storeCtx, cancel := context.WithTimeout(c, t.storeTimeout)
	defer cancel()

	flags, err := t.flagRepository.ListFlags(storeCtx)
	if err != nil {
		t.logger.Error(c, err)
		return nil, errs.ErrStoreUnavailable
	}

	return flags, nil
}

func (t *Service) InvalidateFlag(flagKey string) {
	t.cache.Invalidate(flagKey)
}

func (t *Service) InvalidateOverride(flagKey string, userID string) {
	t.cache.InvalidateUser(flagKey, userID)
}

func (t *Service) ClearCache() {
	t.cache.Clear()
}
