package RateLimitRepository

import (
	"context"
	"fmt"
	"time"

	"gitlab.com/devpro_studio/FeatureGate/names"
	"gitlab.com/devpro_studio/Paranoia/paranoia/interfaces"
	"gitlab.com/devpro_studio/Paranoia/paranoia/repository"
	"gitlab.com/devpro_studio/Paranoia/pkg/cache/redis"
)

type Repository struct {
	repository.Mock
	logger interfaces.ILogger
	cache  redis.IRedis
	now    func() time.Time
}

func New(name string) *Repository {
	return &Repository{
		Mock: repository.Mock{
			NamePkg: name,
		},
		now: time.Now,
	}
}

func NewForTest(cache redis.IRedis, logger interfaces.ILogger, now func() time.Time) *Repository {
	return &Repository{cache: cache, logger: logger, now: now}
}

func (t *Repository) Init(app interfaces.IEngine, _ map[string]interface{}) error {
	t.logger = app.GetLogger()
	t.cache = app.GetPkg(interfaces.PkgCache, names.CacheRedis).(redis.IRedis)

	return nil
}

// Allow counts the request against the client's current minute window and
// reports whether it still fits under the limit. Cache trouble never blocks
// a request.
func (t *Repository) Allow(c context.Context, clientKey string, limit int) bool {
	if limit <= 0 {
		return true
	}

	window := t.now().Unix() / 60
	key := fmt.Sprintf("rate:%s:%d", clientKey, window)

	var used int
	if vStr, err := t.cache.Get(c, key); err == nil && vStr != "" {
		_, _ = fmt.Sscanf(vStr, "%d", &used)
	}

	if used >= limit {
		return false
	}

	if err := t.cache.Set(c, key, used+1, time.Minute); err != nil {
		t.logger.Error(c, err)
	}

	return true
}
