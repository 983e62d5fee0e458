package VersionRepository

import (
	"context"
	"fmt"
	"time"

	"gitlab.com/devpro_studio/FeatureGate/names"
	"gitlab.com/devpro_studio/Paranoia/paranoia/interfaces"
	"gitlab.com/devpro_studio/Paranoia/paranoia/repository"
	"gitlab.com/devpro_studio/Paranoia/pkg/cache/redis"
)

const versionKey = "flag_version"

// Repository publishes a monotonically growing change version in redis.
// Clients poll it to learn that some flag changed and drop their local
// caches; the signal is advisory, the TTL bound still applies.
type Repository struct {
	repository.Mock
	cache redis.IRedis
}

func New(name string) *Repository {
	return &Repository{
		Mock: repository.Mock{
			NamePkg: name,
		},
	}
}

func NewForTest(cache redis.IRedis) *Repository {
	return &Repository{cache: cache}
}

func (t *Repository) Init(app interfaces.IEngine, _ map[string]interface{}) error {
	t.cache = app.GetPkg(interfaces.PkgCache, names.CacheRedis).(redis.IRedis)

	return nil
}

func (t *Repository) Current(c context.Context) int64 {
	vStr, err := t.cache.Get(c, versionKey)
	if err != nil || vStr == "" {
		return 0
	}
	var cur int64
	_, _ = fmt.Sscanf(vStr, "%d", &cur)
	return cur
}

func (t *Repository) Bump(c context.Context) (int64, error) {
	vStr, err := t.cache.Get(c, versionKey)
	if err != nil || vStr == "" {
		if err := t.cache.Set(c, versionKey, 1, 24*time.Hour); err != nil {
			return 0, err
		}
		return 1, nil
	}
	var cur int64
	_, _ = fmt.Sscanf(vStr, "%d", &cur)
	if err := t.cache.Set(c, versionKey, cur+1, 24*time.Hour); err != nil {
		return 0, err
	}
	return cur + 1, nil
}
