package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"gitlab.com/devpro_studio/FeatureGate/names"
	"gitlab.com/devpro_studio/FeatureGate/src/controller/AdminHTTP"
	"gitlab.com/devpro_studio/FeatureGate/src/controller/PublicHTTP"
	"gitlab.com/devpro_studio/FeatureGate/src/repository/FlagRepository"
	"gitlab.com/devpro_studio/FeatureGate/src/repository/OverrideRepository"
	"gitlab.com/devpro_studio/FeatureGate/src/repository/RateLimitRepository"
	"gitlab.com/devpro_studio/FeatureGate/src/repository/SubscriptionRepository"
	"gitlab.com/devpro_studio/FeatureGate/src/repository/VersionRepository"
	"gitlab.com/devpro_studio/FeatureGate/src/service/AdminService"
	"gitlab.com/devpro_studio/FeatureGate/src/service/FlagService"
	"gitlab.com/devpro_studio/Paranoia/paranoia"
	"gitlab.com/devpro_studio/Paranoia/paranoia/interfaces"
	"gitlab.com/devpro_studio/Paranoia/pkg/cache/memory"
	"gitlab.com/devpro_studio/Paranoia/pkg/cache/redis"
	"gitlab.com/devpro_studio/Paranoia/pkg/database/postgres"
	sentry_log "gitlab.com/devpro_studio/Paranoia/pkg/logger/sentry_log"
	std_log "gitlab.com/devpro_studio/Paranoia/pkg/logger/std_log"
	httpSrv "gitlab.com/devpro_studio/Paranoia/pkg/server/http"
)

func main() {
	s := paranoia.New("feature gate", "cfg.yaml")

	cfg := s.GetConfig()

	if len(cfg.GetConfigItem(interfaces.PkgLogger, "sentry")) > 0 {
		s.PushPkg(sentry_log.New("sentry"))
	}

	if len(cfg.GetConfigItem(interfaces.PkgLogger, "std")) > 0 {
		s.PushPkg(std_log.New("std"))
	}

	s.PushPkg(memory.New("secondary")).
		PushPkg(redis.New(names.CacheRedis)).
		PushPkg(postgres.New(names.DatabasePrimary)).
		PushPkg(httpSrv.New(names.HttpAdminServer)).
		PushPkg(httpSrv.New(names.HttpPublicServer)).
		PushModule(FlagRepository.New(names.FlagRepository)).
		PushModule(OverrideRepository.New(names.OverrideRepository)).
		PushModule(SubscriptionRepository.New(names.SubscriptionRepository)).
		PushModule(VersionRepository.New(names.VersionRepository)).
		PushModule(RateLimitRepository.New(names.RateLimitRepository)).
		PushModule(FlagService.New(names.FlagService)).
		PushModule(AdminService.New(names.AdminService)).
		PushModule(AdminHTTP.New("admin_api")).
		PushModule(PublicHTTP.New("public_api"))

	err := s.Init()
	if err != nil {
		panic(err)
	}
	defer s.Stop()

	s.GetLogger().Info(context.Background(), "start feature gate service")

	// Wait for syscall stop
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
}
