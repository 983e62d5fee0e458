package PublicHTTP

import (
	"context"
	"encoding/json"
	"net/http"

	"gitlab.com/devpro_studio/FeatureGate/names"
	"gitlab.com/devpro_studio/FeatureGate/src/model/dto"
	"gitlab.com/devpro_studio/FeatureGate/src/repository/RateLimitRepository"
	"gitlab.com/devpro_studio/FeatureGate/src/repository/SubscriptionRepository"
	"gitlab.com/devpro_studio/FeatureGate/src/repository/VersionRepository"
	"gitlab.com/devpro_studio/FeatureGate/src/service/FlagService"
	"gitlab.com/devpro_studio/Paranoia/paranoia/controller"
	"gitlab.com/devpro_studio/Paranoia/paranoia/interfaces"
	httpSrv "gitlab.com/devpro_studio/Paranoia/pkg/server/http"
	"gitlab.com/devpro_studio/go_utils/decode"
)

type Controller struct {
	controller.Mock
	logger        interfaces.ILogger
	flagService   FlagService.Interface
	subscriptions SubscriptionRepository.Interface
	versions      VersionRepository.Interface
	rateLimit     RateLimitRepository.Interface

	config Config
}

type Config struct {
	RateLimitPerMinute int `yaml:"rate_limit_per_minute"`
}

func New(name string) *Controller {
	return &Controller{Mock: controller.Mock{NamePkg: name}}
}

func (t *Controller) Init(app interfaces.IEngine, cfg map[string]interface{}) error {
	// resolve dependencies
	t.logger = app.GetLogger()
	t.flagService = app.GetModule(interfaces.ModuleService, names.FlagService).(FlagService.Interface)
	t.subscriptions = app.GetModule(interfaces.ModuleRepository, names.SubscriptionRepository).(SubscriptionRepository.Interface)
	t.versions = app.GetModule(interfaces.ModuleRepository, names.VersionRepository).(VersionRepository.Interface)
	t.rateLimit = app.GetModule(interfaces.ModuleRepository, names.RateLimitRepository).(RateLimitRepository.Interface)

	// rate_limit_per_minute unset or 0 leaves the endpoint unlimited
	err := decode.Decode(cfg, &t.config, "yaml", decode.DecoderStrongFoundDst)
	if err != nil {
		return err
	}

	// mount routes on the public HTTP server
	http := app.GetPkg(interfaces.PkgServer, names.HttpPublicServer).(httpSrv.IHttp)
	http.PushRoute("GET", "/api/status/{key}", t.getStatus, nil)
	http.PushRoute("GET", "/api/version", t.getVersion, nil)
	return nil
}

// helpers
func respondJSON(ctx httpSrv.ICtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.GetResponse().Header().Set("Content-Type", "application/json; charset=utf-8")
	ctx.GetResponse().SetStatus(status)
	ctx.GetResponse().SetBody(b)
}

func (t *Controller) getStatus(c context.Context, ctx httpSrv.ICtx) {
	userID := ctx.GetRequest().GetHeader().Get("X-User-Id")
	if userID == "" {
		respondJSON(ctx, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}
	if !t.rateLimit.Allow(c, userID, t.config.RateLimitPerMinute) {
		respondJSON(ctx, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
		return
	}

	tier, ok := dto.ParseTier(ctx.GetRequest().GetHeader().Get("X-Subscription-Tier"))
	if !ok {
		var err error
		tier, err = t.subscriptions.GetTierByUserID(c, userID)
		if err != nil {
			// lookup trouble falls back to free, tier-gated flags stay closed
			t.logger.Error(c, err)
		}
	}

	flagKey := ctx.GetRouterValue("key")
	enabled, err := t.flagService.GetStatus(c, flagKey, dto.Principal{UserID: userID, Tier: tier})
	if err != nil {
		t.logger.Error(c, err)
	}

	respondJSON(ctx, http.StatusOK, statusResponse{
		FlagKey:          flagKey,
		Enabled:          enabled,
		UserID:           userID,
		SubscriptionTier: string(tier),
	})
}

func (t *Controller) getVersion(c context.Context, ctx httpSrv.ICtx) {
	respondJSON(ctx, http.StatusOK, versionResponse{Version: t.versions.Current(c)})
}
