package AdminHTTP

import (
	"encoding/json"
	"errors"
	"net/http"

	"gitlab.com/devpro_studio/FeatureGate/names"
	"gitlab.com/devpro_studio/FeatureGate/src/errs"
	"gitlab.com/devpro_studio/FeatureGate/src/service/AdminService"
	"gitlab.com/devpro_studio/FeatureGate/src/service/FlagService"
	"gitlab.com/devpro_studio/Paranoia/paranoia/controller"
	"gitlab.com/devpro_studio/Paranoia/paranoia/interfaces"
	httpSrv "gitlab.com/devpro_studio/Paranoia/pkg/server/http"
)

type Controller struct {
	controller.Mock
	admin AdminService.Interface
	flags FlagService.Interface
}

func New(name string) *Controller {
	return &Controller{Mock: controller.Mock{NamePkg: name}}
}

func (t *Controller) Init(app interfaces.IEngine, _ map[string]interface{}) error {
	t.admin = app.GetModule(interfaces.ModuleService, names.AdminService).(AdminService.Interface)
	t.flags = app.GetModule(interfaces.ModuleService, names.FlagService).(FlagService.Interface)

	// mount routes on the admin HTTP server
	http := app.GetPkg(interfaces.PkgServer, names.HttpAdminServer).(httpSrv.IHttp)

	// flags
	http.PushRoute("GET", "/api/flags", t.listFlags, nil)
	http.PushRoute("POST", "/api/flags", t.createFlag, nil)
	http.PushRoute("GET", "/api/flags/{key}", t.getFlag, nil)
	http.PushRoute("PUT", "/api/flags/{key}", t.updateFlag, nil)
	http.PushRoute("DELETE", "/api/flags/{key}", t.deleteFlag, nil)

	// per-user overrides
	http.PushRoute("POST", "/api/overrides", t.setOverride, nil)
	http.PushRoute("DELETE", "/api/overrides/{key}/{user_id}", t.deleteOverride, nil)

	return nil
}

func respondJSON(ctx httpSrv.ICtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.GetResponse().Header().Set("Content-Type", "application/json; charset=utf-8")
	ctx.GetResponse().SetStatus(status)
	ctx.GetResponse().SetBody(b)
}

func parseJSON[T any](ctx httpSrv.ICtx, out *T) error {
	defer ctx.GetRequest().GetBody().Close()
	dec := json.NewDecoder(ctx.GetRequest().GetBody())
	return dec.Decode(out)
}

// requireAdmin guards every admin route. A missing identity is 401 and a
// non-admin role is 403; neither reveals whether the target exists.
func requireAdmin(ctx httpSrv.ICtx) bool {
	header := ctx.GetRequest().GetHeader()
	if header.Get("X-User-Id") == "" {
		respondError(ctx, errs.ErrUnauthorized)
		return false
	}
	if header.Get("X-User-Role") != "admin" {
		respondError(ctx, errs.ErrForbidden)
		return false
	}
	return true
}

func respondError(ctx httpSrv.ICtx, err error) {
	var cv *errs.ConstraintViolation
	switch {
	case errors.As(err, &cv):
		respondJSON(ctx, http.StatusBadRequest, map[string]string{"error": cv.Reason, "field": cv.Field})
	case errors.Is(err, errs.ErrNotFound):
		respondJSON(ctx, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, errs.ErrDuplicateKey):
		respondJSON(ctx, http.StatusConflict, map[string]string{"error": "flag key already exists"})
	case errors.Is(err, errs.ErrStoreUnavailable):
		respondJSON(ctx, http.StatusServiceUnavailable, map[string]string{"error": "store unavailable"})
	case errors.Is(err, errs.ErrUnauthorized):
		respondJSON(ctx, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
	case errors.Is(err, errs.ErrForbidden):
		respondJSON(ctx, http.StatusForbidden, map[string]string{"error": "admin role required"})
	default:
		respondJSON(ctx, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
