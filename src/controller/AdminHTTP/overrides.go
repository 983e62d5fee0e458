package AdminHTTP

import (
	"context"
	"net/http"

	httpSrv "gitlab.com/devpro_studio/Paranoia/pkg/server/http"
)

type overrideSetReq struct {
	FlagKey string `json:"flag_key"`
	UserID  string `json:"user_id"`
	Enabled bool   `json:"enabled"`
}

type overrideResponse struct {
	ID      string `json:"id"`
	FlagKey string `json:"flag_key"`
	UserID  string `json:"user_id"`
	Enabled bool   `json:"enabled"`
}

func (t *Controller) setOverride(c context.Context, ctx httpSrv.ICtx) {
	if !requireAdmin(ctx) {
		return
	}

	var req overrideSetReq
	if err := parseJSON(ctx, &req); err != nil || req.FlagKey == "" {
		respondJSON(ctx, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	item, err := t.admin.SetOverride(c, req.FlagKey, req.UserID, req.Enabled)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondJSON(ctx, http.StatusCreated, overrideResponse{
		ID:      item.ID.String(),
		FlagKey: item.FlagKey,
		UserID:  item.UserID,
		Enabled: item.Enabled,
	})
}

func (t *Controller) deleteOverride(c context.Context, ctx httpSrv.ICtx) {
	if !requireAdmin(ctx) {
		return
	}

	if err := t.admin.DeleteOverride(c, ctx.GetRouterValue("key"), ctx.GetRouterValue("user_id")); err != nil {
		respondError(ctx, err)
		return
	}
	respondJSON(ctx, http.StatusNoContent, nil)
}
