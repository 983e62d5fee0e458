package AdminHTTP

import (
	"context"
	"net/http"
	"time"

	"gitlab.com/devpro_studio/FeatureGate/src/model/db"
	"gitlab.com/devpro_studio/FeatureGate/src/model/dto"
	httpSrv "gitlab.com/devpro_studio/Paranoia/pkg/server/http"
)

type flagResponse struct {
	Key               string            `json:"key"`
	Name              string            `json:"name"`
	Description       string            `json:"description"`
	Enabled           bool              `json:"enabled"`
	MinTier           string            `json:"min_tier,omitempty"`
	PercentageRollout int               `json:"percentage_rollout"`
	StartAt           *time.Time        `json:"start_at,omitempty"`
	EndAt             *time.Time        `json:"end_at,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

func toFlagResponse(flag *db.Flag) flagResponse {
	resp := flagResponse{
		Key:               flag.Key,
		Name:              flag.Name,
		Description:       flag.Description,
		Enabled:           flag.Enabled,
		PercentageRollout: flag.PercentageRollout,
		StartAt:           flag.StartAt,
		EndAt:             flag.EndAt,
		Metadata:          flag.Metadata,
		CreatedAt:         flag.CreatedAt,
		UpdatedAt:         flag.UpdatedAt,
	}
	if flag.MinTier != nil {
		resp.MinTier = string(*flag.MinTier)
	}
	return resp
}

func (t *Controller) listFlags(c context.Context, ctx httpSrv.ICtx) {
	if !requireAdmin(ctx) {
		return
	}

	items, err := t.flags.ListAll(c)
	if err != nil {
		respondError(ctx, err)
		return
	}

	out := make([]flagResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toFlagResponse(item))
	}
	respondJSON(ctx, http.StatusOK, out)
}

func (t *Controller) getFlag(c context.Context, ctx httpSrv.ICtx) {
	if !requireAdmin(ctx) {
		return
	}

	flag, err := t.flags.GetFlag(c, ctx.GetRouterValue("key"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	if flag == nil {
		respondJSON(ctx, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	respondJSON(ctx, http.StatusOK, toFlagResponse(flag))
}

type flagCreateReq struct {
	Key               string            `json:"key"`
	Name              string            `json:"name"`
	Description       string            `json:"description"`
	Enabled           bool              `json:"enabled"`
	MinTier           *string           `json:"min_tier"`
	PercentageRollout int               `json:"percentage_rollout"`
	StartAt           *time.Time        `json:"start_at"`
	EndAt             *time.Time        `json:"end_at"`
	Metadata          map[string]string `json:"metadata"`
}

func (t *Controller) createFlag(c context.Context, ctx httpSrv.ICtx) {
	if !requireAdmin(ctx) {
		return
	}

	var req flagCreateReq
	if err := parseJSON(ctx, &req); err != nil {
		respondJSON(ctx, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	input := dto.FlagInput{
		Key:               req.Key,
		Name:              req.Name,
		Description:       req.Description,
		Enabled:           req.Enabled,
		PercentageRollout: req.PercentageRollout,
		StartAt:           req.StartAt,
		EndAt:             req.EndAt,
		Metadata:          req.Metadata,
	}
	if req.MinTier != nil {
		tier := dto.Tier(*req.MinTier)
		input.MinTier = &tier
	}

	flag, err := t.admin.CreateFlag(c, input)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondJSON(ctx, http.StatusCreated, toFlagResponse(flag))
}

type flagUpdateReq struct {
	Name              *string           `json:"name"`
	Description       *string           `json:"description"`
	Enabled           *bool             `json:"enabled"`
	MinTier           *string           `json:"min_tier"`
	ClearMinTier      bool              `json:"clear_min_tier"`
	PercentageRollout *int              `json:"percentage_rollout"`
	StartAt           *time.Time        `json:"start_at"`
	EndAt             *time.Time        `json:"end_at"`
	ClearWindow       bool              `json:"clear_window"`
	Metadata          map[string]string `json:"metadata"`
}

func (t *Controller) updateFlag(c context.Context, ctx httpSrv.ICtx) {
	if !requireAdmin(ctx) {
		return
	}

	var req flagUpdateReq
	if err := parseJSON(ctx, &req); err != nil {
		respondJSON(ctx, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	patch := dto.FlagPatch{
		Name:              req.Name,
		Description:       req.Description,
		Enabled:           req.Enabled,
		ClearMinTier:      req.ClearMinTier,
		PercentageRollout: req.PercentageRollout,
		StartAt:           req.StartAt,
		EndAt:             req.EndAt,
		ClearWindow:       req.ClearWindow,
		Metadata:          req.Metadata,
	}
	if req.MinTier != nil {
		tier := dto.Tier(*req.MinTier)
		patch.MinTier = &tier
	}

	flag, err := t.admin.UpdateFlag(c, ctx.GetRouterValue("key"), patch)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondJSON(ctx, http.StatusOK, toFlagResponse(flag))
}

func (t *Controller) deleteFlag(c context.Context, ctx httpSrv.ICtx) {
	if !requireAdmin(ctx) {
		return
	}

	if err := t.admin.DeleteFlag(c, ctx.GetRouterValue("key")); err != nil {
		respondError(ctx, err)
		return
	}
	respondJSON(ctx, http.StatusNoContent, nil)
}
