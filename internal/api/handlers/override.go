package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"sku-pricing/internal/api/models"
	"sku-pricing/internal/model"
	"sku-pricing/internal/store"
)

// OverrideRecorder is told which policy is in force after every change.
type OverrideRecorder interface {
	SetOverride(kind model.OverrideKind)
}

// OverrideHandler lets operators freeze prices or force the rule-based policy.
type OverrideHandler struct {
	store    store.Store
	recorder OverrideRecorder
	now      func() time.Time
}

func NewOverrideHandler(st store.Store, rec OverrideRecorder) *OverrideHandler {
	return &OverrideHandler{store: st, recorder: rec, now: time.Now}
}

// CreateOverride handles POST /api/v1/overrides
func (h *OverrideHandler) CreateOverride(c *gin.Context) {
	var req models.CreateOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	kind, err := model.ParseOverrideKind(req.Type)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_OVERRIDE", err.Error())
		return
	}
	now := h.now()
	if req.ExpiresAt != nil && !req.ExpiresAt.After(now) {
		writeError(c, http.StatusBadRequest, "INVALID_OVERRIDE", "expires_at must be in the future")
		return
	}

	created, err := h.store.CreateOverride(c.Request.Context(), model.Override{
		Kind:      kind,
		Reason:    req.Reason,
		CreatedBy: req.CreatedBy,
		CreatedAt: now,
		ExpiresAt: req.ExpiresAt,
		Active:    true,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	h.refresh(c)
	c.JSON(http.StatusCreated, created)
}

// ReleaseOverride handles POST /api/v1/overrides/:type/release
func (h *OverrideHandler) ReleaseOverride(c *gin.Context) {
	kind, err := model.ParseOverrideKind(c.Param("type"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_OVERRIDE", err.Error())
		return
	}
	n, err := h.store.DeactivateOverrides(c.Request.Context(), kind)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	h.refresh(c)
	c.JSON(http.StatusOK, models.ReleaseResponse{Type: kind, Released: n})
}

// ListOverrides handles GET /api/v1/overrides
func (h *OverrideHandler) ListOverrides(c *gin.Context) {
	now := h.now()
	active, err := h.store.ActiveOverrides(c.Request.Context(), now)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OverridesResponse{
		Overrides: active,
		Resolved:  model.ResolveOverride(model.Kinds(active, now)),
	})
}

func (h *OverrideHandler) refresh(c *gin.Context) {
	if h.recorder == nil {
		return
	}
	now := h.now()
	active, err := h.store.ActiveOverrides(c.Request.Context(), now)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.recorder.SetOverride(model.ResolveOverride(model.Kinds(active, now)))
}
