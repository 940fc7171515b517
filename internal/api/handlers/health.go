package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"sku-pricing/internal/api/models"
	"sku-pricing/internal/model"
	"sku-pricing/internal/store"
)

type HealthHandler struct {
	store store.Store
	now   func() time.Time
}

func NewHealthHandler(st store.Store) *HealthHandler {
	return &HealthHandler{store: st, now: time.Now}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Status handles GET /health/status
func (h *HealthHandler) Status(c *gin.Context) {
	now := h.now()
	overrides, err := h.store.ActiveOverrides(c.Request.Context(), now)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, statusFor(model.ResolveOverride(model.Kinds(overrides, now))))
}

func statusFor(kind model.OverrideKind) models.StatusResponse {
	switch kind {
	case model.OverridePriceFreeze:
		return models.StatusResponse{State: "frozen", Message: "Engine paused, pricing frozen by ops", Override: kind}
	case model.OverrideForceRuleBased:
		return models.StatusResponse{State: "rule_based", Message: "Rule-based pricing enforced", Override: kind}
	default:
		return models.StatusResponse{State: "ml_active", Message: "Engine pricing active"}
	}
}
