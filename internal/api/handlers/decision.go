package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sku-pricing/internal/api/models"
	"sku-pricing/internal/config"
	"sku-pricing/internal/model"
	"sku-pricing/internal/pricing"
	"sku-pricing/internal/store"
)

const defaultHistoryLimit = 30

// DecisionHandler serves engine decisions and the persisted decision log.
type DecisionHandler struct {
	store   store.Store
	pricing config.PricingConfig
}

func NewDecisionHandler(st store.Store, pricingCfg config.PricingConfig) *DecisionHandler {
	return &DecisionHandler{store: st, pricing: pricingCfg}
}

// Decide handles POST /api/v1/decisions
func (h *DecisionHandler) Decide(c *gin.Context) {
	var req models.DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	engine, err := config.MergePricing(h.pricing, req.Pricing).Engine()
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_CONFIG", err.Error())
		return
	}

	out := make([]models.DecisionResult, 0, len(req.Rows))
	for i, row := range req.Rows {
		if err := row.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error: models.ErrorDetail{
					Code:    "INVALID_PANEL",
					Message: err.Error(),
					Details: map[string]interface{}{"row": i},
				},
			})
			return
		}
		d := engine.Decide(row)
		res := models.DecisionResult{
			Date:           row.Date,
			ProductID:      row.ProductID,
			PrevPrice:      row.PrevPrice,
			Decision:       d,
			PriceChangePct: model.Round2(model.PriceChangePct(row.PrevPrice, d.FinalPrice)),
		}
		if req.Options.IncludeCandidates {
			res.Candidates = engine.Evaluate(pricing.InputFromRow(row))
		}
		out = append(out, res)
	}
	c.JSON(http.StatusOK, models.DecideResponse{Decisions: out})
}

// LatestDecision handles GET /api/v1/skus/:product_id/latest-decision
func (h *DecisionHandler) LatestDecision(c *gin.Context) {
	rec, err := h.store.LatestDecision(c.Request.Context(), c.Param("product_id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// History handles GET /api/v1/skus/:product_id/history
func (h *DecisionHandler) History(c *gin.Context) {
	q := models.HistoryQuery{Limit: defaultHistoryLimit}
	if err := c.ShouldBindQuery(&q); err != nil || q.Limit < 0 {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "limit must be a non-negative integer")
		return
	}
	recs, err := h.store.DecisionHistory(c.Request.Context(), c.Param("product_id"), q.Limit)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.DecisionsResponse{Decisions: recs})
}

// Between handles GET /api/v1/decisions?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *DecisionHandler) Between(c *gin.Context) {
	var q models.DecisionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	from, err := model.ParseDate(q.From)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_DATE", err.Error())
		return
	}
	to, err := model.ParseDate(q.To)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_DATE", err.Error())
		return
	}
	if to.Before(from) {
		writeError(c, http.StatusBadRequest, "INVALID_DATE", "to must not be before from")
		return
	}

	recs, err := h.store.DecisionsBetween(c.Request.Context(), from, to)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.DecisionsResponse{Decisions: recs})
}
