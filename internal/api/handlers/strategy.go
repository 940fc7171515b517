package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sku-pricing/internal/api/models"
	"sku-pricing/internal/config"
	"sku-pricing/internal/strategy"
)

// StrategyHandler handles strategy-related requests
type StrategyHandler struct {
	strategies []models.StrategyInfo
}

// NewStrategyHandler describes the built-in strategies with the configured
// values as defaults.
func NewStrategyHandler(cfg config.Config) *StrategyHandler {
	return &StrategyHandler{strategies: describeStrategies(cfg)}
}

// ListStrategies handles GET /api/v1/strategies
func (h *StrategyHandler) ListStrategies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"strategies": h.strategies})
}

func describeStrategies(cfg config.Config) []models.StrategyInfo {
	p := cfg.Pricing
	r := cfg.RuleBased
	return []models.StrategyInfo{
		{
			Name:        strategy.NameStatic,
			Description: "Keeps yesterday's price. Baseline for revenue uplift.",
			Parameters:  []models.ParameterInfo{},
		},
		{
			Name:        strategy.NameRuleBased,
			Description: "Days-of-stock heuristic: discount when overstocked, mark up when scarce.",
			Parameters: []models.ParameterInfo{
				{Name: "overstock_days", Type: "float", Description: "Days of stock above which the price is discounted", Default: r.OverstockDays},
				{Name: "scarcity_days", Type: "float", Description: "Days of stock below which the price is marked up", Default: r.ScarcityDays},
				{Name: "discount_multiplier", Type: "float", Description: "Multiplier applied when overstocked", Default: r.DiscountMultiplier},
				{Name: "markup_multiplier", Type: "float", Description: "Multiplier applied when scarce", Default: r.MarkupMultiplier},
			},
		},
		{
			Name:        strategy.NameML,
			Description: "Decision engine: picks the revenue-maximizing feasible candidate from the demand forecast.",
			Parameters: []models.ParameterInfo{
				{Name: "candidate_multipliers", Type: "list", Description: "Multipliers of the previous price to evaluate", Default: p.CandidateMultipliers},
				{Name: "min_margin_pct", Type: "float", Description: "Minimum margin over cost (fraction)", Default: p.MinMarginPct},
				{Name: "max_daily_price_change_pct", Type: "float", Description: "Maximum daily price move (fraction)", Default: p.MaxDailyPriceChangePct},
				{Name: "stockout_buffer_days", Type: "float", Description: "Days of recent demand kept as safety stock", Default: p.StockoutBufferDays},
				{Name: "clearance_warning_days", Type: "int", Description: "Days to expiry at which clearance pressure starts", Default: p.ClearanceWarningDays},
				{Name: "elasticities", Type: "map", Description: "Price elasticity per category", Default: p.Elasticities},
				{Name: "default_elasticity", Type: "float", Description: "Elasticity for unlisted categories", Default: p.DefaultElasticity},
			},
		},
	}
}
