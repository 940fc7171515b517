package handlers

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"sku-pricing/internal/analysis"
	"sku-pricing/internal/api/models"
	"sku-pricing/internal/backtest"
	"sku-pricing/internal/config"
	"sku-pricing/internal/model"
	"sku-pricing/internal/strategy"
)

// BacktestHandler handles backtest-related requests
type BacktestHandler struct {
	cfg    config.Config
	runner *backtest.Engine
	cache  *backtest.ResultCache
}

// NewBacktestHandler creates a new backtest handler. Per-request pricing
// thresholds are overlaid on cfg.Pricing.
func NewBacktestHandler(cfg config.Config, runner *backtest.Engine, cache *backtest.ResultCache) *BacktestHandler {
	return &BacktestHandler{cfg: cfg, runner: runner, cache: cache}
}

// RunBacktest handles POST /api/v1/backtest
func (h *BacktestHandler) RunBacktest(c *gin.Context) {
	var req models.BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	strats, ok := h.buildStrategies(c, req.Pricing, []string{req.Strategy})
	if !ok {
		return
	}

	result, err := h.runner.Run(model.Panel(req.Rows), strats[0])
	if err != nil {
		writeDomainError(c, err)
		return
	}

	resp := models.BacktestResponse{
		ID:      h.cache.Put(result),
		Status:  "completed",
		Summary: buildSummary(result),
	}
	if req.Options.IncludeOutcomes {
		resp.Outcomes = result.Outcomes
	}
	c.JSON(http.StatusOK, resp)
}

// GetOutcomes handles GET /api/v1/backtest/:id/outcomes
func (h *BacktestHandler) GetOutcomes(c *gin.Context) {
	id := c.Param("id")
	result, ok := h.cache.Get(id)
	if !ok {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "backtest "+id+" not found or expired")
		return
	}
	c.JSON(http.StatusOK, models.OutcomesResponse{
		ID:       id,
		Strategy: result.Strategy,
		Outcomes: result.Outcomes,
	})
}

// CompareBacktests handles POST /api/v1/backtest/compare
func (h *BacktestHandler) CompareBacktests(c *gin.Context) {
	var req models.CompareBacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	names := req.Strategies
	if len(names) == 0 {
		names = strategy.Names()
	}
	strats, ok := h.buildStrategies(c, req.Pricing, names)
	if !ok {
		return
	}

	results, err := h.runner.RunAll(model.Panel(req.Rows), strats)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	outcomes := backtest.Flatten(results)
	summaries, err := backtest.Summarize(outcomes)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	// JSON has no infinity; a zero static baseline with non-zero revenue elsewhere
	// cannot be reported.
	for _, s := range summaries {
		if math.IsInf(s.RevenueUpliftPct, 0) {
			writeError(c, http.StatusUnprocessableEntity, "UNDEFINED_UPLIFT",
				"static strategy earned no revenue; uplift of "+s.Strategy+" is unbounded")
			return
		}
	}

	c.JSON(http.StatusOK, models.CompareBacktestResponse{
		Summaries:    summaries,
		Rankings:     analysis.RankByRevenue(summaries),
		PriceChanges: analysis.PriceChangeSummary(outcomes),
		Categories:   analysis.CategoryBreakdown(outcomes),
		Daily:        analysis.DailyRevenue(outcomes),
	})
}

// buildStrategies writes the error response itself and reports false on failure.
func (h *BacktestHandler) buildStrategies(c *gin.Context, overlay config.PricingConfig, names []string) ([]strategy.Strategy, bool) {
	engine, err := config.MergePricing(h.cfg.Pricing, overlay).Engine()
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_CONFIG", err.Error())
		return nil, false
	}

	seen := make(map[string]bool, len(names))
	out := make([]strategy.Strategy, 0, len(names))
	for _, name := range names {
		canonical, err := strategy.Canonical(name)
		if err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_STRATEGY", err.Error())
			return nil, false
		}
		if seen[canonical] {
			continue
		}
		seen[canonical] = true

		s, err := strategy.New(canonical, engine, h.cfg.RuleBased.ToRuleParams())
		if err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_STRATEGY", err.Error())
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func buildSummary(result *backtest.Result) models.BacktestSummary {
	summary := models.BacktestSummary{
		Strategy:     result.Strategy,
		Rows:         len(result.Outcomes),
		TotalRevenue: result.TotalRevenue,
	}
	if len(result.Outcomes) == 0 {
		return summary
	}

	stockouts := 0
	for _, o := range result.Outcomes {
		summary.TotalUnitsSold += o.UnitsSold
		if o.Stockout {
			stockouts++
		}
	}
	n := float64(len(result.Outcomes))
	summary.AvgRevenuePerSKUDay = result.TotalRevenue / n
	summary.StockoutRate = float64(stockouts) / n
	// Outcomes are in (date, product_id) order.
	summary.BacktestWindow = models.BacktestWindow{
		Start: result.Outcomes[0].Date,
		End:   result.Outcomes[len(result.Outcomes)-1].Date,
	}
	return summary
}
