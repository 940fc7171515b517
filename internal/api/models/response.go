package models

import (
	"sku-pricing/internal/analysis"
	"sku-pricing/internal/backtest"
	"sku-pricing/internal/model"
	"sku-pricing/internal/pricing"
)

// DecisionResult is the engine output for one submitted row.
type DecisionResult struct {
	Date      model.Date `json:"date"`
	ProductID string     `json:"product_id"`
	PrevPrice float64    `json:"prev_price"`
	model.Decision
	PriceChangePct float64              `json:"price_change_pct"`
	Candidates     []pricing.Evaluation `json:"candidates,omitempty"`
}

type DecideResponse struct {
	Decisions []DecisionResult `json:"decisions"`
}

// BacktestResponse represents the response from a backtest run
type BacktestResponse struct {
	ID       string             `json:"id,omitempty"`
	Status   string             `json:"status"`
	Summary  BacktestSummary    `json:"summary"`
	Outcomes []backtest.Outcome `json:"outcomes,omitempty"`
}

// BacktestSummary contains aggregated backtest results
type BacktestSummary struct {
	Strategy            string         `json:"strategy"`
	Rows                int            `json:"rows"`
	TotalRevenue        float64        `json:"total_revenue"`
	AvgRevenuePerSKUDay float64        `json:"avg_revenue_per_sku_day"`
	TotalUnitsSold      float64        `json:"total_units_sold"`
	StockoutRate        float64        `json:"stockout_rate"`
	BacktestWindow      BacktestWindow `json:"backtest_window"`
}

// BacktestWindow is the inclusive date range covered by a run.
type BacktestWindow struct {
	Start model.Date `json:"start"`
	End   model.Date `json:"end"`
}

type OutcomesResponse struct {
	ID       string             `json:"id"`
	Strategy string             `json:"strategy"`
	Outcomes []backtest.Outcome `json:"outcomes"`
}

// CompareBacktestResponse represents the response from a comparison
type CompareBacktestResponse struct {
	Summaries    []backtest.StrategySummary   `json:"summaries"`
	Rankings     []analysis.RankedStrategy    `json:"rankings"`
	PriceChanges []analysis.PriceChangeStats  `json:"price_changes"`
	Categories   []analysis.CategoryStats     `json:"categories"`
	Daily        []analysis.DailyRevenuePoint `json:"daily_revenue"`
}

// StrategyInfo represents information about a strategy
type StrategyInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ParameterInfo `json:"parameters"`
}

// ParameterInfo describes a strategy parameter
type ParameterInfo struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"` // "float", "int", "map"
	Description string      `json:"description"`
	Default     interface{} `json:"default,omitempty"`
}

// StatusResponse reports which policy the next pricing run will use.
type StatusResponse struct {
	State    string             `json:"state"` // "frozen", "rule_based", "ml_active"
	Message  string             `json:"message"`
	Override model.OverrideKind `json:"override,omitempty"`
}

type OverridesResponse struct {
	Overrides []model.Override   `json:"overrides"`
	Resolved  model.OverrideKind `json:"resolved,omitempty"`
}

type ReleaseResponse struct {
	Type     model.OverrideKind `json:"override_type"`
	Released int64              `json:"released"`
}

type DecisionsResponse struct {
	Decisions []model.DecisionRecord `json:"decisions"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
