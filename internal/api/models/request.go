package models

import (
	"time"

	"sku-pricing/internal/config"
	"sku-pricing/internal/model"
)

// DecideRequest prices panel rows with the decision engine without
// persisting anything.
type DecideRequest struct {
	Rows []model.PanelRow `json:"rows" binding:"required,min=1"`
	// Pricing overlays non-zero thresholds onto the configured ones.
	Pricing config.PricingConfig `json:"pricing,omitempty"`
	Options DecideOptions        `json:"options,omitempty"`
}

type DecideOptions struct {
	IncludeCandidates bool `json:"include_candidates,omitempty"` // default: false
}

// BacktestRequest replays one strategy over a panel.
type BacktestRequest struct {
	Rows     []model.PanelRow     `json:"rows" binding:"required,min=1"`
	Strategy string               `json:"strategy" binding:"required"`
	Pricing  config.PricingConfig `json:"pricing,omitempty"`
	Options  BacktestOptions      `json:"options,omitempty"`
}

type BacktestOptions struct {
	IncludeOutcomes bool `json:"include_outcomes,omitempty"` // default: false
}

// CompareBacktestRequest replays several strategies over the same panel.
// An empty strategy list compares every built-in strategy.
type CompareBacktestRequest struct {
	Rows       []model.PanelRow     `json:"rows" binding:"required,min=1"`
	Strategies []string             `json:"strategies,omitempty"`
	Pricing    config.PricingConfig `json:"pricing,omitempty"`
}

// CreateOverrideRequest activates an operator override.
type CreateOverrideRequest struct {
	Type      string     `json:"override_type" binding:"required"`
	Reason    string     `json:"reason,omitempty"`
	CreatedBy string     `json:"created_by,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// DecisionsQuery bounds GET /api/v1/decisions (inclusive, YYYY-MM-DD).
type DecisionsQuery struct {
	From string `form:"from" binding:"required"`
	To   string `form:"to" binding:"required"`
}

type HistoryQuery struct {
	Limit int `form:"limit,omitempty"` // default: 30, 0 = all
}
