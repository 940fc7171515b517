package model

import (
	"encoding/json"
	"time"
)

// DecisionRecord is the audit row persisted for every priced SKU-day.
type DecisionRecord struct {
	ID           int64     `json:"id,omitempty"`
	DecisionDate Date      `json:"decision_date"`
	ProductID    string    `json:"product_id"`
	Strategy     string    `json:"strategy"`
	PrevPrice    float64   `json:"prev_price"`
	FinalPrice   float64   `json:"final_price"`
	ChangePct    float64   `json:"price_change_pct"`
	CostPrice    float64   `json:"cost_price"`
	MinMarginPct float64   `json:"min_margin_pct"`
	MarginOK     bool      `json:"margin_ok"`
	Reason       Reason    `json:"reason"`
	Explain      Decision  `json:"explainability"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewDecisionRecord stamps a decision for persistence. The decision date is
// supplied by the caller; the engine itself has no clock.
func NewDecisionRecord(day Date, row PanelRow, strategy string, d Decision) DecisionRecord {
	return DecisionRecord{
		DecisionDate: day,
		ProductID:    row.ProductID,
		Strategy:     strategy,
		PrevPrice:    row.PrevPrice,
		FinalPrice:   d.FinalPrice,
		ChangePct:    Round2(PriceChangePct(row.PrevPrice, d.FinalPrice)),
		CostPrice:    row.CostPrice,
		MinMarginPct: row.MinMarginPct,
		MarginOK:     d.FinalPrice >= row.CostPrice*(1+row.MinMarginPct),
		Reason:       d.Reason,
		Explain:      d,
	}
}

// ExplainJSON serializes the decision kept for explainability.
func (r DecisionRecord) ExplainJSON() (string, error) {
	b, err := json.Marshal(r.Explain)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
