package model

// Reason explains why a price was chosen.
// Keep these values stable; they are persisted with every decision.
type Reason string

const (
	// Emitted by the decision engine.
	ReasonRevenueMaximization Reason = "revenue_maximization"
	ReasonNoValidCandidate    Reason = "no_valid_candidate"

	// Recorded by the pricing job when an override replaced the engine.
	ReasonPriceFreeze    Reason = "price_freeze"
	ReasonForceRuleBased Reason = "force_rule_based"
)

// Decision is the engine's output for one row. It is never mutated after creation.
// ExpectedUnitsSold and ExpectedRevenue are nil when Reason is no_valid_candidate.
type Decision struct {
	FinalPrice        float64  `json:"final_price"`
	ExpectedUnitsSold *float64 `json:"expected_units_sold,omitempty"`
	ExpectedRevenue   *float64 `json:"expected_revenue,omitempty"`
	Reason            Reason   `json:"reason"`
}

// Fallback is the no-feasible-candidate decision: keep yesterday's price.
func Fallback(prevPrice float64) Decision {
	return Decision{
		FinalPrice: Round2(prevPrice),
		Reason:     ReasonNoValidCandidate,
	}
}
