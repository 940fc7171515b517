package pricing

import "sku-pricing/internal/model"

// SelectInput carries the row fields the selector needs.
type SelectInput struct {
	PrevPrice      float64
	CostPrice      float64
	BaseDemand     float64
	Category       model.Category
	PriorInventory float64
	SalesRollMean7 float64
	DaysToExpiry   int
}

// InputFromRow maps a panel row onto selector inputs.
func InputFromRow(r model.PanelRow) SelectInput {
	return SelectInput{
		PrevPrice:      r.PrevPrice,
		CostPrice:      r.CostPrice,
		BaseDemand:     r.PredictedUnitsSold,
		Category:       r.CategoryOrUnknown(),
		PriorInventory: float64(r.PrevInventory),
		SalesRollMean7: r.SalesRollMean7,
		DaysToExpiry:   r.ClearanceDays,
	}
}

// Evaluation is one candidate with its estimate and feasibility verdict.
type Evaluation struct {
	Estimate
	Feasible bool `json:"feasible"`
}

// Evaluate estimates and filters every candidate, in ascending price order.
// Feasibility is judged on the rounded unit estimate, the same number a
// reviewer sees in the decision.
func (e *Engine) Evaluate(in SelectInput) []Evaluation {
	candidates := e.Candidates(in.PrevPrice, in.CostPrice)
	out := make([]Evaluation, 0, len(candidates))
	for _, price := range candidates {
		est := e.Estimate(price, in.PrevPrice, in.BaseDemand, in.Category, in.PriorInventory)
		out = append(out, Evaluation{
			Estimate: est,
			Feasible: e.Feasible(price, in.PrevPrice, est.ExpectedUnitsSold, in.PriorInventory, in.SalesRollMean7, in.DaysToExpiry),
		})
	}
	return out
}

// Select returns the revenue-maximizing feasible price.
//
// Candidates are compared on rounded expected revenue and visited in
// ascending price order; only a strictly larger revenue replaces the current
// best, so ties go to the lowest price.
func (e *Engine) Select(in SelectInput) model.Decision {
	var best *Estimate
	for _, ev := range e.Evaluate(in) {
		if !ev.Feasible {
			continue
		}
		if best == nil || ev.ExpectedRevenue > best.ExpectedRevenue {
			est := ev.Estimate
			best = &est
		}
	}

	if best == nil {
		return model.Fallback(in.PrevPrice)
	}

	units, revenue := best.ExpectedUnitsSold, best.ExpectedRevenue
	return model.Decision{
		FinalPrice:        best.Price,
		ExpectedUnitsSold: &units,
		ExpectedRevenue:   &revenue,
		Reason:            model.ReasonRevenueMaximization,
	}
}

// Decide is Select over a panel row.
func (e *Engine) Decide(row model.PanelRow) model.Decision {
	return e.Select(InputFromRow(row))
}
