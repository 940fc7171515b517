package strategy

import (
	"sku-pricing/internal/model"
	"sku-pricing/internal/pricing"
)

// EngineStrategy prices with the constrained decision engine and exposes only
// the final price.
type EngineStrategy struct {
	Engine *pricing.Engine
}

func (s *EngineStrategy) Name() string { return NameML }

func (s *EngineStrategy) Decide(ctx Context) float64 {
	return s.Engine.Decide(ctx.Row).FinalPrice
}

// Explain returns the full decision for a row, including expected metrics.
func (s *EngineStrategy) Explain(row model.PanelRow) model.Decision {
	return s.Engine.Decide(row)
}
