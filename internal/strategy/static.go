package strategy

import "sku-pricing/internal/model"

// Static keeps yesterday's price. It is the uplift baseline.
type Static struct{}

func (Static) Name() string { return NameStatic }

func (Static) Decide(ctx Context) float64 {
	return model.Round2(ctx.Row.PrevPrice)
}
