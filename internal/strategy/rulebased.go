package strategy

import (
	"errors"

	"sku-pricing/internal/model"
)

// RuleParams implements a days-of-stock heuristic:
// - days_of_stock > OverstockDays: multiply by DiscountMultiplier
// - days_of_stock < ScarcityDays: multiply by MarkupMultiplier
// - otherwise keep the previous price
//
// days_of_stock is prev_inventory / sales_roll_mean_7, +Inf when nothing sells.
type RuleParams struct {
	OverstockDays      float64
	ScarcityDays       float64
	DiscountMultiplier float64
	MarkupMultiplier   float64
}

func DefaultRuleParams() RuleParams {
	return RuleParams{
		OverstockDays:      30,
		ScarcityDays:       5,
		DiscountMultiplier: 0.97,
		MarkupMultiplier:   1.03,
	}
}

func (p RuleParams) Validate() error {
	if p.ScarcityDays < 0 || p.OverstockDays < p.ScarcityDays {
		return errors.New("rule_based: need 0 <= scarcity_days <= overstock_days")
	}
	if p.DiscountMultiplier <= 0 || p.MarkupMultiplier <= 0 {
		return errors.New("rule_based: multipliers must be > 0")
	}
	return nil
}

type RuleBased struct {
	Params RuleParams
}

func NewRuleBased(p RuleParams) (*RuleBased, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &RuleBased{Params: p}, nil
}

func (s *RuleBased) Name() string { return NameRuleBased }

func (s *RuleBased) Decide(ctx Context) float64 {
	price := ctx.Row.PrevPrice
	dos := ctx.Row.DaysOfStock()

	switch {
	case dos > s.Params.OverstockDays:
		price *= s.Params.DiscountMultiplier
	case dos < s.Params.ScarcityDays:
		price *= s.Params.MarkupMultiplier
	}
	return model.Round2(price)
}
