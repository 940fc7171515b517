package strategy

import (
	"fmt"
	"strings"

	"sku-pricing/internal/model"
	"sku-pricing/internal/pricing"
)

// Strategy names. Keep these values stable; they key backtest results and
// persisted decisions.
const (
	NameStatic    = "static"
	NameRuleBased = "rule_based"
	NameML        = "ml"
)

type Context struct {
	Index int
	Row   model.PanelRow
}

// Strategy decides one price per row. Implementations must be pure: the
// backtest harness calls Decide from several goroutines at once.
type Strategy interface {
	Name() string
	Decide(ctx Context) float64
}

// Names lists the built-in strategies in reporting order.
func Names() []string {
	return []string{NameStatic, NameRuleBased, NameML}
}

// Canonical maps a strategy name or alias onto its canonical name.
// "engine" is accepted as an alias of "ml".
func Canonical(name string) (string, error) {
	switch n := strings.ToLower(strings.TrimSpace(name)); n {
	case NameStatic, NameRuleBased, NameML:
		return n, nil
	case "engine":
		return NameML, nil
	default:
		return "", fmt.Errorf("unsupported strategy: %q", name)
	}
}

// New builds a strategy by name.
func New(name string, engine *pricing.Engine, rules RuleParams) (Strategy, error) {
	canonical, err := Canonical(name)
	if err != nil {
		return nil, err
	}
	switch canonical {
	case NameStatic:
		return Static{}, nil
	case NameRuleBased:
		return NewRuleBased(rules)
	default:
		if engine == nil {
			return nil, fmt.Errorf("strategy %q needs a pricing engine", name)
		}
		return &EngineStrategy{Engine: engine}, nil
	}
}

// ForOverride returns the strategy an override forces, or the engine when none is active.
func ForOverride(kind model.OverrideKind, engine *pricing.Engine, rules RuleParams) (Strategy, error) {
	switch kind {
	case model.OverridePriceFreeze:
		return New(NameStatic, engine, rules)
	case model.OverrideForceRuleBased:
		return New(NameRuleBased, engine, rules)
	default:
		return New(NameML, engine, rules)
	}
}
