package model

import (
	"fmt"
	"strings"
	"time"
)

// OverrideKind is an operator control signal that replaces the default policy.
// The zero value means no override is active.
type OverrideKind string

const (
	OverrideNone           OverrideKind = ""
	OverridePriceFreeze    OverrideKind = "PRICE_FREEZE"
	OverrideForceRuleBased OverrideKind = "FORCE_RULE_BASED"
)

func ParseOverrideKind(s string) (OverrideKind, error) {
	switch OverrideKind(strings.ToUpper(strings.TrimSpace(s))) {
	case OverridePriceFreeze:
		return OverridePriceFreeze, nil
	case OverrideForceRuleBased:
		return OverrideForceRuleBased, nil
	default:
		return OverrideNone, fmt.Errorf("unknown override type %q", s)
	}
}

// ResolveOverride picks the effective override from the active set.
// PRICE_FREEZE wins over FORCE_RULE_BASED.
func ResolveOverride(active []OverrideKind) OverrideKind {
	resolved := OverrideNone
	for _, k := range active {
		switch k {
		case OverridePriceFreeze:
			return OverridePriceFreeze
		case OverrideForceRuleBased:
			resolved = OverrideForceRuleBased
		}
	}
	return resolved
}

// Reason is the audit reason recorded for decisions taken under this override.
func (k OverrideKind) Reason() Reason {
	switch k {
	case OverridePriceFreeze:
		return ReasonPriceFreeze
	case OverrideForceRuleBased:
		return ReasonForceRuleBased
	default:
		return ""
	}
}

// Override is one operator control row.
type Override struct {
	ID        string       `json:"id"`
	Kind      OverrideKind `json:"override_type"`
	Reason    string       `json:"reason"`
	CreatedBy string       `json:"created_by"`
	CreatedAt time.Time    `json:"created_at"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
	Active    bool         `json:"is_active"`
}

// InEffect reports whether the override applies at now. An override without
// an expiry stays in effect until released.
func (o Override) InEffect(now time.Time) bool {
	if !o.Active {
		return false
	}
	return o.ExpiresAt == nil || o.ExpiresAt.After(now)
}

// Kinds lists the kinds of the overrides in effect at now.
func Kinds(overrides []Override, now time.Time) []OverrideKind {
	out := []OverrideKind{}
	for _, o := range overrides {
		if o.InEffect(now) {
			out = append(out, o.Kind)
		}
	}
	return out
}
