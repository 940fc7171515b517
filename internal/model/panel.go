package model

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// ErrInvalidRow is returned (wrapped) when a panel row violates the data contract.
var ErrInvalidRow = errors.New("invalid panel row")

// Category is the product category used to look up price elasticity.
type Category string

const (
	CategoryGrocery      Category = "grocery"
	CategoryPersonalCare Category = "personal_care"
	CategoryStationery   Category = "stationery"
	CategoryHome         Category = "home"
	CategoryUnknown      Category = "unknown"
)

// PanelRow is one SKU-day observation produced by the feature pipeline.
//
// Every field is known before the pricing day starts: prices, inventory and
// rolling sales are lagged values, PredictedUnitsSold is the external forecast.
// The engine never sees same-day price, sales or inventory.
type PanelRow struct {
	Date      Date   `json:"date"`
	ProductID string `json:"product_id"`

	PrevPrice    float64  `json:"prev_price"`
	CostPrice    float64  `json:"cost_price"`
	MinMarginPct float64  `json:"min_margin_pct"`
	Category     Category `json:"category"`

	PredictedUnitsSold float64 `json:"predicted_units_sold"`

	PrevInventory  int     `json:"prev_inventory"`
	SalesRollMean7 float64 `json:"sales_roll_mean_7"`

	// ClearanceDays is the shelf-life budget, used as a days-to-expiry proxy.
	ClearanceDays int `json:"clearance_days"`
}

// Validate checks the panel contract. Any violation is fatal for the run.
func (r PanelRow) Validate() error {
	if r.Date.IsZero() {
		return invalid(r, "date is required")
	}
	if strings.TrimSpace(r.ProductID) == "" {
		return invalid(r, "product_id is required")
	}
	if !finite(r.PrevPrice) || r.PrevPrice <= 0 {
		return invalid(r, "prev_price must be > 0")
	}
	if !finite(r.CostPrice) || r.CostPrice <= 0 {
		return invalid(r, "cost_price must be > 0")
	}
	if !finite(r.MinMarginPct) || r.MinMarginPct < 0 || r.MinMarginPct >= 1 {
		return invalid(r, "min_margin_pct must be in [0, 1)")
	}
	if !finite(r.PredictedUnitsSold) || r.PredictedUnitsSold < 0 {
		return invalid(r, "predicted_units_sold must be >= 0")
	}
	if r.PrevInventory < 0 {
		return invalid(r, "prev_inventory must be >= 0")
	}
	if !finite(r.SalesRollMean7) || r.SalesRollMean7 < 0 {
		return invalid(r, "sales_roll_mean_7 must be >= 0")
	}
	if r.ClearanceDays <= 0 {
		return invalid(r, "clearance_days must be > 0")
	}
	return nil
}

// CategoryOrUnknown normalizes an empty category to "unknown".
func (r PanelRow) CategoryOrUnknown() Category {
	if strings.TrimSpace(string(r.Category)) == "" {
		return CategoryUnknown
	}
	return r.Category
}

// DaysOfStock is prior inventory over recent average daily demand.
func (r PanelRow) DaysOfStock() float64 {
	return DaysOfStock(float64(r.PrevInventory), r.SalesRollMean7)
}

// Key identifies a row within a panel.
func (r PanelRow) Key() string {
	return r.Date.String() + "/" + r.ProductID
}

func invalid(r PanelRow, msg string) error {
	return fmt.Errorf("%w: %s (date=%s product_id=%q)", ErrInvalidRow, msg, r.Date, r.ProductID)
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Panel is a SKU-day panel: a sequence of rows with no assumed order.
type Panel []PanelRow

// Validate checks every row and rejects an empty panel.
func (p Panel) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("%w: panel is empty", ErrInvalidRow)
	}
	for i, r := range p {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	return nil
}

// Normalized returns a copy sorted by (date, product_id) with duplicate keys
// removed. The first row seen for a key wins.
func (p Panel) Normalized() Panel {
	out := make(Panel, len(p))
	copy(out, p)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ProductID < out[j].ProductID
	})

	dedup := out[:0]
	for _, r := range out {
		if n := len(dedup); n > 0 && r.Date.Equal(dedup[n-1].Date) && r.ProductID == dedup[n-1].ProductID {
			continue
		}
		dedup = append(dedup, r)
	}
	return dedup
}

// OnDate returns the rows for a single pricing day.
func (p Panel) OnDate(d Date) Panel {
	out := Panel{}
	for _, r := range p {
		if r.Date.Equal(d) {
			out = append(out, r)
		}
	}
	return out
}
