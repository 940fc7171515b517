// Package store persists feature snapshots, pricing decisions and operator
// overrides.
package store

import (
	"context"
	"errors"
	"time"

	"sku-pricing/internal/model"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Store is the persistence surface used by the pricing job and the API.
type Store interface {
	Migrate(ctx context.Context) error
	Close() error

	SaveFeatureSnapshots(ctx context.Context, rows model.Panel) error
	PanelRowsForDate(ctx context.Context, day model.Date) (model.Panel, error)

	SaveDecisions(ctx context.Context, records []model.DecisionRecord) error
	LatestDecision(ctx context.Context, productID string) (*model.DecisionRecord, error)
	DecisionHistory(ctx context.Context, productID string, limit int) ([]model.DecisionRecord, error)
	DecisionsBetween(ctx context.Context, from, to model.Date) ([]model.DecisionRecord, error)

	CreateOverride(ctx context.Context, o model.Override) (*model.Override, error)
	DeactivateOverrides(ctx context.Context, kind model.OverrideKind) (int64, error)
	ActiveOverrides(ctx context.Context, now time.Time) ([]model.Override, error)
}
