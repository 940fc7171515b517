// Package job runs the daily pricing job: resolve overrides, price every SKU
// in the day's feature snapshot and persist the decisions.
package job

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"sku-pricing/internal/model"
	"sku-pricing/internal/pricing"
	"sku-pricing/internal/store"
	"sku-pricing/internal/strategy"
)

// Recorder receives job telemetry. *telemetry.Metrics implements it.
type Recorder interface {
	RecordDecision(strategy string, reason model.Reason)
	RecordJobRun(d time.Duration, err error)
	SetOverride(kind model.OverrideKind)
}

type nopRecorder struct{}

func (nopRecorder) RecordDecision(string, model.Reason) {}
func (nopRecorder) RecordJobRun(time.Duration, error)   {}
func (nopRecorder) SetOverride(model.OverrideKind)      {}

// Result summarizes one run.
type Result struct {
	Date      model.Date         `json:"date"`
	Override  model.OverrideKind `json:"override,omitempty"`
	Strategy  string             `json:"strategy"`
	Decisions int                `json:"decisions"`
	// Skipped is true when the day had no feature snapshots.
	Skipped bool `json:"skipped"`
}

type Runner struct {
	store    store.Store
	engine   *pricing.Engine
	rules    strategy.RuleParams
	recorder Recorder
	log      zerolog.Logger
	now      func() time.Time
}

type Option func(*Runner)

func WithRecorder(r Recorder) Option {
	return func(rn *Runner) { rn.recorder = r }
}

func WithLogger(l zerolog.Logger) Option {
	return func(rn *Runner) { rn.log = l }
}

// WithClock sets the clock used to evaluate override expiry.
func WithClock(now func() time.Time) Option {
	return func(rn *Runner) { rn.now = now }
}

func NewRunner(st store.Store, engine *pricing.Engine, rules strategy.RuleParams, opts ...Option) (*Runner, error) {
	if st == nil {
		return nil, errors.New("job: store is required")
	}
	if engine == nil {
		return nil, errors.New("job: pricing engine is required")
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	r := &Runner{
		store:    st,
		engine:   engine,
		rules:    rules,
		recorder: nopRecorder{},
		log:      zerolog.Nop(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r, nil
}

// Run prices one day. PRICE_FREEZE takes precedence over FORCE_RULE_BASED;
// with neither active the decision engine prices the day. Decisions are
// persisted in one batch, so a failing row leaves nothing behind.
func (r *Runner) Run(ctx context.Context, day model.Date) (res *Result, err error) {
	start := time.Now()
	defer func() { r.recorder.RecordJobRun(time.Since(start), err) }()

	kind, err := SyncOverride(ctx, r.store, r.recorder, r.now())
	if err != nil {
		return nil, err
	}

	strat, err := strategy.ForOverride(kind, r.engine, r.rules)
	if err != nil {
		return nil, err
	}
	res = &Result{Date: day, Override: kind, Strategy: strat.Name()}

	log := r.log.With().Str("date", day.String()).Str("strategy", strat.Name()).Logger()
	if kind != model.OverrideNone {
		log.Warn().Str("override", string(kind)).Msg("override active, decision engine bypassed")
	}

	rows, err := r.store.PanelRowsForDate(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("job: load pricing inputs: %w", err)
	}
	if len(rows) == 0 {
		log.Warn().Msg("no pricing inputs for date")
		res.Skipped = true
		return res, nil
	}

	records := make([]model.DecisionRecord, 0, len(rows))
	for i, row := range rows.Normalized() {
		if err := row.Validate(); err != nil {
			return nil, fmt.Errorf("job: row %d: %w", i, err)
		}
		d := r.decide(strat, kind, i, row)
		records = append(records, model.NewDecisionRecord(day, row, strat.Name(), d))
	}

	if err := r.store.SaveDecisions(ctx, records); err != nil {
		return nil, fmt.Errorf("job: save decisions: %w", err)
	}
	for _, rec := range records {
		r.recorder.RecordDecision(rec.Strategy, rec.Reason)
	}

	res.Decisions = len(records)
	log.Info().Int("decisions", res.Decisions).Dur("elapsed", time.Since(start)).Msg("pricing job complete")
	return res, nil
}

// SyncOverride resolves the override in effect at now and reports it to rec.
// Called at startup so the override gauge is right before the first run.
func SyncOverride(ctx context.Context, st store.Store, rec Recorder, now time.Time) (model.OverrideKind, error) {
	overrides, err := st.ActiveOverrides(ctx, now)
	if err != nil {
		return model.OverrideNone, fmt.Errorf("job: load overrides: %w", err)
	}
	kind := model.ResolveOverride(model.Kinds(overrides, now))
	if rec != nil {
		rec.SetOverride(kind)
	}
	return kind, nil
}

func (r *Runner) decide(strat strategy.Strategy, kind model.OverrideKind, i int, row model.PanelRow) model.Decision {
	if es, ok := strat.(*strategy.EngineStrategy); ok {
		return es.Explain(row)
	}
	return model.Decision{
		FinalPrice: strat.Decide(strategy.Context{Index: i, Row: row}),
		Reason:     kind.Reason(),
	}
}
