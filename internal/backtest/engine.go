package backtest

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"sku-pricing/internal/model"
	"sku-pricing/internal/strategy"
)

// ErrEmptyPanel is returned when there is nothing to replay.
var ErrEmptyPanel = errors.New("empty panel")

// Observer is notified after each completed run.
type Observer interface {
	ObserveBacktest(strategy string, rows int, d time.Duration)
}

type Engine struct {
	workers  int
	log      zerolog.Logger
	observer Observer
}

type Option func(*Engine)

// WithWorkers bounds the number of rows simulated concurrently.
// Values <= 0 use GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

func New(opts ...Option) *Engine {
	e := &Engine{log: zerolog.Nop()}
	for _, o := range opts {
		o(e)
	}
	if e.workers <= 0 {
		e.workers = runtime.GOMAXPROCS(0)
	}
	return e
}

// Run replays a strategy over a panel, one outcome per (date, product_id),
// ordered by (date, product_id). Rows are independent, so they are fanned out
// to a bounded worker pool; each worker writes only its own slot.
func (e *Engine) Run(panel model.Panel, strat strategy.Strategy) (*Result, error) {
	if strat == nil {
		return nil, fmt.Errorf("strategy is nil")
	}
	if len(panel) == 0 {
		return nil, ErrEmptyPanel
	}

	start := time.Now()
	rows := panel.Normalized()
	outcomes := make([]Outcome, len(rows))
	name := strat.Name()

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i := range rows {
		i := i
		g.Go(func() error {
			row := rows[i]
			if err := row.Validate(); err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
			price := strat.Decide(strategy.Context{Index: i, Row: row})
			outcomes[i] = Simulate(i, row, name, price)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("backtest %s: %w", name, err)
	}

	total := 0.0
	for _, o := range outcomes {
		total += o.Revenue
	}

	elapsed := time.Since(start)
	e.log.Info().
		Str("strategy", name).
		Int("rows", len(outcomes)).
		Float64("total_revenue", total).
		Dur("elapsed", elapsed).
		Msg("backtest complete")
	if e.observer != nil {
		e.observer.ObserveBacktest(name, len(outcomes), elapsed)
	}

	return &Result{
		Strategy:     name,
		Outcomes:     outcomes,
		TotalRevenue: total,
	}, nil
}

// RunAll replays each strategy over the same panel, in the order given.
func (e *Engine) RunAll(panel model.Panel, strats []strategy.Strategy) ([]*Result, error) {
	out := make([]*Result, 0, len(strats))
	for _, s := range strats {
		res, err := e.Run(panel, s)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}
