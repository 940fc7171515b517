package job

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"sku-pricing/internal/model"
)

// DefaultSchedule runs the job every day at 06:00.
const DefaultSchedule = "0 6 * * *"

// Scheduler triggers the pricing job on a standard five-field cron spec.
type Scheduler struct {
	cron    *cron.Cron
	runner  *Runner
	log     zerolog.Logger
	spec    string
	timeout time.Duration
	now     func() time.Time
}

func NewScheduler(runner *Runner, spec string, log zerolog.Logger) (*Scheduler, error) {
	if spec == "" {
		spec = DefaultSchedule
	}
	s := &Scheduler{
		cron:    cron.New(),
		runner:  runner,
		log:     log,
		spec:    spec,
		timeout: 10 * time.Minute,
		now:     time.Now,
	}
	if _, err := s.cron.AddFunc(spec, func() { s.Trigger(context.Background()) }); err != nil {
		return nil, fmt.Errorf("failed to schedule pricing job %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.log.Info().Str("schedule", s.spec).Msg("pricing scheduler started")
	s.cron.Start()
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("pricing scheduler stopped")
}

// Next is the next scheduled run, zero before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Trigger prices today immediately. Errors are logged, not returned, since
// cron has nowhere to send them.
func (s *Scheduler) Trigger(ctx context.Context) *Result {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	day := model.NewDate(s.now())
	res, err := s.runner.Run(ctx, day)
	if err != nil {
		s.log.Error().Err(err).Str("date", day.String()).Msg("pricing job failed")
		return nil
	}
	return res
}
