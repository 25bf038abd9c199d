package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// DueSweeper runs one sweep over due failed reservations.
type DueSweeper interface {
	SweepDue(ctx context.Context) (int, error)
}

// RetrySweeper polls for failed reservations whose backoff has elapsed and re-runs them.
// Several instances may run at once; rows are claimed with SKIP LOCKED.
type RetrySweeper struct {
	sweeper  DueSweeper
	interval time.Duration
	log      zerolog.Logger
}

// NewRetrySweeper creates a sweeper that ticks every interval.
func NewRetrySweeper(sweeper DueSweeper, interval time.Duration, log zerolog.Logger) *RetrySweeper {
	return &RetrySweeper{sweeper: sweeper, interval: interval, log: log}
}

// Run blocks until ctx is cancelled.
func (r *RetrySweeper) Run(ctx context.Context) error {
	t := time.NewTicker(r.interval)
	defer t.Stop()

	// kick immediately
	r.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			r.tick(ctx)
		}
	}
}

func (r *RetrySweeper) tick(ctx context.Context) {
	n, err := r.sweeper.SweepDue(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("retry sweep failed")
		return
	}
	if n > 0 {
		r.log.Info().Int("count", n).Msg("retry sweep completed")
	}
}
