package service

import (
	"context"
	"fmt"
	"time"

	"github.com/phuslu/log"
	"github.com/robfig/cron/v3"
)

// PriceScheduler runs PriceService.RefreshAll on a cron schedule.
type PriceScheduler struct {
	cron    *cron.Cron
	prices  *PriceService
	timeout time.Duration
	now     func() time.Time
}

// NewPriceScheduler registers a refresh job for schedule, a standard
// five-field cron expression evaluated in UTC. Each run is bounded by timeout.
func NewPriceScheduler(prices *PriceService, schedule string, timeout time.Duration) (*PriceScheduler, error) {
	s := &PriceScheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		prices:  prices,
		timeout: timeout,
		now:     time.Now,
	}
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *PriceScheduler) run() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	summary, err := s.prices.RefreshAll(ctx, s.now().UTC())
	if err != nil {
		log.Error().Err(err).Msg("scheduled price refresh aborted")
		return
	}
	log.Info().
		Int("instruments", len(summary.Results)).
		Int("failed", summary.Failed).
		Dur("elapsed", time.Since(started)).
		Msg("scheduled price refresh complete")
}

// Start begins running scheduled refreshes in the background.
func (s *PriceScheduler) Start() {
	s.cron.Start()
	log.Info().Int("jobs", len(s.cron.Entries())).Msg("price scheduler started")
}

// Stop halts the schedule and waits for a running refresh to finish or ctx to expire.
func (s *PriceScheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		log.Warn().Msg("price scheduler stop timed out")
	}
}
