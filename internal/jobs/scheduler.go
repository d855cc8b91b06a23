package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Revalidator is implemented by session.Manager.
type Revalidator interface {
	Revalidate(ctx context.Context)
}

// Scheduler periodically re-resolves the signed-in session against the
// backend so a lock or deletion applied server-side does not survive
// locally until the next restart.
type Scheduler struct {
	cron     *cron.Cron
	sessions Revalidator
	interval time.Duration
	log      zerolog.Logger
}

func NewScheduler(sessions Revalidator, interval time.Duration, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		sessions: sessions,
		interval: interval,
		log:      log,
	}
}

// Start is a no-op when the interval is zero; revalidation is opt-in.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		return nil
	}

	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, s.revalidate); err != nil {
		return fmt.Errorf("schedule revalidation: %w", err)
	}

	s.cron.Start()
	s.log.Info().Dur("interval", s.interval).Msg("session revalidation scheduled")
	return nil
}

// Stop halts scheduling and waits for an in-flight revalidation to
// finish, bounded by a five second drain.
func (s *Scheduler) Stop() {
	drained := s.cron.Stop()
	select {
	case <-drained.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out waiting for running job")
	}
}

func (s *Scheduler) revalidate() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.sessions.Revalidate(ctx)
}
