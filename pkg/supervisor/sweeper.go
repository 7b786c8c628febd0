package supervisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/brandforge/brandforge/pkg/log"
	"github.com/brandforge/brandforge/pkg/models"
	"github.com/brandforge/brandforge/pkg/persistence"
	"github.com/brandforge/brandforge/pkg/workflow"
)

// DefaultSweepSchedule runs the expiry sweep every ten minutes.
const DefaultSweepSchedule = "*/10 * * * *"

// Sweeper periodically marks TTL-lapsed sessions expired so their state is
// consistent even when nobody queries them.
type Sweeper struct {
	controller  *workflow.Controller
	persistence persistence.Persistence
	cron        *cron.Cron
	logger      *slog.Logger
}

func NewSweeper(controller *workflow.Controller, p persistence.Persistence) *Sweeper {
	return &Sweeper{
		controller:  controller,
		persistence: p,
		cron:        cron.New(),
		logger:      log.WithModule("sweeper"),
	}
}

// Start schedules the sweep. The schedule uses standard cron syntax.
func (s *Sweeper) Start(ctx context.Context, schedule string) error {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}

	_, err := s.cron.AddFunc(schedule, func() {
		if count, err := s.Sweep(ctx); err != nil {
			s.logger.ErrorContext(ctx, "Expiry sweep failed", "error", err)
		} else if count > 0 {
			s.logger.InfoContext(ctx, "Expiry sweep finished", "expired", count)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()

	return nil
}

func (s *Sweeper) Stop() {
	s.cron.Stop()
}

// Sweep walks the active sessions and expires every one whose TTL lapsed.
// It returns the number of sessions it expired.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	sessions, err := s.persistence.Sessions().ListByStatus(ctx, models.SessionStatusActive, 0)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	expired := 0

	for _, session := range sessions {
		if !session.Expired(now) {
			continue
		}

		if s.controller.Expire(ctx, session) {
			expired++
		}
	}

	return expired, nil
}
