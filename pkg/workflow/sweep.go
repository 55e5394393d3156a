package workflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/hookflow/hookflow/pkg/persistence"
	"github.com/robfig/cron/v3"
)

const (
	sweepSchedule = "@every 60s"

	// DefaultRetention is how long finished execution records are kept.
	DefaultRetention = 24 * time.Hour
)

// HistorySweeper periodically deletes execution records older than the
// retention window to bound storage growth.
type HistorySweeper struct {
	logger    *slog.Logger
	store     persistence.Persistence
	cron      *cron.Cron
	retention time.Duration
}

func NewHistorySweeper(logger *slog.Logger, store persistence.Persistence) *HistorySweeper {
	return &HistorySweeper{
		logger:    logger.With("module", "workflow"),
		store:     store,
		cron:      cron.New(),
		retention: DefaultRetention,
	}
}

// Start schedules the periodic sweep.
func (s *HistorySweeper) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(sweepSchedule, func() {
		s.Sweep(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()

	s.logger.InfoContext(ctx, "History sweep scheduled",
		"schedule", sweepSchedule,
		"retention", s.retention,
	)

	return nil
}

// Stop halts the periodic sweep and waits for a running one to finish.
func (s *HistorySweeper) Stop() {
	<-s.cron.Stop().Done()
}

// Sweep deletes executions that started before the retention cutoff.
func (s *HistorySweeper) Sweep(ctx context.Context) {
	cutoff := time.Now().Add(-s.retention)

	deleted, err := s.store.DeleteExecutionsBefore(ctx, cutoff)
	if err != nil {
		s.logger.ErrorContext(ctx, "History sweep failed", "error", err)

		return
	}

	if deleted > 0 {
		s.logger.InfoContext(ctx, "History sweep removed old executions", "deleted", deleted)
	}
}
