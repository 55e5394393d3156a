package workflow

import (
	"context"
	"time"

	"github.com/hookflow/hookflow/pkg/models"
	"github.com/hookflow/hookflow/pkg/persistence"
)

// DefaultStatsWindow bounds how far back GetExecutionStats looks.
const DefaultStatsWindow = time.Hour

// ExecutionStats aggregates execution outcomes over a recent window.
type ExecutionStats struct {
	Window      time.Duration `json:"window"`
	Total       int           `json:"total"`
	Pending     int           `json:"pending"`
	Running     int           `json:"running"`
	Completed   int           `json:"completed"`
	Failed      int           `json:"failed"`
	Cancelled   int           `json:"cancelled"`
	SuccessRate float64       `json:"success_rate"`
}

// GetExecutionStats counts executions started within the window. The
// success rate is completed over all terminal executions in the window;
// it is zero when nothing has finished yet.
func GetExecutionStats(ctx context.Context, store persistence.Persistence, window time.Duration) (*ExecutionStats, error) {
	if window <= 0 {
		window = DefaultStatsWindow
	}

	executions, err := store.Executions(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-window)
	stats := &ExecutionStats{Window: window}

	for _, execution := range executions {
		if execution.StartedAt.Before(cutoff) {
			continue
		}

		stats.Total++

		switch execution.Status {
		case models.ExecutionPending:
			stats.Pending++
		case models.ExecutionRunning:
			stats.Running++
		case models.ExecutionCompleted:
			stats.Completed++
		case models.ExecutionFailed:
			stats.Failed++
		case models.ExecutionCancelled:
			stats.Cancelled++
		}
	}

	terminal := stats.Completed + stats.Failed + stats.Cancelled
	if terminal > 0 {
		stats.SuccessRate = float64(stats.Completed) / float64(terminal)
	}

	return stats, nil
}
