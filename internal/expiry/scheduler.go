package expiry

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmynk/limbo/internal/models"
)

// StatisticsRecorder appends a statistics snapshot.
type StatisticsRecorder interface {
	RecordStatistics(ctx context.Context) (*models.StatisticsRecord, error)
}

// Scheduler runs the sweep and the statistics snapshot periodically.
type Scheduler struct {
	Sweeper       *Sweeper
	Statistics    StatisticsRecorder // optional
	SweepInterval time.Duration
	StatsInterval time.Duration
}

// Run sweeps once immediately and then on every tick until ctx is done.
// Failed runs are logged and retried on the next tick.
func (s *Scheduler) Run(ctx context.Context) error {
	sweepTicker := time.NewTicker(s.SweepInterval)
	defer sweepTicker.Stop()

	var statsTick <-chan time.Time
	if s.Statistics != nil {
		statsTicker := time.NewTicker(s.StatsInterval)
		defer statsTicker.Stop()
		statsTick = statsTicker.C
	}

	slog.Info("Scheduler started", "sweep_interval", s.SweepInterval, "stats_interval", s.StatsInterval)
	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			slog.Info("Scheduler stopped")
			return nil
		case <-sweepTicker.C:
			s.sweep(ctx)
		case <-statsTick:
			if _, err := s.Statistics.RecordStatistics(ctx); err != nil {
				slog.Error("Failed to record statistics", "error", err)
			}
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	result, err := s.Sweeper.Sweep(ctx, Options{})
	if err != nil {
		slog.Error("Expiry sweep failed", "error", err)
		return
	}
	slog.Debug("Expiry sweep finished", "removed", len(result.Removed))
}
