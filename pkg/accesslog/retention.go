package accesslog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"rose-hq/rosegate/pkg/config"
)

// Pruner deletes access records that exceed the retention policy, by age
// and optionally by total count.
type Pruner struct {
	store  *SQLiteStore
	policy config.RetentionConfig
	logger *slog.Logger
}

// NewPruner creates a pruner for the given store and policy.
func NewPruner(store *SQLiteStore, policy config.RetentionConfig) *Pruner {
	return &Pruner{
		store:  store,
		policy: policy,
		logger: slog.Default().With("component", "accesslog.retention"),
	}
}

// Prune applies the retention policy once and returns the number of deleted
// records.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var total int64

	if p.policy.Days > 0 {
		cutoff := time.Now().AddDate(0, 0, -p.policy.Days)
		n, err := p.store.DeleteOlderThan(ctx, cutoff)
		if err != nil {
			return total, err
		}
		total += n
	}

	if p.policy.MaxRecords > 0 {
		n, err := p.store.DeleteOverCount(ctx, p.policy.MaxRecords)
		if err != nil {
			return total, err
		}
		total += n
	}

	if total > 0 {
		p.logger.Info("pruned access records", "deleted", total)
	}
	return total, nil
}

// Scheduler runs the pruner on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// NewScheduler creates a scheduler that runs pruner on the given cron
// expression (standard five-field format).
func NewScheduler(pruner *Pruner, schedule string) (*Scheduler, error) {
	logger := slog.Default().With("component", "accesslog.scheduler")

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := pruner.Prune(ctx); err != nil {
			logger.Error("scheduled prune failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid prune schedule %q: %w", schedule, err)
	}

	return &Scheduler{cron: c, logger: logger}, nil
}

// Start begins the schedule in a background goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("retention scheduler started")
}

// Stop stops the schedule and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("retention scheduler stopped")
}
