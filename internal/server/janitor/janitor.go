// Package janitor removes expired sessions on a cron schedule.
package janitor

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tenantdb/internal/logging"
	"github.com/robfig/cron/v3"
)

const runTimeout = 1 * time.Minute

// Cleaner deletes expired sessions and reports how many rows went away.
type Cleaner interface {
	CleanupExpiredSessions(ctx context.Context) (int64, error)
}

// Janitor schedules periodic session cleanup runs.
type Janitor struct {
	schedule string
	cleaner  Cleaner
	logger   logging.Logger
	cron     *cron.Cron
}

func NewJanitor(schedule string, cleaner Cleaner, logger logging.Logger) *Janitor {
	l := logger.With("module", "janitor")
	return &Janitor{schedule: schedule, cleaner: cleaner, logger: l, cron: cron.New()}
}

// Start registers the cleanup job and starts the scheduler.
func (j *Janitor) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.run); err != nil {
		return fmt.Errorf("cron schedule error: %w", err)
	}
	j.cron.Start()
	j.logger.Info(context.Background(), "Session janitor started", "schedule", j.schedule)
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (j *Janitor) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
	j.logger.Info(context.Background(), "Session janitor stopped")
}

func (j *Janitor) run() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	n, err := j.cleaner.CleanupExpiredSessions(ctx)
	if err != nil {
		j.logger.Error(ctx, "Session cleanup failed", "error", err)
		return
	}
	if n > 0 {
		j.logger.Info(ctx, "Expired sessions removed", "count", n)
	} else {
		j.logger.Debug(ctx, "No expired sessions")
	}
}
