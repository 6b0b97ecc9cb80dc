// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package janitor periodically removes expired sessions and one-time tokens.

Expired rows are already inert: lookups treat them as missing. The janitor only
keeps the tables from growing without bound.
*/
package janitor

import (
	"context"
	"log/slog"
	"time"
)

// Purger deletes expired records and reports how many were removed.
type Purger interface {
	PurgeExpired(ctx context.Context) (int, error)
}

// Task names one purger for logging.
type Task struct {
	Name   string
	Purger Purger
}

// Janitor runs its tasks on a fixed interval.
type Janitor struct {
	interval time.Duration
	tasks    []Task
	logger   *slog.Logger
}

// New creates a janitor. An interval of zero or less disables it.
func New(interval time.Duration, logger *slog.Logger, tasks ...Task) *Janitor {
	return &Janitor{interval: interval, tasks: tasks, logger: logger}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (janitor *Janitor) Run(ctx context.Context) {
	if janitor.interval <= 0 {
		janitor.logger.Info("janitor_disabled")
		return
	}

	ticker := time.NewTicker(janitor.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			janitor.Sweep(ctx)
		}
	}
}

// Sweep runs every task once. A failing task does not stop the others.
func (janitor *Janitor) Sweep(ctx context.Context) {
	for _, task := range janitor.tasks {
		purged, err := task.Purger.PurgeExpired(ctx)
		if err != nil {
			janitor.logger.Error("janitor_purge_failed",
				slog.String("task", task.Name),
				slog.Any("error", err),
			)
			continue
		}
		if purged > 0 {
			janitor.logger.Info("janitor_purged",
				slog.String("task", task.Name),
				slog.Int("count", purged),
			)
		}
	}
}
