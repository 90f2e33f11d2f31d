// Package tasks implements the scheduled jobs of letterbot: the daily letter
// delivery sweep and periodic database maintenance.
package tasks

import (
	"context"
	"log/slog"

	"github.com/edgard/letterbot/internal/config"
	"github.com/edgard/letterbot/internal/letters"
)

// Sweeper delivers the letters due today.
type Sweeper interface {
	Sweep(ctx context.Context) (letters.Report, error)
}

// Maintainer runs database maintenance.
type Maintainer interface {
	RunSQLMaintenance(ctx context.Context) error
}

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger    *slog.Logger
	Store     Maintainer
	Deliverer Sweeper
	Config    *config.Config
}

func taskLogger(deps TaskDeps, name string) *slog.Logger {
	return deps.Logger.With("component", "tasks", "task", name)
}
