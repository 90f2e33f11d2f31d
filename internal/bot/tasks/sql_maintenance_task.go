package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/edgard/letterbot/internal/config"
	"github.com/edgard/letterbot/internal/errs"
)

// newSQLMaintenanceTask compacts the letters database. Delivered and cleared
// letters leave free pages behind, so the file only shrinks after VACUUM.
func newSQLMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	log := taskLogger(deps, config.TaskSQLMaintenance)

	return func(ctx context.Context) error {
		start := time.Now()

		err := deps.Store.RunSQLMaintenance(ctx)
		switch {
		case err == nil:
			log.InfoContext(ctx, "Letters database compacted", "duration", time.Since(start))
			return nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			log.WarnContext(ctx, "Letters database maintenance interrupted", "error", err)
			return err
		default:
			log.ErrorContext(ctx, "Letters database maintenance failed", "error", err, "duration", time.Since(start))
			if errs.Code(err) != errs.CodeUnknown {
				return err
			}
			return errs.NewStoreError("sql maintenance failed", err)
		}
	}
}
