package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/edgard/letterbot/internal/config"
)

// newLetterDeliveryTask creates the daily sweep that sends today's letters.
// A failed sweep is not retried; the next run only looks at its own day.
func newLetterDeliveryTask(deps TaskDeps) ScheduledTaskFunc {
	log := taskLogger(deps, config.TaskLetterDelivery)

	return func(ctx context.Context) error {
		startTime := time.Now()

		report, err := deps.Deliverer.Sweep(ctx)
		if err != nil {
			log.ErrorContext(ctx, "Letter delivery failed", "error", err, "date", report.Date)
			return fmt.Errorf("letter delivery for %s failed: %w", report.Date, err)
		}

		log.InfoContext(ctx, "Letter delivery completed",
			"date", report.Date,
			"due", report.Due,
			"sent", report.Sent,
			"failed", report.Failed,
			"duration", time.Since(startTime),
		)
		return nil
	}
}
