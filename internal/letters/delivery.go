package letters

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/edgard/letterbot/internal/metrics"
)

// Report summarises one delivery sweep.
type Report struct {
	Date   string
	Due    int
	Sent   int
	Failed int
}

// Deliverer sends the letters that are due today and removes them.
type Deliverer struct {
	Deps
	concurrency int
}

// NewDeliverer creates a Deliverer sending at most concurrency letters at once.
func NewDeliverer(deps Deps, concurrency int) *Deliverer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Deliverer{Deps: deps.withDefaults("deliverer"), concurrency: concurrency}
}

// Sweep delivers every letter dated today. Each letter is sent on its own:
// a failed send is logged and not retried, and the letter is deleted with
// the rest. Only a failed lookup aborts the sweep, leaving today's letters
// in place.
func (d *Deliverer) Sweep(ctx context.Context) (Report, error) {
	report := Report{Date: Today(d.Now(), d.Location)}

	due, err := d.Store.FindLettersByDate(ctx, report.Date)
	if err != nil {
		metrics.Sweeps.WithLabelValues("failed").Inc()
		return report, err
	}
	report.Due = len(due)
	if len(due) == 0 {
		metrics.Sweeps.WithLabelValues("empty").Inc()
		d.Logger.DebugContext(ctx, "No letters due", "date", report.Date)
		return report, nil
	}

	var sent, failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(d.concurrency)

	ids := make([]int64, 0, len(due))
	for _, letter := range due {
		ids = append(ids, letter.ID)
		g.Go(func() error {
			if _, err := d.Transport.SendMessage(ctx, letter.ChatID, letter.Text, nil); err != nil {
				failed.Add(1)
				metrics.DeliveryFailures.Inc()
				d.Logger.WarnContext(ctx, "Failed to deliver letter", "error", err, "letter_id", letter.ID, "chat_id", letter.ChatID)
				return nil
			}
			sent.Add(1)
			metrics.LettersDelivered.Inc()
			return nil
		})
	}
	_ = g.Wait()

	report.Sent = int(sent.Load())
	report.Failed = int(failed.Load())

	if _, err := d.Store.DeleteLetters(ctx, ids); err != nil {
		metrics.Sweeps.WithLabelValues("failed").Inc()
		return report, err
	}

	metrics.Sweeps.WithLabelValues("completed").Inc()
	d.Logger.InfoContext(ctx, "Delivery sweep finished",
		"date", report.Date, "due", report.Due, "sent", report.Sent, "failed", report.Failed)
	return report, nil
}
