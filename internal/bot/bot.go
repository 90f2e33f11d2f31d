// Package bot implements lifecycle management and component orchestration
// for letterbot: the Telegram listener, the scheduler and the metrics
// endpoint run side by side until shutdown.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/edgard/letterbot/internal/config"
	"github.com/edgard/letterbot/internal/metrics"
)

// Poller receives Telegram updates until ctx is done. *tgbot.Bot satisfies it.
type Poller interface {
	Start(ctx context.Context)
}

// JobRunner runs scheduled jobs in the background.
type JobRunner interface {
	Start() error
	Stop() error
}

// service is one long-running part of the bot. run blocks until ctx is done
// or the service fails.
type service struct {
	name string
	run  func(ctx context.Context) error
}

// Bot owns the long-running services of letterbot.
type Bot struct {
	logger   *slog.Logger
	services []service
}

// NewBot wires the Telegram poller, the job runner and, when enabled, the
// metrics endpoint into one Bot.
func NewBot(logger *slog.Logger, cfg *config.Config, poller Poller, jobs JobRunner) *Bot {
	b := &Bot{logger: logger.With("component", "bot_orchestrator")}

	b.services = append(b.services,
		service{name: "telegram", run: b.poll(poller)},
		service{name: "scheduler", run: b.schedule(jobs)},
	)
	if cfg != nil && cfg.Metrics.Enabled {
		addr := cfg.Metrics.Address
		b.services = append(b.services, service{name: "metrics", run: func(ctx context.Context) error {
			return metrics.Serve(ctx, addr, b.logger)
		}})
	}
	return b
}

// Run starts every service and blocks until ctx is cancelled or one of them
// fails, which stops the others.
func (b *Bot) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	for _, s := range b.services {
		g.Go(func() error {
			b.logger.Info("Starting service", "service", s.name)
			if err := s.run(gCtx); err != nil {
				return fmt.Errorf("%s: %w", s.name, err)
			}
			b.logger.Info("Service stopped", "service", s.name)
			return nil
		})
	}

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot stopped gracefully")
	return nil
}

func (b *Bot) poll(poller Poller) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		poller.Start(ctx)
		if ctx.Err() == nil {
			return errors.New("telegram listener stopped unexpectedly")
		}
		return nil
	}
}

func (b *Bot) schedule(jobs JobRunner) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if err := jobs.Start(); err != nil {
			return fmt.Errorf("failed to start: %w", err)
		}

		<-ctx.Done()
		if err := jobs.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	}
}
