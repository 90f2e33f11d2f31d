// Package main contains the entrypoint for letterbot, a Telegram bot that
// holds letters written today and delivers them months later.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // letter time zones must resolve on minimal images

	tgbot "github.com/go-telegram/bot"

	"github.com/edgard/letterbot/internal/bot"
	"github.com/edgard/letterbot/internal/bot/handlers"
	"github.com/edgard/letterbot/internal/bot/tasks"
	"github.com/edgard/letterbot/internal/config"
	"github.com/edgard/letterbot/internal/database"
	"github.com/edgard/letterbot/internal/drafts"
	"github.com/edgard/letterbot/internal/letters"
	"github.com/edgard/letterbot/internal/logger"
	"github.com/edgard/letterbot/internal/metrics"
	"github.com/edgard/letterbot/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes and starts all application components (config, logger, db,
// letters core, bot, scheduler), handles graceful shutdown, and returns an
// exit code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	lettersLoc, err := cfg.Letters.Location()
	if err != nil {
		log.Error("Invalid letters timezone", "timezone", cfg.Letters.Timezone, "error", err)
		return 1
	}

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.WithTimeout(database.NewStore(db, log), cfg.Database.OperationTimeout)

	if cfg.Metrics.Enabled {
		metrics.Register()
	}

	router := telegram.NewReplyRouter(log)
	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(router.Handle),
		tgbot.WithHTTPClient(cfg.Telegram.RequestTimeout, &http.Client{Timeout: cfg.Telegram.RequestTimeout}),
		tgbot.WithErrorsHandler(func(err error) {
			log.Warn("Telegram polling error", "error", err)
		}),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	me, err := tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", me.ID, "bot_username", me.Username)

	transport := telegram.NewTransport(tg, router, log)
	lDeps := letters.Deps{
		Logger:    log,
		Store:     store,
		Transport: transport,
		Messages:  cfg.Messages,
		Location:  lettersLoc,
	}
	composer := letters.NewComposer(lDeps, drafts.NewTracker(), cfg.Telegram.GreetingSticker)
	history := letters.NewHistory(lDeps)
	deliverer := letters.NewDeliverer(lDeps, cfg.Letters.SendConcurrency)

	hDeps := handlers.HandlerDeps{
		Logger:    log,
		Config:    cfg,
		Transport: transport,
		Composer:  composer,
		History:   history,
	}
	tDeps := tasks.TaskDeps{
		Logger:    log,
		Store:     store,
		Deliverer: deliverer,
		Config:    cfg,
	}

	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(hDeps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}
	if err := telegram.RegisterCommands(ctx, tg, cfg.Telegram.Commands); err != nil {
		// The bot still works without a command menu.
		log.Warn("Failed to register command menu", "error", err)
	}

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}
	app := bot.NewBot(log, cfg, tg, sched)

	log.Info("Starting bot...", "letters_timezone", lettersLoc.String())
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
