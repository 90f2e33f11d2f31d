// Package logger provides structured logging for letterbot built on slog,
// plus adapters that route Telegram updates and gocron events through it.
package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewLogger creates a slog Logger with the given level, installs it as the
// default logger and returns it. JSON output is used when jsonOutput is true.
func NewLogger(levelStr string, jsonOutput bool) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// Middleware logs every incoming update with the fields needed to follow a
// letter through composition: chat, reply target and callback data.
// Letter text itself is never logged.
func Middleware(log *slog.Logger) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			startTime := time.Now()
			logEntry := log.With("update_id", update.ID)

			switch {
			case update.Message != nil:
				msg := update.Message
				logEntry = logEntry.With(
					"update_type", "message",
					"chat_id", msg.Chat.ID,
					"message_id", msg.ID,
					"has_text", msg.Text != "",
				)
				if msg.ReplyToMessage != nil {
					logEntry = logEntry.With("reply_to", msg.ReplyToMessage.ID)
				}
			case update.CallbackQuery != nil:
				cq := update.CallbackQuery
				logEntry = logEntry.With(
					"update_type", "callback_query",
					"callback_query_id", cq.ID,
					"user_id", cq.From.ID,
					"data", cq.Data,
				)
			default:
				logEntry = logEntry.With("update_type", "other")
			}

			logEntry.DebugContext(ctx, "Processing update")
			next(ctx, b, update)
			logEntry.DebugContext(ctx, "Finished processing update", "duration", time.Since(startTime))
		}
	}
}

// gocronLogger implements gocron.Logger on top of slog.
type gocronLogger struct {
	log *slog.Logger
}

// NewGocronLogger returns a gocron.Logger writing through log.
//
//nolint:ireturn // Interface return is required by gocron's API contract
func NewGocronLogger(log *slog.Logger) gocron.Logger {
	return &gocronLogger{log: log.With("source", "gocron")}
}

func (l *gocronLogger) Debug(msg string, args ...any) { l.log.Debug(msg, toSlogArgs(args)...) }
func (l *gocronLogger) Info(msg string, args ...any) { l.log.Info(msg, toSlogArgs(args)...) }
func (l *gocronLogger) Warn(msg string, args ...any) { l.log.Warn(msg, toSlogArgs(args)...) }
func (l *gocronLogger) Error(msg string, args ...any) { l.log.Error(msg, toSlogArgs(args)...) }

// toSlogArgs turns gocron's loose key/value list into well-formed slog pairs.
func toSlogArgs(args []any) []any {
	slogArgs := make([]any, 0, len(args))

	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			slogArgs = append(slogArgs, "value", args[i])
			break
		}

		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", args[i])
		}
		slogArgs = append(slogArgs, key, args[i+1])
	}

	return slogArgs
}
