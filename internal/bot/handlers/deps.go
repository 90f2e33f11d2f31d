package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/edgard/letterbot/internal/config"
	"github.com/edgard/letterbot/internal/errs"
	"github.com/edgard/letterbot/internal/letters"
)

// Composer is the composition flow the handlers drive.
type Composer interface {
	Greet(ctx context.Context, chatID int64, name string) error
	NewLetter(ctx context.Context, chatID int64) error
	ChooseDelay(ctx context.Context, chatID int64, months int, buttonMessageID int) error
	Cancel(ctx context.Context, chatID int64) error
}

// History lists and clears stored letters.
type History interface {
	List(ctx context.Context, chatID int64) error
	Clear(ctx context.Context, chatID int64) error
}

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger    *slog.Logger
	Config    *config.Config
	Transport letters.Transport
	Composer  Composer
	History   History
}

// report logs err at a level matching its kind. When notify is set and the
// failure came from the store, the user gets the general error message.
func (d HandlerDeps) report(ctx context.Context, log *slog.Logger, chatID int64, err error, notify bool) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, letters.ErrNoDraft):
		log.DebugContext(ctx, "Ignoring stale action", "chat_id", chatID)
		return
	case errs.Is(err, errs.CodeInput), errs.Is(err, errs.CodeValidation):
		log.DebugContext(ctx, "Rejected user input", "chat_id", chatID, "reason", err)
		return
	case errs.Is(err, errs.CodeTransport):
		log.WarnContext(ctx, "Telegram request failed", "error", err, "chat_id", chatID)
		return
	}

	log.ErrorContext(ctx, "Action failed", "error", err, "error_code", errs.Code(err), "chat_id", chatID)
	if !notify {
		return
	}
	if _, sendErr := d.Transport.SendMessage(ctx, chatID, d.Config.Messages.GeneralError, nil); sendErr != nil {
		log.ErrorContext(ctx, "Failed to send error message", "error", sendErr, "chat_id", chatID)
	}
}
