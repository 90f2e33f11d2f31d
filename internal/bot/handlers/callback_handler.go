package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/letterbot/internal/letters"
)

// NewCallbackHandler returns the handler for inline button presses.
func NewCallbackHandler(deps HandlerDeps) bot.HandlerFunc {
	return callbackHandler{deps}.Handle
}

type callbackHandler struct {
	deps HandlerDeps
}

// Handle routes the press and always acknowledges it, so the client stops
// showing a spinner even when the press was stale.
func (h callbackHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "callback")

	cq := update.CallbackQuery
	if cq == nil {
		return
	}

	var buttonMessageID int
	if cq.Message.Message != nil {
		buttonMessageID = cq.Message.Message.ID
	}

	h.route(ctx, cq.From.ID, buttonMessageID, cq.Data)

	if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cq.ID}); err != nil {
		log.WarnContext(ctx, "Failed to answer callback query", "error", err, "callback_query_id", cq.ID)
	}
}

func (h callbackHandler) route(ctx context.Context, chatID int64, buttonMessageID int, data string) {
	log := h.deps.Logger.With("handler", "callback", "data", data)

	switch data {
	case letters.ActionNewLetter:
		h.deps.report(ctx, log, chatID, h.deps.Composer.NewLetter(ctx, chatID), true)
	case letters.ActionCheck:
		h.deps.report(ctx, log, chatID, h.deps.History.List(ctx, chatID), true)
	case letters.ActionCancel:
		h.deps.report(ctx, log, chatID, h.deps.Composer.Cancel(ctx, chatID), false)
	case letters.ActionSixMonths, letters.ActionNineMonths, letters.ActionYear:
		months, _ := letters.MonthsFor(data)
		// The composer tells the user itself when the commit fails.
		h.deps.report(ctx, log, chatID, h.deps.Composer.ChooseDelay(ctx, chatID, months, buttonMessageID), false)
	case letters.ActionDeleteAll:
		h.deps.report(ctx, log, chatID, h.deps.History.Clear(ctx, chatID), true)
	default:
		log.DebugContext(ctx, "Ignoring unknown callback data", "chat_id", chatID)
	}
}
