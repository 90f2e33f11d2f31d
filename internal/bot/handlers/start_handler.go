package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewStartHandler returns a handler for the /start command.
func NewStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return startHandler{deps}.Handle
}

// startHandler greets the user and drops any draft in progress.
type startHandler struct {
	deps HandlerDeps
}

func (h startHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "start")

	if update.Message == nil {
		log.WarnContext(ctx, "Start handler received update with nil message", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Handling /start command", "chat_id", chatID)

	err := h.deps.Composer.Greet(ctx, chatID, senderName(update.Message))
	h.deps.report(ctx, log, chatID, err, false)
}

// senderName returns the first name used in the greeting.
func senderName(msg *models.Message) string {
	if msg.Chat.FirstName != "" {
		return msg.Chat.FirstName
	}
	if msg.From != nil {
		return msg.From.FirstName
	}
	return ""
}
