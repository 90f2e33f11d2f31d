package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/letterbot/internal/letters"
)

// NewNewLetterHandler returns a handler for the /newletter command.
func NewNewLetterHandler(deps HandlerDeps) bot.HandlerFunc {
	return newLetterHandler{deps}.Handle
}

type newLetterHandler struct {
	deps HandlerDeps
}

func (h newLetterHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "newletter")
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	log.DebugContext(ctx, "Handling /newletter command", "chat_id", chatID)
	h.deps.report(ctx, log, chatID, h.deps.Composer.NewLetter(ctx, chatID), true)
}

// NewCheckHandler returns a handler for the /check command.
func NewCheckHandler(deps HandlerDeps) bot.HandlerFunc {
	return checkHandler{deps}.Handle
}

type checkHandler struct {
	deps HandlerDeps
}

func (h checkHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "check")
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	log.DebugContext(ctx, "Handling /check command", "chat_id", chatID)
	h.deps.report(ctx, log, chatID, h.deps.History.List(ctx, chatID), true)
}

// NewAboutHandler returns a handler for the /about command.
func NewAboutHandler(deps HandlerDeps) bot.HandlerFunc {
	return aboutHandler{deps}.Handle
}

type aboutHandler struct {
	deps HandlerDeps
}

func (h aboutHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "about")
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	about := h.deps.Config.About

	var opts *letters.SendOptions
	if len(about.Links) > 0 {
		row := make([]letters.Button, 0, len(about.Links))
		for _, link := range about.Links {
			row = append(row, letters.Button{Text: link.Text, URL: link.URL})
		}
		opts = &letters.SendOptions{Keyboard: [][]letters.Button{row}}
	}

	_, err := h.deps.Transport.SendMessage(ctx, chatID, about.Text, opts)
	h.deps.report(ctx, log, chatID, err, false)
}
