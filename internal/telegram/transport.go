package telegram

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/letterbot/internal/errs"
	"github.com/edgard/letterbot/internal/letters"
)

// botAPI is the part of *bot.Bot the transport calls.
type botAPI interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendSticker(ctx context.Context, params *bot.SendStickerParams) (*models.Message, error)
	DeleteMessage(ctx context.Context, params *bot.DeleteMessageParams) (bool, error)
}

// Transport implements letters.Transport on top of go-telegram/bot.
type Transport struct {
	api    botAPI
	router *ReplyRouter
	logger *slog.Logger
}

var _ letters.Transport = (*Transport)(nil)

// NewTransport creates a Transport. router must also be installed as the
// bot's default handler so replies reach their listeners.
func NewTransport(api botAPI, router *ReplyRouter, logger *slog.Logger) *Transport {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{
		api:    api,
		router: router,
		logger: logger.With("component", "transport"),
	}
}

// SendMessage sends text to chatID and returns the new message id.
func (t *Transport) SendMessage(ctx context.Context, chatID int64, text string, opts *letters.SendOptions) (int, error) {
	params := &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: replyMarkup(opts),
	}

	msg, err := t.api.SendMessage(ctx, params)
	if err != nil {
		return 0, errs.NewTransportError("failed to send message", err)
	}
	return msg.ID, nil
}

// SendSticker sends the sticker with the given file id.
func (t *Transport) SendSticker(ctx context.Context, chatID int64, stickerID string) error {
	_, err := t.api.SendSticker(ctx, &bot.SendStickerParams{
		ChatID:  chatID,
		Sticker: &models.InputFileString{Data: stickerID},
	})
	if err != nil {
		return errs.NewTransportError("failed to send sticker", err)
	}
	return nil
}

// DeleteMessage deletes one message from chatID.
func (t *Transport) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if _, err := t.api.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: chatID, MessageID: messageID}); err != nil {
		return errs.NewTransportError("failed to delete message", err)
	}
	return nil
}

// OnReplyTo arms a reply listener on messageID.
func (t *Transport) OnReplyTo(chatID int64, messageID int, h letters.ReplyHandler) string {
	return t.router.Listen(chatID, messageID, h)
}

// RemoveReplyListener disarms a reply listener.
func (t *Transport) RemoveReplyListener(id string) error {
	return t.router.Remove(id)
}

func replyMarkup(opts *letters.SendOptions) models.ReplyMarkup {
	if opts == nil {
		return nil
	}
	if opts.ForceReply {
		return &models.ForceReply{ForceReply: true}
	}
	if len(opts.Keyboard) == 0 {
		return nil
	}
	return InlineKeyboard(opts.Keyboard)
}

// InlineKeyboard converts rows of buttons into Telegram's inline keyboard.
func InlineKeyboard(rows [][]letters.Button) *models.InlineKeyboardMarkup {
	keyboard := make([][]models.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]models.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, models.InlineKeyboardButton{
				Text:         b.Text,
				CallbackData: b.Data,
				URL:          b.URL,
			})
		}
		keyboard = append(keyboard, buttons)
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: keyboard}
}
