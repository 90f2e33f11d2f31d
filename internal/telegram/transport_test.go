package telegram

import (
	"context"
	"errors"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/letterbot/internal/config"
	"github.com/edgard/letterbot/internal/errs"
	"github.com/edgard/letterbot/internal/letters"
)

type fakeAPI struct {
	messages []*bot.SendMessageParams
	stickers []*bot.SendStickerParams
	deleted  []*bot.DeleteMessageParams
	err      error
}

func (f *fakeAPI) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.messages = append(f.messages, params)
	return &models.Message{ID: 1000 + len(f.messages)}, nil
}

func (f *fakeAPI) SendSticker(_ context.Context, params *bot.SendStickerParams) (*models.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.stickers = append(f.stickers, params)
	return &models.Message{}, nil
}

func (f *fakeAPI) DeleteMessage(_ context.Context, params *bot.DeleteMessageParams) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.deleted = append(f.deleted, params)
	return true, nil
}

func TestTransportSendMessageMarkup(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	tr := NewTransport(api, NewReplyRouter(nil), nil)
	ctx := context.Background()

	id, err := tr.SendMessage(ctx, 5, "plain", nil)
	if err != nil || id != 1001 {
		t.Fatalf("SendMessage() = %d, %v", id, err)
	}
	if api.messages[0].ReplyMarkup != nil {
		t.Errorf("plain message has markup %+v", api.messages[0].ReplyMarkup)
	}

	if _, err := tr.SendMessage(ctx, 5, "prompt", &letters.SendOptions{ForceReply: true}); err != nil {
		t.Fatal(err)
	}
	if fr, ok := api.messages[1].ReplyMarkup.(*models.ForceReply); !ok || !fr.ForceReply {
		t.Errorf("prompt markup = %#v, want force reply", api.messages[1].ReplyMarkup)
	}

	opts := &letters.SendOptions{Keyboard: [][]letters.Button{
		{{Text: "six", Data: letters.ActionSixMonths}, {Text: "nine", Data: letters.ActionNineMonths}},
		{{Text: "site", URL: "https://t.me/bezsmenki"}},
	}}
	if _, err := tr.SendMessage(ctx, 5, "choose", opts); err != nil {
		t.Fatal(err)
	}
	kb, ok := api.messages[2].ReplyMarkup.(*models.InlineKeyboardMarkup)
	if !ok || len(kb.InlineKeyboard) != 2 || len(kb.InlineKeyboard[0]) != 2 {
		t.Fatalf("keyboard markup = %#v", api.messages[2].ReplyMarkup)
	}
	if kb.InlineKeyboard[0][1].CallbackData != letters.ActionNineMonths || kb.InlineKeyboard[1][0].URL != "https://t.me/bezsmenki" {
		t.Errorf("keyboard = %+v", kb.InlineKeyboard)
	}
}

func TestTransportErrorsAreTransportErrors(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{err: errors.New("Forbidden: bot was blocked by the user")}
	tr := NewTransport(api, NewReplyRouter(nil), nil)
	ctx := context.Background()

	if _, err := tr.SendMessage(ctx, 1, "x", nil); !errs.Is(err, errs.CodeTransport) {
		t.Errorf("SendMessage() error = %v", err)
	}
	if err := tr.SendSticker(ctx, 1, "s"); !errs.Is(err, errs.CodeTransport) {
		t.Errorf("SendSticker() error = %v", err)
	}
	if err := tr.DeleteMessage(ctx, 1, 2); !errs.Is(err, errs.CodeTransport) {
		t.Errorf("DeleteMessage() error = %v", err)
	}
}

func TestTransportListeners(t *testing.T) {
	t.Parallel()

	router := NewReplyRouter(nil)
	tr := NewTransport(&fakeAPI{}, router, nil)

	id := tr.OnReplyTo(1, 2, func(context.Context, string, letters.Reply) {})
	if router.Len() != 1 {
		t.Fatalf("router has %d listeners", router.Len())
	}
	if err := tr.RemoveReplyListener(id); err != nil {
		t.Errorf("RemoveReplyListener() error = %v", err)
	}
	if err := tr.RemoveReplyListener(id); err == nil {
		t.Error("second RemoveReplyListener() succeeded")
	}
}

func TestBotCommands(t *testing.T) {
	t.Parallel()

	cmds := BotCommands(config.DefaultCommands)
	want := []string{"start", "newletter", "check", "about"}
	if len(cmds) != len(want) {
		t.Fatalf("got %d commands", len(cmds))
	}
	for i, c := range cmds {
		if c.Command != want[i] || c.Description == "" {
			t.Errorf("command %d = %+v", i, c)
		}
	}
}
