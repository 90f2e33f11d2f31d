package letters

import (
	"context"
	"fmt"
	"strings"

	"github.com/edgard/letterbot/internal/database"
)

// History lists and clears the pending letters of a user.
type History struct {
	Deps
}

// NewHistory creates a History.
func NewHistory(deps Deps) *History {
	return &History{Deps: deps.withDefaults("history")}
}

// List sends the delivery dates of every pending letter of chatID, in store
// order, with a button to clear them all.
func (h *History) List(ctx context.Context, chatID int64) error {
	letters, err := h.Store.FindLettersByUser(ctx, chatID)
	if err != nil {
		return err
	}

	if len(letters) == 0 {
		if _, err := h.Transport.SendMessage(ctx, chatID, h.Messages.NoLetters, nil); err != nil {
			return sendError("failed to send empty history", err)
		}
		return nil
	}

	opts := &SendOptions{Keyboard: [][]Button{
		{{Text: h.Messages.ButtonClearHistory, Data: ActionDeleteAll}},
	}}
	if _, err := h.Transport.SendMessage(ctx, chatID, Render(letters, h.Messages.LetterLine), opts); err != nil {
		return sendError("failed to send history", err)
	}
	return nil
}

// Clear deletes every stored letter of chatID. A draft in progress is left
// alone. Clearing an empty history succeeds.
func (h *History) Clear(ctx context.Context, chatID int64) error {
	n, err := h.Store.DeleteUserLetters(ctx, chatID)
	if err != nil {
		return err
	}
	h.Logger.InfoContext(ctx, "History cleared", "chat_id", chatID, "deleted", n)

	if _, err := h.Transport.SendMessage(ctx, chatID, h.Messages.AllDeleted, nil); err != nil {
		return sendError("failed to send clear acknowledgement", err)
	}
	return nil
}

// Render formats letters as a 1-indexed list using lineFormat, which takes
// the position and the delivery date.
func Render(letters []database.Letter, lineFormat string) string {
	lines := make([]string, 0, len(letters))
	for i, l := range letters {
		lines = append(lines, fmt.Sprintf(lineFormat, i+1, l.Date))
	}
	return strings.Join(lines, "\n")
}
