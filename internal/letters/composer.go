package letters

import (
	"context"
	"errors"
	"strings"

	"github.com/edgard/letterbot/internal/database"
	"github.com/edgard/letterbot/internal/drafts"
	"github.com/edgard/letterbot/internal/errs"
	"github.com/edgard/letterbot/internal/metrics"
)

// Composer drives a letter from the first prompt to the stored record:
// Idle, AwaitingText, AwaitingDelay, then Committed or Cancelled.
type Composer struct {
	Deps
	drafts    *drafts.Tracker
	stickerID string
}

// NewComposer creates a Composer. stickerID may be empty to skip the
// greeting sticker.
func NewComposer(deps Deps, tracker *drafts.Tracker, stickerID string) *Composer {
	return &Composer{
		Deps:      deps.withDefaults("composer"),
		drafts:    tracker,
		stickerID: stickerID,
	}
}

// Greet answers /start. Any draft in progress is dropped without a notice.
func (c *Composer) Greet(ctx context.Context, chatID int64, name string) error {
	if previous, ok := c.drafts.Cancel(chatID); ok {
		c.removeListener(previous.ListenerID)
		c.observeDrafts()
	}

	if c.stickerID != "" {
		if err := c.Transport.SendSticker(ctx, chatID, c.stickerID); err != nil {
			c.Logger.WarnContext(ctx, "Failed to send greeting sticker", "error", err, "chat_id", chatID)
		}
	}

	text := strings.ReplaceAll(c.Messages.Greeting, "{name}", name)
	opts := &SendOptions{Keyboard: [][]Button{
		{{Text: c.Messages.ButtonWriteLetter, Data: ActionNewLetter}},
		{{Text: c.Messages.ButtonCheckLetters, Data: ActionCheck}},
	}}
	if _, err := c.Transport.SendMessage(ctx, chatID, text, opts); err != nil {
		return sendError("failed to send greeting", err)
	}
	return nil
}

// NewLetter starts a draft for chatID, replacing any draft in progress, and
// asks for the letter text in reply to a force-reply prompt.
func (c *Composer) NewLetter(ctx context.Context, chatID int64) error {
	fresh, previous, replaced := c.drafts.Begin(chatID)
	if replaced {
		c.removeListener(previous.ListenerID)
		c.Logger.DebugContext(ctx, "Replaced draft in progress", "chat_id", chatID)
	}
	defer c.observeDrafts()

	promptID, err := c.Transport.SendMessage(ctx, chatID, c.Messages.WritePrompt, &SendOptions{ForceReply: true})
	if err != nil {
		c.drafts.Drop(chatID, fresh.Seq)
		return sendError("failed to send letter prompt", err)
	}

	listenerID := c.Transport.OnReplyTo(chatID, promptID, func(ctx context.Context, listenerID string, reply Reply) {
		if err := c.HandleReply(ctx, chatID, listenerID, reply); err != nil {
			c.logFlowError(ctx, "Letter reply not accepted", err, chatID)
		}
	})

	if !c.drafts.Arm(chatID, fresh.Seq, promptID, listenerID) {
		// The draft was cancelled or replaced while the prompt was in flight.
		c.removeListener(listenerID)
		if err := c.Transport.DeleteMessage(ctx, chatID, promptID); err != nil {
			c.Logger.DebugContext(ctx, "Failed to delete stale prompt", "error", err, "chat_id", chatID, "message_id", promptID)
		}
		return ErrNoDraft
	}

	c.Logger.DebugContext(ctx, "Awaiting letter text", "chat_id", chatID, "prompt_id", promptID)
	return nil
}

// HandleReply accepts the text of a letter. A reply without text is
// rejected and the listener stays armed so the user can try again. Only one
// reply per prompt is ever accepted.
func (c *Composer) HandleReply(ctx context.Context, chatID int64, listenerID string, reply Reply) error {
	draft, ok := c.drafts.Get(chatID)
	if !ok || draft.ListenerID != listenerID {
		c.removeListener(listenerID)
		return ErrNoDraft
	}

	if reply.Text == "" {
		if _, err := c.Transport.SendMessage(ctx, chatID, c.Messages.TextOnly, nil); err != nil {
			c.Logger.WarnContext(ctx, "Failed to send text-only notice", "error", err, "chat_id", chatID)
		}
		return ErrTextRequired
	}

	if !c.drafts.SetText(chatID, listenerID, reply.Text, reply.MessageID) {
		return ErrNoDraft
	}
	c.removeListener(listenerID)

	opts := &SendOptions{Keyboard: [][]Button{
		{
			{Text: c.Messages.ButtonSixMonths, Data: ActionSixMonths},
			{Text: c.Messages.ButtonNineMonths, Data: ActionNineMonths},
		},
		{
			{Text: c.Messages.ButtonYear, Data: ActionYear},
			{Text: c.Messages.ButtonCancel, Data: ActionCancel},
		},
	}}
	if _, err := c.Transport.SendMessage(ctx, chatID, c.Messages.ChooseDelay, opts); err != nil {
		return sendError("failed to send delay keyboard", err)
	}
	return nil
}

// ChooseDelay commits the draft of chatID as a letter due months from now.
// buttonMessageID is the message holding the delay keyboard; it is removed
// together with the rest of the conversation once the letter is stored.
func (c *Composer) ChooseDelay(ctx context.Context, chatID int64, months int, buttonMessageID int) error {
	confirmation, ok := c.confirmation(months)
	if !ok {
		return ErrInvalidDelay
	}

	// Taking the draft before the insert makes a second press a no-op.
	draft, ok := c.drafts.Commit(chatID, DueDate(c.Now(), months, c.Location), buttonMessageID)
	if !ok {
		return ErrNoDraft
	}
	defer c.observeDrafts()

	letter := &database.Letter{ChatID: chatID, Text: draft.Text, Date: draft.Date}
	if err := c.Store.InsertLetter(ctx, letter); err != nil {
		metrics.CommitFailures.Inc()
		if !c.drafts.Restore(draft) {
			c.Logger.DebugContext(ctx, "Newer draft exists, not restoring", "chat_id", chatID)
		}
		if _, sendErr := c.Transport.SendMessage(ctx, chatID, c.Messages.SaveFailed, nil); sendErr != nil {
			c.Logger.WarnContext(ctx, "Failed to send save failure notice", "error", sendErr, "chat_id", chatID)
		}
		return err
	}

	metrics.LettersCommitted.Inc()
	c.Logger.InfoContext(ctx, "Letter stored", "chat_id", chatID, "letter_id", letter.ID, "delivery_date", letter.Date)

	for _, id := range draft.ReplyMessageIDs {
		if err := c.Transport.DeleteMessage(ctx, chatID, id); err != nil {
			c.Logger.DebugContext(ctx, "Failed to delete conversation message", "error", err, "chat_id", chatID, "message_id", id)
		}
	}

	if _, err := c.Transport.SendMessage(ctx, chatID, confirmation, nil); err != nil {
		return sendError("failed to send confirmation", err)
	}
	return nil
}

// Cancel drops the draft of chatID and acknowledges it. Stored letters are
// never touched.
func (c *Composer) Cancel(ctx context.Context, chatID int64) error {
	draft, ok := c.drafts.Cancel(chatID)
	if !ok {
		return ErrNoDraft
	}
	c.removeListener(draft.ListenerID)
	c.observeDrafts()
	metrics.DraftsCancelled.Inc()

	if _, err := c.Transport.SendMessage(ctx, chatID, c.Messages.Cancelled, nil); err != nil {
		return sendError("failed to send cancel acknowledgement", err)
	}
	return nil
}

func (c *Composer) observeDrafts() {
	metrics.ActiveDrafts.Set(float64(c.drafts.Len()))
}

// ActiveDrafts returns the number of drafts in progress.
func (c *Composer) ActiveDrafts() int {
	return c.drafts.Len()
}

func (c *Composer) confirmation(months int) (string, bool) {
	switch months {
	case 6:
		return c.Messages.SavedSix, true
	case 9:
		return c.Messages.SavedNine, true
	case 12:
		return c.Messages.SavedYear, true
	default:
		return "", false
	}
}

// removeListener disarms a reply listener. Removing one that already fired
// or was never armed is fine.
func (c *Composer) removeListener(id string) {
	if id == "" {
		return
	}
	if err := c.Transport.RemoveReplyListener(id); err != nil {
		c.Logger.Debug("Reply listener already gone", "listener_id", id, "error", err)
	}
}

func (c *Composer) logFlowError(ctx context.Context, msg string, err error, chatID int64) {
	switch {
	case errors.Is(err, ErrNoDraft), errors.Is(err, ErrTextRequired):
		c.Logger.DebugContext(ctx, msg, "reason", err, "chat_id", chatID)
	case errs.Is(err, errs.CodeStore):
		c.Logger.ErrorContext(ctx, msg, "error", err, "chat_id", chatID)
	default:
		c.Logger.WarnContext(ctx, msg, "error", err, "chat_id", chatID)
	}
}
