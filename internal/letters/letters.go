// Package letters holds the core of letterbot: composing a letter through a
// short conversation, listing and clearing pending letters, and the daily
// delivery sweep. It talks to the outside world only through Transport and
// Store.
package letters

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/edgard/letterbot/internal/config"
	"github.com/edgard/letterbot/internal/database"
	"github.com/edgard/letterbot/internal/errs"
)

// Button actions carried as callback data.
const (
	ActionNewLetter  = "/newletter"
	ActionCheck      = "/check"
	ActionCancel     = "/cancel"
	ActionSixMonths  = "/sixMonths"
	ActionNineMonths = "/nineMonths"
	ActionYear       = "/year"
	ActionDeleteAll  = "/deleteall"
)

var (
	// ErrNoDraft is returned for events that refer to a draft which no longer
	// exists, such as a second press on a delay button. Callers ignore it.
	ErrNoDraft = errs.NewStaleError("no active draft")
	// ErrTextRequired is returned when a reply to the prompt carries no text.
	ErrTextRequired = errs.NewInputError("letter must be text")
	// ErrInvalidDelay is returned for a delay other than 6, 9 or 12 months.
	ErrInvalidDelay = errs.NewValidationError("delay must be 6, 9 or 12 months", nil)
)

// Button is an inline keyboard button. Exactly one of Data or URL is set.
type Button struct {
	Text string
	Data string
	URL  string
}

// SendOptions controls how an outgoing message is presented.
type SendOptions struct {
	ForceReply bool
	Keyboard   [][]Button
}

// Reply is a user message sent in reply to one of the bot's prompts.
type Reply struct {
	MessageID int
	Text      string
}

// ReplyHandler is invoked when a reply arrives for an armed listener.
type ReplyHandler func(ctx context.Context, listenerID string, reply Reply)

// Transport is the chat side of the bot.
type Transport interface {
	SendMessage(ctx context.Context, chatID int64, text string, opts *SendOptions) (int, error)
	SendSticker(ctx context.Context, chatID int64, stickerID string) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	// OnReplyTo arms a listener for replies to messageID in chatID and
	// returns its id.
	OnReplyTo(chatID int64, messageID int, h ReplyHandler) string
	RemoveReplyListener(id string) error
}

// Store is the subset of database.Store the letters core needs.
type Store interface {
	InsertLetter(ctx context.Context, letter *database.Letter) error
	DeleteLetters(ctx context.Context, ids []int64) (int64, error)
	DeleteUserLetters(ctx context.Context, chatID int64) (int64, error)
	FindLettersByDate(ctx context.Context, date string) ([]database.Letter, error)
	FindLettersByUser(ctx context.Context, chatID int64) ([]database.Letter, error)
}

// Deps holds the dependencies shared by Composer, History and Deliverer.
type Deps struct {
	Logger    *slog.Logger
	Store     Store
	Transport Transport
	Messages  config.MessagesConfig
	// Location is the time zone day keys are computed in.
	Location *time.Location
	// Now defaults to time.Now.
	Now func() time.Time
}

func (d Deps) withDefaults(component string) Deps {
	if d.Logger == nil {
		d.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	d.Logger = d.Logger.With("component", component)
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// sendError wraps a transport failure unless it already carries a code.
func sendError(msg string, err error) error {
	var appErr errs.ApplicationError
	if errors.As(err, &appErr) {
		return err
	}
	return errs.NewTransportError(msg, err)
}
