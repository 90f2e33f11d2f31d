package telegram

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"

	"github.com/edgard/letterbot/internal/letters"
)

// ErrListenerNotFound is returned when removing a listener that is not armed.
var ErrListenerNotFound = errors.New("reply listener not found")

type replyKey struct {
	chatID    int64
	messageID int
}

type replyListener struct {
	key     replyKey
	handler letters.ReplyHandler
}

// ReplyRouter dispatches replies to the bot's own messages. Listeners are
// keyed by chat and message id, so two users composing at once never see
// each other's replies. A listener stays armed until it is removed.
type ReplyRouter struct {
	mu        sync.Mutex
	byKey     map[replyKey]string
	listeners map[string]replyListener
	logger    *slog.Logger
}

// NewReplyRouter creates an empty router.
func NewReplyRouter(logger *slog.Logger) *ReplyRouter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReplyRouter{
		byKey:     make(map[replyKey]string),
		listeners: make(map[string]replyListener),
		logger:    logger.With("component", "reply_router"),
	}
}

// Listen arms h for replies to messageID in chatID and returns the listener
// id. A listener already armed on the same message is replaced.
func (r *ReplyRouter) Listen(chatID int64, messageID int, h letters.ReplyHandler) string {
	key := replyKey{chatID: chatID, messageID: messageID}
	id := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byKey[key]; ok {
		delete(r.listeners, old)
	}
	r.byKey[key] = id
	r.listeners[id] = replyListener{key: key, handler: h}
	return id
}

// Remove disarms the listener with the given id.
func (r *ReplyRouter) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.listeners[id]
	if !ok {
		return ErrListenerNotFound
	}
	delete(r.listeners, id)
	if r.byKey[l.key] == id {
		delete(r.byKey, l.key)
	}
	return nil
}

// Len returns the number of armed listeners.
func (r *ReplyRouter) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.listeners)
}

// Handle is a go-telegram/bot handler. Messages that reply to an armed
// message are passed to its listener; everything else is ignored.
func (r *ReplyRouter) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.ReplyToMessage == nil {
		return
	}

	key := replyKey{chatID: msg.Chat.ID, messageID: msg.ReplyToMessage.ID}

	r.mu.Lock()
	id, ok := r.byKey[key]
	l := r.listeners[id]
	r.mu.Unlock()

	if !ok {
		r.logger.DebugContext(ctx, "Reply to a message nobody listens to", "chat_id", key.chatID, "reply_to", key.messageID)
		return
	}

	l.handler(ctx, id, letters.Reply{MessageID: msg.ID, Text: msg.Text})
}
