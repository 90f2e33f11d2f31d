package letters

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/edgard/letterbot/internal/config"
	"github.com/edgard/letterbot/internal/database"
	"github.com/edgard/letterbot/internal/drafts"
	"github.com/edgard/letterbot/internal/errs"
)

var errSendFailed = errors.New("send failed")

type sentMessage struct {
	ChatID int64
	ID     int
	Text   string
	Opts   *SendOptions
}

type listener struct {
	chatID    int64
	messageID int
	handler   ReplyHandler
}

// fakeTransport records every call and lets tests deliver replies.
type fakeTransport struct {
	mu        sync.Mutex
	nextID    int
	sent      []sentMessage
	stickers  []string
	deleted   []int
	listeners map[string]listener
	failChats map[int64]bool
	removed   []string

	// Hooks run before a call is recorded. Set them before the calls start.
	sendHook   func(text string)
	removeHook func(id string)
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		nextID:    100,
		listeners: make(map[string]listener),
		failChats: make(map[int64]bool),
	}
}

func (f *fakeTransport) SendMessage(_ context.Context, chatID int64, text string, opts *SendOptions) (int, error) {
	if f.sendHook != nil {
		f.sendHook(text)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failChats[chatID] {
		return 0, errSendFailed
	}
	f.nextID++
	f.sent = append(f.sent, sentMessage{ChatID: chatID, ID: f.nextID, Text: text, Opts: opts})
	return f.nextID, nil
}

func (f *fakeTransport) SendSticker(_ context.Context, _ int64, stickerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stickers = append(f.stickers, stickerID)
	return nil
}

func (f *fakeTransport) DeleteMessage(_ context.Context, _ int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeTransport) OnReplyTo(chatID int64, messageID int, h ReplyHandler) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := fmt.Sprintf("listener-%d-%d", chatID, messageID)
	f.listeners[id] = listener{chatID: chatID, messageID: messageID, handler: h}
	return id
}

func (f *fakeTransport) RemoveReplyListener(id string) error {
	if f.removeHook != nil {
		f.removeHook(id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, id)
	if _, ok := f.listeners[id]; !ok {
		return errors.New("listener not found")
	}
	delete(f.listeners, id)
	return nil
}

// reply delivers a reply to the prompt messageID in chatID, if armed.
func (f *fakeTransport) reply(chatID int64, promptID int, reply Reply) bool {
	f.mu.Lock()
	var (
		id string
		h  ReplyHandler
	)
	for lid, l := range f.listeners {
		if l.chatID == chatID && l.messageID == promptID {
			id, h = lid, l.handler
		}
	}
	f.mu.Unlock()

	if h == nil {
		return false
	}
	h(context.Background(), id, reply)
	return true
}

func (f *fakeTransport) lastSent(chatID int64) sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if f.sent[i].ChatID == chatID {
			return f.sent[i]
		}
	}
	return sentMessage{}
}

func (f *fakeTransport) textsTo(chatID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, m := range f.sent {
		if m.ChatID == chatID {
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeTransport) countSent(chatID int64, text string) int {
	n := 0
	for _, got := range f.textsTo(chatID) {
		if got == text {
			n++
		}
	}
	return n
}

func (f *fakeTransport) deletedIDs() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.deleted)
}

func (f *fakeTransport) armed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

// fakeStore is an in-memory Store. Every mutating call is counted.
type fakeStore struct {
	mu        sync.Mutex
	nextID    int64
	letters   []database.Letter
	mutations int
	insertErr error
	findErr   error

	insertHook func()
}

func (s *fakeStore) InsertLetter(_ context.Context, l *database.Letter) error {
	if s.insertHook != nil {
		s.insertHook()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mutations++
	if s.insertErr != nil {
		return s.insertErr
	}
	s.nextID++
	l.ID = s.nextID
	s.letters = append(s.letters, *l)
	return nil
}

func (s *fakeStore) DeleteLetters(_ context.Context, ids []int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mutations++
	before := len(s.letters)
	s.letters = slices.DeleteFunc(s.letters, func(l database.Letter) bool {
		return slices.Contains(ids, l.ID)
	})
	return int64(before - len(s.letters)), nil
}

func (s *fakeStore) DeleteUserLetters(_ context.Context, chatID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mutations++
	before := len(s.letters)
	s.letters = slices.DeleteFunc(s.letters, func(l database.Letter) bool {
		return l.ChatID == chatID
	})
	return int64(before - len(s.letters)), nil
}

func (s *fakeStore) FindLettersByDate(_ context.Context, date string) ([]database.Letter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	var out []database.Letter
	for _, l := range s.letters {
		if l.Date == date {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *fakeStore) FindLettersByUser(_ context.Context, chatID int64) ([]database.Letter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []database.Letter
	for _, l := range s.letters {
		if l.ChatID == chatID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *fakeStore) all() []database.Letter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.letters)
}

func (s *fakeStore) mutationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutations
}

// gate holds the first caller of wait until open is called. Later callers
// pass straight through.
type gate struct {
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gate) wait() {
	first := false
	g.once.Do(func() { first = true })
	if !first {
		return
	}
	close(g.entered)
	<-g.release
}

func (g *gate) open() {
	close(g.release)
}

var errStoreDown = errs.NewStoreError("failed to insert letter", errors.New("database is locked"))

func moscow(t testing.TB) *time.Location {
	t.Helper()

	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}
	return loc
}

type fixture struct {
	transport *fakeTransport
	store     *fakeStore
	tracker   *drafts.Tracker
	composer  *Composer
	history   *History
	deliverer *Deliverer
}

func newFixture(t testing.TB, now time.Time) *fixture {
	t.Helper()

	f := &fixture{
		transport: newFakeTransport(),
		store:     &fakeStore{},
		tracker:   drafts.NewTracker(),
	}
	deps := Deps{
		Store:     f.store,
		Transport: f.transport,
		Messages:  config.DefaultMessages,
		Location:  moscow(t),
		Now:       func() time.Time { return now },
	}
	f.composer = NewComposer(deps, f.tracker, "sticker-id")
	f.history = NewHistory(deps)
	f.deliverer = NewDeliverer(deps, 2)
	return f
}
