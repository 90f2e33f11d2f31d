// Package drafts keeps the transient, per-chat state of letters that are
// being composed right now. Nothing here is persisted.
package drafts

import (
	"errors"
	"slices"
	"sync"
)

var (
	// ErrNoDraft is returned when an operation needs a draft that does not exist.
	ErrNoDraft = errors.New("no active draft")
	// ErrNoText is returned when a date is set on a draft that has no text yet.
	ErrNoText = errors.New("draft has no text")
)

// Draft is a letter under composition. Values are treated as immutable:
// the tracker never hands out a record it will later mutate.
type Draft struct {
	ChatID          int64
	Text            string
	Date            string // empty until a delay is chosen
	ReplyMessageIDs []int
	PromptMessageID int
	ListenerID      string
	// Seq identifies the Begin call that created the draft.
	Seq uint64
}

// HasText reports whether the draft carries letter text.
func (d Draft) HasText() bool {
	return d.Text != ""
}

// Complete reports whether the draft can be committed as a letter.
func (d Draft) Complete() bool {
	return d.Text != "" && d.Date != ""
}

func (d Draft) clone() Draft {
	d.ReplyMessageIDs = append([]int(nil), d.ReplyMessageIDs...)
	return d
}

// Tracker holds at most one draft per chat. Every change replaces the whole
// record under the lock, so concurrent handlers never observe a half-updated
// draft.
type Tracker struct {
	mu     sync.Mutex
	seq    uint64
	drafts map[int64]Draft
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{drafts: make(map[int64]Draft)}
}

// Begin starts a fresh draft for chatID. An existing draft is discarded and
// returned as previous so the caller can release what it holds.
func (t *Tracker) Begin(chatID int64) (fresh Draft, previous Draft, replaced bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	previous, replaced = t.drafts[chatID]
	t.seq++
	fresh = Draft{ChatID: chatID, Seq: t.seq}
	t.drafts[chatID] = fresh
	return fresh.clone(), previous, replaced
}

// Get returns the current draft for chatID.
func (t *Tracker) Get(chatID int64) (Draft, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	d, ok := t.drafts[chatID]
	if !ok {
		return Draft{}, false
	}
	return d.clone(), true
}

// Arm records the prompt message and the reply listener waiting on it. It
// only arms the draft begun under seq, and only once.
func (t *Tracker) Arm(chatID int64, seq uint64, promptMessageID int, listenerID string) bool {
	return t.update(chatID, func(d Draft) (Draft, bool) {
		if d.Seq != seq || d.PromptMessageID != 0 {
			return d, false
		}
		d.PromptMessageID = promptMessageID
		d.ListenerID = listenerID
		d.ReplyMessageIDs = append(d.ReplyMessageIDs, promptMessageID)
		return d, true
	})
}

// SetText stores the letter text together with the id of the message that
// carried it and disarms listenerID. It succeeds once per draft, and only
// while listenerID is the armed listener; it is a no-op otherwise.
func (t *Tracker) SetText(chatID int64, listenerID, text string, messageID int) bool {
	return t.update(chatID, func(d Draft) (Draft, bool) {
		if d.HasText() || d.ListenerID != listenerID {
			return d, false
		}
		d.Text = text
		d.ListenerID = ""
		d.ReplyMessageIDs = append(d.ReplyMessageIDs, messageID)
		return d, true
	})
}

// SetDate sets the delivery day key. The draft must already carry text.
func (t *Tracker) SetDate(chatID int64, date string) error {
	var err error
	ok := t.update(chatID, func(d Draft) (Draft, bool) {
		if !d.HasText() {
			err = ErrNoText
			return d, false
		}
		d.Date = date
		return d, true
	})
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoDraft
	}
	return nil
}

// Cancel removes the draft for chatID, if any.
func (t *Tracker) Cancel(chatID int64) (Draft, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	d, ok := t.drafts[chatID]
	if ok {
		delete(t.drafts, chatID)
	}
	return d, ok
}

// TakeCompleted removes and returns the draft for chatID, but only once it
// has both text and a date.
func (t *Tracker) TakeCompleted(chatID int64) (Draft, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	d, ok := t.drafts[chatID]
	if !ok || !d.Complete() {
		return Draft{}, false
	}
	delete(t.drafts, chatID)
	return d, true
}

// Commit dates the draft of chatID, records buttonMessageID for cleanup and
// takes the draft out of the tracker in one step. It fails without a draft
// carrying text, so of two overlapping calls only the first gets the draft.
func (t *Tracker) Commit(chatID int64, date string, buttonMessageID int) (Draft, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	d, ok := t.drafts[chatID]
	if !ok || !d.HasText() {
		return Draft{}, false
	}
	d = d.clone()
	if buttonMessageID != 0 && !slices.Contains(d.ReplyMessageIDs, buttonMessageID) {
		d.ReplyMessageIDs = append(d.ReplyMessageIDs, buttonMessageID)
	}
	d.Date = date
	delete(t.drafts, chatID)
	return d, true
}

// Drop removes the draft of chatID only if it was begun under seq.
func (t *Tracker) Drop(chatID int64, seq uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	d, ok := t.drafts[chatID]
	if !ok || d.Seq != seq {
		return false
	}
	delete(t.drafts, chatID)
	return true
}

// Restore puts a taken draft back with its date cleared. A draft begun for
// the same chat in the meantime wins and Restore reports false.
func (t *Tracker) Restore(d Draft) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.drafts[d.ChatID]; exists {
		return false
	}
	d = d.clone()
	d.Date = ""
	t.drafts[d.ChatID] = d
	return true
}

// Len returns the number of active drafts.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.drafts)
}

func (t *Tracker) update(chatID int64, fn func(Draft) (Draft, bool)) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	d, ok := t.drafts[chatID]
	if !ok {
		return false
	}
	next, keep := fn(d.clone())
	if !keep {
		return false
	}
	t.drafts[chatID] = next
	return true
}
