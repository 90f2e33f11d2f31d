package letters

import (
	"context"
	"testing"
	"time"

	"github.com/edgard/letterbot/internal/config"
	"github.com/edgard/letterbot/internal/database"
)

func TestRender(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		letters []database.Letter
		want    string
	}{
		{name: "empty", letters: nil, want: ""},
		{name: "one", letters: []database.Letter{{Date: "15/10/2024"}}, want: "1 - Будет доставлено: 15/10/2024"},
		{
			name:    "store order kept",
			letters: []database.Letter{{Date: "01/03/2025"}, {Date: "15/10/2024"}},
			want:    "1 - Будет доставлено: 01/03/2025\n2 - Будет доставлено: 15/10/2024",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Render(tt.letters, config.DefaultMessages.LetterLine); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHistoryList(t *testing.T) {
	t.Parallel()

	f := newFixture(t, time.Now())
	ctx := context.Background()

	if err := f.history.List(ctx, chatID); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if got := f.transport.lastSent(chatID); got.Text != config.DefaultMessages.NoLetters || got.Opts != nil {
		t.Errorf("empty history sent %+v", got)
	}

	for _, l := range []database.Letter{
		{ChatID: chatID, Text: "a", Date: "15/10/2024"},
		{ChatID: 7, Text: "b", Date: "16/10/2024"},
		{ChatID: chatID, Text: "c", Date: "01/01/2025"},
	} {
		if err := f.store.InsertLetter(ctx, &l); err != nil {
			t.Fatalf("InsertLetter() error = %v", err)
		}
	}

	if err := f.history.List(ctx, chatID); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	got := f.transport.lastSent(chatID)
	if got.Text != "1 - Будет доставлено: 15/10/2024\n2 - Будет доставлено: 01/01/2025" {
		t.Errorf("history = %q", got.Text)
	}
	if got.Opts == nil || got.Opts.Keyboard[0][0].Data != ActionDeleteAll {
		t.Errorf("history keyboard = %+v", got.Opts)
	}
}

func TestHistoryClear(t *testing.T) {
	t.Parallel()

	f := newFixture(t, time.Now())
	ctx := context.Background()

	for _, l := range []database.Letter{
		{ChatID: chatID, Text: "mine", Date: "15/10/2024"},
		{ChatID: chatID, Text: "mine too", Date: "16/10/2024"},
		{ChatID: 7, Text: "theirs", Date: "15/10/2024"},
	} {
		if err := f.store.InsertLetter(ctx, &l); err != nil {
			t.Fatalf("InsertLetter() error = %v", err)
		}
	}

	// A draft in progress survives the clear.
	startLetter(t, f, chatID)

	for range 2 {
		if err := f.history.Clear(ctx, chatID); err != nil {
			t.Fatalf("Clear() error = %v", err)
		}
		if got := f.transport.lastSent(chatID).Text; got != config.DefaultMessages.AllDeleted {
			t.Errorf("acknowledgement = %q", got)
		}
	}

	left := f.store.all()
	if len(left) != 1 || left[0].ChatID != 7 {
		t.Errorf("letters left = %+v, want only chat 7", left)
	}
	if _, ok := f.tracker.Get(chatID); !ok {
		t.Error("draft dropped by clear")
	}
}
