package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/edgard/letterbot/internal/errs"
)

func newTestStore(t *testing.T) Store {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "letters.db"))
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	t.Cleanup(func() { CloseDB(db) })

	return NewStore(db, nil)
}

func mustInsert(t *testing.T, s Store, chatID int64, text, date string) Letter {
	t.Helper()

	l := &Letter{ChatID: chatID, Text: text, Date: date}
	if err := s.InsertLetter(context.Background(), l); err != nil {
		t.Fatalf("InsertLetter() error = %v", err)
	}
	if l.ID == 0 {
		t.Fatal("InsertLetter() did not set an ID")
	}
	return *l
}

func TestInsertLetterValidation(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		letter *Letter
	}{
		{name: "nil letter", letter: nil},
		{name: "zero chat", letter: &Letter{Text: "hi", Date: "15/10/2024"}},
		{name: "empty text", letter: &Letter{ChatID: 1, Text: "", Date: "15/10/2024"}},
		{name: "missing date", letter: &Letter{ChatID: 1, Text: "hi"}},
		{name: "wrong layout", letter: &Letter{ChatID: 1, Text: "hi", Date: "2024-10-15"}},
	}

	for _, tt := range tests {
		if err := s.InsertLetter(ctx, tt.letter); !errs.Is(err, errs.CodeValidation) {
			t.Errorf("%s: InsertLetter() error = %v, want validation error", tt.name, err)
		}
	}

	letters, err := s.FindLettersByUser(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(letters) != 0 {
		t.Errorf("invalid letters were persisted: %+v", letters)
	}
}

func TestInsertLetterKeepsTextVerbatim(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	for _, text := range []string{" ", "  line one\n\tline two  "} {
		l := mustInsert(t, s, 2, text, "15/10/2024")
		got, err := s.FindLettersByUser(context.Background(), 2)
		if err != nil {
			t.Fatal(err)
		}
		if last := got[len(got)-1]; last.ID != l.ID || last.Text != text {
			t.Errorf("stored %+v, want text %q", last, text)
		}
	}
}

func TestFindLettersByDate(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	a := mustInsert(t, s, 1, "for today", "15/10/2024")
	b := mustInsert(t, s, 2, "also today", "15/10/2024")
	mustInsert(t, s, 1, "tomorrow", "16/10/2024")

	got, err := s.FindLettersByDate(ctx, "15/10/2024")
	if err != nil {
		t.Fatalf("FindLettersByDate() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != a.ID || got[1].ID != b.ID {
		t.Fatalf("FindLettersByDate() = %+v, want letters %d and %d", got, a.ID, b.ID)
	}
	if got[0].Text != "for today" || got[0].ChatID != 1 {
		t.Errorf("unexpected letter: %+v", got[0])
	}
}

func TestDeleteLettersLeavesOthers(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	a := mustInsert(t, s, 1, "a", "15/10/2024")
	b := mustInsert(t, s, 2, "b", "15/10/2024")
	c := mustInsert(t, s, 1, "c", "16/10/2024")

	n, err := s.DeleteLetters(ctx, []int64{a.ID, b.ID})
	if err != nil {
		t.Fatalf("DeleteLetters() error = %v", err)
	}
	if n != 2 {
		t.Errorf("DeleteLetters() affected = %d, want 2", n)
	}

	due, _ := s.FindLettersByDate(ctx, "15/10/2024")
	if len(due) != 0 {
		t.Errorf("letters for deleted date remain: %+v", due)
	}
	rest, _ := s.FindLettersByUser(ctx, 1)
	if len(rest) != 1 || rest[0].ID != c.ID {
		t.Errorf("FindLettersByUser() = %+v, want only letter %d", rest, c.ID)
	}

	if n, err := s.DeleteLetters(ctx, nil); err != nil || n != 0 {
		t.Errorf("DeleteLetters(nil) = %d, %v", n, err)
	}
}

func TestDeleteUserLetters(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	mustInsert(t, s, 1, "a", "15/10/2024")
	mustInsert(t, s, 1, "b", "15/04/2025")
	other := mustInsert(t, s, 2, "c", "15/10/2024")

	n, err := s.DeleteUserLetters(ctx, 1)
	if err != nil {
		t.Fatalf("DeleteUserLetters() error = %v", err)
	}
	if n != 2 {
		t.Errorf("DeleteUserLetters() = %d, want 2", n)
	}

	// Idempotent
	if n, err := s.DeleteUserLetters(ctx, 1); err != nil || n != 0 {
		t.Errorf("second DeleteUserLetters() = %d, %v", n, err)
	}

	mine, _ := s.FindLettersByUser(ctx, 1)
	if len(mine) != 0 {
		t.Errorf("letters remain for cleared user: %+v", mine)
	}
	theirs, _ := s.FindLettersByUser(ctx, 2)
	if len(theirs) != 1 || theirs[0].ID != other.ID {
		t.Errorf("other user's letters changed: %+v", theirs)
	}
}

func TestRunSQLMaintenance(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	if err := s.RunSQLMaintenance(context.Background()); err != nil {
		t.Errorf("RunSQLMaintenance() error = %v", err)
	}
}

func TestExtractDBNameFromPath(t *testing.T) {
	t.Parallel()

	tests := []struct{ in, want string }{
		{"letters.db", "letters.db"},
		{"file:letters.db", "letters.db"},
		{"file:letters.db?_pragma=busy_timeout(5000)", "letters.db"},
		{"file:/var/lib/my%20bot/letters.db?mode=rwc", "/var/lib/my bot/letters.db"},
	}
	for _, tt := range tests {
		if got := ExtractDBNameFromPath(tt.in); got != tt.want {
			t.Errorf("ExtractDBNameFromPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
