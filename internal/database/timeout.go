package database

import (
	"context"
	"time"
)

// timeoutStore bounds every call of the wrapped Store.
type timeoutStore struct {
	next    Store
	timeout time.Duration
}

// WithTimeout returns a Store whose operations each run under timeout.
// A non-positive timeout returns store unchanged.
//
//nolint:ireturn // decorator over the Store interface
func WithTimeout(store Store, timeout time.Duration) Store {
	if timeout <= 0 {
		return store
	}
	return &timeoutStore{next: store, timeout: timeout}
}

func (s *timeoutStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.next.Ping(ctx)
}

func (s *timeoutStore) InsertLetter(ctx context.Context, letter *Letter) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.next.InsertLetter(ctx, letter)
}

func (s *timeoutStore) DeleteLetters(ctx context.Context, ids []int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.next.DeleteLetters(ctx, ids)
}

func (s *timeoutStore) DeleteUserLetters(ctx context.Context, chatID int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.next.DeleteUserLetters(ctx, chatID)
}

func (s *timeoutStore) FindLettersByDate(ctx context.Context, date string) ([]Letter, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.next.FindLettersByDate(ctx, date)
}

func (s *timeoutStore) FindLettersByUser(ctx context.Context, chatID int64) ([]Letter, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.next.FindLettersByUser(ctx, chatID)
}

// RunSQLMaintenance is not bounded: VACUUM of a large file may take longer
// than a regular query.
func (s *timeoutStore) RunSQLMaintenance(ctx context.Context) error {
	return s.next.RunSQLMaintenance(ctx)
}
