package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/edgard/letterbot/internal/errs"
)

// Store defines the letter persistence operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// InsertLetter persists a letter and sets its generated ID.
	InsertLetter(ctx context.Context, letter *Letter) error

	// DeleteLetters deletes the letters with the given IDs in one statement.
	DeleteLetters(ctx context.Context, ids []int64) (int64, error)

	// DeleteUserLetters deletes every letter belonging to chatID.
	DeleteUserLetters(ctx context.Context, chatID int64) (int64, error)

	// FindLettersByDate returns the letters scheduled for the given day key.
	FindLettersByDate(ctx context.Context, date string) ([]Letter, error)

	// FindLettersByUser returns every pending letter of chatID in store order.
	FindLettersByUser(ctx context.Context, chatID int64) ([]Letter, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store backed by sqlx.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// InsertLetter validates and inserts a letter. A letter without text, owner
// or a parseable delivery day is never written.
func (s *sqlxStore) InsertLetter(ctx context.Context, letter *Letter) error {
	if letter == nil {
		return errs.NewValidationError("cannot save nil letter", nil)
	}
	if letter.ChatID == 0 {
		return errs.NewValidationError("letter must have a non-zero chat_id", nil)
	}
	if letter.Text == "" {
		return errs.NewValidationError("letter must have non-empty text", nil)
	}
	if _, err := time.Parse(DayLayout, letter.Date); err != nil {
		return errs.NewValidationError(fmt.Sprintf("letter has invalid delivery date %q", letter.Date), err)
	}

	if letter.CreatedAt.IsZero() {
		letter.CreatedAt = time.Now().UTC()
	}

	query := `
        INSERT INTO letters (chat_id, text, delivery_date, created_at)
        VALUES (:chat_id, :text, :delivery_date, :created_at);
    `

	result, err := s.db.NamedExecContext(ctx, query, letter)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving letter", "chat_id", letter.ChatID, "error", err)
		return errs.NewStoreError(fmt.Sprintf("failed to save letter for chat %d", letter.ChatID), err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		s.logger.WarnContext(ctx, "Could not retrieve last insert ID after saving letter",
			"chat_id", letter.ChatID, "error", err)
	} else {
		letter.ID = id
	}

	s.logger.DebugContext(ctx, "Letter saved", "chat_id", letter.ChatID, "letter_id", letter.ID, "date", letter.Date)
	return nil
}

// DeleteLetters removes the given letters inside a transaction.
func (s *sqlxStore) DeleteLetters(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for deleting letters", "error", err)
		return 0, errs.NewStoreError("failed to begin transaction", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
			}
		}
	}()

	query, args, err := sqlx.In(`DELETE FROM letters WHERE id IN (?)`, ids)
	if err != nil {
		return 0, errs.NewStoreError("failed to build delete query", err)
	}

	result, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error deleting letters", "count", len(ids), "error", err)
		return 0, errs.NewStoreError("failed to delete letters", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		s.logger.WarnContext(ctx, "Could not get affected row count", "error", err)
	} else if int(affected) != len(ids) {
		s.logger.WarnContext(ctx, "Not all letters were deleted", "requested", len(ids), "affected", affected)
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit transaction", "error", err)
		return 0, errs.NewStoreError("failed to commit transaction", err)
	}
	tx = nil

	s.logger.DebugContext(ctx, "Deleted letters", "requested", len(ids), "affected", affected)
	return affected, nil
}

// DeleteUserLetters removes every letter of chatID. Deleting nothing is not an error.
func (s *sqlxStore) DeleteUserLetters(ctx context.Context, chatID int64) (int64, error) {
	if chatID == 0 {
		return 0, errs.NewValidationError("chat_id cannot be zero", nil)
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM letters WHERE chat_id = ?`, chatID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error deleting user letters", "chat_id", chatID, "error", err)
		return 0, errs.NewStoreError(fmt.Sprintf("failed to delete letters for chat %d", chatID), err)
	}

	count, _ := result.RowsAffected()
	s.logger.InfoContext(ctx, "Deleted user letters", "chat_id", chatID, "count", count)
	return count, nil
}

// FindLettersByDate returns the letters due on date.
func (s *sqlxStore) FindLettersByDate(ctx context.Context, date string) ([]Letter, error) {
	if date == "" {
		return nil, errs.NewValidationError("date cannot be empty", nil)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var letters []Letter
	query := `
        SELECT id, chat_id, text, delivery_date, created_at
        FROM letters
        WHERE delivery_date = ?
        ORDER BY id ASC;
    `

	err := s.db.SelectContext(ctx, &letters, query, date)
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "Context timeout or cancellation while fetching due letters", "date", date, "error", err)
		return nil, err
	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting letters by date", "date", date, "error", err)
		return nil, errs.NewStoreError(fmt.Sprintf("failed to get letters for %s", date), err)
	}

	s.logger.DebugContext(ctx, "Fetched letters by date", "date", date, "count", len(letters))
	return letters, nil
}

// FindLettersByUser returns the pending letters of chatID.
func (s *sqlxStore) FindLettersByUser(ctx context.Context, chatID int64) ([]Letter, error) {
	if chatID == 0 {
		return nil, errs.NewValidationError("chat_id cannot be zero", nil)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var letters []Letter
	query := `
        SELECT id, chat_id, text, delivery_date, created_at
        FROM letters
        WHERE chat_id = ?
        ORDER BY id ASC;
    `

	err := s.db.SelectContext(ctx, &letters, query, chatID)
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "Context timeout or cancellation while fetching user letters", "chat_id", chatID, "error", err)
		return nil, err
	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting user letters", "chat_id", chatID, "error", err)
		return nil, errs.NewStoreError(fmt.Sprintf("failed to get letters for chat %d", chatID), err)
	}

	return letters, nil
}

// RunSQLMaintenance executes VACUUM on the SQLite database.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	// VACUUM must run outside a transaction in SQLite
	_, err := s.db.ExecContext(ctx, "VACUUM;")
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)
	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return errs.NewStoreError("failed to execute VACUUM", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed")
	return nil
}
