package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kleincho/humint/internal/models"
)

// Thread repository errors.
var (
	ErrThreadNotFound      = errors.New("thread not found")
	ErrThreadAlreadyExists = errors.New("thread already exists for this owner")
)

// ThreadRepository handles thread row persistence. Rows are bookkeeping
// for the sidebar; the authoritative message history lives on the backend.
type ThreadRepository struct {
	db *DB
}

// NewThreadRepository creates a new ThreadRepository.
func NewThreadRepository(db *DB) *ThreadRepository {
	return &ThreadRepository{db: db}
}

// Insert adds a new thread row.
func (r *ThreadRepository) Insert(ctx context.Context, thread *models.Thread) error {
	if err := thread.Validate(); err != nil {
		return fmt.Errorf("invalid thread: %w", err)
	}

	now := time.Now().UTC()
	if thread.CreatedAt.IsZero() {
		thread.CreatedAt = now
	}
	if thread.UpdatedAt.IsZero() {
		thread.UpdatedAt = thread.CreatedAt
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_threads (owner_id, thread_id, title, last_message, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		thread.OwnerID,
		thread.ThreadID,
		thread.Title,
		thread.LastMessage,
		thread.CreatedAt.Format(time.RFC3339),
		thread.UpdatedAt.Format(time.RFC3339),
	)

	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrThreadAlreadyExists
		}
		return fmt.Errorf("failed to insert thread: %w", err)
	}

	return nil
}

// ListByOwner retrieves all threads owned by an identity, newest first.
func (r *ThreadRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Thread, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT owner_id, thread_id, title, last_message, created_at, updated_at
		FROM user_threads
		WHERE owner_id = ?
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query threads: %w", err)
	}
	defer rows.Close()

	var threads []models.Thread
	for rows.Next() {
		thread, err := scanThread(rows)
		if err != nil {
			return nil, err
		}
		threads = append(threads, thread)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating threads: %w", err)
	}

	return threads, nil
}

// Get retrieves a single thread row.
func (r *ThreadRepository) Get(ctx context.Context, ownerID, threadID string) (*models.Thread, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT owner_id, thread_id, title, last_message, created_at, updated_at
		FROM user_threads
		WHERE owner_id = ? AND thread_id = ?
	`, ownerID, threadID)

	var thread models.Thread
	var createdAt, updatedAt string
	err := row.Scan(
		&thread.OwnerID,
		&thread.ThreadID,
		&thread.Title,
		&thread.LastMessage,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrThreadNotFound
		}
		return nil, fmt.Errorf("failed to scan thread: %w", err)
	}

	if err := parseThreadTimes(&thread, createdAt, updatedAt); err != nil {
		return nil, err
	}

	return &thread, nil
}

// TouchLastMessage refreshes a thread's last message and updated_at after a
// send. The update is keyed by thread id alone so it lands regardless of
// which device inserted the row.
func (r *ThreadRepository) TouchLastMessage(ctx context.Context, threadID, lastMessage string) error {
	now := time.Now().UTC().Format(time.RFC3339)

	return r.db.TransactionWithRetry(ctx, 0, 0, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE user_threads
			SET last_message = ?, updated_at = ?
			WHERE thread_id = ?
		`, lastMessage, now, threadID)
		if err != nil {
			return fmt.Errorf("failed to update thread: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check update result: %w", err)
		}
		if affected == 0 {
			return ErrThreadNotFound
		}
		return nil
	})
}

func scanThread(rows *sql.Rows) (models.Thread, error) {
	var thread models.Thread
	var createdAt, updatedAt string

	if err := rows.Scan(
		&thread.OwnerID,
		&thread.ThreadID,
		&thread.Title,
		&thread.LastMessage,
		&createdAt,
		&updatedAt,
	); err != nil {
		return models.Thread{}, fmt.Errorf("failed to scan thread: %w", err)
	}

	if err := parseThreadTimes(&thread, createdAt, updatedAt); err != nil {
		return models.Thread{}, err
	}

	return thread, nil
}

func parseThreadTimes(thread *models.Thread, createdAt, updatedAt string) error {
	createdParsed, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return fmt.Errorf("failed to parse created_at: %w", err)
	}
	updatedParsed, err := time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to parse updated_at: %w", err)
	}
	thread.CreatedAt = createdParsed
	thread.UpdatedAt = updatedParsed
	return nil
}
