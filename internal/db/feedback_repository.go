package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kleincho/humint/internal/models"
)

// FeedbackRepository persists response feedback. The table is write-only
// from the client's point of view; analysts read it out of band.
type FeedbackRepository struct {
	db *DB
}

// NewFeedbackRepository creates a new FeedbackRepository.
func NewFeedbackRepository(db *DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Insert stores a feedback submission.
func (r *FeedbackRepository) Insert(ctx context.Context, feedback *models.Feedback) error {
	if err := feedback.Validate(); err != nil {
		return fmt.Errorf("invalid feedback: %w", err)
	}

	if feedback.ID == "" {
		feedback.ID = uuid.New().String()
	}
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = time.Now().UTC()
	}

	responseJSON, err := json.Marshal(feedback.Response)
	if err != nil {
		return fmt.Errorf("failed to marshal feedback response: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO response_feedbacks (id, created_at, response_json, feedback)
		VALUES (?, ?, ?, ?)
	`,
		feedback.ID,
		feedback.CreatedAt.Format(time.RFC3339),
		string(responseJSON),
		string(feedback.Choice),
	)
	if err != nil {
		return fmt.Errorf("failed to insert feedback: %w", err)
	}

	return nil
}

// Count returns the number of stored feedback rows. Used by tests and the
// occasional sanity check; the client never reads feedback content back.
func (r *FeedbackRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM response_feedbacks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count feedback: %w", err)
	}
	return count, nil
}
