package db

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/kleincho/humint/internal/models"
)

func TestFeedbackRepository_Insert(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewFeedbackRepository(db)
	ctx := context.Background()

	feedback := &models.Feedback{
		Response: models.Message{
			Text:            "Analysts typically rotate desks after two years.",
			IsAI:            true,
			Confidence:      models.ConfidenceHigh,
			ReferencesCount: 3,
			FollowupRecs:    []string{"What about associates?"},
		},
		Choice: models.FeedbackLike,
	}

	if err := repo.Insert(ctx, feedback); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if feedback.ID == "" {
		t.Fatal("expected generated feedback id")
	}
	if feedback.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}

	var responseJSON, choice string
	err := db.QueryRow(`SELECT response_json, feedback FROM response_feedbacks WHERE id = ?`, feedback.ID).
		Scan(&responseJSON, &choice)
	if err != nil {
		t.Fatalf("row lookup failed: %v", err)
	}
	if choice != "like" {
		t.Fatalf("unexpected choice: %s", choice)
	}

	var stored models.Message
	if err := json.Unmarshal([]byte(responseJSON), &stored); err != nil {
		t.Fatalf("stored response is not valid JSON: %v", err)
	}
	if stored.Text != feedback.Response.Text || stored.Confidence != models.ConfidenceHigh {
		t.Fatalf("stored response mismatch: %+v", stored)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 feedback row, got %d", count)
	}
}

func TestFeedbackRepository_InsertInvalid(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewFeedbackRepository(db)

	bad := &models.Feedback{
		Response: models.Message{Text: "user text", IsAI: false},
		Choice:   models.FeedbackChoice("great"),
	}
	if err := repo.Insert(context.Background(), bad); !errors.Is(err, models.ErrInvalidFeedbackChoice) {
		t.Fatalf("expected ErrInvalidFeedbackChoice, got %v", err)
	}
}
