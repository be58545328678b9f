package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kleincho/humint/internal/models"
)

func TestThreadRepository_InsertAndList(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewThreadRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()

	older := &models.Thread{
		ThreadID:    "t1",
		Title:       "Citation Formatting Help",
		LastMessage: "How do I cite an expert quote?",
		OwnerID:     "u1",
		CreatedAt:   now.Add(-48 * time.Hour),
	}
	newer := &models.Thread{
		ThreadID:    "t2",
		Title:       "Networking at Goldman",
		LastMessage: "Who should I email first?",
		OwnerID:     "u1",
		CreatedAt:   now,
	}
	otherOwner := &models.Thread{
		ThreadID:  "t3",
		Title:     "Other user's thread",
		OwnerID:   "u2",
		CreatedAt: now,
	}

	for _, thread := range []*models.Thread{older, newer, otherOwner} {
		if err := repo.Insert(ctx, thread); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	threads, err := repo.ListByOwner(ctx, "u1")
	if err != nil {
		t.Fatalf("ListByOwner failed: %v", err)
	}
	if len(threads) != 2 {
		t.Fatalf("expected 2 threads, got %d", len(threads))
	}
	if threads[0].ThreadID != "t2" || threads[1].ThreadID != "t1" {
		t.Fatalf("expected created_at DESC order, got %s, %s", threads[0].ThreadID, threads[1].ThreadID)
	}
	if threads[1].LastMessage != "How do I cite an expert quote?" {
		t.Fatalf("unexpected last message: %s", threads[1].LastMessage)
	}
}

func TestThreadRepository_InsertDuplicate(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewThreadRepository(db)
	ctx := context.Background()

	thread := &models.Thread{ThreadID: "t1", Title: "first", OwnerID: "u1"}
	if err := repo.Insert(ctx, thread); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	dup := &models.Thread{ThreadID: "t1", Title: "second", OwnerID: "u1"}
	if err := repo.Insert(ctx, dup); !errors.Is(err, ErrThreadAlreadyExists) {
		t.Fatalf("expected ErrThreadAlreadyExists, got %v", err)
	}
}

func TestThreadRepository_InsertInvalid(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewThreadRepository(db)

	missingOwner := &models.Thread{ThreadID: "t1"}
	if err := repo.Insert(context.Background(), missingOwner); !errors.Is(err, models.ErrEmptyOwnerID) {
		t.Fatalf("expected ErrEmptyOwnerID, got %v", err)
	}
}

func TestThreadRepository_TouchLastMessage(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewThreadRepository(db)
	ctx := context.Background()

	thread := &models.Thread{
		ThreadID:    "t1",
		Title:       "title",
		LastMessage: "first",
		OwnerID:     "u1",
		CreatedAt:   time.Now().UTC().Add(-time.Hour),
	}
	if err := repo.Insert(ctx, thread); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if err := repo.TouchLastMessage(ctx, "t1", "second"); err != nil {
		t.Fatalf("TouchLastMessage failed: %v", err)
	}

	got, err := repo.Get(ctx, "u1", "t1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.LastMessage != "second" {
		t.Fatalf("unexpected last message: %s", got.LastMessage)
	}
	if !got.UpdatedAt.After(got.CreatedAt) {
		t.Fatalf("expected updated_at to advance past created_at")
	}

	if err := repo.TouchLastMessage(ctx, "missing", "x"); !errors.Is(err, ErrThreadNotFound) {
		t.Fatalf("expected ErrThreadNotFound, got %v", err)
	}
}

func TestThreadRepository_GetMissing(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewThreadRepository(db)
	if _, err := repo.Get(context.Background(), "u1", "nope"); !errors.Is(err, ErrThreadNotFound) {
		t.Fatalf("expected ErrThreadNotFound, got %v", err)
	}
}
