package spool

import (
	"context"
	"testing"
	"time"
)

// createTestQueue creates an in-memory SQLite queue for testing
func createTestQueue(t *testing.T) *Queue {
	t.Helper()

	queue, err := NewQueue(":memory:")
	if err != nil {
		t.Fatalf("failed to create test queue: %v", err)
	}

	t.Cleanup(func() {
		_ = queue.Close()
	})

	return queue
}

func testEvent(trackID string, playedAt time.Time) PlayEvent {
	return PlayEvent{
		TrackID:  trackID,
		Title:    "Track " + trackID,
		Artist:   "Artist",
		PlayedAt: playedAt,
	}
}

func TestQueueAddAndGetPending(t *testing.T) {
	queue := createTestQueue(t)
	ctx := context.Background()

	base := time.Unix(1700000000, 0)
	// Insert newest first to verify ordering
	if _, err := queue.Add(ctx, testEvent("tr-2", base.Add(time.Hour))); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if _, err := queue.Add(ctx, testEvent("tr-1", base)); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	pending, err := queue.GetPending(ctx, 0)
	if err != nil {
		t.Fatalf("GetPending() error: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("got %d pending events, want 2", len(pending))
	}
	if pending[0].TrackID != "tr-1" {
		t.Errorf("pending[0] = %s, want oldest first (tr-1)", pending[0].TrackID)
	}
	if !pending[0].PlayedAt.Equal(base) {
		t.Errorf("PlayedAt = %v, want %v", pending[0].PlayedAt, base)
	}
}

func TestQueueGetPendingLimit(t *testing.T) {
	queue := createTestQueue(t)
	ctx := context.Background()

	base := time.Unix(1700000000, 0)
	for i := 0; i < 5; i++ {
		if _, err := queue.Add(ctx, testEvent("tr", base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Add() error: %v", err)
		}
	}

	pending, err := queue.GetPending(ctx, 3)
	if err != nil {
		t.Fatalf("GetPending() error: %v", err)
	}
	if len(pending) != 3 {
		t.Errorf("got %d pending events, want limit of 3", len(pending))
	}
}

func TestQueueMarkSubmitted(t *testing.T) {
	queue := createTestQueue(t)
	ctx := context.Background()

	id, err := queue.Add(ctx, testEvent("tr-1", time.Unix(1700000000, 0)))
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	if err := queue.MarkSubmitted(ctx, id); err != nil {
		t.Fatalf("MarkSubmitted() error: %v", err)
	}

	pending, err := queue.GetPending(ctx, 0)
	if err != nil {
		t.Fatalf("GetPending() error: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("got %d pending events after submission, want 0", len(pending))
	}

	if err := queue.MarkSubmitted(ctx, 9999); err == nil {
		t.Error("MarkSubmitted(9999) = nil, want error for unknown id")
	}
}

func TestQueueMarkError(t *testing.T) {
	queue := createTestQueue(t)
	ctx := context.Background()

	id, err := queue.Add(ctx, testEvent("tr-1", time.Unix(1700000000, 0)))
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	if err := queue.MarkError(ctx, id, "connection refused"); err != nil {
		t.Fatalf("MarkError() error: %v", err)
	}

	pending, err := queue.GetPending(ctx, 0)
	if err != nil {
		t.Fatalf("GetPending() error: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("errored event left the pending set")
	}
	if pending[0].Error != "connection refused" {
		t.Errorf("Error = %q, want recorded message", pending[0].Error)
	}
}

func TestQueueMarkDropped(t *testing.T) {
	queue := createTestQueue(t)
	ctx := context.Background()

	id, err := queue.Add(ctx, testEvent("tr-1", time.Unix(1700000000, 0)))
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	if err := queue.MarkDropped(ctx, id, "track vanished"); err != nil {
		t.Fatalf("MarkDropped() error: %v", err)
	}

	pending, err := queue.GetPending(ctx, 0)
	if err != nil {
		t.Fatalf("GetPending() error: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("dropped event still pending")
	}
}

func TestQueuePruneSubmitted(t *testing.T) {
	queue := createTestQueue(t)
	ctx := context.Background()

	old := time.Unix(1700000000, 0)
	recent := old.Add(48 * time.Hour)

	oldID, err := queue.Add(ctx, testEvent("tr-old", old))
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if _, err := queue.Add(ctx, testEvent("tr-new", recent)); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if err := queue.MarkSubmitted(ctx, oldID); err != nil {
		t.Fatalf("MarkSubmitted() error: %v", err)
	}

	pruned, err := queue.PruneSubmitted(ctx, old.Add(time.Hour))
	if err != nil {
		t.Fatalf("PruneSubmitted() error: %v", err)
	}
	if pruned != 1 {
		t.Errorf("pruned %d events, want 1", pruned)
	}

	// The unsubmitted recent event survives
	pending, err := queue.GetPending(ctx, 0)
	if err != nil {
		t.Fatalf("GetPending() error: %v", err)
	}
	if len(pending) != 1 || pending[0].TrackID != "tr-new" {
		t.Errorf("pending = %v, want only tr-new", pending)
	}
}
