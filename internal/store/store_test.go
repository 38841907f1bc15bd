package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ismailkaraca/kohasayim/internal/ledger"
	"github.com/ismailkaraca/kohasayim/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("Open() returned error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleSnapshot() *models.SessionSnapshot {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	return &models.SessionSnapshot{
		ID:           "e3b7d1f0-0000-0000-0000-000000000001",
		Name:         "yetiskin salonu sayimi",
		LibraryCode:  "12",
		LocationCode: "YB",
		CreatedAt:    now,
		UpdatedAt:    now,
		Events: []models.ScanEvent{
			{
				Seq:        1,
				Timestamp:  now,
				RawInput:   "101200012345",
				Identifier: "101200012345",
				Valid:      true,
				Reference: &models.ReferenceRecord{
					Identifier:      "101200012345",
					Status:          models.StatusInCollection,
					LoanEligibility: "0",
					Location:        "YB",
					Title:           "Ince Memed",
				},
			},
			{
				Seq:        2,
				Timestamp:  now.Add(time.Second),
				RawInput:   "101200012345",
				Identifier: "101200012345",
				Warnings:   []models.Warning{{Code: models.WarningDuplicate, Message: "already scanned in this session"}},
			},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	snapshot := sampleSnapshot()
	if err := s.Save(ctx, snapshot); err != nil {
		t.Fatalf("Save() returned error: %v", err)
	}

	loaded, err := s.Load(ctx, snapshot.ID)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if loaded.Name != snapshot.Name || loaded.LibraryCode != "12" || loaded.LocationCode != "YB" {
		t.Errorf("Expected session metadata to round-trip, got %+v", loaded)
	}
	if len(loaded.Events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(loaded.Events))
	}

	first := loaded.Events[0]
	if !first.Valid || first.Reference == nil || first.Reference.Title != "Ince Memed" {
		t.Errorf("Expected first event with reference to round-trip, got %+v", first)
	}
	second := loaded.Events[1]
	if len(second.Warnings) != 1 || second.Warnings[0].Code != models.WarningDuplicate {
		t.Errorf("Expected duplicate warning to round-trip, got %v", second.Warnings)
	}
	if !second.Timestamp.After(first.Timestamp) {
		t.Error("Expected event timestamps to round-trip in order")
	}
}

func TestRoundTripReproducesSeenSet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	snapshot := sampleSnapshot()
	if err := s.Save(ctx, snapshot); err != nil {
		t.Fatalf("Save() returned error: %v", err)
	}
	loaded, err := s.Load(ctx, snapshot.ID)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	led := ledger.New()
	led.Restore(loaded.Events)

	if !led.Seen("101200012345") {
		t.Error("Expected replayed ledger to reproduce the seen set")
	}
}

func TestSaveReplacesEvents(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	snapshot := sampleSnapshot()
	if err := s.Save(ctx, snapshot); err != nil {
		t.Fatalf("Save() returned error: %v", err)
	}

	// The manual-delete path: re-save with one event removed.
	snapshot.Events = snapshot.Events[:1]
	if err := s.Save(ctx, snapshot); err != nil {
		t.Fatalf("second Save() returned error: %v", err)
	}

	loaded, err := s.Load(ctx, snapshot.ID)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if len(loaded.Events) != 1 {
		t.Errorf("Expected 1 event after re-save, got %d", len(loaded.Events))
	}
}

func TestListAndDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	snapshot := sampleSnapshot()
	if err := s.Save(ctx, snapshot); err != nil {
		t.Fatalf("Save() returned error: %v", err)
	}

	sessions, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() returned error: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("Expected 1 session, got %d", len(sessions))
	}
	if sessions[0].ID != snapshot.ID {
		t.Errorf("Expected session id %s, got %s", snapshot.ID, sessions[0].ID)
	}
	if sessions[0].EventCount != len(snapshot.Events) {
		t.Errorf("Expected event count %d, got %d", len(snapshot.Events), sessions[0].EventCount)
	}

	if err := s.Delete(ctx, snapshot.ID); err != nil {
		t.Fatalf("Delete() returned error: %v", err)
	}
	if _, err := s.Load(ctx, snapshot.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, snapshot.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound for double delete, got %v", err)
	}
}

func TestLoadUnknownSession(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Load(context.Background(), "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}
