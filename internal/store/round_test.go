package store

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRoundRepository_Create(t *testing.T) {
	s := newTestStore(t)
	repo := s.Rounds()

	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rd := &Round{
		Mode:      "shoot",
		Target:    "rings",
		Score:     120,
		Shots:     6,
		Hits:      4,
		Accuracy:  67,
		StartedAt: start,
		EndedAt:   start.Add(90 * time.Second),
	}
	if err := repo.Create(rd); err != nil {
		t.Fatalf("failed to create round: %v", err)
	}

	if _, err := uuid.Parse(rd.ID); err != nil {
		t.Fatalf("Create should assign a UUID, got %q: %v", rd.ID, err)
	}

	got, err := repo.GetByID(rd.ID)
	if err != nil {
		t.Fatalf("failed to get round: %v", err)
	}
	if got.Mode != "shoot" || got.Target != "rings" {
		t.Errorf("got mode/target %q/%q, want shoot/rings", got.Mode, got.Target)
	}
	if got.Score != 120 || got.Shots != 6 || got.Hits != 4 || got.Accuracy != 67 {
		t.Errorf("got tally %+v", got)
	}
	if !got.StartedAt.Equal(rd.StartedAt) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, rd.StartedAt)
	}
	if !got.EndedAt.Equal(rd.EndedAt) {
		t.Errorf("EndedAt = %v, want %v", got.EndedAt, rd.EndedAt)
	}
}

func TestRoundRepository_RejectsUnknownMode(t *testing.T) {
	s := newTestStore(t)

	err := s.Rounds().Create(&Round{Mode: "kick", Target: "rabbit", EndedAt: time.Now()})
	if err == nil {
		t.Fatal("expected constraint error for unknown mode")
	}
}

func TestRoundRepository_GetByID_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Rounds().GetByID("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRoundRepository_ListAndBest(t *testing.T) {
	s := newTestStore(t)
	repo := s.Rounds()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rounds := []*Round{
		{Mode: "punch", Target: "rabbit", Score: 100, EndedAt: base},
		{Mode: "punch", Target: "rabbit", Score: 300, EndedAt: base.Add(time.Minute)},
		{Mode: "shoot", Target: "rings", Score: 80, EndedAt: base.Add(2 * time.Minute)},
	}
	for _, rd := range rounds {
		if err := repo.Create(rd); err != nil {
			t.Fatalf("failed to create round: %v", err)
		}
	}

	all, err := repo.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List() returned %d rounds, want 3", len(all))
	}
	if all[0].ID != rounds[2].ID {
		t.Errorf("most recent round should come first, got %q", all[0].Target)
	}

	limited, err := repo.List(2)
	if err != nil {
		t.Fatalf("List(2) error = %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("List(2) returned %d rounds", len(limited))
	}

	best, err := repo.Best("rabbit")
	if err != nil {
		t.Fatalf("Best() error = %v", err)
	}
	if best.Score != 300 {
		t.Errorf("Best() score = %d, want 300", best.Score)
	}

	if _, err := repo.Best("photo"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Best() for unplayed target: expected ErrNotFound, got %v", err)
	}
}

func TestRoundRepository_Delete(t *testing.T) {
	s := newTestStore(t)
	repo := s.Rounds()

	rd := &Round{Mode: "punch", Target: "cell", Score: 10}
	if err := repo.Create(rd); err != nil {
		t.Fatalf("failed to create round: %v", err)
	}
	if err := repo.Delete(rd.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete(rd.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete(): expected ErrNotFound, got %v", err)
	}
}
