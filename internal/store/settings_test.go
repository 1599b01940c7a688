package store

import (
	"errors"
	"testing"
)

func TestSettingsRepository_SetGet(t *testing.T) {
	s := newTestStore(t)
	repo := s.Settings()

	if _, err := repo.Get("game.target"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before Set, got %v", err)
	}

	if err := repo.Set("game.target", "rings"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := repo.Set("game.target", "sphere"); err != nil {
		t.Fatalf("overwriting Set() error = %v", err)
	}

	got, err := repo.Get("game.target")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "sphere" {
		t.Errorf("Get() = %q, want %q", got, "sphere")
	}
}

func TestSettingsRepository_SetAllAndAll(t *testing.T) {
	s := newTestStore(t)
	repo := s.Settings()

	want := map[string]string{
		"game.mode":         "shoot",
		"particle.count":    "400",
		"punch.cooldown_ms": "750",
	}
	if err := repo.SetAll(want); err != nil {
		t.Fatalf("SetAll() error = %v", err)
	}

	got, err := repo.All()
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("All() returned %d settings, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("setting %q = %q, want %q", k, got[k], v)
		}
	}
}

func TestSettingsRepository_Delete(t *testing.T) {
	s := newTestStore(t)
	repo := s.Settings()

	if err := repo.Set("game.mode", "punch"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := repo.Delete("game.mode"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete("game.mode"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
