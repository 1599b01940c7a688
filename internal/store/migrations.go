package store

import "fmt"

// migrations are applied in order; the index of the last applied one plus
// one is kept in PRAGMA user_version.
var migrations = []string{
	// One row per finished round of play
	`CREATE TABLE IF NOT EXISTS rounds (
		id TEXT PRIMARY KEY,
		mode TEXT NOT NULL CHECK(mode IN ('punch', 'shoot')),
		target TEXT NOT NULL,
		score INTEGER NOT NULL DEFAULT 0,
		shots INTEGER NOT NULL DEFAULT 0,
		hits INTEGER NOT NULL DEFAULT 0,
		accuracy INTEGER NOT NULL DEFAULT 0,
		started_at DATETIME NOT NULL,
		ended_at DATETIME NOT NULL
	)`,

	// Gameplay overrides, see game.Config.ApplySettings
	`CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_rounds_ended_at ON rounds(ended_at)`,
	`CREATE INDEX IF NOT EXISTS idx_rounds_target_score ON rounds(target, score)`,
}

func (s *Store) runMigrations() error {
	applied, err := s.SchemaVersion()
	if err != nil {
		return err
	}

	for i := applied; i < len(migrations); i++ {
		if _, err := s.db.Exec(migrations[i]); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if _, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
