package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Round is a finished round as stored in the database.
type Round struct {
	ID        string    `json:"id"`
	Mode      string    `json:"mode"`
	Target    string    `json:"target"`
	Score     int       `json:"score"`
	Shots     int       `json:"shots"`
	Hits      int       `json:"hits"`
	Accuracy  int       `json:"accuracy"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}

// RoundRepository records and queries finished rounds.
type RoundRepository struct {
	db *sql.DB
}

// Rounds returns the round repository for this store.
func (s *Store) Rounds() *RoundRepository {
	return &RoundRepository{db: s.db}
}

// Create inserts a round. An empty ID is filled with a new UUID.
func (r *RoundRepository) Create(rd *Round) error {
	if rd.ID == "" {
		rd.ID = uuid.New().String()
	}
	if rd.EndedAt.IsZero() {
		rd.EndedAt = time.Now()
	}
	if rd.StartedAt.IsZero() {
		rd.StartedAt = rd.EndedAt
	}

	_, err := r.db.Exec(
		`INSERT INTO rounds (id, mode, target, score, shots, hits, accuracy, started_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rd.ID, rd.Mode, rd.Target, rd.Score, rd.Shots, rd.Hits, rd.Accuracy,
		rd.StartedAt.UTC(), rd.EndedAt.UTC(),
	)
	return err
}

// GetByID retrieves a round by its ID.
func (r *RoundRepository) GetByID(id string) (*Round, error) {
	row := r.db.QueryRow(
		`SELECT id, mode, target, score, shots, hits, accuracy, started_at, ended_at
		 FROM rounds WHERE id = ?`,
		id,
	)
	rd, err := scanRound(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rd, nil
}

// List returns the most recent rounds first. limit <= 0 returns all rounds.
func (r *RoundRepository) List(limit int) ([]*Round, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.Query(
		`SELECT id, mode, target, score, shots, hits, accuracy, started_at, ended_at
		 FROM rounds ORDER BY ended_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rounds []*Round
	for rows.Next() {
		rd, err := scanRound(rows)
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, rd)
	}
	return rounds, rows.Err()
}

// Best returns the highest scoring round for a target.
func (r *RoundRepository) Best(target string) (*Round, error) {
	row := r.db.QueryRow(
		`SELECT id, mode, target, score, shots, hits, accuracy, started_at, ended_at
		 FROM rounds WHERE target = ? ORDER BY score DESC, ended_at ASC LIMIT 1`,
		target,
	)
	rd, err := scanRound(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rd, nil
}

// Delete removes a round by its ID.
func (r *RoundRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM rounds WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRound(s scanner) (*Round, error) {
	rd := &Round{}
	err := s.Scan(&rd.ID, &rd.Mode, &rd.Target, &rd.Score, &rd.Shots, &rd.Hits, &rd.Accuracy,
		&rd.StartedAt, &rd.EndedAt)
	if err != nil {
		return nil, err
	}
	return rd, nil
}
