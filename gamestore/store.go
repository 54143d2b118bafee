// Package gamestore persists a log of completed engine analyses to a
// local SQLite database so sessions can be reviewed later.
package gamestore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS analyses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	fen TEXT NOT NULL,
	depth INTEGER NOT NULL,
	best_move TEXT NOT NULL,
	score INTEGER NOT NULL,
	elapsed_ms INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// AnalysisRecord is one completed search: the position analyzed, the
// requested depth, the move chosen and its score, and how long the
// search took.
type AnalysisRecord struct {
	FEN      string
	Depth    int
	BestMove string
	Score    int
	Elapsed  time.Duration
}

// Store is a SQLite-backed analysis log.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening analysis store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating analyses table: %w", err)
	}
	log.Debug().Str("path", path).Msg("analysis-store-opened")
	return &Store{db: db}, nil
}

// Record appends one analysis to the log.
func (s *Store) Record(ctx context.Context, rec AnalysisRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO analyses (fen, depth, best_move, score, elapsed_ms)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.FEN, rec.Depth, rec.BestMove, rec.Score, rec.Elapsed.Milliseconds())
	return err
}

// Recent returns up to limit analyses, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]AnalysisRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT fen, depth, best_move, score, elapsed_ms
		 FROM analyses ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AnalysisRecord
	for rows.Next() {
		var rec AnalysisRecord
		var elapsedMs int64
		if err := rows.Scan(&rec.FEN, &rec.Depth, &rec.BestMove, &rec.Score, &elapsedMs); err != nil {
			return nil, err
		}
		rec.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
