// Package tilestore is the keyed blob store TileWriter persists into: a
// SQLite database with schema tiles(x,y,z,data), recreated from scratch on
// every run. Adapted from the teacher's internal/mbtiles/writer.go (same
// modernc.org/sqlite driver, same batched-insert shape) but with the
// simpler single-table schema and destructive-recreate semantics
// osm/src/tile_writer/tile_writer.rs's create_internal_tiles_db_connection
// uses, rather than the teacher's WAL/metadata-table MBTiles schema.
package tilestore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/errs"
)

// DefaultBatchSize is the number of rows buffered before an automatic flush.
const DefaultBatchSize = 500

// Row is one persisted tile record awaiting insertion.
type Row struct {
	X, Y, Z int32
	Data    []byte
}

// Store is the recreate-from-scratch keyed blob store described in spec §6.
type Store struct {
	db    *sql.DB
	path  string
	batch []Row
	mu    sync.Mutex
}

// Open removes dir, recreates it, opens a fresh database at
// filepath.Join(dir, "tiles.db"), and (re)creates the tiles table with
// synchronous and journaling disabled — matching
// create_internal_tiles_db_connection's pragmas exactly.
func Open(dir string) (*Store, error) {
	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("%w: remove %s: %v", errs.ErrStore, dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", errs.ErrStore, dir, err)
	}

	path := filepath.Join(dir, "tiles.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", errs.ErrOpen, path, err)
	}

	pragmas := []string{
		"PRAGMA synchronous = OFF",
		"PRAGMA journal_mode = OFF",
		"PRAGMA page_size = 65536",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: pragma %q: %v", errs.ErrStore, p, err)
		}
	}

	schema := `
		DROP TABLE IF EXISTS tiles;
		CREATE TABLE tiles (
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			z INTEGER NOT NULL,
			data BLOB
		);
		CREATE UNIQUE INDEX tiles_xyz ON tiles (x, y, z);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: create schema: %v", errs.ErrStore, err)
	}

	return &Store{db: db, path: path, batch: make([]Row, 0, DefaultBatchSize)}, nil
}

// Insert buffers a row for insertion, auto-flushing once the batch fills.
func (s *Store) Insert(row Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.batch = append(s.batch, row)
	if len(s.batch) >= DefaultBatchSize {
		return s.flushLocked()
	}
	return nil
}

// Flush writes any buffered rows.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

func (s *Store) flushLocked() error {
	if len(s.batch) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: begin tx: %v", errs.ErrStore, err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO tiles (x, y, z, data) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("%w: prepare insert: %v", errs.ErrStore, err)
	}
	defer stmt.Close()

	for _, row := range s.batch {
		if _, err := stmt.Exec(row.X, row.Y, row.Z, row.Data); err != nil {
			return fmt.Errorf("%w: insert (%d,%d,%d): %v", errs.ErrStore, row.X, row.Y, row.Z, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", errs.ErrStore, err)
	}
	s.batch = s.batch[:0]
	return nil
}

// Close flushes remaining rows, runs VACUUM, and closes the database —
// mirroring the original's final VACUUM before the connection is dropped.
func (s *Store) Close() error {
	if err := s.Flush(); err != nil {
		s.db.Close()
		return err
	}
	if _, err := s.db.Exec("VACUUM"); err != nil {
		s.db.Close()
		return fmt.Errorf("%w: vacuum: %v", errs.ErrStore, err)
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("%w: close: %v", errs.ErrStore, err)
	}
	return nil
}
