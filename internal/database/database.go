// Package database implements the local scan store: an embedded SQLite
// database whose full image is serialized into a persistent slot after
// every mutation.
package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/zach3141592/TerraHacks2025/internal/models"
	"github.com/zach3141592/TerraHacks2025/internal/storage"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

// ErrNotFound is returned when a scan id does not exist.
var ErrNotFound = errors.New("scan not found")

// DB interface defines the methods the scan store should implement
type DB interface {
	Initialize(ctx context.Context) error
	SaveScan(ctx context.Context, scan *models.ScanRecord) (int64, error)
	GetRecentScans(ctx context.Context, limit int) ([]*models.ScanRecord, error)
	GetScanByID(ctx context.Context, id int64) (*models.ScanRecord, error)
	DeleteScan(ctx context.Context, id int64) error
	ClearAllData(ctx context.Context) error
	CountScans(ctx context.Context) (int, error)
	Close() error
}

// Store implements the DB interface. The working database lives in a
// scratch file; the slot holds the durable image. Mutating calls are
// serialized through one mutex so two overlapping saves can never race
// each other re-serializing the same image.
type Store struct {
	slot     storage.Slot
	workPath string

	mu          sync.Mutex
	db          *sql.DB
	initialized bool
}

// New creates a store that persists into slot and keeps its working
// database under scratchDir. No I/O happens until Initialize.
func New(slot storage.Slot, scratchDir string) *Store {
	return &Store{
		slot:     slot,
		workPath: filepath.Join(scratchDir, "dailyscan.db"),
	}
}

// Initialize loads a previously persisted image or creates a fresh schema.
// It is idempotent and safe to call from every operation; concurrent
// callers before the first completion are serialized by the store mutex.
// A failure here is fatal for persistence and propagates to the caller.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initializeLocked(ctx)
}

func (s *Store) initializeLocked(ctx context.Context) error {
	if s.initialized {
		return nil
	}

	image, err := s.slot.Load()
	if err != nil {
		return fmt.Errorf("error loading database snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.workPath), 0o755); err != nil {
		return fmt.Errorf("error creating scratch directory: %w", err)
	}
	// Drop leftovers from a previous run; the slot image is the only
	// source of truth.
	for _, suffix := range []string{"", "-wal", "-shm"} {
		if err := os.Remove(s.workPath + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("error clearing scratch database: %w", err)
		}
	}

	fresh := image == nil
	if !fresh {
		if err := os.WriteFile(s.workPath, image, 0o644); err != nil {
			return fmt.Errorf("error restoring database snapshot: %w", err)
		}
	}

	db, err := sql.Open("sqlite", s.workPath)
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}

	// SQLite supports a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return fmt.Errorf("error enabling WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return fmt.Errorf("error enabling foreign keys: %w", err)
	}

	if fresh {
		schemaBytes, err := schemaFS.ReadFile("schema.sql")
		if err != nil {
			db.Close()
			return fmt.Errorf("error reading schema file: %w", err)
		}
		if _, err := db.ExecContext(ctx, string(schemaBytes)); err != nil {
			db.Close()
			return fmt.Errorf("error executing schema: %w", err)
		}
	}

	s.db = db
	s.initialized = true

	if fresh {
		if err := s.snapshotLocked(ctx); err != nil {
			s.db = nil
			s.initialized = false
			db.Close()
			return fmt.Errorf("error persisting initial snapshot: %w", err)
		}
		log.Println("Database schema initialized successfully")
	}
	return nil
}

// snapshotLocked serializes the full database image into the slot. Callers
// must hold s.mu. The checkpoint folds the WAL into the main file so the
// image read from disk is complete.
func (s *Store) snapshotLocked(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("error checkpointing database: %w", err)
	}
	image, err := os.ReadFile(s.workPath)
	if err != nil {
		return fmt.Errorf("error reading database image: %w", err)
	}
	if err := s.slot.Store(image); err != nil {
		return fmt.Errorf("error storing database image: %w", err)
	}
	return nil
}

// SaveScan assigns the save timestamp, inserts the record and persists a
// snapshot before returning. The generated id is written back into scan and
// returned; the id, timestamp and created_at fields of scan are overwritten.
func (s *Store) SaveScan(ctx context.Context, scan *models.ScanRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.initializeLocked(ctx); err != nil {
		return 0, err
	}

	scan.Timestamp = time.Now().UnixMilli()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO scans (timestamp, condition_type, photo_data, observations, timeline, recommendations)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		scan.Timestamp, scan.ConditionType, scan.PhotoData,
		scan.Observations, scan.Timeline, scan.Recommendations,
	)
	if err != nil {
		return 0, fmt.Errorf("error inserting scan: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("error reading generated id: %w", err)
	}
	scan.ID = id

	if err := s.db.QueryRowContext(ctx, "SELECT created_at FROM scans WHERE id = ?", id).Scan(&scan.CreatedAt); err != nil {
		return 0, fmt.Errorf("error reading created_at: %w", err)
	}

	if err := s.snapshotLocked(ctx); err != nil {
		return id, err
	}
	return id, nil
}

// GetRecentScans returns up to limit records, newest first. Ties on the
// save timestamp fall back to insertion order. Photo blobs are large and
// the history list never renders them, so they are not selected here; use
// GetScanByID for the full record.
func (s *Store) GetRecentScans(ctx context.Context, limit int) ([]*models.ScanRecord, error) {
	if err := s.Initialize(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, condition_type, observations, timeline, recommendations, created_at
		FROM scans
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying recent scans: %w", err)
	}
	defer rows.Close()

	var scans []*models.ScanRecord
	for rows.Next() {
		var scan models.ScanRecord
		var observations, timeline, recommendations sql.NullString
		err := rows.Scan(
			&scan.ID, &scan.Timestamp, &scan.ConditionType,
			&observations, &timeline, &recommendations, &scan.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		scan.Observations = observations.String
		scan.Timeline = timeline.String
		scan.Recommendations = recommendations.String
		scans = append(scans, &scan)
	}
	return scans, rows.Err()
}

// GetScanByID returns one full record, or ErrNotFound for a missing id.
func (s *Store) GetScanByID(ctx context.Context, id int64) (*models.ScanRecord, error) {
	if err := s.Initialize(ctx); err != nil {
		return nil, err
	}

	var scan models.ScanRecord
	var observations, timeline, recommendations sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, timestamp, condition_type, photo_data, observations, timeline, recommendations, created_at
		FROM scans WHERE id = ?
	`, id).Scan(
		&scan.ID, &scan.Timestamp, &scan.ConditionType, &scan.PhotoData,
		&observations, &timeline, &recommendations, &scan.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying scan: %w", err)
	}
	scan.Observations = observations.String
	scan.Timeline = timeline.String
	scan.Recommendations = recommendations.String
	return &scan, nil
}

// DeleteScan removes one record and persists a snapshot. A missing id is
// not an error.
func (s *Store) DeleteScan(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.initializeLocked(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM scans WHERE id = ?", id); err != nil {
		return fmt.Errorf("error deleting scan: %w", err)
	}
	return s.snapshotLocked(ctx)
}

// ClearAllData removes every record and persists a snapshot.
func (s *Store) ClearAllData(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.initializeLocked(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM scans"); err != nil {
		return fmt.Errorf("error clearing scans: %w", err)
	}
	return s.snapshotLocked(ctx)
}

// CountScans returns the number of stored records.
func (s *Store) CountScans(ctx context.Context) (int, error) {
	if err := s.Initialize(ctx); err != nil {
		return 0, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM scans").Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting scans: %w", err)
	}
	return count, nil
}

// Close closes the database connection. The slot keeps the last snapshot,
// so a later store created on the same slot picks up where this one left.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.initialized = false
	return err
}
