// Package scans orchestrates the scan store for the UI: lazy
// initialization, view-ready records, and discarding of stale results.
package scans

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"github.com/zach3141592/TerraHacks2025/internal/analysis"
	"github.com/zach3141592/TerraHacks2025/internal/database"
	"github.com/zach3141592/TerraHacks2025/internal/models"
)

// ErrStaleResult is returned when an analysis completes after the capture
// cycle it belongs to was reset. Stale results must be discarded, never
// rendered or persisted.
var ErrStaleResult = errors.New("analysis result is stale")

// Scan is a view-ready record: the stored row plus the derived condition
// label and a parsed timestamp.
type Scan struct {
	models.ScanRecord
	ConditionLabel string    `json:"condition_label"`
	Date           time.Time `json:"date"`
}

// Repository wraps the scan store. It owns no state beyond the store
// reference and the capture-cycle generation counter.
type Repository struct {
	db  database.DB
	gen atomic.Uint64
}

// NewRepository creates a repository over an explicitly owned store. The
// store is initialized lazily on first use.
func NewRepository(db database.DB) *Repository {
	return &Repository{db: db}
}

// Generation returns the token identifying the current capture cycle. An
// analyze call takes the token before suspending on the model and presents
// it back on completion; a reset in between invalidates it.
func (r *Repository) Generation() uint64 {
	return r.gen.Load()
}

// Reset abandons any in-flight analysis. The underlying call is not
// aborted; its late result is simply rejected when it arrives.
func (r *Repository) Reset() {
	r.gen.Add(1)
}

// SaveAnalysis persists one completed analysis and returns the view-ready
// record. A failed write is logged and swallowed: the analysis itself
// already succeeded, so the caller still gets the record to render. A zero
// ID on the returned record marks it as not persisted.
func (r *Repository) SaveAnalysis(ctx context.Context, token uint64, conditionType, photoData string, sections analysis.Sections) (*Scan, error) {
	if token != r.gen.Load() {
		return nil, ErrStaleResult
	}

	rec := &models.ScanRecord{
		ConditionType:   conditionType,
		PhotoData:       photoData,
		Observations:    sections.Observations,
		Timeline:        sections.Timeline,
		Recommendations: sections.Recommendations,
		Timestamp:       time.Now().UnixMilli(),
	}

	if _, err := r.db.SaveScan(ctx, rec); err != nil {
		log.Printf("Failed to save scan to database: %v", err)
	}

	// The save suspends on the store; re-check before handing the result
	// to the UI.
	if token != r.gen.Load() {
		return nil, ErrStaleResult
	}
	return r.view(rec), nil
}

// RecentScans returns up to limit view-ready records, newest first. Read
// failures degrade to an empty history.
func (r *Repository) RecentScans(ctx context.Context, limit int) []*Scan {
	recs, err := r.db.GetRecentScans(ctx, limit)
	if err != nil {
		log.Printf("Failed to get recent scans: %v", err)
		return nil
	}

	out := make([]*Scan, 0, len(recs))
	for _, rec := range recs {
		out = append(out, r.view(rec))
	}
	return out
}

// ScanByID returns one view-ready record, or database.ErrNotFound.
func (r *Repository) ScanByID(ctx context.Context, id int64) (*Scan, error) {
	rec, err := r.db.GetScanByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.view(rec), nil
}

// DeleteScan removes one record from history.
func (r *Repository) DeleteScan(ctx context.Context, id int64) error {
	return r.db.DeleteScan(ctx, id)
}

// ClearHistory removes every stored record.
func (r *Repository) ClearHistory(ctx context.Context) error {
	return r.db.ClearAllData(ctx)
}

// Count returns the number of stored records; failures degrade to zero.
func (r *Repository) Count(ctx context.Context) int {
	count, err := r.db.CountScans(ctx)
	if err != nil {
		log.Printf("Failed to get scans count: %v", err)
		return 0
	}
	return count
}

func (r *Repository) view(rec *models.ScanRecord) *Scan {
	return &Scan{
		ScanRecord:     *rec,
		ConditionLabel: models.ConditionLabel(rec.ConditionType),
		Date:           time.UnixMilli(rec.Timestamp),
	}
}
