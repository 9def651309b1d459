package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/zach3141592/TerraHacks2025/internal/models"
	"github.com/zach3141592/TerraHacks2025/internal/storage"
)

func newTestStore(t *testing.T) (*Store, *storage.MemorySlot) {
	t.Helper()
	slot := &storage.MemorySlot{}
	store := New(slot, t.TempDir())
	if err := store.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, slot
}

func testRecord(i int) *models.ScanRecord {
	return &models.ScanRecord{
		ConditionType:   models.ConditionCut,
		PhotoData:       fmt.Sprintf("data:image/jpeg;base64,cGhvdG8tJWQ=%d", i),
		Observations:    fmt.Sprintf("• Observation %d", i),
		Timeline:        fmt.Sprintf("**Stage 1 (Days 1-3):** Step %d", i),
		Recommendations: fmt.Sprintf("• Recommendation %d", i),
	}
}

func TestInitializeIdempotent(t *testing.T) {
	store, _ := newTestStore(t)

	for i := 0; i < 3; i++ {
		if err := store.Initialize(context.Background()); err != nil {
			t.Fatalf("Initialize() #%d error = %v", i, err)
		}
	}

	if _, err := store.SaveScan(context.Background(), testRecord(1)); err != nil {
		t.Fatalf("SaveScan() after repeated Initialize error = %v", err)
	}
}

func TestSaveScanRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	in := testRecord(1)
	id, err := store.SaveScan(ctx, in)
	if err != nil {
		t.Fatalf("SaveScan() error = %v", err)
	}
	if id == 0 {
		t.Fatal("SaveScan() returned zero id")
	}
	if in.Timestamp == 0 {
		t.Fatal("SaveScan() did not assign a timestamp")
	}

	got, err := store.GetScanByID(ctx, id)
	if err != nil {
		t.Fatalf("GetScanByID() error = %v", err)
	}

	if got.ConditionType != in.ConditionType ||
		got.PhotoData != in.PhotoData ||
		got.Observations != in.Observations ||
		got.Timeline != in.Timeline ||
		got.Recommendations != in.Recommendations {
		t.Errorf("GetScanByID() = %+v, want fields of %+v", got, in)
	}
	if got.Timestamp != in.Timestamp {
		t.Errorf("Timestamp = %d, want %d", got.Timestamp, in.Timestamp)
	}
	if got.CreatedAt == "" {
		t.Error("CreatedAt not assigned by the store")
	}
}

func TestSaveScanAssignsFreshIDs(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	seen := map[int64]bool{}
	for i := 0; i < 5; i++ {
		id, err := store.SaveScan(ctx, testRecord(i))
		if err != nil {
			t.Fatalf("SaveScan() #%d error = %v", i, err)
		}
		if seen[id] {
			t.Fatalf("id %d assigned twice", id)
		}
		seen[id] = true
	}
}

func TestGetRecentScansOrderAndLimit(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := store.SaveScan(ctx, testRecord(i)); err != nil {
			t.Fatalf("SaveScan() error = %v", err)
		}
	}

	scans, err := store.GetRecentScans(ctx, 3)
	if err != nil {
		t.Fatalf("GetRecentScans() error = %v", err)
	}
	if len(scans) != 3 {
		t.Fatalf("GetRecentScans(3) returned %d records", len(scans))
	}

	for i := 1; i < len(scans); i++ {
		prev, cur := scans[i-1], scans[i]
		if cur.Timestamp > prev.Timestamp {
			t.Errorf("timestamps not non-increasing: %d before %d", prev.Timestamp, cur.Timestamp)
		}
		// Records saved in the same millisecond fall back to insertion
		// order.
		if cur.Timestamp == prev.Timestamp && cur.ID > prev.ID {
			t.Errorf("insertion-order tiebreak violated: id %d before %d", prev.ID, cur.ID)
		}
	}
}

func TestGetScanByIDNotFound(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.GetScanByID(context.Background(), 12345)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetScanByID(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDeleteScan(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	id, err := store.SaveScan(ctx, testRecord(1))
	if err != nil {
		t.Fatalf("SaveScan() error = %v", err)
	}
	if _, err := store.SaveScan(ctx, testRecord(2)); err != nil {
		t.Fatalf("SaveScan() error = %v", err)
	}

	before, err := store.CountScans(ctx)
	if err != nil {
		t.Fatalf("CountScans() error = %v", err)
	}

	if err := store.DeleteScan(ctx, id); err != nil {
		t.Fatalf("DeleteScan() error = %v", err)
	}

	if _, err := store.GetScanByID(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetScanByID(deleted) error = %v, want ErrNotFound", err)
	}

	after, err := store.CountScans(ctx)
	if err != nil {
		t.Fatalf("CountScans() error = %v", err)
	}
	if after != before-1 {
		t.Errorf("count after delete = %d, want %d", after, before-1)
	}

	// Deleting a missing id is not an error.
	if err := store.DeleteScan(ctx, id); err != nil {
		t.Errorf("DeleteScan(missing) error = %v", err)
	}
}

func TestClearAllData(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := store.SaveScan(ctx, testRecord(i)); err != nil {
			t.Fatalf("SaveScan() error = %v", err)
		}
	}

	if err := store.ClearAllData(ctx); err != nil {
		t.Fatalf("ClearAllData() error = %v", err)
	}

	count, err := store.CountScans(ctx)
	if err != nil {
		t.Fatalf("CountScans() error = %v", err)
	}
	if count != 0 {
		t.Errorf("count after clear = %d, want 0", count)
	}

	scans, err := store.GetRecentScans(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecentScans() error = %v", err)
	}
	if len(scans) != 0 {
		t.Errorf("GetRecentScans() after clear returned %d records", len(scans))
	}
}

// Simulates an application restart: a fresh store on the same slot must
// restore every record with identical field values.
func TestRestartRoundTrip(t *testing.T) {
	ctx := context.Background()
	slot := &storage.MemorySlot{}

	first := New(slot, t.TempDir())
	if err := first.Initialize(ctx); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	saved := make(map[int64]*models.ScanRecord)
	for i := 0; i < 4; i++ {
		rec := testRecord(i)
		id, err := first.SaveScan(ctx, rec)
		if err != nil {
			t.Fatalf("SaveScan() error = %v", err)
		}
		saved[id] = rec
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	second := New(slot, t.TempDir())
	if err := second.Initialize(ctx); err != nil {
		t.Fatalf("Initialize() after restart error = %v", err)
	}
	defer second.Close()

	count, err := second.CountScans(ctx)
	if err != nil {
		t.Fatalf("CountScans() error = %v", err)
	}
	if count != len(saved) {
		t.Fatalf("count after restart = %d, want %d", count, len(saved))
	}

	for id, want := range saved {
		got, err := second.GetScanByID(ctx, id)
		if err != nil {
			t.Fatalf("GetScanByID(%d) after restart error = %v", id, err)
		}
		if got.ConditionType != want.ConditionType ||
			got.PhotoData != want.PhotoData ||
			got.Observations != want.Observations ||
			got.Timeline != want.Timeline ||
			got.Recommendations != want.Recommendations ||
			got.Timestamp != want.Timestamp {
			t.Errorf("record %d after restart = %+v, want %+v", id, got, want)
		}
	}
}

// A store that was never explicitly initialized must initialize itself on
// first use.
func TestLazyInitialization(t *testing.T) {
	slot := &storage.MemorySlot{}
	store := New(slot, t.TempDir())
	defer store.Close()

	count, err := store.CountScans(context.Background())
	if err != nil {
		t.Fatalf("CountScans() on uninitialized store error = %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}
