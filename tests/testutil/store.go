package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nhle/production-calendar/internal/model"
	"github.com/nhle/production-calendar/internal/store"
)

// NewTestStore creates a SQLiteStore in a temporary directory with all
// migrations applied. It automatically closes the store when the test
// completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "prodcal.db"))
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// Day returns local midnight of the given date.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local)
}

// SeedItem creates a pending work item on day and fails the test on error.
func SeedItem(t *testing.T, s store.Store, day time.Time, code string, quantity int) model.WorkItem {
	t.Helper()

	item, err := s.CreateItem(context.Background(), model.WorkItem{
		Day:         day,
		Code:        code,
		ProductName: "Product " + code,
		Quantity:    quantity,
	})
	if err != nil {
		t.Fatalf("seeding work item %s: %v", code, err)
	}
	return item
}
