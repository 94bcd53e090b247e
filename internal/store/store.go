package store

import (
	"context"
	"errors"
	"time"

	"github.com/nhle/production-calendar/internal/model"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

// ErrMalformedRow marks a stored row that does not form a valid record.
var ErrMalformedRow = errors.New("malformed row")

// ItemFilter controls filtering, sorting, and pagination for work item
// searches used by the reports and the dashboard.
type ItemFilter struct {
	Status   *model.Status // nil means every status
	Query    *string       // matches code, product name, batch number, department
	From     *time.Time    // first production day (inclusive)
	To       *time.Time    // last production day (inclusive)
	SortBy   string        // "created_at", "day", "code", "product_name", "quantity", "status"
	SortDesc bool
	Limit    int
	Offset   int
}

// Store defines the persistence interface for production days, work items
// and user preferences.
type Store interface {
	// === Production days ===

	FetchDaysInRange(ctx context.Context, start, end time.Time) ([]model.ProductionDay, error)
	EnsureDay(ctx context.Context, date time.Time) (model.ProductionDay, error)

	// === Work items ===

	FetchItemsForDays(ctx context.Context, dayIDs []string) ([]model.WorkItem, error)
	GetItemByID(ctx context.Context, id string) (*model.WorkItem, error)
	CreateItem(ctx context.Context, item model.WorkItem) (model.WorkItem, error)
	SearchItems(ctx context.Context, filter ItemFilter) ([]model.WorkItem, error)
	CountItemsByStatus(ctx context.Context) (map[model.Status]int, error)
	WriteItemOrderIndex(ctx context.Context, id string, index int) error
	ApplyOrderDelta(ctx context.Context, delta []model.OrderAssignment) error
	UpdateItemStatus(ctx context.Context, id string, status model.Status) error
	FinalizeItem(ctx context.Context, id string, f model.Finalization) error
	DeleteItem(ctx context.Context, id string) error

	// === Preferences ===

	GetPreference(ctx context.Context, key string) (string, bool, error)
	SetPreference(ctx context.Context, key, value string) error
}
