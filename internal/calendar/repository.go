package calendar

import (
	"context"
	"time"

	"github.com/nhle/production-calendar/internal/model"
)

// Repository is the persistence collaborator the controller loads from and
// writes through. Every method may block on I/O.
type Repository interface {
	// FetchDaysInRange returns the production days scheduled within
	// [start, end].
	FetchDaysInRange(ctx context.Context, start, end time.Time) ([]model.ProductionDay, error)

	// FetchItemsForDays returns every work item belonging to the given days,
	// each annotated with its day's date.
	FetchItemsForDays(ctx context.Context, dayIDs []string) ([]model.WorkItem, error)

	WriteItemOrderIndex(ctx context.Context, id string, index int) error

	// UpdateItemStatus is only used for PENDING -> IN_PRODUCTION.
	UpdateItemStatus(ctx context.Context, id string, status model.Status) error

	DeleteItem(ctx context.Context, id string) error
}

// BatchOrderWriter is implemented by repositories that can store a whole
// reorder delta atomically.
type BatchOrderWriter interface {
	ApplyOrderDelta(ctx context.Context, delta []model.OrderAssignment) error
}

// Preferences stores small UI preferences between sessions.
type Preferences interface {
	GetPreference(ctx context.Context, key string) (string, bool, error)
	SetPreference(ctx context.Context, key, value string) error
}
