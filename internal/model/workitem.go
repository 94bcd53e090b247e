package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a work item.
type Status string

// Status values as stored by the persistence service.
const (
	StatusPending      Status = "PENDING"
	StatusInProduction Status = "IN_PRODUCTION"
	StatusCompleted    Status = "COMPLETED"
)

// ErrTransitionNotAllowed is returned when a status change skips or
// reverses a step of the Pending -> InProduction -> Completed chain.
var ErrTransitionNotAllowed = errors.New("status transition not allowed")

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusPending, StatusInProduction, StatusCompleted}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProduction, StatusCompleted:
		return true
	}
	return false
}

// Label returns a short human-readable name for the status.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProduction:
		return "In production"
	case StatusCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

// ParseStatus converts a raw value into a Status, accepting any case.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q", raw)
	}
	return s, nil
}

// CanTransition reports whether a work item may move from one status to
// another. Only single forward steps are allowed.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusInProduction
	case StatusInProduction:
		return to == StatusCompleted
	}
	return false
}

// ProductionDay is a scheduled calendar day that work items belong to.
type ProductionDay struct {
	ID   string    `json:"id" db:"id"`
	Date time.Time `json:"date" db:"date"`
}

// WorkItem is one scheduled unit of production work.
type WorkItem struct {
	ID    string    `json:"id" db:"id"`
	DayID string    `json:"production_day_id" db:"production_day_id"`
	Day   time.Time `json:"day" db:"-"`

	Code        string `json:"code" db:"code"`
	ProductName string `json:"product_name" db:"product_name"`
	Department  string `json:"department" db:"department"`
	BatchNumber string `json:"batch_number" db:"batch_number"`

	// TransactionNumber is set by the finalization flow.
	TransactionNumber string `json:"transaction_number" db:"transaction_number"`

	Quantity           int  `json:"quantity" db:"quantity"`
	ProgrammedQuantity int  `json:"programmed_quantity" db:"programmed_quantity"`
	HasDivergence      bool `json:"has_divergence" db:"has_divergence"`

	Status Status `json:"status" db:"status"`

	// OrderIndex is the explicit position within the day. Nil means the
	// item has never been reordered and sorts by CreatedAt.
	OrderIndex *int `json:"display_order,omitempty" db:"display_order"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Validate checks the fields every work item must carry.
func (w WorkItem) Validate() error {
	if strings.TrimSpace(w.ID) == "" {
		return errors.New("work item id must not be empty")
	}
	if strings.TrimSpace(w.DayID) == "" {
		return fmt.Errorf("work item %s has no production day", w.ID)
	}
	if w.Day.IsZero() {
		return fmt.Errorf("work item %s has no day date", w.ID)
	}
	if !w.Status.Valid() {
		return fmt.Errorf("work item %s: unknown status %q", w.ID, w.Status)
	}
	if w.Quantity < 0 || w.ProgrammedQuantity < 0 {
		return fmt.Errorf("work item %s: quantities must not be negative", w.ID)
	}
	if w.OrderIndex != nil && *w.OrderIndex < 0 {
		return fmt.Errorf("work item %s: negative order index %d", w.ID, *w.OrderIndex)
	}
	return nil
}

// IsOrdered reports whether the item carries an explicit order index.
func (w WorkItem) IsOrdered() bool { return w.OrderIndex != nil }

// WithOrderIndex returns a copy of w with its order index set to i.
func (w WorkItem) WithOrderIndex(i int) WorkItem {
	w.OrderIndex = &i
	return w
}

// DayBucket groups the work items scheduled for one calendar day.
type DayBucket struct {
	Date  time.Time
	Items []WorkItem
}

// OrderAssignment is one entry of a reorder persistence delta.
type OrderAssignment struct {
	ItemID string `json:"id"`
	Index  int    `json:"display_order"`
}

// Finalization carries the values captured when a work item is completed.
type Finalization struct {
	Quantity          int
	TransactionNumber string
}
