package calendar

import (
	"time"

	"github.com/nhle/production-calendar/internal/datebucket"
	"github.com/nhle/production-calendar/internal/model"
)

// ItemsLoadedMsg carries the result of a window fetch. Generation
// identifies the window selection the fetch was issued for.
type ItemsLoadedMsg struct {
	Generation uint64
	Window     datebucket.Window
	Items      []model.WorkItem
	Err        error
}

// OrderCommittedMsg is sent once every write of a reorder delta settled.
type OrderCommittedMsg struct {
	Generation uint64
	Day        time.Time
	Delta      []model.OrderAssignment
	Err        error
}

// StatusUpdatedMsg is sent after a status write completes.
type StatusUpdatedMsg struct {
	Generation uint64
	ItemID     string
	Status     model.Status
	Err        error
}

// ItemDeletedMsg is sent after a delete completes.
type ItemDeletedMsg struct {
	Generation uint64
	ItemID     string
	Err        error
}

// FinalizeRequestedMsg asks the host to open the finalization flow for an
// in-production item. The controller writes nothing itself.
type FinalizeRequestedMsg struct {
	ItemID string
}
