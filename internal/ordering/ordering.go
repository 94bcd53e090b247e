// Package ordering maintains the display order of one day's work items and
// computes the order-index writes a reorder needs.
package ordering

import (
	"sort"

	"github.com/nhle/production-calendar/internal/model"
)

// List is an immutable ordered sequence of one day's work items. Every
// mutating method returns a new List and leaves the receiver untouched.
type List struct {
	items []model.WorkItem
}

// FromItems returns items in display order: items with an order index
// first, ascending by index; then items without one, ascending by creation
// time. Remaining ties fall back to creation time and then id so the
// sequence is deterministic for any input.
func FromItems(items []model.WorkItem) List {
	sorted := make([]model.WorkItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return less(sorted[i], sorted[j])
	})
	return List{items: sorted}
}

func less(a, b model.WorkItem) bool {
	switch {
	case a.OrderIndex != nil && b.OrderIndex == nil:
		return true
	case a.OrderIndex == nil && b.OrderIndex != nil:
		return false
	case a.OrderIndex != nil && *a.OrderIndex != *b.OrderIndex:
		return *a.OrderIndex < *b.OrderIndex
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// Len returns the number of items.
func (l List) Len() int { return len(l.items) }

// Items returns a copy of the items in order.
func (l List) Items() []model.WorkItem {
	out := make([]model.WorkItem, len(l.items))
	copy(out, l.items)
	return out
}

// IDs returns the item ids in order.
func (l List) IDs() []string {
	ids := make([]string, len(l.items))
	for i, it := range l.items {
		ids[i] = it.ID
	}
	return ids
}

// IndexOf returns the position of id, or -1.
func (l List) IndexOf(id string) int {
	for i, it := range l.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Get returns the item with the given id.
func (l List) Get(id string) (model.WorkItem, bool) {
	if i := l.IndexOf(id); i >= 0 {
		return l.items[i], true
	}
	return model.WorkItem{}, false
}

// Move removes id from its position and reinserts it at to, clamped to
// [0, Len()-1]. An unknown id returns the list unchanged.
func (l List) Move(id string, to int) List {
	from := l.IndexOf(id)
	if from < 0 {
		return l
	}
	if to < 0 {
		to = 0
	}
	if to > len(l.items)-1 {
		to = len(l.items) - 1
	}
	if to == from {
		return l
	}

	moved := l.items[from]
	out := make([]model.WorkItem, 0, len(l.items))
	out = append(out, l.items[:from]...)
	out = append(out, l.items[from+1:]...)

	out = append(out, model.WorkItem{})
	copy(out[to+1:], out[to:])
	out[to] = moved

	return List{items: out}
}

// MoveOnto moves activeID to the current position of overID, the way a drop
// onto another row behaves. Unknown ids or activeID == overID are no-ops.
func (l List) MoveOnto(activeID, overID string) List {
	if activeID == overID {
		return l
	}
	to := l.IndexOf(overID)
	if to < 0 || l.IndexOf(activeID) < 0 {
		return l
	}
	return l.Move(activeID, to)
}

// Remove drops id from the list. An unknown id returns the list unchanged.
func (l List) Remove(id string) List {
	i := l.IndexOf(id)
	if i < 0 {
		return l
	}
	out := make([]model.WorkItem, 0, len(l.items)-1)
	out = append(out, l.items[:i]...)
	out = append(out, l.items[i+1:]...)
	return List{items: out}
}

// Replace swaps in a new version of an item with the same id, keeping its
// position. An unknown id returns the list unchanged.
func (l List) Replace(it model.WorkItem) List {
	i := l.IndexOf(it.ID)
	if i < 0 {
		return l
	}
	out := l.Items()
	out[i] = it
	return List{items: out}
}

// PersistenceDelta assigns dense zero-based indices to every item in
// current order: position i gets index i. The delta always covers the whole
// day, since a move shifts every item between its old and new position.
func (l List) PersistenceDelta() []model.OrderAssignment {
	delta := make([]model.OrderAssignment, len(l.items))
	for i, it := range l.items {
		delta[i] = model.OrderAssignment{ItemID: it.ID, Index: i}
	}
	return delta
}

// Reindexed returns the list with every item's order index set to its
// position, i.e. the local state after PersistenceDelta has been applied.
func (l List) Reindexed() List {
	out := make([]model.WorkItem, len(l.items))
	for i, it := range l.items {
		out[i] = it.WithOrderIndex(i)
	}
	return List{items: out}
}

// SameOrder reports whether both lists hold the same ids in the same order.
func (l List) SameOrder(o List) bool {
	if len(l.items) != len(o.items) {
		return false
	}
	for i := range l.items {
		if l.items[i].ID != o.items[i].ID {
			return false
		}
	}
	return true
}
