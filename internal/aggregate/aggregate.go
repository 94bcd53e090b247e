// Package aggregate reduces collections of work items into status counts
// and derived rates. The same reductions back the calendar legend, the
// dashboard and the reports.
package aggregate

import (
	"sort"
	"strings"
	"time"

	"github.com/nhle/production-calendar/internal/datebucket"
	"github.com/nhle/production-calendar/internal/model"
)

// UnassignedDepartment labels items without a department.
const UnassignedDepartment = "Unassigned"

// WindowAggregate summarises a collection of work items.
type WindowAggregate struct {
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Total      int `json:"total"`

	// CompletionRate is Completed/Total, or 0 when Total is 0.
	CompletionRate float64 `json:"completion_rate"`

	Quantity           int `json:"quantity"`
	ProgrammedQuantity int `json:"programmed_quantity"`
	Divergences        int `json:"divergences"`
}

// Aggregate counts items by status. Items with a status outside the known
// set are left out entirely, so Pending+InProgress+Completed == Total. It
// never mutates items.
func Aggregate(items []model.WorkItem) WindowAggregate {
	var a WindowAggregate
	for _, it := range items {
		a.add(it)
	}
	a.finish()
	return a
}

func (a *WindowAggregate) add(it model.WorkItem) {
	switch it.Status {
	case model.StatusPending:
		a.Pending++
	case model.StatusInProduction:
		a.InProgress++
	case model.StatusCompleted:
		a.Completed++
	default:
		return
	}
	a.Total++
	a.Quantity += it.Quantity
	a.ProgrammedQuantity += it.ProgrammedQuantity
	if it.HasDivergence {
		a.Divergences++
	}
}

func (a *WindowAggregate) finish() {
	if a.Total > 0 {
		a.CompletionRate = float64(a.Completed) / float64(a.Total)
	} else {
		a.CompletionRate = 0
	}
}

// Open returns the number of items not yet completed.
func (a WindowAggregate) Open() int { return a.Pending + a.InProgress }

// DayAggregate is the aggregate of one calendar day.
type DayAggregate struct {
	Date time.Time `json:"date"`
	WindowAggregate
}

// ByDay aggregates items per calendar day of w, keyed by each item's
// production day. Every day of the window is present, in ascending order;
// items outside the window are ignored.
func ByDay(items []model.WorkItem, w datebucket.Window) []DayAggregate {
	days := datebucket.DaysInWindow(w)
	out := make([]DayAggregate, len(days))
	index := make(map[string]int, len(days))
	for i, d := range days {
		out[i].Date = d
		index[datebucket.DayKey(d)] = i
	}
	for _, it := range items {
		if i, ok := index[datebucket.DayKey(it.Day)]; ok {
			out[i].add(it)
		}
	}
	for i := range out {
		out[i].finish()
	}
	return out
}

// ProductTotal is the realised quantity of one product.
type ProductTotal struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// TopProducts ranks product names by summed quantity, highest first, and
// returns at most n entries. Ties are broken by name. n <= 0 returns all.
func TopProducts(items []model.WorkItem, n int) []ProductTotal {
	totals := make(map[string]int)
	for _, it := range items {
		totals[it.ProductName] += it.Quantity
	}

	out := make([]ProductTotal, 0, len(totals))
	for name, q := range totals {
		out = append(out, ProductTotal{Name: name, Quantity: q})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].Name < out[j].Name
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// DepartmentTotal counts completed and open items for one department.
type DepartmentTotal struct {
	Name      string `json:"name"`
	Completed int    `json:"completed"`
	Open      int    `json:"open"`
}

// ByDepartment groups items by department, sorted by name.
func ByDepartment(items []model.WorkItem) []DepartmentTotal {
	byName := make(map[string]*DepartmentTotal)
	for _, it := range items {
		name := strings.TrimSpace(it.Department)
		if name == "" {
			name = UnassignedDepartment
		}
		d, ok := byName[name]
		if !ok {
			d = &DepartmentTotal{Name: name}
			byName[name] = d
		}
		if it.Status == model.StatusCompleted {
			d.Completed++
		} else {
			d.Open++
		}
	}

	out := make([]DepartmentTotal, 0, len(byName))
	for _, d := range byName {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CountByStatus returns the number of items per status, with every known
// status present.
func CountByStatus(items []model.WorkItem) map[model.Status]int {
	counts := make(map[model.Status]int, len(model.Statuses))
	for _, s := range model.Statuses {
		counts[s] = 0
	}
	for _, it := range items {
		counts[it.Status]++
	}
	return counts
}
