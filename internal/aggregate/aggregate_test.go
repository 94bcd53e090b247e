package aggregate

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/production-calendar/internal/datebucket"
	"github.com/nhle/production-calendar/internal/model"
)

func item(id string, status model.Status, day time.Time) model.WorkItem {
	return model.WorkItem{
		ID:                 id,
		DayID:              "day-" + datebucket.DayKey(day),
		Day:                day,
		Code:               "C-" + id,
		ProductName:        "Product " + id,
		Status:             status,
		Quantity:           10,
		ProgrammedQuantity: 10,
		CreatedAt:          day,
	}
}

func TestAggregate_Empty(t *testing.T) {
	got := Aggregate(nil)
	assert.Equal(t, WindowAggregate{}, got)
	assert.Zero(t, got.CompletionRate)

	got = Aggregate([]model.WorkItem{})
	assert.Equal(t, 0, got.Total)
	assert.Equal(t, 0.0, got.CompletionRate)
}

func TestAggregate_Counts(t *testing.T) {
	day := time.Date(2024, time.May, 6, 0, 0, 0, 0, time.UTC)
	items := []model.WorkItem{
		item("a", model.StatusPending, day),
		item("b", model.StatusInProduction, day),
		item("c", model.StatusCompleted, day),
		item("d", model.StatusCompleted, day),
	}
	items[2].Quantity = 8
	items[2].HasDivergence = true

	got := Aggregate(items)
	assert.Equal(t, 1, got.Pending)
	assert.Equal(t, 1, got.InProgress)
	assert.Equal(t, 2, got.Completed)
	assert.Equal(t, 4, got.Total)
	assert.InDelta(t, 0.5, got.CompletionRate, 1e-9)
	assert.Equal(t, 38, got.Quantity)
	assert.Equal(t, 40, got.ProgrammedQuantity)
	assert.Equal(t, 1, got.Divergences)
	assert.Equal(t, 2, got.Open())
}

func TestAggregate_TotalsInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	day := time.Date(2024, time.May, 6, 0, 0, 0, 0, time.UTC)

	for round := 0; round < 200; round++ {
		n := rng.Intn(40)
		items := make([]model.WorkItem, n)
		for i := range items {
			items[i] = item(fmt.Sprintf("%d-%d", round, i), model.Statuses[rng.Intn(len(model.Statuses))], day)
		}
		snapshot := append([]model.WorkItem(nil), items...)

		got := Aggregate(items)
		require.Equal(t, got.Total, got.Pending+got.InProgress+got.Completed)
		require.Equal(t, n, got.Total)
		require.GreaterOrEqual(t, got.CompletionRate, 0.0)
		require.LessOrEqual(t, got.CompletionRate, 1.0)
		require.Equal(t, snapshot, items, "input must not be mutated")

		// Order of the input never changes the result.
		rng.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
		require.Equal(t, got, Aggregate(items))
	}
}

func TestByDay(t *testing.T) {
	monday := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	w := datebucket.WeekWindow(monday, time.Monday)

	items := []model.WorkItem{
		item("a", model.StatusCompleted, monday),
		item("b", model.StatusPending, monday),
		item("c", model.StatusInProduction, monday.AddDate(0, 0, 2)),
		item("outside", model.StatusPending, monday.AddDate(0, 0, 7)),
	}

	days := ByDay(items, w)
	require.Len(t, days, 7)
	assert.True(t, datebucket.SameDay(days[0].Date, monday))
	assert.Equal(t, 2, days[0].Total)
	assert.InDelta(t, 0.5, days[0].CompletionRate, 1e-9)
	assert.Equal(t, 0, days[1].Total)
	assert.Equal(t, 0.0, days[1].CompletionRate)
	assert.Equal(t, 1, days[2].InProgress)

	sum := 0
	for _, d := range days {
		sum += d.Total
	}
	assert.Equal(t, 3, sum, "items outside the window are ignored")
}

func TestTopProducts(t *testing.T) {
	day := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	mk := func(id, name string, q int) model.WorkItem {
		it := item(id, model.StatusCompleted, day)
		it.ProductName = name
		it.Quantity = q
		return it
	}
	items := []model.WorkItem{
		mk("1", "Baguette", 30),
		mk("2", "Croissant", 50),
		mk("3", "Baguette", 25),
		mk("4", "Brioche", 10),
		mk("5", "Ciabatta", 10),
	}

	got := TopProducts(items, 3)
	assert.Equal(t, []ProductTotal{
		{Name: "Baguette", Quantity: 55},
		{Name: "Croissant", Quantity: 50},
		{Name: "Brioche", Quantity: 10},
	}, got)

	assert.Len(t, TopProducts(items, 0), 4)
	assert.Empty(t, TopProducts(nil, 5))
}

func TestByDepartment(t *testing.T) {
	day := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	a := item("a", model.StatusCompleted, day)
	a.Department = "Bakery"
	b := item("b", model.StatusPending, day)
	b.Department = "Bakery"
	c := item("c", model.StatusInProduction, day)

	got := ByDepartment([]model.WorkItem{a, b, c})
	assert.Equal(t, []DepartmentTotal{
		{Name: "Bakery", Completed: 1, Open: 1},
		{Name: UnassignedDepartment, Completed: 0, Open: 1},
	}, got)
}

func TestCountByStatus(t *testing.T) {
	day := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	got := CountByStatus([]model.WorkItem{item("a", model.StatusPending, day)})
	assert.Equal(t, map[model.Status]int{
		model.StatusPending:      1,
		model.StatusInProduction: 0,
		model.StatusCompleted:    0,
	}, got)
}

func TestAggregate_IgnoresUnknownStatus(t *testing.T) {
	day := time.Date(2024, time.March, 13, 0, 0, 0, 0, time.UTC)
	items := []model.WorkItem{
		item("a", model.StatusPending, day),
		item("b", model.StatusCompleted, day),
		item("c", model.Status("ARCHIVED"), day),
	}

	got := Aggregate(items)
	assert.Equal(t, 2, got.Total)
	assert.Equal(t, got.Total, got.Pending+got.InProgress+got.Completed)
	assert.Equal(t, 20, got.Quantity)
	assert.InDelta(t, 0.5, got.CompletionRate, 1e-9)

	w := datebucket.DayWindow(day)
	assert.Equal(t, 2, ByDay(items, w)[0].Total)
}
