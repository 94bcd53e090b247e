package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/production-calendar/internal/datebucket"
	"github.com/nhle/production-calendar/internal/model"
	"github.com/nhle/production-calendar/internal/store"
	"github.com/nhle/production-calendar/tests/testutil"
)

func ids(items []model.WorkItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestEnsureDay_Idempotent(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	day := testutil.Day(2024, time.March, 4)

	first, err := s.EnsureDay(ctx, day)
	require.NoError(t, err)
	second, err := s.EnsureDay(ctx, day.Add(15*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.True(t, datebucket.SameDay(day, first.Date))
}

func TestFetchDaysInRange(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	for _, d := range []int{1, 15, 31} {
		_, err := s.EnsureDay(ctx, testutil.Day(2024, time.March, d))
		require.NoError(t, err)
	}
	_, err := s.EnsureDay(ctx, testutil.Day(2024, time.April, 1))
	require.NoError(t, err)

	w := datebucket.MonthWindow(testutil.Day(2024, time.March, 10))
	days, err := s.FetchDaysInRange(ctx, w.Start, w.End)
	require.NoError(t, err)
	require.Len(t, days, 3)
	assert.Equal(t, "2024-03-01", datebucket.DayKey(days[0].Date))
	assert.Equal(t, "2024-03-31", datebucket.DayKey(days[2].Date))

	empty, err := s.FetchDaysInRange(ctx, testutil.Day(2023, time.January, 1), testutil.Day(2023, time.January, 31))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCreateItem_Defaults(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	item := testutil.SeedItem(t, s, testutil.Day(2024, time.March, 4), "P-1", 40)
	assert.NotEmpty(t, item.ID)
	assert.NotEmpty(t, item.DayID)
	assert.Equal(t, model.StatusPending, item.Status)
	assert.Nil(t, item.OrderIndex)
	assert.Equal(t, 40, item.ProgrammedQuantity)

	got, err := s.GetItemByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "P-1", got.Code)
	assert.Equal(t, "2024-03-04", datebucket.DayKey(got.Day))

	_, err = s.CreateItem(ctx, model.WorkItem{Day: testutil.Day(2024, time.March, 4), ProductName: "x"})
	assert.Error(t, err, "missing code")
	_, err = s.CreateItem(ctx, model.WorkItem{Code: "x", ProductName: "x"})
	assert.Error(t, err, "missing day")
}

func TestFetchItemsForDays_OrdersIndexedFirst(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	day := testutil.Day(2024, time.March, 4)

	a := testutil.SeedItem(t, s, day, "A", 1)
	b := testutil.SeedItem(t, s, day, "B", 1)
	c := testutil.SeedItem(t, s, day, "C", 1)
	other := testutil.SeedItem(t, s, testutil.Day(2024, time.March, 5), "D", 1)

	require.NoError(t, s.WriteItemOrderIndex(ctx, c.ID, 0))
	require.NoError(t, s.WriteItemOrderIndex(ctx, b.ID, 1))

	items, err := s.FetchItemsForDays(ctx, []string{a.DayID})
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID, b.ID, a.ID}, ids(items))
	require.NotNil(t, items[0].OrderIndex)
	assert.Equal(t, 0, *items[0].OrderIndex)
	assert.Nil(t, items[2].OrderIndex)

	both, err := s.FetchItemsForDays(ctx, []string{a.DayID, other.DayID})
	require.NoError(t, err)
	assert.Len(t, both, 4)
	assert.Equal(t, other.ID, both[3].ID)

	none, err := s.FetchItemsForDays(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestWriteItemOrderIndex_Errors(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	err := s.WriteItemOrderIndex(ctx, "missing", 0)
	assert.ErrorIs(t, err, store.ErrNotFound)

	item := testutil.SeedItem(t, s, testutil.Day(2024, time.March, 4), "A", 1)
	assert.Error(t, s.WriteItemOrderIndex(ctx, item.ID, -1))
}

func TestApplyOrderDelta_AllOrNothing(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	day := testutil.Day(2024, time.March, 4)

	a := testutil.SeedItem(t, s, day, "A", 1)
	b := testutil.SeedItem(t, s, day, "B", 1)

	require.NoError(t, s.ApplyOrderDelta(ctx, []model.OrderAssignment{
		{ItemID: b.ID, Index: 0},
		{ItemID: a.ID, Index: 1},
	}))
	items, err := s.FetchItemsForDays(ctx, []string{a.DayID})
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID, a.ID}, ids(items))

	err = s.ApplyOrderDelta(ctx, []model.OrderAssignment{
		{ItemID: a.ID, Index: 0},
		{ItemID: "missing", Index: 1},
	})
	assert.ErrorIs(t, err, store.ErrNotFound)

	items, err = s.FetchItemsForDays(ctx, []string{a.DayID})
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID, a.ID}, ids(items), "failed delta must not be partially applied")

	assert.NoError(t, s.ApplyOrderDelta(ctx, nil))
}

func TestUpdateItemStatus(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	item := testutil.SeedItem(t, s, testutil.Day(2024, time.March, 4), "A", 1)

	require.NoError(t, s.UpdateItemStatus(ctx, item.ID, model.StatusInProduction))
	got, err := s.GetItemByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProduction, got.Status)

	err = s.UpdateItemStatus(ctx, item.ID, model.StatusInProduction)
	assert.ErrorIs(t, err, model.ErrTransitionNotAllowed, "already in production")

	err = s.UpdateItemStatus(ctx, item.ID, model.StatusCompleted)
	assert.ErrorIs(t, err, model.ErrTransitionNotAllowed, "completion goes through FinalizeItem")

	err = s.UpdateItemStatus(ctx, "missing", model.StatusInProduction)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestFinalizeItem(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	day := testutil.Day(2024, time.March, 4)

	t.Run("requires in production", func(t *testing.T) {
		item := testutil.SeedItem(t, s, day, "P", 10)
		err := s.FinalizeItem(ctx, item.ID, model.Finalization{Quantity: 10})
		assert.ErrorIs(t, err, model.ErrTransitionNotAllowed)
	})

	t.Run("matching quantity", func(t *testing.T) {
		item := testutil.SeedItem(t, s, day, "M", 10)
		require.NoError(t, s.UpdateItemStatus(ctx, item.ID, model.StatusInProduction))
		require.NoError(t, s.FinalizeItem(ctx, item.ID, model.Finalization{
			Quantity: 10, TransactionNumber: " TX-1 ",
		}))

		got, err := s.GetItemByID(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusCompleted, got.Status)
		assert.Equal(t, "TX-1", got.TransactionNumber)
		assert.False(t, got.HasDivergence)
	})

	t.Run("divergent quantity", func(t *testing.T) {
		item := testutil.SeedItem(t, s, day, "D", 10)
		require.NoError(t, s.UpdateItemStatus(ctx, item.ID, model.StatusInProduction))
		require.NoError(t, s.FinalizeItem(ctx, item.ID, model.Finalization{Quantity: 8}))

		got, err := s.GetItemByID(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, 8, got.Quantity)
		assert.Equal(t, 10, got.ProgrammedQuantity)
		assert.True(t, got.HasDivergence)

		err = s.FinalizeItem(ctx, item.ID, model.Finalization{Quantity: 8})
		assert.ErrorIs(t, err, model.ErrTransitionNotAllowed, "already completed")
	})

	t.Run("missing", func(t *testing.T) {
		err := s.FinalizeItem(ctx, "missing", model.Finalization{})
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestDeleteItem(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	item := testutil.SeedItem(t, s, testutil.Day(2024, time.March, 4), "A", 1)

	require.NoError(t, s.DeleteItem(ctx, item.ID))
	_, err := s.GetItemByID(ctx, item.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteItem(ctx, item.ID), store.ErrNotFound)
}

func TestSearchItemsAndCounts(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	a, err := s.CreateItem(ctx, model.WorkItem{
		Day: testutil.Day(2024, time.March, 4), Code: "BR-100", ProductName: "Bread",
		Department: "Bakery", BatchNumber: "L-77", Quantity: 5,
	})
	require.NoError(t, err)
	b, err := s.CreateItem(ctx, model.WorkItem{
		Day: testutil.Day(2024, time.March, 6), Code: "CK-200", ProductName: "Cake",
		Department: "Pastry", Quantity: 9,
	})
	require.NoError(t, err)
	require.NoError(t, s.UpdateItemStatus(ctx, b.ID, model.StatusInProduction))

	query := "bakery"
	found, err := s.SearchItems(ctx, store.ItemFilter{Query: &query})
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, ids(found))

	batch := "L-77"
	found, err = s.SearchItems(ctx, store.ItemFilter{Query: &batch})
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, ids(found))

	status := model.StatusInProduction
	found, err = s.SearchItems(ctx, store.ItemFilter{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, ids(found))

	from := testutil.Day(2024, time.March, 5)
	found, err = s.SearchItems(ctx, store.ItemFilter{From: &from})
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, ids(found))

	found, err = s.SearchItems(ctx, store.ItemFilter{SortBy: "quantity", SortDesc: true, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, ids(found))

	found, err = s.SearchItems(ctx, store.ItemFilter{SortBy: "day", Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, ids(found))

	counts, err := s.CountItemsByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[model.Status]int{
		model.StatusPending:      1,
		model.StatusInProduction: 1,
		model.StatusCompleted:    0,
	}, counts)
}

func TestPreferences(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	_, ok, err := s.GetPreference(ctx, "calendar.anchor")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetPreference(ctx, "calendar.anchor", "2024-03"))
	require.NoError(t, s.SetPreference(ctx, "calendar.anchor", "2024-04"))

	v, ok, err := s.GetPreference(ctx, "calendar.anchor")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2024-04", v)
}

func TestReopenKeepsSchema(t *testing.T) {
	path := t.TempDir() + "/reopen.db"

	s, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	testutil.SeedItem(t, s, testutil.Day(2024, time.March, 4), "A", 1)
	require.NoError(t, s.Close())

	s, err = store.NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	version, err := s.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, version)

	counts, err := s.CountItemsByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, counts[model.StatusPending])
}
