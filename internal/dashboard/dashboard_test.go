package dashboard_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/production-calendar/internal/dashboard"
	"github.com/nhle/production-calendar/internal/model"
	"github.com/nhle/production-calendar/internal/store"
	"github.com/nhle/production-calendar/tests/testutil"
)

type failingSource struct{}

func (failingSource) SearchItems(context.Context, store.ItemFilter) ([]model.WorkItem, error) {
	return nil, errors.New("offline")
}

func TestBuild(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	// Wednesday.
	today := testutil.Day(2024, time.March, 13)

	a := testutil.SeedItem(t, s, today, "A", 10)
	testutil.SeedItem(t, s, today, "B", 5)
	c := testutil.SeedItem(t, s, testutil.Day(2024, time.March, 11), "A", 7)
	testutil.SeedItem(t, s, testutil.Day(2024, time.March, 15), "F", 3)   // later this week
	testutil.SeedItem(t, s, testutil.Day(2024, time.January, 2), "OLD", 99) // outside history

	require.NoError(t, s.UpdateItemStatus(ctx, a.ID, model.StatusInProduction))
	require.NoError(t, s.FinalizeItem(ctx, a.ID, model.Finalization{Quantity: 12}))
	require.NoError(t, s.UpdateItemStatus(ctx, c.ID, model.StatusInProduction))

	b := dashboard.New(s, dashboard.Options{
		WeekStartsOn: time.Monday,
		Now:          func() time.Time { return today.Add(9 * time.Hour) },
		Logger:       zerolog.Nop(),
	})
	snap, err := b.Build(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, snap.Today.Total)
	assert.Equal(t, 1, snap.Today.Completed)
	assert.Equal(t, 1, snap.Today.Pending)
	assert.Equal(t, 1, snap.Today.Divergences)
	assert.InDelta(t, 0.5, snap.Today.CompletionRate, 1e-9)

	require.Len(t, snap.Trend, dashboard.TrendDays)
	assert.Equal(t, "2024-03-07", snap.Trend[0].Date.Format("2006-01-02"))
	assert.Equal(t, 1, snap.Trend[4].InProgress, "March 11")

	assert.Equal(t, "2024-03-11..2024-03-17", snap.Week.String())
	require.Len(t, snap.WeekDays, 7)
	assert.Equal(t, 4, snap.WeekTotal.Total)
	assert.Equal(t, 1, snap.WeekDays[4].Total, "March 15")

	assert.Equal(t, 3, snap.History.Total)
	require.NotEmpty(t, snap.TopProducts)
	assert.Equal(t, "Product A", snap.TopProducts[0].Name)
	assert.Equal(t, 19, snap.TopProducts[0].Quantity)

	require.Len(t, snap.Departments, 1)
	assert.Equal(t, "Unassigned", snap.Departments[0].Name)
	assert.Equal(t, 1, snap.Departments[0].Completed)
	assert.Equal(t, 2, snap.Departments[0].Open)

	out := dashboard.Render(snap)
	assert.Contains(t, out, "Product A")
	assert.Contains(t, out, "2024-03-13")
}

func TestBuild_SourceFailure(t *testing.T) {
	b := dashboard.New(failingSource{}, dashboard.Options{Logger: zerolog.Nop()})
	_, err := b.Build(context.Background())
	assert.Error(t, err)
}

func TestRender_EmptySnapshot(t *testing.T) {
	s := testutil.NewTestStore(t)
	b := dashboard.New(s, dashboard.Options{
		WeekStartsOn: time.Monday,
		Now:          func() time.Time { return testutil.Day(2024, time.March, 13) },
		Logger:       zerolog.Nop(),
	})
	snap, err := b.Build(context.Background())
	require.NoError(t, err)

	out := dashboard.Render(snap)
	assert.Contains(t, out, "Nothing scheduled today.")
	assert.Contains(t, out, "No production recorded.")
}
