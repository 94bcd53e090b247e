// Package dashboard builds the production overview: today's progress, the
// recent daily series, the current week and the leading products and
// departments.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/nhle/production-calendar/internal/aggregate"
	"github.com/nhle/production-calendar/internal/datebucket"
	"github.com/nhle/production-calendar/internal/model"
	"github.com/nhle/production-calendar/internal/store"
)

const (
	// HistoryDays is the number of days, ending today, the product and
	// department rankings cover.
	HistoryDays = 30

	// TrendDays is the length of the daily series.
	TrendDays = 7

	// TopProductCount caps the product ranking.
	TopProductCount = 5
)

// Source queries work items by production day range.
type Source interface {
	SearchItems(ctx context.Context, filter store.ItemFilter) ([]model.WorkItem, error)
}

// Snapshot is one computed dashboard.
type Snapshot struct {
	Date  time.Time
	Today aggregate.WindowAggregate

	Trend []aggregate.DayAggregate

	Week      datebucket.Window
	WeekDays  []aggregate.DayAggregate
	WeekTotal aggregate.WindowAggregate

	History     aggregate.WindowAggregate
	TopProducts []aggregate.ProductTotal
	Departments []aggregate.DepartmentTotal
}

// Options configures a Builder.
type Options struct {
	WeekStartsOn time.Weekday
	Now          func() time.Time
	Logger       zerolog.Logger
}

// Builder computes dashboard snapshots.
type Builder struct {
	src  Source
	opts Options
	log  zerolog.Logger
}

// New creates a Builder reading from src.
func New(src Source, opts Options) *Builder {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Builder{
		src:  src,
		opts: opts,
		log:  opts.Logger.With().Str("component", "dashboard").Logger(),
	}
}

// Build loads the history and the current week concurrently and reduces
// them into a Snapshot.
func (b *Builder) Build(ctx context.Context) (Snapshot, error) {
	today := datebucket.Normalize(b.opts.Now())
	history := datebucket.Window{Start: datebucket.AddDays(today, -(HistoryDays - 1)), End: today}
	week := datebucket.WeekWindow(today, b.opts.WeekStartsOn)

	var historyItems, weekItems []model.WorkItem

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := b.fetch(gctx, history)
		historyItems = items
		return err
	})
	g.Go(func() error {
		items, err := b.fetch(gctx, week)
		weekItems = items
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	b.log.Debug().
		Int("history", len(historyItems)).
		Int("week", len(weekItems)).
		Msg("dashboard loaded")

	trend := aggregate.ByDay(historyItems, datebucket.Window{
		Start: datebucket.AddDays(today, -(TrendDays - 1)),
		End:   today,
	})

	return Snapshot{
		Date:        today,
		Today:       trend[len(trend)-1].WindowAggregate,
		Trend:       trend,
		Week:        week,
		WeekDays:    aggregate.ByDay(weekItems, week),
		WeekTotal:   aggregate.Aggregate(weekItems),
		History:     aggregate.Aggregate(historyItems),
		TopProducts: aggregate.TopProducts(historyItems, TopProductCount),
		Departments: aggregate.ByDepartment(historyItems),
	}, nil
}

func (b *Builder) fetch(ctx context.Context, w datebucket.Window) ([]model.WorkItem, error) {
	items, err := b.src.SearchItems(ctx, store.ItemFilter{
		From:   &w.Start,
		To:     &w.End,
		SortBy: "day",
	})
	if err != nil {
		return nil, fmt.Errorf("loading items for %s: %w", w, err)
	}
	return items, nil
}
