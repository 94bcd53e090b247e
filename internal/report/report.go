// Package report lists work items by status with a free-text search and
// remembers the last status looked at.
package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/nhle/production-calendar/internal/model"
	"github.com/nhle/production-calendar/internal/store"
)

// statusPreferenceKey holds the last selected report status.
const statusPreferenceKey = "report.status"

// Source queries work items.
type Source interface {
	SearchItems(ctx context.Context, filter store.ItemFilter) ([]model.WorkItem, error)
	CountItemsByStatus(ctx context.Context) (map[model.Status]int, error)
}

// Preferences stores the last selected status between runs.
type Preferences interface {
	GetPreference(ctx context.Context, key string) (string, bool, error)
	SetPreference(ctx context.Context, key, value string) error
}

// Query selects the items of a report.
type Query struct {
	// Status is the status to list. Empty means the last one used, or
	// PENDING the first time.
	Status model.Status

	// Search matches code, product name, batch number and department.
	Search string

	Limit int
}

// Result is one report.
type Result struct {
	Status model.Status
	Search string
	Items  []model.WorkItem
	Counts map[model.Status]int
}

// Service runs reports.
type Service struct {
	src   Source
	prefs Preferences
	log   zerolog.Logger
}

// New creates a Service. prefs may be nil, in which case nothing is
// remembered.
func New(src Source, prefs Preferences, logger zerolog.Logger) *Service {
	return &Service{
		src:   src,
		prefs: prefs,
		log:   logger.With().Str("component", "report").Logger(),
	}
}

// LastStatus returns the status of the previous report, or PENDING.
func (s *Service) LastStatus(ctx context.Context) model.Status {
	if s.prefs == nil {
		return model.StatusPending
	}
	raw, ok, err := s.prefs.GetPreference(ctx, statusPreferenceKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("reading last report status")
		return model.StatusPending
	}
	if !ok {
		return model.StatusPending
	}
	status, err := model.ParseStatus(raw)
	if err != nil {
		s.log.Warn().Str("value", raw).Msg("ignoring stored report status")
		return model.StatusPending
	}
	return status
}

// Run loads the items and the per-status counts concurrently and stores
// the status for next time.
func (s *Service) Run(ctx context.Context, q Query) (Result, error) {
	status := q.Status
	if status == "" {
		status = s.LastStatus(ctx)
	}
	if !status.Valid() {
		return Result{}, fmt.Errorf("unknown status %q", status)
	}
	search := strings.TrimSpace(q.Search)

	filter := store.ItemFilter{
		Status:   &status,
		SortBy:   "day",
		SortDesc: true,
		Limit:    q.Limit,
	}
	if search != "" {
		filter.Query = &search
	}

	res := Result{Status: status, Search: search}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := s.src.SearchItems(gctx, filter)
		if err != nil {
			return fmt.Errorf("searching items: %w", err)
		}
		res.Items = items
		return nil
	})
	g.Go(func() error {
		counts, err := s.src.CountItemsByStatus(gctx)
		if err != nil {
			return fmt.Errorf("counting items: %w", err)
		}
		res.Counts = counts
		return nil
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	if s.prefs != nil {
		if err := s.prefs.SetPreference(ctx, statusPreferenceKey, string(status)); err != nil {
			s.log.Warn().Err(err).Msg("storing report status")
		}
	}
	return res, nil
}
