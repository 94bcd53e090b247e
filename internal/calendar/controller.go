// Package calendar drives the month, week and day views of the production
// calendar: which window is shown, which items are loaded for it, and the
// reorder, status and delete actions available on a single day.
//
// The Controller is not safe for concurrent use. It is meant to be owned by
// a Bubble Tea model: every blocking call runs inside a returned tea.Cmd and
// its result comes back through Update.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/nhle/production-calendar/internal/aggregate"
	"github.com/nhle/production-calendar/internal/datebucket"
	"github.com/nhle/production-calendar/internal/model"
	"github.com/nhle/production-calendar/internal/ordering"
)

var (
	// ErrNotInDayView is returned by item actions outside the Day view.
	ErrNotInDayView = errors.New("action only available in day view")

	// ErrItemNotFound is returned when an action names an item that is not
	// in the current day's list.
	ErrItemNotFound = errors.New("work item not in current day")
)

// anchorPreferenceKey stores the last displayed month as "YYYY-MM".
const anchorPreferenceKey = "calendar.anchor_month"

const anchorLayout = "2006-01"

// Mode is the active calendar view.
type Mode int

const (
	ModeMonth Mode = iota
	ModeWeek
	ModeDay
)

// String returns the lowercase name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeMonth:
		return "month"
	case ModeWeek:
		return "week"
	case ModeDay:
		return "day"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

func (m Mode) granularity() datebucket.Granularity {
	switch m {
	case ModeWeek:
		return datebucket.Week
	case ModeDay:
		return datebucket.Day
	default:
		return datebucket.Month
	}
}

// Options configures a Controller.
type Options struct {
	WeekStartsOn time.Weekday

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	Logger zerolog.Logger

	// RequestTimeout bounds every repository call. Zero means 30s.
	RequestTimeout time.Duration

	// AtomicReorder writes a delta in one call when the repository
	// implements BatchOrderWriter.
	AtomicReorder bool
}

// Controller is the calendar view state machine.
type Controller struct {
	repo  Repository
	prefs Preferences
	opts  Options
	log   zerolog.Logger

	mode   Mode
	anchor time.Time

	// generation increases on every window selection and reload. Results
	// tagged with an older generation are stale.
	generation uint64

	loading bool
	loadErr error
	items   []model.WorkItem
	dayList ordering.List

	selectedID string
	notice     string

	// saving counts writes in flight or queued. dirty is set when state
	// that may predate one of them was installed; the window is reloaded
	// once they all settle.
	saving int
	dirty  bool

	// At most one order commit is in flight. Later reorders wait in queued,
	// one entry per day holding that day's newest order.
	committing bool
	queued     []orderCommit
}

// orderCommit is the full order of one day to be persisted.
type orderCommit struct {
	day   time.Time
	delta []model.OrderAssignment
}

// New creates a controller in Month view anchored on the current month, or
// on the month stored in prefs if there is one. prefs may be nil.
func New(repo Repository, prefs Preferences, opts Options) *Controller {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	c := &Controller{
		repo:   repo,
		prefs:  prefs,
		opts:   opts,
		log:    opts.Logger.With().Str("component", "calendar").Logger(),
		mode:   ModeMonth,
		anchor: datebucket.Normalize(opts.Now()),
	}
	c.restoreAnchor()
	return c
}

// restoreAnchor moves the anchor to the persisted month unless it is the
// current one.
func (c *Controller) restoreAnchor() {
	if c.prefs == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.opts.RequestTimeout)
	defer cancel()

	raw, ok, err := c.prefs.GetPreference(ctx, anchorPreferenceKey)
	if err != nil {
		c.log.Warn().Err(err).Msg("reading stored calendar month")
		return
	}
	if !ok {
		return
	}

	month, err := time.ParseInLocation(anchorLayout, raw, c.anchor.Location())
	if err != nil {
		c.log.Warn().Str("value", raw).Msg("ignoring malformed stored calendar month")
		return
	}
	if month.Year() == c.anchor.Year() && month.Month() == c.anchor.Month() {
		return
	}
	c.anchor = month
}

// Init returns the command loading the initial window.
func (c *Controller) Init() tea.Cmd {
	return c.Reload()
}

// === Accessors ===

// Mode returns the active view.
func (c *Controller) Mode() Mode { return c.mode }

// Anchor returns the reference date of the active view.
func (c *Controller) Anchor() time.Time { return c.anchor }

// Window returns the date range the active view fetches.
func (c *Controller) Window() datebucket.Window {
	return datebucket.WindowFor(c.mode.granularity(), c.anchor, c.opts.WeekStartsOn)
}

// Grid returns the padded month grid for Month view.
func (c *Controller) Grid() datebucket.Window {
	return datebucket.MonthGrid(c.anchor, c.opts.WeekStartsOn)
}

// WeekStartsOn returns the configured first day of the week.
func (c *Controller) WeekStartsOn() time.Weekday { return c.opts.WeekStartsOn }

// SelectedDay returns the day shown in Day view.
func (c *Controller) SelectedDay() (time.Time, bool) {
	if c.mode != ModeDay {
		return time.Time{}, false
	}
	return c.anchor, true
}

// Generation returns the current window selection generation.
func (c *Controller) Generation() uint64 { return c.generation }

// Loading reports whether a fetch for the current window is in flight.
func (c *Controller) Loading() bool { return c.loading }

// Err returns the error of the last failed fetch, if any.
func (c *Controller) Err() error { return c.loadErr }

// Notice returns the transient message left by the last failed write.
func (c *Controller) Notice() string { return c.notice }

// DismissNotice clears the transient notice.
func (c *Controller) DismissNotice() { c.notice = "" }

// Saving reports whether any write is still in flight.
func (c *Controller) Saving() bool { return c.saving > 0 }

// Items returns every loaded item of the current window.
func (c *Controller) Items() []model.WorkItem {
	out := make([]model.WorkItem, len(c.items))
	copy(out, c.items)
	return out
}

// Buckets groups the loaded items by day for every day of the window, each
// bucket in display order.
func (c *Controller) Buckets() []model.DayBucket {
	byDay := make(map[string][]model.WorkItem)
	for _, it := range c.items {
		key := datebucket.DayKey(it.Day)
		byDay[key] = append(byDay[key], it)
	}

	days := c.Window().Days()
	buckets := make([]model.DayBucket, len(days))
	for i, d := range days {
		buckets[i] = model.DayBucket{
			Date:  d,
			Items: ordering.FromItems(byDay[datebucket.DayKey(d)]).Items(),
		}
	}
	return buckets
}

// DayItems returns the ordered items of the selected day. It is empty
// outside Day view.
func (c *Controller) DayItems() []model.WorkItem {
	return c.dayList.Items()
}

// Summary aggregates the loaded items of the current window.
func (c *Controller) Summary() aggregate.WindowAggregate {
	return aggregate.Aggregate(c.items)
}

// Selected returns the selected work item.
func (c *Controller) Selected() (model.WorkItem, bool) {
	if c.selectedID == "" {
		return model.WorkItem{}, false
	}
	return c.dayList.Get(c.selectedID)
}

// Select marks an item of the current day as selected.
func (c *Controller) Select(id string) bool {
	if c.mode != ModeDay || c.dayList.IndexOf(id) < 0 {
		return false
	}
	c.selectedID = id
	return true
}

// ClearSelection drops the selected item.
func (c *Controller) ClearSelection() { c.selectedID = "" }

// === Transitions ===

// SelectDay drills down one level: Month to the week containing d, Week to
// the day d. It is a no-op in Day view.
func (c *Controller) SelectDay(d time.Time) tea.Cmd {
	switch c.mode {
	case ModeMonth:
		return c.enter(ModeWeek, datebucket.Normalize(d))
	case ModeWeek:
		return c.enter(ModeDay, datebucket.Normalize(d))
	default:
		return nil
	}
}

// Back returns to the enclosing view: Day to Week, Week to Month. It is a
// no-op in Month view.
func (c *Controller) Back() tea.Cmd {
	switch c.mode {
	case ModeDay:
		return c.enter(ModeWeek, c.anchor)
	case ModeWeek:
		return c.enter(ModeMonth, c.anchor)
	default:
		return nil
	}
}

// Navigate shifts the displayed month or week by one step. Day view has no
// navigation.
func (c *Controller) Navigate(dir datebucket.Direction) tea.Cmd {
	if c.mode == ModeDay {
		return nil
	}
	return c.enter(c.mode, datebucket.Shift(c.anchor, c.mode.granularity(), int(dir)))
}

// Today jumps to today's date in the current view.
func (c *Controller) Today() tea.Cmd {
	return c.enter(c.mode, datebucket.Normalize(c.opts.Now()))
}

// JumpTo shows the window of the given mode containing d.
func (c *Controller) JumpTo(mode Mode, d time.Time) tea.Cmd {
	return c.enter(mode, datebucket.Normalize(d))
}

// enter switches to a new window. The previous items are dropped at once so
// nothing of the old window is shown under the new one.
func (c *Controller) enter(mode Mode, anchor time.Time) tea.Cmd {
	prevMonth := c.anchor.Format(anchorLayout)

	c.mode = mode
	c.anchor = anchor
	c.selectedID = ""
	c.items = nil
	c.dayList = ordering.List{}

	c.log.Debug().
		Str("mode", mode.String()).
		Str("window", c.Window().String()).
		Msg("entering window")

	cmds := []tea.Cmd{c.Reload()}
	if month := anchor.Format(anchorLayout); month != prevMonth {
		cmds = append(cmds, c.saveAnchor(month))
	}
	return tea.Batch(cmds...)
}

// Reload fetches the current window again. Any fetch still in flight
// becomes stale.
func (c *Controller) Reload() tea.Cmd {
	c.generation++
	c.loading = true
	return c.fetch(c.generation, c.Window())
}

func (c *Controller) saveAnchor(month string) tea.Cmd {
	if c.prefs == nil {
		return nil
	}
	prefs := c.prefs
	timeout := c.opts.RequestTimeout
	log := c.log
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := prefs.SetPreference(ctx, anchorPreferenceKey, month); err != nil {
			log.Warn().Err(err).Msg("storing calendar month")
		}
		return nil
	}
}

// fetch returns a command loading every item of window w.
func (c *Controller) fetch(gen uint64, w datebucket.Window) tea.Cmd {
	repo := c.repo
	timeout := c.opts.RequestTimeout
	log := c.log
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		days, err := repo.FetchDaysInRange(ctx, w.Start, w.End)
		if err != nil {
			return ItemsLoadedMsg{Generation: gen, Window: w, Err: fmt.Errorf("fetching days: %w", err)}
		}
		if len(days) == 0 {
			return ItemsLoadedMsg{Generation: gen, Window: w}
		}

		ids := make([]string, len(days))
		for i, d := range days {
			ids[i] = d.ID
		}
		raw, err := repo.FetchItemsForDays(ctx, ids)
		if err != nil {
			return ItemsLoadedMsg{Generation: gen, Window: w, Err: fmt.Errorf("fetching work items: %w", err)}
		}

		items := make([]model.WorkItem, 0, len(raw))
		for _, it := range raw {
			if err := it.Validate(); err != nil {
				log.Warn().Err(err).Msg("dropping invalid work item")
				continue
			}
			if !w.Contains(it.Day) {
				continue
			}
			items = append(items, it)
		}
		return ItemsLoadedMsg{Generation: gen, Window: w, Items: items}
	}
}

// === Day actions ===

// lookup returns the item with id in the current day.
func (c *Controller) lookup(id string) (model.WorkItem, error) {
	if c.mode != ModeDay {
		return model.WorkItem{}, ErrNotInDayView
	}
	it, ok := c.dayList.Get(id)
	if !ok {
		return model.WorkItem{}, fmt.Errorf("%s: %w", id, ErrItemNotFound)
	}
	return it, nil
}

// Move moves an item to position to within the day and commits the new
// order. Unknown items and moves that change nothing return a nil command.
func (c *Controller) Move(id string, to int) (tea.Cmd, error) {
	if c.mode != ModeDay {
		return nil, ErrNotInDayView
	}
	return c.reorder(c.dayList.Move(id, to)), nil
}

// MoveOnto moves the dragged item to the position of the item it was
// dropped on.
func (c *Controller) MoveOnto(activeID, overID string) (tea.Cmd, error) {
	if c.mode != ModeDay {
		return nil, ErrNotInDayView
	}
	return c.reorder(c.dayList.MoveOnto(activeID, overID)), nil
}

// reorder applies moved locally and returns the command persisting it. A
// reorder made while another commit is in flight is queued and the command
// is nil; it is sent once the earlier commit settles.
func (c *Controller) reorder(moved ordering.List) tea.Cmd {
	if moved.SameOrder(c.dayList) {
		return nil
	}

	c.dayList = moved.Reindexed()
	c.syncDayItems()

	if c.saving > 0 {
		c.dirty = true
	}

	next := orderCommit{day: c.anchor, delta: moved.PersistenceDelta()}
	if c.committing {
		c.enqueue(next)
		return nil
	}
	c.saving++
	return c.startCommit(next)
}

// enqueue holds oc until the commit in flight settles. A queued order of
// the same day is superseded, since every delta covers the whole day.
func (c *Controller) enqueue(oc orderCommit) {
	for i, q := range c.queued {
		if datebucket.SameDay(q.day, oc.day) {
			c.queued[i] = oc
			c.log.Debug().Str("day", datebucket.DayKey(oc.day)).Msg("superseding queued order")
			return
		}
	}
	c.queued = append(c.queued, oc)
	c.saving++
	c.log.Debug().Str("day", datebucket.DayKey(oc.day)).Msg("queueing order behind commit in flight")
}

// startNextCommit sends the oldest queued order, if any.
func (c *Controller) startNextCommit() tea.Cmd {
	if len(c.queued) == 0 {
		return nil
	}
	next := c.queued[0]
	c.queued = c.queued[1:]
	return c.startCommit(next)
}

func (c *Controller) startCommit(oc orderCommit) tea.Cmd {
	c.committing = true
	c.log.Debug().Int("items", len(oc.delta)).Str("day", datebucket.DayKey(oc.day)).Msg("committing order")
	return c.commitOrder(c.generation, oc)
}

// dropQueued discards queued orders of day. Their deltas assumed the
// failed commit had landed.
func (c *Controller) dropQueued(day time.Time) {
	kept := c.queued[:0]
	for _, q := range c.queued {
		if datebucket.SameDay(q.day, day) {
			c.saving--
			continue
		}
		kept = append(kept, q)
	}
	c.queued = kept
}

// commitOrder writes the delta either atomically or one item at a time.
// Per-item writes are issued in ascending position order and every write
// is attempted; the message reports all failures once they settled.
func (c *Controller) commitOrder(gen uint64, oc orderCommit) tea.Cmd {
	repo := c.repo
	timeout := c.opts.RequestTimeout
	atomic := c.opts.AtomicReorder
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var err error
		if bw, ok := repo.(BatchOrderWriter); ok && atomic {
			err = bw.ApplyOrderDelta(ctx, oc.delta)
		} else {
			var errs []error
			for _, a := range oc.delta {
				if werr := repo.WriteItemOrderIndex(ctx, a.ItemID, a.Index); werr != nil {
					errs = append(errs, fmt.Errorf("writing order of %s: %w", a.ItemID, werr))
				}
			}
			err = errors.Join(errs...)
		}
		return OrderCommittedMsg{Generation: gen, Day: oc.day, Delta: oc.delta, Err: err}
	}
}

// StartProduction moves a pending item to IN_PRODUCTION.
func (c *Controller) StartProduction(id string) (tea.Cmd, error) {
	it, err := c.lookup(id)
	if err != nil {
		return nil, err
	}
	if !model.CanTransition(it.Status, model.StatusInProduction) {
		return nil, fmt.Errorf("%s is %s: %w", id, it.Status.Label(), model.ErrTransitionNotAllowed)
	}

	it.Status = model.StatusInProduction
	c.dayList = c.dayList.Replace(it)
	c.syncDayItems()
	c.saving++

	repo := c.repo
	timeout := c.opts.RequestTimeout
	gen := c.generation
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := repo.UpdateItemStatus(ctx, id, model.StatusInProduction)
		return StatusUpdatedMsg{Generation: gen, ItemID: id, Status: model.StatusInProduction, Err: err}
	}, nil
}

// Finalize hands an in-production item to the finalization flow. Nothing
// is written here; the returned command emits FinalizeRequestedMsg.
func (c *Controller) Finalize(id string) (tea.Cmd, error) {
	it, err := c.lookup(id)
	if err != nil {
		return nil, err
	}
	if !model.CanTransition(it.Status, model.StatusCompleted) {
		return nil, fmt.Errorf("%s is %s: %w", id, it.Status.Label(), model.ErrTransitionNotAllowed)
	}
	return func() tea.Msg { return FinalizeRequestedMsg{ItemID: id} }, nil
}

// Delete removes an item of any status from the day and from storage, and
// clears the selection.
func (c *Controller) Delete(id string) (tea.Cmd, error) {
	if _, err := c.lookup(id); err != nil {
		return nil, err
	}

	c.dayList = c.dayList.Remove(id)
	c.syncDayItems()
	c.selectedID = ""
	c.saving++

	repo := c.repo
	timeout := c.opts.RequestTimeout
	gen := c.generation
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := repo.DeleteItem(ctx, id)
		return ItemDeletedMsg{Generation: gen, ItemID: id, Err: err}
	}, nil
}

// syncDayItems mirrors the day list into the window items.
func (c *Controller) syncDayItems() {
	c.items = c.dayList.Items()
}

// === Results ===

// Update applies a command result. It returns a follow-up command when the
// result requires reconciliation.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case ItemsLoadedMsg:
		c.applyLoaded(msg)
		return nil

	case OrderCommittedMsg:
		c.committing = false
		if msg.Err != nil {
			c.dropQueued(msg.Day)
			next := c.startNextCommit()
			return tea.Batch(next, c.writeFailed("Saving the new order failed", msg.Err))
		}
		next := c.startNextCommit()
		return tea.Batch(next, c.settle())

	case StatusUpdatedMsg:
		if msg.Err != nil {
			return c.writeFailed("Updating the status failed", msg.Err)
		}
		return c.settle()

	case ItemDeletedMsg:
		if msg.Err != nil {
			return c.writeFailed("Deleting the item failed", msg.Err)
		}
		return c.settle()
	}
	return nil
}

// applyLoaded installs a fetch result unless it is stale.
func (c *Controller) applyLoaded(msg ItemsLoadedMsg) {
	if msg.Generation != c.generation {
		c.log.Debug().
			Uint64("generation", msg.Generation).
			Uint64("current", c.generation).
			Msg("discarding stale fetch")
		return
	}

	c.loading = false
	if msg.Err != nil {
		c.log.Warn().Err(msg.Err).Str("window", msg.Window.String()).Msg("loading window failed")
		c.loadErr = msg.Err
		c.items = nil
		c.dayList = ordering.List{}
		c.selectedID = ""
		return
	}

	// A write still in flight may not be reflected yet.
	if c.saving > 0 {
		c.dirty = true
	}

	c.loadErr = nil
	c.items = msg.Items
	if c.mode == ModeDay {
		c.dayList = ordering.FromItems(msg.Items)
	} else {
		c.dayList = ordering.List{}
	}
	if c.selectedID != "" && c.dayList.IndexOf(c.selectedID) < 0 {
		c.selectedID = ""
	}
}

// settle accounts for one finished write.
func (c *Controller) settle() tea.Cmd {
	if c.saving > 0 {
		c.saving--
	}
	if c.saving == 0 && c.dirty {
		c.dirty = false
		return c.Reload()
	}
	return nil
}

// writeFailed records a notice and resynchronizes from storage.
func (c *Controller) writeFailed(notice string, err error) tea.Cmd {
	if c.saving > 0 {
		c.saving--
	}
	c.dirty = false
	c.log.Warn().Err(err).Msg(notice)
	c.notice = notice + "; reloading"
	return c.Reload()
}
