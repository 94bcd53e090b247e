package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/nhle/production-calendar/internal/datebucket"
	"github.com/nhle/production-calendar/internal/model"
)

// itemColumns is the select list every work item query shares.
const itemColumns = `
	p.id, p.production_day_id, d.date,
	p.code, p.product_name, p.department, p.batch_number, p.transaction_number,
	p.quantity, p.programmed_quantity, p.has_divergence,
	p.status, p.display_order, p.created_at`

const itemFrom = `
	FROM productions p
	INNER JOIN production_days d ON d.id = p.production_day_id`

// FetchItemsForDays returns every work item of the given production days,
// each annotated with its day's date. Items come back in display order:
// explicit order index first (nulls last), then creation time.
func (s *SQLiteStore) FetchItemsForDays(
	ctx context.Context,
	dayIDs []string,
) ([]model.WorkItem, error) {
	if len(dayIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(
		"SELECT"+itemColumns+itemFrom+`
		WHERE p.production_day_id IN (?)
		ORDER BY d.date, p.display_order IS NULL, p.display_order, p.created_at, p.id`,
		dayIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("building work item query: %w", err)
	}

	return s.queryItems(ctx, s.db.Rebind(query), args...)
}

// GetItemByID retrieves a single work item.
func (s *SQLiteStore) GetItemByID(
	ctx context.Context,
	id string,
) (*model.WorkItem, error) {
	row := s.db.QueryRowxContext(ctx,
		"SELECT"+itemColumns+itemFrom+" WHERE p.id = ?", id)

	item, err := s.scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("work item %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting work item %s: %w", id, err)
	}
	return &item, nil
}

// CreateItem inserts a new work item on item.Day, creating the production
// day if needed. New items start PENDING with no order index.
func (s *SQLiteStore) CreateItem(
	ctx context.Context,
	item model.WorkItem,
) (model.WorkItem, error) {
	if strings.TrimSpace(item.Code) == "" {
		return model.WorkItem{}, fmt.Errorf("work item code must not be empty")
	}
	if strings.TrimSpace(item.ProductName) == "" {
		return model.WorkItem{}, fmt.Errorf("work item product name must not be empty")
	}
	if item.Day.IsZero() {
		return model.WorkItem{}, fmt.Errorf("work item day must be set")
	}

	day, err := s.EnsureDay(ctx, item.Day)
	if err != nil {
		return model.WorkItem{}, err
	}

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	item.DayID = day.ID
	item.Day = day.Date
	item.Status = model.StatusPending
	item.OrderIndex = nil
	item.CreatedAt = time.Now().UTC()
	if item.ProgrammedQuantity == 0 {
		item.ProgrammedQuantity = item.Quantity
	}

	if err := item.Validate(); err != nil {
		return model.WorkItem{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO productions (
			id, production_day_id, code, product_name, department, batch_number,
			transaction_number, quantity, programmed_quantity, has_divergence,
			status, display_order, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.DayID, item.Code, item.ProductName, item.Department, item.BatchNumber,
		item.TransactionNumber, item.Quantity, item.ProgrammedQuantity, boolToInt(item.HasDivergence),
		string(item.Status), nil, item.CreatedAt,
	)
	if err != nil {
		return model.WorkItem{}, fmt.Errorf("creating work item: %w", err)
	}
	return item, nil
}

// SearchItems retrieves work items matching the filter.
func (s *SQLiteStore) SearchItems(
	ctx context.Context,
	filter ItemFilter,
) ([]model.WorkItem, error) {
	query, args := buildItemQuery(filter)
	return s.queryItems(ctx, query, args...)
}

// CountItemsByStatus returns the number of work items per status. Every
// known status is present in the result.
func (s *SQLiteStore) CountItemsByStatus(
	ctx context.Context,
) (map[model.Status]int, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT status, COUNT(*) FROM productions GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("counting work items: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.Status]int, len(model.Statuses))
	for _, st := range model.Statuses {
		counts[st] = 0
	}
	for rows.Next() {
		var (
			raw   string
			count int
		)
		if err := rows.Scan(&raw, &count); err != nil {
			return nil, fmt.Errorf("scanning status count: %w", err)
		}
		st, err := model.ParseStatus(raw)
		if err != nil {
			return nil, err
		}
		counts[st] = count
	}
	return counts, rows.Err()
}

// WriteItemOrderIndex persists one explicit order index.
func (s *SQLiteStore) WriteItemOrderIndex(
	ctx context.Context,
	id string,
	index int,
) error {
	if index < 0 {
		return fmt.Errorf("order index must not be negative, got %d", index)
	}
	result, err := s.db.ExecContext(ctx,
		"UPDATE productions SET display_order = ? WHERE id = ?", index, id)
	if err != nil {
		return fmt.Errorf("writing order index for %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("work item %s: %w", id, ErrNotFound)
	}
	return nil
}

// ApplyOrderDelta writes every assignment of a reorder in one transaction.
// Either all indices are stored or none are.
func (s *SQLiteStore) ApplyOrderDelta(
	ctx context.Context,
	delta []model.OrderAssignment,
) error {
	if len(delta) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx,
		"UPDATE productions SET display_order = ? WHERE id = ?")
	if err != nil {
		return fmt.Errorf("preparing order statement: %w", err)
	}
	defer stmt.Close()

	for _, a := range delta {
		if a.Index < 0 {
			return fmt.Errorf("order index for %s must not be negative", a.ItemID)
		}
		result, err := stmt.ExecContext(ctx, a.Index, a.ItemID)
		if err != nil {
			return fmt.Errorf("writing order index for %s: %w", a.ItemID, err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return fmt.Errorf("work item %s: %w", a.ItemID, ErrNotFound)
		}
	}

	return tx.Commit()
}

// UpdateItemStatus moves a work item one step along its lifecycle. Only
// PENDING -> IN_PRODUCTION goes through here; completion requires
// FinalizeItem.
func (s *SQLiteStore) UpdateItemStatus(
	ctx context.Context,
	id string,
	status model.Status,
) error {
	if status != model.StatusInProduction {
		return fmt.Errorf("setting %s to %s: %w", id, status, model.ErrTransitionNotAllowed)
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE productions SET status = ? WHERE id = ? AND status = ?",
		string(status), id, string(model.StatusPending),
	)
	if err != nil {
		return fmt.Errorf("updating status of %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows > 0 {
		return nil
	}

	if _, err := s.GetItemByID(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("setting %s to %s: %w", id, status, model.ErrTransitionNotAllowed)
}

// FinalizeItem completes an in-production work item, recording the realised
// quantity and transaction number. The divergence flag is recomputed
// against the programmed quantity.
func (s *SQLiteStore) FinalizeItem(
	ctx context.Context,
	id string,
	f model.Finalization,
) error {
	if f.Quantity < 0 {
		return fmt.Errorf("finalized quantity must not be negative, got %d", f.Quantity)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		raw        string
		programmed int
	)
	err = tx.QueryRowxContext(ctx,
		"SELECT status, programmed_quantity FROM productions WHERE id = ?", id,
	).Scan(&raw, &programmed)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("work item %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("loading work item %s: %w", id, err)
	}

	current, err := model.ParseStatus(raw)
	if err != nil {
		return fmt.Errorf("work item %s: %w", id, err)
	}
	if !model.CanTransition(current, model.StatusCompleted) {
		return fmt.Errorf("finalizing %s from %s: %w", id, current, model.ErrTransitionNotAllowed)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE productions SET
			status = ?, quantity = ?, transaction_number = ?, has_divergence = ?
		WHERE id = ?`,
		string(model.StatusCompleted), f.Quantity, strings.TrimSpace(f.TransactionNumber),
		boolToInt(f.Quantity != programmed), id,
	)
	if err != nil {
		return fmt.Errorf("finalizing work item %s: %w", id, err)
	}

	return tx.Commit()
}

// DeleteItem removes a work item by ID.
func (s *SQLiteStore) DeleteItem(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM productions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting work item %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("work item %s: %w", id, ErrNotFound)
	}
	return nil
}

// queryItems runs a work item select and scans every row. Malformed rows
// are logged and skipped so one bad row does not hide the rest.
func (s *SQLiteStore) queryItems(
	ctx context.Context,
	query string,
	args ...interface{},
) ([]model.WorkItem, error) {
	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying work items: %w", err)
	}
	defer rows.Close()

	var items []model.WorkItem
	for rows.Next() {
		item, err := s.scanItem(rows)
		if errors.Is(err, ErrMalformedRow) {
			log.Warn().Err(err).Msg("skipping malformed work item row")
			continue
		}
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// buildItemQuery constructs the SQL query and args for an ItemFilter.
func buildItemQuery(filter ItemFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, "p.status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.Query != nil && strings.TrimSpace(*filter.Query) != "" {
		conditions = append(conditions,
			"(p.code LIKE ? OR p.product_name LIKE ? OR p.batch_number LIKE ? OR p.department LIKE ?)")
		q := "%" + strings.TrimSpace(*filter.Query) + "%"
		args = append(args, q, q, q, q)
	}
	if filter.From != nil {
		conditions = append(conditions, "d.date >= ?")
		args = append(args, datebucket.DayKey(*filter.From))
	}
	if filter.To != nil {
		conditions = append(conditions, "d.date <= ?")
		args = append(args, datebucket.DayKey(*filter.To))
	}

	query := "SELECT" + itemColumns + itemFrom
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	// Sort.
	sortBy := "p.created_at"
	if filter.SortBy != "" {
		allowed := map[string]string{
			"created_at":   "p.created_at",
			"day":          "d.date",
			"code":         "p.code",
			"product_name": "p.product_name",
			"quantity":     "p.quantity",
			"status":       "p.status",
		}
		if col, ok := allowed[filter.SortBy]; ok {
			sortBy = col
		}
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s, p.id %s", sortBy, direction, direction)

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		if filter.Limit <= 0 {
			query += " LIMIT -1"
		}
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	return query, args
}

// scanItem scans a work item row selected with itemColumns and validates
// the result. Rows that scan but do not form a valid item wrap
// ErrMalformedRow.
func (s *SQLiteStore) scanItem(row rowScanner) (model.WorkItem, error) {
	var (
		item       model.WorkItem
		dateKey    string
		divergence int
		rawStatus  string
		order      sql.NullInt64
	)

	err := row.Scan(
		&item.ID, &item.DayID, &dateKey,
		&item.Code, &item.ProductName, &item.Department, &item.BatchNumber, &item.TransactionNumber,
		&item.Quantity, &item.ProgrammedQuantity, &divergence,
		&rawStatus, &order, &item.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.WorkItem{}, err
	}
	if err != nil {
		return model.WorkItem{}, fmt.Errorf("scanning work item row: %w", err)
	}

	item.Day, err = datebucket.ParseDay(dateKey, s.loc)
	if err != nil {
		return model.WorkItem{}, fmt.Errorf("%w: work item %s: %w", ErrMalformedRow, item.ID, err)
	}
	item.Status, err = model.ParseStatus(rawStatus)
	if err != nil {
		return model.WorkItem{}, fmt.Errorf("%w: work item %s: %w", ErrMalformedRow, item.ID, err)
	}
	item.HasDivergence = divergence != 0
	if order.Valid {
		idx := int(order.Int64)
		item.OrderIndex = &idx
	}

	if err := item.Validate(); err != nil {
		return model.WorkItem{}, fmt.Errorf("%w: %w", ErrMalformedRow, err)
	}
	return item, nil
}
