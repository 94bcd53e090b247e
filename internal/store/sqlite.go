package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/production-calendar/internal/datebucket"
	"github.com/nhle/production-calendar/internal/model"
)

// openTimeout bounds connecting and migrating at startup.
const openTimeout = 30 * time.Second

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB

	// loc is the location production day dates are parsed into.
	loc *time.Location
}

// NewSQLiteStore opens the calendar database at dbPath, creating it and its
// directory when missing, and migrates it to the latest schema. ":memory:"
// opens a private in-memory database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	memory := dbPath == ":memory:"
	if !memory {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	// Pragmas in the DSN apply to every pooled connection.
	pragmas := []string{"foreign_keys(1)", "busy_timeout(5000)"}
	if !memory {
		pragmas = append(pragmas, "journal_mode(WAL)")
	}
	dsn := "file:" + dbPath + "?_pragma=" + strings.Join(pragmas, "&_pragma=")

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening calendar database %s: %w", dbPath, err)
	}
	if memory {
		db.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to calendar database %s: %w", dbPath, err)
	}

	s := &SQLiteStore{db: db, loc: time.Local}
	if err := s.runMigrations(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating calendar database: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations applies every migration newer than the recorded schema
// version. Each step and its version row commit in one transaction.
func (s *SQLiteStore) runMigrations(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaVersionDDL); err != nil {
		return fmt.Errorf("creating schema_version: %w", err)
	}

	var current int
	if err := s.db.GetContext(ctx, &current,
		"SELECT COALESCE(MAX(version), 0) FROM schema_version"); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := s.applyMigration(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) applyMigration(ctx context.Context, m migration) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migration v%d: %w", m.version, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.sql); err != nil {
		return fmt.Errorf("applying migration v%d (%s): %w", m.version, m.name, err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_version (version, name) VALUES (?, ?)", m.version, m.name); err != nil {
		return fmt.Errorf("recording migration v%d: %w", m.version, err)
	}
	return tx.Commit()
}

// SchemaVersion returns the highest applied migration.
func (s *SQLiteStore) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	if err := s.db.GetContext(ctx, &v, "SELECT COALESCE(MAX(version), 0) FROM schema_version"); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}

// FetchDaysInRange returns the production days whose date falls within
// [start, end], ordered by date.
func (s *SQLiteStore) FetchDaysInRange(
	ctx context.Context,
	start, end time.Time,
) ([]model.ProductionDay, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT id, date FROM production_days WHERE date >= ? AND date <= ? ORDER BY date",
		datebucket.DayKey(start), datebucket.DayKey(end),
	)
	if err != nil {
		return nil, fmt.Errorf("querying production days: %w", err)
	}
	defer rows.Close()

	var days []model.ProductionDay
	for rows.Next() {
		day, err := s.scanDay(rows)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}

	return days, rows.Err()
}

// EnsureDay returns the production day for date, creating it if needed.
func (s *SQLiteStore) EnsureDay(
	ctx context.Context,
	date time.Time,
) (model.ProductionDay, error) {
	key := datebucket.DayKey(date)

	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO production_days (id, date, created_at) VALUES (?, ?, ?)",
		uuid.New().String(), key, time.Now().UTC(),
	)
	if err != nil {
		return model.ProductionDay{}, fmt.Errorf("creating production day %s: %w", key, err)
	}

	row := s.db.QueryRowxContext(ctx,
		"SELECT id, date FROM production_days WHERE date = ?", key)
	day, err := s.scanDay(row)
	if err != nil {
		return model.ProductionDay{}, fmt.Errorf("loading production day %s: %w", key, err)
	}
	return day, nil
}

// GetPreference returns the stored value for key.
func (s *SQLiteStore) GetPreference(
	ctx context.Context,
	key string,
) (string, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value,
		"SELECT value FROM preferences WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading preference %s: %w", key, err)
	}
	return value, true, nil
}

// SetPreference stores value under key, replacing any previous value.
func (s *SQLiteStore) SetPreference(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("writing preference %s: %w", key, err)
	}
	return nil
}

// rowScanner is satisfied by *sqlx.Row and *sqlx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanDay scans an (id, date) production day row.
func (s *SQLiteStore) scanDay(row rowScanner) (model.ProductionDay, error) {
	var (
		day     model.ProductionDay
		dateKey string
	)
	if err := row.Scan(&day.ID, &dateKey); err != nil {
		return model.ProductionDay{}, fmt.Errorf("scanning production day row: %w", err)
	}

	date, err := datebucket.ParseDay(dateKey, s.loc)
	if err != nil {
		return model.ProductionDay{}, fmt.Errorf("production day %s: %w", day.ID, err)
	}
	day.Date = date
	return day, nil
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
