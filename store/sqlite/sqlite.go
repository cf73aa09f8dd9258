/*
Package sqlite provides the SQLite-backed record store for the booking
engine's environment.

PURPOSE:
  The engine itself is pure; this package is the thin persistence layer
  around it: reservations, tables, the opening calendar, and the settings
  record. It also owns the one piece of correctness the engine cannot
  provide - the transaction boundary around "read existing reservations,
  evaluate, write the new one" (see book.go).

KEY TABLES:
  reservations:        bookings with contact, date/time, status, source
  reservation_tables:  many-to-many table assignment
  tables:              physical tables with area and active flag
  opening_hours:       one row per weekday
  special_days:        one-off overrides with their own booking window
  settings:            single JSON settings record (id = 1)

WAL MODE:
  SQLite is opened with WAL for better concurrency: multiple readers
  don't block and a single writer runs at a time.

CONCURRENCY:
  A sync.RWMutex serializes writers on top of SQLite's own locking. With
  PostgreSQL the database's transaction isolation would carry this alone.

MIGRATION:
  Schema is auto-migrated on New(). For production, use a versioned
  migration tool instead.

SEE ALSO:
  - book.go: transactional admission
  - reservations.go: reservation persistence
  - booking: the domain types stored here
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/terrazza/booking-engine/booking"
)

// Store implements the record store on SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a store with the given database path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: the store serializes writers anyway, and pooled
	// connections to ":memory:" would each see a different database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// querier abstracts *sql.DB and *sql.Tx so reads compose into the booking
// transaction.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reservations (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT NOT NULL,
		date TEXT NOT NULL,
		time TEXT NOT NULL,
		party_size INTEGER NOT NULL,
		seating_preference TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		source TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Same-day listing is the hot path: admission, timeline, and table
	-- conflicts all scan one date.
	CREATE INDEX IF NOT EXISTS idx_reservations_date
		ON reservations(date);
	CREATE INDEX IF NOT EXISTS idx_reservations_date_status
		ON reservations(date, status);

	CREATE TABLE IF NOT EXISTS reservation_tables (
		reservation_id TEXT NOT NULL REFERENCES reservations(id),
		table_id TEXT NOT NULL REFERENCES tables(id),
		PRIMARY KEY (reservation_id, table_id)
	);

	CREATE INDEX IF NOT EXISTS idx_reservation_tables_table
		ON reservation_tables(table_id);

	CREATE TABLE IF NOT EXISTS tables (
		id TEXT PRIMARY KEY,
		label TEXT NOT NULL UNIQUE,
		capacity INTEGER NOT NULL,
		area TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	);

	CREATE TABLE IF NOT EXISTS opening_hours (
		weekday INTEGER PRIMARY KEY,
		is_open BOOLEAN NOT NULL,
		open_time TEXT,
		close_time TEXT,
		last_reservation_time TEXT
	);

	CREATE TABLE IF NOT EXISTS special_days (
		date TEXT PRIMARY KEY,
		is_open BOOLEAN NOT NULL,
		bookings_open_from TEXT NOT NULL,
		open_time TEXT,
		close_time TEXT,
		last_reservation_time TEXT,
		public_message TEXT NOT NULL DEFAULT ''
	);

	-- Single settings record keyed to id=1; empty config_json means
	-- "use defaults".
	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		config_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TABLES
// =============================================================================

// SaveTable inserts or updates a physical table.
func (s *Store) SaveTable(ctx context.Context, t booking.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tables (id, label, capacity, area, is_active)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			label = excluded.label,
			capacity = excluded.capacity,
			area = excluded.area,
			is_active = excluded.is_active`,
		string(t.ID), t.Label, t.Capacity, string(t.Area), t.Active)
	if err != nil {
		return fmt.Errorf("failed to save table: %w", err)
	}
	return nil
}

// GetTable returns a table by ID, or booking.ErrTableNotFound.
func (s *Store) GetTable(ctx context.Context, id booking.TableID) (booking.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, label, capacity, area, is_active FROM tables WHERE id = ?`, string(id))
	t, err := scanTable(row)
	if err == sql.ErrNoRows {
		return booking.Table{}, booking.ErrTableNotFound
	}
	if err != nil {
		return booking.Table{}, fmt.Errorf("failed to get table: %w", err)
	}
	return t, nil
}

// ListTables returns all tables, optionally only active ones, ordered by label.
func (s *Store) ListTables(ctx context.Context, activeOnly bool) ([]booking.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listTables(ctx, s.db, activeOnly)
}

func listTables(ctx context.Context, q querier, activeOnly bool) ([]booking.Table, error) {
	query := `SELECT id, label, capacity, area, is_active FROM tables`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY label`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var out []booking.Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTable(row rowScanner) (booking.Table, error) {
	var t booking.Table
	var id, area string
	if err := row.Scan(&id, &t.Label, &t.Capacity, &area, &t.Active); err != nil {
		return booking.Table{}, err
	}
	t.ID = booking.TableID(id)
	t.Area = booking.Area(area)
	return t, nil
}

// =============================================================================
// OPENING CALENDAR
// =============================================================================

// UpsertOpeningHours saves the rule for one weekday.
func (s *Store) UpsertOpeningHours(ctx context.Context, oh booking.OpeningHours) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO opening_hours (weekday, is_open, open_time, close_time, last_reservation_time)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(weekday) DO UPDATE SET
			is_open = excluded.is_open,
			open_time = excluded.open_time,
			close_time = excluded.close_time,
			last_reservation_time = excluded.last_reservation_time`,
		int(oh.Weekday), oh.Open, oh.OpenTime.String(), oh.CloseTime.String(),
		clockTimePtr(oh.LastReservationTime))
	if err != nil {
		return fmt.Errorf("failed to save opening hours: %w", err)
	}
	return nil
}

// ListOpeningHours returns all weekday rules ordered by weekday.
func (s *Store) ListOpeningHours(ctx context.Context) ([]booking.OpeningHours, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listOpeningHours(ctx, s.db)
}

func listOpeningHours(ctx context.Context, q querier) ([]booking.OpeningHours, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT weekday, is_open, open_time, close_time, last_reservation_time
		FROM opening_hours ORDER BY weekday`)
	if err != nil {
		return nil, fmt.Errorf("failed to list opening hours: %w", err)
	}
	defer rows.Close()

	var out []booking.OpeningHours
	for rows.Next() {
		var oh booking.OpeningHours
		var weekday int
		var openTime, closeTime, lastRes sql.NullString
		if err := rows.Scan(&weekday, &oh.Open, &openTime, &closeTime, &lastRes); err != nil {
			return nil, fmt.Errorf("failed to scan opening hours: %w", err)
		}
		oh.Weekday = time.Weekday(weekday)
		if oh.OpenTime, err = nullClockTime(openTime); err != nil {
			return nil, err
		}
		if oh.CloseTime, err = nullClockTime(closeTime); err != nil {
			return nil, err
		}
		if oh.LastReservationTime, err = nullClockTimePtr(lastRes); err != nil {
			return nil, err
		}
		out = append(out, oh)
	}
	return out, rows.Err()
}

// UpsertSpecialDay saves a special opening day.
func (s *Store) UpsertSpecialDay(ctx context.Context, sd booking.SpecialOpeningDay) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO special_days (date, is_open, bookings_open_from, open_time, close_time, last_reservation_time, public_message)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			is_open = excluded.is_open,
			bookings_open_from = excluded.bookings_open_from,
			open_time = excluded.open_time,
			close_time = excluded.close_time,
			last_reservation_time = excluded.last_reservation_time,
			public_message = excluded.public_message`,
		sd.Date.String(), sd.Open, sd.BookingsOpenFrom.String(),
		clockTimePtr(sd.OpenTime), clockTimePtr(sd.CloseTime), clockTimePtr(sd.LastReservationTime),
		sd.PublicMessage)
	if err != nil {
		return fmt.Errorf("failed to save special day: %w", err)
	}
	return nil
}

// ListSpecialDays returns all special days ordered by date.
func (s *Store) ListSpecialDays(ctx context.Context) ([]booking.SpecialOpeningDay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listSpecialDays(ctx, s.db)
}

func listSpecialDays(ctx context.Context, q querier) ([]booking.SpecialOpeningDay, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT date, is_open, bookings_open_from, open_time, close_time, last_reservation_time, public_message
		FROM special_days ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("failed to list special days: %w", err)
	}
	defer rows.Close()

	var out []booking.SpecialOpeningDay
	for rows.Next() {
		var sd booking.SpecialOpeningDay
		var date, openFrom string
		var openTime, closeTime, lastRes sql.NullString
		if err := rows.Scan(&date, &sd.Open, &openFrom, &openTime, &closeTime, &lastRes, &sd.PublicMessage); err != nil {
			return nil, fmt.Errorf("failed to scan special day: %w", err)
		}
		if sd.Date, err = booking.ParseDate(date); err != nil {
			return nil, err
		}
		if sd.BookingsOpenFrom, err = booking.ParseDate(openFrom); err != nil {
			return nil, err
		}
		if sd.OpenTime, err = nullClockTimePtr(openTime); err != nil {
			return nil, err
		}
		if sd.CloseTime, err = nullClockTimePtr(closeTime); err != nil {
			return nil, err
		}
		if sd.LastReservationTime, err = nullClockTimePtr(lastRes); err != nil {
			return nil, err
		}
		out = append(out, sd)
	}
	return out, rows.Err()
}

// LoadCalendar builds the opening calendar from the stored rules.
func (s *Store) LoadCalendar(ctx context.Context) (*booking.Calendar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return loadCalendar(ctx, s.db)
}

func loadCalendar(ctx context.Context, q querier) (*booking.Calendar, error) {
	weekly, err := listOpeningHours(ctx, q)
	if err != nil {
		return nil, err
	}
	special, err := listSpecialDays(ctx, q)
	if err != nil {
		return nil, err
	}
	return booking.NewCalendar(weekly, special), nil
}

// =============================================================================
// SETTINGS
// =============================================================================

// SettingsJSON returns the raw settings record, or "" when unconfigured.
func (s *Store) SettingsJSON(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return settingsJSON(ctx, s.db)
}

func settingsJSON(ctx context.Context, q querier) (string, error) {
	var raw string
	err := q.QueryRowContext(ctx, `SELECT config_json FROM settings WHERE id = 1`).Scan(&raw)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read settings: %w", err)
	}
	return raw, nil
}

// SaveSettingsJSON stores the settings record.
func (s *Store) SaveSettingsJSON(ctx context.Context, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (id, config_json, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			config_json = excluded.config_json,
			updated_at = excluded.updated_at`,
		raw, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

func clockTimePtr(ct *booking.ClockTime) any {
	if ct == nil {
		return nil
	}
	return ct.String()
}

func nullClockTime(ns sql.NullString) (booking.ClockTime, error) {
	if !ns.Valid || ns.String == "" {
		return booking.ClockTime{}, nil
	}
	return booking.ParseClockTime(ns.String)
}

func nullClockTimePtr(ns sql.NullString) (*booking.ClockTime, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	ct, err := booking.ParseClockTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &ct, nil
}
