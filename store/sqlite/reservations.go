/*
reservations.go - Reservation persistence

PURPOSE:
  CRUD for reservations and their table assignments. Listing by date loads
  the assigned tables in one extra query and attaches them, so callers get
  the same shape the engine consumes.

SEE ALSO:
  - book.go: transactional create via admission control
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/terrazza/booking-engine/booking"
)

// SaveReservation inserts or updates a reservation record. Table
// assignments are managed separately via SetReservationTables.
func (s *Store) SaveReservation(ctx context.Context, r booking.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveReservation(ctx, s.db, r)
}

func saveReservation(ctx context.Context, q querier, r booking.Reservation) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO reservations (id, name, email, phone, date, time, party_size,
			seating_preference, notes, status, source, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			phone = excluded.phone,
			date = excluded.date,
			time = excluded.time,
			party_size = excluded.party_size,
			seating_preference = excluded.seating_preference,
			notes = excluded.notes,
			status = excluded.status,
			source = excluded.source,
			updated_at = excluded.updated_at`,
		string(r.ID), r.Name, r.Email, r.Phone, r.Date.String(), r.Time.String(),
		r.PartySize, string(r.Preference), r.Notes, string(r.Status), string(r.Source),
		r.CreatedAt.UTC().Format(time.RFC3339), r.UpdatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save reservation: %w", err)
	}
	return nil
}

// GetReservation returns a reservation with its assigned tables, or
// booking.ErrReservationNotFound.
func (s *Store) GetReservation(ctx context.Context, id booking.ReservationID) (booking.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getReservation(ctx, s.db, id)
}

func getReservation(ctx context.Context, q querier, id booking.ReservationID) (booking.Reservation, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, name, email, phone, date, time, party_size,
			seating_preference, notes, status, source, created_at, updated_at
		FROM reservations WHERE id = ?`, string(id))

	r, err := scanReservation(row)
	if err == sql.ErrNoRows {
		return booking.Reservation{}, booking.ErrReservationNotFound
	}
	if err != nil {
		return booking.Reservation{}, fmt.Errorf("failed to get reservation: %w", err)
	}

	tables, err := tablesForReservations(ctx, q, []booking.ReservationID{r.ID})
	if err != nil {
		return booking.Reservation{}, err
	}
	r.Tables = tables[r.ID]
	return r, nil
}

// ListReservationsByDate returns the reservations for one date, ordered by
// seating preference then time, with assigned tables attached.
func (s *Store) ListReservationsByDate(ctx context.Context, date booking.Date) ([]booking.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listReservationsByDate(ctx, s.db, date)
}

func listReservationsByDate(ctx context.Context, q querier, date booking.Date) ([]booking.Reservation, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, email, phone, date, time, party_size,
			seating_preference, notes, status, source, created_at, updated_at
		FROM reservations
		WHERE date = ?
		ORDER BY seating_preference, time`, date.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	defer rows.Close()

	var out []booking.Reservation
	var ids []booking.ReservationID
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		out = append(out, r)
		ids = append(ids, r.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tables, err := tablesForReservations(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Tables = tables[out[i].ID]
	}
	return out, nil
}

// UpdateReservationStatus records a staff status transition.
func (s *Store) UpdateReservationStatus(ctx context.Context, id booking.ReservationID, status booking.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE reservations SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC().Format(time.RFC3339), string(id))
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return booking.ErrReservationNotFound
	}
	return nil
}

// SetReservationTables replaces a reservation's table assignment.
func (s *Store) SetReservationTables(ctx context.Context, id booking.ReservationID, tableIDs []booking.TableID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM reservation_tables WHERE reservation_id = ?`, string(id)); err != nil {
		return fmt.Errorf("failed to clear table assignment: %w", err)
	}
	for _, tid := range tableIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO reservation_tables (reservation_id, table_id) VALUES (?, ?)`,
			string(id), string(tid)); err != nil {
			return fmt.Errorf("failed to assign table: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE reservations SET updated_at = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), string(id)); err != nil {
		return fmt.Errorf("failed to touch reservation: %w", err)
	}
	return tx.Commit()
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

func scanReservation(row rowScanner) (booking.Reservation, error) {
	var r booking.Reservation
	var id, date, clock, pref, status, source, createdAt, updatedAt string
	if err := row.Scan(&id, &r.Name, &r.Email, &r.Phone, &date, &clock, &r.PartySize,
		&pref, &r.Notes, &status, &source, &createdAt, &updatedAt); err != nil {
		return booking.Reservation{}, err
	}

	r.ID = booking.ReservationID(id)
	r.Preference = booking.SeatingPreference(pref)
	r.Status = booking.Status(status)
	r.Source = booking.Source(source)

	var err error
	if r.Date, err = booking.ParseDate(date); err != nil {
		return booking.Reservation{}, err
	}
	if r.Time, err = booking.ParseClockTime(clock); err != nil {
		return booking.Reservation{}, err
	}
	if r.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return booking.Reservation{}, fmt.Errorf("invalid created_at: %w", err)
	}
	if r.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return booking.Reservation{}, fmt.Errorf("invalid updated_at: %w", err)
	}
	return r, nil
}

// tablesForReservations loads assigned tables for a set of reservations in
// one query.
func tablesForReservations(ctx context.Context, q querier, ids []booking.ReservationID) (map[booking.ReservationID][]booking.Table, error) {
	out := make(map[booking.ReservationID][]booking.Table)
	if len(ids) == 0 {
		return out, nil
	}

	query := `
		SELECT rt.reservation_id, t.id, t.label, t.capacity, t.area, t.is_active
		FROM reservation_tables rt
		JOIN tables t ON t.id = rt.table_id
		WHERE rt.reservation_id IN (?` + repeatPlaceholder(len(ids)-1) + `)`
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = string(id)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load table assignments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var resID, tableID, area string
		var t booking.Table
		if err := rows.Scan(&resID, &tableID, &t.Label, &t.Capacity, &area, &t.Active); err != nil {
			return nil, fmt.Errorf("failed to scan table assignment: %w", err)
		}
		t.ID = booking.TableID(tableID)
		t.Area = booking.Area(area)
		out[booking.ReservationID(resID)] = append(out[booking.ReservationID(resID)], t)
	}
	return out, rows.Err()
}

func repeatPlaceholder(n int) string {
	s := ""
	for i := 0; i < n; i++ {
		s += ", ?"
	}
	return s
}
