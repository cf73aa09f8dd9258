/*
book.go - Transactional admission

PURPOSE:
  booking.Evaluate is pure; it cannot stop two concurrent callers from
  both observing free capacity and both booking it. That check-then-act
  race is closed here: Book runs read-settings, read-calendar, read
  same-day reservations, Evaluate, and the insert inside one SQL
  transaction, serialized behind the store's writer lock. Everything the
  engine sees is a consistent snapshot, and the write lands before anyone
  else may read.

SEE ALSO:
  - booking/admission.go: the decision function this wraps
*/
package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/terrazza/booking-engine/booking"
	"github.com/terrazza/booking-engine/factory"
)

// Book evaluates a candidate against a consistent snapshot and persists it
// on acceptance. The returned reservation is non-nil only when the
// decision is accepted. Rejections are not errors; an error signals a
// store fault or a configuration fault (booking.ErrInvalidPolicy).
func (s *Store) Book(ctx context.Context, c booking.Candidate, source booking.Source, now time.Time) (booking.Decision, *booking.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return booking.Decision{}, nil, fmt.Errorf("failed to begin booking transaction: %w", err)
	}
	defer tx.Rollback()

	raw, err := settingsJSON(ctx, tx)
	if err != nil {
		return booking.Decision{}, nil, err
	}
	policy, err := factory.PolicyFromJSON(raw)
	if err != nil {
		return booking.Decision{}, nil, err
	}

	cal, err := loadCalendar(ctx, tx)
	if err != nil {
		return booking.Decision{}, nil, err
	}

	existing, err := listReservationsByDate(ctx, tx, c.Date)
	if err != nil {
		return booking.Decision{}, nil, err
	}

	decision, err := booking.Evaluate(c, existing, policy, cal, now)
	if err != nil {
		return booking.Decision{}, nil, err
	}
	if decision.Rejected() {
		return decision, nil, nil
	}

	r := booking.Reservation{
		ID:         booking.ReservationID(uuid.NewString()),
		Name:       c.Name,
		Email:      c.Email,
		Phone:      c.Phone,
		Date:       c.Date,
		Time:       c.Time,
		PartySize:  c.PartySize,
		Preference: c.Preference,
		Notes:      c.Notes,
		Status:     booking.StatusPending,
		Source:     source,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := saveReservation(ctx, tx, r); err != nil {
		return booking.Decision{}, nil, err
	}
	if err := tx.Commit(); err != nil {
		return booking.Decision{}, nil, fmt.Errorf("failed to commit booking: %w", err)
	}
	return decision, &r, nil
}

// LoadPolicy materializes the current policy configuration with defaults
// applied, for callers outside the booking transaction (timeline, table
// assignment).
func (s *Store) LoadPolicy(ctx context.Context) (booking.PolicyConfig, error) {
	raw, err := s.SettingsJSON(ctx)
	if err != nil {
		return booking.PolicyConfig{}, err
	}
	return factory.PolicyFromJSON(raw)
}
