/*
Package booking provides the reservation feasibility and capacity engine.

PURPOSE:
  This package contains the domain types and algorithms that decide whether
  a candidate reservation may be accepted, how full the venue is at any
  point in time, and which physical tables are legally assignable to a
  reservation. All of it is pure computation: the engine reads the
  reservation list and configuration it is handed and produces decisions.
  Persistence, transport, and staff workflows live elsewhere.

KEY CONCEPTS IN THIS FILE (types.go):
  - Reservation: a booked party with contact details, date/time, and status
  - Table: a physical table with seat capacity and an indoor/outdoor area
  - Date / ClockTime: calendar date and wall-clock time value types
  - Zone vs ReportingArea: the two deliberately different classifications
    of a reservation's location

DESIGN PRINCIPLES:
  1. Purity: engine functions never mutate their inputs or touch I/O
  2. Snapshot semantics: configuration and reservation lists are treated
     as immutable per call
  3. Two classifications: capacity safety maps no-preference to indoor,
     reporting maps it to unassigned; these are never unified

SEE ALSO:
  - overlap.go: the shared time-window overlap primitive
  - admission.go: the admission-control pipeline
  - timeline.go: the occupancy timeline aggregator
  - tables.go: the table-conflict resolver
*/
package booking

import (
	"fmt"
	"time"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ReservationID string
type TableID string

// =============================================================================
// ENUMERATIONS
// =============================================================================

// Status is the lifecycle state of a reservation. Transitions are performed
// by staff outside the engine; the engine only reads status to decide which
// reservations count for capacity, table blocking, and reporting.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusSeated    Status = "SEATED"
	StatusCompleted Status = "COMPLETED"
	StatusNoShow    Status = "NO_SHOW"
	StatusCancelled Status = "CANCELLED"
)

// CountsForCapacity reports whether a reservation in this status still holds
// seats for admission-control purposes. Everything except Cancelled does.
func (s Status) CountsForCapacity() bool { return s != StatusCancelled }

// BlocksTables reports whether a reservation in this status keeps its
// assigned tables unavailable to others. No-shows release their tables.
func (s Status) BlocksTables() bool { return s != StatusCancelled && s != StatusNoShow }

// CountsForTimeline reports whether a reservation contributes to the
// occupancy timeline. Same set as BlocksTables, kept separate because the
// two views may diverge independently.
func (s Status) CountsForTimeline() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusSeated, StatusCompleted:
		return true
	}
	return false
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusSeated, StatusCompleted, StatusNoShow, StatusCancelled:
		return true
	}
	return false
}

// SeatingPreference is the guest's stated preference, not an assignment.
type SeatingPreference string

const (
	PrefNone    SeatingPreference = "NO_PREF"
	PrefIndoor  SeatingPreference = "INDOOR"
	PrefOutdoor SeatingPreference = "OUTDOOR_IF_POSSIBLE"
)

func (p SeatingPreference) Valid() bool {
	switch p {
	case PrefNone, PrefIndoor, PrefOutdoor:
		return true
	}
	return false
}

// Source records how the reservation entered the system. Informational only.
type Source string

const (
	SourceOnline Source = "ONLINE"
	SourcePhone  Source = "PHONE"
	SourceWalkIn Source = "WALK_IN"
)

// Area is the physical location of a table.
type Area string

const (
	AreaIndoor  Area = "INDOOR"
	AreaOutdoor Area = "OUTDOOR"
)

// Zone is a seat-capacity pool used by admission control.
type Zone string

const (
	ZoneIndoor  Zone = "indoor"
	ZoneOutdoor Zone = "outdoor"
)

// CapacityZone maps a seating preference to the capacity pool it is checked
// against. No-preference counts as indoor: it is the larger pool, and the
// safe assumption is that an unassigned party ends up inside.
func CapacityZone(p SeatingPreference) Zone {
	if p == PrefOutdoor {
		return ZoneOutdoor
	}
	return ZoneIndoor
}

// ReportingArea is the dashboard classification of a reservation's location.
// Unlike CapacityZone, no-preference parties without an assigned table are
// reported as unassigned rather than assumed indoor; the timeline is a
// reporting view, not a safety gate.
type ReportingArea string

const (
	ReportIndoor     ReportingArea = "indoor"
	ReportOutdoor    ReportingArea = "outdoor"
	ReportUnassigned ReportingArea = "unassigned"
)

// ReportingAreaOf classifies a reservation for the occupancy timeline.
// An explicitly assigned table wins; otherwise only an indoor-only
// preference is concrete enough to report as indoor.
func ReportingAreaOf(r Reservation) ReportingArea {
	if len(r.Tables) > 0 {
		if r.Tables[0].Area == AreaOutdoor {
			return ReportOutdoor
		}
		return ReportIndoor
	}
	if r.Preference == PrefIndoor {
		return ReportIndoor
	}
	return ReportUnassigned
}

// =============================================================================
// DATE - Calendar date in the venue's time zone
// =============================================================================

// Date is a calendar date with day granularity. The zero value means unset.
type Date struct {
	Time time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a point in time to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return DateOf(t), nil
}

func (d Date) Before(o Date) bool      { return d.Time.Before(o.Time) }
func (d Date) After(o Date) bool       { return d.Time.After(o.Time) }
func (d Date) Equal(o Date) bool       { return d.Time.Equal(o.Time) }
func (d Date) IsZero() bool            { return d.Time.IsZero() }
func (d Date) Weekday() time.Weekday   { return d.Time.Weekday() }
func (d Date) AddDays(n int) Date      { return Date{Time: d.Time.AddDate(0, 0, n)} }
func (d Date) String() string          { return d.Time.Format("2006-01-02") }

// At combines the date with a wall-clock time into a point in time.
func (d Date) At(ct ClockTime) time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), ct.Hour, ct.Minute, 0, 0, time.UTC)
}

// =============================================================================
// CLOCK TIME - Wall-clock time with minute granularity
// =============================================================================

// ClockTime is a wall-clock time of day. The zero value (midnight) doubles
// as "unset": the venue's bookable windows never include 00:00, so admission
// treats it as a missing time.
type ClockTime struct {
	Hour   int
	Minute int
}

func NewClockTime(hour, minute int) ClockTime {
	return ClockTime{Hour: hour, Minute: minute}
}

// ClockTimeOf extracts the wall-clock time from a point in time.
func ClockTimeOf(t time.Time) ClockTime {
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}
}

// ParseClockTime parses an HH:MM time string.
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return ClockTime{}, fmt.Errorf("invalid time %q (use HH:MM): %w", s, err)
	}
	return ClockTimeOf(t), nil
}

func (c ClockTime) minutes() int { return c.Hour*60 + c.Minute }

func (c ClockTime) Before(o ClockTime) bool        { return c.minutes() < o.minutes() }
func (c ClockTime) After(o ClockTime) bool         { return c.minutes() > o.minutes() }
func (c ClockTime) Equal(o ClockTime) bool         { return c.minutes() == o.minutes() }
func (c ClockTime) BeforeOrEqual(o ClockTime) bool { return c.minutes() <= o.minutes() }
func (c ClockTime) AfterOrEqual(o ClockTime) bool  { return c.minutes() >= o.minutes() }
func (c ClockTime) IsZero() bool                   { return c.Hour == 0 && c.Minute == 0 }

// AddMinutes returns the clock time n minutes later. The result is not
// wrapped past midnight; callers stay within a single service day.
func (c ClockTime) AddMinutes(n int) ClockTime {
	m := c.minutes() + n
	return ClockTime{Hour: m / 60, Minute: m % 60}
}

func (c ClockTime) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

// =============================================================================
// TABLE - Physical table owned by venue configuration
// =============================================================================

type Table struct {
	ID       TableID
	Label    string // e.g. "R1-T1", "4", "Outside-3"
	Capacity int
	Area     Area
	Active   bool
}

// =============================================================================
// RESERVATION
// =============================================================================

type Reservation struct {
	ID    ReservationID
	Name  string
	Email string
	Phone string

	Date       Date
	Time       ClockTime
	PartySize  int
	Preference SeatingPreference

	// Special requests: highchairs, allergies, buggy, etc.
	Notes string

	Status Status

	// Tables assigned by staff. The assignment path in this system only
	// ever attaches a single table, but the model permits several.
	Tables []Table

	Source    Source
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Window is the time interval the reservation occupies its seats,
// starting at the booked time and lasting the configured dwell duration.
func (r Reservation) Window(dwell time.Duration) Window {
	return NewWindow(r.Date.At(r.Time), dwell)
}

// HasTable reports whether the given table is among the assigned tables.
func (r Reservation) HasTable(id TableID) bool {
	for _, t := range r.Tables {
		if t.ID == id {
			return true
		}
	}
	return false
}
