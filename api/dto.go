/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupled from the domain types
  so the wire contract can evolve independently.

NAMING CONVENTION:
  - *DTO: response types returned to clients
  - *Request: request body types from clients

VALIDATION:
  Handlers parse and validate; DTOs are pure data carriers. Admission
  rules themselves live in the booking package, never here.

SEE ALSO:
  - handlers.go: uses these types
*/
package api

import (
	"time"

	"github.com/terrazza/booking-engine/booking"
	"github.com/terrazza/booking-engine/factory"
)

// =============================================================================
// RESERVATIONS
// =============================================================================

// CreateReservationRequest is the public booking form payload.
type CreateReservationRequest struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	Date              string `json:"date"` // YYYY-MM-DD
	Time              string `json:"time"` // HH:MM
	PartySize         int    `json:"party_size"`
	SeatingPreference string `json:"seating_preference"`
	Notes             string `json:"notes,omitempty"`
	Source            string `json:"source,omitempty"`
}

// ReservationDTO represents a reservation in API responses.
type ReservationDTO struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	Phone             string     `json:"phone"`
	Date              string     `json:"date"`
	Time              string     `json:"time"`
	PartySize         int        `json:"party_size"`
	SeatingPreference string     `json:"seating_preference"`
	Notes             string     `json:"notes,omitempty"`
	Status            string     `json:"status"`
	Source            string     `json:"source"`
	Tables            []TableDTO `json:"tables,omitempty"`
	CreatedAt         string     `json:"created_at,omitempty"`
}

// DecisionDTO is the admission outcome, with field-attributed reasons on
// rejection and the stored reservation on acceptance.
type DecisionDTO struct {
	Accepted    bool             `json:"accepted"`
	Reasons     []booking.Reason `json:"reasons,omitempty"`
	Reservation *ReservationDTO  `json:"reservation,omitempty"`
}

// UpdateStatusRequest is a staff status transition.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// =============================================================================
// TABLES
// =============================================================================

// TableDTO represents a physical table.
type TableDTO struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Capacity int    `json:"capacity"`
	Area     string `json:"area"`
	Active   bool   `json:"active"`
}

// CreateTableRequest creates or updates a physical table.
type CreateTableRequest struct {
	Label    string `json:"label"`
	Capacity int    `json:"capacity"`
	Area     string `json:"area"`
	Active   *bool  `json:"active,omitempty"`
}

// AssignTableRequest assigns a table to a reservation. An empty table_id
// clears the assignment.
type AssignTableRequest struct {
	TableID string `json:"table_id"`
}

// BlockedTablesDTO lists the tables unavailable to a reservation.
type BlockedTablesDTO struct {
	ReservationID string   `json:"reservation_id"`
	BlockedIDs    []string `json:"blocked_table_ids"`
}

// =============================================================================
// TIMELINE
// =============================================================================

// TimeBucketDTO is one 15-minute occupancy step.
type TimeBucketDTO struct {
	Start           string `json:"start"` // HH:MM
	Indoor          int    `json:"indoor"`
	Outdoor         int    `json:"outdoor"`
	Unassigned      int    `json:"unassigned"`
	IndoorPressure  string `json:"indoor_pressure"`
	OutdoorPressure string `json:"outdoor_pressure"`
}

// HourBucketDTO is the hourly worst-moment rollup.
type HourBucketDTO struct {
	Hour            string `json:"hour"` // HH:00
	Indoor          int    `json:"indoor"`
	Outdoor         int    `json:"outdoor"`
	Unassigned      int    `json:"unassigned"`
	IndoorPressure  string `json:"indoor_pressure"`
	OutdoorPressure string `json:"outdoor_pressure"`
	IsPast          bool   `json:"is_past"`
}

// TimelineDTO is the occupancy view for one day.
type TimelineDTO struct {
	Date    string          `json:"date"`
	Buckets []TimeBucketDTO `json:"buckets"`
	Hours   []HourBucketDTO `json:"hours"`
}

// AvailabilityDTO lists bookable start times for a date.
type AvailabilityDTO struct {
	Date  string   `json:"date"`
	Open  bool     `json:"open"`
	Slots []string `json:"slots,omitempty"`
}

// =============================================================================
// CALENDAR & SETTINGS
// =============================================================================

// OpeningHoursDTO is the rule for one weekday.
type OpeningHoursDTO struct {
	Weekday             int     `json:"weekday"` // 0 = Sunday
	Open                bool    `json:"open"`
	OpenTime            string  `json:"open_time,omitempty"`
	CloseTime           string  `json:"close_time,omitempty"`
	LastReservationTime *string `json:"last_reservation_time,omitempty"`
}

// SpecialDayDTO is a one-off schedule override.
type SpecialDayDTO struct {
	Date                string  `json:"date"`
	Open                bool    `json:"open"`
	BookingsOpenFrom    string  `json:"bookings_open_from"`
	OpenTime            *string `json:"open_time,omitempty"`
	CloseTime           *string `json:"close_time,omitempty"`
	LastReservationTime *string `json:"last_reservation_time,omitempty"`
	PublicMessage       string  `json:"public_message,omitempty"`
}

// SettingsDTO mirrors factory.PolicyJSON with all fields present.
type SettingsDTO = factory.PolicyJSON

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toReservationDTO(r booking.Reservation) ReservationDTO {
	return ReservationDTO{
		ID:                string(r.ID),
		Name:              r.Name,
		Email:             r.Email,
		Phone:             r.Phone,
		Date:              r.Date.String(),
		Time:              r.Time.String(),
		PartySize:         r.PartySize,
		SeatingPreference: string(r.Preference),
		Notes:             r.Notes,
		Status:            string(r.Status),
		Source:            string(r.Source),
		Tables:            toTableDTOs(r.Tables),
		CreatedAt:         r.CreatedAt.Format(time.RFC3339),
	}
}

func toReservationDTOs(rs []booking.Reservation) []ReservationDTO {
	dtos := make([]ReservationDTO, len(rs))
	for i, r := range rs {
		dtos[i] = toReservationDTO(r)
	}
	return dtos
}

func toTableDTO(t booking.Table) TableDTO {
	return TableDTO{
		ID:       string(t.ID),
		Label:    t.Label,
		Capacity: t.Capacity,
		Area:     string(t.Area),
		Active:   t.Active,
	}
}

func toTableDTOs(ts []booking.Table) []TableDTO {
	if len(ts) == 0 {
		return nil
	}
	dtos := make([]TableDTO, len(ts))
	for i, t := range ts {
		dtos[i] = toTableDTO(t)
	}
	return dtos
}

func toTimelineDTO(tl booking.Timeline) TimelineDTO {
	dto := TimelineDTO{
		Date:    tl.Day.String(),
		Buckets: make([]TimeBucketDTO, len(tl.Buckets)),
		Hours:   make([]HourBucketDTO, len(tl.Hours)),
	}
	for i, b := range tl.Buckets {
		dto.Buckets[i] = TimeBucketDTO{
			Start:           booking.ClockTimeOf(b.Start).String(),
			Indoor:          b.Indoor,
			Outdoor:         b.Outdoor,
			Unassigned:      b.Unassigned,
			IndoorPressure:  string(b.IndoorPressure),
			OutdoorPressure: string(b.OutdoorPressure),
		}
	}
	for i, h := range tl.Hours {
		dto.Hours[i] = HourBucketDTO{
			Hour:            booking.ClockTimeOf(h.Hour).String(),
			Indoor:          h.Indoor,
			Outdoor:         h.Outdoor,
			Unassigned:      h.Unassigned,
			IndoorPressure:  string(h.IndoorPressure),
			OutdoorPressure: string(h.OutdoorPressure),
			IsPast:          h.IsPast,
		}
	}
	return dto
}

func toOpeningHoursDTO(oh booking.OpeningHours) OpeningHoursDTO {
	dto := OpeningHoursDTO{
		Weekday:   int(oh.Weekday),
		Open:      oh.Open,
		OpenTime:  oh.OpenTime.String(),
		CloseTime: oh.CloseTime.String(),
	}
	if oh.LastReservationTime != nil {
		s := oh.LastReservationTime.String()
		dto.LastReservationTime = &s
	}
	return dto
}

func toSpecialDayDTO(sd booking.SpecialOpeningDay) SpecialDayDTO {
	dto := SpecialDayDTO{
		Date:             sd.Date.String(),
		Open:             sd.Open,
		BookingsOpenFrom: sd.BookingsOpenFrom.String(),
		PublicMessage:    sd.PublicMessage,
	}
	dto.OpenTime = clockStr(sd.OpenTime)
	dto.CloseTime = clockStr(sd.CloseTime)
	dto.LastReservationTime = clockStr(sd.LastReservationTime)
	return dto
}

func clockStr(ct *booking.ClockTime) *string {
	if ct == nil {
		return nil
	}
	s := ct.String()
	return &s
}
