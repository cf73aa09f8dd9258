/*
Package factory materializes venue configuration for the booking engine.

PURPOSE:
  Staff edit capacity settings through the admin surface; the engine wants
  an immutable, validated booking.PolicyConfig per call. This package is
  the boundary between the two: it parses the stored JSON settings record,
  applies the documented defaults for anything unset, and validates the
  result once. The engine itself never sees partial configuration and
  never falls back to process-wide state.

DEFAULTS:
  indoor 42 seats, outdoor 54 seats, dwell 90 minutes, max party 12
  indoor / 8 outdoor, medium group 5-6, large >= 7, very large >= 9,
  max 2 large + 1 very large indoor, max 2 large outdoor, 15 minutes
  same-day lead time, reservations open.

  These are the single canonical default set. The system this replaces
  carried a second, slightly different fallback set in one code path;
  that discrepancy is deliberately not preserved.

JSON SCHEMA (stored settings record; every field optional):
  {
    "indoor_capacity": 42,
    "outdoor_capacity": 54,
    "dwell_minutes": 90,
    "max_party_size_indoor": 12,
    "max_party_size_outdoor": 8,
    "medium_group_min_size": 5,
    "medium_group_max_size": 6,
    "large_group_min_size": 7,
    "very_large_group_min_size": 9,
    "max_large_groups_indoor": 2,
    "max_very_large_groups_indoor": 1,
    "max_large_groups_outdoor": 2,
    "min_lead_minutes": 15,
    "reservations_open": true,
    "closure_message": ""
  }

SEE ALSO:
  - booking/config.go: PolicyConfig and its invariants
  - store/sqlite: persists the raw JSON record
*/
package factory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/terrazza/booking-engine/booking"
)

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	DefaultIndoorCapacity      = 42
	DefaultOutdoorCapacity     = 54
	DefaultDwellMinutes        = 90
	DefaultMaxPartySizeIndoor  = 12
	DefaultMaxPartySizeOutdoor = 8
	DefaultMediumMin           = 5
	DefaultMediumMax           = 6
	DefaultLargeMin            = 7
	DefaultVeryLargeMin        = 9
	DefaultMaxLargeIndoor      = 2
	DefaultMaxVeryLargeIndoor  = 1
	DefaultMaxLargeOutdoor     = 2
	DefaultMinLeadMinutes      = 15
)

// DefaultPolicy returns the documented default configuration for an
// unconfigured venue.
func DefaultPolicy() booking.PolicyConfig {
	return booking.PolicyConfig{
		IndoorCapacity:      DefaultIndoorCapacity,
		OutdoorCapacity:     DefaultOutdoorCapacity,
		DwellMinutes:        DefaultDwellMinutes,
		MaxPartySizeIndoor:  DefaultMaxPartySizeIndoor,
		MaxPartySizeOutdoor: DefaultMaxPartySizeOutdoor,
		MediumMin:           DefaultMediumMin,
		MediumMax:           DefaultMediumMax,
		LargeMin:            DefaultLargeMin,
		VeryLargeMin:        DefaultVeryLargeMin,
		MaxLargeIndoor:      DefaultMaxLargeIndoor,
		MaxVeryLargeIndoor:  DefaultMaxVeryLargeIndoor,
		MaxLargeOutdoor:     DefaultMaxLargeOutdoor,
		MinLeadMinutes:      DefaultMinLeadMinutes,
		ReservationsOpen:    true,
	}
}

// =============================================================================
// JSON SCHEMA
// =============================================================================

// PolicyJSON is the stored representation of venue settings. Pointer
// fields distinguish "unset, take the default" from explicit zero values.
type PolicyJSON struct {
	IndoorCapacity      *int    `json:"indoor_capacity,omitempty"`
	OutdoorCapacity     *int    `json:"outdoor_capacity,omitempty"`
	DwellMinutes        *int    `json:"dwell_minutes,omitempty"`
	MaxPartySizeIndoor  *int    `json:"max_party_size_indoor,omitempty"`
	MaxPartySizeOutdoor *int    `json:"max_party_size_outdoor,omitempty"`
	MediumMin           *int    `json:"medium_group_min_size,omitempty"`
	MediumMax           *int    `json:"medium_group_max_size,omitempty"`
	LargeMin            *int    `json:"large_group_min_size,omitempty"`
	VeryLargeMin        *int    `json:"very_large_group_min_size,omitempty"`
	MaxLargeIndoor      *int    `json:"max_large_groups_indoor,omitempty"`
	MaxVeryLargeIndoor  *int    `json:"max_very_large_groups_indoor,omitempty"`
	MaxLargeOutdoor     *int    `json:"max_large_groups_outdoor,omitempty"`
	MinLeadMinutes      *int    `json:"min_lead_minutes,omitempty"`
	ReservationsOpen    *bool   `json:"reservations_open,omitempty"`
	ClosureMessage      *string `json:"closure_message,omitempty"`
}

// PolicyFromJSON parses a stored settings record into a validated
// PolicyConfig, applying defaults for unset fields. An empty record yields
// the full default configuration.
func PolicyFromJSON(raw string) (booking.PolicyConfig, error) {
	cfg := DefaultPolicy()
	if raw == "" {
		return cfg, nil
	}

	var pj PolicyJSON
	if err := json.Unmarshal([]byte(raw), &pj); err != nil {
		return booking.PolicyConfig{}, fmt.Errorf("failed to parse settings JSON: %w", err)
	}
	cfg = FromJSON(pj)

	if err := cfg.Validate(); err != nil {
		return booking.PolicyConfig{}, err
	}
	return cfg, nil
}

// FromJSON overlays the configured fields onto the defaults without
// validating. Most callers want PolicyFromJSON.
func FromJSON(pj PolicyJSON) booking.PolicyConfig {
	cfg := DefaultPolicy()
	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	setInt(&cfg.IndoorCapacity, pj.IndoorCapacity)
	setInt(&cfg.OutdoorCapacity, pj.OutdoorCapacity)
	setInt(&cfg.DwellMinutes, pj.DwellMinutes)
	setInt(&cfg.MaxPartySizeIndoor, pj.MaxPartySizeIndoor)
	setInt(&cfg.MaxPartySizeOutdoor, pj.MaxPartySizeOutdoor)
	setInt(&cfg.MediumMin, pj.MediumMin)
	setInt(&cfg.MediumMax, pj.MediumMax)
	setInt(&cfg.LargeMin, pj.LargeMin)
	setInt(&cfg.VeryLargeMin, pj.VeryLargeMin)
	setInt(&cfg.MaxLargeIndoor, pj.MaxLargeIndoor)
	setInt(&cfg.MaxVeryLargeIndoor, pj.MaxVeryLargeIndoor)
	setInt(&cfg.MaxLargeOutdoor, pj.MaxLargeOutdoor)
	setInt(&cfg.MinLeadMinutes, pj.MinLeadMinutes)
	if pj.ReservationsOpen != nil {
		cfg.ReservationsOpen = *pj.ReservationsOpen
	}
	if pj.ClosureMessage != nil {
		cfg.ClosureMessage = *pj.ClosureMessage
	}
	return cfg
}

// ToJSON serializes a PolicyConfig back to the stored representation with
// every field populated, so later schema additions default cleanly.
func ToJSON(cfg booking.PolicyConfig) (string, error) {
	pj := PolicyJSON{
		IndoorCapacity:      &cfg.IndoorCapacity,
		OutdoorCapacity:     &cfg.OutdoorCapacity,
		DwellMinutes:        &cfg.DwellMinutes,
		MaxPartySizeIndoor:  &cfg.MaxPartySizeIndoor,
		MaxPartySizeOutdoor: &cfg.MaxPartySizeOutdoor,
		MediumMin:           &cfg.MediumMin,
		MediumMax:           &cfg.MediumMax,
		LargeMin:            &cfg.LargeMin,
		VeryLargeMin:        &cfg.VeryLargeMin,
		MaxLargeIndoor:      &cfg.MaxLargeIndoor,
		MaxVeryLargeIndoor:  &cfg.MaxVeryLargeIndoor,
		MaxLargeOutdoor:     &cfg.MaxLargeOutdoor,
		MinLeadMinutes:      &cfg.MinLeadMinutes,
		ReservationsOpen:    &cfg.ReservationsOpen,
		ClosureMessage:      &cfg.ClosureMessage,
	}
	b, err := json.Marshal(pj)
	if err != nil {
		return "", fmt.Errorf("failed to serialize settings: %w", err)
	}
	return string(b), nil
}

// =============================================================================
// WEEKLY SCHEDULE SEED
// =============================================================================

// DefaultWeeklyHours returns a seed schedule for a fresh venue: open every
// day 12:00-17:00 with last reservations at 16:30.
func DefaultWeeklyHours() []booking.OpeningHours {
	last := booking.NewClockTime(16, 30)
	var out []booking.OpeningHours
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		lastCopy := last
		out = append(out, booking.OpeningHours{
			Weekday:             wd,
			Open:                true,
			OpenTime:            booking.NewClockTime(12, 0),
			CloseTime:           booking.NewClockTime(17, 0),
			LastReservationTime: &lastCopy,
		})
	}
	return out
}
