/*
config.go - Venue policy configuration

PURPOSE:
  PolicyConfig carries every threshold admission control and the capacity
  aggregator consult: zone capacities, dwell duration, party-size caps,
  group-size tier boundaries, tier concurrency limits, minimum lead time,
  and the global reservations-open switch.

SNAPSHOT SEMANTICS:
  Staff can change these values at any time, but the engine receives an
  immutable snapshot per call. Defaults for unconfigured venues are applied
  once at the boundary (see the factory package), never inside the engine.

TIER MODEL:
  Parties are banded by size:
    medium      MediumMin..MediumMax
    large       >= LargeMin
    very large  >= VeryLargeMin (also counts as large)
  Each band has its own concurrency cap so a run of big groups cannot
  swamp the floor even while raw seat capacity still has room.

SEE ALSO:
  - admission.go: consumes every field here
  - factory: defaults and JSON round-tripping
*/
package booking

import "time"

// =============================================================================
// POLICY CONFIG
// =============================================================================

type PolicyConfig struct {
	// Seat capacity per zone.
	IndoorCapacity  int
	OutdoorCapacity int

	// How long a reservation occupies its seats, including turnaround.
	DwellMinutes int

	// Largest party bookable per zone. The indoor cap is the global cap:
	// it applies to every candidate regardless of preference.
	MaxPartySizeIndoor  int
	MaxPartySizeOutdoor int

	// Group-size tier boundaries. Invariant:
	// MediumMin <= MediumMax < LargeMin <= VeryLargeMin.
	MediumMin    int
	MediumMax    int
	LargeMin     int
	VeryLargeMin int

	// Concurrency caps per tier and zone.
	MaxLargeIndoor     int
	MaxVeryLargeIndoor int
	MaxLargeOutdoor    int

	// Same-day bookings must start at least this many minutes from now.
	MinLeadMinutes int

	// Global switch for taking new reservations at all.
	ReservationsOpen bool
	ClosureMessage   string
}

// Dwell returns the dwell duration as a time.Duration.
func (c PolicyConfig) Dwell() time.Duration {
	return time.Duration(c.DwellMinutes) * time.Minute
}

// ZoneCapacity returns the seat capacity of the given zone.
func (c PolicyConfig) ZoneCapacity(z Zone) int {
	if z == ZoneOutdoor {
		return c.OutdoorCapacity
	}
	return c.IndoorCapacity
}

// Validate checks the configuration invariants. A violation is a
// configuration fault: the engine refuses to evaluate rather than produce
// nonsensical admission decisions.
func (c PolicyConfig) Validate() error {
	if c.IndoorCapacity < 0 || c.OutdoorCapacity < 0 {
		return &PolicyConfigError{Field: "capacity", Detail: "zone capacities must be non-negative"}
	}
	if c.DwellMinutes <= 0 {
		return &PolicyConfigError{Field: "dwell_minutes", Detail: "dwell must be positive"}
	}
	if c.MaxPartySizeIndoor <= 0 || c.MaxPartySizeOutdoor <= 0 {
		return &PolicyConfigError{Field: "max_party_size", Detail: "party-size caps must be positive"}
	}
	if c.MediumMin > c.MediumMax {
		return &PolicyConfigError{Field: "tiers", Detail: "medium_min must not exceed medium_max"}
	}
	if c.MediumMax >= c.LargeMin {
		return &PolicyConfigError{Field: "tiers", Detail: "medium_max must be below large_min"}
	}
	if c.LargeMin > c.VeryLargeMin {
		return &PolicyConfigError{Field: "tiers", Detail: "large_min must not exceed very_large_min"}
	}
	if c.MaxLargeIndoor < 0 || c.MaxVeryLargeIndoor < 0 || c.MaxLargeOutdoor < 0 {
		return &PolicyConfigError{Field: "tiers", Detail: "tier concurrency caps must be non-negative"}
	}
	if c.MinLeadMinutes < 0 {
		return &PolicyConfigError{Field: "min_lead_minutes", Detail: "lead time must be non-negative"}
	}
	return nil
}

// =============================================================================
// TIERS
// =============================================================================

type Tier int

const (
	TierNone Tier = iota
	TierMedium
	TierLarge
	TierVeryLarge
)

// TierOf bands a party size. Very-large parties are reported as
// TierVeryLarge; callers that need "counts as large too" use IsLarge.
func (c PolicyConfig) TierOf(partySize int) Tier {
	switch {
	case partySize >= c.VeryLargeMin:
		return TierVeryLarge
	case partySize >= c.LargeMin:
		return TierLarge
	case partySize >= c.MediumMin && partySize <= c.MediumMax:
		return TierMedium
	}
	return TierNone
}

// IsLarge reports whether the tier counts against large-group caps.
// Very-large groups always do.
func (t Tier) IsLarge() bool { return t == TierLarge || t == TierVeryLarge }
