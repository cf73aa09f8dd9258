/*
admission.go - Admission control for candidate reservations

PURPOSE:
  Decides whether a candidate reservation may be accepted given the venue's
  configured rules and all existing non-cancelled reservations for the day.
  The answer is a Decision value: accepted, or rejected with one or more
  structured reasons a UI can attach to the offending field.

PIPELINE:
  The rules run as an ordered list of independent, pure check functions
  over a shared EvaluationContext. Each check appends zero or more reasons;
  evaluation normally continues so a guest sees every problem at once.
  Three checks are terminal - they stop the pipeline because nothing after
  them is meaningful:

    reservations closed   nothing is bookable at all
    booking window shut   the special day is not open for booking yet
    zone capacity full    seats are gone (including the suggest-outdoor
                          variant, where a corrective action exists)

ORDER OF CHECKS:
  1. reservations-open switch        (terminal on failure)
  2. required fields present
  3. party-size caps
  4. contact completeness
  5. no past dates
  6. special-day booking window      (terminal on failure)
  7. opening hours for the date
  8. same-day minimum lead time
  9. zone seat capacity with overlap (terminal on failure)
 10. group-tier concurrency

ERRORS:
  Evaluate only returns an error for a broken PolicyConfig. Business
  rejections are never errors.

SEE ALSO:
  - overlap.go: the shared overlap predicate used by check 9 and 10
  - config.go: every threshold consulted here
*/
package booking

import (
	"fmt"
	"time"
)

// =============================================================================
// CANDIDATE - What the booking flow hands the engine
// =============================================================================

type Candidate struct {
	Name       string
	Email      string
	Phone      string
	Date       Date
	Time       ClockTime
	PartySize  int
	Preference SeatingPreference
	Notes      string
}

// Window is the dwell window the candidate would occupy.
func (c Candidate) Window(dwell time.Duration) Window {
	return NewWindow(c.Date.At(c.Time), dwell)
}

// =============================================================================
// DECISION - The result of admission control
// =============================================================================

// Field attributes a rejection reason to a candidate input.
type Field string

const (
	FieldDate       Field = "date"
	FieldTime       Field = "time"
	FieldPartySize  Field = "party_size"
	FieldPreference Field = "seating_preference"
	FieldEmail      Field = "email"
	FieldPhone      Field = "phone"
	FieldGeneral    Field = "general"
)

// ReasonCode identifies a rejection rule machine-readably.
type ReasonCode string

const (
	ReasonReservationsClosed ReasonCode = "reservations_closed"
	ReasonMissingDate        ReasonCode = "missing_date"
	ReasonMissingTime        ReasonCode = "missing_time"
	ReasonInvalidPartySize   ReasonCode = "invalid_party_size"
	ReasonPartyTooLarge      ReasonCode = "party_too_large"
	ReasonOutdoorTooLarge    ReasonCode = "outdoor_party_too_large"
	ReasonMissingEmail       ReasonCode = "missing_email"
	ReasonMissingPhone       ReasonCode = "missing_phone"
	ReasonPastDate           ReasonCode = "past_date"
	ReasonBookingsNotOpen    ReasonCode = "bookings_not_open"
	ReasonClosedDay          ReasonCode = "closed_day"
	ReasonOutsideHours       ReasonCode = "outside_hours"
	ReasonInsufficientLead   ReasonCode = "insufficient_lead"
	ReasonZoneFull           ReasonCode = "zone_full"
	ReasonSuggestOutdoor     ReasonCode = "indoor_full_outdoor_available"
	ReasonVeryLargeLimit     ReasonCode = "very_large_group_limit"
	ReasonLargeLimit         ReasonCode = "large_group_limit"
	ReasonMediumLimit        ReasonCode = "medium_group_limit"
)

// Reason is a single structured rejection reason, safe to show end users.
type Reason struct {
	Field   Field      `json:"field"`
	Code    ReasonCode `json:"code"`
	Message string     `json:"message"`
}

// Decision is the outcome of Evaluate. Accepted is true only when no check
// produced a reason.
type Decision struct {
	Accepted bool
	Reasons  []Reason
}

func (d Decision) Rejected() bool { return !d.Accepted }

// HasReason reports whether the decision carries the given reason code.
func (d Decision) HasReason(code ReasonCode) bool {
	for _, r := range d.Reasons {
		if r.Code == code {
			return true
		}
	}
	return false
}

// =============================================================================
// EVALUATION CONTEXT
// =============================================================================

// EvaluationContext is the shared state the check pipeline reads. Checks
// never mutate anything except the terminal flag and the lazily built
// overlap index.
type EvaluationContext struct {
	Candidate Candidate
	Existing  []Reservation
	Policy    PolicyConfig
	Calendar  *Calendar

	// Now is the venue-local current time; Today derives from it.
	Now time.Time

	index    *OverlapIndex
	terminal bool
}

func (ec *EvaluationContext) today() Date { return DateOf(ec.Now) }

// overlapIndex lazily indexes the same-day existing reservations.
func (ec *EvaluationContext) overlapIndex() *OverlapIndex {
	if ec.index == nil {
		var sameDay []Reservation
		for _, r := range ec.Existing {
			if r.Date.Equal(ec.Candidate.Date) {
				sameDay = append(sameDay, r)
			}
		}
		ec.index = NewOverlapIndex(sameDay, ec.Policy.Dwell())
	}
	return ec.index
}

// zoneLoad sums the overlapping party sizes in a zone for the candidate's
// window, and returns the overlapping reservations in that zone.
func (ec *EvaluationContext) zoneLoad(zone Zone) (int, []Reservation) {
	window := ec.Candidate.Window(ec.Policy.Dwell())
	var load int
	var inZone []Reservation
	for _, r := range ec.overlapIndex().Overlapping(window) {
		if CapacityZone(r.Preference) != zone {
			continue
		}
		load += r.PartySize
		inZone = append(inZone, r)
	}
	return load, inZone
}

// =============================================================================
// EVALUATE
// =============================================================================

type checkFunc func(*EvaluationContext) []Reason

var admissionChecks = []checkFunc{
	checkReservationsOpen,
	checkRequired,
	checkPartySize,
	checkContact,
	checkPastDate,
	checkBookingWindow,
	checkOpeningHours,
	checkLeadTime,
	checkZoneCapacity,
	checkGroupTiers,
}

// Evaluate runs admission control for a candidate reservation. It is pure:
// no inputs are mutated and nothing is persisted. The returned error is
// non-nil only for a configuration fault.
func Evaluate(c Candidate, existing []Reservation, policy PolicyConfig, cal *Calendar, now time.Time) (Decision, error) {
	if err := policy.Validate(); err != nil {
		return Decision{}, err
	}
	if cal == nil {
		cal = NewCalendar(nil, nil)
	}

	ec := &EvaluationContext{
		Candidate: c,
		Existing:  existing,
		Policy:    policy,
		Calendar:  cal,
		Now:       now,
	}

	var reasons []Reason
	for _, check := range admissionChecks {
		reasons = append(reasons, check(ec)...)
		if ec.terminal {
			break
		}
	}

	return Decision{Accepted: len(reasons) == 0, Reasons: reasons}, nil
}

// =============================================================================
// CHECKS
// =============================================================================

func checkReservationsOpen(ec *EvaluationContext) []Reason {
	if ec.Policy.ReservationsOpen {
		return nil
	}
	ec.terminal = true
	msg := ec.Policy.ClosureMessage
	if msg == "" {
		msg = "Online reservations are temporarily closed. Please contact the restaurant directly."
	}
	return []Reason{{Field: FieldGeneral, Code: ReasonReservationsClosed, Message: msg}}
}

// checkRequired rejects malformed candidates deterministically instead of
// letting later checks fail ambiguously. Later checks guard on presence.
func checkRequired(ec *EvaluationContext) []Reason {
	var reasons []Reason
	if ec.Candidate.Date.IsZero() {
		reasons = append(reasons, Reason{Field: FieldDate, Code: ReasonMissingDate, Message: "Please choose a date."})
	}
	if ec.Candidate.Time.IsZero() {
		reasons = append(reasons, Reason{Field: FieldTime, Code: ReasonMissingTime, Message: "Please choose a time."})
	}
	if ec.Candidate.PartySize <= 0 {
		reasons = append(reasons, Reason{Field: FieldPartySize, Code: ReasonInvalidPartySize, Message: "Please tell us how many guests are coming."})
	}
	return reasons
}

func checkPartySize(ec *EvaluationContext) []Reason {
	size := ec.Candidate.PartySize
	if size <= 0 {
		return nil
	}
	var reasons []Reason
	// The indoor cap is the global cap, applied regardless of preference.
	if size > ec.Policy.MaxPartySizeIndoor {
		reasons = append(reasons, Reason{
			Field: FieldPartySize,
			Code:  ReasonPartyTooLarge,
			Message: fmt.Sprintf("Online reservations are limited to %d guests. For larger groups, please contact the restaurant directly.",
				ec.Policy.MaxPartySizeIndoor),
		})
	}
	if ec.Candidate.Preference == PrefOutdoor && size > ec.Policy.MaxPartySizeOutdoor {
		reasons = append(reasons, Reason{
			Field: FieldPartySize,
			Code:  ReasonOutdoorTooLarge,
			Message: fmt.Sprintf("For outdoor seating we accommodate up to %d guests per booking. Please choose indoor seating or contact the restaurant by phone.",
				ec.Policy.MaxPartySizeOutdoor),
		})
	}
	return reasons
}

func checkContact(ec *EvaluationContext) []Reason {
	var reasons []Reason
	if ec.Candidate.Email == "" {
		reasons = append(reasons, Reason{Field: FieldEmail, Code: ReasonMissingEmail,
			Message: "Email is required so we can send you the confirmation."})
	}
	if ec.Candidate.Phone == "" {
		reasons = append(reasons, Reason{Field: FieldPhone, Code: ReasonMissingPhone,
			Message: "Phone number is required so that we can contact you if necessary."})
	}
	return reasons
}

func checkPastDate(ec *EvaluationContext) []Reason {
	if ec.Candidate.Date.IsZero() || !ec.Candidate.Date.Before(ec.today()) {
		return nil
	}
	return []Reason{{Field: FieldDate, Code: ReasonPastDate, Message: "You can't book for a past date."}}
}

func checkBookingWindow(ec *EvaluationContext) []Reason {
	if ec.Candidate.Date.IsZero() {
		return nil
	}
	sd, ok := ec.Calendar.SpecialFor(ec.Candidate.Date)
	if !ok || !ec.today().Before(sd.BookingsOpenFrom) {
		return nil
	}
	// No point running further checks until the window opens.
	ec.terminal = true
	return []Reason{{
		Field: FieldDate,
		Code:  ReasonBookingsNotOpen,
		Message: fmt.Sprintf("Reservations for this date are not open yet. Online bookings will open on %s.",
			sd.BookingsOpenFrom.Time.Format("January 2 2006")),
	}}
}

func checkOpeningHours(ec *EvaluationContext) []Reason {
	if ec.Candidate.Date.IsZero() {
		return nil
	}
	sched := ec.Calendar.ScheduleFor(ec.Candidate.Date)
	weekdayLabel := ec.Candidate.Date.Time.Format("Monday")

	if !sched.Open {
		return []Reason{{Field: FieldDate, Code: ReasonClosedDay,
			Message: fmt.Sprintf("We are closed on %ss. Please choose another date.", weekdayLabel)}}
	}
	if ec.Candidate.Time.IsZero() {
		return nil
	}
	if ec.Candidate.Time.Before(sched.OpenTime) || ec.Candidate.Time.After(sched.LastReservation) {
		return []Reason{{Field: FieldTime, Code: ReasonOutsideHours,
			Message: fmt.Sprintf("On %ss we accept reservations between %s and %s.",
				weekdayLabel, sched.OpenTime, sched.LastReservation)}}
	}
	return nil
}

func checkLeadTime(ec *EvaluationContext) []Reason {
	if ec.Candidate.Date.IsZero() || ec.Candidate.Time.IsZero() {
		return nil
	}
	if !ec.Candidate.Date.Equal(ec.today()) {
		return nil
	}
	cutoff := ClockTimeOf(ec.Now.Add(time.Duration(ec.Policy.MinLeadMinutes) * time.Minute))
	if ec.Candidate.Time.BeforeOrEqual(cutoff) {
		return []Reason{{Field: FieldTime, Code: ReasonInsufficientLead,
			Message: fmt.Sprintf("For same-day reservations, please choose a time at least %d minutes from now.",
				ec.Policy.MinLeadMinutes)}}
	}
	return nil
}

func checkZoneCapacity(ec *EvaluationContext) []Reason {
	c := ec.Candidate
	if c.Date.IsZero() || c.Time.IsZero() || c.PartySize <= 0 {
		return nil
	}

	zone := CapacityZone(c.Preference)
	load, _ := ec.zoneLoad(zone)
	if load+c.PartySize <= ec.Policy.ZoneCapacity(zone) {
		return nil
	}

	ec.terminal = true

	// No-preference parties get pointed outdoors when indoor is the only
	// problem: the booking is not admissible as indoor, but a corrective
	// action exists.
	if zone == ZoneIndoor && c.Preference == PrefNone {
		outdoorLoad, _ := ec.zoneLoad(ZoneOutdoor)
		if outdoorLoad+c.PartySize <= ec.Policy.OutdoorCapacity {
			return []Reason{{Field: FieldPreference, Code: ReasonSuggestOutdoor,
				Message: "We are fully booked indoors at that time, but outdoor tables may be available if the weather allows. Please choose outdoor seating or contact the restaurant by phone."}}
		}
	}

	return []Reason{{Field: FieldTime, Code: ReasonZoneFull,
		Message: "Sorry, we are fully booked at that time based on current reservations. Please pick another time slot."}}
}

func checkGroupTiers(ec *EvaluationContext) []Reason {
	c := ec.Candidate
	if c.Date.IsZero() || c.Time.IsZero() || c.PartySize <= 0 {
		return nil
	}

	zone := CapacityZone(c.Preference)
	_, overlapping := ec.zoneLoad(zone)

	var large, veryLarge, medium int
	for _, r := range overlapping {
		switch tier := ec.Policy.TierOf(r.PartySize); {
		case tier == TierVeryLarge:
			veryLarge++
			large++ // a very-large group also counts as large
		case tier == TierLarge:
			large++
		case tier == TierMedium:
			medium++
		}
	}

	candTier := ec.Policy.TierOf(c.PartySize)
	var reasons []Reason

	if zone == ZoneIndoor {
		if candTier == TierVeryLarge && veryLarge >= ec.Policy.MaxVeryLargeIndoor {
			reasons = append(reasons, Reason{Field: FieldTime, Code: ReasonVeryLargeLimit,
				Message: "We can only host one very large group at the same time. Please choose another time or contact the restaurant directly."})
		}
		if candTier.IsLarge() && large+1 > ec.Policy.MaxLargeIndoor {
			reasons = append(reasons, Reason{Field: FieldTime, Code: ReasonLargeLimit,
				Message: "We can only accommodate a limited number of large groups at the same time. Please choose another time or contact the restaurant by phone for large party bookings."})
		}

		// Once two or more large groups are on the floor, at most one
		// medium group fits alongside.
		effectiveLarge := large
		if candTier.IsLarge() {
			effectiveLarge++
		}
		if effectiveLarge >= 2 {
			effectiveMedium := medium
			if candTier == TierMedium {
				effectiveMedium++
			}
			if effectiveMedium > 1 {
				reasons = append(reasons, Reason{Field: FieldTime, Code: ReasonMediumLimit,
					Message: "We are already hosting multiple large groups at that time, so we cannot take additional medium-size bookings. Please choose another time or contact the restaurant directly."})
			}
		}
	} else {
		if candTier.IsLarge() && large+1 > ec.Policy.MaxLargeOutdoor {
			reasons = append(reasons, Reason{Field: FieldTime, Code: ReasonLargeLimit,
				Message: "We are already hosting multiple large outdoor groups at that time. Please choose another time or select indoor seating."})
		}
	}

	return reasons
}
