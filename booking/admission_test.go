package booking_test

import (
	"errors"
	"testing"
	"time"

	"github.com/terrazza/booking-engine/booking"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// testPolicy mirrors the factory defaults. Kept local so engine tests do not
// depend on the factory package.
func testPolicy() booking.PolicyConfig {
	return booking.PolicyConfig{
		IndoorCapacity:      42,
		OutdoorCapacity:     54,
		DwellMinutes:        90,
		MaxPartySizeIndoor:  12,
		MaxPartySizeOutdoor: 8,
		MediumMin:           5,
		MediumMax:           6,
		LargeMin:            7,
		VeryLargeMin:        9,
		MaxLargeIndoor:      2,
		MaxVeryLargeIndoor:  1,
		MaxLargeOutdoor:     2,
		MinLeadMinutes:      15,
		ReservationsOpen:    true,
	}
}

// openAllWeek builds a calendar open every day 12:00-22:00, last seating 21:30.
func openAllWeek() *booking.Calendar {
	var weekly []booking.OpeningHours
	last := booking.NewClockTime(21, 30)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		weekly = append(weekly, booking.OpeningHours{
			Weekday:             wd,
			Open:                true,
			OpenTime:            booking.NewClockTime(12, 0),
			CloseTime:           booking.NewClockTime(22, 0),
			LastReservationTime: &last,
		})
	}
	return booking.NewCalendar(weekly, nil)
}

func candidate(date booking.Date, hour, minute, size int, pref booking.SeatingPreference) booking.Candidate {
	return booking.Candidate{
		Name:       "Test Guest",
		Email:      "guest@example.com",
		Phone:      "+41 79 000 00 00",
		Date:       date,
		Time:       booking.NewClockTime(hour, minute),
		PartySize:  size,
		Preference: pref,
	}
}

func existing(date booking.Date, hour, minute, size int, pref booking.SeatingPreference) booking.Reservation {
	return booking.Reservation{
		ID:         booking.ReservationID("existing"),
		Date:       date,
		Time:       booking.NewClockTime(hour, minute),
		PartySize:  size,
		Preference: pref,
		Status:     booking.StatusConfirmed,
	}
}

var (
	testNow = time.Date(2026, time.June, 10, 10, 0, 0, 0, time.UTC)
	someDay = booking.NewDate(2026, time.June, 15)
)

func evaluate(t *testing.T, c booking.Candidate, res []booking.Reservation) booking.Decision {
	t.Helper()
	d, err := booking.Evaluate(c, res, testPolicy(), openAllWeek(), testNow)
	if err != nil {
		t.Fatalf("Evaluate returned unexpected error: %v", err)
	}
	return d
}

func requireReason(t *testing.T, d booking.Decision, code booking.ReasonCode) {
	t.Helper()
	if !d.Rejected() {
		t.Fatalf("expected rejection with %q, got accepted", code)
	}
	if !d.HasReason(code) {
		t.Fatalf("expected reason %q, got %+v", code, d.Reasons)
	}
}

// =============================================================================
// BASIC ACCEPTANCE AND INPUT VALIDATION
// =============================================================================

func TestEvaluate_EmptyRestaurant_Accepted(t *testing.T) {
	// GIVEN: no existing reservations
	// WHEN: a valid candidate books a future evening slot
	d := evaluate(t, candidate(someDay, 19, 0, 4, booking.PrefNone), nil)

	// THEN: accepted with no reasons
	if d.Rejected() {
		t.Fatalf("expected acceptance, got reasons %+v", d.Reasons)
	}
	if len(d.Reasons) != 0 {
		t.Fatalf("accepted decision must carry no reasons, got %+v", d.Reasons)
	}
}

func TestEvaluate_MissingFields_AllReported(t *testing.T) {
	// GIVEN: a candidate missing date, time, party size and contact details
	c := booking.Candidate{Name: "Test Guest"}

	// WHEN: evaluated
	d := evaluate(t, c, nil)

	// THEN: every missing field is reported in one pass
	for _, code := range []booking.ReasonCode{
		booking.ReasonMissingDate,
		booking.ReasonMissingTime,
		booking.ReasonInvalidPartySize,
		booking.ReasonMissingEmail,
		booking.ReasonMissingPhone,
	} {
		requireReason(t, d, code)
	}
}

func TestEvaluate_PartyTooLarge(t *testing.T) {
	d := evaluate(t, candidate(someDay, 19, 0, 13, booking.PrefNone), nil)
	requireReason(t, d, booking.ReasonPartyTooLarge)
}

func TestEvaluate_OutdoorPartyTooLarge(t *testing.T) {
	// GIVEN: outdoor cap is 8
	d := evaluate(t, candidate(someDay, 19, 0, 9, booking.PrefOutdoor), nil)
	requireReason(t, d, booking.ReasonOutdoorTooLarge)
}

func TestEvaluate_OutdoorCapAtLimit_Accepted(t *testing.T) {
	d := evaluate(t, candidate(someDay, 19, 0, 8, booking.PrefOutdoor), nil)
	if d.Rejected() {
		t.Fatalf("party of 8 outdoors should pass the size cap, got %+v", d.Reasons)
	}
}

func TestEvaluate_PastDate_Rejected(t *testing.T) {
	yesterday := booking.NewDate(2026, time.June, 9)
	d := evaluate(t, candidate(yesterday, 19, 0, 4, booking.PrefNone), nil)
	requireReason(t, d, booking.ReasonPastDate)
}

func TestEvaluate_InvalidPolicy_ReturnsError(t *testing.T) {
	// GIVEN: a policy with an impossible tier ordering
	p := testPolicy()
	p.LargeMin = 4 // below MediumMax

	// WHEN: evaluated
	_, err := booking.Evaluate(candidate(someDay, 19, 0, 4, booking.PrefNone), nil, p, openAllWeek(), testNow)

	// THEN: a configuration fault, never a rejection
	if !errors.Is(err, booking.ErrInvalidPolicy) {
		t.Fatalf("expected ErrInvalidPolicy, got %v", err)
	}
}

// =============================================================================
// CLOSURE AND SCHEDULE CHECKS
// =============================================================================

func TestEvaluate_ReservationsClosed_TerminalWithMessage(t *testing.T) {
	// GIVEN: online reservations are switched off with a custom message
	p := testPolicy()
	p.ReservationsOpen = false
	p.ClosureMessage = "Closed for the staff party."

	// WHEN: an otherwise-valid candidate is evaluated
	d, err := booking.Evaluate(candidate(someDay, 19, 0, 4, booking.PrefNone), nil, p, openAllWeek(), testNow)
	if err != nil {
		t.Fatal(err)
	}

	// THEN: the closure is the one and only reason
	requireReason(t, d, booking.ReasonReservationsClosed)
	if len(d.Reasons) != 1 {
		t.Fatalf("closure must be terminal, got %+v", d.Reasons)
	}
	if d.Reasons[0].Message != "Closed for the staff party." {
		t.Fatalf("expected the configured message, got %q", d.Reasons[0].Message)
	}
}

func TestEvaluate_ClosedWeekday_Rejected(t *testing.T) {
	// GIVEN: a calendar with Mondays closed
	var weekly []booking.OpeningHours
	last := booking.NewClockTime(21, 30)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		weekly = append(weekly, booking.OpeningHours{
			Weekday:             wd,
			Open:                wd != time.Monday,
			OpenTime:            booking.NewClockTime(12, 0),
			CloseTime:           booking.NewClockTime(22, 0),
			LastReservationTime: &last,
		})
	}
	cal := booking.NewCalendar(weekly, nil)
	monday := booking.NewDate(2026, time.June, 15) // a Monday

	// WHEN: booking that Monday
	d, err := booking.Evaluate(candidate(monday, 19, 0, 4, booking.PrefNone), nil, testPolicy(), cal, testNow)
	if err != nil {
		t.Fatal(err)
	}

	// THEN
	requireReason(t, d, booking.ReasonClosedDay)
}

func TestEvaluate_OutsideHours(t *testing.T) {
	// WHEN: before opening
	d := evaluate(t, candidate(someDay, 11, 0, 4, booking.PrefNone), nil)
	requireReason(t, d, booking.ReasonOutsideHours)

	// WHEN: after the last reservation time
	d = evaluate(t, candidate(someDay, 21, 45, 4, booking.PrefNone), nil)
	requireReason(t, d, booking.ReasonOutsideHours)

	// WHEN: exactly at the last reservation time
	d = evaluate(t, candidate(someDay, 21, 30, 4, booking.PrefNone), nil)
	if d.Rejected() {
		t.Fatalf("last reservation time is inclusive, got %+v", d.Reasons)
	}
}

func TestEvaluate_SameDayLeadTime(t *testing.T) {
	today := booking.DateOf(testNow) // now is 10:00

	// WHEN: 10:10, inside the 15-minute lead window
	d := evaluate(t, candidate(today, 10, 10, 4, booking.PrefOutdoor), nil)
	requireReason(t, d, booking.ReasonInsufficientLead)

	// WHEN: 10:15 exactly, the cutoff itself is still too soon
	d = evaluate(t, candidate(today, 10, 15, 4, booking.PrefOutdoor), nil)
	requireReason(t, d, booking.ReasonInsufficientLead)

	// WHEN: 12:30, comfortably later
	d = evaluate(t, candidate(today, 12, 30, 4, booking.PrefOutdoor), nil)
	if d.Rejected() {
		t.Fatalf("expected acceptance, got %+v", d.Reasons)
	}
}

func TestEvaluate_BookingWindowNotOpen_SingleTerminalReason(t *testing.T) {
	// GIVEN: Christmas 2030 opens for booking on December 1
	xmas := booking.NewDate(2030, time.December, 25)
	sd := booking.SpecialOpeningDay{
		Date:             xmas,
		Open:             true,
		BookingsOpenFrom: booking.NewDate(2030, time.December, 1),
	}
	cal := booking.NewCalendar(nil, []booking.SpecialOpeningDay{sd})
	now := time.Date(2030, time.November, 20, 10, 0, 0, 0, time.UTC)

	// WHEN: booking on November 20
	d, err := booking.Evaluate(candidate(xmas, 19, 0, 4, booking.PrefNone), nil, testPolicy(), cal, now)
	if err != nil {
		t.Fatal(err)
	}

	// THEN: exactly one reason; no closed-day noise from the empty weekly schedule
	requireReason(t, d, booking.ReasonBookingsNotOpen)
	if len(d.Reasons) != 1 {
		t.Fatalf("booking-window check must be terminal, got %+v", d.Reasons)
	}
}

// =============================================================================
// ZONE CAPACITY
// =============================================================================

func TestEvaluate_IndoorFilledToExactCapacity_Accepted(t *testing.T) {
	// GIVEN: 38 indoor seats already taken at 19:00
	res := []booking.Reservation{
		existing(someDay, 19, 0, 12, booking.PrefIndoor),
		existing(someDay, 19, 0, 12, booking.PrefIndoor),
		existing(someDay, 19, 0, 4, booking.PrefIndoor),
		existing(someDay, 19, 30, 10, booking.PrefNone), // no-pref counts indoor
	}

	// WHEN: a party of 4 brings the load to exactly 42
	d := evaluate(t, candidate(someDay, 19, 0, 4, booking.PrefIndoor), res)

	// THEN: exact fill is allowed
	if d.Rejected() {
		t.Fatalf("load of exactly IndoorCapacity must be accepted, got %+v", d.Reasons)
	}
}

func TestEvaluate_IndoorOverCapacity_Terminal(t *testing.T) {
	// GIVEN: 40 indoor seats taken
	res := []booking.Reservation{
		existing(someDay, 19, 0, 12, booking.PrefIndoor),
		existing(someDay, 19, 0, 12, booking.PrefIndoor),
		existing(someDay, 19, 0, 12, booking.PrefIndoor),
		existing(someDay, 19, 0, 4, booking.PrefIndoor),
	}

	// WHEN: a party of 3 would push the load to 43
	d := evaluate(t, candidate(someDay, 19, 0, 3, booking.PrefIndoor), res)

	// THEN: zone-full, terminal, no tier reasons stacked on top
	requireReason(t, d, booking.ReasonZoneFull)
	if len(d.Reasons) != 1 {
		t.Fatalf("zone-full must be terminal, got %+v", d.Reasons)
	}
}

func TestEvaluate_TouchingWindowsDoNotOverlap(t *testing.T) {
	// GIVEN: indoor completely full 12:00-13:30 (dwell 90)
	res := []booking.Reservation{
		existing(someDay, 12, 0, 12, booking.PrefIndoor),
		existing(someDay, 12, 0, 12, booking.PrefIndoor),
		existing(someDay, 12, 0, 12, booking.PrefIndoor),
		existing(someDay, 12, 0, 6, booking.PrefIndoor),
	}

	// WHEN: booking exactly when those windows end
	d := evaluate(t, candidate(someDay, 13, 30, 12, booking.PrefIndoor), res)

	// THEN: touching endpoints do not overlap
	if d.Rejected() {
		t.Fatalf("back-to-back seating must be allowed, got %+v", d.Reasons)
	}
}

func TestEvaluate_CancelledReservationsReleaseCapacity(t *testing.T) {
	// GIVEN: indoor nominally over capacity, but one block is cancelled
	cancelled := existing(someDay, 19, 0, 12, booking.PrefIndoor)
	cancelled.Status = booking.StatusCancelled
	res := []booking.Reservation{
		existing(someDay, 19, 0, 12, booking.PrefIndoor),
		existing(someDay, 19, 0, 12, booking.PrefIndoor),
		existing(someDay, 19, 0, 6, booking.PrefIndoor),
		cancelled,
	}

	// WHEN: a party of 4 books the same slot (30+4 fits, 42+4 would not)
	d := evaluate(t, candidate(someDay, 19, 0, 4, booking.PrefIndoor), res)

	// THEN: the cancelled seats are free again
	if d.Rejected() {
		t.Fatalf("cancelled reservations must not hold seats, got %+v", d.Reasons)
	}
}

func TestEvaluate_IndoorFullOutdoorAvailable_SuggestsOutdoor(t *testing.T) {
	// GIVEN: a small venue where indoor cannot take a second large party
	p := testPolicy()
	p.IndoorCapacity = 10
	p.OutdoorCapacity = 10
	p.DwellMinutes = 60
	res := []booking.Reservation{existing(someDay, 19, 0, 9, booking.PrefIndoor)}

	// WHEN: a no-preference party of 9 overlaps at 19:30
	d, err := booking.Evaluate(candidate(someDay, 19, 30, 9, booking.PrefNone), res, p, openAllWeek(), testNow)
	if err != nil {
		t.Fatal(err)
	}

	// THEN: rejected, but with the outdoor suggestion instead of plain zone-full
	requireReason(t, d, booking.ReasonSuggestOutdoor)
	if d.HasReason(booking.ReasonZoneFull) {
		t.Fatalf("suggestion must replace the generic zone-full reason: %+v", d.Reasons)
	}

	// WHEN: the same party explicitly wants indoor
	d, err = booking.Evaluate(candidate(someDay, 19, 30, 9, booking.PrefIndoor), res, p, openAllWeek(), testNow)
	if err != nil {
		t.Fatal(err)
	}

	// THEN: no suggestion, just zone-full
	requireReason(t, d, booking.ReasonZoneFull)
}

// =============================================================================
// GROUP TIER LIMITS
// =============================================================================

func TestEvaluate_SecondVeryLargeGroupIndoor_Rejected(t *testing.T) {
	// GIVEN: a very large group (9) already seated indoors
	res := []booking.Reservation{existing(someDay, 19, 0, 9, booking.PrefIndoor)}

	// WHEN: a party of 10 overlaps
	d := evaluate(t, candidate(someDay, 19, 30, 10, booking.PrefIndoor), res)

	// THEN
	requireReason(t, d, booking.ReasonVeryLargeLimit)
}

func TestEvaluate_TwoLargeGroupsIndoor_Accepted(t *testing.T) {
	// GIVEN: one large group (7)
	res := []booking.Reservation{existing(someDay, 19, 0, 7, booking.PrefIndoor)}

	// WHEN: a second large group (8) overlaps
	d := evaluate(t, candidate(someDay, 19, 30, 8, booking.PrefIndoor), res)

	// THEN: two large groups fit
	if d.Rejected() {
		t.Fatalf("two large groups are within the indoor limit, got %+v", d.Reasons)
	}
}

func TestEvaluate_ThirdLargeGroupIndoor_Rejected(t *testing.T) {
	// GIVEN: two large groups already overlapping
	res := []booking.Reservation{
		existing(someDay, 19, 0, 7, booking.PrefIndoor),
		existing(someDay, 19, 15, 8, booking.PrefIndoor),
	}

	// WHEN: a third large group arrives
	d := evaluate(t, candidate(someDay, 19, 30, 7, booking.PrefIndoor), res)

	// THEN
	requireReason(t, d, booking.ReasonLargeLimit)
}

func TestEvaluate_MediumGroupBlockedByTwoLargeGroups(t *testing.T) {
	// GIVEN: two large groups plus one medium group on the floor
	res := []booking.Reservation{
		existing(someDay, 19, 0, 7, booking.PrefIndoor),
		existing(someDay, 19, 0, 8, booking.PrefIndoor),
		existing(someDay, 19, 0, 5, booking.PrefIndoor),
	}

	// WHEN: a second medium group (6) overlaps
	d := evaluate(t, candidate(someDay, 19, 30, 6, booking.PrefIndoor), res)

	// THEN: only one medium group fits alongside two large ones
	requireReason(t, d, booking.ReasonMediumLimit)
}

func TestEvaluate_FirstMediumGroupAlongsideTwoLarge_Accepted(t *testing.T) {
	// GIVEN: two large groups, no medium yet
	res := []booking.Reservation{
		existing(someDay, 19, 0, 7, booking.PrefIndoor),
		existing(someDay, 19, 0, 8, booking.PrefIndoor),
	}

	// WHEN: a medium group (5) overlaps
	d := evaluate(t, candidate(someDay, 19, 30, 5, booking.PrefIndoor), res)

	// THEN
	if d.Rejected() {
		t.Fatalf("one medium group alongside two large must fit, got %+v", d.Reasons)
	}
}

func TestEvaluate_ThirdLargeGroupOutdoor_Rejected(t *testing.T) {
	// GIVEN: two large outdoor groups
	res := []booking.Reservation{
		existing(someDay, 19, 0, 7, booking.PrefOutdoor),
		existing(someDay, 19, 0, 8, booking.PrefOutdoor),
	}

	// WHEN: a third large outdoor group arrives
	d := evaluate(t, candidate(someDay, 19, 30, 7, booking.PrefOutdoor), res)

	// THEN
	requireReason(t, d, booking.ReasonLargeLimit)
}

func TestEvaluate_TiersIgnoreOtherZone(t *testing.T) {
	// GIVEN: two large groups outdoors
	res := []booking.Reservation{
		existing(someDay, 19, 0, 7, booking.PrefOutdoor),
		existing(someDay, 19, 0, 8, booking.PrefOutdoor),
	}

	// WHEN: a large indoor group overlaps
	d := evaluate(t, candidate(someDay, 19, 30, 8, booking.PrefIndoor), res)

	// THEN: outdoor groups do not count against the indoor tier limits
	if d.Rejected() {
		t.Fatalf("tier limits are per zone, got %+v", d.Reasons)
	}
}
