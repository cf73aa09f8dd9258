package booking_test

import (
	"testing"
	"time"

	"github.com/terrazza/booking-engine/booking"
)

// =============================================================================
// PRESSURE
// =============================================================================

func TestPressureFor(t *testing.T) {
	cases := []struct {
		occupied, capacity int
		want               booking.Pressure
	}{
		{0, 10, booking.PressureCalm},
		{4, 10, booking.PressureCalm},
		{5, 10, booking.PressureBusy}, // 50% is busy, not calm
		{7, 10, booking.PressureBusy},
		{8, 10, booking.PressureVeryBusy}, // 80% is very busy
		{12, 10, booking.PressureVeryBusy},
		{3, 0, booking.PressureUnknown},
	}
	for _, tc := range cases {
		if got := booking.PressureFor(tc.occupied, tc.capacity); got != tc.want {
			t.Errorf("PressureFor(%d, %d) = %s, want %s", tc.occupied, tc.capacity, got, tc.want)
		}
	}
}

// =============================================================================
// TIMELINE CONSTRUCTION
// =============================================================================

func timelineRes(id string, hour, minute, size int, pref booking.SeatingPreference, tables ...booking.Table) booking.Reservation {
	r := existing(someDay, hour, minute, size, pref)
	r.ID = booking.ReservationID(id)
	r.Tables = tables
	return r
}

func TestBuildTimeline_EmptyDay(t *testing.T) {
	tl := booking.BuildTimeline(someDay, nil, 90*time.Minute, 42, 54, testNow)
	if len(tl.Buckets) != 0 || len(tl.Hours) != 0 {
		t.Fatalf("empty day must produce an empty timeline, got %+v", tl)
	}
}

func TestBuildTimeline_BucketLoadsAndSpan(t *testing.T) {
	// GIVEN: two overlapping indoor-assigned reservations
	t1 := booking.Table{ID: "t1", Area: booking.AreaIndoor}
	t2 := booking.Table{ID: "t2", Area: booking.AreaIndoor}
	res := []booking.Reservation{
		timelineRes("a", 19, 0, 10, booking.PrefNone, t1),
		timelineRes("b", 19, 15, 15, booking.PrefNone, t2),
	}

	// WHEN: dwell 90 minutes
	tl := booking.BuildTimeline(someDay, res, 90*time.Minute, 42, 54, testNow)

	// THEN: the span runs 19:00 to 20:45 in 15-minute steps
	if len(tl.Buckets) != 7 {
		t.Fatalf("expected 7 buckets over [19:00, 20:45), got %d", len(tl.Buckets))
	}
	first := tl.Buckets[0]
	if !first.Start.Equal(at(19, 0)) || first.Indoor != 10 {
		t.Fatalf("first bucket: got start %v indoor %d", first.Start, first.Indoor)
	}
	// 19:15 onward both windows overlap
	if tl.Buckets[1].Indoor != 25 {
		t.Fatalf("19:15 bucket indoor = %d, want 25", tl.Buckets[1].Indoor)
	}
	// At 20:30 the first reservation has ended
	if tl.Buckets[6].Indoor != 15 {
		t.Fatalf("20:30 bucket indoor = %d, want 15", tl.Buckets[6].Indoor)
	}
}

func TestBuildTimeline_AreaClassification(t *testing.T) {
	// GIVEN: an assigned outdoor table despite an indoor preference, an
	// unassigned indoor-preference party, and an unassigned no-preference one
	outdoorTable := booking.Table{ID: "o1", Area: booking.AreaOutdoor}
	res := []booking.Reservation{
		timelineRes("assigned", 19, 0, 4, booking.PrefIndoor, outdoorTable),
		timelineRes("indoor-pref", 19, 0, 3, booking.PrefIndoor),
		timelineRes("no-pref", 19, 0, 2, booking.PrefNone),
	}

	tl := booking.BuildTimeline(someDay, res, 90*time.Minute, 42, 54, testNow)

	b := tl.Buckets[0]
	// The assigned table wins over the stated preference.
	if b.Outdoor != 4 {
		t.Errorf("outdoor = %d, want 4 (table assignment wins)", b.Outdoor)
	}
	// An indoor-only preference reports as indoor even without a table.
	if b.Indoor != 3 {
		t.Errorf("indoor = %d, want 3", b.Indoor)
	}
	// No preference and no table stays unassigned.
	if b.Unassigned != 2 {
		t.Errorf("unassigned = %d, want 2", b.Unassigned)
	}
}

func TestBuildTimeline_ExcludesNonCountingStatuses(t *testing.T) {
	cancelled := timelineRes("c", 19, 0, 10, booking.PrefIndoor)
	cancelled.Status = booking.StatusCancelled
	noShow := timelineRes("n", 19, 0, 10, booking.PrefIndoor)
	noShow.Status = booking.StatusNoShow
	kept := timelineRes("k", 19, 0, 4, booking.PrefIndoor)

	tl := booking.BuildTimeline(someDay, []booking.Reservation{cancelled, noShow, kept}, 90*time.Minute, 42, 54, testNow)
	if tl.Buckets[0].Indoor != 4 {
		t.Fatalf("cancelled and no-show must not appear on the timeline, got indoor %d", tl.Buckets[0].Indoor)
	}
}

func TestBuildTimeline_HourlyRollupIsMax(t *testing.T) {
	// GIVEN: the 19:00 hour peaks at 25 indoor seats
	t1 := booking.Table{ID: "t1", Area: booking.AreaIndoor}
	t2 := booking.Table{ID: "t2", Area: booking.AreaIndoor}
	res := []booking.Reservation{
		timelineRes("a", 19, 0, 10, booking.PrefNone, t1),
		timelineRes("b", 19, 15, 15, booking.PrefNone, t2),
	}

	tl := booking.BuildTimeline(someDay, res, 90*time.Minute, 42, 54, testNow)

	if len(tl.Hours) != 2 {
		t.Fatalf("expected hours 19:00 and 20:00, got %d", len(tl.Hours))
	}
	h19 := tl.Hours[0]
	if !h19.Hour.Equal(at(19, 0)) || h19.Indoor != 25 {
		t.Fatalf("hour 19: got %v indoor %d, want 19:00 indoor 25", h19.Hour, h19.Indoor)
	}
}

func TestBuildTimeline_OmitsEmptyHours(t *testing.T) {
	// GIVEN: lunch and dinner with a dead afternoon between
	res := []booking.Reservation{
		timelineRes("lunch", 12, 0, 4, booking.PrefIndoor),
		timelineRes("dinner", 19, 0, 4, booking.PrefIndoor),
	}

	tl := booking.BuildTimeline(someDay, res, 60*time.Minute, 42, 54, testNow)

	if len(tl.Hours) != 2 {
		t.Fatalf("zero-load afternoon hours must be omitted, got %d hours", len(tl.Hours))
	}
	if !tl.Hours[0].Hour.Equal(at(12, 0)) || !tl.Hours[1].Hour.Equal(at(19, 0)) {
		t.Fatalf("got hours %v and %v", tl.Hours[0].Hour, tl.Hours[1].Hour)
	}
}

func TestBuildTimeline_IsPast(t *testing.T) {
	res := []booking.Reservation{
		timelineRes("a", 19, 0, 4, booking.PrefIndoor),
	}
	// now is 20:00 on the same day: the 19:00 hour has fully elapsed, the
	// 20:00 hour has not.
	now := someDay.At(booking.NewClockTime(20, 0))

	tl := booking.BuildTimeline(someDay, res, 90*time.Minute, 42, 54, now)

	if len(tl.Hours) != 2 {
		t.Fatalf("expected two hours, got %d", len(tl.Hours))
	}
	if !tl.Hours[0].IsPast {
		t.Error("the 19:00 hour should be past at 20:00")
	}
	if tl.Hours[1].IsPast {
		t.Error("the 20:00 hour should not be past at 20:00")
	}
}
