package booking_test

import (
	"testing"
	"time"

	"github.com/terrazza/booking-engine/booking"
)

func ct(hour, minute int) booking.ClockTime {
	return booking.NewClockTime(hour, minute)
}

func ctp(hour, minute int) *booking.ClockTime {
	v := booking.NewClockTime(hour, minute)
	return &v
}

func weekdayHours(wd time.Weekday, open bool) booking.OpeningHours {
	last := ct(21, 30)
	return booking.OpeningHours{
		Weekday:             wd,
		Open:                open,
		OpenTime:            ct(12, 0),
		CloseTime:           ct(22, 0),
		LastReservationTime: &last,
	}
}

// =============================================================================
// WEEKLY SCHEDULE
// =============================================================================

func TestScheduleFor_WeekdayRule(t *testing.T) {
	cal := booking.NewCalendar([]booking.OpeningHours{weekdayHours(time.Monday, true)}, nil)

	sched := cal.ScheduleFor(someDay) // a Monday
	if !sched.Open {
		t.Fatal("expected open")
	}
	if !sched.OpenTime.Equal(ct(12, 0)) || !sched.LastReservation.Equal(ct(21, 30)) {
		t.Fatalf("got open %s last %s", sched.OpenTime, sched.LastReservation)
	}
}

func TestScheduleFor_MissingWeekdayRuleMeansClosed(t *testing.T) {
	cal := booking.NewCalendar(nil, nil)
	if cal.ScheduleFor(someDay).Open {
		t.Fatal("a weekday without a rule must be closed")
	}
}

func TestScheduleFor_LastReservationFallsBackToClose(t *testing.T) {
	oh := weekdayHours(time.Monday, true)
	oh.LastReservationTime = nil
	cal := booking.NewCalendar([]booking.OpeningHours{oh}, nil)

	sched := cal.ScheduleFor(someDay)
	if !sched.LastReservation.Equal(ct(22, 0)) {
		t.Fatalf("without an explicit last-reservation time, close time applies; got %s", sched.LastReservation)
	}
}

func TestClosedWeekdays(t *testing.T) {
	// GIVEN: only Friday and Saturday have open rules
	cal := booking.NewCalendar([]booking.OpeningHours{
		weekdayHours(time.Friday, true),
		weekdayHours(time.Saturday, true),
		weekdayHours(time.Sunday, false), // explicit closed rule
	}, nil)

	closed := cal.ClosedWeekdays()
	if len(closed) != 5 {
		t.Fatalf("expected 5 closed weekdays, got %v", closed)
	}
	for _, wd := range closed {
		if wd == time.Friday || wd == time.Saturday {
			t.Fatalf("%s must not be reported closed", wd)
		}
	}
}

// =============================================================================
// SPECIAL DAYS
// =============================================================================

func TestScheduleFor_SpecialDayClosedOverridesOpenWeekday(t *testing.T) {
	cal := booking.NewCalendar(
		[]booking.OpeningHours{weekdayHours(time.Monday, true)},
		[]booking.SpecialOpeningDay{{Date: someDay, Open: false}},
	)

	sched := cal.ScheduleFor(someDay)
	if sched.Open {
		t.Fatal("a closed special day must override the weekday rule")
	}
	if sched.Special == nil {
		t.Fatal("the override must be surfaced on the schedule")
	}
}

func TestScheduleFor_SpecialDayCustomTimes(t *testing.T) {
	// GIVEN: a special day with its own hours on an otherwise closed Monday
	sd := booking.SpecialOpeningDay{
		Date:                someDay,
		Open:                true,
		OpenTime:            ctp(18, 0),
		CloseTime:           ctp(23, 0),
		LastReservationTime: ctp(22, 0),
	}
	cal := booking.NewCalendar(
		[]booking.OpeningHours{weekdayHours(time.Monday, false)},
		[]booking.SpecialOpeningDay{sd},
	)

	sched := cal.ScheduleFor(someDay)
	if !sched.Open {
		t.Fatal("an open special day overrides a closed weekday")
	}
	if !sched.OpenTime.Equal(ct(18, 0)) || !sched.LastReservation.Equal(ct(22, 0)) {
		t.Fatalf("got open %s last %s", sched.OpenTime, sched.LastReservation)
	}
}

func TestScheduleFor_SpecialDayTimesFallBackToWeekday(t *testing.T) {
	// GIVEN: an open special day that leaves all times unset
	sd := booking.SpecialOpeningDay{Date: someDay, Open: true}
	cal := booking.NewCalendar(
		[]booking.OpeningHours{weekdayHours(time.Monday, true)},
		[]booking.SpecialOpeningDay{sd},
	)

	sched := cal.ScheduleFor(someDay)
	if !sched.Open {
		t.Fatal("expected open")
	}
	if !sched.OpenTime.Equal(ct(12, 0)) || !sched.LastReservation.Equal(ct(21, 30)) {
		t.Fatalf("unset special times must inherit the weekday rule, got open %s last %s", sched.OpenTime, sched.LastReservation)
	}
}

func TestScheduleFor_OpenSpecialDayWithoutAnyTimesIsClosed(t *testing.T) {
	// GIVEN: an open special day on a weekday with no rule at all
	sd := booking.SpecialOpeningDay{Date: someDay, Open: true}
	cal := booking.NewCalendar(nil, []booking.SpecialOpeningDay{sd})

	if cal.ScheduleFor(someDay).Open {
		t.Fatal("open without resolvable times must degrade to closed, not guess")
	}
}

// =============================================================================
// BOOKABLE SLOTS
// =============================================================================

func TestBookableSlots(t *testing.T) {
	oh := weekdayHours(time.Monday, true)
	oh.OpenTime = ct(19, 0)
	last := ct(20, 0)
	oh.LastReservationTime = &last
	cal := booking.NewCalendar([]booking.OpeningHours{oh}, nil)

	slots := cal.BookableSlots(someDay, 15*time.Minute)

	// 19:00 through 20:00 inclusive
	want := []booking.ClockTime{ct(19, 0), ct(19, 15), ct(19, 30), ct(19, 45), ct(20, 0)}
	if len(slots) != len(want) {
		t.Fatalf("got %d slots %v, want %d", len(slots), slots, len(want))
	}
	for i := range want {
		if !slots[i].Equal(want[i]) {
			t.Fatalf("slot %d = %s, want %s", i, slots[i], want[i])
		}
	}
}

func TestBookableSlots_ClosedDay(t *testing.T) {
	cal := booking.NewCalendar(nil, nil)
	if slots := cal.BookableSlots(someDay, 15*time.Minute); len(slots) != 0 {
		t.Fatalf("closed day must have no slots, got %v", slots)
	}
}
