/*
calendar.go - Opening hours and special-day overrides

PURPOSE:
  Resolves, for any calendar date, whether the venue is open, the earliest
  and latest bookable times, and any one-off override (Christmas, private
  events) including a delayed booking-window-open date.

RESOLUTION ORDER:
  A SpecialOpeningDay row for the date fully supersedes the weekday rule:
  its open/closed flag always wins, and any custom times it carries replace
  the weekday times field by field. Custom times it leaves unset fall back
  to the weekday row, so "open Christmas with normal hours but bookable
  only from December 1st" needs no duplicated times.

SEE ALSO:
  - admission.go: checkBookingWindow and checkOpeningHours consume this
*/
package booking

import "time"

// =============================================================================
// WEEKLY SCHEDULE
// =============================================================================

// OpeningHours is the rule for one weekday. At most one row per weekday.
type OpeningHours struct {
	Weekday  time.Weekday
	Open     bool
	OpenTime ClockTime
	CloseTime ClockTime

	// Last time a new reservation may start. Nil means CloseTime.
	LastReservationTime *ClockTime
}

// EffectiveLastReservation returns the last bookable start time,
// defaulting to the closing time when none is configured.
func (oh OpeningHours) EffectiveLastReservation() ClockTime {
	if oh.LastReservationTime != nil {
		return *oh.LastReservationTime
	}
	return oh.CloseTime
}

// =============================================================================
// SPECIAL OPENING DAYS
// =============================================================================

// SpecialOpeningDay is a one-off override of the weekly schedule for a
// single date, with its own booking-open date and optional custom hours.
type SpecialOpeningDay struct {
	Date Date
	Open bool

	// Date on or after which this day becomes bookable at all.
	BookingsOpenFrom Date

	// Optional custom hours; nil falls back to the weekday rule.
	OpenTime            *ClockTime
	CloseTime           *ClockTime
	LastReservationTime *ClockTime

	// Optional short message shown on the reservation page.
	PublicMessage string
}

// =============================================================================
// CALENDAR
// =============================================================================

// Calendar resolves effective schedules from weekday rules and special-day
// overrides. Build one per evaluation from the stored rows.
type Calendar struct {
	weekly  map[time.Weekday]OpeningHours
	special map[string]SpecialOpeningDay // keyed by Date.String()
}

func NewCalendar(weekly []OpeningHours, special []SpecialOpeningDay) *Calendar {
	c := &Calendar{
		weekly:  make(map[time.Weekday]OpeningHours, len(weekly)),
		special: make(map[string]SpecialOpeningDay, len(special)),
	}
	for _, oh := range weekly {
		c.weekly[oh.Weekday] = oh
	}
	for _, sd := range special {
		c.special[sd.Date.String()] = sd
	}
	return c
}

// SpecialFor returns the special-day override for a date, if any.
func (c *Calendar) SpecialFor(d Date) (SpecialOpeningDay, bool) {
	sd, ok := c.special[d.String()]
	return sd, ok
}

// ClosedWeekdays lists the weekdays on which the venue is closed, either
// explicitly or because no rule exists. Used by booking forms to grey out
// dates client-side.
func (c *Calendar) ClosedWeekdays() []time.Weekday {
	var out []time.Weekday
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if oh, ok := c.weekly[wd]; !ok || !oh.Open {
			out = append(out, wd)
		}
	}
	return out
}

// DaySchedule is the effective schedule for a concrete date after applying
// any special-day override.
type DaySchedule struct {
	Open            bool
	OpenTime        ClockTime
	CloseTime       ClockTime
	LastReservation ClockTime

	// Set when a special-day override applied.
	Special *SpecialOpeningDay
}

// ScheduleFor resolves the effective schedule for a date. A special day
// fully supersedes the weekday rule; times it leaves unset fall back to the
// weekday row. A day that ends up open but without resolvable times is
// treated as closed rather than guessed at.
func (c *Calendar) ScheduleFor(d Date) DaySchedule {
	weekly, hasWeekly := c.weekly[d.Weekday()]

	if sd, ok := c.SpecialFor(d); ok {
		sched := DaySchedule{Open: sd.Open, Special: &sd}
		if !sd.Open {
			return sched
		}
		sched.OpenTime = resolveTime(sd.OpenTime, hasWeekly, weekly.OpenTime)
		sched.CloseTime = resolveTime(sd.CloseTime, hasWeekly, weekly.CloseTime)
		if sd.LastReservationTime != nil {
			sched.LastReservation = *sd.LastReservationTime
		} else if sd.CloseTime != nil {
			sched.LastReservation = *sd.CloseTime
		} else if hasWeekly {
			sched.LastReservation = weekly.EffectiveLastReservation()
		}
		if sched.OpenTime.IsZero() || sched.CloseTime.IsZero() {
			sched.Open = false
		}
		return sched
	}

	if !hasWeekly || !weekly.Open {
		return DaySchedule{Open: false}
	}
	return DaySchedule{
		Open:            true,
		OpenTime:        weekly.OpenTime,
		CloseTime:       weekly.CloseTime,
		LastReservation: weekly.EffectiveLastReservation(),
	}
}

func resolveTime(custom *ClockTime, hasWeekly bool, weekly ClockTime) ClockTime {
	if custom != nil {
		return *custom
	}
	if hasWeekly {
		return weekly
	}
	return ClockTime{}
}

// BookableSlots returns the bookable start times for a date at the given
// step, from opening time to the last reservation time inclusive. Empty
// when the venue is closed that day.
func (c *Calendar) BookableSlots(d Date, step time.Duration) []ClockTime {
	sched := c.ScheduleFor(d)
	if !sched.Open {
		return nil
	}
	stepMin := int(step / time.Minute)
	if stepMin <= 0 {
		stepMin = 15
	}
	var slots []ClockTime
	for t := sched.OpenTime; t.BeforeOrEqual(sched.LastReservation); t = t.AddMinutes(stepMin) {
		slots = append(slots, t)
	}
	return slots
}
