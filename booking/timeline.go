/*
timeline.go - Occupancy timeline for dashboards

PURPOSE:
  Turns a day's active reservations into time-bucketed occupancy with
  semantic pressure levels, at 15-minute granularity plus an hourly rollup.
  This is a reporting view: no-preference parties without a table are shown
  as unassigned instead of being assumed indoor the way admission control
  does (see ReportingAreaOf).

PRESSURE LEVELS:
  occupied/capacity*100:  < 50%  calm
                          < 80%  busy
                          else   very_busy
  and unknown when the zone capacity is zero.

HOURLY ROLLUP:
  Hours take the MAXIMUM of their 15-minute buckets, not the sum - the
  signal is "worst moment in this hour". Hours with zero total load are
  omitted. Each hour carries an IsPast flag relative to the supplied now.

SEE ALSO:
  - overlap.go: bucket membership uses the shared window predicate
*/
package booking

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PRESSURE
// =============================================================================

type Pressure string

const (
	PressureCalm     Pressure = "calm"
	PressureBusy     Pressure = "busy"
	PressureVeryBusy Pressure = "very_busy"
	PressureUnknown  Pressure = "unknown"
)

var (
	pressureBusyAt     = decimal.NewFromInt(50)
	pressureVeryBusyAt = decimal.NewFromInt(80)
)

// PressureFor derives the pressure level from occupied seats against a
// zone capacity.
func PressureFor(occupied, capacity int) Pressure {
	if capacity <= 0 {
		return PressureUnknown
	}
	pct := decimal.NewFromInt(int64(occupied) * 100).Div(decimal.NewFromInt(int64(capacity)))
	switch {
	case pct.LessThan(pressureBusyAt):
		return PressureCalm
	case pct.LessThan(pressureVeryBusyAt):
		return PressureBusy
	default:
		return PressureVeryBusy
	}
}

// OccupancyPercent returns occupied/capacity as a percentage, rounded to
// one decimal place. Zero when capacity is zero.
func OccupancyPercent(occupied, capacity int) decimal.Decimal {
	if capacity <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(occupied) * 100).
		Div(decimal.NewFromInt(int64(capacity))).
		Round(1)
}

// =============================================================================
// BUCKETS
// =============================================================================

// TimeBucket is one 15-minute step of the occupancy timeline.
type TimeBucket struct {
	Start time.Time

	Indoor     int
	Outdoor    int
	Unassigned int

	IndoorPressure  Pressure
	OutdoorPressure Pressure
}

func (b TimeBucket) total() int { return b.Indoor + b.Outdoor + b.Unassigned }

// HourBucket is the hourly rollup of the 15-minute buckets: the worst
// moment within the hour per metric.
type HourBucket struct {
	Hour time.Time

	Indoor     int
	Outdoor    int
	Unassigned int

	IndoorPressure  Pressure
	OutdoorPressure Pressure

	IsPast bool
}

// Timeline is the full occupancy view for one day.
type Timeline struct {
	Day     Date
	Buckets []TimeBucket
	Hours   []HourBucket
}

const bucketStep = 15 * time.Minute

// =============================================================================
// BUILD
// =============================================================================

// BuildTimeline walks the day's occupied span in fixed 15-minute steps and
// sums party sizes of reservations whose dwell windows overlap each step.
// Only reservations counting for the timeline (not cancelled, not no-show)
// and dated on day participate. now supplies the IsPast reference.
func BuildTimeline(day Date, reservations []Reservation, dwell time.Duration, indoorCap, outdoorCap int, now time.Time) Timeline {
	tl := Timeline{Day: day}

	type entry struct {
		res    Reservation
		window Window
		area   ReportingArea
	}
	var entries []entry
	var spanStart, spanEnd time.Time
	for _, r := range reservations {
		if !r.Status.CountsForTimeline() || !r.Date.Equal(day) {
			continue
		}
		w := r.Window(dwell)
		if spanStart.IsZero() || w.Start.Before(spanStart) {
			spanStart = w.Start
		}
		if w.End.After(spanEnd) {
			spanEnd = w.End
		}
		entries = append(entries, entry{res: r, window: w, area: ReportingAreaOf(r)})
	}
	if len(entries) == 0 {
		return tl
	}

	for t := floorToStep(spanStart); t.Before(spanEnd); t = t.Add(bucketStep) {
		b := TimeBucket{Start: t}
		step := Window{Start: t, End: t.Add(bucketStep)}
		for _, e := range entries {
			if !e.window.Overlaps(step) {
				continue
			}
			switch e.area {
			case ReportIndoor:
				b.Indoor += e.res.PartySize
			case ReportOutdoor:
				b.Outdoor += e.res.PartySize
			default:
				b.Unassigned += e.res.PartySize
			}
		}
		b.IndoorPressure = PressureFor(b.Indoor, indoorCap)
		b.OutdoorPressure = PressureFor(b.Outdoor, outdoorCap)
		tl.Buckets = append(tl.Buckets, b)
	}

	tl.Hours = rollUpHours(tl.Buckets, indoorCap, outdoorCap, now)
	return tl
}

func floorToStep(t time.Time) time.Time {
	return t.Truncate(bucketStep)
}

// rollUpHours groups buckets by clock hour and takes the maximum of each
// metric. Hours with zero total load are omitted.
func rollUpHours(buckets []TimeBucket, indoorCap, outdoorCap int, now time.Time) []HourBucket {
	byHour := make(map[time.Time]*HourBucket)
	var order []time.Time

	for _, b := range buckets {
		hour := b.Start.Truncate(time.Hour)
		hb, ok := byHour[hour]
		if !ok {
			hb = &HourBucket{Hour: hour, IsPast: !hour.Add(time.Hour).After(now)}
			byHour[hour] = hb
			order = append(order, hour)
		}
		hb.Indoor = max(hb.Indoor, b.Indoor)
		hb.Outdoor = max(hb.Outdoor, b.Outdoor)
		hb.Unassigned = max(hb.Unassigned, b.Unassigned)
	}

	var out []HourBucket
	for _, hour := range order {
		hb := byHour[hour]
		if hb.Indoor+hb.Outdoor+hb.Unassigned == 0 {
			continue
		}
		hb.IndoorPressure = PressureFor(hb.Indoor, indoorCap)
		hb.OutdoorPressure = PressureFor(hb.Outdoor, outdoorCap)
		out = append(out, *hb)
	}
	return out
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
