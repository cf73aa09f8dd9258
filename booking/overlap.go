/*
overlap.go - The shared time-window overlap primitive

PURPOSE:
  Every non-trivial decision in this engine reduces to one question: do two
  dwell windows intersect? Admission control sums party sizes over the
  overlapping set, the timeline asks it per 15-minute step, and the table
  resolver collects tables from overlapping reservations. The predicate is
  defined exactly once here so all three share the same edge-case policy.

THE PREDICATE:
  Windows are half-open: [start, start+dwell). Two windows intersect iff

      a.Start < b.End  AND  b.Start < a.End

  Touching endpoints do NOT overlap: a reservation ending at 19:00 releases
  its capacity the instant a 19:00 reservation begins.

SEE ALSO:
  - admission.go, timeline.go, tables.go: the three consumers
*/
package booking

import "time"

// =============================================================================
// WINDOW - Half-open occupancy interval
// =============================================================================

type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow builds the half-open window [start, start+dwell).
func NewWindow(start time.Time, dwell time.Duration) Window {
	return Window{Start: start, End: start.Add(dwell)}
}

// Overlaps reports whether two half-open windows intersect. Touching
// endpoints (w.End == o.Start) do not count as overlap.
func (w Window) Overlaps(o Window) bool {
	return w.Start.Before(o.End) && o.Start.Before(w.End)
}

// =============================================================================
// OVERLAP INDEX - Same-day reservations queryable by window
// =============================================================================

// OverlapIndex answers "which of these reservations occupy seats during
// this window" for a fixed dwell duration. At the scale of a single day's
// reservations a linear scan is both the simplest and the fastest option;
// no interval tree is warranted here.
type OverlapIndex struct {
	dwell   time.Duration
	entries []indexEntry
}

type indexEntry struct {
	res    Reservation
	window Window
}

// NewOverlapIndex indexes the given reservations, which are expected to
// share one date. Reservations whose status no longer holds capacity
// (Cancelled) are skipped at construction so no caller can forget to.
func NewOverlapIndex(reservations []Reservation, dwell time.Duration) *OverlapIndex {
	ix := &OverlapIndex{dwell: dwell}
	for _, r := range reservations {
		if !r.Status.CountsForCapacity() {
			continue
		}
		ix.entries = append(ix.entries, indexEntry{res: r, window: r.Window(dwell)})
	}
	return ix
}

// Dwell returns the dwell duration the index was built with.
func (ix *OverlapIndex) Dwell() time.Duration { return ix.dwell }

// Overlapping returns the reservations whose windows intersect w.
func (ix *OverlapIndex) Overlapping(w Window) []Reservation {
	var out []Reservation
	for _, e := range ix.entries {
		if e.window.Overlaps(w) {
			out = append(out, e.res)
		}
	}
	return out
}
