/*
tables.go - Table conflict resolution and assignment

PURPOSE:
  Computes which physical tables a reservation may legally take: every
  table attached to another same-day reservation whose dwell window
  overlaps is blocked. A reservation's own tables never block it, and
  cancelled or no-show reservations release theirs.

ASSIGNMENT:
  AssignTable validates a single proposed table against the blocked set.
  Re-assigning a table the reservation already holds is a no-op (staff
  resubmitting the same form must not fail). Accepting replaces the
  reservation's table set with that one table; clearing always succeeds.
  No bin-packing or optimal seating happens here.

SEE ALSO:
  - overlap.go: the window predicate
  - errors.go: ErrTableInUse / TableInUseError
*/
package booking

import "time"

// TableSet is a set of table identifiers.
type TableSet map[TableID]bool

// Contains reports membership; a nil set contains nothing.
func (s TableSet) Contains(id TableID) bool { return s[id] }

// IDs returns the members in unspecified order.
func (s TableSet) IDs() []TableID {
	out := make([]TableID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	return out
}

// BlockedTables computes the tables unavailable to res: tables of every
// other reservation on the same date whose window overlaps res's window.
// The reservation itself, cancelled and no-show reservations, and res's
// own currently assigned tables are excluded.
func BlockedTables(res Reservation, others []Reservation, dwell time.Duration) TableSet {
	blocked := make(TableSet)
	window := res.Window(dwell)

	for _, other := range others {
		if other.ID == res.ID || !other.Date.Equal(res.Date) {
			continue
		}
		if !other.Status.BlocksTables() {
			continue
		}
		if !other.Window(dwell).Overlaps(window) {
			continue
		}
		for _, t := range other.Tables {
			blocked[t.ID] = true
		}
	}

	// Never report our own tables as a self-conflict.
	for _, t := range res.Tables {
		delete(blocked, t.ID)
	}
	return blocked
}

// AssignTable attaches a single table to the reservation after checking it
// against the blocked set. Idempotent: assigning a table the reservation
// already holds succeeds without change. On success the reservation's
// table set is replaced with exactly that table.
func AssignTable(res *Reservation, table Table, blocked TableSet) error {
	if res.HasTable(table.ID) {
		return nil
	}
	if blocked.Contains(table.ID) {
		return &TableInUseError{TableID: table.ID, Label: table.Label}
	}
	res.Tables = []Table{table}
	return nil
}

// ClearTables removes any table assignment. Always succeeds.
func ClearTables(res *Reservation) {
	res.Tables = nil
}
