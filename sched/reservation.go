package sched

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// LinkReservationTable remembers, per directional link, the single timeslot
// that last reserved it. Reserving a link again overwrites the previous
// timeslot; availability checks only ever compare against the latest one.
//
// Thread-safety: all methods are safe for concurrent use.
type LinkReservationTable struct {
	mu       sync.Mutex
	occupied map[Link]int
}

// NewLinkReservationTable creates an empty table.
func NewLinkReservationTable() *LinkReservationTable {
	return &LinkReservationTable{occupied: make(map[Link]int)}
}

// Reserve marks every link of path as occupied at timeslot.
func (t *LinkReservationTable) Reserve(path Path, timeslot int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, l := range path.Links() {
		t.occupied[l] = timeslot
	}
	logrus.Debugf("[timeslot %04d] reserved route %v", timeslot, path)
}

// IsAvailable reports whether no link of path is reserved for exactly timeslot.
func (t *LinkReservationTable) IsAvailable(path Path, timeslot int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.availableLocked(path, timeslot)
}

func (t *LinkReservationTable) availableLocked(path Path, timeslot int) bool {
	for _, l := range path.Links() {
		if ts, ok := t.occupied[l]; ok && ts == timeslot {
			logrus.Debugf("[timeslot %04d] link %v occupied", timeslot, l)
			return false
		}
	}
	return true
}

// Release removes every link of path, whatever timeslot it was reserved for.
func (t *LinkReservationTable) Release(path Path) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, l := range path.Links() {
		delete(t.occupied, l)
	}
	logrus.Debugf("released route %v", path)
}

// Occupied returns the timeslot currently holding link.
func (t *LinkReservationTable) Occupied(l Link) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ts, ok := t.occupied[l]
	return ts, ok
}

// FindNextFree probes timeslots start, start+1, ... and returns the first one
// at which every link of path is free. maxProbe bounds the number of
// timeslots examined; maxProbe <= 0 probes without bound.
func (t *LinkReservationTable) FindNextFree(path Path, start, maxProbe int) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ts := start
	for probed := 1; !t.availableLocked(path, ts); probed++ {
		if maxProbe > 0 && probed >= maxProbe {
			return 0, ErrProbeExhausted
		}
		ts++
	}
	return ts, nil
}

// Len returns the number of reserved links.
func (t *LinkReservationTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.occupied)
}
