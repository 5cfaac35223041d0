package sched

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkReservationTable_ReserveAndAvailability(t *testing.T) {
	table := NewLinkReservationTable()
	table.Reserve(Path{0, 1, 2}, 1)

	assert.False(t, table.IsAvailable(Path{0, 1}, 1))
	assert.True(t, table.IsAvailable(Path{0, 1}, 2), "availability compares exact timeslots")
	assert.True(t, table.IsAvailable(Path{1, 0}, 1), "links are directional")
	assert.Equal(t, 2, table.Len())
}

func TestLinkReservationTable_ReserveOverwritesPreviousTimeslot(t *testing.T) {
	// GIVEN link (0,1) reserved at timeslot 1
	table := NewLinkReservationTable()
	table.Reserve(Path{0, 1}, 1)

	// WHEN the same link is reserved again at timeslot 4
	table.Reserve(Path{0, 1}, 4)

	// THEN only the latest timeslot is remembered
	ts, ok := table.Occupied(Link{From: 0, To: 1})
	require.True(t, ok)
	assert.Equal(t, 4, ts)
	assert.True(t, table.IsAvailable(Path{0, 1}, 1))
}

func TestLinkReservationTable_ReleaseIsIdempotent(t *testing.T) {
	table := NewLinkReservationTable()
	table.Reserve(Path{0, 1, 2}, 3)
	require.False(t, table.IsAvailable(Path{0, 1, 2}, 3))

	table.Release(Path{0, 1, 2})
	assert.Equal(t, 0, table.Len())
	assert.True(t, table.IsAvailable(Path{0, 1, 2}, 3))
	assert.True(t, table.IsAvailable(Path{0, 1, 2}, 4))

	// Releasing again, or a never-reserved path, is a no-op
	table.Release(Path{0, 1, 2})
	table.Release(Path{7, 8})
	assert.Equal(t, 0, table.Len())
	assert.True(t, table.IsAvailable(Path{0, 1, 2}, 3))
	assert.True(t, table.IsAvailable(Path{0, 1, 2}, 2))
}

func TestLinkReservationTable_FindNextFree_SkipsOccupiedTimeslots(t *testing.T) {
	// GIVEN (0,1) reserved at 1 and (1,2) reserved at 2
	table := NewLinkReservationTable()
	table.Reserve(Path{0, 1}, 1)
	table.Reserve(Path{1, 2}, 2)

	// WHEN probing for path [0 1 2] from timeslot 1
	next, err := table.FindNextFree(Path{0, 1, 2}, 1, 0)

	// THEN timeslot 3 is the first at which both links are free
	require.NoError(t, err)
	assert.Equal(t, 3, next)
}

func TestLinkReservationTable_FindNextFree_StartFree(t *testing.T) {
	table := NewLinkReservationTable()
	next, err := table.FindNextFree(Path{0, 1}, 5, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, next)
}

func TestLinkReservationTable_FindNextFree_ProbeBound(t *testing.T) {
	// GIVEN (0,1) at 1 and (1,2) at 2, so the first free timeslot is 3
	table := NewLinkReservationTable()
	table.Reserve(Path{0, 1}, 1)
	table.Reserve(Path{1, 2}, 2)

	// WHEN the probe may only look at 2 timeslots
	_, err := table.FindNextFree(Path{0, 1, 2}, 1, 2)

	// THEN the probe gives up
	assert.True(t, errors.Is(err, ErrProbeExhausted))

	// AND a bound of 3 reaches timeslot 3
	next, err := table.FindNextFree(Path{0, 1, 2}, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, next)
}
