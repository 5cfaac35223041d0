package sched

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPendingQueue_FIFO(t *testing.T) {
	pq := &PendingQueue{}
	assert.Nil(t, pq.Peek())
	assert.Nil(t, pq.Dequeue())

	pq.Enqueue(&Request{ID: "a"})
	pq.Enqueue(&Request{ID: "b"})

	assert.Equal(t, 2, pq.Len())
	assert.Equal(t, "a", pq.Peek().ID)
	assert.Equal(t, "[a b]", pq.String())
	assert.Equal(t, "a", pq.Dequeue().ID)
	assert.Equal(t, "b", pq.Dequeue().ID)
	assert.Equal(t, 0, pq.Len())
}

func TestPendingQueue_Reorder_LengthChangePanics(t *testing.T) {
	pq := &PendingQueue{}
	pq.Enqueue(&Request{ID: "a"})
	assert.Panics(t, func() {
		pq.Reorder(func(reqs []*Request) {
			pq.queue = append(pq.queue, &Request{ID: "x"})
		})
	})
}

func TestClock_AdvanceNotifiesListenersInOrder(t *testing.T) {
	// GIVEN a clock with two listeners
	clock := NewClock()
	var seen []string
	clock.OnAdvance(func(ts int) { seen = append(seen, "first") })
	clock.OnAdvance(func(ts int) {
		assert.Equal(t, 1, ts)
		seen = append(seen, "second")
	})

	// WHEN advanced
	clock.Advance()

	// THEN both ran, in registration order, with the new timeslot
	assert.Equal(t, 1, clock.Current())
	assert.Equal(t, []string{"first", "second"}, seen)
	assert.Panics(t, func() { clock.OnAdvance(nil) })
}

func TestPath_Helpers(t *testing.T) {
	p := Path{3, 4, 5}
	assert.Equal(t, []Link{{3, 4}, {4, 5}}, p.Links())
	assert.Equal(t, []int{3, 4}, p.Intermediate())
	assert.Equal(t, "[3 4 5]", p.String())
	assert.Nil(t, Path(nil).Clone())
	assert.Nil(t, Path{7}.Links())
	assert.Equal(t, "(3,4)", Link{From: 3, To: 4}.String())
}
