// Implements the PendingQueue, which holds requests waiting for admission.

package sched

import (
	"fmt"
	"strings"
)

// PendingQueue is a FIFO of requests waiting to be admitted into a timeslot.
// A request that cannot be admitted stays at the head for the next pass.
type PendingQueue struct {
	queue []*Request
}

// Enqueue adds a request to the back of the queue.
func (pq *PendingQueue) Enqueue(r *Request) {
	pq.queue = append(pq.queue, r)
}

// Len returns the number of pending requests.
func (pq *PendingQueue) Len() int {
	return len(pq.queue)
}

// Peek returns the head of the queue, or nil if empty.
func (pq *PendingQueue) Peek() *Request {
	if len(pq.queue) == 0 {
		return nil
	}
	return pq.queue[0]
}

// Dequeue removes and returns the head of the queue, or nil if empty.
func (pq *PendingQueue) Dequeue() *Request {
	if len(pq.queue) == 0 {
		return nil
	}
	head := pq.queue[0]
	pq.queue[0] = nil
	pq.queue = pq.queue[1:]
	return head
}

// Items returns the queue contents. Callers MUST NOT append to or reslice it.
func (pq *PendingQueue) Items() []*Request {
	return pq.queue
}

// Reorder applies fn to the queue contents in place.
// fn MUST NOT change the slice length.
func (pq *PendingQueue) Reorder(fn func([]*Request)) {
	if fn == nil {
		panic("Reorder: fn must not be nil")
	}
	n := len(pq.queue)
	fn(pq.queue)
	if len(pq.queue) != n {
		panic(fmt.Sprintf("Reorder: fn changed queue length from %d to %d", n, len(pq.queue)))
	}
}

func (pq *PendingQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, r := range pq.queue {
		sb.WriteString(r.ID)
		if i < len(pq.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
