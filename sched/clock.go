package sched

import "sync"

// Clock is the discrete timeslot counter of a simulation run.
// It starts at 0; scheduling numbers timeslots from 1.
type Clock struct {
	mu        sync.RWMutex
	current   int
	listeners []func(timeslot int)
}

// NewClock creates a clock at timeslot 0.
func NewClock() *Clock {
	return &Clock{}
}

// Current returns the current timeslot.
func (c *Clock) Current() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Advance moves the clock forward by one timeslot and notifies listeners
// with the new value. Listeners run synchronously, in registration order.
func (c *Clock) Advance() {
	c.mu.Lock()
	c.current++
	now := c.current
	listeners := c.listeners
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(now)
	}
}

// OnAdvance registers a callback invoked after every Advance.
func (c *Clock) OnAdvance(fn func(timeslot int)) {
	if fn == nil {
		panic("OnAdvance: fn must not be nil")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}
