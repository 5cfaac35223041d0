// Implements the Controller: admission of pending requests into timeslots
// and execution of the resulting schedule.

package sched

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/polysamo/quantumnet/sched/metrics"
	"github.com/polysamo/quantumnet/sched/trace"
)

const tracerName = "github.com/polysamo/quantumnet/sched"

// Controller decides when and over which path each request runs.
//
// Admission state machine per request:
//
//	unscheduled --admit--> scheduled --execute--> executed | failed
//	unscheduled --admit fails--> unscheduled (stays pending, retried on a later pass)
//
// All exported methods are serialized by an internal mutex.
type Controller struct {
	mu sync.Mutex

	oracle       RoutingOracle
	executor     ResourceExecutor
	pool         ResourcePool
	clock        *Clock
	reservations *LinkReservationTable
	prioritizer  RequestPrioritizer
	maxProbe     int

	pending   *PendingQueue
	scheduled map[int][]*Request // timeslot → requests in admission order
	executed  []ExecutedEntry
	failed    []FailedEntry

	trace   *trace.DecisionTrace
	metrics *metrics.Collector
	tracer  oteltrace.Tracer
}

// NewController creates a Controller. Panics if Oracle or Executor is nil.
func NewController(cfg ControllerConfig) *Controller {
	if cfg.Oracle == nil {
		panic("NewController: Oracle must not be nil")
	}
	if cfg.Executor == nil {
		panic("NewController: Executor must not be nil")
	}
	c := &Controller{
		oracle:       cfg.Oracle,
		executor:     cfg.Executor,
		pool:         cfg.Pool,
		clock:        cfg.Clock,
		reservations: NewLinkReservationTable(),
		prioritizer:  cfg.Prioritizer,
		maxProbe:     cfg.MaxProbe,
		pending:      &PendingQueue{},
		scheduled:    make(map[int][]*Request),
		trace:        cfg.Trace,
		metrics:      cfg.Metrics,
		tracer:       otel.Tracer(tracerName),
	}
	if c.pool == nil {
		c.pool = NopPool{}
	}
	if c.clock == nil {
		c.clock = NewClock()
	}
	if c.prioritizer == nil {
		c.prioritizer = DemandComplexityPrioritizer{}
	}
	return c
}

// Clock returns the controller's clock.
func (c *Controller) Clock() *Clock { return c.clock }

// Reservations returns the controller's link reservation table.
func (c *Controller) Reservations() *LinkReservationTable { return c.reservations }

// SubmitRequest enqueues req and runs one scheduling pass with DefaultMaxAttempts.
func (c *Controller) SubmitRequest(req *Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if req.Status == "" {
		req.Status = StatusUnscheduled
	}
	c.pending.Enqueue(req)
	logrus.Infof("[timeslot %04d] received %v", c.clock.Current(), req)
	c.processPendingLocked(context.Background(), DefaultMaxAttempts)
}

// Enqueue adds req to the pending queue without running a scheduling pass.
func (c *Controller) Enqueue(req *Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if req.Status == "" {
		req.Status = StatusUnscheduled
	}
	c.pending.Enqueue(req)
}

// ProcessPending prioritizes the pending queue and admits requests from its
// head. Each failed attempt advances the clock by one timeslot; after
// maxAttempts consecutive failures the pass stops and the remaining requests
// stay queued. A successful admission resets the attempt counter.
func (c *Controller) ProcessPending(maxAttempts int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.processPendingLocked(context.Background(), maxAttempts)
}

func (c *Controller) processPendingLocked(ctx context.Context, maxAttempts int) {
	_, span := c.tracer.Start(ctx, "sched.ProcessPending",
		oteltrace.WithAttributes(attribute.Int("pending", c.pending.Len())))
	defer span.End()

	c.pending.Reorder(c.prioritizer.Order)
	logrus.Debugf("[timeslot %04d] pending after prioritization: %v", c.clock.Current(), c.pending)

	attempts := 0
	for c.pending.Len() > 0 && attempts < maxAttempts {
		if c.clock.Current() == 0 {
			c.clock.Advance()
		}
		current := c.clock.Current()
		req := c.pending.Peek()

		if _, err := c.admitLocked(req, current); err != nil {
			logrus.Warnf("[timeslot %04d] request %s not scheduled: %v; advancing timeslot", current, req.ID, err)
			c.clock.Advance()
			attempts++
			continue
		}
		c.pending.Dequeue()
		attempts = 0
	}
	c.metrics.SetState(c.pending.Len(), c.reservations.Len(), c.clock.Current())
	span.SetAttributes(attribute.Int("remaining", c.pending.Len()))
}

// Admit tries to place req into timeslot t, or into the next timeslot after t
// at which its whole route is free. It returns the timeslot the request was
// admitted into. Failures wrap ErrNoRoute or ErrProbeExhausted.
func (c *Controller) Admit(req *Request, t int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.admitLocked(req, t)
}

func (c *Controller) admitLocked(req *Request, t int) (int, error) {
	route, ok := c.oracle.ShortestValidRoute(req.Source, req.Destination)
	if !ok {
		return 0, c.rejectLocked(req, t, nil, fmt.Errorf("request %s (%d -> %d): %w", req.ID, req.Source, req.Destination, ErrNoRoute))
	}

	if len(c.scheduled[t]) > 0 && c.shareTimeslotLocked(route, t) {
		c.placeLocked(req, route, t, t, true)
		logrus.Infof("[timeslot %04d] request %s shares timeslot over route %v", t, req.ID, route)
		return t, nil
	}

	next, err := c.reservations.FindNextFree(route, t, c.maxProbe)
	if err != nil {
		return 0, c.rejectLocked(req, t, route, fmt.Errorf("request %s over %v: %w", req.ID, route, err))
	}
	c.placeLocked(req, route, t, next, false)
	logrus.Infof("[timeslot %04d] request %s scheduled at timeslot %d over route %v", t, req.ID, next, route)
	return next, nil
}

// shareTimeslotLocked compares route with the most recently admitted request
// of timeslot t only. Sharing fails when their intermediate nodes intersect.
func (c *Controller) shareTimeslotLocked(route Path, t int) bool {
	admitted := c.scheduled[t]
	if len(admitted) == 0 {
		return true
	}
	last := admitted[len(admitted)-1]
	existing, ok := c.oracle.ShortestValidRoute(last.Source, last.Destination)
	if !ok {
		// The last admission can no longer be routed, so overlap cannot be ruled out.
		return false
	}
	nodes := make(map[int]struct{}, len(existing))
	for _, n := range existing.Intermediate() {
		nodes[n] = struct{}{}
	}
	for _, n := range route.Intermediate() {
		if _, hit := nodes[n]; hit {
			return false
		}
	}
	return true
}

func (c *Controller) placeLocked(req *Request, route Path, attempted, t int, shared bool) {
	c.reservations.Reserve(route, t)
	req.Status = StatusScheduled
	c.scheduled[t] = append(c.scheduled[t], req)

	c.metrics.ObserveAdmission(shared, t-attempted)
	if c.trace.Enabled() {
		c.trace.RecordAdmission(trace.AdmissionRecord{
			RequestID: req.ID,
			Attempted: attempted,
			Timeslot:  t,
			Admitted:  true,
			Shared:    shared,
			Route:     route.Clone(),
		})
	}
}

func (c *Controller) rejectLocked(req *Request, t int, route Path, err error) error {
	reason := "no route"
	if errors.Is(err, ErrProbeExhausted) {
		reason = "probe exhausted"
	}
	c.metrics.IncSchedulingFailure(reason)
	if c.trace.Enabled() {
		c.trace.RecordAdmission(trace.AdmissionRecord{
			RequestID: req.ID,
			Attempted: t,
			Route:     route.Clone(),
			Reason:    reason,
		})
	}
	return err
}

// FindNextFree returns the first timeslot at or after start at which every
// link of path is free, honoring the controller's probe bound.
func (c *Controller) FindNextFree(path Path, start int) (int, error) {
	return c.reservations.FindNextFree(path, start, c.maxProbe)
}

// Pending returns the number of requests waiting for admission.
func (c *Controller) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending.Len()
}

// PendingRequests returns the pending requests in queue order.
func (c *Controller) PendingRequests() []*Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Request(nil), c.pending.Items()...)
}

// ScheduledAt returns the requests admitted into timeslot t, in admission order.
func (c *Controller) ScheduledAt(t int) []*Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Request(nil), c.scheduled[t]...)
}

// TimeslotSnapshot is a copy of the requests admitted into one timeslot.
type TimeslotSnapshot struct {
	Timeslot int
	Requests []Request
}

// ScheduleSnapshot copies the schedule in ascending timeslot order. Later
// admissions and executions do not reach the copy.
func (c *Controller) ScheduleSnapshot() []TimeslotSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	ts := c.scheduledTimeslotsLocked()
	out := make([]TimeslotSnapshot, 0, len(ts))
	for _, t := range ts {
		out = append(out, TimeslotSnapshot{Timeslot: t, Requests: snapshotAll(c.scheduled[t])})
	}
	return out
}

// PendingSnapshot copies the pending requests in queue order.
func (c *Controller) PendingSnapshot() []Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return snapshotAll(c.pending.Items())
}

// SnapshotOf copies req while no scheduling or execution pass can mutate it.
func (c *Controller) SnapshotOf(req *Request) Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return req.Snapshot()
}

// TraceSummary summarizes the decision trace. ok is false when tracing is disabled.
func (c *Controller) TraceSummary() (summary *trace.TraceSummary, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.trace.Enabled() {
		return nil, false
	}
	return trace.Summarize(c.trace), true
}

func snapshotAll(reqs []*Request) []Request {
	out := make([]Request, len(reqs))
	for i, r := range reqs {
		out[i] = r.Snapshot()
	}
	return out
}
