package sched

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/polysamo/quantumnet/sched/trace"
)

const (
	// DefaultFailureReason is recorded when the executor gives no reason.
	DefaultFailureReason = "unknown failure"
	// NoRouteReason is recorded when a scheduled request has no route at execution time.
	NoRouteReason = "no valid route"
	// UnspecifiedRoute is the route text of a failure without a known path.
	UnspecifiedRoute = "unspecified"
)

// ExecutedEntry records a request that ran successfully.
type ExecutedEntry struct {
	Request  *Request
	Timeslot int
	Path     Path // the path the executor ran over
}

// FailedEntry records a request that failed to run. Request is a snapshot
// taken at failure time.
type FailedEntry struct {
	Request  Request
	Timeslot int
	Reason   string
	Path     Path   // nil when no path was known
	Route    string // Path rendered, or UnspecifiedRoute
}

// ExecuteTimeslot runs every request admitted into timeslot t, in admission
// order, then drops the timeslot from the schedule. Failures are recorded and
// never stop the remaining requests.
func (c *Controller) ExecuteTimeslot(t int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.executeTimeslotLocked(context.Background(), t)
}

func (c *Controller) executeTimeslotLocked(ctx context.Context, t int) {
	reqs, ok := c.scheduled[t]
	if !ok {
		logrus.Infof("[timeslot %04d] no requests scheduled", t)
		return
	}
	_, span := c.tracer.Start(ctx, "sched.ExecuteTimeslot",
		oteltrace.WithAttributes(attribute.Int("timeslot", t), attribute.Int("requests", len(reqs))))
	defer span.End()

	logrus.Infof("[timeslot %04d] executing %d requests", t, len(reqs))
	for _, req := range reqs {
		c.executeOneLocked(req, t)
	}
	delete(c.scheduled, t)
	c.metrics.SetState(c.pending.Len(), c.reservations.Len(), c.clock.Current())
}

// executeOneLocked releases the reservation made for the request's routed
// path whatever the outcome. A slice path, when present, is what the
// executor runs over.
func (c *Controller) executeOneLocked(req *Request, t int) {
	route, ok := c.oracle.ShortestValidRoute(req.Source, req.Destination)
	if !ok {
		logrus.Warnf("[timeslot %04d] no valid route for request %s", t, req.ID)
		c.recordFailureLocked(req, t, NoRouteReason, req.SlicePath)
		return
	}

	path := route
	if req.HasSlicePath() {
		path = req.SlicePath
	}

	success, reason, err := c.executor.Execute(req, path)
	if err != nil {
		success = false
		reason = err.Error()
	}
	c.reservations.Release(route)

	if !success {
		logrus.Warnf("[timeslot %04d] request %s failed: %s", t, req.ID, reason)
		c.recordFailureLocked(req, t, reason, path)
		return
	}

	req.Status = StatusExecuted
	c.executed = append(c.executed, ExecutedEntry{Request: req, Timeslot: t, Path: path.Clone()})
	c.metrics.ObserveExecution(true)
	if c.trace.Enabled() {
		c.trace.RecordExecution(trace.ExecutionRecord{RequestID: req.ID, Timeslot: t, Success: true})
	}
	logrus.Infof("[timeslot %04d] request %s executed", t, req.ID)
}

func (c *Controller) recordFailureLocked(req *Request, t int, reason string, path Path) {
	if reason == "" {
		reason = DefaultFailureReason
	}
	req.Status = StatusFailed
	req.Reason = reason

	entry := FailedEntry{
		Request:  req.Snapshot(),
		Timeslot: t,
		Reason:   reason,
		Path:     path.Clone(),
		Route:    UnspecifiedRoute,
	}
	if len(path) > 0 {
		entry.Route = path.String()
	}
	c.failed = append(c.failed, entry)

	c.metrics.ObserveExecution(false)
	if c.trace.Enabled() {
		c.trace.RecordExecution(trace.ExecutionRecord{RequestID: req.ID, Timeslot: t, Reason: reason})
	}
}

// RunAll executes every scheduled timeslot in ascending order, resetting the
// resource pool after each one so no resources bleed across timeslots.
func (c *Controller) RunAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, span := c.tracer.Start(context.Background(), "sched.RunAll")
	defer span.End()

	timeslots := c.scheduledTimeslotsLocked()
	span.SetAttributes(attribute.Int("timeslots", len(timeslots)))
	logrus.Infof("running %d scheduled timeslots", len(timeslots))
	for _, t := range timeslots {
		c.executeTimeslotLocked(ctx, t)
		c.pool.ResetBetweenTimeslots()
		logrus.Debugf("[timeslot %04d] resource pools reset (clock at %d)", t, c.clock.Current())
	}
}

// ScheduledTimeslots returns the timeslots that still hold admitted requests, ascending.
func (c *Controller) ScheduledTimeslots() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scheduledTimeslotsLocked()
}

func (c *Controller) scheduledTimeslotsLocked() []int {
	timeslots := make([]int, 0, len(c.scheduled))
	for t := range c.scheduled {
		timeslots = append(timeslots, t)
	}
	sort.Ints(timeslots)
	return timeslots
}

// Executed returns a copy of the executed ledger.
func (c *Controller) Executed() []ExecutedEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ExecutedEntry(nil), c.executed...)
}

// Failed returns a copy of the failed ledger.
func (c *Controller) Failed() []FailedEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]FailedEntry(nil), c.failed...)
}
