package sched

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/polysamo/quantumnet/sched/trace"
)

// Slice is a static (client, server, protocol, path) assignment. Requests
// placed through a slice bypass the reservation table: concurrent slices are
// assumed isolated by path design.
type Slice struct {
	ID       string
	Client   int
	Server   int
	Protocol string
	Path     Path
}

// Schedule maps a timeslot to the requests placed into it.
type Schedule map[int][]*Request

// Timeslots returns the schedule's timeslots in ascending order.
func (s Schedule) Timeslots() []int {
	ts := make([]int, 0, len(s))
	for t := range s {
		ts = append(ts, t)
	}
	sort.Ints(ts)
	return ts
}

// SliceQueue is the ordered list of requests waiting on one slice.
type SliceQueue struct {
	SliceID  string
	Requests []*Request
}

// SliceSummary counts the outcomes of an executed slice schedule.
type SliceSummary struct {
	Success int `json:"success_count"`
	Failed  int `json:"failure_count"`
	Pending int `json:"pending_count"`
}

// SliceScheduler places requests by static slice configuration instead of
// conflict detection.
type SliceScheduler struct {
	slices   []Slice
	executor ResourceExecutor
	pool     ResourcePool
	clock    *Clock
	trace    *trace.DecisionTrace
}

// NewSliceScheduler creates a SliceScheduler. executor may be nil when the
// caller only packs schedules; pool and clock default like ControllerConfig.
func NewSliceScheduler(executor ResourceExecutor, pool ResourcePool, clock *Clock, dt *trace.DecisionTrace) *SliceScheduler {
	if pool == nil {
		pool = NopPool{}
	}
	if clock == nil {
		clock = NewClock()
	}
	return &SliceScheduler{executor: executor, pool: pool, clock: clock, trace: dt}
}

// ConfigureSlices creates one slice per client, numbered slice_1, slice_2, ...
// clients, protocols and paths must have equal lengths. Any previous
// configuration is replaced.
func (s *SliceScheduler) ConfigureSlices(clients []int, server int, protocols []string, paths []Path) error {
	if len(clients) != len(protocols) || len(protocols) != len(paths) {
		return configErrorf("configure slices", "clients (%d), protocols (%d) and paths (%d) must have equal lengths",
			len(clients), len(protocols), len(paths))
	}
	slices := make([]Slice, 0, len(clients))
	for i, client := range clients {
		sl := Slice{
			ID:       fmt.Sprintf("slice_%d", i+1),
			Client:   client,
			Server:   server,
			Protocol: protocols[i],
			Path:     paths[i].Clone(),
		}
		slices = append(slices, sl)
		logrus.Infof("slice %s configured: client %d, server %d, protocol %s, path %v",
			sl.ID, sl.Client, sl.Server, sl.Protocol, sl.Path)
	}
	s.slices = slices
	return nil
}

// Slices returns the configured slices in order.
func (s *SliceScheduler) Slices() []Slice {
	return append([]Slice(nil), s.slices...)
}

// AssignBySlice attaches to each request the path of the first slice whose
// client and protocol match the request's source and protocol tag.
// Requests before the offending one keep their assignment.
func (s *SliceScheduler) AssignBySlice(reqs []*Request) error {
	for _, req := range reqs {
		if req.Protocol == "" {
			return configErrorf("assign by slice", "request %s has no protocol", req.ID)
		}
		sl, ok := s.match(req)
		if !ok {
			return configErrorf("assign by slice", "no slice for request %s (client %d, protocol %s)",
				req.ID, req.Source, req.Protocol)
		}
		req.SlicePath = sl.Path.Clone()
		req.SliceID = sl.ID
	}
	return nil
}

func (s *SliceScheduler) match(req *Request) (Slice, bool) {
	for _, sl := range s.slices {
		if sl.Client == req.Source && sl.Protocol == req.Protocol {
			return sl, true
		}
	}
	return Slice{}, false
}

// GroupBySlice builds one queue per configured slice, in slice order, from
// requests already assigned with AssignBySlice. Request order is kept within
// each queue. Unassigned requests are a configuration error.
func (s *SliceScheduler) GroupBySlice(reqs []*Request) ([]SliceQueue, error) {
	index := make(map[string]int, len(s.slices))
	queues := make([]SliceQueue, len(s.slices))
	for i, sl := range s.slices {
		index[sl.ID] = i
		queues[i].SliceID = sl.ID
	}
	for _, req := range reqs {
		i, ok := index[req.SliceID]
		if !ok {
			return nil, configErrorf("group by slice", "request %s is not assigned to a configured slice", req.ID)
		}
		queues[i].Requests = append(queues[i].Requests, req)
	}
	return queues, nil
}

// PackRoundRobin takes one request from each non-empty queue, in queue order,
// and places the batch in the next timeslot, starting at 1, until every queue
// is drained. The input queues are not modified.
func (s *SliceScheduler) PackRoundRobin(queues []SliceQueue) Schedule {
	schedule := make(Schedule)
	heads := make([]int, len(queues))
	timeslot := 1
	for {
		var batch []*Request
		for i, q := range queues {
			if heads[i] >= len(q.Requests) {
				continue
			}
			req := q.Requests[heads[i]]
			heads[i]++
			batch = append(batch, req)
			s.recordPlacement(req, q.SliceID, timeslot)
		}
		if len(batch) == 0 {
			return schedule
		}
		schedule[timeslot] = batch
		timeslot++
	}
}

// PackChunked places consecutive runs of len(slices) requests into
// timeslots 1, 2, ... in submission order.
func (s *SliceScheduler) PackChunked(reqs []*Request) (Schedule, error) {
	n := len(s.slices)
	if n == 0 {
		return nil, configErrorf("pack chunked", "no slices configured")
	}
	schedule := make(Schedule)
	for i, timeslot := 0, 1; i < len(reqs); i, timeslot = i+n, timeslot+1 {
		end := min(i+n, len(reqs))
		schedule[timeslot] = append([]*Request(nil), reqs[i:end]...)
		for _, req := range reqs[i:end] {
			s.recordPlacement(req, req.SliceID, timeslot)
		}
	}
	return schedule, nil
}

func (s *SliceScheduler) recordPlacement(req *Request, sliceID string, timeslot int) {
	req.Status = StatusScheduled
	if s.trace.Enabled() {
		s.trace.RecordPlacement(trace.PlacementRecord{RequestID: req.ID, SliceID: sliceID, Timeslot: timeslot})
	}
}

// ExecuteSchedule runs a packed schedule in ascending timeslot order. Pools
// are reset before each timeslot and the clock is advanced up to it.
// Each request runs over its slice path and is marked executed or failed.
func (s *SliceScheduler) ExecuteSchedule(schedule Schedule) error {
	if s.executor == nil {
		return configErrorf("execute schedule", "no executor configured")
	}
	for _, t := range schedule.Timeslots() {
		s.pool.ResetBetweenTimeslots()
		for s.clock.Current() < t {
			s.clock.Advance()
		}
		logrus.Infof("[timeslot %04d] executing %d slice requests", t, len(schedule[t]))
		for _, req := range schedule[t] {
			ok, reason, err := s.executor.Execute(req, req.SlicePath)
			if err != nil {
				ok, reason = false, err.Error()
			}
			if ok {
				req.Status = StatusExecuted
			} else {
				if reason == "" {
					reason = DefaultFailureReason
				}
				req.Status = StatusFailed
				req.Reason = reason
				logrus.Warnf("[timeslot %04d] slice request %s failed: %s", t, req.ID, reason)
			}
			if s.trace.Enabled() {
				s.trace.RecordExecution(trace.ExecutionRecord{RequestID: req.ID, Timeslot: t, Success: ok, Reason: req.Reason})
			}
		}
	}
	return nil
}

// SliceReport counts request statuses across a schedule.
func SliceReport(schedule Schedule) SliceSummary {
	var summary SliceSummary
	for _, reqs := range schedule {
		for _, req := range reqs {
			switch req.Status {
			case StatusExecuted:
				summary.Success++
			case StatusFailed:
				summary.Failed++
			default:
				summary.Pending++
			}
		}
	}
	return summary
}
