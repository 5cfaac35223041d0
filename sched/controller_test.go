package sched

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polysamo/quantumnet/sched/trace"
)

func TestController_DisjointPathsShareTimeslot(t *testing.T) {
	// GIVEN two requests with disjoint routes [0 1] and [2 3]
	oracle := staticOracle{routeKey(0, 1): {0, 1}, routeKey(2, 3): {2, 3}}
	c := newTestController(oracle, nil)
	r1 := NewRequest("r1", 0, 1, 1, 1, "")
	r2 := NewRequest("r2", 2, 3, 1, 1, "")

	// WHEN both are submitted while timeslot 1 is empty
	c.SubmitRequest(r1)
	c.SubmitRequest(r2)

	// THEN both are admitted into timeslot 1
	assert.Equal(t, []string{"r1", "r2"}, ids(c.ScheduledAt(1)))
	assert.Equal(t, StatusScheduled, r1.Status)
	assert.Equal(t, StatusScheduled, r2.Status)
	assert.Equal(t, 0, c.Pending())
	assert.Equal(t, 1, c.Clock().Current())
}

func TestController_OverlappingPathMovesToNextFreeTimeslot(t *testing.T) {
	// GIVEN a request occupying timeslot 1 over [0 1 2]
	oracle := staticOracle{routeKey(0, 2): {0, 1, 2}}
	c := newTestController(oracle, nil)
	c.SubmitRequest(NewRequest("r1", 0, 2, 1, 1, ""))

	// WHEN a second request over the same route is submitted
	c.SubmitRequest(NewRequest("r2", 0, 2, 1, 1, ""))

	// THEN it is placed into timeslot 2 and the link record is overwritten
	assert.Equal(t, []string{"r1"}, ids(c.ScheduledAt(1)))
	assert.Equal(t, []string{"r2"}, ids(c.ScheduledAt(2)))
	ts, ok := c.Reservations().Occupied(Link{From: 0, To: 1})
	require.True(t, ok)
	assert.Equal(t, 2, ts)
}

func TestController_ShareCheckComparesOnlyLastAdmission(t *testing.T) {
	// GIVEN timeslot 1 holding [0 1 2] followed by the disjoint [5 6]
	oracle := staticOracle{
		routeKey(0, 2): {0, 1, 2},
		routeKey(5, 6): {5, 6},
		routeKey(1, 9): {1, 9},
	}
	c := newTestController(oracle, nil)
	c.SubmitRequest(NewRequest("r1", 0, 2, 1, 1, ""))
	c.SubmitRequest(NewRequest("r2", 5, 6, 1, 1, ""))

	// WHEN a route through node 1 arrives
	c.SubmitRequest(NewRequest("r3", 1, 9, 1, 1, ""))

	// THEN it shares timeslot 1, because only [5 6] is compared
	assert.Equal(t, []string{"r1", "r2", "r3"}, ids(c.ScheduledAt(1)))
}

func TestController_ShareFailsWhenLastAdmissionHasNoRoute(t *testing.T) {
	oracle := staticOracle{routeKey(0, 1): {0, 1}, routeKey(2, 3): {2, 3}}
	c := newTestController(oracle, nil)
	c.SubmitRequest(NewRequest("r1", 0, 1, 1, 1, ""))

	// The route of the admitted request disappears from the topology
	delete(oracle, routeKey(0, 1))
	slot, err := c.Admit(NewRequest("r2", 2, 3, 1, 1, ""), 1)

	// [2 3] is free at 1 so the probe still returns 1, but not through sharing
	require.NoError(t, err)
	assert.Equal(t, 1, slot)
}

func TestController_ProcessPending_NoRouteAdvancesClockUntilAttemptsExhausted(t *testing.T) {
	// GIVEN a request with no route
	c := newTestController(staticOracle{}, nil)
	req := NewRequest("r1", 0, 9, 1, 1, "")
	c.Enqueue(req)

	// WHEN processed with three attempts
	c.ProcessPending(3)

	// THEN the clock moved 0 -> 1 and once per failed attempt, and the request stays pending
	assert.Equal(t, 4, c.Clock().Current())
	assert.Equal(t, 1, c.Pending())
	assert.Equal(t, StatusUnscheduled, req.Status)
}

func TestController_ProcessPending_PrioritizesBeforeAdmission(t *testing.T) {
	oracle := staticOracle{routeKey(0, 2): {0, 1, 2}}
	c := newTestController(oracle, nil)
	c.Enqueue(NewRequest("big", 0, 2, 5, 1, ""))
	c.Enqueue(NewRequest("small", 0, 2, 1, 1, ""))

	c.ProcessPending(DefaultMaxAttempts)

	assert.Equal(t, []string{"small"}, ids(c.ScheduledAt(1)))
	assert.Equal(t, []string{"big"}, ids(c.ScheduledAt(2)))
}

func TestController_ProcessPending_SuccessResetsAttempts(t *testing.T) {
	// GIVEN an unroutable request behind a routable one, under FCFS
	oracle := staticOracle{routeKey(0, 1): {0, 1}}
	c := NewController(ControllerConfig{Oracle: oracle, Executor: &scriptedExecutor{}, Prioritizer: FCFSPrioritizer{}})
	c.Enqueue(NewRequest("ok", 0, 1, 1, 1, ""))
	c.Enqueue(NewRequest("lost", 4, 5, 1, 1, ""))

	// WHEN processed with a budget of two attempts
	c.ProcessPending(2)

	// THEN the first admission does not consume the budget of the second
	assert.Equal(t, []string{"ok"}, ids(c.ScheduledAt(1)))
	assert.Equal(t, []string{"lost"}, ids(c.PendingRequests()))
	assert.Equal(t, 3, c.Clock().Current())
}

func TestController_Admit_ProbeExhausted(t *testing.T) {
	oracle := staticOracle{routeKey(0, 2): {0, 1, 2}}
	c := NewController(ControllerConfig{Oracle: oracle, Executor: &scriptedExecutor{}, MaxProbe: 1})
	c.Reservations().Reserve(Path{0, 1, 2}, 1)

	_, err := c.Admit(NewRequest("r1", 0, 2, 1, 1, ""), 1)

	assert.True(t, errors.Is(err, ErrProbeExhausted))
}

func TestController_Admit_RecordsDecisionTrace(t *testing.T) {
	dt := trace.NewDecisionTrace(trace.TraceLevelDecisions)
	oracle := staticOracle{routeKey(0, 1): {0, 1}}
	c := NewController(ControllerConfig{Oracle: oracle, Executor: &scriptedExecutor{}, Trace: dt})

	_, err := c.Admit(NewRequest("r1", 0, 1, 1, 1, ""), 1)
	require.NoError(t, err)
	_, err = c.Admit(NewRequest("r2", 3, 4, 1, 1, ""), 1)
	require.True(t, errors.Is(err, ErrNoRoute))

	require.Len(t, dt.Admissions, 2)
	assert.True(t, dt.Admissions[0].Admitted)
	assert.Equal(t, []int{0, 1}, dt.Admissions[0].Route)
	assert.False(t, dt.Admissions[1].Admitted)
	assert.Equal(t, "no route", dt.Admissions[1].Reason)
}

func TestNewController_NilCollaborators_Panics(t *testing.T) {
	assert.Panics(t, func() { NewController(ControllerConfig{Executor: &scriptedExecutor{}}) })
	assert.Panics(t, func() { NewController(ControllerConfig{Oracle: staticOracle{}}) })
}
