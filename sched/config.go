package sched

import (
	"github.com/polysamo/quantumnet/sched/metrics"
	"github.com/polysamo/quantumnet/sched/trace"
)

// DefaultMaxAttempts is the attempt budget SubmitRequest gives each pass.
const DefaultMaxAttempts = 1

// ControllerConfig groups the collaborators and policies of a Controller.
// Oracle and Executor are required; every other field has a default.
type ControllerConfig struct {
	Oracle      RoutingOracle
	Executor    ResourceExecutor
	Pool        ResourcePool       // nil = NopPool
	Clock       *Clock             // nil = fresh clock at timeslot 0
	Prioritizer RequestPrioritizer // nil = DemandComplexityPrioritizer
	MaxProbe    int                // timeslots examined by the free-slot probe; <= 0 = unbounded
	Trace       *trace.DecisionTrace
	Metrics     *metrics.Collector
}
