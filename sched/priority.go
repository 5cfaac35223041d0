package sched

import (
	"fmt"
	"sort"
)

// RequestPrioritizer reorders the pending queue before an admission pass.
// Implementations sort the slice in-place using sort.SliceStable for determinism.
type RequestPrioritizer interface {
	Order(requests []*Request)
}

// DemandComplexityPrioritizer admits small transfers first so more requests
// fit in each timeslot. Among equal demands, heavier workloads go first so
// they are not starved behind a stream of cheap ones.
type DemandComplexityPrioritizer struct{}

func (DemandComplexityPrioritizer) Order(reqs []*Request) {
	sort.SliceStable(reqs, func(i, j int) bool {
		if reqs[i].Demand != reqs[j].Demand {
			return reqs[i].Demand < reqs[j].Demand
		}
		return reqs[i].Complexity > reqs[j].Complexity
	})
}

// FCFSPrioritizer preserves submission order (no-op).
type FCFSPrioritizer struct{}

func (FCFSPrioritizer) Order(_ []*Request) {}

// ValidPrioritizers is the set of recognized prioritizer names.
var ValidPrioritizers = map[string]bool{"": true, "demand-complexity": true, "fcfs": true}

// NewPrioritizer creates a RequestPrioritizer by name.
// Empty string defaults to DemandComplexityPrioritizer.
// Panics on unrecognized names; PolicyBundle.Validate reports them as errors first.
func NewPrioritizer(name string) RequestPrioritizer {
	if !ValidPrioritizers[name] {
		panic(fmt.Sprintf("unknown prioritizer %q", name))
	}
	switch name {
	case "", "demand-complexity":
		return DemandComplexityPrioritizer{}
	case "fcfs":
		return FCFSPrioritizer{}
	default:
		panic(fmt.Sprintf("unhandled prioritizer %q", name))
	}
}
