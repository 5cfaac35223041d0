package workload

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/polysamo/quantumnet/sched"
)

// requestNamespace scopes the name-based request UUIDs.
var requestNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("quantumnet/request"))

// GenerateRequests creates NumRequests requests from spec.
// Deterministic given the same WorkloadSpec: parameters come from the
// workload RNG stream and IDs are name-based UUIDs of (seed, index).
func GenerateRequests(spec *WorkloadSpec) ([]*sched.Request, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid workload spec: %w", err)
	}
	rng := sched.NewPartitionedRNG(sched.NewRunKey(spec.Seed)).ForSubsystem(sched.SubsystemWorkload)

	protocols := spec.Protocols
	if len(protocols) == 0 {
		protocols = DefaultProtocols
	}

	requests := make([]*sched.Request, 0, spec.NumRequests)
	for i := 0; i < spec.NumRequests; i++ {
		client := spec.Clients[rng.Intn(len(spec.Clients))]
		protocol := client.Protocol
		if protocol == "" {
			protocol = protocols[rng.Intn(len(protocols))]
		}
		demand := spec.Demand.sample(rng)
		gates := spec.Gates.sample(rng)

		req := sched.NewRequest(RequestID(spec.Seed, i), client.Node, spec.Server, demand, gates, protocol)
		req.Depth = depthFor(spec.Depth, rng, gates, demand)
		req.Scenario = spec.Scenario
		requests = append(requests, req)
	}
	logrus.Infof("generated %d requests for %d clients (seed %d)", len(requests), len(spec.Clients), spec.Seed)
	return requests, nil
}

// RequestID returns the name-based UUID of the index-th request of a seeded run.
func RequestID(seed int64, index int) string {
	return uuid.NewSHA1(requestNamespace, []byte(fmt.Sprintf("%d/%d", seed, index))).String()
}

func (r RangeSpec) sample(rng *rand.Rand) int {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.Intn(r.Max-r.Min+1)
}

// depthFor draws from the depth range when configured. Otherwise the gates
// are assumed spread evenly over the qubits.
func depthFor(depth RangeSpec, rng *rand.Rand, gates, qubits int) int {
	if depth != (RangeSpec{}) {
		return depth.sample(rng)
	}
	return (gates + qubits - 1) / qubits
}
