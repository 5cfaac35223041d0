// Implements the simulated quantum network: per-link EPR pools, per-node
// qubit buffers, decoherence over time, and protocol execution against them.

package network

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/polysamo/quantumnet/sched"
)

// Network is the resource model behind the scheduler. It satisfies
// sched.RoutingOracle, sched.ResourceExecutor and sched.ResourcePool.
//
// Thread-safety: all methods are safe for concurrent use.
type Network struct {
	mu       sync.Mutex
	topology *Topology
	cfg      Config
	rng      *sched.PartitionedRNG // per-link streams for EPR pairs, the network stream for qubits
	timeslot int

	eprs   map[sched.Link][]float64 // canonical link → EPR pair fidelities, newest last
	qubits map[int][]qubit          // node → buffered qubits, newest last
	stats  usage
}

type qubit struct {
	fidelity float64
	created  int
}

// NewNetwork creates a network over topology with full EPR pools and qubit
// buffers. When clock is non-nil, decoherence is applied on each advance.
func NewNetwork(topology *Topology, cfg Config, clock *sched.Clock) (*Network, error) {
	if topology == nil {
		return nil, fmt.Errorf("topology must not be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid network config: %w", err)
	}
	n := &Network{
		topology: topology,
		cfg:      cfg,
		rng:      sched.NewPartitionedRNG(sched.NewRunKey(cfg.Seed)),
		eprs:     make(map[sched.Link][]float64),
		qubits:   make(map[int][]qubit),
	}
	n.refill()
	if clock != nil {
		n.timeslot = clock.Current()
		clock.OnAdvance(n.onAdvance)
	}
	logrus.Infof("network ready: %d nodes, %d links, %d EPR pairs/link, %d qubits/node",
		len(topology.Nodes()), len(topology.Links()), cfg.EPRsPerLink, cfg.QubitsPerNode)
	return n, nil
}

// Topology returns the underlying topology.
func (n *Network) Topology() *Topology { return n.topology }

// ShortestValidRoute returns the fewest-hop route that only uses links
// holding at least one EPR pair.
func (n *Network) ShortestValidRoute(src, dst int) (sched.Path, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	path, err := n.topology.ShortestRoute(src, dst, func(u, v int) bool {
		return len(n.eprs[canonical(u, v)]) > 0
	})
	if err != nil {
		logrus.Debugf("no valid route %d -> %d: %v", src, dst, err)
		return nil, false
	}
	return path, true
}

// ResetBetweenTimeslots tops every EPR pool and qubit buffer back up to the
// configured level with fresh resources.
func (n *Network) ResetBetweenTimeslots() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.refill()
	logrus.Debugf("[timeslot %04d] network resources refilled", n.timeslot)
}

func (n *Network) refill() {
	for _, l := range n.topology.Links() {
		rng := n.rng.ForSubsystem(sched.SubsystemLink(l.From, l.To))
		for len(n.eprs[l]) < n.cfg.EPRsPerLink {
			n.eprs[l] = append(n.eprs[l], n.freshFidelity(rng))
		}
	}
	rng := n.rng.ForSubsystem(sched.SubsystemNetwork)
	for _, id := range n.topology.Nodes() {
		for len(n.qubits[id]) < n.cfg.QubitsPerNode {
			n.qubits[id] = append(n.qubits[id], qubit{fidelity: n.freshFidelity(rng), created: n.timeslot})
		}
	}
}

func (n *Network) freshFidelity(rng *rand.Rand) float64 {
	if n.cfg.MinFidelity >= 1 {
		return 1
	}
	return n.cfg.MinFidelity + rng.Float64()*(1-n.cfg.MinFidelity)
}

// onAdvance decays every EPR pair and every qubit created before the new timeslot.
func (n *Network) onAdvance(timeslot int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.timeslot = timeslot
	keep := 1 - n.cfg.DecoherenceFactor
	for l, pool := range n.eprs {
		for i := range pool {
			pool[i] *= keep
		}
		n.eprs[l] = pool
	}
	for id, buf := range n.qubits {
		for i := range buf {
			if buf[i].created < timeslot {
				buf[i].fidelity *= keep
			}
		}
		n.qubits[id] = buf
	}
}

// EPRCount returns the EPR pairs currently available on the link u-v.
func (n *Network) EPRCount(u, v int) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.eprs[canonical(u, v)])
}

// QubitCount returns the qubits currently buffered at node.
func (n *Network) QubitCount(node int) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.qubits[node])
}

// LinkFidelity returns the mean fidelity of the EPR pairs on u-v, or 0 if the pool is empty.
func (n *Network) LinkFidelity(u, v int) float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return mean(n.eprs[canonical(u, v)])
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
