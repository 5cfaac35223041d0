package network

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/polysamo/quantumnet/sched"
)

// Demand describes the resources one execution draws from the network.
type Demand struct {
	Qubits     int // taken from the source node's buffer
	EPRsPerHop int // taken from every link of the path
}

// ProtocolDemand returns what req needs under its protocol tag.
// QKD_E91 and the generic teleport consume one EPR pair per qubit per hop.
// AC_BQC sends the qubits back to the client, doubling the EPR pairs.
// BFK_BQC adds one EPR pair per hop for every computation round (Depth,
// or the qubit count when Depth is unset).
func ProtocolDemand(req *sched.Request) (Demand, error) {
	qubits := max(req.Demand, 1)
	switch req.Protocol {
	case sched.ProtocolQKDE91, sched.ProtocolGeneric, "":
		return Demand{Qubits: qubits, EPRsPerHop: qubits}, nil
	case sched.ProtocolACBQC:
		return Demand{Qubits: qubits, EPRsPerHop: 2 * qubits}, nil
	case sched.ProtocolBFKBQC:
		rounds := req.Depth
		if rounds <= 0 {
			rounds = qubits
		}
		return Demand{Qubits: qubits, EPRsPerHop: qubits + rounds}, nil
	default:
		return Demand{}, fmt.Errorf("unsupported protocol %q", req.Protocol)
	}
}

// Execute runs req over path. Resources are checked before anything is
// consumed; once consumed they stay consumed even when the fidelity check
// fails. Reasons are returned for expected failures; the error return is
// reserved for faults.
func (n *Network) Execute(req *sched.Request, path sched.Path) (bool, string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.stats.executions++
	ok, reason := n.executeLocked(req, path)
	if !ok {
		n.stats.failures++
		logrus.Debugf("[timeslot %04d] %s over %v failed: %s", n.timeslot, req.ID, path, reason)
	}
	return ok, reason, nil
}

func (n *Network) executeLocked(req *sched.Request, path sched.Path) (bool, string) {
	if err := n.topology.ValidatePath(path); err != nil {
		return false, fmt.Sprintf("invalid path: %v", err)
	}
	demand, err := ProtocolDemand(req)
	if err != nil {
		return false, err.Error()
	}

	src := path[0]
	if have := len(n.qubits[src]); have < demand.Qubits {
		return false, fmt.Sprintf("insufficient qubits at node %d: have %d, need %d", src, have, demand.Qubits)
	}
	for _, l := range path.Links() {
		if have := len(n.eprs[canonical(l.From, l.To)]); have < demand.EPRsPerHop {
			return false, fmt.Sprintf("insufficient EPR pairs on link %v: have %d, need %d", l, have, demand.EPRsPerHop)
		}
	}

	qubitFidelity := mean(n.takeQubits(src, demand.Qubits))
	var consumed []float64
	for _, l := range path.Links() {
		consumed = append(consumed, n.takeEPRs(canonical(l.From, l.To), demand.EPRsPerHop)...)
	}
	routeFidelity := mean(consumed)
	final := qubitFidelity * routeFidelity

	n.stats.qubitsUsed += demand.Qubits
	n.stats.eprsUsed += len(consumed)
	n.stats.fidelities = append(n.stats.fidelities, final)
	n.stats.routeHops = append(n.stats.routeHops, len(path)-1)

	if n.cfg.FidelityThreshold > 0 && final < n.cfg.FidelityThreshold {
		return false, fmt.Sprintf("fidelity %.4f below threshold %.4f", final, n.cfg.FidelityThreshold)
	}
	logrus.Debugf("[timeslot %04d] %s %s over %v: fidelity %.4f", n.timeslot, req.Protocol, req.ID, path, final)
	return true, ""
}

func (n *Network) takeQubits(node, count int) []float64 {
	buf := n.qubits[node]
	taken := make([]float64, 0, count)
	for _, q := range buf[len(buf)-count:] {
		taken = append(taken, q.fidelity)
	}
	n.qubits[node] = buf[:len(buf)-count]
	return taken
}

func (n *Network) takeEPRs(l sched.Link, count int) []float64 {
	pool := n.eprs[l]
	taken := append([]float64(nil), pool[len(pool)-count:]...)
	n.eprs[l] = pool[:len(pool)-count]
	return taken
}
