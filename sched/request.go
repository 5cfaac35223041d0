// Defines the Request that models a single end-to-end transfer in the scheduler,
// plus the Path and Link types used for route reservation.

package sched

import (
	"fmt"
	"strconv"
	"strings"
)

// RequestStatus represents the lifecycle state of a request.
type RequestStatus string

const (
	StatusUnscheduled RequestStatus = "unscheduled"
	StatusScheduled   RequestStatus = "scheduled"
	StatusExecuted    RequestStatus = "executed"
	StatusFailed      RequestStatus = "failed"
)

// Protocol tags understood by the simulated executor. The engine treats them
// as opaque strings; only slice matching compares them.
const (
	ProtocolQKDE91  = "QKD_E91"
	ProtocolACBQC   = "AC_BQC"
	ProtocolBFKBQC  = "BFK_BQC"
	ProtocolGeneric = "generic"
)

// Request models one desired transfer between two nodes.
type Request struct {
	ID          string
	Source      int // client (alice) node
	Destination int // server (bob) node
	Demand      int // qubits to transfer; smaller demands are admitted first
	Complexity  int // instruction count of the attached workload; larger first among equal demands
	Depth       int // circuit depth, used as round count by BFK_BQC
	Protocol    string
	Scenario    int

	// SlicePath and SliceID are set by slice assignment. Nil means no static path.
	SlicePath Path
	SliceID   string

	Status RequestStatus
	Reason string // failure reason once Status is StatusFailed
}

// NewRequest creates an unscheduled request between src and dst.
func NewRequest(id string, src, dst, demand, complexity int, protocol string) *Request {
	return &Request{
		ID:          id,
		Source:      src,
		Destination: dst,
		Demand:      demand,
		Complexity:  complexity,
		Protocol:    protocol,
		Status:      StatusUnscheduled,
	}
}

// HasSlicePath reports whether a static slice path was attached.
func (r *Request) HasSlicePath() bool {
	return len(r.SlicePath) > 0
}

// Snapshot returns a copy of the request that later mutations do not reach.
func (r *Request) Snapshot() Request {
	cp := *r
	cp.SlicePath = r.SlicePath.Clone()
	return cp
}

func (r Request) String() string {
	return fmt.Sprintf("Request: (ID: %s, %d -> %d, Demand: %d, Complexity: %d, Protocol: %s, Status: %s)",
		r.ID, r.Source, r.Destination, r.Demand, r.Complexity, r.Protocol, r.Status)
}

// Path is an ordered sequence of node identifiers a transfer traverses.
type Path []int

// Link is one directional hop of a path. (u, v) and (v, u) are different keys.
type Link struct {
	From int
	To   int
}

func (l Link) String() string {
	return fmt.Sprintf("(%d,%d)", l.From, l.To)
}

// Links returns the consecutive hops of the path in traversal order.
func (p Path) Links() []Link {
	if len(p) < 2 {
		return nil
	}
	links := make([]Link, 0, len(p)-1)
	for i := 0; i < len(p)-1; i++ {
		links = append(links, Link{From: p[i], To: p[i+1]})
	}
	return links
}

// Intermediate returns every node except the last one.
func (p Path) Intermediate() []int {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1]
}

// Clone returns an independent copy; nil stays nil.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	return append(Path(nil), p...)
}

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, n := range p {
		parts[i] = strconv.Itoa(n)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
