// Implements the Topology, an undirected graph of quantum nodes backed by
// lvlath, and the fewest-hop route search used as the routing oracle.

package network

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/katalvlaran/lvlath/bfs"
	"github.com/katalvlaran/lvlath/core"

	"github.com/polysamo/quantumnet/sched"
)

// ErrUnknownNode is returned when an operation names a node absent from the topology.
var ErrUnknownNode = errors.New("unknown node")

// Topology is an undirected, unweighted graph over integer node IDs.
type Topology struct {
	graph *core.Graph
	nodes map[int]struct{}
	links []sched.Link // canonical (From < To), insertion order
}

// NewTopology creates an empty topology.
func NewTopology() *Topology {
	return &Topology{
		graph: core.NewGraph(),
		nodes: make(map[int]struct{}),
	}
}

// AddNode adds node id. Adding an existing node is a no-op.
func (t *Topology) AddNode(id int) error {
	if id < 0 {
		return fmt.Errorf("node id must be non-negative, got %d", id)
	}
	if err := t.graph.AddVertex(nodeID(id)); err != nil {
		return fmt.Errorf("adding node %d: %w", id, err)
	}
	t.nodes[id] = struct{}{}
	return nil
}

// AddLink connects u and v. Both nodes are created if needed.
// Duplicate links and self-loops are rejected.
func (t *Topology) AddLink(u, v int) error {
	if u == v {
		return fmt.Errorf("self-loop on node %d", u)
	}
	if t.HasLink(u, v) {
		return fmt.Errorf("duplicate link %d-%d", u, v)
	}
	if err := t.AddNode(u); err != nil {
		return err
	}
	if err := t.AddNode(v); err != nil {
		return err
	}
	if _, err := t.graph.AddEdge(nodeID(u), nodeID(v), 0); err != nil {
		return fmt.Errorf("adding link %d-%d: %w", u, v, err)
	}
	t.links = append(t.links, canonical(u, v))
	return nil
}

// HasNode reports whether id is part of the topology.
func (t *Topology) HasNode(id int) bool {
	_, ok := t.nodes[id]
	return ok
}

// HasLink reports whether u and v are directly connected, in either direction.
func (t *Topology) HasLink(u, v int) bool {
	if !t.HasNode(u) || !t.HasNode(v) {
		return false
	}
	return t.graph.HasEdge(nodeID(u), nodeID(v))
}

// Nodes returns the node IDs in ascending order.
func (t *Topology) Nodes() []int {
	ids := make([]int, 0, len(t.nodes))
	for id := range t.nodes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Links returns every link once, as (min, max) pairs, in insertion order.
func (t *Topology) Links() []sched.Link {
	return append([]sched.Link(nil), t.links...)
}

// ShortestRoute returns a fewest-hop route from src to dst. usable, when
// non-nil, hides the links for which it returns false. Ties between equally
// short routes are broken by lvlath's neighbor order.
func (t *Topology) ShortestRoute(src, dst int, usable func(u, v int) bool) (sched.Path, error) {
	if !t.HasNode(src) {
		return nil, fmt.Errorf("source %d: %w", src, ErrUnknownNode)
	}
	if !t.HasNode(dst) {
		return nil, fmt.Errorf("destination %d: %w", dst, ErrUnknownNode)
	}
	if src == dst {
		return sched.Path{src}, nil
	}

	var opts []bfs.Option
	if usable != nil {
		opts = append(opts, bfs.WithFilterNeighbor(func(curr, neighbor string) bool {
			return usable(mustNodeInt(curr), mustNodeInt(neighbor))
		}))
	}
	res, err := bfs.BFS(t.graph, nodeID(src), opts...)
	if err != nil {
		return nil, fmt.Errorf("searching from %d: %w", src, err)
	}
	ids, err := res.PathTo(nodeID(dst))
	if err != nil {
		return nil, fmt.Errorf("%d -> %d: %w", src, dst, sched.ErrNoRoute)
	}
	path := make(sched.Path, len(ids))
	for i, id := range ids {
		path[i] = mustNodeInt(id)
	}
	return path, nil
}

// ShortestValidRoute implements sched.RoutingOracle over the bare topology.
func (t *Topology) ShortestValidRoute(src, dst int) (sched.Path, bool) {
	path, err := t.ShortestRoute(src, dst, nil)
	if err != nil {
		return nil, false
	}
	return path, true
}

// ValidatePath checks that path has at least one hop and that every hop is a link.
func (t *Topology) ValidatePath(path sched.Path) error {
	if len(path) < 2 {
		return fmt.Errorf("path %v has no hops", path)
	}
	for _, l := range path.Links() {
		if !t.HasLink(l.From, l.To) {
			return fmt.Errorf("path %v uses missing link %v", path, l)
		}
	}
	return nil
}

func nodeID(id int) string { return strconv.Itoa(id) }

// mustNodeInt converts a vertex ID created by nodeID back to an int.
func mustNodeInt(s string) int {
	id, err := strconv.Atoi(s)
	if err != nil {
		panic(fmt.Sprintf("vertex id %q is not a node id", s))
	}
	return id
}

func canonical(u, v int) sched.Link {
	if u > v {
		u, v = v, u
	}
	return sched.Link{From: u, To: v}
}
