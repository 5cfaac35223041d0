package network

import "fmt"

// Topology kinds accepted by Build.
const (
	KindGrid  = "grid"
	KindLine  = "line"
	KindRing  = "ring"
	KindEdges = "edges"
)

// ValidKinds is the set of recognized topology kinds.
var ValidKinds = map[string]bool{KindGrid: true, KindLine: true, KindRing: true, KindEdges: true}

// Grid builds a rows x cols lattice. Node (r, c) gets ID r*cols + c.
func Grid(rows, cols int) (*Topology, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("grid dimensions must be positive, got %dx%d", rows, cols)
	}
	t := NewTopology()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			id := r*cols + c
			if err := t.AddNode(id); err != nil {
				return nil, err
			}
			if c > 0 {
				if err := t.AddLink(id-1, id); err != nil {
					return nil, err
				}
			}
			if r > 0 {
				if err := t.AddLink(id-cols, id); err != nil {
					return nil, err
				}
			}
		}
	}
	return t, nil
}

// Line builds the path 0 - 1 - ... - n-1.
func Line(n int) (*Topology, error) {
	if n < 1 {
		return nil, fmt.Errorf("line needs at least one node, got %d", n)
	}
	t := NewTopology()
	if err := t.AddNode(0); err != nil {
		return nil, err
	}
	for i := 1; i < n; i++ {
		if err := t.AddLink(i-1, i); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Ring builds a line of n nodes and closes it with the link n-1 - 0.
func Ring(n int) (*Topology, error) {
	if n < 3 {
		return nil, fmt.Errorf("ring needs at least three nodes, got %d", n)
	}
	t, err := Line(n)
	if err != nil {
		return nil, err
	}
	if err := t.AddLink(n-1, 0); err != nil {
		return nil, err
	}
	return t, nil
}

// FromEdges builds a topology from explicit [u, v] pairs.
func FromEdges(edges [][2]int) (*Topology, error) {
	if len(edges) == 0 {
		return nil, fmt.Errorf("edge list is empty")
	}
	t := NewTopology()
	for _, e := range edges {
		if err := t.AddLink(e[0], e[1]); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Build dispatches on kind. dims holds rows and cols for grid and the node
// count for line and ring; edges is used only by the edges kind.
func Build(kind string, dims []int, edges [][2]int) (*Topology, error) {
	switch kind {
	case KindGrid:
		if len(dims) != 2 {
			return nil, fmt.Errorf("grid topology needs 2 dimensions, got %d", len(dims))
		}
		return Grid(dims[0], dims[1])
	case KindLine, KindRing:
		if len(dims) != 1 {
			return nil, fmt.Errorf("%s topology needs 1 dimension, got %d", kind, len(dims))
		}
		if kind == KindLine {
			return Line(dims[0])
		}
		return Ring(dims[0])
	case KindEdges:
		return FromEdges(edges)
	default:
		return nil, fmt.Errorf("unknown topology kind %q", kind)
	}
}
