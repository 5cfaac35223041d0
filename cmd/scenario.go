package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/polysamo/quantumnet/network"
	"github.com/polysamo/quantumnet/sched"
	"github.com/polysamo/quantumnet/workload"
)

// ScenarioConfig is the full description of a run: the network, its
// resources, the generated workload and, for slice mode, the slices.
// All top-level sections must be listed to satisfy KnownFields(true).
type ScenarioConfig struct {
	Topology TopologyConfig        `yaml:"topology"`
	Network  network.Config        `yaml:"network"`
	Workload workload.WorkloadSpec `yaml:"workload"`
	Slices   *SliceConfig          `yaml:"slices,omitempty"`
}

// TopologyConfig selects a topology builder. Dims is [rows, cols] for grid
// and [n] for line and ring; Edges is used by the edges kind.
type TopologyConfig struct {
	Kind  string  `yaml:"kind"`
	Dims  []int   `yaml:"dims,omitempty"`
	Edges [][]int `yaml:"edges,omitempty"`
}

// SliceConfig mirrors SliceScheduler.ConfigureSlices: one slice per index.
type SliceConfig struct {
	Clients   []int    `yaml:"clients"`
	Server    int      `yaml:"server"`
	Protocols []string `yaml:"protocols"`
	Paths     [][]int  `yaml:"paths"`
}

// DefaultScenario is a 3x3 grid with three clients sending to the far
// corner. Loaded files override it field by field.
func DefaultScenario() ScenarioConfig {
	return ScenarioConfig{
		Topology: TopologyConfig{Kind: network.KindGrid, Dims: []int{3, 3}},
		Network:  network.DefaultConfig(),
		Workload: workload.WorkloadSpec{
			Seed:        42,
			NumRequests: 10,
			Server:      8,
			Clients: []workload.ClientSpec{
				{Node: 0, Protocol: sched.ProtocolACBQC},
				{Node: 2, Protocol: sched.ProtocolBFKBQC},
				{Node: 6, Protocol: sched.ProtocolQKDE91},
			},
			Demand: workload.RangeSpec{Min: 1, Max: 3},
			Gates:  workload.RangeSpec{Min: 2, Max: 12},
		},
	}
}

// LoadScenario reads a scenario file on top of DefaultScenario.
// Unrecognized keys are rejected.
func LoadScenario(path string) (*ScenarioConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	cfg := DefaultScenario()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	return &cfg, nil
}

// Validate checks every section.
func (c *ScenarioConfig) Validate() error {
	if !network.ValidKinds[c.Topology.Kind] {
		return fmt.Errorf("unknown topology kind %q", c.Topology.Kind)
	}
	for i, e := range c.Topology.Edges {
		if len(e) != 2 {
			return fmt.Errorf("topology.edges[%d]: want 2 endpoints, got %d", i, len(e))
		}
	}
	if err := c.Network.Validate(); err != nil {
		return fmt.Errorf("network: %w", err)
	}
	if err := c.Workload.Validate(); err != nil {
		return fmt.Errorf("workload: %w", err)
	}
	if s := c.Slices; s != nil {
		if len(s.Clients) != len(s.Protocols) || len(s.Clients) != len(s.Paths) {
			return fmt.Errorf("slices: clients, protocols and paths must have equal lengths, got %d/%d/%d",
				len(s.Clients), len(s.Protocols), len(s.Paths))
		}
		for i, p := range s.Protocols {
			if !workload.IsValidProtocol(p) {
				return fmt.Errorf("slices.protocols[%d]: unknown protocol %q", i, p)
			}
		}
	}
	return nil
}

// BuildTopology constructs the configured topology.
func (c *ScenarioConfig) BuildTopology() (*network.Topology, error) {
	edges := make([][2]int, len(c.Topology.Edges))
	for i, e := range c.Topology.Edges {
		if len(e) != 2 {
			return nil, fmt.Errorf("topology.edges[%d]: want 2 endpoints, got %d", i, len(e))
		}
		edges[i] = [2]int{e[0], e[1]}
	}
	return network.Build(c.Topology.Kind, c.Topology.Dims, edges)
}

// SlicePaths converts the configured slice paths, validating each against topo.
func (c *ScenarioConfig) SlicePaths(topo *network.Topology) ([]sched.Path, error) {
	if c.Slices == nil {
		return nil, fmt.Errorf("scenario has no slices section")
	}
	paths := make([]sched.Path, len(c.Slices.Paths))
	for i, p := range c.Slices.Paths {
		path := sched.Path(p)
		if err := topo.ValidatePath(path); err != nil {
			return nil, fmt.Errorf("slices.paths[%d]: %w", i, err)
		}
		paths[i] = path
	}
	return paths, nil
}
