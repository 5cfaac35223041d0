package workload

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/polysamo/quantumnet/sched"
)

// WorkloadSpec describes a batch of transfer requests to generate.
// Loaded from YAML via LoadWorkloadSpec(path) or embedded in a scenario file.
type WorkloadSpec struct {
	Seed        int64        `yaml:"seed"`
	NumRequests int          `yaml:"num_requests"`
	Server      int          `yaml:"server"`
	Clients     []ClientSpec `yaml:"clients"`
	Protocols   []string     `yaml:"protocols,omitempty"` // drawn per request for clients without a protocol
	Demand      RangeSpec    `yaml:"demand"`              // qubits per request
	Gates       RangeSpec    `yaml:"gates"`               // workload instruction count (complexity)
	Depth       RangeSpec    `yaml:"depth,omitempty"`     // unset = ceil(gates / demand)
	Scenario    int          `yaml:"scenario,omitempty"`
}

// ClientSpec is one requesting node. An empty Protocol draws from the
// WorkloadSpec.Protocols list on every request.
type ClientSpec struct {
	Node     int    `yaml:"node"`
	Protocol string `yaml:"protocol,omitempty"`
}

// RangeSpec is an inclusive integer range sampled uniformly.
type RangeSpec struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// DefaultProtocols is used when neither a client nor WorkloadSpec.Protocols names a protocol.
var DefaultProtocols = []string{sched.ProtocolACBQC, sched.ProtocolBFKBQC}

var validProtocols = map[string]bool{
	sched.ProtocolQKDE91:  true,
	sched.ProtocolACBQC:   true,
	sched.ProtocolBFKBQC:  true,
	sched.ProtocolGeneric: true,
}

// IsValidProtocol reports whether name is a recognized protocol tag.
func IsValidProtocol(name string) bool {
	return validProtocols[name]
}

// LoadWorkloadSpec reads and parses a YAML workload file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadWorkloadSpec(path string) (*WorkloadSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workload spec: %w", err)
	}
	var spec WorkloadSpec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing workload spec: %w", err)
	}
	return &spec, nil
}

// Validate checks counts, ranges and protocol names.
func (s *WorkloadSpec) Validate() error {
	if s.NumRequests < 0 {
		return fmt.Errorf("num_requests must be non-negative, got %d", s.NumRequests)
	}
	if len(s.Clients) == 0 {
		return fmt.Errorf("at least one client required")
	}
	for i, c := range s.Clients {
		if c.Node == s.Server {
			return fmt.Errorf("client[%d]: node %d is the server", i, c.Node)
		}
		if c.Protocol != "" && !IsValidProtocol(c.Protocol) {
			return fmt.Errorf("client[%d]: unknown protocol %q", i, c.Protocol)
		}
	}
	for _, p := range s.Protocols {
		if !IsValidProtocol(p) {
			return fmt.Errorf("unknown protocol %q", p)
		}
	}
	if err := s.Demand.validate("demand", 1); err != nil {
		return err
	}
	if err := s.Gates.validate("gates", 1); err != nil {
		return err
	}
	if s.Depth != (RangeSpec{}) {
		if err := s.Depth.validate("depth", 1); err != nil {
			return err
		}
	}
	return nil
}

func (r RangeSpec) validate(name string, floor int) error {
	if r.Min < floor {
		return fmt.Errorf("%s.min must be at least %d, got %d", name, floor, r.Min)
	}
	if r.Max < r.Min {
		return fmt.Errorf("%s.max (%d) must not be below %s.min (%d)", name, r.Max, name, r.Min)
	}
	return nil
}
