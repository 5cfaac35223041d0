package network

import "fmt"

// Defaults mirror the refill levels a restarted network starts from.
const (
	DefaultEPRsPerLink       = 10
	DefaultQubitsPerNode     = 5
	DefaultDecoherenceFactor = 0.001
)

// Config holds the resource model of a simulated network.
type Config struct {
	EPRsPerLink       int     `yaml:"eprs_per_link"`
	QubitsPerNode     int     `yaml:"qubits_per_node"`
	MinFidelity       float64 `yaml:"min_fidelity"`       // fresh resources draw fidelity from [MinFidelity, 1]
	DecoherenceFactor float64 `yaml:"decoherence_factor"` // fraction of fidelity lost per timeslot
	FidelityThreshold float64 `yaml:"fidelity_threshold"` // 0 disables the check
	Seed              int64   `yaml:"seed"`
}

// DefaultConfig returns the standard resource model: full-fidelity resources,
// 10 EPR pairs per link, 5 qubits per node and 0.1% decoherence per timeslot.
func DefaultConfig() Config {
	return Config{
		EPRsPerLink:       DefaultEPRsPerLink,
		QubitsPerNode:     DefaultQubitsPerNode,
		MinFidelity:       1.0,
		DecoherenceFactor: DefaultDecoherenceFactor,
	}
}

// Validate checks parameter ranges.
func (c Config) Validate() error {
	if c.EPRsPerLink < 0 {
		return fmt.Errorf("eprs_per_link must be non-negative, got %d", c.EPRsPerLink)
	}
	if c.QubitsPerNode < 0 {
		return fmt.Errorf("qubits_per_node must be non-negative, got %d", c.QubitsPerNode)
	}
	if c.MinFidelity < 0 || c.MinFidelity > 1 {
		return fmt.Errorf("min_fidelity must be in [0, 1], got %f", c.MinFidelity)
	}
	if c.DecoherenceFactor < 0 || c.DecoherenceFactor >= 1 {
		return fmt.Errorf("decoherence_factor must be in [0, 1), got %f", c.DecoherenceFactor)
	}
	if c.FidelityThreshold < 0 || c.FidelityThreshold > 1 {
		return fmt.Errorf("fidelity_threshold must be in [0, 1], got %f", c.FidelityThreshold)
	}
	return nil
}
