package sched

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/polysamo/quantumnet/sched/trace"
)

// PolicyBundle holds the controller's policy knobs, loadable from a YAML file.
// Nil pointer fields mean "not set in YAML" and leave the defaults in place.
// String fields use empty string for "not set".
type PolicyBundle struct {
	Prioritizer string `yaml:"prioritizer"`
	MaxAttempts *int   `yaml:"max_attempts"`
	MaxProbe    *int   `yaml:"max_probe"`
	Trace       string `yaml:"trace"`
}

// LoadPolicyBundle reads and parses a YAML policy file. Unknown keys are
// rejected so typos do not silently fall back to defaults.
func LoadPolicyBundle(path string) (*PolicyBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading policy config: %w", err)
	}
	var bundle PolicyBundle
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&bundle); err != nil {
		return nil, fmt.Errorf("parsing policy config: %w", err)
	}
	return &bundle, nil
}

// Validate checks policy names and parameter ranges.
func (b *PolicyBundle) Validate() error {
	if !ValidPrioritizers[b.Prioritizer] {
		return fmt.Errorf("unknown prioritizer %q", b.Prioritizer)
	}
	if b.Trace != "" && !trace.IsValidTraceLevel(b.Trace) {
		return fmt.Errorf("unknown trace level %q", b.Trace)
	}
	if b.MaxAttempts != nil && *b.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1, got %d", *b.MaxAttempts)
	}
	if b.MaxProbe != nil && *b.MaxProbe < 0 {
		return fmt.Errorf("max_probe must be non-negative, got %d", *b.MaxProbe)
	}
	return nil
}

// Attempts returns the configured attempt budget, or def when unset.
func (b *PolicyBundle) Attempts(def int) int {
	if b == nil || b.MaxAttempts == nil {
		return def
	}
	return *b.MaxAttempts
}

// Apply copies the bundle's settings onto cfg. Call Validate first.
func (b *PolicyBundle) Apply(cfg *ControllerConfig) {
	if b == nil {
		return
	}
	if b.Prioritizer != "" {
		cfg.Prioritizer = NewPrioritizer(b.Prioritizer)
	}
	if b.MaxProbe != nil {
		cfg.MaxProbe = *b.MaxProbe
	}
	if b.Trace != "" {
		cfg.Trace = trace.NewDecisionTrace(trace.TraceLevel(b.Trace))
	}
}
