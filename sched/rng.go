package sched

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// RunKey identifies a reproducible simulation run. Two runs with the same
// RunKey and identical configuration produce identical schedules.
type RunKey int64

// NewRunKey creates a RunKey from a seed value.
func NewRunKey(seed int64) RunKey {
	return RunKey(seed)
}

const (
	// SubsystemWorkload draws request parameters. Uses the master seed directly.
	SubsystemWorkload = "workload"

	// SubsystemNetwork draws fresh qubit fidelities. EPR pairs draw from
	// their link's own stream, see SubsystemLink.
	SubsystemNetwork = "network"
)

// SubsystemLink returns the subsystem name for the link between u and v.
func SubsystemLink(u, v int) string {
	return fmt.Sprintf("link_%d_%d", u, v)
}

// PartitionedRNG hands out deterministic, isolated RNG streams per subsystem.
//
// Derivation:
//   - SubsystemWorkload: master seed
//   - any other subsystem: master seed XOR fnv1a64(name)
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	key        RunKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a RunKey.
func NewPartitionedRNG(key RunKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns the RNG for the named subsystem. Repeated calls with
// the same name return the same *rand.Rand. Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}

	derivedSeed := int64(p.key)
	if name != SubsystemWorkload {
		derivedSeed ^= fnv1a64(name)
	}

	rng := rand.New(rand.NewSource(derivedSeed))
	p.subsystems[name] = rng
	return rng
}

// Key returns the RunKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() RunKey {
	return p.key
}

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
