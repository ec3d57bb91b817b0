package cache

import (
	"github.com/sarchlab/cachesim/mem/cache/internal/tagging"
	"github.com/sarchlab/cachesim/sim/hooking"
)

// Builder can build cache levels.
type Builder struct {
	size     uint64
	lineSize uint64
	kind     Kind
	ways     int
	policy   ReplacementPolicy
	hooks    []hooking.Hook
}

// MakeBuilder creates a new builder with a 16 KB, 4-way, 64 B line,
// round-robin default.
func MakeBuilder() Builder {
	return Builder{
		size:     16 * 1024,
		lineSize: 64,
		kind:     KindSetAssociative,
		ways:     4,
		policy:   PolicyRoundRobin,
	}
}

// WithSize sets the capacity of the level in bytes.
func (b Builder) WithSize(size uint64) Builder {
	b.size = size
	return b
}

// WithLineSize sets the cache line size in bytes.
func (b Builder) WithLineSize(lineSize uint64) Builder {
	b.lineSize = lineSize
	return b
}

// WithKind sets the organization. The way count is only used by
// set-associative levels.
func (b Builder) WithKind(kind Kind, ways int) Builder {
	b.kind = kind
	b.ways = ways

	return b
}

// WithReplacementPolicy sets the replacement policy. It is ignored by
// direct-mapped levels.
func (b Builder) WithReplacementPolicy(policy ReplacementPolicy) Builder {
	b.policy = policy
	return b
}

// WithHook registers a hook on the built level.
func (b Builder) WithHook(hook hooking.Hook) Builder {
	hooks := make([]hooking.Hook, len(b.hooks), len(b.hooks)+1)
	copy(hooks, b.hooks)
	b.hooks = append(hooks, hook)

	return b
}

// Build builds a cache level. All storage is allocated here.
func (b Builder) Build(name string) (*Level, error) {
	geometry := Geometry{
		Size:     b.size,
		LineSize: b.lineSize,
		Kind:     b.kind,
		Ways:     b.ways,
	}

	err := geometry.Validate()
	if err != nil {
		return nil, &ConfigurationError{Level: name, Reason: err.Error()}
	}

	numSets := geometry.SetNum()
	numWays := geometry.SetSize()

	decoder, err := tagging.NewDecoder(geometry.LineSize, numSets)
	if err != nil {
		return nil, &ConfigurationError{Level: name, Reason: err.Error()}
	}

	l := &Level{
		name:     name,
		geometry: geometry,
		decoder:  decoder,
		tags:     tagging.NewTagArray(int(numSets), numWays),
	}

	if geometry.Kind == KindDirect {
		l.policy = PolicyNone
		l.lookup = l.lookupDirect
	} else {
		l.policy = b.associativePolicy()
		l.victimFinder = b.createVictimFinder(int(numSets), numWays)
		l.lookup = l.lookupAssociative
	}

	for _, hook := range b.hooks {
		l.AcceptHook(hook)
	}

	return l, nil
}

func (b Builder) associativePolicy() ReplacementPolicy {
	switch b.policy {
	case PolicyLRU, PolicyLFU:
		return b.policy
	default:
		return PolicyRoundRobin
	}
}

func (b Builder) createVictimFinder(
	numSets, numWays int,
) tagging.VictimFinder {
	switch b.associativePolicy() {
	case PolicyLRU:
		return tagging.NewLRUVictimFinder(numSets, numWays)
	case PolicyLFU:
		return tagging.NewLFUVictimFinder(numSets, numWays)
	default:
		return tagging.NewRoundRobinVictimFinder(numSets, numWays)
	}
}
