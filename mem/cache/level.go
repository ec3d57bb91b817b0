package cache

import (
	"fmt"

	"github.com/sarchlab/cachesim/mem/cache/internal/tagging"
	"github.com/sarchlab/cachesim/sim/hooking"
)

// A Level is one cache of the hierarchy. It keeps tags only; no data is
// stored.
type Level struct {
	hooking.HookableBase

	name         string
	geometry     Geometry
	policy       ReplacementPolicy
	decoder      tagging.Decoder
	tags         tagging.TagArray
	victimFinder tagging.VictimFinder
	lookup       func(addr uint64, p tagging.Partition) bool

	hits      uint64
	misses    uint64
	evictions uint64
}

// Name returns the name of the level.
func (l *Level) Name() string {
	return l.name
}

// Geometry returns the shape of the level.
func (l *Level) Geometry() Geometry {
	return l.geometry
}

// Policy returns the replacement policy in use.
func (l *Level) Policy() ReplacementPolicy {
	return l.policy
}

// Hits returns the number of lookups that found their tag.
func (l *Level) Hits() uint64 {
	return l.hits
}

// Misses returns the number of lookups that did not find their tag.
func (l *Level) Misses() uint64 {
	return l.misses
}

// Evictions returns the number of valid lines that were overwritten.
func (l *Level) Evictions() uint64 {
	return l.evictions
}

// Blocks returns a copy of the lines of a set.
func (l *Level) Blocks(setID int) []Block {
	blocks := l.tags.Blocks(setID)

	out := make([]Block, len(blocks))
	for i, b := range blocks {
		out[i] = Block{Tag: b.Tag, Valid: b.IsValid}
	}

	return out
}

// Lookup searches the level for addr. On a miss, the tag is filled into the
// level, evicting a line if the candidate set is full.
func (l *Level) Lookup(addr uint64) bool {
	return l.lookup(addr, l.decoder.Decode(addr))
}

// Reset empties the level and clears its counters.
func (l *Level) Reset() {
	l.tags.Reset()

	if l.victimFinder != nil {
		l.victimFinder.Reset()
	}

	l.hits = 0
	l.misses = 0
	l.evictions = 0
}

func (l *Level) String() string {
	return fmt.Sprintf(
		"Cache: %s, Line Size: %d, Number of lines: %d, Size: %d, "+
			"Kind: %s, Policy: %s",
		l.name, l.geometry.LineSize, l.geometry.LineNum(),
		l.geometry.Size, l.kindName(), l.policy)
}

func (l *Level) kindName() string {
	if l.geometry.Kind == KindSetAssociative {
		return fmt.Sprintf("%dway", l.geometry.Ways)
	}

	return l.geometry.Kind.String()
}

func (l *Level) lookupDirect(addr uint64, p tagging.Partition) bool {
	block := l.tags.Block(int(p.Index), 0)

	if block.IsValid && block.Tag == p.Tag {
		l.hits++
		l.traceAccess(addr, p, AccessHit, block, nil)

		return true
	}

	l.misses++

	var evicted *tagging.Block
	if block.IsValid {
		l.evictions++
		evicted = &block
	}

	l.fill(block, p.Tag)
	l.traceAccess(addr, p, AccessDirectMiss, block, evicted)

	return false
}

func (l *Level) lookupAssociative(addr uint64, p tagging.Partition) bool {
	setID := int(p.Index)

	block, hit, free := l.tags.Probe(setID, p.Tag)

	switch {
	case hit:
		l.hits++
		l.victimFinder.Visit(block.SetID, block.WayID)
		l.traceAccess(addr, p, AccessHit, block, nil)

		return true
	case free:
		l.misses++
		l.fill(block, p.Tag)
		l.victimFinder.Visit(block.SetID, block.WayID)
		l.traceAccess(addr, p, AccessCompactionMiss, block, nil)

		return false
	}

	l.misses++
	l.evictions++

	victim := l.tags.Block(setID, l.victimFinder.FindVictim(setID))
	l.fill(victim, p.Tag)
	l.victimFinder.Visit(victim.SetID, victim.WayID)
	l.traceAccess(addr, p, AccessEvictionMiss, victim, &victim)

	return false
}

func (l *Level) fill(block tagging.Block, tag uint64) {
	block.Tag = tag
	block.IsValid = true
	l.tags.Update(block)
}
