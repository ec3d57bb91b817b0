package cache

import (
	"github.com/sarchlab/cachesim/mem/cache/internal/tagging"
	"github.com/sarchlab/cachesim/sim/hooking"
)

// HookPosAccess marks a completed lookup of a level. The item is an
// AccessDetail.
var HookPosAccess = &hooking.HookPos{Name: "CacheAccess"}

// HookPosMainMemoryAccess marks an address that missed every level of a
// hierarchy. The item is the address as a uint64.
var HookPosMainMemoryAccess = &hooking.HookPos{Name: "MainMemoryAccess"}

// A Block is the externally visible state of one cache line.
type Block struct {
	Tag   uint64
	Valid bool
}

// AccessOutcome classifies a lookup.
type AccessOutcome int

// The outcomes of a lookup.
const (
	AccessHit AccessOutcome = iota
	// AccessDirectMiss overwrote the only candidate line of a direct-mapped
	// level.
	AccessDirectMiss
	// AccessCompactionMiss filled an empty line.
	AccessCompactionMiss
	// AccessEvictionMiss replaced the line chosen by the replacement policy.
	AccessEvictionMiss
)

func (o AccessOutcome) String() string {
	switch o {
	case AccessHit:
		return "hit"
	case AccessDirectMiss:
		return "direct_miss"
	case AccessCompactionMiss:
		return "compaction_miss"
	case AccessEvictionMiss:
		return "eviction_miss"
	default:
		return "unknown"
	}
}

// AccessDetail describes one lookup.
type AccessDetail struct {
	Address uint64
	Tag     uint64
	Index   uint64
	Offset  uint64
	Outcome AccessOutcome

	// SetID and WayID locate the line that was hit or filled.
	SetID int
	WayID int

	// Evicted tells whether a valid line was overwritten, and EvictedTag is
	// the tag it held.
	Evicted    bool
	EvictedTag uint64
}

func (l *Level) traceAccess(
	addr uint64,
	p tagging.Partition,
	outcome AccessOutcome,
	block tagging.Block,
	evicted *tagging.Block,
) {
	if l.NumHooks() == 0 {
		return
	}

	detail := AccessDetail{
		Address: addr,
		Tag:     p.Tag,
		Index:   p.Index,
		Offset:  p.Offset,
		Outcome: outcome,
		SetID:   block.SetID,
		WayID:   block.WayID,
	}

	if evicted != nil {
		detail.Evicted = true
		detail.EvictedTag = evicted.Tag
	}

	l.InvokeHook(hooking.HookCtx{
		Domain: l,
		Pos:    HookPosAccess,
		Item:   detail,
	})
}
