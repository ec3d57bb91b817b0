package cache

import (
	"github.com/sarchlab/cachesim/sim/hooking"
)

// A Hierarchy chains cache levels, L1 first. Levels do not exchange content:
// a miss at one level fills that level no matter what the next level does.
type Hierarchy struct {
	hooking.HookableBase

	levels           []*Level
	mainMemoryAccess uint64
}

// NewHierarchy creates a hierarchy over the given levels. The level order
// cannot change afterwards.
func NewHierarchy(levels ...*Level) *Hierarchy {
	h := &Hierarchy{
		levels: make([]*Level, len(levels)),
	}
	copy(h.levels, levels)

	return h
}

// Name returns the name of the hierarchy.
func (h *Hierarchy) Name() string {
	return "Hierarchy"
}

// Levels returns the levels, L1 first.
func (h *Hierarchy) Levels() []*Level {
	levels := make([]*Level, len(h.levels))
	copy(levels, h.levels)

	return levels
}

// MainMemoryAccess returns the number of addresses that missed every level.
func (h *Hierarchy) MainMemoryAccess() uint64 {
	return h.mainMemoryAccess
}

// Access routes addr through the levels until one hits. It returns false if
// the address had to go to main memory.
func (h *Hierarchy) Access(addr uint64) bool {
	for _, l := range h.levels {
		if l.Lookup(addr) {
			return true
		}
	}

	h.mainMemoryAccess++

	if h.NumHooks() > 0 {
		h.InvokeHook(hooking.HookCtx{
			Domain: h,
			Pos:    HookPosMainMemoryAccess,
			Item:   addr,
		})
	}

	return false
}

// Reset empties all the levels and clears every counter.
func (h *Hierarchy) Reset() {
	for _, l := range h.levels {
		l.Reset()
	}

	h.mainMemoryAccess = 0
}
