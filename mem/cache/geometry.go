package cache

import (
	"fmt"

	"github.com/sarchlab/cachesim/mem/cache/internal/tagging"
)

// Geometry describes the shape of a cache level.
type Geometry struct {
	Size     uint64
	LineSize uint64
	Kind     Kind

	// Ways is only used by set-associative levels.
	Ways int
}

// LineNum returns the number of lines of the level.
func (g Geometry) LineNum() uint64 {
	if g.LineSize == 0 {
		return 0
	}

	return g.Size / g.LineSize
}

// SetSize returns the number of lines in each set.
func (g Geometry) SetSize() int {
	switch g.Kind {
	case KindDirect:
		return 1
	case KindFull:
		return int(g.LineNum())
	default:
		return g.Ways
	}
}

// SetNum returns the number of sets, which is 1 for a fully-associative level.
func (g Geometry) SetNum() uint64 {
	switch g.Kind {
	case KindDirect:
		return g.LineNum()
	case KindFull:
		return 1
	default:
		if g.Ways <= 0 {
			return 0
		}

		return g.LineNum() / uint64(g.Ways)
	}
}

// Validate returns the reason the geometry cannot be simulated, or nil.
func (g Geometry) Validate() error {
	if g.Kind < KindDirect || g.Kind > KindSetAssociative {
		return fmt.Errorf("unknown cache kind %s", g.Kind)
	}

	if !tagging.IsPowerOfTwo(g.LineSize) {
		return fmt.Errorf("line size %d is not a power of two", g.LineSize)
	}

	lineNum := g.LineNum()

	if g.Kind != KindSetAssociative {
		if !tagging.IsPowerOfTwo(lineNum) {
			return fmt.Errorf("line count %d is not a power of two", lineNum)
		}

		return nil
	}

	if g.Ways <= 0 {
		return fmt.Errorf("way count %d is not positive", g.Ways)
	}

	if lineNum%uint64(g.Ways) != 0 {
		return fmt.Errorf("%d ways do not evenly divide %d lines",
			g.Ways, lineNum)
	}

	if !tagging.IsPowerOfTwo(g.SetNum()) {
		return fmt.Errorf("set count %d is not a power of two", g.SetNum())
	}

	return nil
}
