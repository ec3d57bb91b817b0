package tagging

import (
	"fmt"
	"math/bits"
)

// AddressBits is the width of every simulated address.
const AddressBits = 64

// A Partition is the tag, index and offset fields of one address.
type Partition struct {
	Tag    uint64
	Index  uint64
	Offset uint64
}

// A Decoder splits addresses into partitions for a fixed cache geometry.
type Decoder struct {
	OffsetBits int
	IndexBits  int
	TagBits    int

	offsetMask uint64
	indexMask  uint64
}

// NewDecoder creates a decoder for lines of lineSize bytes spread over numSets
// sets. A fully-associative cache has a single set and therefore no index
// bits. Both values must be exact powers of two.
func NewDecoder(lineSize, numSets uint64) (Decoder, error) {
	offsetBits, ok := exactLog2(lineSize)
	if !ok {
		return Decoder{}, fmt.Errorf(
			"line size %d is not a power of two", lineSize)
	}

	indexBits, ok := exactLog2(numSets)
	if !ok {
		return Decoder{}, fmt.Errorf(
			"number of sets %d is not a power of two", numSets)
	}

	d := Decoder{
		OffsetBits: offsetBits,
		IndexBits:  indexBits,
		TagBits:    AddressBits - indexBits - offsetBits,
		offsetMask: lowMask(offsetBits),
		indexMask:  lowMask(indexBits),
	}

	return d, nil
}

// Decode splits a 64-bit address.
func (d Decoder) Decode(addr uint64) Partition {
	return Partition{
		Tag:    addr >> (d.OffsetBits + d.IndexBits),
		Index:  (addr >> d.OffsetBits) & d.indexMask,
		Offset: addr & d.offsetMask,
	}
}

// IsPowerOfTwo reports whether x is a power of two (> 0).
func IsPowerOfTwo(x uint64) bool {
	return x != 0 && x&(x-1) == 0
}

func exactLog2(x uint64) (int, bool) {
	if !IsPowerOfTwo(x) {
		return 0, false
	}

	return bits.TrailingZeros64(x), true
}

func lowMask(n int) uint64 {
	if n >= AddressBits {
		return ^uint64(0)
	}

	return uint64(1)<<n - 1
}
