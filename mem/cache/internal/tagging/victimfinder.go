package tagging

// A VictimFinder decides which block should be evicted when a set is full.
type VictimFinder interface {
	// Visit records a hit on, or a fill of, a block.
	Visit(setID, wayID int)

	// FindVictim returns the way to evict from a full set.
	FindVictim(setID int) (wayID int)

	// Reset forgets all the access history.
	Reset()
}

// RoundRobinVictimFinder rotates a pointer over the ways of each set. The
// pointer only moves when a victim is taken.
type RoundRobinVictimFinder struct {
	numWays  int
	pointers []int
}

// NewRoundRobinVictimFinder returns a newly constructed round-robin evictor.
func NewRoundRobinVictimFinder(numSets, numWays int) *RoundRobinVictimFinder {
	return &RoundRobinVictimFinder{
		numWays:  numWays,
		pointers: make([]int, numSets),
	}
}

// Visit does nothing since round-robin ignores the access history.
func (e *RoundRobinVictimFinder) Visit(_, _ int) {}

// FindVictim returns the current pointer of the set and advances it.
func (e *RoundRobinVictimFinder) FindVictim(setID int) int {
	wayID := e.pointers[setID]
	e.pointers[setID] = (wayID + 1) % e.numWays

	return wayID
}

// Reset moves all the pointers back to way 0.
func (e *RoundRobinVictimFinder) Reset() {
	clear(e.pointers)
}

// LRUVictimFinder evicts the least recently used block of a set.
type LRUVictimFinder struct {
	numWays int
	stamps  []uint64
	clock   uint64
}

// NewLRUVictimFinder returns a newly constructed lru evictor.
func NewLRUVictimFinder(numSets, numWays int) *LRUVictimFinder {
	return &LRUVictimFinder{
		numWays: numWays,
		stamps:  make([]uint64, numSets*numWays),
	}
}

// Visit stamps the block with the level-wide access clock.
func (e *LRUVictimFinder) Visit(setID, wayID int) {
	e.stamps[setID*e.numWays+wayID] = e.clock
	e.clock++
}

// FindVictim returns the block with the oldest stamp. Ties go to the lowest
// way.
func (e *LRUVictimFinder) FindVictim(setID int) int {
	return minWay(e.stamps[setID*e.numWays : (setID+1)*e.numWays])
}

// Reset clears the stamps and the clock.
func (e *LRUVictimFinder) Reset() {
	clear(e.stamps)
	e.clock = 0
}

// LFUVictimFinder evicts the least frequently used block of a set. Fills count
// as uses.
type LFUVictimFinder struct {
	numWays int
	counts  []uint64
}

// NewLFUVictimFinder returns a newly constructed lfu evictor.
func NewLFUVictimFinder(numSets, numWays int) *LFUVictimFinder {
	return &LFUVictimFinder{
		numWays: numWays,
		counts:  make([]uint64, numSets*numWays),
	}
}

// Visit increments the use count of the block.
func (e *LFUVictimFinder) Visit(setID, wayID int) {
	e.counts[setID*e.numWays+wayID]++
}

// FindVictim returns the block with the lowest use count. Ties go to the
// lowest way.
func (e *LFUVictimFinder) FindVictim(setID int) int {
	return minWay(e.counts[setID*e.numWays : (setID+1)*e.numWays])
}

// Reset clears the use counts.
func (e *LFUVictimFinder) Reset() {
	clear(e.counts)
}

func minWay(values []uint64) int {
	victim := 0
	for i, v := range values {
		if v < values[victim] {
			victim = i
		}
	}

	return victim
}
