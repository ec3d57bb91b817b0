package tagging

// A Block of a cache is the information that is associated with a cache line.
type Block struct {
	Tag     uint64
	IsValid bool
	SetID   int
	WayID   int
}

// TagArray is the line store of one cache level.
type TagArray interface {
	// Probe scans a set in way order and stops at the first block holding
	// tag (hit) or at the first invalid block (free).
	Probe(setID int, tag uint64) (block Block, hit bool, free bool)
	Block(setID, wayID int) Block
	Update(block Block)
	Blocks(setID int) []Block
	NumSets() int
	NumWays() int
	Reset()
}

// NewTagArray allocates the blocks of numSets sets with numWays ways each.
func NewTagArray(numSets, numWays int) TagArray {
	t := &tagArrayImpl{
		numSets: numSets,
		numWays: numWays,
		blocks:  make([]Block, numSets*numWays),
	}

	t.Reset()

	return t
}

type tagArrayImpl struct {
	numSets int
	numWays int
	blocks  []Block
}

func (t *tagArrayImpl) NumSets() int {
	return t.numSets
}

func (t *tagArrayImpl) NumWays() int {
	return t.numWays
}

func (t *tagArrayImpl) set(setID int) []Block {
	start := setID * t.numWays
	return t.blocks[start : start+t.numWays]
}

func (t *tagArrayImpl) Probe(setID int, tag uint64) (Block, bool, bool) {
	for _, block := range t.set(setID) {
		if !block.IsValid {
			return block, false, true
		}

		if block.Tag == tag {
			return block, true, false
		}
	}

	return Block{}, false, false
}

func (t *tagArrayImpl) Block(setID, wayID int) Block {
	return t.blocks[setID*t.numWays+wayID]
}

// Update writes the block back to the position given by its set and way.
func (t *tagArrayImpl) Update(block Block) {
	t.blocks[block.SetID*t.numWays+block.WayID] = block
}

// Blocks returns a copy of the blocks of a set.
func (t *tagArrayImpl) Blocks(setID int) []Block {
	blocks := make([]Block, t.numWays)
	copy(blocks, t.set(setID))

	return blocks
}

// Reset will mark all the blocks invalid.
func (t *tagArrayImpl) Reset() {
	for i := range t.numSets {
		for j := range t.numWays {
			t.blocks[i*t.numWays+j] = Block{SetID: i, WayID: j}
		}
	}
}
