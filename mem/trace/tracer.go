package trace

import (
	"fmt"
	"log"

	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/sim/hooking"
)

const (
	accessTable       = "cache_accesses"
	mainMemoryTable   = "main_memory_accesses"
	hexAddressPattern = "0x%016x"
)

// accessEntry represents a cache lookup in the database.
type accessEntry struct {
	RunID      string
	Seq        uint64
	Cache      string
	Address    string
	Tag        string
	SetID      int
	WayID      int
	Outcome    string
	Evicted    bool
	EvictedTag string
}

// mainMemoryEntry represents an address that missed every level.
type mainMemoryEntry struct {
	RunID   string
	Seq     uint64
	Address string
}

// A logTracer is a hook that prints every cache access.
type logTracer struct {
	logger *log.Logger
}

// NewLogTracer creates a hook that writes one line per cache access and per
// main-memory access to logger. Attach it to levels and to the hierarchy.
func NewLogTracer(logger *log.Logger) hooking.Hook {
	return &logTracer{logger: logger}
}

// Func prints the access.
func (t *logTracer) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case cache.HookPosAccess:
		d := ctx.Item.(cache.AccessDetail)
		t.logger.Printf("%s, 0x%016x, %s, set %d, way %d\n",
			ctx.Domain.Name(), d.Address, d.Outcome, d.SetID, d.WayID)
	case cache.HookPosMainMemoryAccess:
		t.logger.Printf("memory, 0x%016x\n", ctx.Item.(uint64))
	}
}

// A dbTracer is a hook that records every access into a DataRecorder.
type dbTracer struct {
	runID        string
	seq          uint64
	dataRecorder datarecording.DataRecorder
}

// NewDBTracer creates a hook that records cache accesses and main-memory
// accesses into the cache_accesses and main_memory_accesses tables. Records
// share one sequence number so the trace order can be rebuilt.
func NewDBTracer(
	dataRecorder datarecording.DataRecorder,
	runID string,
) hooking.Hook {
	t := &dbTracer{
		runID:        runID,
		dataRecorder: dataRecorder,
	}

	t.dataRecorder.CreateTable(accessTable, accessEntry{})
	t.dataRecorder.CreateTable(mainMemoryTable, mainMemoryEntry{})

	return t
}

// Func records the access.
func (t *dbTracer) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case cache.HookPosAccess:
		t.recordAccess(ctx.Domain.Name(), ctx.Item.(cache.AccessDetail))
	case cache.HookPosMainMemoryAccess:
		t.recordMainMemoryAccess(ctx.Item.(uint64))
	}
}

func (t *dbTracer) recordAccess(name string, d cache.AccessDetail) {
	t.seq++

	entry := accessEntry{
		RunID:   t.runID,
		Seq:     t.seq,
		Cache:   name,
		Address: fmt.Sprintf(hexAddressPattern, d.Address),
		Tag:     fmt.Sprintf("0x%x", d.Tag),
		SetID:   d.SetID,
		WayID:   d.WayID,
		Outcome: d.Outcome.String(),
		Evicted: d.Evicted,
	}

	if d.Evicted {
		entry.EvictedTag = fmt.Sprintf("0x%x", d.EvictedTag)
	}

	t.dataRecorder.InsertData(accessTable, entry)
}

func (t *dbTracer) recordMainMemoryAccess(addr uint64) {
	t.seq++

	t.dataRecorder.InsertData(mainMemoryTable, mainMemoryEntry{
		RunID:   t.runID,
		Seq:     t.seq,
		Address: fmt.Sprintf(hexAddressPattern, addr),
	})
}
