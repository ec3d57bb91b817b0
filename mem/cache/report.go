package cache

import (
	"encoding/json"
	"io"
)

// RunReport is the result of a run. The JSON field names are read by existing
// tooling and must not change.
type RunReport struct {
	Caches           []LevelReport `json:"caches"`
	MainMemoryAccess uint64        `json:"main_memory_access"`
}

// LevelReport holds the counters of one level.
type LevelReport struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
	Name   string `json:"name"`
}

// Report captures the current counters of the hierarchy.
func (h *Hierarchy) Report() RunReport {
	r := RunReport{
		Caches:           make([]LevelReport, 0, len(h.levels)),
		MainMemoryAccess: h.mainMemoryAccess,
	}

	for _, l := range h.levels {
		r.Caches = append(r.Caches, LevelReport{
			Hits:   l.Hits(),
			Misses: l.Misses(),
			Name:   l.Name(),
		})
	}

	return r
}

// WriteJSON writes the report as JSON indented by four spaces.
func (r RunReport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")

	return enc.Encode(r)
}
