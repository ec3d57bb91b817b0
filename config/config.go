// Package config loads the description of a cache hierarchy.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/sim/hooking"
)

// LevelConfig describes one cache level. Levels are listed L1 first.
type LevelConfig struct {
	Name              string `json:"name"`
	Size              uint64 `json:"size"`
	LineSize          uint64 `json:"line_size"`
	Kind              string `json:"kind"`
	ReplacementPolicy string `json:"replacement_policy,omitempty"`
}

// Config is the content of a configuration file.
type Config struct {
	Caches []LevelConfig `json:"caches"`
}

// ErrNoCaches is returned for a configuration without a caches array.
var ErrNoCaches = errors.New("no caches array found in the configuration")

// Load reads a configuration file.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening configuration: %w", err)
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("reading configuration %s: %w", path, err)
	}

	return c, nil
}

// Parse decodes a configuration.
func Parse(r io.Reader) (*Config, error) {
	c := &Config{}

	err := json.NewDecoder(r).Decode(c)
	if err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}

	if len(c.Caches) == 0 {
		return nil, ErrNoCaches
	}

	return c, nil
}

// Build creates the level described by lc. The hooks are attached to the
// level.
func (lc LevelConfig) Build(hooks ...hooking.Hook) (*cache.Level, error) {
	kind, ways, err := cache.ParseKind(lc.Kind)
	if err != nil {
		return nil, &cache.ConfigurationError{
			Level:  lc.Name,
			Reason: err.Error(),
		}
	}

	b := cache.MakeBuilder().
		WithSize(lc.Size).
		WithLineSize(lc.LineSize).
		WithKind(kind, ways).
		WithReplacementPolicy(cache.ParseReplacementPolicy(lc.ReplacementPolicy))

	for _, hook := range hooks {
		b = b.WithHook(hook)
	}

	return b.Build(lc.Name)
}

// BuildHierarchy creates a hierarchy with all the levels of c. The hooks are
// attached to every level and to the hierarchy itself.
func (c *Config) BuildHierarchy(hooks ...hooking.Hook) (*cache.Hierarchy, error) {
	levels := make([]*cache.Level, 0, len(c.Caches))

	for _, lc := range c.Caches {
		l, err := lc.Build(hooks...)
		if err != nil {
			return nil, err
		}

		levels = append(levels, l)
	}

	h := cache.NewHierarchy(levels...)
	for _, hook := range hooks {
		h.AcceptHook(hook)
	}

	return h, nil
}
