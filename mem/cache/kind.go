package cache

import (
	"fmt"
	"strings"
)

// Kind is the organization of a cache level.
type Kind int

// The supported organizations. Set-associative caches carry their way count
// in the Geometry.
const (
	KindDirect Kind = iota
	KindFull
	KindSetAssociative
)

func (k Kind) String() string {
	switch k {
	case KindDirect:
		return "direct"
	case KindFull:
		return "full"
	case KindSetAssociative:
		return "set-associative"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind resolves the configuration name of an organization. The names are
// "direct", "full", "2way", "4way" and "8way".
func ParseKind(name string) (kind Kind, ways int, err error) {
	switch strings.ToLower(name) {
	case "direct":
		return KindDirect, 1, nil
	case "full":
		return KindFull, 0, nil
	case "2way":
		return KindSetAssociative, 2, nil
	case "4way":
		return KindSetAssociative, 4, nil
	case "8way":
		return KindSetAssociative, 8, nil
	default:
		return 0, 0, fmt.Errorf("unknown cache kind %q", name)
	}
}

// ReplacementPolicy selects the victim finder of a level.
type ReplacementPolicy int

// The supported replacement policies. Direct-mapped levels use PolicyNone.
const (
	PolicyNone ReplacementPolicy = iota
	PolicyRoundRobin
	PolicyLRU
	PolicyLFU
)

func (p ReplacementPolicy) String() string {
	switch p {
	case PolicyNone:
		return "none"
	case PolicyRoundRobin:
		return "rr"
	case PolicyLRU:
		return "lru"
	case PolicyLFU:
		return "lfu"
	default:
		return fmt.Sprintf("ReplacementPolicy(%d)", int(p))
	}
}

// ParseReplacementPolicy resolves "rr", "lru" or "lfu". Anything else,
// including the empty string, falls back to round-robin.
func ParseReplacementPolicy(name string) ReplacementPolicy {
	switch strings.ToLower(name) {
	case "lru":
		return PolicyLRU
	case "lfu":
		return PolicyLFU
	default:
		return PolicyRoundRobin
	}
}
