package cache

import "fmt"

// A ConfigurationError reports a level that cannot be built.
type ConfigurationError struct {
	Level  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Level == "" {
		return "invalid cache configuration: " + e.Reason
	}

	return fmt.Sprintf("invalid configuration of cache %q: %s",
		e.Level, e.Reason)
}
