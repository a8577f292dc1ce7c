package core

import "strings"

// ConfigurationError reports an invalid FlowSpec. It is fatal: the engine
// refuses to start a run and no network activity takes place. Every other
// failure class is contained below the engine boundary.
type ConfigurationError struct {
	Problems []string
}

func (e *ConfigurationError) Error() string {
	return "invalid flow configuration: " + strings.Join(e.Problems, ", ")
}

// Has reports whether the error lists the given problem verbatim.
func (e *ConfigurationError) Has(problem string) bool {
	for _, p := range e.Problems {
		if p == problem {
			return true
		}
	}
	return false
}
