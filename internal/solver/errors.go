package solver

import "fmt"

// ConfigError reports an out-of-range hyperparameter. It is returned before
// the first generation runs; a run that merely fails to reach fitness 0 is
// not an error.
type ConfigError struct {
	// Field is the offending configuration field, in its wire spelling.
	Field string
	// Message describes the accepted range.
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("solver config: %s %s", e.Field, e.Message)
}
