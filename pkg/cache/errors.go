package cache

import (
	"errors"
	"fmt"
)

// Common errors returned by cache backends and the manager.
var (
	// ErrUnavailable indicates the backend could not be reached or a command
	// failed in transit. Backends wrap transport failures with this sentinel;
	// the manager absorbs it into safe fallback results.
	ErrUnavailable = errors.New("cache backend unavailable")

	// ErrNotSerializable indicates a value could not be encoded for storage.
	ErrNotSerializable = errors.New("value not serializable")

	// ErrInvalidEntry indicates a stored entry could not be decoded.
	ErrInvalidEntry = errors.New("invalid cache entry")

	// ErrClosed indicates an operation was attempted on a closed backend.
	ErrClosed = errors.New("cache backend closed")
)

// ConfigError represents an invalid configuration value with the field that
// caused it. Configuration errors are fatal and surface at construction time.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("cache config: %s: %s", e.Field, e.Message)
}

// newConfigError builds a ConfigError for the given field.
func newConfigError(field, format string, args ...any) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}
