package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is matched by every ConfigError.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrMalformedInput means the input is not a feature collection at all.
	// Individual bad records never produce it; they are dropped.
	ErrMalformedInput = errors.New("malformed feature collection")

	// ErrSourceUnavailable wraps any failure to fetch the source collection.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrDatasetNotFound is returned when a named dataset has no stored features.
	ErrDatasetNotFound = errors.New("dataset not found")
)

// ConfigError describes a configuration value rejected at construction time.
type ConfigError struct {
	Component string
	Field     string
	Reason    string
}

// NewConfigError creates a ConfigError
func NewConfigError(component, field, format string, args ...interface{}) *ConfigError {
	return &ConfigError{
		Component: component,
		Field:     field,
		Reason:    fmt.Sprintf(format, args...),
	}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: invalid %s: %s", e.Component, e.Field, e.Reason)
}

// Is reports whether target is ErrInvalidConfig
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// IsConfigError reports whether err is (or wraps) a configuration error
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}
