package config

import (
	"errors"
	"fmt"
)

// ConfigurationError is a fatal configuration-phase failure. Once one is
// returned the configuration session must be discarded.
type ConfigurationError struct {
	// Op names the operation that failed, e.g. "classpath.freeze".
	Op  string
	Err error
}

// Error implements the error interface for ConfigurationError.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Errorf builds a ConfigurationError for op. The %w verb is honored.
func Errorf(op, format string, args ...any) error {
	return &ConfigurationError{Op: op, Err: fmt.Errorf(format, args...)}
}

// Wrap marks err as a ConfigurationError raised by op. A nil err stays nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &ConfigurationError{Op: op, Err: err}
}

// IsConfigurationError reports whether err, or anything it wraps, is a
// ConfigurationError.
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}
