// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// ErrNonPositiveSemiDefinite reports that a target correlation matrix has a
// negative eigenvalue and cannot be sampled from.
var ErrNonPositiveSemiDefinite = errors.New("correlation matrix is not positive semi-definite")

// ConfigError is a configuration problem detected before any sampling:
// malformed instruments, invalid targets, bad weights, or an invalid
// correlation structure.
type ConfigError struct {
	// Field locates the offending input (e.g. "instruments[0].items[3]").
	Field string

	// Reason describes what is wrong.
	Reason string

	// Err is an optional underlying cause.
	Err error
}

func (e *ConfigError) Error() string {
	msg := "invalid configuration"
	if e.Field != "" {
		msg += " " + e.Field
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Configf builds a ConfigError with a formatted reason.
func Configf(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsConfigError reports whether err is or wraps a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
