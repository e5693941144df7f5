package errors

import (
	"errors"
	"fmt"
)

// Standard errors that can be compared directly
var (
	// ErrSecureRootNotFound indicates that no usable security enclave directory was resolved
	ErrSecureRootNotFound = errors.New("secure root not found")

	// ErrInvalidConfig indicates that a configuration value could not be interpreted
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// As is a convenience function that wraps errors.As
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Is is a convenience function that wraps errors.Is
func Is(err, target error) bool {
	return errors.Is(err, target)
}
