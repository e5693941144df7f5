// Package errors provides a unified error handling system for the enclave resolver
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrorDomain represents the domain/component where an error originated
type ErrorDomain string

const (
	// ErrorDomainConfig represents errors from the application configuration layer
	ErrorDomainConfig ErrorDomain = "config"

	// ErrorDomainSecurity represents errors from enclave resolution and security options
	ErrorDomainSecurity ErrorDomain = "security"

	// ErrorDomainInternal represents internal application errors
	ErrorDomainInternal ErrorDomain = "internal"
)

// Error codes used by the security domain
const (
	// CodeConfigAbsent means neither a directory override nor a root directory is configured
	CodeConfigAbsent = "config_absent"

	// CodeDirectoryNotFound means a configured candidate does not exist or is not a directory
	CodeDirectoryNotFound = "directory_not_found"

	// CodeInvalidStrategy means the security strategy is absent or unrecognized while enabled
	CodeInvalidStrategy = "invalid_strategy"
)

// DomainError is the central error type for the application,
// providing structured information about the error context
type DomainError struct {
	// Domain is the component where the error originated
	Domain ErrorDomain

	// Code is a machine-readable identifier for the error type
	Code string

	// Message is a human-readable description of the error
	Message string

	// Cause is the underlying error that led to this error
	Cause error

	// Stack contains the stack trace at the point of error creation
	Stack string

	// Data contains additional contextual data about the error
	Data map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Domain, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Domain, e.Code, e.Message)
}

// Unwrap returns the underlying cause, implementing the unwrap interface
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is reports a match against another DomainError with the same domain and code.
// Empty fields on the target act as wildcards.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return (t.Domain == "" || t.Domain == e.Domain) &&
		(t.Code == "" || t.Code == e.Code)
}

// WithData adds contextual data to the error
func (e *DomainError) WithData(key string, value interface{}) *DomainError {
	if e.Data == nil {
		e.Data = make(map[string]interface{})
	}
	e.Data[key] = value
	return e
}

// NewDomainError creates a new DomainError with the given domain, code, and message
func NewDomainError(domain ErrorDomain, code, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Code:    code,
		Message: message,
		Stack:   captureStack(2), // Skip this function and caller
	}
}

// WrapWithDomain creates a new DomainError that wraps an existing error
func WrapWithDomain(err error, domain ErrorDomain, code, message string) *DomainError {
	if err == nil {
		return nil
	}
	return &DomainError{
		Domain:  domain,
		Code:    code,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2), // Skip this function and caller
	}
}

// NewDomainErrorf creates a new DomainError with formatted message
func NewDomainErrorf(domain ErrorDomain, code string, format string, args ...interface{}) *DomainError {
	return NewDomainError(domain, code, fmt.Sprintf(format, args...))
}

// IsDomainError checks if an error is a DomainError
func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

// GetDomain extracts the domain from an error if it's a DomainError
func GetDomain(err error) (ErrorDomain, bool) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Domain, true
	}
	return "", false
}

// GetErrorCode extracts the code from an error if it's a DomainError
func GetErrorCode(err error) (string, bool) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code, true
	}
	return "", false
}

// GetErrorData extracts data from an error if it's a DomainError
func GetErrorData(err error, key string) (interface{}, bool) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) && domainErr.Data != nil {
		val, ok := domainErr.Data[key]
		return val, ok
	}
	return nil, false
}

// captureStack captures the current goroutine's stack trace
func captureStack(skip int) string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(skip+1, pcs[:])
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs[:n])

	var sb strings.Builder
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&sb, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return sb.String()
}

// NewConfigError creates a new error in the config domain
func NewConfigError(code, message string) *DomainError {
	return NewDomainError(ErrorDomainConfig, code, message)
}

// NewConfigErrorf creates a new formatted error in the config domain
func NewConfigErrorf(code string, format string, args ...interface{}) *DomainError {
	return NewDomainErrorf(ErrorDomainConfig, code, format, args...)
}

// WrapConfigError wraps an error in the config domain
func WrapConfigError(err error, code, message string) *DomainError {
	return WrapWithDomain(err, ErrorDomainConfig, code, message)
}

// NewSecurityError creates a new error in the security domain
func NewSecurityError(code, message string) *DomainError {
	return NewDomainError(ErrorDomainSecurity, code, message)
}

// WrapSecurityError wraps an error in the security domain
func WrapSecurityError(err error, code, message string) *DomainError {
	return WrapWithDomain(err, ErrorDomainSecurity, code, message)
}

// WrapInternalError wraps an error in the internal domain
func WrapInternalError(err error, code, message string) *DomainError {
	return WrapWithDomain(err, ErrorDomainInternal, code, message)
}
