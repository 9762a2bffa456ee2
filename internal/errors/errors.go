// Package errors provides error handling utilities.
package errors

import (
	"fmt"
)

// Type identifies the category of error
type Type string

const (
	// TypeInput indicates an input validation error
	TypeInput Type = "INPUT_ERROR"

	// TypeParameterNotFound indicates a formula parameter could not be resolved
	TypeParameterNotFound Type = "PARAMETER_NOT_FOUND"

	// TypeRateNotFound indicates no labor rate exists for a (code, business unit) pair
	TypeRateNotFound Type = "RATE_NOT_FOUND"

	// TypeNoEligibleMaterial indicates a material filter yielded an empty set
	TypeNoEligibleMaterial Type = "NO_ELIGIBLE_MATERIAL"

	// TypeRule indicates malformed or inconsistent rule data
	TypeRule Type = "RULE_ERROR"

	// TypeCatalog indicates invalid catalog data
	TypeCatalog Type = "CATALOG_ERROR"

	// TypeStorage indicates a persistence error
	TypeStorage Type = "STORAGE_ERROR"

	// TypeConfig indicates a configuration error
	TypeConfig Type = "CONFIG_ERROR"

	// TypeParsing indicates a catalog or project file parsing error
	TypeParsing Type = "PARSING_ERROR"

	// TypeInternal indicates an internal error
	TypeInternal Type = "INTERNAL_ERROR"

	// TypeNotFound indicates a referenced entity does not exist
	TypeNotFound Type = "NOT_FOUND"
)

// Error represents a domain error with context
type Error struct {
	Type    Type                   `json:"type"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error is of a specific type
func (e *Error) Is(t Type) bool {
	return e.Type == t
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new error
func New(errType Type, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new formatted error
func Newf(errType Type, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with context
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(errType Type, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// IsType checks if an error is of a specific type
func IsType(err error, t Type) bool {
	if e, ok := err.(*Error); ok {
		return e.Type == t
	}
	return false
}

// Input creates an input error
func Input(message string) *Error {
	return New(TypeInput, message)
}

// ParameterNotFound creates a parameter resolution error carrying the key
// and scope so the caller can fix the catalog data
func ParameterNotFound(key, productType, style, component string) *Error {
	return Newf(TypeParameterNotFound, "no formula parameter for key %q", key).
		WithContext("product_type", productType).
		WithContext("style", style).
		WithContext("component", component)
}

// RateNotFound creates a labor rate lookup error
func RateNotFound(laborCode, businessUnit string) *Error {
	return Newf(TypeRateNotFound, "no labor rate for code %q in business unit %q", laborCode, businessUnit)
}

// NoEligibleMaterial creates a material selection error for a component
func NoEligibleMaterial(component string) *Error {
	return Newf(TypeNoEligibleMaterial, "no eligible material for component %q", component)
}

// Rule creates a rule data error
func Rule(message string) *Error {
	return New(TypeRule, message)
}

// Catalog creates a catalog data error
func Catalog(message string) *Error {
	return New(TypeCatalog, message)
}

// Storage wraps a persistence error
func Storage(message string, cause error) *Error {
	return Wrap(TypeStorage, message, cause)
}

// Parsing wraps a file parsing error
func Parsing(message string, cause error) *Error {
	return Wrap(TypeParsing, message, cause)
}

// NotFound creates a not found error
func NotFound(entityType, identifier string) *Error {
	return Newf(TypeNotFound, "%s not found: %s", entityType, identifier)
}

// Internal creates an internal error
func Internal(message string, cause error) *Error {
	return Wrap(TypeInternal, message, cause)
}
