package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business domain error with a structured error code.
// Error codes have the form MC-<AREA>-<NNNN>.
type DomainError struct {
	Code    string // Error code (e.g., "MC-CAT-5001")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Usage errors (USAGE)
var (
	// ErrUsage indicates the command line was malformed.
	ErrUsage = NewDomainError("MC-USAGE-1001", "invalid usage")
)

// Storage errors (STOR)
var (
	// ErrOpenDatabase indicates the database home could not be opened.
	ErrOpenDatabase = NewDomainError("MC-STOR-5001", "cannot open database")

	// ErrCloseDatabase indicates the database home could not be closed cleanly.
	ErrCloseDatabase = NewDomainError("MC-STOR-5002", "cannot close database")
)

// Catalog errors (CAT)
var (
	// ErrCatalogScan indicates the catalog could not be enumerated.
	ErrCatalogScan = NewDomainError("MC-CAT-5001", "catalog scan failed")

	// ErrMirrorLookup indicates a table's catalog record could not be read.
	ErrMirrorLookup = NewDomainError("MC-CAT-5002", "mirror lookup failed")
)

// Comparison errors (CMP)
var (
	// ErrInvalidLocation indicates a table location outside the open database.
	ErrInvalidLocation = NewDomainError("MC-CMP-4001", "table location outside the open database")

	// ErrTableMissing indicates one side of a comparison does not exist.
	ErrTableMissing = NewDomainError("MC-CMP-4041", "table not found")

	// ErrCompareFailed indicates the comparison could not be completed.
	ErrCompareFailed = NewDomainError("MC-CMP-5001", "comparison failed")
)
