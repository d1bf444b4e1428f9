// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrUnparseableDate = errors.New("no parseable period date")
	ErrMissingCode     = errors.New("missing security code")
	ErrEmptyDocument   = errors.New("empty document")
	ErrMissingRelease  = errors.New("missing release date")
	ErrAlreadyReleased = errors.New("security already released")
	ErrStoreClosed     = errors.New("store is closed")
	ErrConfigInvalid   = errors.New("invalid configuration")
)

// DecodeError reports that a raw document could not be decoded under any
// supported encoding. The whole document is skipped; the batch continues.
type DecodeError struct {
	Document  string
	Encodings []string
	Err       error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode error [%s] tried %v: %v", e.Document, e.Encodings, e.Err)
	}
	return fmt.Sprintf("decode error [%s] tried %v", e.Document, e.Encodings)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// NewDecodeError creates a new DecodeError.
func NewDecodeError(document string, encodings []string, err error) *DecodeError {
	return &DecodeError{
		Document:  document,
		Encodings: encodings,
		Err:       err,
	}
}

// RowError represents a per-row extraction fault. Rows failing extraction
// are skipped and counted, never escalated to document failures.
type RowError struct {
	Field string
	Value string
	Err   error
}

func (e *RowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("row error [%s] %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("row error [%s] %q", e.Field, e.Value)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// NewRowError creates a new RowError.
func NewRowError(field, value string, err error) *RowError {
	return &RowError{
		Field: field,
		Value: value,
		Err:   err,
	}
}

// ReconciliationError represents an invariant violation during a watch-list
// merge. The store must be left exactly as it was before the call.
type ReconciliationError struct {
	Code    string
	Message string
	Err     error
}

func (e *ReconciliationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("reconciliation error [%s]: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("reconciliation error [%s]: %s", e.Code, e.Message)
}

func (e *ReconciliationError) Unwrap() error {
	return e.Err
}

// NewReconciliationError creates a new ReconciliationError.
func NewReconciliationError(code, message string, err error) *ReconciliationError {
	return &ReconciliationError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
