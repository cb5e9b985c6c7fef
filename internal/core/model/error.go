package model

import (
	"fmt"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("not found")

// MalformedDocumentError reports a source document that cannot be
// transformed at all.
type MalformedDocumentError struct {
	Reason string
	// Block is the index of the offending block, -1 if not applicable.
	Block int
	Err   error
}

func (e *MalformedDocumentError) Error() string {
	msg := "malformed document: " + e.Reason
	if e.Block >= 0 {
		msg += fmt.Sprintf(" (block %d)", e.Block)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedDocumentError) Unwrap() error {
	return e.Err
}

func NewMalformedDocumentError(block int, err error, format string, args ...any) *MalformedDocumentError {
	return &MalformedDocumentError{
		Reason: fmt.Sprintf(format, args...),
		Block:  block,
		Err:    err,
	}
}

// VariantConstraintError reports a metadata value outside a hard platform
// bound.
type VariantConstraintError struct {
	Platform PlatformID
	Field    string
	Bound    string
	Value    string
}

func (e *VariantConstraintError) Error() string {
	msg := fmt.Sprintf("platform '%s': field '%s' violates bound '%s'", e.Platform, e.Field, e.Bound)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got %s)", e.Value)
	}
	return msg
}

// PublishCollaboratorError wraps the failure of an external publish call.
type PublishCollaboratorError struct {
	Platform PlatformID
	Cause    error
}

func (e *PublishCollaboratorError) Error() string {
	return fmt.Sprintf("platform '%s': publish failed: %v", e.Platform, e.Cause)
}

func (e *PublishCollaboratorError) Unwrap() error {
	return e.Cause
}
