package core

import (
	"errors"
	"fmt"
	"strings"
)

// Error classes. Use errors.Is against these to branch on the kind of
// failure without caring about the concrete type.
var (
	ErrValidation         = errors.New("validation error")
	ErrTransport          = errors.New("transport error")
	ErrIntegrityAmbiguity = errors.New("integrity ambiguity")
)

// ValidationError reports bad input detected before any external call.
type ValidationError struct {
	Field string
	Err   error
}

func NewValidationError(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Err: err}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation: %v", e.Err)
	}
	return fmt.Sprintf("validation: %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// TransportError reports that a collaborator call failed. The operation was
// not applied.
type TransportError struct {
	Op         string
	StatusCode int // zero when no response was received
	Err        error
}

func NewTransportError(op string, err error) *TransportError {
	return &TransportError{Op: op, Err: err}
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// AsTransportError wraps err as a TransportError unless it already is one
// or is a ValidationError raised by the collaborator's own input checks.
func AsTransportError(op string, err error) error {
	if err == nil {
		return nil
	}
	var te *TransportError
	if errors.As(err, &te) {
		return err
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return err
	}
	return NewTransportError(op, err)
}

// IntegrityAmbiguityError reports that more than one budget record governs
// the same selection.
type IntegrityAmbiguityError struct {
	Selection Selection
	RecordIDs []int64
}

func (e *IntegrityAmbiguityError) Error() string {
	ids := make([]string, len(e.RecordIDs))
	for i, id := range e.RecordIDs {
		ids[i] = fmt.Sprint(id)
	}
	return fmt.Sprintf("multiple budget records (%s) match %s", strings.Join(ids, ", "), e.Selection)
}

func (e *IntegrityAmbiguityError) Is(target error) bool { return target == ErrIntegrityAmbiguity }
