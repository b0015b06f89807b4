package scene

import (
	"errors"
	"fmt"

	"github.com/roach88/tetra/internal/ir"
)

// ErrorCode categorizes scene errors.
type ErrorCode string

const (
	// ErrCodeUnknownElementType indicates no factory is registered for a type.
	ErrCodeUnknownElementType ErrorCode = "UNKNOWN_ELEMENT_TYPE"

	// ErrCodeFactoryFailed indicates a factory returned an error.
	ErrCodeFactoryFailed ErrorCode = "FACTORY_FAILED"

	// ErrCodeDuplicateLabel indicates two nodes share a label.
	ErrCodeDuplicateLabel ErrorCode = "DUPLICATE_LABEL"

	// ErrCodeDuplicateFactory indicates a type was registered twice.
	ErrCodeDuplicateFactory ErrorCode = "DUPLICATE_FACTORY"

	// ErrCodeRegistrySealed indicates registration after Seal.
	ErrCodeRegistrySealed ErrorCode = "REGISTRY_SEALED"
)

// Error is a registry or build error.
type Error struct {
	Code    ErrorCode
	Label   ir.ElementID
	Type    ir.ElementType
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Label != "" {
		msg = fmt.Sprintf("%s (label=%s, type=%s)", msg, e.Label, e.Type)
	} else if e.Type != "" {
		msg = fmt.Sprintf("%s (type=%s)", msg, e.Type)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsUnknownElementType returns true if err is an unknown-type error.
// Uses errors.As to handle wrapped errors.
func IsUnknownElementType(err error) bool {
	return hasCode(err, ErrCodeUnknownElementType)
}

// IsDuplicateLabel returns true if err is a duplicate-label error.
func IsDuplicateLabel(err error) bool {
	return hasCode(err, ErrCodeDuplicateLabel)
}

// IsFactoryFailed returns true if err wraps a factory failure.
func IsFactoryFailed(err error) bool {
	return hasCode(err, ErrCodeFactoryFailed)
}

func hasCode(err error, code ErrorCode) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}
