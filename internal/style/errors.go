package style

import (
	"errors"
	"fmt"

	"github.com/roach88/tetra/internal/ir"
)

// ErrorCode categorizes resolver errors.
type ErrorCode string

const (
	// ErrCodeMissingPositionRule indicates a node has no rule for the
	// (orientation, style) the viewport resolved to.
	ErrCodeMissingPositionRule ErrorCode = "MISSING_POSITION_RULE"

	// ErrCodeInvalidDivisor indicates a rule whose divisor is not positive.
	ErrCodeInvalidDivisor ErrorCode = "INVALID_DIVISOR"

	// ErrCodeInvalidViewport indicates a zero or negative viewport dimension.
	ErrCodeInvalidViewport ErrorCode = "INVALID_VIEWPORT"
)

// Error is a configuration error detected while resolving a placement.
//
// The resolver never substitutes a default: a missing or unusable rule is
// always reported so it surfaces during development.
type Error struct {
	Code        ErrorCode
	Label       ir.ElementID
	Orientation ir.Orientation
	Style       ir.Style
	Message     string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("%s: %s (label=%s, %s/%s)", e.Code, e.Message, e.Label, e.Orientation, e.Style)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsMissingPositionRule returns true if err is a missing-rule error.
// Uses errors.As to handle wrapped errors.
func IsMissingPositionRule(err error) bool {
	return hasCode(err, ErrCodeMissingPositionRule)
}

// IsInvalidDivisor returns true if err is an invalid-divisor error.
func IsInvalidDivisor(err error) bool {
	return hasCode(err, ErrCodeInvalidDivisor)
}

// IsInvalidViewport returns true if err is an invalid-viewport error.
func IsInvalidViewport(err error) bool {
	return hasCode(err, ErrCodeInvalidViewport)
}

func hasCode(err error, code ErrorCode) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

func newMissingRule(label ir.ElementID, c Classification) *Error {
	return &Error{
		Code:        ErrCodeMissingPositionRule,
		Label:       label,
		Orientation: c.Orientation,
		Style:       c.Style,
		Message:     "no position rule for resolved style",
	}
}

func newInvalidDivisor(label ir.ElementID, c Classification, divisor float64) *Error {
	return &Error{
		Code:        ErrCodeInvalidDivisor,
		Label:       label,
		Orientation: c.Orientation,
		Style:       c.Style,
		Message:     fmt.Sprintf("divisor must be positive, got %g", divisor),
	}
}

func newInvalidViewport(vp ir.Size) *Error {
	return &Error{
		Code:    ErrCodeInvalidViewport,
		Message: fmt.Sprintf("viewport must have positive dimensions, got %gx%g", vp.Width, vp.Height),
	}
}
