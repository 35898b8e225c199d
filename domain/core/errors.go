package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Configuration errors (fail fast, before any expensive computation)
	ErrInvalidConfiguration     = errors.New("invalid configuration")
	ErrInvalidNormalizationMode = fmt.Errorf("%w: normalization mode", ErrInvalidConfiguration)
	ErrUndefinedDesignMode      = fmt.Errorf("%w: design mode", ErrInvalidConfiguration)
	ErrInvalidProcrustesMode    = fmt.Errorf("%w: procrustes mode", ErrInvalidConfiguration)

	// Input validation errors
	ErrDimensionMismatch     = errors.New("dimension mismatch across inputs")
	ErrUnsupportedGroupCount = errors.New("unsupported group count for contrast design")
	ErrEmptyGroup            = errors.New("empty group")
	ErrInsufficientData      = errors.New("insufficient data for analysis")

	// Runtime errors
	ErrAborted             = errors.New("analysis aborted")
	ErrDecompositionFailed = errors.New("singular value decomposition failed")
)

// Error constructors with context
func NewConfigurationError(option string, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidConfiguration, option, reason)
}

func NewDimensionMismatchError(what string, want, got int) error {
	return fmt.Errorf("%w: %s has %d rows, expected %d", ErrDimensionMismatch, what, got, want)
}

func NewGroupCountError(got int) error {
	return fmt.Errorf("%w: need 2 or 3 groups, got %d", ErrUnsupportedGroupCount, got)
}

// Error checking helpers
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration)
}

func IsInputError(err error) bool {
	return errors.Is(err, ErrDimensionMismatch) ||
		errors.Is(err, ErrUnsupportedGroupCount) ||
		errors.Is(err, ErrEmptyGroup) ||
		errors.Is(err, ErrInsufficientData)
}
