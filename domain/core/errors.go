package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrColumnNotFound = fmt.Errorf("%w: column", ErrNotFound)
	ErrReportNotFound = fmt.Errorf("%w: report", ErrNotFound)

	// ErrInsufficientData marks results that cannot be computed at all, as opposed
	// to results that degrade to a neutral value.
	ErrInsufficientData = errors.New("insufficient data for analysis")
	// ErrCollinearFeatures means the regression design has no unique solution
	ErrCollinearFeatures = fmt.Errorf("%w: features are collinear", ErrInsufficientData)

	ErrInvalidHorizon = errors.New("forecast horizon must be at least 1")
	ErrUnknownMethod  = errors.New("unknown forecast method")

	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// InsufficientDataError reports how many usable points an operation needed and got.
type InsufficientDataError struct {
	Operation string
	Required  int
	Got       int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: %s (need %d, got %d)", ErrInsufficientData, e.Operation, e.Required, e.Got)
}

func (e *InsufficientDataError) Unwrap() error {
	return ErrInsufficientData
}

// NewInsufficientDataError builds an InsufficientDataError for an operation
func NewInsufficientDataError(operation string, required, got int) error {
	return &InsufficientDataError{Operation: operation, Required: required, Got: got}
}

func NewColumnNotFoundError(column string) error {
	return fmt.Errorf("%w %q", ErrColumnNotFound, column)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInsufficientData(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}

func IsInvalidRequest(err error) bool {
	return errors.Is(err, ErrInvalidHorizon) || errors.Is(err, ErrUnknownMethod) ||
		errors.Is(err, ErrUnsupportedFormat)
}
