package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrVariantNotFound = fmt.Errorf("%w: variant", ErrNotFound)
	ErrChartNotFound   = fmt.Errorf("%w: chart", ErrNotFound)

	// Encoding and assembly errors
	ErrUnknownLabel   = errors.New("unknown categorical label")
	ErrInvalidNumber  = errors.New("invalid numeric input")
	ErrOutOfRange     = errors.New("numeric input out of range")
	ErrDuplicateLabel = errors.New("duplicate label in code table")
	ErrDuplicateCode  = errors.New("duplicate code in code table")
	ErrInvalidSchema  = errors.New("invalid feature schema")

	// Model errors
	ErrShapeMismatch   = errors.New("feature vector shape mismatch")
	ErrSchemaMismatch  = errors.New("feature schema does not match model inputs")
	ErrInvalidArtifact = errors.New("invalid model artifact")
	ErrModelClosed     = errors.New("model is closed")

	// Dataset errors
	ErrMissingColumn    = errors.New("dataset column missing")
	ErrInsufficientData = errors.New("insufficient data for chart")
)

// NewNotFoundError wraps ErrNotFound with resource context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

// NewUnknownLabelError reports a label absent from an attribute's code table
func NewUnknownLabelError(attribute, label string) error {
	return fmt.Errorf("%w %q for %s", ErrUnknownLabel, label, attribute)
}

// NewShapeMismatchError reports a row whose width differs from the model input width
func NewShapeMismatchError(row, got, want int) error {
	return fmt.Errorf("%w: row %d has %d features, model expects %d", ErrShapeMismatch, row, got, want)
}

// NewMissingColumnError reports a dataset column required by a chart
func NewMissingColumnError(chart, column string) error {
	return fmt.Errorf("%w: %s requires column %q", ErrMissingColumn, chart, column)
}

// IsNotFoundError reports whether err is a not-found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInputError reports whether err was caused by user-supplied form values
func IsInputError(err error) bool {
	return errors.Is(err, ErrUnknownLabel) ||
		errors.Is(err, ErrInvalidNumber) ||
		errors.Is(err, ErrOutOfRange)
}

// IsModelError reports whether err came from the model artifact or its contract
func IsModelError(err error) bool {
	return errors.Is(err, ErrShapeMismatch) ||
		errors.Is(err, ErrSchemaMismatch) ||
		errors.Is(err, ErrInvalidArtifact) ||
		errors.Is(err, ErrModelClosed)
}
