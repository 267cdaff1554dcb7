package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Path resolution errors
	ErrTemplateField = errors.New("template field missing from substitution record")

	// Map loading errors
	ErrMapNotFound   = errors.New("volumetric map not found")
	ErrMapUnreadable = errors.New("volumetric map unreadable")

	// Statistics errors
	ErrDegenerateInput = errors.New("no usable voxels for statistic")

	// Output errors
	ErrUnsupportedFormat = errors.New("unsupported output format")

	// Persistence errors
	ErrNotFound    = errors.New("resource not found")
	ErrRunNotFound = fmt.Errorf("%w: report run", ErrNotFound)
)

// Error constructors with context
func NewTemplateFieldError(field, template string) error {
	return fmt.Errorf("%w: {%s} in %q", ErrTemplateField, field, template)
}

func NewMapNotFoundError(path string) error {
	return fmt.Errorf("%w: %s", ErrMapNotFound, path)
}

func NewMapUnreadableError(path string, cause error) error {
	return fmt.Errorf("%w: %s: %v", ErrMapUnreadable, path, cause)
}

func NewUnsupportedFormatError(path string, accepted []string) error {
	return fmt.Errorf("%w: %s (accepted: %v)", ErrUnsupportedFormat, path, accepted)
}

// Error checking helpers
func IsMapNotFound(err error) bool {
	return errors.Is(err, ErrMapNotFound)
}

func IsDegenerateInput(err error) bool {
	return errors.Is(err, ErrDegenerateInput)
}

// IsRecoverable reports whether a per-unit failure may be absorbed as a
// NaN sentinel row instead of aborting the whole batch.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrMapNotFound) || errors.Is(err, ErrDegenerateInput)
}
