package comments

import (
	"errors"
	"fmt"
)

var (
	// ErrCommentNotFound indicates the requested comment doesn't exist
	ErrCommentNotFound = errors.New("comment not found")

	// ErrPostNotFound indicates the post being commented on doesn't exist
	ErrPostNotFound = errors.New("post not found")

	// ErrParentNotFound indicates the parent comment doesn't exist
	ErrParentNotFound = errors.New("parent comment not found")

	// ErrInvalidParent indicates the parent comment belongs to a different post
	ErrInvalidParent = errors.New("parent comment belongs to a different post")

	// ErrContentEmpty indicates comment text is empty
	ErrContentEmpty = errors.New("comment text is required")

	// ErrContentTooLong indicates comment text exceeds MaxCommentLength graphemes
	ErrContentTooLong = errors.New("comment text is too long")
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error (%s): %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsNotFound checks if an error is a "not found" error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCommentNotFound) ||
		errors.Is(err, ErrPostNotFound) ||
		errors.Is(err, ErrParentNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr) ||
		errors.Is(err, ErrInvalidParent) ||
		errors.Is(err, ErrContentEmpty) ||
		errors.Is(err, ErrContentTooLong)
}
