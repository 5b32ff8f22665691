package likes

import (
	"errors"
	"fmt"
)

var (
	// ErrTargetNotFound indicates the post/comment being liked doesn't exist
	ErrTargetNotFound = errors.New("like target not found")

	// ErrInvalidTargetType indicates the target type is not "post" or "comment"
	ErrInvalidTargetType = errors.New("invalid target type: must be 'post' or 'comment'")

	// ErrLikeNotFound indicates the user has no like on the target
	ErrLikeNotFound = errors.New("like not found")

	// ErrLikeAlreadyExists indicates a like for this user and target already exists
	ErrLikeAlreadyExists = errors.New("like already exists")
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr) || errors.Is(err, ErrInvalidTargetType)
}
