package likes

import (
	"context"
)

// TargetExistsFunc is a function type that checks if a target exists
type TargetExistsFunc func(ctx context.Context, id string) (bool, error)

// CompositeTargetValidator validates like targets by dispatching on the target type
type CompositeTargetValidator struct {
	postExists    TargetExistsFunc
	commentExists TargetExistsFunc
}

// NewCompositeTargetValidator creates a validator that checks both posts and comments
// Pass nil for either function to skip validation for that type
func NewCompositeTargetValidator(postExists, commentExists TargetExistsFunc) *CompositeTargetValidator {
	return &CompositeTargetValidator{
		postExists:    postExists,
		commentExists: commentExists,
	}
}

// TargetExists checks if the post or comment referenced by target exists
func (v *CompositeTargetValidator) TargetExists(ctx context.Context, target Target) (bool, error) {
	switch target.Type {
	case TargetPost:
		if v.postExists != nil {
			return v.postExists(ctx, target.ID)
		}
		return true, nil
	case TargetComment:
		if v.commentExists != nil {
			return v.commentExists(ctx, target.ID)
		}
		return true, nil
	default:
		return false, ErrInvalidTargetType
	}
}
