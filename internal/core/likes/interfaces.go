package likes

import "context"

// Service defines the business logic interface for likes
type Service interface {
	// ToggleLike likes the target if the user hasn't yet, otherwise removes the like.
	// Calling it twice in a row restores the original state.
	ToggleLike(ctx context.Context, req ToggleLikeRequest) (*ToggleResult, error)

	// CountLikes returns the number of likes on a target
	CountLikes(ctx context.Context, targetID string, targetType TargetType) (int, error)

	// GetLikers returns the like records on a target, newest first
	GetLikers(ctx context.Context, targetID string, targetType TargetType) ([]*Like, error)

	// HasLiked reports whether userID currently likes the target
	HasLiked(ctx context.Context, userID, targetID string, targetType TargetType) (bool, error)
}

// Repository defines the data access interface for likes
type Repository interface {
	// Toggle deletes the like matching (UserID, TargetID, TargetType) if one exists,
	// otherwise inserts like. It must run as one atomic unit and returns true when
	// the like now exists. Implementations also enforce uniqueness at storage level.
	Toggle(ctx context.Context, like *Like) (bool, error)

	// GetByUserAndTarget returns the user's like on a target or ErrLikeNotFound
	GetByUserAndTarget(ctx context.Context, userID string, target Target) (*Like, error)

	// CountByTarget counts likes on a single target
	CountByTarget(ctx context.Context, target Target) (int, error)

	// CountByTargets counts likes for many targets of one type in a single query
	// Targets without likes are absent from the result
	CountByTargets(ctx context.Context, targetType TargetType, targetIDs []string) (map[string]int, error)

	// ListByTarget returns all likes on a target ordered by created_at DESC
	ListByTarget(ctx context.Context, target Target) ([]*Like, error)
}

// TargetChecker reports whether a like target exists.
// Satisfied by an adapter over the post and comment repositories.
type TargetChecker interface {
	TargetExists(ctx context.Context, target Target) (bool, error)
}
