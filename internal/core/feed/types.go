package feed

import (
	"context"
	"errors"

	"Agora/internal/core/comments"
	"Agora/internal/core/posts"
)

const (
	// DefaultLimit is the page size used when a request does not set one
	DefaultLimit = 15

	// MaxLimit is the largest page size a request may ask for
	MaxLimit = 50
)

// Service defines feed assembly
type Service interface {
	// GetFeed returns visible posts newest first, each with its most liked comment
	GetFeed(ctx context.Context, req GetFeedRequest) (*FeedResponse, error)

	// GetUserFeeds returns one user's posts newest first, enriched the same way.
	// Hidden posts are included only when the viewer is the owner.
	GetUserFeeds(ctx context.Context, req GetUserFeedRequest) (*FeedResponse, error)
}

// GetFeedRequest represents input for the public feed
type GetFeedRequest struct {
	Cursor *string `json:"cursor,omitempty"`
	Limit  int     `json:"limit"`
}

// GetUserFeedRequest represents input for a single user's posts
type GetUserFeedRequest struct {
	Cursor   *string `json:"cursor,omitempty"`
	OwnerID  string  `json:"-"`
	ViewerID string  `json:"-"` // authenticated caller, empty for anonymous
	Limit    int     `json:"limit"`
}

// FeedResponse represents one page of a feed
type FeedResponse struct {
	Cursor *string     `json:"cursor,omitempty"`
	Feed   []*FeedPost `json:"feed"`
}

// FeedPost is a post enriched with its most liked comment.
// MostLikedComment is nil when the post has no comments or the lookup failed.
type FeedPost struct {
	*posts.Post
	MostLikedComment *comments.Comment `json:"mostLikedComment"`
}

// Errors
var (
	ErrInvalidCursor = errors.New("invalid cursor")
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
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
	return errors.As(err, &valErr) || errors.Is(err, ErrInvalidCursor)
}
