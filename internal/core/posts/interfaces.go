package posts

import (
	"context"
	"time"
)

// Service defines the business logic interface for posts
type Service interface {
	// CreatePost creates a visible post owned by userID
	CreatePost(ctx context.Context, userID string, req CreatePostRequest) (*Post, error)

	// FindPostByID returns a post by id or ErrNotFound
	FindPostByID(ctx context.Context, postID string) (*Post, error)

	// EditPost applies a partial update to a post owned by userID
	EditPost(ctx context.Context, userID, postID string, req EditPostRequest) (*Post, error)

	// HidePost hides a post owned by userID. Hiding a hidden post succeeds.
	HidePost(ctx context.Context, userID, postID string) (*Post, error)

	// DeletePost removes a post owned by userID together with its comments and likes
	DeletePost(ctx context.Context, userID, postID string) error

	// AuthorizeOwner checks that postID exists and belongs to userID.
	// Returns ErrNotFound or ErrForbidden.
	AuthorizeOwner(ctx context.Context, userID, postID string) error

	// ListPosts returns posts matching q newest first, with counts filled in
	ListPosts(ctx context.Context, q ListQuery) ([]*Post, error)

	// PostExists reports whether a post with this id exists
	PostExists(ctx context.Context, postID string) (bool, error)

	// CanView reports whether viewerID may see the post and anything hanging
	// off it. Hidden posts are visible to their owner only. ErrNotFound if
	// the post is missing.
	CanView(ctx context.Context, postID, viewerID string) (bool, error)
}

// Repository defines the data access interface for posts
type Repository interface {
	// Create inserts a new post
	Create(ctx context.Context, post *Post) error

	// GetByID retrieves a post by id, ErrNotFound if absent
	GetByID(ctx context.Context, id string) (*Post, error)

	// UpdateContentOwned sets text and images on a post matching id and owner
	// in one statement and returns the stored row. Empty text or images keep
	// their stored values. Hidden is never touched. ErrNotFound if none matches.
	UpdateContentOwned(ctx context.Context, id, userID, text string, imageURLs []string, updatedAt time.Time) (*Post, error)

	// SetHiddenOwned marks a post matching id and owner hidden and returns the
	// stored row. updated_at only moves when the post was visible.
	// ErrNotFound if none matches.
	SetHiddenOwned(ctx context.Context, id, userID string, updatedAt time.Time) (*Post, error)

	// DeleteOwned hard-deletes a post matching id and owner, along with its
	// comments and every like on the post or those comments
	DeleteOwned(ctx context.Context, id, userID string) error

	// List returns posts matching q ordered by created_at DESC, id DESC
	List(ctx context.Context, q ListQuery) ([]*Post, error)
}

// CountFunc returns a count per post id; ids without entries count as zero
type CountFunc func(ctx context.Context, postIDs []string) (map[string]int, error)

// Counters supplies the aggregate counts shown on posts.
// Either field may be nil to leave that count at zero.
type Counters struct {
	Likes    CountFunc
	Comments CountFunc
}
