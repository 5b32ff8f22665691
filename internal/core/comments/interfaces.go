package comments

import "context"

// Service defines the business logic interface for comments
type Service interface {
	// AddComment creates a top-level comment or, when ParentCommentID is set, a reply
	AddComment(ctx context.Context, req AddCommentRequest) (*Comment, error)

	// LikeComment increments the comment's like counter by one.
	// This is a plain counter: repeated calls from the same user keep counting.
	LikeComment(ctx context.Context, commentID string) (*Comment, error)

	// GetMostLikedComment returns the post's comment with the most likes.
	// Returns nil without error when the post has no comments.
	GetMostLikedComment(ctx context.Context, postID string) (*Comment, error)

	// TopCommentsForPosts ranks comments for many posts at once.
	// Posts without comments are absent from the result.
	TopCommentsForPosts(ctx context.Context, postIDs []string) (map[string]*Comment, error)

	// GetThread returns all comments of a post arranged as a reply tree
	GetThread(ctx context.Context, postID string) ([]*ThreadNode, error)

	// CountByPosts returns the number of comments per post
	CountByPosts(ctx context.Context, postIDs []string) (map[string]int, error)

	// CommentExists reports whether a comment with this id exists
	CommentExists(ctx context.Context, commentID string) (bool, error)

	// GetComment returns a single comment or ErrCommentNotFound
	GetComment(ctx context.Context, commentID string) (*Comment, error)
}

// Repository defines the data access interface for comments
type Repository interface {
	// Create inserts a new comment
	Create(ctx context.Context, comment *Comment) error

	// GetByID retrieves a comment by id, ErrCommentNotFound if absent
	GetByID(ctx context.Context, id string) (*Comment, error)

	// IncrementLikes atomically adds one to the like counter and returns the updated comment
	IncrementLikes(ctx context.Context, id string) (*Comment, error)

	// ListByPost returns the post's comments ordered by created_at ASC, id ASC
	ListByPost(ctx context.Context, postID string) ([]*Comment, error)

	// GetTopByPost returns the comment with the highest like counter on a post
	// (ties: earliest created_at, then lowest id). ErrCommentNotFound if the post has none.
	GetTopByPost(ctx context.Context, postID string) (*Comment, error)

	// GetTopByPosts does the same ranking for many posts in one query
	GetTopByPosts(ctx context.Context, postIDs []string) (map[string]*Comment, error)

	// CountByPosts counts comments per post in one query
	CountByPosts(ctx context.Context, postIDs []string) (map[string]int, error)
}

// PostChecker reports whether a post exists. Satisfied by posts.Repository adapters.
type PostChecker interface {
	PostExists(ctx context.Context, postID string) (bool, error)
}
