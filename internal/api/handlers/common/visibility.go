package common

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"Agora/internal/api/handlers"
	"Agora/internal/api/middleware"
	"Agora/internal/core/comments"
	"Agora/internal/core/likes"
	"Agora/internal/core/posts"
)

// PostViewer is the part of posts.Service the guard needs
type PostViewer interface {
	CanView(ctx context.Context, postID, viewerID string) (bool, error)
}

// CommentLookup is the part of comments.Service the guard needs
type CommentLookup interface {
	GetComment(ctx context.Context, commentID string) (*comments.Comment, error)
}

// VisibilityGuard keeps the comments and likes of a hidden post away from
// everyone but the post's owner.
//
// Missing posts and comments pass the guard, so the wrapped handler still
// reports them with its own error type.
type VisibilityGuard struct {
	posts    PostViewer
	comments CommentLookup
}

// NewVisibilityGuard creates a guard over the post and comment services
func NewVisibilityGuard(posts PostViewer, comments CommentLookup) *VisibilityGuard {
	return &VisibilityGuard{
		posts:    posts,
		comments: comments,
	}
}

// PostVisible reports whether viewerID may see postID and what hangs off it
func (g *VisibilityGuard) PostVisible(ctx context.Context, postID, viewerID string) (bool, error) {
	ok, err := g.posts.CanView(ctx, postID, viewerID)
	if posts.IsNotFound(err) {
		return true, nil
	}
	return ok, err
}

// CommentVisible reports whether viewerID may see the post commentID belongs to
func (g *VisibilityGuard) CommentVisible(ctx context.Context, commentID, viewerID string) (bool, error) {
	comment, err := g.comments.GetComment(ctx, commentID)
	if err != nil {
		if comments.IsNotFound(err) || comments.IsValidationError(err) {
			return true, nil
		}
		return false, err
	}
	return g.PostVisible(ctx, comment.PostID, viewerID)
}

// TargetVisible dispatches on the like target type
func (g *VisibilityGuard) TargetVisible(ctx context.Context, target likes.Target, viewerID string) (bool, error) {
	switch target.Type {
	case likes.TargetPost:
		return g.PostVisible(ctx, target.ID, viewerID)
	case likes.TargetComment:
		return g.CommentVisible(ctx, target.ID, viewerID)
	default:
		return true, nil
	}
}

// RequirePostVisible guards routes whose {id} is a post id
func (g *VisibilityGuard) RequirePostVisible(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, err := g.PostVisible(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r))
		serveIfVisible(w, r, next, ok, err, "PostNotFound", "Post not found")
	})
}

// RequireCommentVisible guards routes whose {id} is a comment id
func (g *VisibilityGuard) RequireCommentVisible(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, err := g.CommentVisible(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r))
		serveIfVisible(w, r, next, ok, err, "CommentNotFound", "Comment not found")
	})
}

func serveIfVisible(w http.ResponseWriter, r *http.Request, next http.Handler, ok bool, err error, errorType, message string) {
	if err != nil {
		log.Printf("Failed to check post visibility: %v", err)
		handlers.WriteError(w, http.StatusInternalServerError, "InternalServerError",
			"An internal error occurred")
		return
	}
	if !ok {
		handlers.WriteError(w, http.StatusNotFound, errorType, message)
		return
	}
	next.ServeHTTP(w, r)
}
