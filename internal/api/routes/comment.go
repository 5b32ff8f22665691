package routes

import (
	"github.com/go-chi/chi/v5"

	"Agora/internal/api/handlers/comment"
	"Agora/internal/api/handlers/common"
	"Agora/internal/api/middleware"
	"Agora/internal/core/comments"
)

// RegisterCommentRoutes registers comment endpoints on the router.
// Comments under a hidden post answer 404 to everyone but the post's owner.
func RegisterCommentRoutes(r chi.Router, service comments.Service, guard *common.VisibilityGuard, authMiddleware *middleware.JWTAuthMiddleware) {
	createHandler := comment.NewCreateHandler(service)
	getHandler := comment.NewGetHandler(service)
	likeHandler := comment.NewLikeHandler(service)

	r.With(authMiddleware.RequireAuth, guard.RequirePostVisible).Post("/api/posts/{id}/comments", createHandler.HandleCreate)
	r.With(authMiddleware.OptionalAuth, guard.RequirePostVisible).Get("/api/posts/{id}/comments", getHandler.HandleThread)
	r.With(authMiddleware.OptionalAuth, guard.RequirePostVisible).Get("/api/posts/{id}/comments/top", getHandler.HandleTop)

	// Raw counter bump, not a per-user toggle
	r.With(authMiddleware.RequireAuth, guard.RequireCommentVisible).Post("/api/comments/{id}/like", likeHandler.HandleLike)
}
