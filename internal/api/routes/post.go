package routes

import (
	"github.com/go-chi/chi/v5"

	"Agora/internal/api/handlers/post"
	"Agora/internal/api/middleware"
	"Agora/internal/core/posts"
)

// RegisterPostRoutes registers post lifecycle endpoints on the router.
// explicitOwnerCheck makes mutations on someone else's post answer 403 instead of 404.
func RegisterPostRoutes(r chi.Router, service posts.Service, authMiddleware *middleware.JWTAuthMiddleware, explicitOwnerCheck bool) {
	createHandler := post.NewCreateHandler(service)
	getHandler := post.NewGetHandler(service)
	updateHandler := post.NewUpdateHandler(service, explicitOwnerCheck)

	r.With(authMiddleware.RequireAuth).Post("/api/posts", createHandler.HandleCreate)

	// Owners can read their hidden posts, so auth is optional here
	r.With(authMiddleware.OptionalAuth).Get("/api/posts/{id}", getHandler.HandleGet)

	r.With(authMiddleware.RequireAuth).Put("/api/posts/{id}", updateHandler.HandleEdit)
	r.With(authMiddleware.RequireAuth).Put("/api/posts/{id}/hide", updateHandler.HandleHide)
	r.With(authMiddleware.RequireAuth).Delete("/api/posts/{id}", updateHandler.HandleDelete)
}
