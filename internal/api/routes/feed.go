package routes

import (
	"github.com/go-chi/chi/v5"

	feedhandler "Agora/internal/api/handlers/feed"
	"Agora/internal/api/middleware"
	"Agora/internal/core/feed"
)

// RegisterFeedRoutes registers feed endpoints on the router
func RegisterFeedRoutes(r chi.Router, service feed.Service, authMiddleware *middleware.JWTAuthMiddleware) {
	handler := feedhandler.NewGetFeedHandler(service)

	r.Get("/api/feed", handler.HandleGetFeed)
	r.With(authMiddleware.RequireAuth).Get("/api/feed/mine", handler.HandleGetMyFeed)

	// The owner viewing their own page also gets hidden posts
	r.With(authMiddleware.OptionalAuth).Get("/api/users/{userID}/posts", handler.HandleGetUserPosts)
}
