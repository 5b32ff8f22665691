package routes

import (
	"github.com/go-chi/chi/v5"

	"Agora/internal/api/handlers/common"
	"Agora/internal/api/handlers/like"
	"Agora/internal/api/middleware"
	"Agora/internal/core/likes"
)

// RegisterLikeRoutes registers like toggle and lookup endpoints on the router
func RegisterLikeRoutes(r chi.Router, service likes.Service, guard *common.VisibilityGuard, authMiddleware *middleware.JWTAuthMiddleware) {
	toggleHandler := like.NewToggleHandler(service, guard)
	getHandler := like.NewGetHandler(service, guard)

	r.With(authMiddleware.RequireAuth).Post("/api/likes", toggleHandler.HandleToggle)

	// Auth is optional: it fills likedByViewer and lets owners see a hidden post's likes
	r.With(authMiddleware.OptionalAuth).Get("/api/likes/{targetType}/{targetId}", getHandler.HandleGet)
}
