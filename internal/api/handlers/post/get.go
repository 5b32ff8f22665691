package post

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"Agora/internal/api/handlers"
	"Agora/internal/api/middleware"
	"Agora/internal/core/posts"
)

// GetHandler serves single posts
type GetHandler struct {
	service posts.Service
}

// NewGetHandler creates a new get handler
func NewGetHandler(service posts.Service) *GetHandler {
	return &GetHandler{service: service}
}

// HandleGet handles GET /api/posts/{id}
// Hidden posts are only returned to their owner; everyone else gets 404.
func (h *GetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")

	post, err := h.service.FindPostByID(r.Context(), postID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if post.Hidden && post.UserID != middleware.GetUserID(r) {
		handleServiceError(w, posts.ErrNotFound)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, post)
}
