package comment

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"Agora/internal/api/handlers"
	"Agora/internal/core/comments"
)

// LikeHandler bumps a comment's like counter
type LikeHandler struct {
	service comments.Service
}

// NewLikeHandler creates a new comment like handler
func NewLikeHandler(service comments.Service) *LikeHandler {
	return &LikeHandler{service: service}
}

// HandleLike handles POST /api/comments/{id}/like
// Each call adds one to the counter; it is not a per-user toggle.
func (h *LikeHandler) HandleLike(w http.ResponseWriter, r *http.Request) {
	comment, err := h.service.LikeComment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, comment)
}
