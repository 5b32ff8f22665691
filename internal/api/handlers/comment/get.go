package comment

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"Agora/internal/api/handlers"
	"Agora/internal/core/comments"
)

// ThreadOutput is the response for GET /api/posts/{id}/comments
type ThreadOutput struct {
	Comments []*comments.ThreadNode `json:"comments"`
}

// TopOutput is the response for GET /api/posts/{id}/comments/top.
// Comment is null when the post has no comments.
type TopOutput struct {
	Comment *comments.Comment `json:"comment"`
}

// GetHandler serves comment reads
type GetHandler struct {
	service comments.Service
}

// NewGetHandler creates a new comment read handler
func NewGetHandler(service comments.Service) *GetHandler {
	return &GetHandler{service: service}
}

// HandleThread handles GET /api/posts/{id}/comments
func (h *GetHandler) HandleThread(w http.ResponseWriter, r *http.Request) {
	thread, err := h.service.GetThread(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if thread == nil {
		thread = []*comments.ThreadNode{}
	}

	handlers.WriteJSON(w, http.StatusOK, ThreadOutput{Comments: thread})
}

// HandleTop handles GET /api/posts/{id}/comments/top
func (h *GetHandler) HandleTop(w http.ResponseWriter, r *http.Request) {
	top, err := h.service.GetMostLikedComment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, TopOutput{Comment: top})
}
