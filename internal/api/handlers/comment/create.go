package comment

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"Agora/internal/api/handlers"
	"Agora/internal/api/middleware"
	"Agora/internal/core/comments"
)

// CreateCommentInput is the request body for POST /api/posts/{id}/comments
type CreateCommentInput struct {
	ParentCommentID *string `json:"parentCommentId,omitempty" validate:"omitempty,min=1"`
	Text            string  `json:"text" validate:"required"`
}

// CreateHandler handles comment creation
type CreateHandler struct {
	service comments.Service
}

// NewCreateHandler creates a new comment creation handler
func NewCreateHandler(service comments.Service) *CreateHandler {
	return &CreateHandler{service: service}
}

// HandleCreate handles POST /api/posts/{id}/comments
// A parentCommentId makes the comment a reply; the parent must be on the same post.
func (h *CreateHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		handlers.WriteError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}

	var input CreateCommentInput
	if !handlers.DecodeAndValidate(w, r, &input) {
		return
	}

	comment, err := h.service.AddComment(r.Context(), comments.AddCommentRequest{
		PostID:          chi.URLParam(r, "id"),
		UserID:          userID,
		Text:            input.Text,
		ParentCommentID: input.ParentCommentID,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	handlers.WriteJSON(w, http.StatusCreated, comment)
}
