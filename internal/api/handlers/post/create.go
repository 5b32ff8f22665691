package post

import (
	"net/http"

	"Agora/internal/api/handlers"
	"Agora/internal/api/middleware"
	"Agora/internal/core/posts"
)

// CreatePostInput is the request body for POST /api/posts
type CreatePostInput struct {
	Text      string   `json:"text" validate:"max=30000"`
	ImageURLs []string `json:"imageUrls" validate:"max=10,dive,required"`
}

// CreateHandler handles post creation requests
type CreateHandler struct {
	service posts.Service
}

// NewCreateHandler creates a new create handler
func NewCreateHandler(service posts.Service) *CreateHandler {
	return &CreateHandler{
		service: service,
	}
}

// HandleCreate handles POST /api/posts
// The owner is always the authenticated user.
func (h *CreateHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		handlers.WriteError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}

	var input CreatePostInput
	if !handlers.DecodeAndValidate(w, r, &input) {
		return
	}

	post, err := h.service.CreatePost(r.Context(), userID, posts.CreatePostRequest{
		Text:      input.Text,
		ImageURLs: input.ImageURLs,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	handlers.WriteJSON(w, http.StatusCreated, post)
}
