package post

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"Agora/internal/api/handlers"
	"Agora/internal/api/middleware"
	"Agora/internal/core/posts"
)

// EditPostInput is the request body for PUT /api/posts/{id}.
// Omitted fields keep their stored values.
type EditPostInput struct {
	Text      string   `json:"text" validate:"max=30000"`
	ImageURLs []string `json:"imageUrls" validate:"max=10,dive,required"`
}

// postOutput wraps a post with a status message
type postOutput struct {
	Message string      `json:"message"`
	Post    *posts.Post `json:"post"`
}

type messageOutput struct {
	Message string `json:"message"`
}

// UpdateHandler handles the owner-only post mutations: edit, hide and delete.
//
// With explicitOwnerCheck set, a foreign post answers 403 instead of the
// 404 the ownership-filtered service calls return on their own.
type UpdateHandler struct {
	service            posts.Service
	explicitOwnerCheck bool
}

// NewUpdateHandler creates a new handler for owner-only post mutations
func NewUpdateHandler(service posts.Service, explicitOwnerCheck bool) *UpdateHandler {
	return &UpdateHandler{
		service:            service,
		explicitOwnerCheck: explicitOwnerCheck,
	}
}

// HandleEdit handles PUT /api/posts/{id}
func (h *UpdateHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	userID, postID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	var input EditPostInput
	if !handlers.DecodeAndValidate(w, r, &input) {
		return
	}

	post, err := h.service.EditPost(r.Context(), userID, postID, posts.EditPostRequest{
		Text:      input.Text,
		ImageURLs: input.ImageURLs,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, postOutput{Message: "Post updated successfully", Post: post})
}

// HandleHide handles PUT /api/posts/{id}/hide
func (h *UpdateHandler) HandleHide(w http.ResponseWriter, r *http.Request) {
	userID, postID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	post, err := h.service.HidePost(r.Context(), userID, postID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, postOutput{Message: "Post hidden successfully", Post: post})
}

// HandleDelete handles DELETE /api/posts/{id}
// Comments on the post and likes on the post or its comments go with it.
func (h *UpdateHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, postID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	if err := h.service.DeletePost(r.Context(), userID, postID); err != nil {
		handleServiceError(w, err)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, messageOutput{Message: "Post deleted successfully"})
}

// authorize resolves the caller and post id, running the explicit owner
// check when enabled. It writes the error response itself.
func (h *UpdateHandler) authorize(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		handlers.WriteError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return "", "", false
	}

	postID := chi.URLParam(r, "id")
	if err := h.checkOwner(r.Context(), userID, postID); err != nil {
		handleServiceError(w, err)
		return "", "", false
	}
	return userID, postID, true
}

func (h *UpdateHandler) checkOwner(ctx context.Context, userID, postID string) error {
	if !h.explicitOwnerCheck {
		return nil
	}
	return h.service.AuthorizeOwner(ctx, userID, postID)
}
