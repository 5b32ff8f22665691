package like

import (
	"context"
	"net/http"

	"Agora/internal/api/handlers"
	"Agora/internal/api/middleware"
	"Agora/internal/core/likes"
)

// ToggleLikeInput is the request body for POST /api/likes
type ToggleLikeInput struct {
	TargetID   string `json:"targetId" validate:"required"`
	TargetType string `json:"targetType" validate:"required,oneof=post comment"`
}

// ToggleLikeOutput reports the state after the toggle
type ToggleLikeOutput struct {
	Message string `json:"message"`
	Liked   bool   `json:"liked"`
	Count   int    `json:"count"`
}

// TargetVisibility decides whether a caller may see a like target.
// Targets on a hidden post are only visible to the post's owner.
type TargetVisibility interface {
	TargetVisible(ctx context.Context, target likes.Target, viewerID string) (bool, error)
}

// checkVisible answers true when no visibility checker is configured
func checkVisible(ctx context.Context, visibility TargetVisibility, target likes.Target, viewerID string) (bool, error) {
	if visibility == nil {
		return true, nil
	}
	return visibility.TargetVisible(ctx, target, viewerID)
}

// ToggleHandler handles like toggles
type ToggleHandler struct {
	service    likes.Service
	visibility TargetVisibility
}

// NewToggleHandler creates a new like toggle handler. visibility may be nil.
func NewToggleHandler(service likes.Service, visibility TargetVisibility) *ToggleHandler {
	return &ToggleHandler{
		service:    service,
		visibility: visibility,
	}
}

// HandleToggle handles POST /api/likes
// Likes the target if the caller hasn't yet, otherwise removes the like.
func (h *ToggleHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		handlers.WriteError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}

	var input ToggleLikeInput
	if !handlers.DecodeAndValidate(w, r, &input) {
		return
	}

	target := likes.Target{ID: input.TargetID, Type: likes.TargetType(input.TargetType)}
	visible, err := checkVisible(r.Context(), h.visibility, target, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if !visible {
		handleServiceError(w, likes.ErrTargetNotFound)
		return
	}

	result, err := h.service.ToggleLike(r.Context(), likes.ToggleLikeRequest{
		UserID:     userID,
		TargetID:   input.TargetID,
		TargetType: likes.TargetType(input.TargetType),
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	message := "Unliked"
	if result.Liked {
		message = "Liked"
	}
	handlers.WriteJSON(w, http.StatusOK, ToggleLikeOutput{
		Message: message,
		Liked:   result.Liked,
		Count:   result.Count,
	})
}
