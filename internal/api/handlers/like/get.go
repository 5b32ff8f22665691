package like

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"Agora/internal/api/handlers"
	"Agora/internal/api/middleware"
	"Agora/internal/core/likes"
)

// LikesOutput is the response for GET /api/likes/{targetType}/{targetId}
type LikesOutput struct {
	Likers        []*likes.Like `json:"likers"`
	Count         int           `json:"count"`
	LikedByViewer bool          `json:"likedByViewer"`
}

// GetHandler serves like counts and likers
type GetHandler struct {
	service    likes.Service
	visibility TargetVisibility
}

// NewGetHandler creates a new like read handler. visibility may be nil.
func NewGetHandler(service likes.Service, visibility TargetVisibility) *GetHandler {
	return &GetHandler{
		service:    service,
		visibility: visibility,
	}
}

// HandleGet handles GET /api/likes/{targetType}/{targetId}
// likedByViewer is only ever true for an authenticated caller.
func (h *GetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewerID := middleware.GetUserID(r)
	target := likes.Target{
		ID:   chi.URLParam(r, "targetId"),
		Type: likes.TargetType(chi.URLParam(r, "targetType")),
	}

	if target.Type.Valid() {
		visible, err := checkVisible(ctx, h.visibility, target, viewerID)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		if !visible {
			handleServiceError(w, likes.ErrTargetNotFound)
			return
		}
	}

	likers, err := h.service.GetLikers(ctx, target.ID, target.Type)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	count, err := h.service.CountLikes(ctx, target.ID, target.Type)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	output := LikesOutput{Likers: likers, Count: count}
	if viewerID != "" {
		output.LikedByViewer, err = h.service.HasLiked(ctx, viewerID, target.ID, target.Type)
		if err != nil {
			handleServiceError(w, err)
			return
		}
	}

	handlers.WriteJSON(w, http.StatusOK, output)
}
