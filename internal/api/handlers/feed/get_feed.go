package feed

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"Agora/internal/api/handlers"
	"Agora/internal/api/middleware"
	"Agora/internal/core/feed"
)

// GetFeedHandler serves the public feed and per-user post listings
type GetFeedHandler struct {
	service feed.Service
}

// NewGetFeedHandler creates a new feed handler
func NewGetFeedHandler(service feed.Service) *GetFeedHandler {
	return &GetFeedHandler{service: service}
}

// HandleGetFeed handles GET /api/feed?limit=15&cursor=...
func (h *GetFeedHandler) HandleGetFeed(w http.ResponseWriter, r *http.Request) {
	limit, cursor, ok := parsePage(w, r)
	if !ok {
		return
	}

	resp, err := h.service.GetFeed(r.Context(), feed.GetFeedRequest{Limit: limit, Cursor: cursor})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, resp)
}

// HandleGetMyFeed handles GET /api/feed/mine
// Returns the caller's own posts, hidden ones included.
func (h *GetFeedHandler) HandleGetMyFeed(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		handlers.WriteError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}
	h.serveUserFeed(w, r, userID, userID)
}

// HandleGetUserPosts handles GET /api/users/{userID}/posts
// Anonymous callers and other users see only visible posts.
func (h *GetFeedHandler) HandleGetUserPosts(w http.ResponseWriter, r *http.Request) {
	h.serveUserFeed(w, r, chi.URLParam(r, "userID"), middleware.GetUserID(r))
}

func (h *GetFeedHandler) serveUserFeed(w http.ResponseWriter, r *http.Request, ownerID, viewerID string) {
	limit, cursor, ok := parsePage(w, r)
	if !ok {
		return
	}

	resp, err := h.service.GetUserFeeds(r.Context(), feed.GetUserFeedRequest{
		OwnerID:  ownerID,
		ViewerID: viewerID,
		Limit:    limit,
		Cursor:   cursor,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, resp)
}

// parsePage reads the optional limit and cursor query parameters.
// Range checks on limit happen in the service.
func parsePage(w http.ResponseWriter, r *http.Request) (int, *string, bool) {
	query := r.URL.Query()

	limit := 0
	if limitStr := query.Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "limit must be an integer")
			return 0, nil, false
		}
		limit = parsed
	}

	var cursor *string
	if c := query.Get("cursor"); c != "" {
		cursor = &c
	}
	return limit, cursor, true
}
