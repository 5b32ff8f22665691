package feed

import (
	"log"
	"net/http"

	"Agora/internal/api/handlers"
	"Agora/internal/core/feed"
)

// handleServiceError maps feed service errors to HTTP responses
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case feed.IsValidationError(err):
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())

	default:
		log.Printf("Unexpected error in feed handler: %v", err)
		handlers.WriteError(w, http.StatusInternalServerError, "InternalServerError",
			"An internal error occurred")
	}
}
