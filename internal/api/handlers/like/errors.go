package like

import (
	"errors"
	"log"
	"net/http"

	"Agora/internal/api/handlers"
	"Agora/internal/core/likes"
)

// handleServiceError maps like service errors to HTTP responses
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, likes.ErrTargetNotFound):
		handlers.WriteError(w, http.StatusNotFound, "TargetNotFound", "Like target not found")

	case errors.Is(err, likes.ErrLikeAlreadyExists):
		handlers.WriteError(w, http.StatusConflict, "LikeAlreadyExists",
			"Like changed concurrently, please retry")

	case likes.IsValidationError(err):
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())

	default:
		log.Printf("Unexpected error in like handler: %v", err)
		handlers.WriteError(w, http.StatusInternalServerError, "InternalServerError",
			"An internal error occurred")
	}
}
