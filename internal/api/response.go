// Package api provides HTTP response utilities for StorySprout.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/storysprout/storysprout/internal/models"
)

// Pre-marshaled fallback response to avoid runtime JSON encoding failures
var fallbackErrorResponse []byte

func init() {
	var err error
	fallbackErrorResponse, err = json.Marshal(models.Error("Internal server error"))
	if err != nil {
		panic(fmt.Sprintf("Failed to marshal fallback error response at startup: %v", err))
	}
}

// writeJSONResponse writes a JSON response with the given status code.
func writeJSONResponse(w http.ResponseWriter, statusCode int, response interface{}) {
	// Marshal first to catch encoding errors before writing headers.
	jsonData, err := json.Marshal(response)
	if err != nil {
		slog.Error("Server.writeJSONResponse: failed to marshal JSON response", "error", err)
		jsonData = fallbackErrorResponse
		statusCode = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, writeErr := w.Write(jsonData); writeErr != nil {
		slog.Error("Server.writeJSONResponse: failed to write JSON response", "error", writeErr)
	}
}

// statusForError maps engine errors to HTTP status codes. Not-found conditions
// surface as 404, caller/state desynchronization as 409, everything else as 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrSessionNotFound), errors.Is(err, models.ErrTemplateNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrStageMismatch), errors.Is(err, models.ErrInvalidStageIndex), errors.Is(err, models.ErrInvalidLevel):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes the standard error envelope for err.
func writeError(w http.ResponseWriter, err error) {
	writeJSONResponse(w, statusForError(err), models.Error(err.Error()))
}
