// Helper functions for sending standardized JSON responses.

package api

import (
	"encoding/json"
	"net/http"
)

// RespondWithJSON writes a JSON response with the given status code and payload.
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		// If marshaling fails, return an error response
		RespondWithError(w, http.StatusInternalServerError, "Failed to marshal response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// RespondWithError writes a standardized JSON error response.
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]string{"error": message})
}

// RespondWithCodedError writes the error body shape used by the event-stream
// endpoints: a machine-readable code alongside the human message.
func RespondWithCodedError(w http.ResponseWriter, status int, message, code string) {
	RespondWithJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
		"code":    code,
	})
}
