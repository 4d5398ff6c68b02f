package handler

import (
	"net/http"
	"time"
)

// HandleHealth reports liveness.
//
// HTTP: GET /api/health
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "OK",
		"message": "pgdesk api is running",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}
