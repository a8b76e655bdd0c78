package main

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"stillwriter/internal/apperr"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func httpError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps a service failure kind to an HTTP status and a JSON
// body carrying the kind label, so clients can branch without parsing prose.
func writeServiceError(w http.ResponseWriter, err error) {
	kind := apperr.Kind(err)

	status := http.StatusInternalServerError
	switch kind {
	case "invalid_content_type":
		status = http.StatusBadRequest
	case "image_decode":
		status = http.StatusUnprocessableEntity
	case "storage", "model_service", "schema_validation":
		status = http.StatusBadGateway
	}

	log.Error().Err(err).Str("kind", kind).Int("status", status).Msg("Request failed")
	respondJSON(w, status, map[string]string{
		"error": err.Error(),
		"kind":  kind,
	})
}
