package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/PlaguesW/Couple-bot-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

// respondServiceError maps the service error taxonomy to a status code.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	statusCode := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		statusCode = http.StatusNotFound
	case errors.Is(err, services.ErrConflict), errors.Is(err, services.ErrAlreadyPaired):
		statusCode = http.StatusConflict
	case errors.Is(err, services.ErrForbidden):
		statusCode = http.StatusForbidden
	case errors.Is(err, services.ErrInvalidOperation):
		statusCode = http.StatusBadRequest
	}

	if statusCode == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		respondError(w, "internal server error", statusCode)
		return
	}
	respondError(w, err.Error(), statusCode)
}

// urlParamInt64 parses a numeric chi URL parameter.
func urlParamInt64(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// queryInt parses an optional numeric query parameter, 0 when absent.
func queryInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}
