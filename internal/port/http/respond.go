package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rentora/posts-service/internal/usecase"
)

type errorBody struct {
	Message string               `json:"message"`
	Errors  []usecase.FieldError `json:"errors,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorBody{Message: message})
}

// statusForError maps domain errors onto HTTP status codes.
// Persistence and blob-store failures surface as a generic 500 without
// internal detail.
func statusForError(err error) (int, errorBody) {
	var ve *usecase.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, errorBody{Message: "invalid post payload", Errors: ve.Fields}
	case errors.Is(err, usecase.ErrTooManyImages):
		return http.StatusBadRequest, errorBody{Message: err.Error()}
	case errors.Is(err, usecase.ErrForbidden):
		return http.StatusForbidden, errorBody{Message: "you are not allowed to access this post"}
	case errors.Is(err, usecase.ErrPostNotFound):
		return http.StatusNotFound, errorBody{Message: "post not found"}
	default:
		return http.StatusInternalServerError, errorBody{Message: "internal server error"}
	}
}
