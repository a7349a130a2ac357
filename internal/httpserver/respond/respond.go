// Package respond writes JSON bodies and maps errors to status codes.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/shelf/internal/auth"
	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/logger"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// JSON writes v with status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Message writes an error body without a field.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorBody{Error: msg})
}

// Error maps err to a status code: validation 400, not found 404,
// auth 401, anything else 500. Server errors are logged, their details
// are not sent to the client.
func Error(w http.ResponseWriter, log logger.Logger, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		JSON(w, http.StatusBadRequest, ErrorBody{Error: verr.Error(), Field: verr.Field})
	case errors.Is(err, domain.ErrNotFound):
		Message(w, http.StatusNotFound, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		Message(w, http.StatusUnauthorized, "unauthorized")
	default:
		log.Error("request failed", logger.Error(err))
		Message(w, http.StatusInternalServerError, "internal error")
	}
}

// Decode reads a JSON body of at most limit bytes into v. Malformed input
// becomes a ValidationError on field "body".
func Decode(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &domain.ValidationError{Field: "body", Message: "is too large"}
		}
		return &domain.ValidationError{Field: "body", Message: "is not valid JSON"}
	}
	return nil
}
