package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/halayachts/hala-api/internal/domain/model"
	apperrors "github.com/halayachts/hala-api/internal/errors"
)

// DecodeJSON decodes the request body into dst and writes a 400 on failure.
// Returns true if successful, false if there was an error (error response already written).
// Oversized bodies rejected by http.MaxBytesReader are reported as 400 too.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var (
			maxErr *http.MaxBytesError
			reqErr *model.RequestError
		)
		switch {
		case errors.As(err, &reqErr):
			appErr := apperrors.BadRequest(reqErr.Message)
			if len(reqErr.Fields) > 0 {
				appErr.Field = reqErr.Fields[0]
			}
			WriteAppError(w, appErr, ErrorOptions{})
		case errors.As(err, &maxErr):
			WriteAppError(w, apperrors.BadRequest("Request body too large"), ErrorOptions{})
		case errors.Is(err, io.EOF):
			WriteAppError(w, apperrors.BadRequest("Request body is required"), ErrorOptions{})
		default:
			WriteAppError(w, apperrors.BadRequest("Invalid JSON body"), ErrorOptions{})
		}
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Response writer errors (e.g., client disconnect) can't be recovered from here.
		return
	}
}

// envelope is the success body shared by the intake and admin endpoints.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeSuccess(w http.ResponseWriter, code int, message string, data any) {
	WriteJSON(w, code, envelope{Success: true, Message: message, Data: data})
}
