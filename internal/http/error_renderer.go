package httpx

import (
	"errors"
	"net/http"

	apperrors "github.com/halayachts/hala-api/internal/errors"
)

// StatusClientClosedRequest is the non-standard status used when the client went away.
const StatusClientClosedRequest = 499

const msgInternal = "Internal server error"

var statusByCode = map[apperrors.ErrorCode]int{
	apperrors.ErrCodeBadRequest:          http.StatusBadRequest,
	apperrors.ErrCodeRateLimited:         http.StatusTooManyRequests,
	apperrors.ErrCodeInvalidCredentials:  http.StatusUnauthorized,
	apperrors.ErrCodeUnauthenticated:     http.StatusUnauthorized,
	apperrors.ErrCodeAlreadyInitialized:  http.StatusForbidden,
	apperrors.ErrCodeDuplicateEmail:      http.StatusConflict,
	apperrors.ErrCodeWeakPassword:        http.StatusBadRequest,
	apperrors.ErrCodeNotFound:            http.StatusNotFound,
	apperrors.ErrCodeConflict:            http.StatusConflict,
	apperrors.ErrCodeValidation:          http.StatusBadRequest,
	apperrors.ErrCodeInternal:            http.StatusInternalServerError,
	apperrors.ErrCodeTimeout:             http.StatusGatewayTimeout,
	apperrors.ErrCodeCanceled:            StatusClientClosedRequest,
}

// StatusForCode returns the HTTP status for an application error code.
// Unknown codes map to 500.
func StatusForCode(code apperrors.ErrorCode) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ErrorResponse is the JSON body written for every failed request. It carries
// nothing request-specific, so equal errors render byte-identical bodies.
type ErrorResponse struct {
	Success bool     `json:"success"`
	Error   string   `json:"error"`
	Code    string   `json:"code"`
	Field   string   `json:"field,omitempty"`
	Details []string `json:"details,omitempty"`
}

// ErrorOptions controls how much of an error is exposed.
type ErrorOptions struct {
	// Details adds the cause chain of internal errors. Never enable in production.
	Details bool
}

// WriteAppError renders err as an ErrorResponse. Errors that are not an
// *AppError are first mapped through MapDBError; anything still unknown is
// reported as an internal error with a generic message.
func WriteAppError(w http.ResponseWriter, err error, opts ErrorOptions) {
	appErr := toAppError(err)

	resp := ErrorResponse{
		Success: false,
		Error:   appErr.Message,
		Code:    string(appErr.Code),
		Field:   appErr.Field,
	}
	if appErr.Code == apperrors.ErrCodeInternal && opts.Details {
		resp.Details = causeChain(appErr.Cause)
	}
	WriteJSON(w, StatusForCode(appErr.Code), resp)
}

func toAppError(err error) *apperrors.AppError {
	if err == nil {
		return apperrors.Internal(msgInternal)
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Message == "" {
			return &apperrors.AppError{Code: appErr.Code, Message: msgInternal, Cause: appErr.Cause, Field: appErr.Field}
		}
		return appErr
	}
	if errors.As(apperrors.MapDBError(err), &appErr) {
		return appErr
	}
	return apperrors.Wrap(err, apperrors.ErrCodeInternal, msgInternal)
}

func causeChain(err error) []string {
	var out []string
	for err != nil && len(out) < 8 {
		out = append(out, err.Error())
		err = errors.Unwrap(err)
	}
	return out
}
