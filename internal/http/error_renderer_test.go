package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/halayachts/hala-api/internal/errors"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusForCode(t *testing.T) {
	tests := []struct {
		code apperrors.ErrorCode
		want int
	}{
		{apperrors.ErrCodeBadRequest, http.StatusBadRequest},
		{apperrors.ErrCodeRateLimited, http.StatusTooManyRequests},
		{apperrors.ErrCodeInvalidCredentials, http.StatusUnauthorized},
		{apperrors.ErrCodeUnauthenticated, http.StatusUnauthorized},
		{apperrors.ErrCodeAlreadyInitialized, http.StatusForbidden},
		{apperrors.ErrCodeDuplicateEmail, http.StatusConflict},
		{apperrors.ErrCodeWeakPassword, http.StatusBadRequest},
		{apperrors.ErrCodeNotFound, http.StatusNotFound},
		{apperrors.ErrCodeConflict, http.StatusConflict},
		{apperrors.ErrCodeValidation, http.StatusBadRequest},
		{apperrors.ErrCodeInternal, http.StatusInternalServerError},
		{apperrors.ErrCodeTimeout, http.StatusGatewayTimeout},
		{apperrors.ErrCodeCanceled, StatusClientClosedRequest},
		{"something_else", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusForCode(tt.code))
		})
	}
}

func TestWriteAppError_Body(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteAppError(rec, apperrors.WeakPassword("Password must be at least 8 characters long"), ErrorOptions{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Password must be at least 8 characters long", body["error"])
	assert.Equal(t, "weak_password", body["code"])
	assert.Equal(t, "password", body["field"])
	assert.NotContains(t, body, "timestamp")
	assert.NotContains(t, body, "details")
}

func TestWriteAppError_StableBody(t *testing.T) {
	render := func() string {
		rec := httptest.NewRecorder()
		WriteAppError(rec, apperrors.InvalidCredentials("Invalid email or password"), ErrorOptions{})
		return rec.Body.String()
	}

	first := render()
	time.Sleep(1100 * time.Millisecond)
	assert.Equal(t, first, render())
}

func TestWriteAppError_InternalDetails(t *testing.T) {
	cause := fmt.Errorf("query admins: %w", errors.New("connection refused"))

	t.Run("hidden by default", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteAppError(rec, cause, ErrorOptions{})
		body := decodeBody(t, rec)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Internal server error", body["error"])
		assert.Equal(t, "internal", body["code"])
		assert.NotContains(t, body, "details")
		assert.NotContains(t, rec.Body.String(), "connection refused")
	})

	t.Run("shown when enabled", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteAppError(rec, cause, ErrorOptions{Details: true})
		body := decodeBody(t, rec)
		details, ok := body["details"].([]any)
		require.True(t, ok)
		require.Len(t, details, 2)
		assert.Equal(t, "query admins: connection refused", details[0])
		assert.Equal(t, "connection refused", details[1])
	})
}

func TestWriteAppError_MapsDatabaseErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteAppError(rec, &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "subscribers_email_key"}, ErrorOptions{})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = httptest.NewRecorder()
	WriteAppError(rec, fmt.Errorf("list: %w", context.DeadlineExceeded), ErrorOptions{})
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}
