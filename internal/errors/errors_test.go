package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err:  &AppError{Code: ErrCodeNotFound, Message: "resource not found"},
			want: "resource not found",
		},
		{
			name: "error with cause",
			err:  &AppError{Code: ErrCodeInternal, Message: "failed to process", Cause: errors.New("underlying error")},
			want: "failed to process: underlying error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &AppError{Code: ErrCodeInternal, Message: "wrapped error", Cause: cause}

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is should see the cause through AppError")
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name      string
		err       *AppError
		wantCode  ErrorCode
		wantField string
	}{
		{"bad request", BadRequest("Email and password are required"), ErrCodeBadRequest, ""},
		{"rate limited", RateLimited("slow down"), ErrCodeRateLimited, ""},
		{"invalid credentials", InvalidCredentials("Invalid email or password"), ErrCodeInvalidCredentials, ""},
		{"unauthenticated", Unauthenticated("no session"), ErrCodeUnauthenticated, ""},
		{"already initialized", AlreadyInitialized("closed"), ErrCodeAlreadyInitialized, ""},
		{"duplicate email", DuplicateEmail("taken"), ErrCodeDuplicateEmail, "email"},
		{"weak password", WeakPassword("short"), ErrCodeWeakPassword, "password"},
		{"not found", NotFound("missing"), ErrCodeNotFound, ""},
		{"conflict", Conflict("exists"), ErrCodeConflict, ""},
		{"validation", Validation("bad"), ErrCodeValidation, ""},
		{"validation field", ValidationField("email", "Invalid email format"), ErrCodeValidation, "email"},
		{"internal", Internal("oops"), ErrCodeInternal, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("code = %v, want %v", tt.err.Code, tt.wantCode)
			}
			if tt.err.Field != tt.wantField {
				t.Errorf("field = %q, want %q", tt.err.Field, tt.wantField)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("db down")
	err := Wrap(cause, ErrCodeInternal, "failed to save booking")
	if err.Code != ErrCodeInternal || !errors.Is(err, cause) {
		t.Errorf("unexpected wrap result: %+v", err)
	}

	if Wrap(nil, ErrCodeInternal, "x") != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestIsInvalidCredentials(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", InvalidCredentials("x"))
	if !IsInvalidCredentials(wrapped) {
		t.Error("expected invalid credentials through wrapping")
	}
	if IsInvalidCredentials(RateLimited("locked")) {
		t.Error("did not expect invalid credentials")
	}
	if IsInvalidCredentials(errors.New("plain")) || IsInvalidCredentials(nil) {
		t.Error("plain errors should not match")
	}
}

func TestGetCode(t *testing.T) {
	err := fmt.Errorf("wrap: %w", ValidationField("slug", "Title and slug are required"))
	if GetCode(err) != ErrCodeValidation {
		t.Errorf("GetCode = %v", GetCode(err))
	}
	if GetCode(errors.New("x")) != "" || GetCode(nil) != "" {
		t.Error("non-AppError should yield an empty code")
	}
}
