package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapDBError_NilError(t *testing.T) {
	if err := MapDBError(nil); err != nil {
		t.Errorf("MapDBError(nil) = %v, want nil", err)
	}
}

func TestMapDBError_ContextErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode ErrorCode
	}{
		{name: "deadline exceeded", err: context.DeadlineExceeded, wantCode: ErrCodeTimeout},
		{name: "canceled", err: context.Canceled, wantCode: ErrCodeCanceled},
		{name: "wrapped deadline", err: fmt.Errorf("query: %w", context.DeadlineExceeded), wantCode: ErrCodeTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.err)
			if !isAppError(err, tt.wantCode) {
				t.Errorf("MapDBError() code = %v, want %v", GetCode(err), tt.wantCode)
			}
		})
	}
}

func TestMapDBError_NoRows(t *testing.T) {
	if err := MapDBError(pgx.ErrNoRows); GetCode(err) != ErrCodeNotFound {
		t.Errorf("MapDBError(pgx.ErrNoRows) should be NotFound, got %v", GetCode(err))
	}
}

func TestMapDBError_UniqueViolation(t *testing.T) {
	tests := []struct {
		name      string
		pgErr     *pgconn.PgError
		wantField string
		wantMsg   string
	}{
		{
			name: "admin email from column metadata",
			pgErr: &pgconn.PgError{
				Code:       pgerrcode.UniqueViolation,
				TableName:  "admins",
				ColumnName: "email",
			},
			wantField: "email",
			wantMsg:   "An admin with this email already exists",
		},
		{
			name: "subscriber email from detail",
			pgErr: &pgconn.PgError{
				Code:      pgerrcode.UniqueViolation,
				TableName: "subscribers",
				Detail:    "Key (email)=(a@b.co) already exists.",
			},
			wantField: "email",
			wantMsg:   "This email is already subscribed to Hala Yachts newsletter!",
		},
		{
			name: "yacht slug from constraint name",
			pgErr: &pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				TableName:      "yachts",
				ConstraintName: "yachts_slug_key",
			},
			wantField: "slug",
			wantMsg:   "Yacht with this slug already exists",
		},
		{
			name: "expression index yields no field",
			pgErr: &pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				ConstraintName: "things_lower_key",
			},
			wantMsg: "This value already exists. Please choose a different one.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.pgErr)
			if GetCode(err) != ErrCodeConflict {
				t.Fatalf("expected conflict, got %v", GetCode(err))
			}
			if got := fieldOf(err); got != tt.wantField {
				t.Errorf("field = %q, want %q", got, tt.wantField)
			}
			var appErr *AppError
			if !errors.As(err, &appErr) || appErr.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", appErr.Message, tt.wantMsg)
			}
		})
	}
}

func TestMapDBError_ConstraintViolations(t *testing.T) {
	notNull := MapDBError(&pgconn.PgError{Code: pgerrcode.NotNullViolation, ColumnName: "email"})
	if GetCode(notNull) != ErrCodeValidation || fieldOf(notNull) != "email" {
		t.Errorf("not null violation mapped to %v/%q", GetCode(notNull), fieldOf(notNull))
	}

	check := MapDBError(&pgconn.PgError{Code: pgerrcode.CheckViolation, ColumnName: "status"})
	if GetCode(check) != ErrCodeValidation || fieldOf(check) != "status" {
		t.Errorf("check violation mapped to %v/%q", GetCode(check), fieldOf(check))
	}
}

func TestMapDBError_UnknownPgError(t *testing.T) {
	err := MapDBError(&pgconn.PgError{Code: pgerrcode.SerializationFailure})
	if GetCode(err) != ErrCodeInternal {
		t.Errorf("expected internal, got %v", GetCode(err))
	}
}

func TestMapDBError_StandardError(t *testing.T) {
	orig := errors.New("boom")
	if err := MapDBError(orig); !errors.Is(err, orig) || GetCode(err) != "" {
		t.Errorf("expected original error to pass through, got %v", err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "admins_single_bootstrap_idx"}
	wrapped := fmt.Errorf("insert admin: %w", pgErr)

	if !IsUniqueViolation(wrapped) {
		t.Fatal("expected wrapped unique violation to be detected")
	}
	if got := UniqueConstraint(wrapped); got != "admins_single_bootstrap_idx" {
		t.Errorf("constraint = %q", got)
	}
	if IsUniqueViolation(errors.New("nope")) || UniqueConstraint(nil) != "" {
		t.Error("expected plain errors not to be unique violations")
	}
}

func TestInferFieldFromConstraint(t *testing.T) {
	tests := map[string]string{
		"admins_email_key":          "email",
		"yachts_slug_key":           "slug",
		"bookings_lower_key":        "",
		"admins_single_bootstrap_x": "",
		"":                          "",
	}
	for in, want := range tests {
		if got := inferFieldFromConstraint(in); got != want {
			t.Errorf("inferFieldFromConstraint(%q) = %q, want %q", in, got, want)
		}
	}
}

func isAppError(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

func fieldOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}
