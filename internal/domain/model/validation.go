//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// emailPattern is the loose address check used by the public forms.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator instance. Field names in errors are
// reported using their JSON names.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		// Registration only fails for empty tags or nil funcs.
		_ = validate.RegisterValidation("loose_email", func(fl validator.FieldLevel) bool {
			return emailPattern.MatchString(fl.Field().String())
		})
	})
	return validate
}

// IsEmail reports whether s passes the form email check.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// RequestError is a client-facing validation failure. Message is safe to return verbatim.
type RequestError struct {
	Message string
	Fields  []string
}

func (e *RequestError) Error() string { return e.Message }

func requestError(msg string, fields ...string) *RequestError {
	return &RequestError{Message: msg, Fields: fields}
}

// FieldError describes one failed rule on a request field.
type FieldError struct {
	Field string
	Tag   string
}

// ValidateStruct runs struct tag validation and returns the failing fields in
// declaration order. Non-validation errors are returned as the second value.
func ValidateStruct(s any) ([]FieldError, error) {
	err := Validator().Struct(s)
	if err == nil {
		return nil, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Tag: fe.Tag()})
	}
	return out, nil
}

// FieldsWithTag returns the names of fields that failed the given tag.
func FieldsWithTag(errs []FieldError, tag string) []string {
	var names []string
	for _, e := range errs {
		if e.Tag == tag {
			names = append(names, e.Field)
		}
	}
	return names
}

func trimAll(ptrs ...*string) {
	for _, p := range ptrs {
		*p = strings.TrimSpace(*p)
	}
}
