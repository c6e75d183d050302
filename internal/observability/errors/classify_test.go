package errors

import (
	"context"
	goerrors "errors"
	"fmt"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
)

type smtpReplyError struct{ code int }

func (e *smtpReplyError) Error() string { return fmt.Sprintf("smtp %d", e.code) }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "deadline", err: fmt.Errorf("send: %w", context.DeadlineExceeded), want: "timeout"},
		{name: "canceled", err: context.Canceled, want: "canceled"},
		{name: "breaker open", err: fmt.Errorf("mail: %w", gobreaker.ErrOpenState), want: "circuit_open"},
		{name: "concrete type", err: fmt.Errorf("wrap: %w", &smtpReplyError{code: 550}), want: "errors_smtpreplyerror"},
		{name: "plain", err: goerrors.New("boom"), want: "errors_errorstring"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}
