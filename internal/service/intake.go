package service

import (
	"context"
	"errors"

	"github.com/halayachts/hala-api/internal/domain/model"
	apperrors "github.com/halayachts/hala-api/internal/errors"
	"github.com/halayachts/hala-api/internal/observability/metrics"
)

// IntakeNotifier sends best-effort emails after a submission is stored.
// notifier.Service implements it.
type IntakeNotifier interface {
	ContactReceived(ctx context.Context, msg model.ContactMessage)
	BookingReceived(ctx context.Context, b model.Booking)
	SubscriberAdded(ctx context.Context, sub model.Subscriber)
}

type noopNotifier struct{}

func (noopNotifier) ContactReceived(context.Context, model.ContactMessage) {}
func (noopNotifier) BookingReceived(context.Context, model.Booking)        {}
func (noopNotifier) SubscriberAdded(context.Context, model.Subscriber)     {}

func notifierOrNoop(n IntakeNotifier) IntakeNotifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}

// badRequestFrom converts a model validation failure into a client error.
// Other errors are returned unchanged.
func badRequestFrom(err error) error {
	var reqErr *model.RequestError
	if !errors.As(err, &reqErr) {
		return err
	}
	appErr := apperrors.BadRequest(reqErr.Message)
	if len(reqErr.Fields) > 0 {
		appErr.Field = reqErr.Fields[0]
	}
	appErr.Cause = err
	return appErr
}

// recordIntake counts a submission outcome. Client errors count as rejected, not failed.
func recordIntake(form string, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code != apperrors.ErrCodeInternal {
		metrics.RecordIntakeRejected(form)
		return
	}
	metrics.RecordIntake(form, err)
}
