package service

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/halayachts/hala-api/internal/data"
	"github.com/halayachts/hala-api/internal/domain/model"
	apperrors "github.com/halayachts/hala-api/internal/errors"
	"github.com/halayachts/hala-api/internal/ports"
)

// maxReferenceAttempts bounds retries when a generated reference is already taken.
const maxReferenceAttempts = 5

const msgBookingInternal = "Internal server error"

// BookingServiceOptions groups dependencies for BookingService.
type BookingServiceOptions struct {
	Repo         ports.BookingRepository // Required
	Notifier     IntakeNotifier
	Logger       *slog.Logger
	TimeProvider data.TimeProvider
	// Random feeds reference generation. Nil uses crypto/rand.
	Random io.Reader
}

// BookingService accepts charter enquiries and assigns their references.
type BookingService struct {
	repo         ports.BookingRepository
	notifier     IntakeNotifier
	logger       *slog.Logger
	timeProvider data.TimeProvider
	random       io.Reader
}

// NewBookingService constructs a BookingService.
func NewBookingService(opts BookingServiceOptions) *BookingService {
	if opts.Repo == nil {
		panic("BookingService requires Repo")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tp := opts.TimeProvider
	if tp == nil {
		tp = &data.RealTimeProvider{}
	}
	return &BookingService{
		repo:         opts.Repo,
		notifier:     notifierOrNoop(opts.Notifier),
		logger:       logger.With("component", "booking_service"),
		timeProvider: tp,
		random:       opts.Random,
	}
}

// Submit validates a booking request, stores it as pending with a fresh
// reference and schedules the notification emails.
func (s *BookingService) Submit(ctx context.Context, req *model.CreateBookingRequest) (booking *model.Booking, err error) {
	defer func() { recordIntake("booking", err) }()

	b, err := req.Validate()
	if err != nil {
		return nil, badRequestFrom(err)
	}

	for attempt := 1; attempt <= maxReferenceAttempts; attempt++ {
		b.BookingReference, err = model.NewBookingReference(s.timeProvider.Now(), s.random)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, msgBookingInternal)
		}

		booking, err = s.repo.Create(ctx, b)
		if err == nil {
			break
		}
		if !errors.Is(err, data.ErrBookingReferenceExists) {
			s.logger.ErrorContext(ctx, "store booking failed", "error", err)
			return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, msgBookingInternal)
		}
		s.logger.WarnContext(ctx, "booking reference collision", "reference", b.BookingReference, "attempt", attempt)
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "Booking reference already exists")
	}

	s.logger.InfoContext(ctx, "booking received",
		"id", booking.ID,
		"reference", booking.BookingReference,
		"charter_type", booking.CharterType,
	)
	s.notifier.BookingReceived(ctx, *booking)
	return booking, nil
}

// List returns one page of bookings and its pagination summary.
func (s *BookingService) List(ctx context.Context, opts model.BookingListOptions) ([]model.Booking, model.Pagination, error) {
	opts.Normalize()
	bookings, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, model.Pagination{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, msgBookingInternal)
	}
	return bookings, model.NewPagination(opts.Page, opts.Limit, total), nil
}
