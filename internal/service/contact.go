package service

import (
	"context"
	"log/slog"

	"github.com/halayachts/hala-api/internal/domain/model"
	apperrors "github.com/halayachts/hala-api/internal/errors"
	"github.com/halayachts/hala-api/internal/ports"
)

const (
	defaultContactPageSize = 100
	maxContactPageSize     = 500
)

// ContactServiceOptions groups dependencies for ContactService.
type ContactServiceOptions struct {
	Repo     ports.ContactRepository // Required
	Notifier IntakeNotifier
	Logger   *slog.Logger
}

// ContactService stores contact form messages and triggers their notifications.
type ContactService struct {
	repo     ports.ContactRepository
	notifier IntakeNotifier
	logger   *slog.Logger
}

// NewContactService constructs a ContactService.
func NewContactService(opts ContactServiceOptions) *ContactService {
	if opts.Repo == nil {
		panic("ContactService requires Repo")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ContactService{
		repo:     opts.Repo,
		notifier: notifierOrNoop(opts.Notifier),
		logger:   logger.With("component", "contact_service"),
	}
}

// Submit validates and stores a contact message. Notification emails are
// sent in the background and never affect the result.
func (s *ContactService) Submit(ctx context.Context, req *model.CreateContactRequest) (msg *model.ContactMessage, err error) {
	defer func() { recordIntake("contact", err) }()

	if err = req.Validate(); err != nil {
		return nil, badRequestFrom(err)
	}

	msg, err = s.repo.Create(ctx, &model.ContactMessage{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		CountryCode: req.CountryCode,
		Message:     req.Message,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "store contact message failed", "error", err)
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to submit contact form")
	}

	s.logger.InfoContext(ctx, "contact message received", "id", msg.ID)
	s.notifier.ContactReceived(ctx, *msg)
	return msg, nil
}

// List returns contact messages, newest first.
func (s *ContactService) List(ctx context.Context, opts model.ContactListOptions) ([]model.ContactMessage, error) {
	if opts.Limit <= 0 {
		opts.Limit = defaultContactPageSize
	}
	if opts.Limit > maxContactPageSize {
		opts.Limit = maxContactPageSize
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	msgs, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Error fetching contact messages")
	}
	return msgs, nil
}
