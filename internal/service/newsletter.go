package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/halayachts/hala-api/internal/data"
	"github.com/halayachts/hala-api/internal/domain/model"
	apperrors "github.com/halayachts/hala-api/internal/errors"
	"github.com/halayachts/hala-api/internal/ports"
)

const msgAlreadySubscribed = "This email is already subscribed to Hala Yachts newsletter!"

// NewsletterServiceOptions groups dependencies for NewsletterService.
type NewsletterServiceOptions struct {
	Repo     ports.SubscriberRepository // Required
	Notifier IntakeNotifier
	Logger   *slog.Logger
}

// NewsletterService manages newsletter subscriptions.
type NewsletterService struct {
	repo     ports.SubscriberRepository
	notifier IntakeNotifier
	logger   *slog.Logger
}

// NewNewsletterService constructs a NewsletterService.
func NewNewsletterService(opts NewsletterServiceOptions) *NewsletterService {
	if opts.Repo == nil {
		panic("NewsletterService requires Repo")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &NewsletterService{
		repo:     opts.Repo,
		notifier: notifierOrNoop(opts.Notifier),
		logger:   logger.With("component", "newsletter_service"),
	}
}

// Subscribe adds the email to the list. An existing subscription is a conflict.
func (s *NewsletterService) Subscribe(ctx context.Context, req *model.SubscribeRequest) (sub *model.Subscriber, err error) {
	defer func() { recordIntake("newsletter", err) }()

	if err = req.Validate(); err != nil {
		return nil, badRequestFrom(err)
	}

	sub, err = s.repo.Create(ctx, req.Email)
	switch {
	case errors.Is(err, data.ErrSubscriberExists):
		return nil, apperrors.Wrap(err, apperrors.ErrCodeConflict, msgAlreadySubscribed)
	case err != nil:
		s.logger.ErrorContext(ctx, "store subscriber failed", "error", err)
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal,
			"We are experiencing technical issues. Please try again later.")
	}

	s.logger.InfoContext(ctx, "newsletter subscription added", "id", sub.ID)
	s.notifier.SubscriberAdded(ctx, *sub)
	return sub, nil
}

// Stats returns the subscriber total and the most recent subscriptions.
func (s *NewsletterService) Stats(ctx context.Context) (model.SubscriberStats, error) {
	stats, err := s.repo.Stats(ctx, model.RecentSubscriberLimit)
	if err != nil {
		return model.SubscriberStats{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to fetch subscribers data")
	}
	if stats.RecentSubscribers == nil {
		stats.RecentSubscribers = []model.RecentSubscriber{}
	}
	return stats, nil
}
