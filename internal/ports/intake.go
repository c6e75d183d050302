package ports

import (
	"context"

	"github.com/halayachts/hala-api/internal/domain/model"
)

// ContactRepository stores contact form submissions.
type ContactRepository interface {
	Create(ctx context.Context, msg *model.ContactMessage) (*model.ContactMessage, error)
	List(ctx context.Context, opts model.ContactListOptions) ([]model.ContactMessage, error)
}

// BookingRepository stores charter enquiries.
type BookingRepository interface {
	// Create inserts a booking. A clashing reference surfaces as data.ErrBookingReferenceExists.
	Create(ctx context.Context, b *model.Booking) (*model.Booking, error)
	// List returns one page of bookings, newest first, with the total matching count.
	List(ctx context.Context, opts model.BookingListOptions) ([]model.Booking, int, error)
}

// SubscriberRepository stores newsletter subscriptions.
type SubscriberRepository interface {
	// Create inserts email. An existing subscription surfaces as data.ErrSubscriberExists.
	Create(ctx context.Context, email string) (*model.Subscriber, error)
	Stats(ctx context.Context, recent int) (model.SubscriberStats, error)
}

// YachtRepository stores the yacht catalog.
type YachtRepository interface {
	List(ctx context.Context) ([]model.Yacht, error)
	// Create assigns the next numeric id when req.ID is nil. A slug already used as a
	// slug or alias surfaces as data.ErrYachtSlugExists.
	Create(ctx context.Context, req *model.CreateYachtRequest) (*model.Yacht, error)
}
