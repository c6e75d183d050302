package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/halayachts/hala-api/internal/domain/model"
	apperrors "github.com/halayachts/hala-api/internal/errors"
)

const (
	defaultContactPageSize = 100
	maxContactPageSize     = 500
)

// ContactServiceInterface defines the contact operations used by the handlers.
type ContactServiceInterface interface {
	Submit(ctx context.Context, req *model.CreateContactRequest) (*model.ContactMessage, error)
	List(ctx context.Context, opts model.ContactListOptions) ([]model.ContactMessage, error)
}

// BookingServiceInterface defines the booking operations used by the handlers.
type BookingServiceInterface interface {
	Submit(ctx context.Context, req *model.CreateBookingRequest) (*model.Booking, error)
	List(ctx context.Context, opts model.BookingListOptions) ([]model.Booking, model.Pagination, error)
}

// NewsletterServiceInterface defines the newsletter operations used by the handlers.
type NewsletterServiceInterface interface {
	Subscribe(ctx context.Context, req *model.SubscribeRequest) (*model.Subscriber, error)
	Stats(ctx context.Context) (model.SubscriberStats, error)
}

// IntakeHandlers serves the public website forms and their admin listings.
type IntakeHandlers struct {
	Contacts   ContactServiceInterface
	Bookings   BookingServiceInterface
	Newsletter NewsletterServiceInterface
	Errors     ErrorOptions
}

type contactCreated struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// SubmitContact stores a contact form message.
// POST /api/contact.
func (h *IntakeHandlers) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var req model.CreateContactRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	msg, err := h.Contacts.Submit(r.Context(), &req)
	if err != nil {
		WriteAppError(w, err, h.Errors)
		return
	}
	writeSuccess(w, http.StatusCreated, "", contactCreated{ID: msg.ID, CreatedAt: msg.CreatedAt})
}

// ListContacts returns contact messages, newest first.
// GET /api/contact?limit=&offset=.
func (h *IntakeHandlers) ListContacts(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, defaultContactPageSize, maxContactPageSize)
	msgs, err := h.Contacts.List(r.Context(), model.ContactListOptions{Limit: limit, Offset: offset})
	if err != nil {
		WriteAppError(w, err, h.Errors)
		return
	}
	if msgs == nil {
		msgs = []model.ContactMessage{}
	}
	writeSuccess(w, http.StatusOK, "", msgs)
}

type bookingCreated struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	BookingID        string `json:"bookingId"`
	BookingReference string `json:"bookingReference"`
}

// SubmitBooking stores a charter enquiry.
// POST /api/bookings.
func (h *IntakeHandlers) SubmitBooking(w http.ResponseWriter, r *http.Request) {
	var req model.CreateBookingRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	b, err := h.Bookings.Submit(r.Context(), &req)
	if err != nil {
		WriteAppError(w, err, h.Errors)
		return
	}
	WriteJSON(w, http.StatusCreated, bookingCreated{
		Success:          true,
		Message:          "Booking submitted successfully",
		BookingID:        b.ID,
		BookingReference: b.BookingReference,
	})
}

type bookingPage struct {
	Success    bool             `json:"success"`
	Data       []model.Booking  `json:"data"`
	Pagination model.Pagination `json:"pagination"`
}

// ListBookings pages bookings with an optional status filter.
// GET /api/bookings?status=&page=&limit=.
func (h *IntakeHandlers) ListBookings(w http.ResponseWriter, r *http.Request) {
	opts := model.BookingListOptions{
		Page:  parseIntQuery(r, "page", 1),
		Limit: parseIntQuery(r, "limit", 0),
	}
	status, ok, err := model.ParseBookingStatus(r.URL.Query().Get("status"))
	if err != nil {
		WriteAppError(w, apperrors.ValidationField("status", "Invalid status filter"), h.Errors)
		return
	}
	if ok {
		opts.Status = &status
	}

	bookings, page, err := h.Bookings.List(r.Context(), opts)
	if err != nil {
		WriteAppError(w, err, h.Errors)
		return
	}
	if bookings == nil {
		bookings = []model.Booking{}
	}
	WriteJSON(w, http.StatusOK, bookingPage{Success: true, Data: bookings, Pagination: page})
}

// Subscribe adds an email to the newsletter.
// POST /api/newsletter.
func (h *IntakeHandlers) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req model.SubscribeRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if _, err := h.Newsletter.Subscribe(r.Context(), &req); err != nil {
		WriteAppError(w, err, h.Errors)
		return
	}
	writeSuccess(w, http.StatusCreated,
		"Welcome to Hala Yachts! You have successfully subscribed to our luxury newsletter.", nil)
}

// NewsletterStats returns the subscriber count and the newest subscribers.
// GET /api/newsletter.
func (h *IntakeHandlers) NewsletterStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Newsletter.Stats(r.Context())
	if err != nil {
		WriteAppError(w, err, h.Errors)
		return
	}
	writeSuccess(w, http.StatusOK, "", stats)
}
