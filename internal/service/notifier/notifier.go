// Package notifier emails staff and customers after intake submissions.
//
// Deliveries are best-effort: they run in the background once the caller has
// persisted the submission, and failures are logged and counted but never
// surface to the HTTP response.
package notifier

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/halayachts/hala-api/internal/domain/model"
	"github.com/halayachts/hala-api/internal/observability/metrics"
	"github.com/halayachts/hala-api/internal/ports"
	"golang.org/x/sync/errgroup"
)

// Form names used in logs and metrics.
const (
	FormContact    = "contact"
	FormBooking    = "booking"
	FormNewsletter = "newsletter"
)

const deliveryTimeout = 30 * time.Second

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("mail").Funcs(template.FuncMap{
	"row":      func(label string, value any) row { return row{Label: label, Value: value} },
	"datetime": formatDateTime,
}).ParseFS(templateFS, "templates/*.html"))

type row struct {
	Label string
	Value any
}

// Recipients are the staff inboxes per form.
type Recipients struct {
	Contact    string
	Booking    string
	Newsletter string
}

// Options configures the notifier.
type Options struct {
	Mailer     ports.Mailer
	Recipients Recipients
	Logger     *slog.Logger
}

// Service renders intake emails and sends them through a ports.Mailer.
type Service struct {
	mailer     ports.Mailer
	recipients Recipients
	logger     *slog.Logger
	wg         sync.WaitGroup
}

// delivery is one rendered email plus the template name used for metrics.
type delivery struct {
	template string
	msg      ports.MailMessage
}

// New constructs a notifier. It panics when no mailer is supplied.
func New(opts Options) *Service {
	if opts.Mailer == nil {
		panic("notifier: Mailer is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		mailer:     opts.Mailer,
		recipients: opts.Recipients,
		logger:     logger.With("component", "intake_notifier"),
	}
}

// ContactReceived notifies staff about a contact message and acknowledges it to the sender.
func (s *Service) ContactReceived(ctx context.Context, msg model.ContactMessage) {
	data := struct{ Message model.ContactMessage }{msg}
	s.notify(ctx, FormContact, []pending{
		{
			template: "contact_admin",
			msg:      ports.MailMessage{To: s.recipients.Contact, ReplyTo: msg.Email, Subject: "New contact message received"},
			data:     data,
		},
		{
			template: "contact_customer",
			msg:      ports.MailMessage{To: msg.Email, ReplyTo: s.recipients.Contact, Subject: "We received your message"},
			data:     data,
		},
	})
}

// BookingReceived notifies staff about a charter enquiry and sends the guest a summary.
func (s *Service) BookingReceived(ctx context.Context, b model.Booking) {
	data := struct {
		Booking   model.Booking
		Reference string
		Dates     string
	}{b, b.BookingReference, FormatBookingDates(b)}
	s.notify(ctx, FormBooking, []pending{
		{
			template: "booking_admin",
			msg: ports.MailMessage{
				To:      s.recipients.Booking,
				ReplyTo: b.Email,
				Subject: "New Booking Request • " + b.YachtTitle,
			},
			data: data,
		},
		{
			template: "booking_customer",
			msg:      ports.MailMessage{To: b.Email, ReplyTo: s.recipients.Booking, Subject: "We received your booking request"},
			data:     data,
		},
	})
}

// SubscriberAdded tells staff about a new newsletter subscriber and welcomes them.
func (s *Service) SubscriberAdded(ctx context.Context, sub model.Subscriber) {
	data := struct{ Subscriber model.Subscriber }{sub}
	s.notify(ctx, FormNewsletter, []pending{
		{
			template: "newsletter_admin",
			msg:      ports.MailMessage{To: s.recipients.Newsletter, Subject: "New newsletter subscriber"},
			data:     data,
		},
		{
			template: "newsletter_customer",
			msg:      ports.MailMessage{To: sub.Email, Subject: "Welcome to the Hala Yachts newsletter"},
			data:     data,
		},
	})
}

// Wait blocks until every background delivery has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

type pending struct {
	template string
	msg      ports.MailMessage
	data     any
}

func (s *Service) notify(ctx context.Context, form string, items []pending) {
	if !s.mailer.Configured() {
		s.logger.WarnContext(ctx, "smtp not configured; skipping notification", "form", form)
		for _, p := range items {
			metrics.RecordMailSkipped(p.template)
		}
		return
	}

	deliveries := make([]delivery, 0, len(items))
	for _, p := range items {
		if strings.TrimSpace(p.msg.To) == "" {
			s.logger.WarnContext(ctx, "no recipient for notification", "form", form, "template", p.template)
			metrics.RecordMailSkipped(p.template)
			continue
		}
		html, err := render(p.template, p.data)
		if err != nil {
			s.logger.ErrorContext(ctx, "render notification failed", "form", form, "template", p.template, "error", err)
			metrics.RecordMail(p.template, err)
			continue
		}
		p.msg.HTML = html
		deliveries = append(deliveries, delivery{template: p.template, msg: p.msg})
	}
	if len(deliveries) == 0 {
		return
	}

	// The request context ends when the response is written.
	bg := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(bg, deliveryTimeout)
		defer cancel()
		if err := s.deliver(ctx, form, deliveries); err != nil {
			s.logger.WarnContext(ctx, "notification incomplete", "form", form, "error", err)
		}
	}()
}

// deliver sends every email concurrently. One failed delivery does not cancel the others.
func (s *Service) deliver(ctx context.Context, form string, deliveries []delivery) error {
	var g errgroup.Group
	for _, d := range deliveries {
		g.Go(func() error {
			start := time.Now()
			err := s.mailer.Send(ctx, d.msg)
			metrics.RecordMail(d.template, err)
			if err != nil {
				s.logger.ErrorContext(ctx, "notification delivery failed",
					"form", form,
					"template", d.template,
					"error", err,
				)
				return fmt.Errorf("%s: %w", d.template, err)
			}
			s.logger.InfoContext(ctx, "notification delivered",
				"form", form,
				"template", d.template,
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return nil
		})
	}
	return g.Wait()
}

func render(name string, data any) (string, error) {
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("execute %s: %w", name, err)
	}
	return b.String(), nil
}

const (
	dateLayout     = "Jan 2, 2006"
	dateTimeLayout = "Jan 2, 2006, 03:04 PM MST"
	unknownDate    = "TBD"
)

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeLayout)
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return unknownDate
	}
	return t.UTC().Format(dateLayout)
}

// FormatBookingDates renders the charter dates for emails: a check-in to
// check-out range for multiday charters, otherwise the single charter date.
func FormatBookingDates(b model.Booking) string {
	if b.IsMultiday() {
		return formatDate(b.CheckInDate) + " → " + formatDate(b.CheckOutDate)
	}
	return formatDate(b.Date)
}
