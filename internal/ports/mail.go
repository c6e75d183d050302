package ports

import "context"

// MailMessage is a single outbound email.
type MailMessage struct {
	To      string
	ReplyTo string
	Subject string
	HTML    string
	// Text is derived from HTML when empty.
	Text string
}

// Mailer delivers transactional email.
type Mailer interface {
	// Configured reports whether delivery can be attempted.
	Configured() bool
	Send(ctx context.Context, msg MailMessage) error
}
