package config

import (
	"strings"
	"time"
)

const defaultFromName = "Hala Yachts"

// MailConfig controls SMTP delivery of transactional emails.
type MailConfig struct {
	Host      string `env:"SMTP_HOST"`
	Port      int    `env:"SMTP_PORT"      envDefault:"587"`
	User      string `env:"SMTP_USER"`
	Password  string `env:"SMTP_PASS"`
	FromEmail string `env:"SMTP_FROM_EMAIL"`
	FromName  string `env:"SMTP_FROM_NAME" envDefault:"Hala Yachts"`
	// Secure selects implicit TLS. When unset it defaults to Port == 465.
	Secure *bool `env:"SMTP_SECURE"`

	Timeout    time.Duration `env:"SMTP_TIMEOUT"     envDefault:"10s"`
	RetryLimit int           `env:"SMTP_RETRY_LIMIT" envDefault:"2"`

	Recipients NotificationRecipients
}

// NotificationRecipients lists the staff inboxes for each intake form.
type NotificationRecipients struct {
	Contact    string `env:"CONTACT_NOTIFICATION_EMAIL"`
	Booking    string `env:"BOOKING_NOTIFICATION_EMAIL"`
	Newsletter string `env:"NEWSLETTER_NOTIFICATION_EMAIL"`
}

// Sanitize trims values and fills derived defaults.
func (m *MailConfig) Sanitize() {
	m.Host = strings.TrimSpace(m.Host)
	m.User = strings.TrimSpace(m.User)
	m.FromEmail = strings.TrimSpace(m.FromEmail)
	if m.FromEmail == "" {
		m.FromEmail = m.User
	}
	if m.FromName = strings.TrimSpace(m.FromName); m.FromName == "" {
		m.FromName = defaultFromName
	}
	if m.Port <= 0 {
		m.Port = 587
	}
	if m.Secure == nil {
		secure := m.Port == 465
		m.Secure = &secure
	}
	if m.Timeout <= 0 {
		m.Timeout = 10 * time.Second
	}
	if m.RetryLimit < 0 {
		m.RetryLimit = 0
	}

	fallback := m.FromEmail
	m.Recipients.Contact = firstNonEmpty(m.Recipients.Contact, fallback)
	m.Recipients.Booking = firstNonEmpty(m.Recipients.Booking, fallback)
	m.Recipients.Newsletter = firstNonEmpty(m.Recipients.Newsletter, fallback)
}

// Configured reports whether enough settings exist to attempt delivery.
func (m *MailConfig) Configured() bool {
	return m.Host != "" && m.FromEmail != ""
}

// UseImplicitTLS reports whether the connection should start with TLS.
func (m *MailConfig) UseImplicitTLS() bool {
	return m.Secure != nil && *m.Secure
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
