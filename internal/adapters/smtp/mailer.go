// Package smtp delivers transactional email over SMTP.
//
// Messages are sent as multipart/alternative with the rendered HTML and a
// plain-text rendition derived from it. Transient failures are retried with a
// linear backoff and a circuit breaker stops hammering a server that keeps
// failing.
package smtp

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/halayachts/hala-api/internal/ports"
	gobreaker "github.com/sony/gobreaker/v2"
)

// ErrNotConfigured is returned by Send when host or sender are missing.
var ErrNotConfigured = errors.New("smtp: mailer not configured")

const (
	defaultTimeout      = 10 * time.Second
	breakerTripFailures = 5
	breakerOpenTimeout  = time.Minute
)

// Config captures the SMTP transport settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	// FromEmail and FromName build the From header.
	FromEmail string
	FromName  string
	// ImplicitTLS dials with TLS (port 465 style). Otherwise STARTTLS is used when offered.
	ImplicitTLS bool
	Timeout     time.Duration
	RetryLimit  int
	// TLSConfig overrides the client TLS settings. Nil verifies against Host.
	TLSConfig *tls.Config
}

// Options configures a Mailer.
type Options struct {
	Config Config
	Logger *slog.Logger
}

// transportFunc performs one delivery attempt.
type transportFunc func(ctx context.Context, to string, raw []byte) error

// Mailer implements ports.Mailer over net/smtp.
type Mailer struct {
	cfg       Config
	logger    *slog.Logger
	breaker   *gobreaker.CircuitBreaker[struct{}]
	transport transportFunc
	now       func() time.Time
}

var _ ports.Mailer = (*Mailer)(nil)

// New builds a Mailer. An unconfigured mailer is valid; Configured reports false
// and Send returns ErrNotConfigured.
func New(opts Options) *Mailer {
	cfg := opts.Config
	cfg.Host = strings.TrimSpace(cfg.Host)
	cfg.FromEmail = strings.TrimSpace(cfg.FromEmail)
	if cfg.Port <= 0 {
		cfg.Port = 587
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RetryLimit < 0 {
		cfg.RetryLimit = 0
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "smtp_mailer")

	m := &Mailer{cfg: cfg, logger: logger, now: time.Now}
	m.transport = m.deliver
	m.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "smtp",
		MaxRequests: 1,
		Timeout:     breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerTripFailures
		},
		// A rejected message means the server is reachable.
		IsSuccessful: func(err error) bool {
			return err == nil || isPermanent(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("smtp circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return m
}

// Configured reports whether host and sender are set.
func (m *Mailer) Configured() bool {
	return m.cfg.Host != "" && m.cfg.FromEmail != ""
}

// Send composes and delivers msg, retrying transient failures.
func (m *Mailer) Send(ctx context.Context, msg ports.MailMessage) error {
	if !m.Configured() {
		return ErrNotConfigured
	}
	to := strings.TrimSpace(msg.To)
	if to == "" {
		return errors.New("smtp: recipient is required")
	}
	raw, err := compose(m.envelope(), msg, m.now())
	if err != nil {
		return err
	}

	attempts := m.cfg.RetryLimit + 1
	var lastErr error
	for attempt := range attempts {
		_, err = m.breaker.Execute(func() (struct{}, error) {
			return struct{}{}, m.transport(ctx, to, raw)
		})
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable(err) || ctx.Err() != nil || attempt == attempts-1 {
			break
		}
		m.logger.WarnContext(ctx, "smtp send failed; retrying", "attempt", attempt+1, "error", err)
		delay := time.Duration(attempt+1) * 200 * time.Millisecond
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			if !timer.Stop() {
				<-timer.C
			}
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}

func (m *Mailer) envelope() sender {
	return sender{Name: m.cfg.FromName, Email: m.cfg.FromEmail, Host: m.cfg.Host}
}

func (m *Mailer) tlsConfig() *tls.Config {
	if m.cfg.TLSConfig != nil {
		return m.cfg.TLSConfig.Clone()
	}
	return &tls.Config{ServerName: m.cfg.Host, MinVersion: tls.VersionTLS12}
}

// deliver runs one SMTP session.
func (m *Mailer) deliver(ctx context.Context, to string, raw []byte) (err error) {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	dialer := &net.Dialer{Timeout: m.cfg.Timeout}
	var conn net.Conn
	if m.cfg.ImplicitTLS {
		td := &tls.Dialer{NetDialer: dialer, Config: m.tlsConfig()}
		conn, err = td.DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer func() {
		if closeErr := c.Close(); closeErr != nil && err == nil && !errors.Is(closeErr, net.ErrClosed) {
			err = errors.Join(err, closeErr)
		}
	}()

	if !m.cfg.ImplicitTLS {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err = c.StartTLS(m.tlsConfig()); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		}
	}
	if m.cfg.Username != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err = c.Auth(smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)); err != nil {
				return fmt.Errorf("smtp auth: %w", err)
			}
		}
	}
	if err = c.Mail(m.cfg.FromEmail); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err = c.Rcpt(to); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err = w.Write(raw); err != nil {
		_ = w.Close()
		return fmt.Errorf("write body: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("end data: %w", err)
	}
	return c.Quit()
}

// isPermanent reports a 5xx SMTP reply. Retrying will not change the outcome.
func isPermanent(err error) bool {
	var tpErr *textproto.Error
	return errors.As(err, &tpErr) && tpErr.Code >= 500
}

func retryable(err error) bool {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return false
	default:
		return !isPermanent(err)
	}
}
