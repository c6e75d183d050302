// Package metrics holds the Prometheus collectors exported on the metrics endpoint.
//
// Collectors register with the default registry at init, so any handler built
// from promhttp.Handler() exposes them.
package metrics

import (
	"strconv"
	"time"

	obserrors "github.com/halayachts/hala-api/internal/observability/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result constants for metric labels.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultSkipped = "skipped"
	// ResultRejected marks a submission refused for client input.
	ResultRejected = "rejected"
)

// Login outcomes.
const (
	LoginSuccess            = "success"
	LoginInvalidCredentials = "invalid_credentials"
	LoginRateLimited        = "rate_limited"
	LoginBadRequest         = "bad_request"
	LoginError              = "error"
)

var (
	// LoginAttemptsTotal counts admin login attempts by outcome.
	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hala_admin_login_attempts_total",
			Help: "Admin login attempts by outcome",
		},
		[]string{"outcome"},
	)

	// IntakeSubmissionsTotal counts public form submissions by form and result.
	IntakeSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hala_intake_submissions_total",
			Help: "Contact, booking and newsletter submissions by result",
		},
		[]string{"form", "result"},
	)

	// MailDeliveriesTotal counts outbound notification emails.
	MailDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hala_mail_deliveries_total",
			Help: "Notification emails by template, result and error class",
		},
		[]string{"template", "result", "error_class"},
	)

	// HTTPRequestDuration tracks request latency by route pattern.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hala_http_request_duration_seconds",
			Help:    "HTTP request latency by method, route and status",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// RecordLoginAttempt increments the login counter for outcome.
func RecordLoginAttempt(outcome string) {
	LoginAttemptsTotal.WithLabelValues(outcome).Inc()
}

// RecordIntake increments the submission counter for form.
func RecordIntake(form string, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	IntakeSubmissionsTotal.WithLabelValues(form, result).Inc()
}

// RecordIntakeRejected counts a submission refused by validation or a conflict.
func RecordIntakeRejected(form string) {
	IntakeSubmissionsTotal.WithLabelValues(form, ResultRejected).Inc()
}

// RecordMail increments the delivery counter. A nil err counts as success.
func RecordMail(template string, err error) {
	if err == nil {
		MailDeliveriesTotal.WithLabelValues(template, ResultSuccess, "").Inc()
		return
	}
	MailDeliveriesTotal.WithLabelValues(template, ResultError, obserrors.Classify(err)).Inc()
}

// RecordMailSkipped counts a notification dropped because no transport is configured.
func RecordMailSkipped(template string) {
	MailDeliveriesTotal.WithLabelValues(template, ResultSkipped, "").Inc()
}

// ObserveHTTPRequest records one served request. route should be the mux pattern,
// not the raw path, to keep label cardinality bounded.
func ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
