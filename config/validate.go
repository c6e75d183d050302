package config

import "fmt"

// Severity classifies a configuration finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is a single configuration problem reported by Validate.
type Finding struct {
	Severity Severity
	Variable string
	Message  string
}

func (f Finding) String() string {
	return fmt.Sprintf("[%s] %s: %s", f.Severity, f.Variable, f.Message)
}

// ValidationReport groups the findings produced by Validate.
type ValidationReport struct {
	Findings []Finding
}

// HasErrors reports whether any finding is fatal.
func (r ValidationReport) HasErrors() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns only fatal findings.
func (r ValidationReport) Errors() []Finding { return r.filter(SeverityError) }

// Warnings returns only non-fatal findings.
func (r ValidationReport) Warnings() []Finding { return r.filter(SeverityWarning) }

func (r ValidationReport) filter(s Severity) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == s {
			out = append(out, f)
		}
	}
	return out
}

// Validate checks a sanitized configuration for deployment problems.
// Production enforces secrets and credentials; other environments only warn.
func (c *AppConfig) Validate() ValidationReport {
	var r ValidationReport
	add := func(s Severity, variable, msg string) {
		r.Findings = append(r.Findings, Finding{Severity: s, Variable: variable, Message: msg})
	}

	prod := c.IsProduction()

	if _, insecure, err := c.Auth.SigningSecret(prod); err != nil {
		add(SeverityError, "ADMIN_JWT_SECRET", "token signing secret is required in production")
	} else if insecure {
		add(SeverityWarning, "ADMIN_JWT_SECRET", "using the insecure development signing secret")
	}

	if c.Postgres.Password == "" {
		if prod {
			add(SeverityError, "DB_PASSWORD", "database password is required in production")
		} else {
			add(SeverityWarning, "DB_PASSWORD", "database password is empty")
		}
	}

	if !c.Mail.Configured() {
		add(SeverityWarning, "SMTP_HOST", "SMTP is not configured; notification emails will be skipped")
	}

	if prod && c.Storage.Provider == StorageLocal {
		add(SeverityWarning, "STORAGE_PROVIDER", "local storage does not survive redeploys; configure s3 for production")
	}

	if c.Auth.Seed.ResolvedEmail() == "" {
		add(SeverityWarning, "ADMIN_EMAIL", "seed admin email not set; seed-admin will use the default")
	}
	if c.Auth.Seed.Password == "" {
		add(SeverityWarning, "ADMIN_PASSWORD", "seed admin password not set; seed-admin will use the default")
	}

	if c.Auth.RateLimitStore == RateLimitStoreMemory && prod {
		add(SeverityWarning, "RATE_LIMIT_STORE", "memory login throttling is per instance")
	}

	return r
}
