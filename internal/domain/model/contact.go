//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"strings"
	"time"
)

const (
	msgAllFieldsRequired = "All fields are required"
	msgInvalidEmail      = "Invalid email format"
)

// ContactMessage is a stored contact form submission.
type ContactMessage struct {
	ID          string    `json:"id"          db:"id"`
	FirstName   string    `json:"firstName"   db:"first_name"`
	LastName    string    `json:"lastName"    db:"last_name"`
	Email       string    `json:"email"       db:"email"`
	Phone       string    `json:"phone"       db:"phone"`
	CountryCode string    `json:"countryCode" db:"country_code"`
	Message     string    `json:"message"     db:"message"`
	IsRead      bool      `json:"isRead"      db:"is_read"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
}

// FullName joins first and last name.
func (c ContactMessage) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// CreateContactRequest is the public contact form payload.
type CreateContactRequest struct {
	FirstName   string `json:"firstName"   validate:"required"`
	LastName    string `json:"lastName"    validate:"required"`
	Email       string `json:"email"       validate:"required,loose_email"`
	Phone       string `json:"phone"       validate:"required"`
	CountryCode string `json:"countryCode" validate:"required"`
	Message     string `json:"message"     validate:"required"`
}

// Normalize trims every field and lowercases the email.
func (r *CreateContactRequest) Normalize() {
	trimAll(&r.FirstName, &r.LastName, &r.Email, &r.Phone, &r.CountryCode, &r.Message)
	r.Email = strings.ToLower(r.Email)
}

// Validate normalizes and checks the request.
func (r *CreateContactRequest) Validate() error {
	r.Normalize()
	errs, err := ValidateStruct(r)
	if err != nil {
		return err
	}
	if missing := FieldsWithTag(errs, "required"); len(missing) > 0 {
		return requestError(msgAllFieldsRequired, missing...)
	}
	if len(errs) > 0 {
		return requestError(msgInvalidEmail, "email")
	}
	return nil
}

// ContactListOptions pages the admin contact listing.
type ContactListOptions struct {
	Limit  int
	Offset int
}
