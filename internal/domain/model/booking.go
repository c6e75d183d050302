//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// BookingStatus tracks where a charter request is in the sales process.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// Valid reports whether the status is supported.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted:
		return true
	default:
		return false
	}
}

// ParseBookingStatus parses a status filter. "all" and "" mean no filter and return ok=false with no error.
func ParseBookingStatus(v string) (BookingStatus, bool, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" || v == "all" {
		return "", false, nil
	}
	s := BookingStatus(v)
	if !s.Valid() {
		return "", false, requestError("Invalid status filter", "status")
	}
	return s, true, nil
}

// CharterTypeMultiday marks bookings that span check-in and check-out dates.
const CharterTypeMultiday = "multiday"

// Booking is a stored charter enquiry.
type Booking struct {
	ID               string        `json:"id"                     db:"id"`
	BookingReference string        `json:"bookingReference"       db:"booking_reference"`
	FirstName        string        `json:"firstName"              db:"first_name"`
	LastName         string        `json:"lastName"               db:"last_name"`
	Email            string        `json:"email"                  db:"email"`
	Phone            string        `json:"phone"                  db:"phone"`
	CharterType      string        `json:"charterType"            db:"charter_type"`
	Passengers       int           `json:"passengers"             db:"passengers"`
	YachtTitle       string        `json:"yachtTitle"             db:"yacht_title"`
	YachtSlug        *string       `json:"yachtSlug,omitempty"    db:"yacht_slug"`
	Location         string        `json:"location"               db:"location"`
	Message          *string       `json:"message,omitempty"      db:"message"`
	Date             *time.Time    `json:"date,omitempty"         db:"charter_date"`
	CheckInDate      *time.Time    `json:"checkInDate,omitempty"  db:"check_in_date"`
	CheckOutDate     *time.Time    `json:"checkOutDate,omitempty" db:"check_out_date"`
	Status           BookingStatus `json:"status"                 db:"status"`
	CreatedAt        time.Time     `json:"createdAt"              db:"created_at"`
	UpdatedAt        time.Time     `json:"updatedAt"              db:"updated_at"`
}

// CustomerName joins first and last name.
func (b Booking) CustomerName() string {
	return strings.TrimSpace(b.FirstName + " " + b.LastName)
}

// IsMultiday reports whether the charter spans several days.
func (b Booking) IsMultiday() bool {
	return strings.EqualFold(b.CharterType, CharterTypeMultiday)
}

// Passengers accepts either a JSON number or a numeric string.
type Passengers int

// UnmarshalJSON implements json.Unmarshaler.
func (p *Passengers) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		var s string
		if err2 := json.Unmarshal(b, &s); err2 != nil {
			return fmt.Errorf("passengers: %w", err)
		}
		n = json.Number(strings.TrimSpace(s))
	}
	if n == "" {
		*p = 0
		return nil
	}
	v, err := strconv.Atoi(n.String())
	if err != nil {
		return fmt.Errorf("passengers must be a whole number: %w", err)
	}
	*p = Passengers(v)
	return nil
}

// CreateBookingRequest is the public booking form payload.
type CreateBookingRequest struct {
	FirstName    string     `json:"firstName"    validate:"required"`
	LastName     string     `json:"lastName"     validate:"required"`
	Email        string     `json:"email"        validate:"required"`
	Phone        string     `json:"phone"        validate:"required"`
	CharterType  string     `json:"charterType"  validate:"required"`
	Passengers   Passengers `json:"passengers"   validate:"required,min=1"`
	YachtTitle   string     `json:"yachtTitle"   validate:"required"`
	Location     string     `json:"location"     validate:"required"`
	YachtSlug    string     `json:"yachtSlug"`
	Message      string     `json:"message"`
	Date         string     `json:"date"`
	CheckInDate  string     `json:"checkInDate"`
	CheckOutDate string     `json:"checkOutDate"`
}

// Validate checks required fields, then the email format, then dates.
// It returns the booking to persist; the reference and id are assigned later.
func (r *CreateBookingRequest) Validate() (*Booking, error) {
	trimAll(&r.FirstName, &r.LastName, &r.Email, &r.Phone, &r.CharterType,
		&r.YachtTitle, &r.Location, &r.YachtSlug, &r.Message, &r.Date, &r.CheckInDate, &r.CheckOutDate)

	errs, err := ValidateStruct(r)
	if err != nil {
		return nil, err
	}
	if missing := FieldsWithTag(errs, "required"); len(missing) > 0 {
		return nil, requestError("Missing required fields: "+strings.Join(missing, ", "), missing...)
	}
	if len(errs) > 0 {
		return nil, requestError("Validation error: passengers must be at least 1", "passengers")
	}
	if !IsEmail(r.Email) {
		return nil, requestError(msgInvalidEmail, "email")
	}

	b := &Booking{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Email:       strings.ToLower(r.Email),
		Phone:       r.Phone,
		CharterType: r.CharterType,
		Passengers:  int(r.Passengers),
		YachtTitle:  r.YachtTitle,
		Location:    r.Location,
		YachtSlug:   optional(r.YachtSlug),
		Message:     optional(r.Message),
		Status:      BookingStatusPending,
	}

	dates := []struct {
		field string
		raw   string
		dst   **time.Time
	}{
		{"date", r.Date, &b.Date},
		{"checkInDate", r.CheckInDate, &b.CheckInDate},
		{"checkOutDate", r.CheckOutDate, &b.CheckOutDate},
	}
	for _, d := range dates {
		t, err := parseCharterDate(d.raw)
		if err != nil {
			return nil, requestError("Validation error: "+d.field+" is not a valid date", d.field)
		}
		*d.dst = t
	}
	if b.CheckInDate != nil && b.CheckOutDate != nil && b.CheckOutDate.Before(*b.CheckInDate) {
		return nil, requestError("Validation error: checkOutDate must not be before checkInDate", "checkOutDate")
	}
	return b, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// parseCharterDate accepts a calendar date or an RFC 3339 timestamp. Empty input yields nil.
func parseCharterDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognized date %q", s)
}

const (
	referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	referenceLength   = 6
	// referenceByteLimit is the largest multiple of the alphabet size that fits
	// in a byte. Bytes at or above it are discarded so every symbol is equally likely.
	referenceByteLimit = 256 - 256%len(referenceAlphabet)
)

// NewBookingReference builds a reference shaped HY-YYYYMMDD-XXXXXX.
// A nil rnd uses crypto/rand.
func NewBookingReference(now time.Time, rnd io.Reader) (string, error) {
	if rnd == nil {
		rnd = rand.Reader
	}
	out := make([]byte, 0, referenceLength)
	buf := make([]byte, referenceLength)
	for len(out) < referenceLength {
		if _, err := io.ReadFull(rnd, buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, c := range buf {
			if int(c) >= referenceByteLimit {
				continue
			}
			out = append(out, referenceAlphabet[int(c)%len(referenceAlphabet)])
			if len(out) == referenceLength {
				break
			}
		}
	}
	return fmt.Sprintf("HY-%s-%s", now.UTC().Format("20060102"), out), nil
}

const (
	defaultBookingPageSize = 10
	maxBookingPageSize     = 100
)

// BookingListOptions controls paging and filtering for the admin booking list.
type BookingListOptions struct {
	Status *BookingStatus
	Page   int
	Limit  int
}

// Normalize clamps page and limit to supported values.
func (o *BookingListOptions) Normalize() {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 {
		o.Limit = defaultBookingPageSize
	}
	if o.Limit > maxBookingPageSize {
		o.Limit = maxBookingPageSize
	}
}

// Offset returns the row offset for the current page.
func (o BookingListOptions) Offset() int {
	return (o.Page - 1) * o.Limit
}

// Pagination describes a page of results.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewPagination computes the page count for total rows.
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}
