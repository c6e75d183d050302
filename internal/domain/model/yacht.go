//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// YachtStatusPublished is the status assigned when none is supplied.
const YachtStatusPublished = "published"

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and collapses every run of non [a-z0-9] characters to a
// single dash, trimming dashes at both ends.
func Slugify(s string) string {
	s = nonSlugChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	return strings.Trim(s, "-")
}

// Yacht is a catalog entry. Fields the API does not model explicitly are kept in Attributes.
type Yacht struct {
	ID         int64          `db:"id"`
	YachtID    string         `db:"yacht_id"`
	Title      string         `db:"title"`
	Slug       string         `db:"slug"`
	Slugs      []string       `db:"slugs"`
	Status     string         `db:"status"`
	Attributes map[string]any `db:"attributes"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

// reservedYachtKeys are the document keys stored in dedicated columns.
var reservedYachtKeys = []string{"_id", "id", "yacht_id", "title", "slug", "slugs", "status", "createdAt", "updatedAt"}

// MarshalJSON flattens Attributes into the top-level document so clients see
// the same shape they submitted.
func (y Yacht) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(y.Attributes)+8)
	for k, v := range y.Attributes {
		doc[k] = v
	}
	doc["id"] = y.ID
	doc["yacht_id"] = y.YachtID
	doc["title"] = y.Title
	doc["slug"] = y.Slug
	if len(y.Slugs) > 0 {
		doc["slugs"] = y.Slugs
	}
	doc["status"] = y.Status
	doc["createdAt"] = y.CreatedAt
	doc["updatedAt"] = y.UpdatedAt
	return json.Marshal(doc)
}

// CreateYachtRequest is the raw yacht document posted by the admin UI.
type CreateYachtRequest struct {
	ID         *int64
	YachtID    string
	Title      string
	Slug       string
	Slugs      []string
	Status     string
	Attributes map[string]any
}

// UnmarshalJSON splits the known keys from the free-form attributes.
func (r *CreateYachtRequest) UnmarshalJSON(b []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}

	if raw, ok := doc["id"]; ok {
		id, err := parseYachtID(raw)
		if err != nil {
			return err
		}
		r.ID = id
	}
	if raw, ok := doc["yacht_id"]; ok {
		r.YachtID = rawScalarString(raw)
	}
	if err := decodeOptional(doc, "title", &r.Title); err != nil {
		return err
	}
	if err := decodeOptional(doc, "slug", &r.Slug); err != nil {
		return err
	}
	if err := decodeOptional(doc, "slugs", &r.Slugs); err != nil {
		return err
	}
	if err := decodeOptional(doc, "status", &r.Status); err != nil {
		return err
	}

	for _, k := range reservedYachtKeys {
		delete(doc, k)
	}
	r.Attributes = make(map[string]any, len(doc))
	for k, raw := range doc {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("attribute %q: %w", k, err)
		}
		r.Attributes[k] = v
	}
	return nil
}

// Prepare derives the slug from the title when missing and checks required fields.
func (r *CreateYachtRequest) Prepare() error {
	r.Title = strings.TrimSpace(r.Title)
	r.Slug = strings.TrimSpace(r.Slug)
	if r.Title != "" && r.Slug == "" {
		r.Slug = Slugify(r.Title)
	}
	if r.Title == "" || r.Slug == "" {
		return requestError("Title and slug are required", "title", "slug")
	}
	if r.Status = strings.TrimSpace(r.Status); r.Status == "" {
		r.Status = YachtStatusPublished
	}
	return nil
}

// Build returns the yacht to insert once the numeric id is known.
func (r *CreateYachtRequest) Build(id int64) Yacht {
	yachtID := r.YachtID
	if yachtID == "" {
		yachtID = strconv.FormatInt(id, 10)
	}
	attrs := r.Attributes
	if attrs == nil {
		attrs = map[string]any{}
	}
	return Yacht{
		ID:         id,
		YachtID:    yachtID,
		Title:      r.Title,
		Slug:       r.Slug,
		Slugs:      r.Slugs,
		Status:     r.Status,
		Attributes: attrs,
	}
}

func decodeOptional(doc map[string]json.RawMessage, key string, dst any) error {
	raw, ok := doc[key]
	if !ok || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

// parseYachtID accepts a number or numeric string. Zero, empty and null mean "assign one".
func parseYachtID(raw json.RawMessage) (*int64, error) {
	s := rawScalarString(raw)
	if s == "" || s == "0" {
		return nil, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 0 {
		return nil, requestError("Validation error: id must be a positive integer", "id")
	}
	return &id, nil
}

func rawScalarString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
