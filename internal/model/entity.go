package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the type of a catalog entity
type Kind string

const (
	KindManufacturer Kind = "manufacturer"
	KindPark         Kind = "park"
	KindCoaster      Kind = "coaster"
)

// ParseKind converts user input into a Kind
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindManufacturer:
		return KindManufacturer, nil
	case KindPark:
		return KindPark, nil
	case KindCoaster:
		return KindCoaster, nil
	default:
		return "", fmt.Errorf("unknown entity kind: %q (supported: park, manufacturer, coaster)", s)
	}
}

// FieldMap is a flat field name to value mapping. A nil value means null.
type FieldMap map[string]any

// Entity is a canonical catalog record for a park, manufacturer or coaster.
// Optional attributes are pointers so that "unknown" is distinct from a zero value.
type Entity struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind"`
	Name        string    `json:"name"`
	CountryCode *string   `json:"country_code,omitempty"`
	WebsiteURL  *string   `json:"website_url,omitempty"`
	Notes       *string   `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Park
	OpeningYear  *int     `json:"opening_year,omitempty"`
	OpeningMonth *int     `json:"opening_month,omitempty"`
	OpeningDay   *int     `json:"opening_day,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`

	// Coaster
	ParkID         *string  `json:"park_id,omitempty"`
	ManufacturerID *string  `json:"manufacturer_id,omitempty"`
	HeightM        *float64 `json:"height_m,omitempty"`
	SpeedKmh       *float64 `json:"speed_kmh,omitempty"`
	Status         *string  `json:"status,omitempty"`
}

// Website returns the website URL or an empty string
func (e *Entity) Website() string {
	if e.WebsiteURL == nil {
		return ""
	}
	return strings.TrimSpace(*e.WebsiteURL)
}

// FieldNames returns the mutable field names for a kind, in display order
func FieldNames(kind Kind) []string {
	switch kind {
	case KindPark:
		return []string{"name", "country_code", "website_url", "notes",
			"opening_year", "opening_month", "opening_day", "latitude", "longitude"}
	case KindManufacturer:
		return []string{"name", "country_code", "website_url", "notes"}
	case KindCoaster:
		return []string{"name", "park_id", "manufacturer_id", "opening_year",
			"height_m", "speed_kmh", "status", "notes"}
	}
	return nil
}

// HasField reports whether name is a mutable field of kind
func HasField(kind Kind, name string) bool {
	for _, n := range FieldNames(kind) {
		if n == name {
			return true
		}
	}
	return false
}

// Fields returns the current values of the entity's mutable fields.
// Unset optional fields map to an untyped nil.
func (e *Entity) Fields() FieldMap {
	all := FieldMap{
		"name":            e.Name,
		"country_code":    deref(e.CountryCode),
		"website_url":     deref(e.WebsiteURL),
		"notes":           deref(e.Notes),
		"opening_year":    deref(e.OpeningYear),
		"opening_month":   deref(e.OpeningMonth),
		"opening_day":     deref(e.OpeningDay),
		"latitude":        deref(e.Latitude),
		"longitude":       deref(e.Longitude),
		"park_id":         deref(e.ParkID),
		"manufacturer_id": deref(e.ManufacturerID),
		"height_m":        deref(e.HeightM),
		"speed_kmh":       deref(e.SpeedKmh),
		"status":          deref(e.Status),
	}

	fields := make(FieldMap)
	for _, name := range FieldNames(e.Kind) {
		fields[name] = all[name]
	}
	return fields
}

// protectedFields can never be written through Apply
var protectedFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"kind":       true,
}

// IsProtectedField reports whether a field is managed by the system
func IsProtectedField(name string) bool {
	return protectedFields[name]
}

// Apply writes the given fields into the entity. Protected and unknown keys
// are skipped; the names of the applied fields are returned.
func (e *Entity) Apply(fields FieldMap) ([]string, error) {
	known := make(map[string]bool)
	for _, name := range FieldNames(e.Kind) {
		known[name] = true
	}

	var applied []string
	for name, value := range fields {
		if protectedFields[name] || !known[name] {
			continue
		}
		if err := e.set(name, value); err != nil {
			return applied, fmt.Errorf("field %s: %w", name, err)
		}
		applied = append(applied, name)
	}
	return applied, nil
}

func (e *Entity) set(name string, value any) error {
	var err error
	switch name {
	case "name":
		s, ok := value.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return fmt.Errorf("name must be a non-empty string")
		}
		e.Name = s
	case "country_code":
		e.CountryCode, err = toString(value)
	case "website_url":
		e.WebsiteURL, err = toString(value)
	case "notes":
		e.Notes, err = toString(value)
	case "status":
		e.Status, err = toString(value)
	case "park_id":
		e.ParkID, err = toString(value)
	case "manufacturer_id":
		e.ManufacturerID, err = toString(value)
	case "opening_year":
		e.OpeningYear, err = toInt(value)
	case "opening_month":
		e.OpeningMonth, err = toInt(value)
	case "opening_day":
		e.OpeningDay, err = toInt(value)
	case "latitude":
		e.Latitude, err = toFloat(value)
	case "longitude":
		e.Longitude, err = toFloat(value)
	case "height_m":
		e.HeightM, err = toFloat(value)
	case "speed_kmh":
		e.SpeedKmh, err = toFloat(value)
	}
	return err
}

// ParseFieldValue converts text such as a command-line value into the typed
// value of a field. Blank and "null" clear optional fields; country names
// and codes are normalized.
func ParseFieldValue(kind Kind, name, raw string) (any, error) {
	if !HasField(kind, name) {
		return nil, fmt.Errorf("unknown %s field: %q", kind, name)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		if name == "name" {
			return nil, fmt.Errorf("name cannot be cleared")
		}
		return nil, nil
	}

	switch name {
	case "country_code":
		code := NormalizeCountry(raw)
		if code == nil {
			return nil, fmt.Errorf("unknown country: %q", raw)
		}
		return *code, nil
	case "opening_year", "opening_month", "opening_day":
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%s must be an integer, got %q", name, raw)
		}
		if (name == "opening_month" && (n < 1 || n > 12)) || (name == "opening_day" && (n < 1 || n > 31)) {
			return nil, fmt.Errorf("%s out of range: %d", name, n)
		}
		return n, nil
	case "latitude", "longitude", "height_m", "speed_kmh":
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%s must be a number, got %q", name, raw)
		}
		if (name == "latitude" && math.Abs(f) > 90) || (name == "longitude" && math.Abs(f) > 180) {
			return nil, fmt.Errorf("%s out of range: %v", name, f)
		}
		return f, nil
	default:
		return raw, nil
	}
}

// ParseAssignments parses "field=value" pairs with ParseFieldValue.
// A later assignment to the same field wins.
func ParseAssignments(kind Kind, pairs []string) (FieldMap, error) {
	fields := make(FieldMap, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("expected field=value, got %q", pair)
		}
		value, err := ParseFieldValue(kind, name, raw)
		if err != nil {
			return nil, err
		}
		fields[name] = value
	}
	return fields, nil
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func toString(v any) (*string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return &t, nil
	default:
		return nil, fmt.Errorf("expected string, got %T", v)
	}
}

// toInt accepts ints and whole JSON numbers, which decode as float64 or json.Number
func toInt(v any) (*int, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case int:
		return &t, nil
	case int64:
		n := int(t)
		return &n, nil
	case float64:
		if t != math.Trunc(t) {
			return nil, fmt.Errorf("expected integer, got %v", t)
		}
		n := int(t)
		return &n, nil
	case json.Number:
		i, err := t.Int64()
		if err != nil {
			return nil, fmt.Errorf("expected integer, got %s", t)
		}
		n := int(i)
		return &n, nil
	default:
		return nil, fmt.Errorf("expected integer, got %T", v)
	}
}

func toFloat(v any) (*float64, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case float64:
		return &t, nil
	case float32:
		f := float64(t)
		return &f, nil
	case int:
		f := float64(t)
		return &f, nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("expected number, got %s", t)
		}
		return &f, nil
	default:
		return nil, fmt.Errorf("expected number, got %T", v)
	}
}

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}
