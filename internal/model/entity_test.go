package model

import (
	"encoding/json"
	"testing"
)

func TestEntity_FieldsByKind(t *testing.T) {
	park := &Entity{Kind: KindPark, Name: "Efteling", CountryCode: Ptr("NL"), OpeningYear: Ptr(1952)}
	fields := park.Fields()

	if len(fields) != 9 {
		t.Fatalf("Expected 9 park fields, got %d", len(fields))
	}
	if fields["opening_year"] != 1952 {
		t.Errorf("Expected opening_year 1952, got %v", fields["opening_year"])
	}
	if v, ok := fields["opening_month"]; !ok || v != nil {
		t.Errorf("Expected opening_month present and nil, got %v (present=%v)", v, ok)
	}

	mfr := &Entity{Kind: KindManufacturer, Name: "Vekoma"}
	if _, ok := mfr.Fields()["latitude"]; ok {
		t.Error("Manufacturer fields should not include latitude")
	}
}

func TestEntity_ApplySkipsProtectedAndUnknown(t *testing.T) {
	e := &Entity{ID: "abc", Kind: KindManufacturer, Name: "Vekoma"}

	applied, err := e.Apply(FieldMap{
		"id":           "other",
		"created_at":   "2020-01-01",
		"country_code": "NL",
		"latitude":     52.1,
		"bogus":        true,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(applied) != 1 || applied[0] != "country_code" {
		t.Errorf("Expected only country_code applied, got %v", applied)
	}
	if e.ID != "abc" {
		t.Errorf("ID must not change, got %s", e.ID)
	}
	if e.CountryCode == nil || *e.CountryCode != "NL" {
		t.Errorf("Expected country NL, got %v", e.CountryCode)
	}
}

func TestEntity_ApplyCoercesJSONNumbers(t *testing.T) {
	var fields FieldMap
	if err := json.Unmarshal([]byte(`{"opening_year": 1952, "latitude": 51.65, "notes": null}`), &fields); err != nil {
		t.Fatal(err)
	}

	e := &Entity{Kind: KindPark, Name: "Efteling", Notes: Ptr("old")}
	if _, err := e.Apply(fields); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if e.OpeningYear == nil || *e.OpeningYear != 1952 {
		t.Errorf("Expected opening year 1952, got %v", e.OpeningYear)
	}
	if e.Latitude == nil || *e.Latitude != 51.65 {
		t.Errorf("Expected latitude 51.65, got %v", e.Latitude)
	}
	if e.Notes != nil {
		t.Errorf("Expected notes cleared, got %v", *e.Notes)
	}
}

func TestEntity_ApplyRejectsBadTypes(t *testing.T) {
	e := &Entity{Kind: KindPark, Name: "Efteling"}
	if _, err := e.Apply(FieldMap{"opening_year": 1952.5}); err == nil {
		t.Error("Expected error for fractional year")
	}
	if _, err := e.Apply(FieldMap{"name": ""}); err == nil {
		t.Error("Expected error for empty name")
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"park", KindPark, false},
		{" Manufacturer ", KindManufacturer, false},
		{"coaster", KindCoaster, false},
		{"ride", "", true},
	}

	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseKind(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSourcePage_Truncate(t *testing.T) {
	long := make([]rune, MaxProvenanceChars+50)
	for i := range long {
		long[i] = 'é'
	}
	p := &SourcePage{RawHTML: string(long), CleanText: "short"}
	p.Truncate()

	if n := len([]rune(p.RawHTML)); n != MaxProvenanceChars {
		t.Errorf("Expected %d runes, got %d", MaxProvenanceChars, n)
	}
	if p.CleanText != "short" {
		t.Errorf("Short text should be untouched, got %q", p.CleanText)
	}
}

func TestParseFieldValue(t *testing.T) {
	tests := []struct {
		kind Kind
		name string
		raw  string
		want any
	}{
		{KindPark, "opening_year", "1952", 1952},
		{KindPark, "opening_month", " 5 ", 5},
		{KindPark, "latitude", "51.65", 51.65},
		{KindPark, "country_code", "the netherlands", "NL"},
		{KindPark, "notes", "null", nil},
		{KindPark, "website_url", "", nil},
		{KindCoaster, "height_m", "45.5", 45.5},
		{KindCoaster, "status", "operating", "operating"},
		{KindManufacturer, "name", "Vekoma Rides", "Vekoma Rides"},
	}
	for _, tt := range tests {
		got, err := ParseFieldValue(tt.kind, tt.name, tt.raw)
		if err != nil {
			t.Errorf("ParseFieldValue(%s, %s, %q) error: %v", tt.kind, tt.name, tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFieldValue(%s, %s, %q) = %#v, want %#v", tt.kind, tt.name, tt.raw, got, tt.want)
		}
	}

	bad := []struct {
		kind Kind
		name string
		raw  string
	}{
		{KindManufacturer, "latitude", "1"},
		{KindPark, "id", "x"},
		{KindPark, "name", "null"},
		{KindPark, "opening_year", "nineteen"},
		{KindPark, "opening_month", "13"},
		{KindPark, "latitude", "91"},
		{KindPark, "country_code", "xx"},
	}
	for _, tt := range bad {
		if _, err := ParseFieldValue(tt.kind, tt.name, tt.raw); err == nil {
			t.Errorf("ParseFieldValue(%s, %s, %q) expected error", tt.kind, tt.name, tt.raw)
		}
	}
}

func TestParseAssignments(t *testing.T) {
	fields, err := ParseAssignments(KindPark, []string{"opening_year=1950", "notes=Fairy tales, trolls", "opening_year=1951"})
	if err != nil {
		t.Fatalf("ParseAssignments: %v", err)
	}
	if fields["opening_year"] != 1951 {
		t.Errorf("Expected later assignment to win, got %v", fields["opening_year"])
	}
	if fields["notes"] != "Fairy tales, trolls" {
		t.Errorf("Unexpected notes: %v", fields["notes"])
	}

	if _, err := ParseAssignments(KindPark, []string{"opening_year"}); err == nil {
		t.Error("Expected error for missing '='")
	}
}
