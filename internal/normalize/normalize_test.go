package normalize

import (
	"testing"

	"jobfeed-engine/internal/domain"
)

func TestCleanValue(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Acme Corp", "Acme Corp"},
		{"empty", "", Unknown},
		{"whitespace only", "   ", Unknown},
		{"nan placeholder", "NaN", Unknown},
		{"n/a placeholder", "n/a", Unknown},
		{"collapses whitespace", "  Junior   Developer ", "Junior Developer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanValue(tt.in); got != tt.want {
				t.Errorf("CleanValue(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRecordDefaultsMissingFields(t *testing.T) {
	rec := Record(domain.RawListing{URL: "https://example.com/job/1"})

	if rec.Title != Unknown || rec.Company != Unknown || rec.Location != Unknown || rec.SourceSite != Unknown {
		t.Errorf("missing fields should default to %q, got %+v", Unknown, rec)
	}
	if rec.ID == "" {
		t.Error("record id should never be empty")
	}
}

func TestRecordIDStable(t *testing.T) {
	a := Record(domain.RawListing{URL: "https://Example.com/job/42?utm_source=feed"})
	b := Record(domain.RawListing{URL: "https://example.com/job/42"})
	if a.ID != b.ID {
		t.Errorf("equivalent URLs should share an id: %s vs %s", a.ID, b.ID)
	}

	c := Record(domain.RawListing{URL: "https://example.com/job/43"})
	if a.ID == c.ID {
		t.Error("distinct URLs should not collide")
	}
}

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"strips tracking params and fragment",
			"https://example.com/job/1?utm_source=x&gclid=abc#apply",
			"https://example.com/job/1",
		},
		{
			"lowercases scheme and host",
			"HTTPS://Jobs.Example.COM/listing",
			"https://jobs.example.com/listing",
		},
		{
			"orders query deterministically",
			"https://example.com/s?b=2&a=1",
			"https://example.com/s?a=1&b=2",
		},
		{"empty", "  ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanonicalURL(tt.in); got != tt.want {
				t.Errorf("CanonicalURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSignature(t *testing.T) {
	if Signature(" Junior  Developer ", "ACME") != Signature("junior developer", "acme") {
		t.Error("signature should ignore case and spacing")
	}
	if Signature("Développeur", "Société") != Signature("Developpeur", "Societe") {
		t.Error("signature should fold diacritics")
	}
	if Signature("Dev", "Acme") == Signature("Dev", "Other") {
		t.Error("different companies must not share a signature")
	}
}

func TestSignatureSeparatorStaysInsideFields(t *testing.T) {
	// a literal separator in a field must not shift the title/company
	// boundary
	if Signature("a|b", "c") == Signature("a", "b|c") {
		t.Error("pipe in a field must not collide across the boundary")
	}
	if Signature("Dev|Ops Engineer", "Acme") != Signature("Dev Ops Engineer", "Acme") {
		t.Error("pipe should fold to a plain separator inside a field")
	}
}
