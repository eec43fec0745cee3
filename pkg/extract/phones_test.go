package extract

import (
	"strings"
	"testing"
	"time"
)

func TestExtractPhones_USFormats(t *testing.T) {
	text := "Call +1 (555) 123-4567 or fax 555-123-4568."
	got := ExtractPhones(text, "US")
	if len(got) != 2 {
		t.Fatalf("got %d phones, want 2: %+v", len(got), got)
	}
	if got[0].E164 != "+15551234567" {
		t.Errorf("E164 = %q, want +15551234567", got[0].E164)
	}
	if got[0].Original != "+1 (555) 123-4567" {
		t.Errorf("Original = %q", got[0].Original)
	}
	if got[1].E164 != "+15551234568" {
		t.Errorf("E164 = %q, want +15551234568", got[1].E164)
	}
}

func TestExtractPhones_DedupAcrossFormats(t *testing.T) {
	text := "Phone: +1 (555) 123-4567. Or dial 555-123-4567 / 555.123.4567."
	got := ExtractPhones(text, "US")
	if len(got) != 1 {
		t.Fatalf("got %d phones, want 1: %+v", len(got), got)
	}
	if got[0].E164 != "+15551234567" {
		t.Errorf("E164 = %q", got[0].E164)
	}
}

func TestExtractPhones_RegionHint(t *testing.T) {
	got := ExtractPhones("Ring 020 7946 0958 during office hours.", "GB")
	if len(got) != 1 {
		t.Fatalf("got %d phones, want 1: %+v", len(got), got)
	}
	if got[0].E164 != "+442079460958" {
		t.Errorf("E164 = %q, want +442079460958", got[0].E164)
	}
}

func TestExtractPhones_RejectsDatesAndVersions(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"iso date", "Published 2024-01-15 by the team"},
		{"slash date", "Updated 15/01/2024 at noon"},
		{"ip address", "Server at 192.168.1.5 responded"},
		{"dotted sequence", "Build 10.20.30.40 is out"},
		{"short number", "Room 12345"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractPhones(tt.text, "US"); len(got) != 0 {
				t.Errorf("got %+v, want none", got)
			}
		})
	}
}

func TestExtractPhones_DateAdjacentToNumber(t *testing.T) {
	// A timestamp touching the number merges into its candidate window; the
	// date affix must be split off instead of sinking the whole candidate.
	tests := []struct {
		name string
		text string
	}{
		{"date before", "Updated 2024-01-15 +1 (555) 123-4567"},
		{"date after", "Call +1 (555) 123-4567 2024-01-15"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractPhones(tt.text, "US")
			if len(got) != 1 {
				t.Fatalf("got %d phones, want 1: %+v", len(got), got)
			}
			if got[0].E164 != "+15551234567" {
				t.Errorf("E164 = %q, want +15551234567", got[0].E164)
			}
		})
	}
}

func TestExtractPhones_FallbackForUnknownPlans(t *testing.T) {
	// Invalid country code, so libphonenumber rejects it, but the shape is
	// still clearly a written phone number.
	got := ExtractPhones("Satellite line: +999 123 456 789", "US")
	if len(got) != 1 {
		t.Fatalf("got %d phones, want 1: %+v", len(got), got)
	}
	if got[0].E164 != "+999123456789" {
		t.Errorf("E164 = %q", got[0].E164)
	}
}

func TestExtractPhones_DigitFloodTerminates(t *testing.T) {
	flood := strings.Repeat("5", 200_000)
	start := time.Now()
	got := ExtractPhones(flood, "US")
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("scan took %v on digit flood", elapsed)
	}
	if len(got) != 0 {
		t.Errorf("digit flood produced %d phones", len(got))
	}
}

func TestExtractPhones_ManyCandidatesStayBounded(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 500; i++ {
		b.WriteString("call 555-000-")
		b.WriteByte(byte('1' + i%9))
		b.WriteString("234 now ")
	}
	start := time.Now()
	got := ExtractPhones(b.String(), "US")
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("scan took %v", elapsed)
	}
	if len(got) > maxPhones {
		t.Errorf("got %d phones, cap is %d", len(got), maxPhones)
	}
}

func TestPhoneCandidates_WindowBound(t *testing.T) {
	// One oversized run is skipped whole; the neighboring number survives.
	text := strings.Repeat("1", 40) + " then 555-123-4567"
	cands := phoneCandidates(text)
	if len(cands) != 1 || cands[0] != "555-123-4567" {
		t.Fatalf("candidates = %v", cands)
	}
}
