package extract

import (
	"strings"
	"testing"
	"time"
)

func TestExtractEmails_PlainAndMailto(t *testing.T) {
	text := "Reach us at john@acme-widgets.com or support@acme-widgets.co.uk."
	html := `<a href="mailto:Sales@acme-widgets.com?subject=Hi">Email sales</a>`

	got := ExtractEmails(text, html)
	want := []string{"john@acme-widgets.com", "sales@acme-widgets.com", "support@acme-widgets.co.uk"}
	assertStrings(t, got, want)
}

func TestExtractEmails_Obfuscated(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"bracketed", "info [at] acme [dot] com", []string{"info@acme.com"}},
		{"parenthesized", "support(at)acme(dot)com", []string{"support@acme.com"}},
		{"spelled out", "write to jane at acme dot com today", []string{"jane@acme.com"}},
		{"prose is not an address", "reach us at acme.com for details", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertStrings(t, ExtractEmails(tt.text, ""), tt.want)
		})
	}
}

func TestExtractEmails_FiltersFalsePositives(t *testing.T) {
	text := strings.Join([]string{
		"logo@2x.png",
		"noreply@acme.com",
		"12345@acme.com",
		"admin@example.com",
		"style@main.css",
		"errors@sentry.io",
		"real@acme.com",
	}, " ")

	assertStrings(t, ExtractEmails(text, ""), []string{"real@acme.com"})
}

func TestExtractEmails_DedupAndCase(t *testing.T) {
	text := "John@Acme.com JOHN@ACME.COM john@acme.com"
	assertStrings(t, ExtractEmails(text, ""), []string{"john@acme.com"})
}

func TestExtractEmails_Cap(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 200; i++ {
		b.WriteString("user")
		b.WriteByte(byte('a' + i%26))
		b.WriteByte(byte('a' + (i/26)%26))
		b.WriteString("@acme.com ")
	}
	got := ExtractEmails(b.String(), "")
	if len(got) != maxEmails {
		t.Errorf("got %d emails, want cap %d", len(got), maxEmails)
	}
}

func TestExtractEmails_AdversarialInputTerminates(t *testing.T) {
	junk := strings.Repeat("a", 100_000) + "@" + strings.Repeat("b", 100_000)
	start := time.Now()
	got := ExtractEmails(junk, junk)
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("extraction took %v on adversarial input", elapsed)
	}
	if len(got) != 0 {
		t.Errorf("expected no emails, got %v", got)
	}
}

func assertStrings(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
