package extract

import (
	"testing"

	"contact-scraper/pkg/models"
)

func TestAccumulator_MergesAndDedups(t *testing.T) {
	acc := NewAccumulator()
	acc.Add(models.Contacts{
		Emails: []string{"info@acme.com", "sales@acme.com"},
		Phones: []models.Phone{{E164: "+15551234567", Formatted: "+1 555-123-4567", Original: "555-123-4567"}},
		Social: map[string][]models.SocialProfile{
			"twitter": {{Platform: "twitter", Username: "acmeco", URL: "https://twitter.com/acmeco"}},
		},
	})
	acc.Add(models.Contacts{
		Emails: []string{"info@acme.com", "jobs@acme.com"},
		Phones: []models.Phone{
			{E164: "+15551234567", Formatted: "+1 (555) 123-4567", Original: "+1 (555) 123-4567"},
			{E164: "+15559876543", Formatted: "+1 555-987-6543", Original: "555-987-6543"},
		},
		WhatsApp: []models.WhatsApp{{Number: "15551234567", Link: "https://wa.me/15551234567"}},
		Social: map[string][]models.SocialProfile{
			"twitter": {{Platform: "twitter", Username: "acmeco", URL: "https://twitter.com/acmeco"}},
		},
		Names: []string{"John Doe"},
	})

	got := acc.Contacts()
	assertStrings(t, got.Emails, []string{"info@acme.com", "jobs@acme.com", "sales@acme.com"})
	if len(got.Phones) != 2 {
		t.Errorf("phones = %+v", got.Phones)
	}
	if len(got.Phones) > 0 && got.Phones[0].E164 != "+15551234567" {
		t.Errorf("first-seen order lost: %+v", got.Phones)
	}
	if len(got.WhatsApp) != 1 {
		t.Errorf("whatsapp = %+v", got.WhatsApp)
	}
	if len(got.Social["twitter"]) != 1 {
		t.Errorf("social = %+v", got.Social)
	}
	assertStrings(t, got.Names, []string{"John Doe"})
}

func TestAccumulator_Empty(t *testing.T) {
	got := NewAccumulator().Contacts()
	if len(got.Emails) != 0 || len(got.Phones) != 0 || got.Social != nil {
		t.Errorf("empty accumulator produced %+v", got)
	}
}
