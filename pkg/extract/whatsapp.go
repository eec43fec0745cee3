package extract

import (
	"regexp"

	"contact-scraper/pkg/models"
)

const (
	maxWhatsApp       = 20
	minWhatsAppDigits = 10
)

// Link shapes: wa.me/<number>, api/web.whatsapp.com/send?phone=<number> (with
// other query parameters tolerated on either side), and the whatsapp:// deep
// link. The context pattern catches numbers written next to the word WhatsApp.
var (
	waPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?wa\.me/\+?(\d{6,15})`),
		regexp.MustCompile(`(?i)(?:https?://)?(?:api|web)\.whatsapp\.com/send/?\?(?:[^"'<>\s&]*&)*phone=(?:%2B|\+)?(\d{6,15})`),
		regexp.MustCompile(`(?i)whatsapp://send\?phone=(?:%2B|\+)?(\d{6,15})`),
	}
	waContextRe = regexp.MustCompile(`(?i)(?:whatsapp|wsp)[\s:]{1,4}\+?(\d{10,15})`)
)

// ExtractWhatsApp finds WhatsApp contact links in text and HTML. The bare
// number is the canonical form; the returned link is always the wa.me form.
func ExtractWhatsApp(text, html string) []models.WhatsApp {
	combined := text + " " + html
	var out []models.WhatsApp
	seen := make(map[string]struct{})

	add := func(number string) {
		if len(number) < minWhatsAppDigits {
			return
		}
		if _, dup := seen[number]; dup {
			return
		}
		seen[number] = struct{}{}
		out = append(out, models.WhatsApp{
			Number: number,
			Link:   "https://wa.me/" + number,
		})
	}

	for _, re := range waPatterns {
		for _, m := range re.FindAllStringSubmatch(combined, maxWhatsApp*4) {
			add(m[1])
		}
	}
	for _, m := range waContextRe.FindAllStringSubmatch(combined, maxWhatsApp*4) {
		add(m[1])
	}

	if len(out) > maxWhatsApp {
		out = out[:maxWhatsApp]
	}
	return out
}
