package extract

import (
	"regexp"
	"sort"
	"strings"
)

const maxEmails = 50

var (
	emailRe  = regexp.MustCompile(`[a-zA-Z0-9!#$%&'*+/=?^_` + "`" + `{|}~.-]+@[a-zA-Z0-9](?:[a-zA-Z0-9.-]*[a-zA-Z0-9])?\.[a-zA-Z]{2,}`)
	mailtoRe = regexp.MustCompile(`(?i)mailto:([^"'<>\s?]+)`)

	// Obfuscated forms: "user [at] domain [dot] com", "user(at)domain(dot)com"
	// and the fully spelled-out "user at domain dot com". The bracketed variant
	// accepts '.' for the dot; the bare-word variant requires both words spelled
	// out so ordinary prose ("reach us at acme.com") doesn't produce addresses.
	// Separator gaps are bounded so a match window can't sprawl.
	obfuscatedBracketRe = regexp.MustCompile(`(?i)([a-zA-Z0-9._%+-]+) {0,3}[\[\(] {0,3}at {0,3}[\]\)] {0,3}([a-zA-Z0-9-]+(?:\.[a-zA-Z0-9-]+)*) {0,3}(?:[\[\(] {0,3}dot {0,3}[\]\)]|\.) {0,3}([a-zA-Z]{2,})`)
	obfuscatedWordRe    = regexp.MustCompile(`(?i)\b([a-zA-Z0-9._%+-]+) at ([a-zA-Z0-9-]+(?:\.[a-zA-Z0-9-]+)*) dot ([a-zA-Z]{2,})\b`)

	numericLocalRe = regexp.MustCompile(`^[0-9]+@`)
)

// Asset and mailbox filters: things shaped like emails that never are.
var (
	assetExtensions = []string{
		".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".ico",
		".css", ".js", ".woff", ".woff2", ".ttf", ".eot",
	}
	systemMailboxes = []string{
		"noreply@", "no-reply@", "donotreply@", "do-not-reply@",
		"mailer-daemon@", "postmaster@",
	}
	placeholderDomains = []string{
		"@example.com", "@example.org", "@test.com", "@localhost", "@127.0.0.1",
		"@domain.com", "@email.com", "@yourdomain.com", "@sentry.io",
	}
)

// ExtractEmails pulls email addresses out of visible text and raw HTML.
// HTML is scanned for mailto: links and direct matches (addresses often live
// in href attributes the text pass never sees). Results are lowercased,
// deduplicated, filtered for the usual false positives and capped.
func ExtractEmails(text, html string) []string {
	seen := make(map[string]struct{})

	add := func(email string) {
		email = strings.ToLower(strings.TrimSpace(strings.Trim(email, ".,;:")))
		if !isValidEmail(email) {
			return
		}
		seen[email] = struct{}{}
	}

	for _, m := range emailRe.FindAllString(text, maxEmails*4) {
		add(m)
	}
	for _, m := range emailRe.FindAllString(html, maxEmails*4) {
		add(m)
	}
	for _, m := range mailtoRe.FindAllStringSubmatch(html, maxEmails*4) {
		add(m[1])
	}
	for _, m := range obfuscatedBracketRe.FindAllStringSubmatch(text, maxEmails*4) {
		add(m[1] + "@" + m[2] + "." + m[3])
	}
	for _, m := range obfuscatedWordRe.FindAllStringSubmatch(text, maxEmails*4) {
		add(m[1] + "@" + m[2] + "." + m[3])
	}

	emails := make([]string, 0, len(seen))
	for e := range seen {
		emails = append(emails, e)
	}
	sort.Strings(emails)
	if len(emails) > maxEmails {
		emails = emails[:maxEmails]
	}
	return emails
}

func isValidEmail(email string) bool {
	if email == "" || len(email) > 254 {
		return false
	}
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return false
	}

	// Image filenames and dimension suffixes (logo@2x.png), asset references.
	for _, ext := range assetExtensions {
		if strings.HasSuffix(email, ext) {
			return false
		}
	}
	for _, prefix := range systemMailboxes {
		if strings.HasPrefix(email, prefix) {
			return false
		}
	}
	for _, suffix := range placeholderDomains {
		if strings.HasSuffix(email, suffix) {
			return false
		}
	}
	if numericLocalRe.MatchString(email) {
		return false
	}

	domain := parts[1]
	dot := strings.LastIndex(domain, ".")
	if dot <= 0 || dot == len(domain)-1 {
		return false
	}
	tld := domain[dot+1:]
	if len(tld) < 2 {
		return false
	}
	for _, r := range tld {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
