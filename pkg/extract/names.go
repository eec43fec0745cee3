package extract

import (
	"regexp"
	"sort"
	"strings"
)

const maxNames = 10

// Name recognition is best-effort and only run against likely contact-page
// content (the caller gates on that). Patterns anchor on role words so bare
// capitalized phrases elsewhere in the copy don't flood the results.
var (
	roleBeforeRe = regexp.MustCompile(`(?:[Cc]ontact|[Mm]anager|[Oo]wner|[Ff]ounder|CEO|[Dd]irector|[Aa]uthor|[Bb]y)[:\s] {0,3}([A-Z][a-z]+(?: [A-Z][a-z]+){1,2})`)
	roleAfterRe  = regexp.MustCompile(`([A-Z][a-z]+(?: [A-Z][a-z]+){1,2}) {0,3},? {0,3}(?:CEO|[Ff]ounder|[Oo]wner|[Mm]anager|[Dd]irector|[Pp]resident)`)

	metaAuthorRe  = regexp.MustCompile(`(?i)<meta[^>]{0,300}name=["'](?:author|contact)["'][^>]{0,300}content=["']([^"'<>]{3,50})["']`)
	classedNameRe = regexp.MustCompile(`(?i)class=["'][^"'<>]{0,80}(?:author|contact-name|team-member-name)[^"'<>]{0,80}["'][^<>]{0,120}>([^<>]{3,50})<`)
)

var nameStopWords = map[string]struct{}{
	"contact": {}, "about": {}, "home": {}, "page": {}, "site": {}, "website": {},
	"email": {}, "phone": {}, "address": {}, "company": {}, "business": {},
	"service": {}, "services": {}, "product": {}, "products": {}, "privacy": {},
	"policy": {}, "terms": {}, "conditions": {}, "copyright": {}, "rights": {},
	"reserved": {}, "loading": {}, "please": {}, "wait": {}, "click": {},
	"here": {}, "read": {}, "more": {}, "learn": {}, "view": {}, "all": {},
	"see": {}, "get": {}, "started": {}, "subscribe": {}, "newsletter": {},
	"follow": {}, "share": {}, "social": {}, "media": {}, "our": {}, "the": {},
	"team": {}, "us": {},
}

// ExtractNames pulls likely person names out of contact-page text and HTML
// metadata. Lower precision than the other extractors is expected.
func ExtractNames(text, html string) []string {
	seen := make(map[string]struct{})

	add := func(name string) {
		name = strings.Join(strings.Fields(name), " ")
		if !isValidName(name) {
			return
		}
		seen[name] = struct{}{}
	}

	for _, m := range roleBeforeRe.FindAllStringSubmatch(text, maxNames*4) {
		add(m[1])
	}
	for _, m := range roleAfterRe.FindAllStringSubmatch(text, maxNames*4) {
		add(m[1])
	}
	for _, m := range metaAuthorRe.FindAllStringSubmatch(html, maxNames) {
		add(m[1])
	}
	for _, m := range classedNameRe.FindAllStringSubmatch(html, maxNames*2) {
		add(m[1])
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	if len(names) > maxNames {
		names = names[:maxNames]
	}
	return names
}

func isValidName(name string) bool {
	if len(name) < 3 || len(name) > 50 {
		return false
	}
	words := strings.Fields(name)
	if len(words) < 1 || len(words) > 4 {
		return false
	}
	hasUpper := false
	for _, w := range words {
		if _, stop := nameStopWords[strings.ToLower(w)]; stop {
			return false
		}
		for _, r := range w {
			if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
				return false
			}
		}
		if w[0] >= 'A' && w[0] <= 'Z' {
			hasUpper = true
		}
	}
	return hasUpper
}
