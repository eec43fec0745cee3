package extract

import (
	"regexp"
	"strings"

	"contact-scraper/pkg/models"
)

const maxSocialPerPlatform = 20

// platformDef describes one supported platform: patterns capturing the
// username and the base URL used to build the canonical profile link.
// Patterns tolerate mobile subdomains (m., mobile.) and country variants;
// share/intent/login-style URLs are dropped by post-filtering since RE2 has
// no lookahead.
type platformDef struct {
	name     string
	baseURL  string
	patterns []*regexp.Regexp
}

var platforms = []platformDef{
	{
		name:    "facebook",
		baseURL: "https://facebook.com/",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:https?://)?(?:(?:www|m|mobile|[a-z]{2}(?:-[a-z]{2})?)\.)?(?:facebook|fb)\.com/([a-zA-Z0-9._-]{2,50})`),
			regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?fb\.me/([a-zA-Z0-9._-]{2,50})`),
		},
	},
	{
		name:    "twitter",
		baseURL: "https://twitter.com/",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:https?://)?(?:(?:www|m|mobile)\.)?(?:twitter|x)\.com/@?([a-zA-Z0-9_]{2,15})`),
		},
	},
	{
		name:    "linkedin",
		baseURL: "https://linkedin.com/in/",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:https?://)?(?:(?:www|m|[a-z]{2})\.)?linkedin\.com/(?:in|company|school)/([a-zA-Z0-9%._-]{2,60})`),
		},
	},
	{
		name:    "instagram",
		baseURL: "https://instagram.com/",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:https?://)?(?:(?:www|m)\.)?instagram\.com/([a-zA-Z0-9._]{2,30})`),
		},
	},
	{
		name:    "youtube",
		baseURL: "https://youtube.com/",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:https?://)?(?:(?:www|m)\.)?youtube\.com/(?:c/|channel/|user/|@)([a-zA-Z0-9._-]{2,60})`),
		},
	},
	{
		name:    "tiktok",
		baseURL: "https://tiktok.com/@",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:https?://)?(?:(?:www|m)\.)?tiktok\.com/@([a-zA-Z0-9._]{2,30})`),
		},
	},
	{
		name:    "pinterest",
		baseURL: "https://pinterest.com/",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:https?://)?(?:(?:www|[a-z]{2})\.)?pinterest\.(?:com|[a-z]{2}(?:\.[a-z]{2})?)/([a-zA-Z0-9_]{2,30})`),
		},
	},
	{
		name:    "github",
		baseURL: "https://github.com/",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?github\.com/([a-zA-Z0-9-]{2,39})`),
		},
	},
	{
		name:    "telegram",
		baseURL: "https://t.me/",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?(?:t|telegram)\.me/([a-zA-Z0-9_]{4,32})`),
		},
	},
}

// Path segments that are platform features, not usernames.
var reservedUsernames = map[string]struct{}{
	"share": {}, "sharer": {}, "intent": {}, "dialog": {}, "login": {},
	"signup": {}, "register": {}, "home": {}, "about": {}, "contact": {},
	"help": {}, "support": {}, "terms": {}, "privacy": {}, "legal": {},
	"policies": {}, "settings": {}, "notifications": {}, "messages": {},
	"search": {}, "explore": {}, "trending": {}, "hashtag": {}, "watch": {},
	"feed": {}, "stories": {}, "reels": {}, "events": {}, "groups": {},
	"pages": {}, "marketplace": {}, "accounts": {}, "i": {}, "p": {},
	"js": {}, "css": {}, "images": {}, "static": {}, "assets": {}, "api": {},
	"plugins": {}, "embed": {}, "oauth": {}, "pin": {}, "wp-content": {},
}

var sharePathFragments = []string{"/share", "/sharer", "/intent", "/login", "/dialog", "/oauth"}

// ExtractSocial finds social profile links, grouped by platform. Canonical
// form is platform plus lowercased username; the returned URL is rebuilt from
// the platform base so mobile and country variants collapse together.
func ExtractSocial(text, html string) map[string][]models.SocialProfile {
	combined := text + " " + html
	result := make(map[string][]models.SocialProfile)

	for _, p := range platforms {
		seen := make(map[string]struct{})
		for _, re := range p.patterns {
			for _, m := range re.FindAllStringSubmatch(combined, maxSocialPerPlatform*6) {
				full := m[0]
				username := strings.ToLower(strings.Trim(m[1], "./"))

				if len(username) < 2 {
					continue
				}
				if _, reserved := reservedUsernames[username]; reserved {
					continue
				}
				if isShareURL(full) {
					continue
				}
				if _, dup := seen[username]; dup {
					continue
				}
				seen[username] = struct{}{}

				result[p.name] = append(result[p.name], models.SocialProfile{
					Platform: p.name,
					Username: username,
					URL:      p.baseURL + username,
				})
			}
		}
		if profiles := result[p.name]; len(profiles) > maxSocialPerPlatform {
			result[p.name] = profiles[:maxSocialPerPlatform]
		}
	}
	return result
}

func isShareURL(matched string) bool {
	lower := strings.ToLower(matched)
	for _, frag := range sharePathFragments {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}
