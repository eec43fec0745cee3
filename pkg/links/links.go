// Package links selects which same-site pages are worth fetching after the
// current one: contact-ish pages first, then shallow paths, then document
// order.
package links

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/publicsuffix"

	"contact-scraper/pkg/validate"
)

const (
	maxAnchorsConsidered = 100 // anchors examined per page
	maxCandidates        = 50  // candidates returned per page
	maxHrefLen           = 500
)

// Score buckets: lower sorts first. Keyword-matched links beat blind probes of
// well-known paths, which beat everything else ordered by path depth.
const (
	scoreKeyword   = 0
	scoreKnownPath = 1
	scoreDepthBase = 10
	maxDepthScored = 9
)

var contactKeywords = []string{
	"contact", "kontakt", "about", "team", "staff", "support",
	"help", "imprint", "impressum", "legal",
}

// wellKnownPaths are probed even when no link advertises them, rooted at the
// site origin.
var wellKnownPaths = []string{
	"/contact", "/contact-us", "/contactus", "/about", "/about-us",
	"/team", "/support", "/impressum", "/imprint",
}

var skipExtensions = map[string]struct{}{
	".pdf": {}, ".doc": {}, ".docx": {}, ".xls": {}, ".xlsx": {}, ".ppt": {},
	".pptx": {}, ".zip": {}, ".rar": {}, ".tar": {}, ".gz": {}, ".7z": {},
	".exe": {}, ".dmg": {}, ".pkg": {}, ".msi": {}, ".jpg": {}, ".jpeg": {},
	".png": {}, ".gif": {}, ".svg": {}, ".webp": {}, ".ico": {}, ".bmp": {},
	".mp3": {}, ".mp4": {}, ".avi": {}, ".mov": {}, ".webm": {}, ".css": {},
	".js": {}, ".json": {}, ".xml": {}, ".woff": {}, ".woff2": {}, ".ttf": {},
}

var skipPathFragments = []string{
	"/blog", "/news", "/articles", "/posts", "/products", "/shop", "/store",
	"/cart", "/checkout", "/login", "/signin", "/register", "/signup",
	"/auth", "/search", "/tag/", "/category", "/archive", "/wp-content",
	"/wp-includes", "/wp-admin", "/wp-json", "/static", "/assets", "/images",
	"/css", "/js", "/fonts", "/api/", "/feed", "/rss", "/sitemap",
}

// Candidate is one rankable next-page URL.
type Candidate struct {
	URL   string
	Score int
}

// Prioritizer ranks a page's outbound links for one target site.
type Prioritizer struct {
	seedDomain string
	log        *logrus.Entry
}

// NewPrioritizer builds a Prioritizer scoped to the seed's registrable domain.
func NewPrioritizer(seed *url.URL, log *logrus.Entry) *Prioritizer {
	return &Prioritizer{
		seedDomain: RegistrableDomain(seed.Hostname()),
		log:        log,
	}
}

// RegistrableDomain reduces a hostname to its eTLD+1 using the public suffix
// list, falling back to the last two labels when the host isn't listed.
func RegistrableDomain(host string) string {
	host = strings.ToLower(host)
	if d, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return d
	}
	parts := strings.Split(host, ".")
	if len(parts) >= 2 {
		return strings.Join(parts[len(parts)-2:], ".")
	}
	return host
}

// Rank extracts the page's outbound links and returns scored, deduplicated
// candidates restricted to the seed's registrable domain. visited filters
// already-fetched (or already-queued) URLs by dedup key.
func (p *Prioritizer) Rank(doc *goquery.Document, pageURL *url.URL, visited func(string) bool) []Candidate {
	var candidates []Candidate
	seen := make(map[string]struct{})
	examined := 0

	doc.Find("a[href]").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		examined++
		if examined > maxAnchorsConsidered {
			return false
		}

		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || len(href) > maxHrefLen {
			return true
		}
		if strings.HasPrefix(href, "#") || hasIgnoredScheme(href) {
			return true
		}

		linkURL, err := pageURL.Parse(href)
		if err != nil {
			p.log.WithField("href", href).Debugf("Skipping unparseable link: %v", err)
			return true
		}
		if linkURL.Scheme != "http" && linkURL.Scheme != "https" {
			return true
		}
		if RegistrableDomain(linkURL.Hostname()) != p.seedDomain {
			return true
		}
		if shouldSkipPath(linkURL.Path) {
			return true
		}

		key := validate.DedupKey(linkURL.String())
		if _, dup := seen[key]; dup {
			return true
		}
		if visited != nil && visited(key) {
			return true
		}
		seen[key] = struct{}{}

		linkURL.Fragment = ""
		candidates = append(candidates, Candidate{
			URL:   linkURL.String(),
			Score: scoreLink(linkURL, sel.Text()),
		})
		return len(candidates) < maxCandidates
	})

	return candidates
}

// KnownPaths returns candidates for the well-known contact locations rooted
// at the seed origin, skipping any the crawl has already seen.
func (p *Prioritizer) KnownPaths(seed *url.URL, visited func(string) bool) []Candidate {
	origin := url.URL{Scheme: seed.Scheme, Host: seed.Host}
	var out []Candidate
	for _, path := range wellKnownPaths {
		u := origin.String() + path
		key := validate.DedupKey(u)
		if visited != nil && visited(key) {
			continue
		}
		out = append(out, Candidate{URL: u, Score: scoreKnownPath})
	}
	return out
}

func scoreLink(u *url.URL, anchorText string) int {
	haystack := strings.ToLower(u.Path + " " + anchorText)
	for _, kw := range contactKeywords {
		if strings.Contains(haystack, kw) {
			return scoreKeyword
		}
	}
	depth := strings.Count(strings.Trim(u.Path, "/"), "/")
	if depth > maxDepthScored {
		depth = maxDepthScored
	}
	return scoreDepthBase + depth
}

func hasIgnoredScheme(href string) bool {
	lower := strings.ToLower(href)
	for _, prefix := range []string{"javascript:", "mailto:", "tel:", "data:", "ftp:"} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

func shouldSkipPath(path string) bool {
	lower := strings.ToLower(path)
	if dot := strings.LastIndex(lower, "."); dot != -1 && !strings.Contains(lower[dot:], "/") {
		if _, skip := skipExtensions[lower[dot:]]; skip {
			return true
		}
	}
	for _, frag := range skipPathFragments {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}
