// Package extract contains the entity extractors: pure functions from
// pre-truncated page content to deduplicated, typed contact entities. No
// extractor performs I/O, and every pattern here is matched by Go's RE2
// engine, which guarantees linear-time behavior on arbitrary input. Where a
// naive pattern would need ambiguous nested repetition (phone candidate
// windows), a hand-rolled linear scan bounds the candidate substring first
// and the strict pattern only runs on that window.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MaxInputBytes caps the content any extractor will look at. The cap bounds
// worst-case matching cost regardless of how large a page the fetcher let
// through.
const MaxInputBytes = 500 * 1024

const maxTitleLen = 200

// CapInput truncates content to MaxInputBytes.
func CapInput(s string) string {
	if len(s) > MaxInputBytes {
		return s[:MaxInputBytes]
	}
	return s
}

// VisibleText reduces an HTML document to the text a visitor would see, plus
// the page title. Script, style, noscript, iframe and svg subtrees are
// dropped first so asset URLs and inline JS don't pollute the extractors.
// Malformed HTML degrades to whatever the lenient parser recovered.
func VisibleText(htmlStr string) (text, title string) {
	htmlStr = CapInput(htmlStr)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		// The net/html parser is lenient enough that this is close to
		// unreachable; fall back to the raw input rather than dropping the page.
		return collapseWhitespace(htmlStr), ""
	}

	doc.Find("script, style, noscript, iframe, svg").Remove()

	title = strings.TrimSpace(doc.Find("title").First().Text())
	if len(title) > maxTitleLen {
		title = title[:maxTitleLen]
	}

	body := doc.Find("body")
	if body.Length() > 0 {
		text = body.Text()
	} else {
		text = doc.Text()
	}
	text = collapseWhitespace(text)
	if len(text) > MaxInputBytes {
		text = text[:MaxInputBytes]
	}
	return text, title
}

// collapseWhitespace squeezes runs of whitespace into single spaces. Single
// linear pass; extractor patterns rely on separators being plain spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
