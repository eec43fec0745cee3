package models

import "time"

// Phone is a phone number entity. E164 is the canonical form used for
// deduplication when it could be derived; Original preserves the matched text.
type Phone struct {
	E164      string `json:"e164"`
	Formatted string `json:"formatted"`
	Original  string `json:"original"`
}

// WhatsApp is a WhatsApp contact entity keyed by the bare number.
type WhatsApp struct {
	Number string `json:"number"`
	Link   string `json:"link"`
}

// SocialProfile is one profile on a supported platform. The canonical form is
// platform + lowercased username.
type SocialProfile struct {
	Platform string `json:"platform"`
	Username string `json:"username"`
	URL      string `json:"url"`
}

// Contacts holds every entity kind extracted from one page (or merged across
// pages). Slices are deduplicated by canonical form before being handed out.
type Contacts struct {
	Emails    []string
	Phones    []Phone
	WhatsApp  []WhatsApp
	Social    map[string][]SocialProfile
	Names     []string
	Addresses []string
}

// Empty reports whether no entity of any kind was found.
func (c Contacts) Empty() bool {
	return len(c.Emails) == 0 && len(c.Phones) == 0 && len(c.WhatsApp) == 0 &&
		len(c.Social) == 0 && len(c.Names) == 0 && len(c.Addresses) == 0
}

// FetchResult is the outcome of one successful page retrieval. Failures are
// reported as errors, categorized via pkg/utils sentinels.
type FetchResult struct {
	FinalURL    string // URL after following redirects
	StatusCode  int
	Body        string // capped at the configured max body size
	ContentType string
	Elapsed     time.Duration
	InsecureTLS bool // true when the page was served via the no-verification TLS retry
	Rendered    bool // true when the body came from the browser rendering path
}

// ExtractionReport is the final output for one target URL.
//
// Invariant: when Success is false all entity lists are empty; when Success is
// true the lists may still legitimately be empty.
type ExtractionReport struct {
	RunID          string                     `json:"run_id"`
	SourceURL      string                     `json:"source_url"`
	Success        bool                       `json:"success"`
	PagesScraped   int                        `json:"pages_scraped"`
	ElapsedSeconds float64                    `json:"elapsed_seconds"`
	Emails         []string                   `json:"emails"`
	Phones         []Phone                    `json:"phones"`
	WhatsApp       []WhatsApp                 `json:"whatsapp"`
	SocialLinks    map[string][]SocialProfile `json:"social_links"`
	Names          []string                   `json:"names"`
	Addresses      []string                   `json:"addresses"`
	ErrorKind      string                     `json:"error_kind,omitempty"`
	Error          string                     `json:"error,omitempty"`
	Warnings       []string                   `json:"warnings,omitempty"` // non-fatal page-level failures
}

// ApplyContacts copies a merged contact set into the report's output lists,
// materializing empty slices so JSON renders [] rather than null.
func (r *ExtractionReport) ApplyContacts(c Contacts) {
	r.Emails = c.Emails
	r.Phones = c.Phones
	r.WhatsApp = c.WhatsApp
	r.SocialLinks = c.Social
	r.Names = c.Names
	r.Addresses = c.Addresses
	if r.Emails == nil {
		r.Emails = []string{}
	}
	if r.Phones == nil {
		r.Phones = []Phone{}
	}
	if r.WhatsApp == nil {
		r.WhatsApp = []WhatsApp{}
	}
	if r.SocialLinks == nil {
		r.SocialLinks = map[string][]SocialProfile{}
	}
	if r.Names == nil {
		r.Names = []string{}
	}
	if r.Addresses == nil {
		r.Addresses = []string{}
	}
}
