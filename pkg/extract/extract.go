package extract

import "contact-scraper/pkg/models"

// Options controls one extraction pass over a page.
type Options struct {
	// Region is the two-letter region hint for parsing phone numbers written
	// without a country code.
	Region string
	// NamesAndAddresses enables the low-precision extractors; the crawl
	// controller turns it on only for pages that look like contact pages.
	NamesAndAddresses bool
}

// Run executes every extractor against one page. Both inputs must already be
// derived from a size-capped body: text is the visible text (see VisibleText)
// and html the raw markup, which the email/WhatsApp/social extractors also
// scan because contact links often exist only in attributes.
func Run(text, html string, opts Options) models.Contacts {
	text = CapInput(text)
	html = CapInput(html)

	c := models.Contacts{
		Emails:   ExtractEmails(text, html),
		Phones:   ExtractPhones(text, opts.Region),
		WhatsApp: ExtractWhatsApp(text, html),
		Social:   ExtractSocial(text, html),
	}
	if opts.NamesAndAddresses {
		c.Names = ExtractNames(text, html)
		c.Addresses = ExtractAddresses(text)
	}
	if len(c.Social) == 0 {
		c.Social = nil
	}
	return c
}
