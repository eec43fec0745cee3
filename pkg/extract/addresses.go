package extract

import (
	"regexp"
	"sort"
	"strings"
)

const (
	maxAddresses  = 5
	minAddressLen = 16
	maxAddressLen = 200
)

// Address recognition is best-effort, like names: a US street-address shape
// and a generic comma-separated shape ending in a postal code (numeric or UK
// style). All repetition is over bounded classes.
var (
	usAddressRe = regexp.MustCompile(`(?i)\d{1,5} [A-Za-z0-9 ]{1,30}\b(?:street|st|avenue|ave|road|rd|highway|hwy|square|sq|trail|trl|drive|dr|court|ct|parkway|pkwy|circle|cir|boulevard|blvd|lane|ln|way)\.?(?: (?:apt|apartment|suite|ste|unit|#)\.? ?[0-9]{1,6})?[, ]{1,3}[A-Za-z ]{2,30}, ?[A-Za-z]{2} \d{5}(?:-\d{4})?`)

	genericAddressRe = regexp.MustCompile(`\d{1,5} [A-Za-z0-9 .'-]{2,40}, ?[A-Za-z .'-]{2,30}, ?[A-Za-z .'-]{2,30},? ?(?:\d{4,10}|[A-Z]{1,2}\d{1,2} ?\d[A-Z]{2})`)
)

// ExtractAddresses pulls physical addresses out of contact-page text.
func ExtractAddresses(text string) []string {
	seen := make(map[string]struct{})

	add := func(addr string, minLen int) {
		addr = strings.Join(strings.Fields(addr), " ")
		if len(addr) < minLen || len(addr) > maxAddressLen {
			return
		}
		seen[addr] = struct{}{}
	}

	for _, m := range usAddressRe.FindAllString(text, maxAddresses*4) {
		add(m, minAddressLen)
	}
	for _, m := range genericAddressRe.FindAllString(text, maxAddresses*4) {
		add(m, minAddressLen+4)
	}

	addresses := make([]string, 0, len(seen))
	for a := range seen {
		addresses = append(addresses, a)
	}
	sort.Strings(addresses)
	if len(addresses) > maxAddresses {
		addresses = addresses[:maxAddresses]
	}
	return addresses
}
