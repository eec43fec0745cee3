package extract

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"

	"contact-scraper/pkg/models"
)

const (
	maxPhones      = 30
	minPhoneDigits = 7
	maxPhoneDigits = 15
	maxPhoneWindow = 32 // longest candidate substring worth validating
)

var (
	// Strings shaped like dates or dotted version/IP sequences collide with
	// naive digit-group patterns and are excluded before validation.
	isoDateRe   = regexp.MustCompile(`^(?:\d{4}[-./]\d{1,2}[-./]\d{1,2}|\d{1,2}[-./]\d{1,2}[-./]\d{4})$`)
	dottedSeqRe = regexp.MustCompile(`^\d{1,4}(?:\.\d{1,4}){2,}$`)

	// A date directly adjacent to a number ("Updated 2024-01-15 +1 555...")
	// merges into one candidate window and poisons its digit count. These
	// match a date-shaped affix followed/preceded by a separator so it can be
	// split off without touching standalone dates.
	leadingDateRe  = regexp.MustCompile(`^(?:\d{4}[-.]\d{1,2}[-.]\d{1,2}|\d{1,2}[-.]\d{1,2}[-.]\d{4})[-. ()]`)
	trailingDateRe = regexp.MustCompile(`[-. ()](?:\d{4}[-.]\d{1,2}[-.]\d{1,2}|\d{1,2}[-.]\d{1,2}[-.]\d{4})$`)
)

// ExtractPhones finds phone numbers in visible text using a two-phase scan: a
// single linear pass collects bounded candidate windows of phone-ish
// characters, then each window is strictly validated and formatted with
// libphonenumber metadata. Dedup key is the digits of the canonical form.
func ExtractPhones(text, region string) []models.Phone {
	if region == "" {
		region = "US"
	}

	var phones []models.Phone
	seen := make(map[string]struct{})

	for _, candidate := range phoneCandidates(text) {
		phone, ok := validateCandidate(candidate, region)
		if !ok {
			continue
		}
		key := strings.TrimPrefix(phone.E164, "+")
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		phones = append(phones, phone)
		if len(phones) >= maxPhones {
			break
		}
	}
	return phones
}

// phoneCandidates is the coarse pass: one left-to-right scan collecting runs
// of characters that can appear in a written phone number. Runs longer than
// maxPhoneWindow are skipped whole, so adversarial digit floods cost one pass
// and produce no candidates.
func phoneCandidates(text string) []string {
	var candidates []string
	n := len(text)
	i := 0
	for i < n {
		c := text[i]
		if !isPhoneStart(c) {
			i++
			continue
		}
		j := i
		for j < n && isPhoneChar(text[j]) {
			j++
		}
		run := text[i:j]
		i = j
		if len(run) > maxPhoneWindow {
			continue
		}
		run = stripDateAffixes(trimSeparators(run))
		if digitCount(run) >= minPhoneDigits {
			candidates = append(candidates, run)
			if len(candidates) >= maxPhones*4 {
				break
			}
		}
	}
	return candidates
}

func validateCandidate(candidate, region string) (models.Phone, bool) {
	if isoDateRe.MatchString(candidate) {
		return models.Phone{}, false
	}

	num, err := phonenumbers.Parse(candidate, region)
	if err == nil && (phonenumbers.IsValidNumber(num) || phonenumbers.IsPossibleNumber(num)) {
		return models.Phone{
			E164:      phonenumbers.Format(num, phonenumbers.E164),
			Formatted: phonenumbers.Format(num, phonenumbers.INTERNATIONAL),
			Original:  candidate,
		}, true
	}

	// Best-effort fallback for numbers the dial-plan metadata rejects but
	// that still read as phone numbers: right digit count, real separators,
	// not a dotted version/IP shape.
	if dottedSeqRe.MatchString(candidate) {
		return models.Phone{}, false
	}
	cleaned := digitsOnly(candidate)
	if len(cleaned) < minPhoneDigits || len(cleaned) > maxPhoneDigits {
		return models.Phone{}, false
	}
	if !strings.HasPrefix(candidate, "+") && !strings.ContainsAny(candidate, " -.()") {
		return models.Phone{}, false
	}
	if strings.HasPrefix(candidate, "+") {
		cleaned = "+" + cleaned
	}
	return models.Phone{E164: cleaned, Formatted: candidate, Original: candidate}, true
}

// stripDateAffixes peels date-shaped prefixes and suffixes off a candidate
// window. Without this a timestamp next to a phone number merges the two into
// a single over-long digit run and the real number is lost.
func stripDateAffixes(run string) string {
	for {
		loc := leadingDateRe.FindStringIndex(run)
		if loc == nil {
			break
		}
		run = trimSeparators(run[loc[1]:])
	}
	for {
		loc := trailingDateRe.FindStringIndex(run)
		if loc == nil {
			break
		}
		run = trimSeparators(run[:loc[0]])
	}
	return run
}

func isPhoneStart(c byte) bool { return c == '+' || (c >= '0' && c <= '9') }

func isPhoneChar(c byte) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case c == '+' || c == '(' || c == ')' || c == '-' || c == '.' || c == ' ':
		return true
	}
	return false
}

func trimSeparators(s string) string {
	start := 0
	for start < len(s) && s[start] != '+' && (s[start] < '0' || s[start] > '9') {
		start++
	}
	end := len(s)
	for end > start && (s[end-1] < '0' || s[end-1] > '9') {
		end--
	}
	return s[start:end]
}

func digitCount(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			n++
		}
	}
	return n
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
