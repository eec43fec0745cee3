package extract

import (
	"sort"
	"strings"

	"contact-scraper/pkg/models"
)

// Accumulator merges per-page contact sets across the pages of one crawl,
// deduplicating by canonical form. It is owned by a single crawl and needs no
// locking.
type Accumulator struct {
	emails    map[string]struct{}
	phones    []models.Phone
	phoneSeen map[string]struct{}
	whatsapp  []models.WhatsApp
	waSeen    map[string]struct{}
	social    map[string][]models.SocialProfile
	socSeen   map[string]struct{} // platform + "/" + username
	names     map[string]struct{}
	addresses map[string]struct{}
}

// NewAccumulator returns an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		emails:    make(map[string]struct{}),
		phoneSeen: make(map[string]struct{}),
		waSeen:    make(map[string]struct{}),
		social:    make(map[string][]models.SocialProfile),
		socSeen:   make(map[string]struct{}),
		names:     make(map[string]struct{}),
		addresses: make(map[string]struct{}),
	}
}

// Add merges one page's contacts into the accumulated set.
func (a *Accumulator) Add(c models.Contacts) {
	for _, e := range c.Emails {
		a.emails[e] = struct{}{}
	}
	for _, p := range c.Phones {
		key := strings.TrimPrefix(p.E164, "+")
		if key == "" {
			key = p.Original
		}
		if _, dup := a.phoneSeen[key]; dup {
			continue
		}
		a.phoneSeen[key] = struct{}{}
		a.phones = append(a.phones, p)
	}
	for _, w := range c.WhatsApp {
		if _, dup := a.waSeen[w.Number]; dup {
			continue
		}
		a.waSeen[w.Number] = struct{}{}
		a.whatsapp = append(a.whatsapp, w)
	}
	for platform, profiles := range c.Social {
		for _, p := range profiles {
			key := platform + "/" + p.Username
			if _, dup := a.socSeen[key]; dup {
				continue
			}
			a.socSeen[key] = struct{}{}
			a.social[platform] = append(a.social[platform], p)
		}
	}
	for _, n := range c.Names {
		a.names[n] = struct{}{}
	}
	for _, addr := range c.Addresses {
		a.addresses[addr] = struct{}{}
	}
}

// Contacts returns the merged set with per-kind caps applied. Emails, names
// and addresses come back sorted; order-bearing kinds keep first-seen order.
func (a *Accumulator) Contacts() models.Contacts {
	c := models.Contacts{
		Emails:    sortedKeys(a.emails, maxEmails),
		Phones:    a.phones,
		WhatsApp:  a.whatsapp,
		Names:     sortedKeys(a.names, maxNames),
		Addresses: sortedKeys(a.addresses, maxAddresses),
	}
	if len(c.Phones) > maxPhones {
		c.Phones = c.Phones[:maxPhones]
	}
	if len(c.WhatsApp) > maxWhatsApp {
		c.WhatsApp = c.WhatsApp[:maxWhatsApp]
	}
	if len(a.social) > 0 {
		c.Social = make(map[string][]models.SocialProfile, len(a.social))
		for platform, profiles := range a.social {
			if len(profiles) > maxSocialPerPlatform {
				profiles = profiles[:maxSocialPerPlatform]
			}
			c.Social[platform] = profiles
		}
	}
	return c
}

func sortedKeys(set map[string]struct{}, limit int) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
