// Package validate holds URL validation and normalization shared by the
// fetcher and the crawl controller. Nothing in the engine fetches a URL that
// has not passed through a Validator first.
package validate

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"

	"contact-scraper/pkg/utils"
)

// MaxURLLength bounds accepted input; anything longer is rejected outright.
const MaxURLLength = 2000

// Validator decides whether a URL may be fetched. AllowPrivate disables the
// private/loopback address checks; it exists for tests against local servers
// and must stay off in production use.
type Validator struct {
	AllowPrivate bool
	Resolver     *net.Resolver // nil means net.DefaultResolver
}

// NormalizeURL trims control characters, applies the https scheme default,
// parses the input and returns the normalized absolute URL string. It performs
// no network I/O; host-level checks are ValidateAndNormalize's job.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty URL", utils.ErrValidation)
	}
	if len(raw) > MaxURLLength {
		return "", fmt.Errorf("%w: URL exceeds %d characters", utils.ErrValidation, MaxURLLength)
	}

	// Strip ASCII control characters anywhere in the input.
	raw = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, raw)

	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", utils.ErrValidation, err)
	}
	if u.Hostname() == "" || len(u.Host) < 3 {
		return "", fmt.Errorf("%w: missing or implausible host", utils.ErrValidation)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", utils.ErrValidation, u.Scheme)
	}

	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	return u.String(), nil
}

// ValidateAndNormalize is the full gate: normalization plus host resolution
// and private-address rejection. The context bounds DNS resolution.
func (v *Validator) ValidateAndNormalize(ctx context.Context, raw string) (string, error) {
	normalized, err := NormalizeURL(raw)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(normalized)
	if err != nil {
		return "", fmt.Errorf("%w: %v", utils.ErrValidation, err)
	}
	if err := v.CheckHost(ctx, u.Hostname()); err != nil {
		return "", err
	}
	return normalized, nil
}

// CheckHost rejects loopback, link-local, private-range and unspecified
// addresses. Literal IPs are checked directly; hostnames are resolved and
// every returned address must pass.
func (v *Validator) CheckHost(ctx context.Context, host string) error {
	if host == "" {
		return fmt.Errorf("%w: empty host", utils.ErrValidation)
	}
	lower := strings.ToLower(host)
	if lower == "localhost" || strings.HasSuffix(lower, ".localhost") || lower == "localhost.localdomain" {
		if v.AllowPrivate {
			return nil
		}
		return fmt.Errorf("%w: local host %q not allowed", utils.ErrValidation, host)
	}

	if ip := net.ParseIP(host); ip != nil {
		return v.checkIP(ip, host)
	}

	resolver := v.Resolver
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	addrs, err := resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return fmt.Errorf("%w: resolving %q: %v", utils.ErrValidation, host, err)
	}
	for _, addr := range addrs {
		if err := v.checkIP(addr.IP, host); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) checkIP(ip net.IP, host string) error {
	if v.AllowPrivate {
		return nil
	}
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
		return fmt.Errorf("%w: host %q resolves to non-public address %s", utils.ErrValidation, host, ip)
	}
	return nil
}

// DedupKey reduces a URL to the form used for visited-set membership: lowered
// host, no fragment, no trailing slash. Invalid input falls back to the raw
// string so lookups stay total.
func DedupKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimRight(u.Path, "/")
	return u.String()
}
