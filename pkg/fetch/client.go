package fetch

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"

	"github.com/sirupsen/logrus"

	"contact-scraper/pkg/config"
	"contact-scraper/pkg/utils"
	"contact-scraper/pkg/validate"
)

// NewClients builds the two HTTP clients the static fetcher needs: one with
// normal TLS verification and one without, for the single fallback attempt
// against self-signed or expired certificates. Both share dialer settings and
// a redirect policy that re-validates every hop, since a redirect can retarget
// the request at an internal host.
//
// Neither client carries a Timeout: every fetch is bounded by its own context
// deadline, so concurrent fetches cannot interfere through shared state.
func NewClients(cfg config.AppConfig, v *validate.Validator, log *logrus.Entry) (verified, insecure *http.Client) {
	hc := cfg.HTTPClientSettings
	dialer := &net.Dialer{
		Timeout:   hc.DialerTimeout,
		KeepAlive: hc.DialerKeepAlive,
	}

	newTransport := func(skipVerify bool) *http.Transport {
		return &http.Transport{
			Proxy:                  http.ProxyFromEnvironment,
			DialContext:            dialer.DialContext,
			ForceAttemptHTTP2:      true,
			MaxIdleConns:           hc.MaxIdleConns,
			MaxIdleConnsPerHost:    hc.MaxIdleConnsPerHost,
			IdleConnTimeout:        hc.IdleConnTimeout,
			TLSHandshakeTimeout:    hc.TLSHandshakeTimeout,
			TLSClientConfig:        &tls.Config{InsecureSkipVerify: skipVerify},
			MaxResponseHeaderBytes: 1 << 20,
		}
	}

	checkRedirect := func(req *http.Request, via []*http.Request) error {
		if len(via) >= cfg.MaxRedirects {
			return utils.ErrTooManyRedirects
		}
		if err := v.CheckHost(req.Context(), req.URL.Hostname()); err != nil {
			return fmt.Errorf("%w: redirect to %s: %v", utils.ErrBlockedHost, req.URL.Host, err)
		}
		log.Debugf("Redirecting: %s -> %s (hop %d)", via[len(via)-1].URL, req.URL, len(via))
		return nil
	}

	verified = &http.Client{Transport: newTransport(false), CheckRedirect: checkRedirect}
	insecure = &http.Client{Transport: newTransport(true), CheckRedirect: checkRedirect}
	return verified, insecure
}
