package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"

	"contact-scraper/pkg/config"
	"contact-scraper/pkg/models"
	"contact-scraper/pkg/utils"
	"contact-scraper/pkg/validate"
)

// BrowserFetcher retrieves pages through a headless browser for sites that
// only render content via JavaScript. It honors the same deadline and body
// cap as the static path; the rendered HTML is truncated to the cap since the
// browser has already downloaded it.
type BrowserFetcher struct {
	cfg       config.AppConfig
	validator *validate.Validator
	log       *logrus.Entry
}

// NewBrowserFetcher creates a BrowserFetcher.
func NewBrowserFetcher(cfg config.AppConfig, v *validate.Validator, log *logrus.Entry) *BrowserFetcher {
	return &BrowserFetcher{cfg: cfg, validator: v, log: log}
}

// Retrieve implements Retriever. The target host is validated before the
// browser launches, and because navigation follows redirects inside the
// browser, the landing URL is validated again afterwards: a chain that ends on
// a private address is rejected rather than extracted.
func (b *BrowserFetcher) Retrieve(ctx context.Context, rawURL string) (*models.FetchResult, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, b.cfg.FetchTimeout)
	defer cancel()

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrValidation, err)
	}
	if err := b.validator.CheckHost(ctx, u.Hostname()); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", utils.ErrBlockedHost, u.Hostname(), err)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(b.cfg.UserAgent),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	var html, location string
	err = chromedp.Run(taskCtx,
		chromedp.Navigate(rawURL),
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: rendering %s: %v", utils.ErrTimeout, rawURL, err)
		}
		return nil, fmt.Errorf("%w: rendering %s: %v", utils.ErrNetwork, rawURL, err)
	}

	location, err = b.checkLanding(ctx, rawURL, location)
	if err != nil {
		return nil, err
	}

	if int64(len(html)) > b.cfg.MaxBodyBytes {
		html = html[:b.cfg.MaxBodyBytes]
	}

	b.log.WithFields(logrus.Fields{"url": rawURL, "bytes": len(html)}).Debug("Rendered page via browser")
	return &models.FetchResult{
		FinalURL:    location,
		StatusCode:  200,
		Body:        html,
		ContentType: "text/html",
		Elapsed:     time.Since(start),
		Rendered:    true,
	}, nil
}

// checkLanding validates the post-navigation URL and returns the final URL to
// report. An empty or unparseable location falls back to the already-validated
// request URL.
func (b *BrowserFetcher) checkLanding(ctx context.Context, rawURL, location string) (string, error) {
	if location == "" {
		return rawURL, nil
	}
	u, err := url.Parse(location)
	if err != nil || u.Hostname() == "" {
		return rawURL, nil
	}
	if err := b.validator.CheckHost(ctx, u.Hostname()); err != nil {
		return "", fmt.Errorf("%w: navigation landed on %s: %v", utils.ErrBlockedHost, u.Hostname(), err)
	}
	return location, nil
}
