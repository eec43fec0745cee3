// Package fetch performs bounded retrieval of single URLs: a static HTTP path
// and a browser-rendered path behind the same interface, both subject to the
// same size, time and redirect limits.
package fetch

import (
	"context"

	"github.com/sirupsen/logrus"

	"contact-scraper/pkg/models"
)

// Retriever retrieves one URL under the deadline carried by ctx. The crawl
// controller does not know which concrete strategy produced a page.
type Retriever interface {
	Retrieve(ctx context.Context, rawURL string) (*models.FetchResult, error)
}

// FallbackRetriever tries the static path first and falls back to the
// rendered path when the static result failed or looks too thin to extract
// from (JS-only sites).
type FallbackRetriever struct {
	Static   Retriever
	Rendered Retriever
	// Thin decides whether a static body warrants the render fallback.
	Thin func(body string) bool
	Log  *logrus.Entry
}

// Retrieve implements Retriever.
func (f *FallbackRetriever) Retrieve(ctx context.Context, rawURL string) (*models.FetchResult, error) {
	res, err := f.Static.Retrieve(ctx, rawURL)
	if err == nil && (f.Thin == nil || !f.Thin(res.Body)) {
		return res, nil
	}
	if ctx.Err() != nil {
		return res, err
	}

	f.Log.WithField("url", rawURL).Debug("Static fetch insufficient, trying rendered path")
	rendered, renderErr := f.Rendered.Retrieve(ctx, rawURL)
	if renderErr == nil && (res == nil || len(rendered.Body) > len(res.Body)) {
		return rendered, nil
	}
	// Prefer the static outcome (page or typed failure) when rendering didn't improve on it.
	return res, err
}
