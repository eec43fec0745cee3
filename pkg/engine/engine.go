// Package engine is the batch orchestrator: it wires validator, fetchers and
// crawler together and runs multiple targets concurrently, each with fully
// independent state.
package engine

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"contact-scraper/pkg/config"
	"contact-scraper/pkg/crawler"
	"contact-scraper/pkg/extract"
	"contact-scraper/pkg/fetch"
	"contact-scraper/pkg/models"
	"contact-scraper/pkg/utils"
	"contact-scraper/pkg/validate"
)

// thinPageTextLen is the visible-text length below which a static fetch is
// considered too thin and worth re-rendering in the browser path.
const thinPageTextLen = 100

// Engine holds the shared, read-only pieces of the extraction pipeline.
// Everything mutable is created per target inside the crawler.
type Engine struct {
	cfg       config.AppConfig
	log       *logrus.Entry
	retriever fetch.Retriever
	robots    *fetch.RobotsGate
	validator *validate.Validator
}

// New builds an Engine from validated configuration.
func New(cfg config.AppConfig, log *logrus.Entry) *Engine {
	validator := &validate.Validator{AllowPrivate: cfg.AllowPrivateHosts}
	static := fetch.NewStaticFetcher(cfg, validator, log)

	var retriever fetch.Retriever = static
	switch {
	case cfg.Render:
		retriever = fetch.NewBrowserFetcher(cfg, validator, log)
	case cfg.RenderFallback:
		retriever = &fetch.FallbackRetriever{
			Static:   static,
			Rendered: fetch.NewBrowserFetcher(cfg, validator, log),
			Thin: func(body string) bool {
				text, _ := extract.VisibleText(body)
				return len(text) < thinPageTextLen
			},
			Log: log,
		}
	}

	var robots *fetch.RobotsGate
	if cfg.RespectRobots {
		robots = fetch.NewRobotsGate(static.Client(), cfg.UserAgent, log)
	}

	return &Engine{
		cfg:       cfg,
		log:       log,
		retriever: retriever,
		robots:    robots,
		validator: validator,
	}
}

// Run extracts contacts for every input URL and returns one report per URL in
// input order. Targets run concurrently under a bounded-width semaphore; no
// state is shared between them, and one target's failure never affects
// another's report. Cancelling ctx aborts in-flight fetches immediately.
// This is the engine boundary consumed by routing/UI layers.
func (e *Engine) Run(ctx context.Context, urls []string) []models.ExtractionReport {
	if len(urls) > config.MaxTargetsPerBatch {
		e.log.Warnf("Batch of %d targets truncated to %d", len(urls), config.MaxTargetsPerBatch)
		urls = urls[:config.MaxTargetsPerBatch]
	}

	reports := make([]models.ExtractionReport, len(urls))
	sem := semaphore.NewWeighted(int64(e.cfg.Concurrency))
	var wg sync.WaitGroup

	for i, rawURL := range urls {
		wg.Add(1)
		go func(idx int, target string) {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				reports[idx] = cancelledReport(target, err)
				return
			}
			defer sem.Release(1)

			c := crawler.New(e.cfg, e.retriever, e.robots, e.validator, e.log)
			reports[idx] = c.Crawl(ctx, target)
		}(i, rawURL)
	}

	wg.Wait()
	return reports
}

// cancelledReport covers targets whose slot never opened before the batch
// context was cancelled.
func cancelledReport(target string, err error) models.ExtractionReport {
	r := models.ExtractionReport{
		RunID:     uuid.NewString(),
		SourceURL: target,
		Success:   false,
		ErrorKind: utils.CategorizeError(err),
		Error:     "batch cancelled before extraction started: " + err.Error(),
	}
	r.ApplyContacts(models.Contacts{})
	return r
}
