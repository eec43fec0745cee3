// Package crawler runs the fetch→extract→decide loop for a single target
// site under a page budget and a wall-clock budget.
package crawler

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"contact-scraper/pkg/config"
	"contact-scraper/pkg/extract"
	"contact-scraper/pkg/fetch"
	"contact-scraper/pkg/links"
	"contact-scraper/pkg/models"
	"contact-scraper/pkg/utils"
	"contact-scraper/pkg/validate"
)

// Crawler crawls one target at a time. It owns no per-target state itself;
// each Crawl call builds fresh crawl state, so one Crawler may be reused
// across sequential targets but not shared concurrently.
type Crawler struct {
	cfg       config.AppConfig
	retriever fetch.Retriever
	robots    *fetch.RobotsGate // nil disables robots checks
	validator *validate.Validator
	log       *logrus.Entry
}

// New creates a Crawler.
func New(cfg config.AppConfig, retriever fetch.Retriever, robots *fetch.RobotsGate, validator *validate.Validator, log *logrus.Entry) *Crawler {
	return &Crawler{cfg: cfg, retriever: retriever, robots: robots, validator: validator, log: log}
}

// crawlState is the mutable per-target state: visited set, pending candidate
// queue, accumulated entities and the pages-fetched counter. Owned by exactly
// one Crawl invocation.
type crawlState struct {
	visited map[string]bool
	queued  map[string]bool
	queue   []links.Candidate
	acc     *extract.Accumulator
	pages   int
}

func (s *crawlState) seen(key string) bool { return s.visited[key] || s.queued[key] }

func (s *crawlState) enqueue(cands []links.Candidate) {
	for _, c := range cands {
		key := validate.DedupKey(c.URL)
		if s.seen(key) {
			continue
		}
		s.queued[key] = true
		s.queue = append(s.queue, c)
	}
	sort.SliceStable(s.queue, func(i, j int) bool { return s.queue[i].Score < s.queue[j].Score })
}

// Crawl runs one full extraction for rawURL and always returns a report.
// First-page failure is terminal (success=false, empty entities); failures on
// later pages only reduce coverage. External cancellation stops the loop and
// returns whatever was accumulated.
func (c *Crawler) Crawl(ctx context.Context, rawURL string) models.ExtractionReport {
	start := time.Now()
	report := models.ExtractionReport{RunID: uuid.NewString(), SourceURL: rawURL}

	seed, err := c.validator.ValidateAndNormalize(ctx, rawURL)
	if err != nil {
		c.fail(&report, err, start)
		return report
	}
	report.SourceURL = seed
	seedURL, err := url.Parse(seed)
	if err != nil {
		c.fail(&report, fmt.Errorf("%w: %v", utils.ErrValidation, err), start)
		return report
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.TimeBudget)
	defer cancel()

	crawlLog := c.log.WithFields(logrus.Fields{"run_id": report.RunID, "seed": seed})
	crawlLog.Info("Starting crawl")

	prioritizer := links.NewPrioritizer(seedURL, crawlLog)
	state := &crawlState{
		visited: make(map[string]bool),
		queued:  make(map[string]bool),
		queue:   []links.Candidate{{URL: seed, Score: -1}},
		acc:     extract.NewAccumulator(),
	}

	var firstPageErr error

	for len(state.queue) > 0 && state.pages < c.cfg.MaxPages && ctx.Err() == nil {
		cand := state.queue[0]
		state.queue = state.queue[1:]

		key := validate.DedupKey(cand.URL)
		if state.visited[key] {
			continue
		}
		state.visited[key] = true

		pageURL, err := url.Parse(cand.URL)
		if err != nil {
			continue
		}
		pageLog := crawlLog.WithField("page", cand.URL)

		// The seed passed the full gate before the loop; link-derived
		// candidates get the same host check here so neither the robots probe
		// nor the fetch can reach a private address.
		if state.pages > 0 {
			if err := c.validator.CheckHost(ctx, pageURL.Hostname()); err != nil {
				pageLog.Infof("Candidate host rejected: %v", err)
				report.Warnings = append(report.Warnings, cand.URL+": blocked_host")
				continue
			}
		}

		if c.robots != nil && !c.robots.Allowed(ctx, pageURL) {
			pageLog.Info("Disallowed by robots.txt")
			if state.pages == 0 {
				firstPageErr = fmt.Errorf("%w: %s", utils.ErrRobotsDisallowed, cand.URL)
				break
			}
			report.Warnings = append(report.Warnings, cand.URL+": blocked_host")
			continue
		}

		if state.pages > 0 && c.cfg.PageDelay > 0 {
			select {
			case <-time.After(c.cfg.PageDelay):
			case <-ctx.Done():
				crawlLog.Debug("Deadline reached during page delay")
				goto done
			}
		}

		// Fetching
		res, err := c.retriever.Retrieve(ctx, cand.URL)
		if err != nil {
			pageLog.Warnf("Fetch failed: %v", err)
			if state.pages == 0 {
				firstPageErr = err
				break
			}
			report.Warnings = append(report.Warnings, cand.URL+": "+utils.CategorizeError(err))
			continue
		}
		state.pages++
		state.visited[validate.DedupKey(res.FinalURL)] = true
		if res.InsecureTLS {
			report.Warnings = append(report.Warnings, res.FinalURL+": tls_fallback")
		}

		// Extracting
		text, title := extract.VisibleText(res.Body)
		opts := extract.Options{
			Region:            c.cfg.DefaultRegion,
			NamesAndAddresses: state.pages == 1 || looksLikeContactPage(pageURL, title),
		}
		state.acc.Add(extract.Run(text, res.Body, opts))
		pageLog.WithFields(logrus.Fields{"status": res.StatusCode, "bytes": len(res.Body), "rendered": res.Rendered}).Debug("Page extracted")

		// Deciding
		if state.pages >= c.cfg.MaxPages || ctx.Err() != nil {
			break
		}
		doc, parseErr := goquery.NewDocumentFromReader(strings.NewReader(res.Body))
		if parseErr != nil {
			// Degrade: entities from this page are kept, its links are lost.
			pageLog.Warnf("Link parsing failed: %v", parseErr)
			continue
		}
		finalURL, err := url.Parse(res.FinalURL)
		if err != nil {
			finalURL = pageURL
		}
		state.enqueue(prioritizer.Rank(doc, finalURL, state.seen))
		if state.pages == 1 {
			state.enqueue(prioritizer.KnownPaths(seedURL, state.seen))
		}
	}

done:
	if state.pages == 0 {
		if firstPageErr == nil {
			firstPageErr = fmt.Errorf("%w: target deadline elapsed before first page", utils.ErrTimeout)
		}
		c.fail(&report, firstPageErr, start)
		crawlLog.Warnf("Crawl failed: %s", report.Error)
		return report
	}

	report.Success = true
	report.PagesScraped = state.pages
	report.ApplyContacts(state.acc.Contacts())
	report.ElapsedSeconds = roundSeconds(time.Since(start))
	crawlLog.WithFields(logrus.Fields{
		"pages":   report.PagesScraped,
		"elapsed": report.ElapsedSeconds,
		"emails":  len(report.Emails),
		"phones":  len(report.Phones),
	}).Info("Crawl finished")
	return report
}

func (c *Crawler) fail(report *models.ExtractionReport, err error, start time.Time) {
	report.Success = false
	report.ErrorKind = utils.CategorizeError(err)
	report.Error = err.Error()
	report.ApplyContacts(models.Contacts{})
	report.ElapsedSeconds = roundSeconds(time.Since(start))
}

var contactPageHints = []string{"contact", "kontakt", "about", "team", "impressum", "imprint", "support"}

func looksLikeContactPage(u *url.URL, title string) bool {
	haystack := strings.ToLower(u.Path + " " + title)
	for _, hint := range contactPageHints {
		if strings.Contains(haystack, hint) {
			return true
		}
	}
	return false
}

func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}
