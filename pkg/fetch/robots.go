package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/temoto/robotstxt"
)

const robotsFetchTimeout = 5 * time.Second

// RobotsGate fetches, parses and caches robots.txt per host and answers
// allow/deny for individual page URLs. Unreachable or unparseable robots.txt
// means allow, matching common crawler behavior.
type RobotsGate struct {
	client    *http.Client
	userAgent string
	log       *logrus.Entry

	mu    sync.Mutex
	cache map[string]*robotstxt.RobotsData // hostname -> parsed data, nil = fetch failed
}

// NewRobotsGate creates a RobotsGate using the given client.
func NewRobotsGate(client *http.Client, userAgent string, log *logrus.Entry) *RobotsGate {
	return &RobotsGate{
		client:    client,
		userAgent: userAgent,
		log:       log,
		cache:     make(map[string]*robotstxt.RobotsData),
	}
}

// Allowed reports whether the user agent may fetch u.
func (g *RobotsGate) Allowed(ctx context.Context, u *url.URL) bool {
	data := g.robotsData(ctx, u)
	if data == nil {
		return true
	}
	return data.TestAgent(u.RequestURI(), g.userAgent)
}

func (g *RobotsGate) robotsData(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	host := u.Hostname()

	g.mu.Lock()
	data, found := g.cache[host]
	g.mu.Unlock()
	if found {
		return data
	}

	robotsURL := url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/robots.txt"}
	hostLog := g.log.WithField("host", host)
	data = g.fetchRobots(ctx, robotsURL.String(), hostLog)

	g.mu.Lock()
	g.cache[host] = data
	g.mu.Unlock()
	return data
}

func (g *RobotsGate) fetchRobots(ctx context.Context, robotsURL string, log *logrus.Entry) *robotstxt.RobotsData {
	ctx, cancel := context.WithTimeout(ctx, robotsFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		log.Debugf("robots.txt request creation failed: %v", err)
		return nil
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		log.Debugf("robots.txt fetch failed: %v", err)
		return nil
	}
	defer resp.Body.Close()

	// FromResponse treats 4xx as allow-all and 5xx as deny-all, which is the
	// conventional reading of unreachable robots rules.
	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		log.Debugf("robots.txt read failed: %v", err)
		return nil
	}
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		log.Debugf("robots.txt parse failed: %v", err)
		return nil
	}
	log.Debug("Fetched and parsed robots.txt")
	return data
}
