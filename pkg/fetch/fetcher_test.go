package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"contact-scraper/pkg/config"
	"contact-scraper/pkg/models"
	"contact-scraper/pkg/utils"
	"contact-scraper/pkg/validate"
)

func testLog() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func testConfig() config.AppConfig {
	cfg := config.Defaults()
	cfg.FetchTimeout = 3 * time.Second
	cfg.MaxBodyBytes = 64 * 1024
	cfg.MaxRedirects = 3
	cfg.MaxRetries = 2
	cfg.InitialRetryDelay = 10 * time.Millisecond
	cfg.MaxRetryDelay = 30 * time.Millisecond
	cfg.AllowPrivateHosts = true
	return cfg
}

func newTestFetcher(cfg config.AppConfig) *StaticFetcher {
	return NewStaticFetcher(cfg, &validate.Validator{AllowPrivate: true}, testLog())
}

func TestRetrieve_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html><body>info@acme.com</body></html>")
	}))
	defer server.Close()

	res, err := newTestFetcher(testConfig()).Retrieve(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Errorf("status = %d", res.StatusCode)
	}
	if !strings.Contains(res.Body, "info@acme.com") {
		t.Errorf("body = %q", res.Body)
	}
	if res.InsecureTLS || res.Rendered {
		t.Errorf("unexpected flags: %+v", res)
	}
}

func TestRetrieve_RetriesServerErrors(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, "<html>recovered</html>")
	}))
	defer server.Close()

	res, err := newTestFetcher(testConfig()).Retrieve(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
	if !strings.Contains(res.Body, "recovered") {
		t.Errorf("body = %q", res.Body)
	}
}

func TestRetrieve_ExhaustedRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestFetcher(testConfig()).Retrieve(context.Background(), server.URL)
	if !errors.Is(err, utils.ErrNetwork) {
		t.Errorf("err = %v, want ErrNetwork", err)
	}
	if kind := utils.CategorizeError(err); kind != "network_error" {
		t.Errorf("kind = %q", kind)
	}
}

func TestRetrieve_NoRetryOnClientError(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := newTestFetcher(testConfig()).Retrieve(context.Background(), server.URL)
	if !errors.Is(err, utils.ErrClientHTTPError) {
		t.Errorf("err = %v, want ErrClientHTTPError", err)
	}
	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Errorf("attempts = %d, want 1", got)
	}
}

func TestRetrieve_BodyCap(t *testing.T) {
	cfg := testConfig()
	cfg.MaxBodyBytes = 1024
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, strings.Repeat("a", 4096))
	}))
	defer server.Close()

	_, err := newTestFetcher(cfg).Retrieve(context.Background(), server.URL)
	if !errors.Is(err, utils.ErrTooLarge) {
		t.Errorf("err = %v, want ErrTooLarge", err)
	}
	if kind := utils.CategorizeError(err); kind != "too_large" {
		t.Errorf("kind = %q", kind)
	}
}

func TestRetrieve_RedirectLimit(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, server.URL+r.URL.Path+"x", http.StatusFound)
	}))
	defer server.Close()

	_, err := newTestFetcher(testConfig()).Retrieve(context.Background(), server.URL+"/r")
	if !errors.Is(err, utils.ErrTooManyRedirects) {
		t.Errorf("err = %v, want ErrTooManyRedirects", err)
	}
	if kind := utils.CategorizeError(err); kind != "too_many_redirects" {
		t.Errorf("kind = %q", kind)
	}
}

func TestRetrieve_RedirectToBlockedHost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "http://blocked-internal-host.invalid/secrets", http.StatusFound)
	}))
	defer server.Close()

	// Redirect re-validation must fire even though the fetch itself started
	// from an allowed address. The hop target fails the host check (it cannot
	// resolve) and the redirect policy surfaces that as a blocked host.
	_, err := newTestFetcher(testConfig()).Retrieve(context.Background(), server.URL)
	if !errors.Is(err, utils.ErrBlockedHost) {
		t.Errorf("err = %v, want ErrBlockedHost", err)
	}
	if kind := utils.CategorizeError(err); kind != "blocked_host" {
		t.Errorf("kind = %q", kind)
	}
}

func TestRetrieve_PrivateTargetRejected(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		fmt.Fprint(w, "<html><body>internal only</body></html>")
	}))
	defer server.Close()

	// Crawl candidates come from page content, so the fetcher itself must
	// refuse loopback and private targets before any connection is made.
	f := NewStaticFetcher(testConfig(), &validate.Validator{}, testLog())
	_, err := f.Retrieve(context.Background(), server.URL)
	if !errors.Is(err, utils.ErrBlockedHost) {
		t.Fatalf("err = %v, want ErrBlockedHost", err)
	}
	if kind := utils.CategorizeError(err); kind != "blocked_host" {
		t.Errorf("kind = %q", kind)
	}
	if got := atomic.LoadInt32(&hits); got != 0 {
		t.Errorf("server was contacted %d times, want 0", got)
	}
}

func TestRetrieve_Timeout(t *testing.T) {
	cfg := testConfig()
	cfg.FetchTimeout = 200 * time.Millisecond
	cfg.MaxRetries = 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	start := time.Now()
	_, err := newTestFetcher(cfg).Retrieve(context.Background(), server.URL)
	if !errors.Is(err, utils.ErrTimeout) {
		t.Errorf("err = %v, want ErrTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("fetch took %v, deadline not enforced", elapsed)
	}
}

func TestRetrieve_BinaryContentRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte{0x89, 0x50, 0x4e, 0x47})
	}))
	defer server.Close()

	_, err := newTestFetcher(testConfig()).Retrieve(context.Background(), server.URL)
	if !errors.Is(err, utils.ErrUnsupportedType) {
		t.Errorf("err = %v, want ErrUnsupportedType", err)
	}
}

func TestRetrieve_TLSFallback(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>secured</html>")
	}))
	defer server.Close()

	res, err := newTestFetcher(testConfig()).Retrieve(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.InsecureTLS {
		t.Error("InsecureTLS not flagged after certificate fallback")
	}
	if !strings.Contains(res.Body, "secured") {
		t.Errorf("body = %q", res.Body)
	}
}

func TestRetrieve_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestFetcher(testConfig()).Retrieve(ctx, server.URL)
	if err == nil {
		t.Fatal("expected error")
	}
	if kind := utils.CategorizeError(err); kind != "timeout" {
		t.Errorf("kind = %q", kind)
	}
}

func TestFallbackRetriever_UsesStaticWhenSubstantial(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>", strings.Repeat("real content ", 20), "</body></html>")
	}))
	defer server.Close()

	static := newTestFetcher(testConfig())
	f := &FallbackRetriever{
		Static:   static,
		Rendered: failingRetriever{},
		Thin:     func(body string) bool { return len(body) < 50 },
		Log:      testLog(),
	}
	res, err := f.Retrieve(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Rendered {
		t.Error("rendered path should not have run")
	}
}

type failingRetriever struct{}

func (failingRetriever) Retrieve(context.Context, string) (*models.FetchResult, error) {
	return nil, errors.New("renderer unavailable")
}
