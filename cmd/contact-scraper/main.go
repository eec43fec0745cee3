// Command contact-scraper extracts contact information (emails, phones,
// WhatsApp links, social profiles, names, addresses) from one or more
// websites and prints one JSON report per input URL.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"contact-scraper/pkg/config"
	"contact-scraper/pkg/engine"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath     = flag.String("config", "", "Path to YAML config file (optional)")
		pages          = flag.Int("pages", 0, "Max pages to crawl per site (1-5)")
		timeBudget     = flag.Duration("timeout", 0, "Overall time budget per site (5s-30s)")
		concurrency    = flag.Int("concurrency", 0, "Concurrent targets in a batch (1-3)")
		region         = flag.String("region", "", "Default region for phone parsing (e.g. US, DE)")
		render         = flag.Bool("render", false, "Always fetch through the headless browser")
		renderFallback = flag.Bool("render-fallback", false, "Render only when the static page looks empty")
		noRobots       = flag.Bool("no-robots", false, "Ignore robots.txt")
		logLevel       = flag.String("log-level", "warn", "Log level (debug, info, warn, error)")
	)
	flag.Parse()

	log := logrus.New()
	log.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q: %v\n", *logLevel, err)
		return 2
	}
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})

	urls := flag.Args()
	if len(urls) == 0 {
		fmt.Fprintln(os.Stderr, "usage: contact-scraper [flags] URL [URL...]")
		flag.PrintDefaults()
		return 2
	}

	cfg := config.Defaults()
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Errorf("Loading config: %v", err)
			return 2
		}
	}
	if *pages > 0 {
		cfg.MaxPages = *pages
	}
	if *timeBudget > 0 {
		cfg.TimeBudget = *timeBudget
	}
	if *concurrency > 0 {
		cfg.Concurrency = *concurrency
	}
	if *region != "" {
		cfg.DefaultRegion = *region
	}
	if *render {
		cfg.Render = true
	}
	if *renderFallback {
		cfg.RenderFallback = true
	}
	if *noRobots {
		cfg.RespectRobots = false
	}
	if err := cfg.Validate(); err != nil {
		log.Errorf("Invalid configuration: %v", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng := engine.New(cfg, logrus.NewEntry(log))
	reports := eng.Run(ctx, urls)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(reports); err != nil {
		log.Errorf("Encoding reports: %v", err)
		return 1
	}

	for _, r := range reports {
		if r.Success {
			return 0
		}
	}
	return 1
}
