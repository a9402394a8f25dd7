// Package crawler fetches every seed domain's landing page concurrently and
// collects the links that match the run's patterns, each URL attributed to
// exactly one domain.
package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/sync/errgroup"

	"github.com/amosWeiskopf/linksieve/internal/logger"
	"github.com/amosWeiskopf/linksieve/internal/models"
	"github.com/amosWeiskopf/linksieve/pkg/extractor"
	"github.com/amosWeiskopf/linksieve/pkg/patterns"
)

// Crawler runs one fetch-extract-filter pass over a list of domains.
type Crawler struct {
	patterns     *patterns.Set
	extractor    LinkSource
	client       *http.Client
	timeout      time.Duration
	userAgent    string
	maxIdleConns int
	logger       logger.Logger
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithHTTPClient replaces the default client. Its own Timeout, if any,
// applies on top of the per-request timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Crawler) { c.client = client }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Crawler) { c.timeout = d }
}

// WithUserAgent fixes the User-Agent header. Empty rotates browser agents.
func WithUserAgent(ua string) Option {
	return func(c *Crawler) { c.userAgent = ua }
}

func WithLogger(l logger.Logger) Option {
	return func(c *Crawler) { c.logger = l }
}

func WithExtractor(e LinkSource) Option {
	return func(c *Crawler) { c.extractor = e }
}

// WithMaxIdleConns sizes the default transport's idle pool.
func WithMaxIdleConns(n int) Option {
	return func(c *Crawler) { c.maxIdleConns = n }
}

// New compiles rawPatterns and prepares a Crawler. An invalid pattern is
// returned as *patterns.InvalidPatternError before anything touches the
// network.
func New(rawPatterns []string, opts ...Option) (*Crawler, error) {
	set, err := patterns.Compile(rawPatterns)
	if err != nil {
		return nil, fmt.Errorf("compile patterns: %w", err)
	}

	c := &Crawler{
		patterns:     set,
		timeout:      DefaultTimeout,
		maxIdleConns: 50,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.extractor == nil {
		c.extractor = extractor.New()
	}
	if c.logger == nil {
		c.logger = logger.NewNop()
	}
	if c.client == nil {
		c.client = newHTTPClient(c.maxIdleConns)
	}
	return c, nil
}

func newHTTPClient(maxIdleConns int) *http.Client {
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        maxIdleConns,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
	}
	return &http.Client{Transport: transport, Jar: jar}
}

// Patterns returns the compiled pattern set.
func (c *Crawler) Patterns() *patterns.Set {
	return c.patterns
}

// Run fetches every domain concurrently and waits for all of them. It cannot
// fail: per-domain problems are recorded in the returned results and the
// absence of a domain from Results marks a failed fetch.
func (c *Crawler) Run(ctx context.Context, domains []string) *models.CrawlResult {
	result := &models.CrawlResult{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	log := c.logger.With(logger.String("run_id", result.RunID))
	log.Info("crawl started",
		logger.Int("domains", len(domains)),
		logger.Strings("patterns", c.patterns.Strings()),
	)

	registry := NewRegistry()
	worker := &Worker{
		Client:    c.client,
		Matcher:   c.patterns,
		Registry:  registry,
		Extractor: c.extractor,
		Timeout:   c.timeout,
		UserAgent: c.userAgent,
		Logger:    log,
	}

	// Each goroutine owns exactly one slot. Workers report failures in their
	// slot, never through the group, so Wait only joins them; the group is the
	// same fan-out that SetLimit would bound if a cap is ever wanted.
	slots := make([]models.DomainResult, len(domains))
	var g errgroup.Group
	for i, domain := range domains {
		g.Go(func() error {
			slots[i] = worker.Run(ctx, domain)
			return nil
		})
	}
	_ = g.Wait()

	result.Domains = slots
	result.Results = Assemble(slots)
	result.Duration = time.Since(result.StartedAt)

	log.Info("crawl finished",
		logger.Int("present", len(result.Results)),
		logger.Int("claimed", registry.Len()),
		logger.Int("contested", registry.Contested()),
		logger.Duration("duration", result.Duration),
	)
	return result
}

// Crawl is the one-shot form of New followed by Run.
func Crawl(ctx context.Context, domains, rawPatterns []string, opts ...Option) (*models.CrawlResult, error) {
	c, err := New(rawPatterns, opts...)
	if err != nil {
		return nil, err
	}
	return c.Run(ctx, domains), nil
}

// Assemble builds the result map from finished worker results. Failed fetches
// get no key. A domain listed more than once is merged under one key in input
// order; the URLs cannot overlap because each was claimed only once.
func Assemble(results []models.DomainResult) models.ResultMap {
	m := make(models.ResultMap, len(results))
	for i := range results {
		r := &results[i]
		if !r.Present() {
			continue
		}
		urls := r.URLs
		if urls == nil {
			urls = []string{}
		}
		if existing, ok := m[r.Domain]; ok {
			m[r.Domain] = append(existing, urls...)
			continue
		}
		m[r.Domain] = append([]string{}, urls...)
	}
	return m
}
