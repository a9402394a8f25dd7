package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/amosWeiskopf/linksieve/internal/logger"
	"github.com/amosWeiskopf/linksieve/internal/models"
)

// DefaultTimeout bounds a single landing page request, body included.
const DefaultTimeout = 10 * time.Second

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.5 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/115.0",
}

func getRandomUserAgent() string {
	return userAgents[rand.Intn(len(userAgents))]
}

// Worker fetches one landing page, filters its links and claims the
// survivors. The same Worker value may run many domains concurrently; all of
// its fields are read-only during Run.
type Worker struct {
	Client    *http.Client
	Matcher   Matcher
	Registry  Claimer
	Extractor LinkSource
	Timeout   time.Duration
	UserAgent string
	Logger    logger.Logger
}

// Run processes domain to a terminal state. It never panics and never
// returns an error: the outcome, including any failure, is in the result.
func (w *Worker) Run(ctx context.Context, domain string) (res models.DomainResult) {
	start := time.Now()
	log := w.baseLogger().With(logger.String("domain", domain))
	res = models.DomainResult{Domain: domain}
	res.StateName = models.StatePending.String()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("unexpected failure: %v", r)
			if res.State == models.StatePending || res.State == models.StateFetching {
				res.Finish(models.StateFetchFailed, &FetchError{Domain: domain, Err: err})
			} else {
				res.Finish(models.StateParseFailed, &ParseError{Domain: domain, Err: err})
			}
		}
		res.Elapsed = time.Since(start)
		w.report(log, &res)
	}()

	res.State = models.StateFetching
	timeout := w.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, domain, nil)
	if err != nil {
		res.Finish(models.StateFetchFailed, &FetchError{Domain: domain, Err: err})
		return res
	}
	ua := w.UserAgent
	if ua == "" {
		ua = getRandomUserAgent()
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := w.httpClient().Do(req)
	if err != nil {
		res.Finish(models.StateFetchFailed, &FetchError{Domain: domain, Err: err})
		return res
	}
	defer resp.Body.Close()

	res.StatusCode = resp.StatusCode
	if resp.StatusCode != http.StatusOK {
		res.Finish(models.StateFetchFailed, &FetchError{Domain: domain, StatusCode: resp.StatusCode})
		return res
	}

	// From here on the domain has an entry, even if nothing else succeeds.
	res.State = models.StateFetched
	res.URLs = []string{}
	log.Debug("page fetched", logger.String("content_type", resp.Header.Get("Content-Type")))

	res.State = models.StateParsing
	markup, err := readText(resp)
	if err != nil {
		res.Finish(models.StateParseFailed, &ParseError{Domain: domain, Err: err})
		return res
	}

	for link, err := range w.Extractor.Links(markup, domain) {
		if err != nil {
			res.Finish(models.StateParseFailed, &ParseError{Domain: domain, Err: err})
			return res
		}
		res.LinksSeen++
		if !w.Matcher.Matches(link) {
			continue
		}
		res.Matched++
		if !w.Registry.Claim(link) {
			res.Duplicates++
			continue
		}
		res.URLs = append(res.URLs, link)
	}

	res.Finish(models.StateCompleted, nil)
	return res
}

// readText reads the whole body, decoding it to UTF-8 from the charset the
// server declared or the markup sniffs as.
func readText(resp *http.Response) (string, error) {
	r, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if errors.Is(err, io.EOF) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("decode body: %w", err)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(body), nil
}

func (w *Worker) report(log logger.Logger, res *models.DomainResult) {
	fields := []logger.Field{
		logger.String("state", res.State.String()),
		logger.Duration("elapsed", res.Elapsed),
	}
	if res.StatusCode != 0 {
		fields = append(fields, logger.Int("status", res.StatusCode))
	}
	switch res.State {
	case models.StateCompleted:
		fields = append(fields,
			logger.Int("links", res.LinksSeen),
			logger.Int("matched", res.Matched),
			logger.Int("kept", len(res.URLs)),
			logger.Int("duplicates", res.Duplicates),
		)
		log.Info("domain completed", fields...)
	case models.StateFetchFailed:
		log.Warn("fetch failed", append(fields, logger.Error(res.Err))...)
	default:
		log.Warn("parse failed", append(fields, logger.Error(res.Err), logger.Int("kept", len(res.URLs)))...)
	}
}

func (w *Worker) httpClient() *http.Client {
	if w.Client != nil {
		return w.Client
	}
	return http.DefaultClient
}

func (w *Worker) baseLogger() logger.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return logger.NewNop()
}
