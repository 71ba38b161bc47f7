package scrape

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"scraperd/internal/domain"
	"scraperd/internal/ports"
)

const (
	userAgent = "scraperd/1.0"

	// Single result node on the search page. Layout changes and
	// anti-scraping swaps make misses routine, so a miss yields an
	// empty title rather than an error.
	staticResultSelector = ".gs_r.gs_or.gs_scl > .gs_ri > .gs_rt"
)

// StaticExtractor fetches the locator with one blocking GET and applies a
// fixed CSS selector to the response markup.
type StaticExtractor struct {
	client   *resty.Client
	selector string
	logger   *slog.Logger
}

var _ ports.Extractor = (*StaticExtractor)(nil)

// NewStaticExtractor wires an HTTP client with the fetch timeout.
func NewStaticExtractor(timeout time.Duration, logger *slog.Logger) *StaticExtractor {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml")

	return &StaticExtractor{
		client:   client,
		selector: staticResultSelector,
		logger:   logger,
	}
}

// Name identifies the strategy inside the registry.
func (e *StaticExtractor) Name() string {
	return "static"
}

// Extract performs the GET and yields exactly one candidate on success.
// Any status other than 200 is a fetch failure; there is no retry.
func (e *StaticExtractor) Extract(ctx context.Context, locator string) ([]domain.Candidate, error) {
	resp, err := e.client.R().SetContext(ctx).Get(locator)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", locator, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", locator, resp.Status())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	title := doc.Find(e.selector).First().Text()
	if title == "" {
		e.logger.Debug("result selector missed", "locator", locator)
	}

	return []domain.Candidate{{Title: &title}}, nil
}
