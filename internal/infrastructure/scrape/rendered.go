package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"scraperd/internal/domain"
	"scraperd/internal/ports"
)

const (
	renderedTitleSelector       = ".gs_r.gs_or.gs_scl > .gs_ri > .gs_rt"
	renderedURLSelector         = ".gs_r.gs_or.gs_scl > .gs_ri > .gs_rt > a"
	renderedDescriptionSelector = ".gs_r.gs_or.gs_scl > .gs_ri > .gs_rs"
	renderedFileTypeSelector    = ".gs_ctg2"

	// chromedp lookups wait for a node to appear; cap the wait so a
	// missing element degrades to an absent field instead of hanging.
	lookupTimeout = 2 * time.Second
)

// RenderedExtractor navigates a headless browser session to the locator
// and runs four independent selector lookups against the live DOM. Each
// lookup misses on its own; a single absent field never aborts the rest.
type RenderedExtractor struct {
	allocOpts []chromedp.ExecAllocatorOption
	timeout   time.Duration
	logger    *slog.Logger
}

var _ ports.Extractor = (*RenderedExtractor)(nil)

// NewRenderedExtractor configures a headless allocator; timeout bounds the
// whole navigation and lookup pass.
func NewRenderedExtractor(timeout time.Duration, logger *slog.Logger) *RenderedExtractor {
	return &RenderedExtractor{
		allocOpts: chromedp.DefaultExecAllocatorOptions[:],
		timeout:   timeout,
		logger:    logger,
	}
}

// Name identifies the strategy inside the registry.
func (e *RenderedExtractor) Name() string {
	return "rendered"
}

// Extract opens an isolated browser session, navigates, and collects the
// four fields. The session is released on every exit path, lookups and
// failures included.
func (e *RenderedExtractor) Extract(ctx context.Context, locator string) ([]domain.Candidate, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, e.allocOpts...)
	defer cancelAlloc()

	sessionCtx, cancelSession := chromedp.NewContext(allocCtx)
	defer cancelSession()

	if err := chromedp.Run(sessionCtx, chromedp.Navigate(locator)); err != nil {
		return nil, fmt.Errorf("navigate %s: %w", locator, err)
	}

	var cand domain.Candidate
	cand.Title = e.lookupText(sessionCtx, renderedTitleSelector)
	cand.URL = e.lookupAttr(sessionCtx, renderedURLSelector, "href")
	cand.Description = e.lookupText(sessionCtx, renderedDescriptionSelector)
	if raw := e.lookupText(sessionCtx, renderedFileTypeSelector); raw != nil {
		fileType := strings.NewReplacer("[", "", "]", "").Replace(*raw)
		cand.FileType = &fileType
	}

	return []domain.Candidate{cand}, nil
}

func (e *RenderedExtractor) lookupText(ctx context.Context, selector string) *string {
	lctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	var text string
	if err := chromedp.Run(lctx, chromedp.Text(selector, &text, chromedp.ByQuery)); err != nil {
		e.logger.Debug("selector missed", "selector", selector)
		return nil
	}
	return &text
}

func (e *RenderedExtractor) lookupAttr(ctx context.Context, selector, attr string) *string {
	lctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	var value string
	var ok bool
	if err := chromedp.Run(lctx, chromedp.AttributeValue(selector, attr, &value, &ok, chromedp.ByQuery)); err != nil || !ok {
		e.logger.Debug("attribute missed", "selector", selector, "attr", attr)
		return nil
	}
	return &value
}
