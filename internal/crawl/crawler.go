// Package crawl implements the category crawl pipeline and its orchestrator.
package crawl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/newsbrief/crawler/internal/news"
)

// Listing page selectors, fixed by the source site's markup.
const (
	itemSelector      = ".section_latest .sa_item"
	titleSelector     = ".sa_text_title"
	pressSelector     = ".sa_text_press"
	thumbnailSelector = ".sa_thumb_inner img"
)

// unknownPress is recorded when a listing item carries no press name.
const unknownPress = "알 수 없음"

// Config controls the crawl pipeline.
type Config struct {
	BaseURL       string
	RecencyWindow time.Duration
}

// Crawler walks category listing pages, resolves candidates into article
// drafts, and hands them to the store.
type Crawler struct {
	renderer  news.Renderer
	fetcher   news.Fetcher
	converter news.Converter
	store     news.Store
	clock     news.Clock
	cfg       Config
	logger    *zap.Logger
}

// New constructs a Crawler.
func New(
	renderer news.Renderer,
	fetcher news.Fetcher,
	converter news.Converter,
	store news.Store,
	clock news.Clock,
	cfg Config,
	logger *zap.Logger,
) *Crawler {
	if cfg.RecencyWindow <= 0 {
		cfg.RecencyWindow = 8 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Crawler{
		renderer:  renderer,
		fetcher:   fetcher,
		converter: converter,
		store:     store,
		clock:     clock,
		cfg:       cfg,
		logger:    logger,
	}
}

// CrawlCategory renders the category listing, exhausting pagination, then
// fetches and filters each unique article before saving the survivors. The
// returned drafts carry no ids; those are assigned by the store.
func (c *Crawler) CrawlCategory(ctx context.Context, category news.Category) ([]news.Draft, error) {
	code, err := category.Code()
	if err != nil {
		return nil, err
	}

	listingURL := fmt.Sprintf("%s/%s", strings.TrimRight(c.cfg.BaseURL, "/"), code)
	html, err := c.renderer.RenderListing(ctx, listingURL)
	if err != nil {
		return nil, fmt.Errorf("render category %d listing: %w", category, err)
	}

	candidates, err := parseListing(html)
	if err != nil {
		return nil, fmt.Errorf("parse category %d listing: %w", category, err)
	}

	drafts := c.resolveCandidates(ctx, category, candidates)

	if err := c.store.Save(ctx, category, drafts); err != nil {
		return drafts, fmt.Errorf("save category %d articles: %w", category, err)
	}
	return drafts, nil
}

// resolveCandidates fetches each unique candidate and applies the recency
// gate. The gate is the sole inclusion decision: an unparseable publish date
// counts as too old, never as an error.
func (c *Crawler) resolveCandidates(ctx context.Context, category news.Category, candidates []news.Candidate) []news.Draft {
	var drafts []news.Draft
	seen := make(map[string]struct{}, len(candidates))
	now := c.clock.Now()

	for _, candidate := range candidates {
		TotalCandidates.Inc()
		if candidate.URL == "" {
			continue
		}
		if _, dup := seen[candidate.URL]; dup {
			TotalDuplicates.Inc()
			continue
		}
		seen[candidate.URL] = struct{}{}

		bodyHTML, publishedAt := c.fetcher.Fetch(ctx, candidate.URL)

		published, err := news.ParsePublishedAt(publishedAt, c.clock.Location())
		if err != nil || now.Sub(published) > c.cfg.RecencyWindow {
			TotalStale.Inc()
			c.logger.Debug("article outside recency window",
				zap.Int("category", int(category)),
				zap.String("url", candidate.URL),
				zap.String("published_at", publishedAt))
			continue
		}

		drafts = append(drafts, news.Draft{
			Title:       candidate.Title,
			Source:      candidate.Press,
			PublishedAt: publishedAt,
			Thumbnail:   candidate.Thumbnail,
			Content:     c.converter.Convert(bodyHTML),
		})
		TotalIncluded.Inc()
	}
	return drafts
}

// parseListing harvests candidate entries from the rendered listing DOM.
func parseListing(html string) ([]news.Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse listing dom: %w", err)
	}

	var candidates []news.Candidate
	doc.Find(itemSelector).Each(func(_ int, item *goquery.Selection) {
		title := item.Find(titleSelector).First()

		press := strings.TrimSpace(item.Find(pressSelector).First().Text())
		if press == "" {
			press = unknownPress
		}

		url, _ := title.Attr("href")
		thumbnail, _ := item.Find(thumbnailSelector).First().Attr("src")

		candidates = append(candidates, news.Candidate{
			URL:       url,
			Title:     strings.TrimSpace(title.Text()),
			Press:     press,
			Thumbnail: thumbnail,
		})
	})
	return candidates, nil
}

// RunAll crawls every configured category in fixed order. A failing category
// is logged and skipped; the run always proceeds to the remaining ones.
func (c *Crawler) RunAll(ctx context.Context) {
	start := c.clock.Now()
	c.logger.Info("crawl run started")

	for _, category := range news.AllCategories() {
		if ctx.Err() != nil {
			c.logger.Warn("crawl run abandoned", zap.Error(ctx.Err()))
			return
		}
		drafts, err := c.CrawlCategory(ctx, category)
		if err != nil {
			TotalCategoryFailures.Inc()
			c.logger.Error("category crawl failed",
				zap.Int("category", int(category)),
				zap.Error(err))
			continue
		}
		c.logger.Info("category crawl finished",
			zap.Int("category", int(category)),
			zap.Int("articles", len(drafts)))
	}

	TotalRuns.Inc()
	c.logger.Info("crawl run finished", zap.Duration("took", c.clock.Now().Sub(start)))
}
