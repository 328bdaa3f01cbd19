// Package fetcher retrieves individual article pages using Colly.
package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Sentinel values returned when an article page cannot be read. The recency
// filter downstream treats an unparseable publish date as "too old", so a
// failed fetch drops out of the pipeline without surfacing an error.
const (
	SentinelBody        = "본문을 가져올 수 없습니다."
	SentinelPublishedAt = "발행 날짜를 찾을 수 없습니다."
)

// Fixed signatures of the article page elements.
const (
	publishedAtSelector = "span.media_end_head_info_datestamp_time._ARTICLE_DATE_TIME"
	publishedAtAttr     = "data-date-time"
	bodySelector        = "#dic_area"
)

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
	HostQPS   float64
}

// Fetcher implements news.Fetcher using the Colly collector.
type Fetcher struct {
	cfg           Config
	baseCollector *colly.Collector
	logger        *zap.Logger
	hostLimiters  sync.Map
}

// New builds a Fetcher.
func New(cfg Config, logger *zap.Logger) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := colly.NewCollector(colly.Async(false))
	c.IgnoreRobotsTxt = true
	// Clones share the visited-URL store; the same article may legitimately be
	// fetched again in a later run or from another category's listing.
	c.AllowURLRevisit = true
	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}
	c.SetRequestTimeout(cfg.Timeout)

	return &Fetcher{
		cfg:           cfg,
		baseCollector: c,
		logger:        logger,
	}
}

// Fetch retrieves the article page and extracts the body markup and publish
// timestamp. It never returns an error: any failure is logged and mapped to
// the sentinel values.
func (f *Fetcher) Fetch(ctx context.Context, articleURL string) (string, string) {
	if err := f.waitHostBudget(ctx, articleURL); err != nil {
		f.logger.Warn("article fetch rate wait failed", zap.String("url", articleURL), zap.Error(err))
		return SentinelBody, SentinelPublishedAt
	}

	body, err := f.get(ctx, articleURL)
	if err != nil {
		f.logger.Warn("article fetch failed", zap.String("url", articleURL), zap.Error(err))
		return SentinelBody, SentinelPublishedAt
	}

	return parseArticle(body)
}

// get executes a single HTTP GET using a collector clone.
func (f *Fetcher) get(ctx context.Context, articleURL string) ([]byte, error) {
	var (
		body     []byte
		status   int
		fetchErr error
	)

	collector := f.baseCollector.Clone()
	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(articleURL)
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("article fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return nil, fmt.Errorf("visit %s: %w", articleURL, err)
		}
	}
	if fetchErr != nil {
		return nil, fmt.Errorf("fetch %s: %w", articleURL, fetchErr)
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", articleURL, status)
	}
	return body, nil
}

// parseArticle extracts the two fields, falling back per field when an
// element is missing.
func parseArticle(body []byte) (string, string) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return SentinelBody, SentinelPublishedAt
	}

	publishedAt := SentinelPublishedAt
	if v, ok := doc.Find(publishedAtSelector).First().Attr(publishedAtAttr); ok {
		publishedAt = v
	}

	bodyHTML := SentinelBody
	if sel := doc.Find(bodySelector).First(); sel.Length() > 0 {
		if outer, err := goquery.OuterHtml(sel); err == nil {
			bodyHTML = outer
		}
	}

	return bodyHTML, publishedAt
}

func (f *Fetcher) waitHostBudget(ctx context.Context, rawURL string) error {
	if f.cfg.HostQPS <= 0 {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse article url: %w", err)
	}
	host := strings.ToLower(parsed.Host)
	val, _ := f.hostLimiters.LoadOrStore(host, rate.NewLimiter(rate.Limit(f.cfg.HostQPS), 1))
	limiter, ok := val.(*rate.Limiter)
	if !ok {
		return fmt.Errorf("unexpected limiter type %T", val)
	}
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait limiter: %w", err)
	}
	return nil
}
