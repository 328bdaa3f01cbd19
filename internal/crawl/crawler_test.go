// Package crawl tests the category pipeline with in-memory collaborators.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/newsbrief/crawler/internal/fetcher"
	"github.com/newsbrief/crawler/internal/news"
)

var seoul = time.FixedZone("KST", 9*60*60)

// crawlNow is the reference clock for every test in this file.
var crawlNow = time.Date(2024, 5, 1, 17, 0, 0, 0, seoul)

type fixedClock struct{}

func (fixedClock) Now() time.Time           { return crawlNow }
func (fixedClock) Location() *time.Location { return seoul }

type fakeRenderer struct {
	html string
	err  error
	urls []string
}

func (r *fakeRenderer) RenderListing(_ context.Context, url string) (string, error) {
	r.urls = append(r.urls, url)
	return r.html, r.err
}

type fakePage struct {
	body        string
	publishedAt string
}

type fakeFetcher struct {
	pages   map[string]fakePage
	fetched []string
}

func (f *fakeFetcher) Fetch(_ context.Context, articleURL string) (string, string) {
	f.fetched = append(f.fetched, articleURL)
	page, ok := f.pages[articleURL]
	if !ok {
		return fetcher.SentinelBody, fetcher.SentinelPublishedAt
	}
	return page.body, page.publishedAt
}

type passthroughConverter struct{}

func (passthroughConverter) Convert(bodyHTML string) string { return bodyHTML }

type fakeStore struct {
	saved map[news.Category][]news.Draft
	err   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{saved: make(map[news.Category][]news.Draft)}
}

func (s *fakeStore) Save(_ context.Context, category news.Category, drafts []news.Draft) error {
	if s.err != nil {
		return s.err
	}
	s.saved[category] = append(s.saved[category], drafts...)
	return nil
}

func (s *fakeStore) Load(_ context.Context, category news.Category) ([]news.Article, error) {
	return nil, nil
}

func listingItem(url, title, press string) string {
	return fmt.Sprintf(
		`<div class="sa_item"><a class="sa_text_title" href="%s">%s</a><span class="sa_text_press">%s</span></div>`,
		url, title, press)
}

func listing(items ...string) string {
	page := `<html><body><div class="section_latest">`
	for _, item := range items {
		page += item
	}
	return page + `</div></body></html>`
}

func at(t time.Time) string {
	return t.Format(news.PublishedAtLayout)
}

func newCrawler(r *fakeRenderer, f *fakeFetcher, s *fakeStore) *Crawler {
	return New(r, f, passthroughConverter{}, s, fixedClock{}, Config{
		BaseURL:       "https://news.example.com/section",
		RecencyWindow: 8 * time.Hour,
	}, zap.NewNop())
}

// TestCrawlCategoryEndToEnd covers the reference scenario: one blank URL,
// one stale article, one fresh article. Exactly one survives.
func TestCrawlCategoryEndToEnd(t *testing.T) {
	t.Parallel()

	renderer := &fakeRenderer{html: listing(
		listingItem("", "링크 없는 기사", "A사"),
		listingItem("https://n.example.com/old", "오래된 기사", "B사"),
		listingItem("https://n.example.com/fresh", "새 기사", "C사"),
	)}
	fetch := &fakeFetcher{pages: map[string]fakePage{
		"https://n.example.com/old":   {body: "옛날 본문", publishedAt: at(crawlNow.Add(-9 * time.Hour))},
		"https://n.example.com/fresh": {body: "새 본문", publishedAt: at(crawlNow.Add(-time.Hour))},
	}}
	st := newFakeStore()

	drafts, err := newCrawler(renderer, fetch, st).CrawlCategory(context.Background(), news.CategoryPolitics)
	require.NoError(t, err)

	require.Equal(t, []string{"https://news.example.com/section/100"}, renderer.urls)
	require.Len(t, drafts, 1)
	require.Equal(t, "새 기사", drafts[0].Title)
	require.Equal(t, "C사", drafts[0].Source)
	require.Equal(t, "새 본문", drafts[0].Content)
	require.Len(t, st.saved[news.CategoryPolitics], 1)
}

// TestCrawlCategoryDedupesByURL skips repeated URLs without re-fetching.
func TestCrawlCategoryDedupesByURL(t *testing.T) {
	t.Parallel()

	renderer := &fakeRenderer{html: listing(
		listingItem("https://n.example.com/a", "기사", "A사"),
		listingItem("https://n.example.com/a", "기사 중복", "A사"),
	)}
	fetch := &fakeFetcher{pages: map[string]fakePage{
		"https://n.example.com/a": {body: "본문", publishedAt: at(crawlNow.Add(-time.Hour))},
	}}
	st := newFakeStore()

	drafts, err := newCrawler(renderer, fetch, st).CrawlCategory(context.Background(), news.CategoryEconomy)
	require.NoError(t, err)

	require.Len(t, drafts, 1)
	require.Equal(t, []string{"https://n.example.com/a"}, fetch.fetched)
}

// TestCrawlCategoryRecencyBoundary includes an exactly-8-hours-old article.
func TestCrawlCategoryRecencyBoundary(t *testing.T) {
	t.Parallel()

	renderer := &fakeRenderer{html: listing(
		listingItem("https://n.example.com/edge", "경계 기사", "A사"),
		listingItem("https://n.example.com/past", "지난 기사", "A사"),
	)}
	fetch := &fakeFetcher{pages: map[string]fakePage{
		"https://n.example.com/edge": {body: "본문", publishedAt: at(crawlNow.Add(-8 * time.Hour))},
		"https://n.example.com/past": {body: "본문", publishedAt: at(crawlNow.Add(-8*time.Hour - time.Second))},
	}}
	st := newFakeStore()

	drafts, err := newCrawler(renderer, fetch, st).CrawlCategory(context.Background(), news.CategorySociety)
	require.NoError(t, err)

	require.Len(t, drafts, 1)
	require.Equal(t, "경계 기사", drafts[0].Title)
}

// TestCrawlCategorySentinelDateExcluded drops fetch failures silently.
func TestCrawlCategorySentinelDateExcluded(t *testing.T) {
	t.Parallel()

	renderer := &fakeRenderer{html: listing(
		listingItem("https://n.example.com/broken", "깨진 기사", "A사"),
	)}
	fetch := &fakeFetcher{pages: map[string]fakePage{}}
	st := newFakeStore()

	drafts, err := newCrawler(renderer, fetch, st).CrawlCategory(context.Background(), news.CategoryWorld)
	require.NoError(t, err)
	require.Empty(t, drafts)
	require.Empty(t, st.saved[news.CategoryWorld])
}

// TestCrawlCategoryMissingPressDefaults records the unknown press marker.
func TestCrawlCategoryMissingPressDefaults(t *testing.T) {
	t.Parallel()

	renderer := &fakeRenderer{html: listing(
		`<div class="sa_item"><a class="sa_text_title" href="https://n.example.com/p">무소속 기사</a></div>`,
	)}
	fetch := &fakeFetcher{pages: map[string]fakePage{
		"https://n.example.com/p": {body: "본문", publishedAt: at(crawlNow.Add(-time.Hour))},
	}}
	st := newFakeStore()

	drafts, err := newCrawler(renderer, fetch, st).CrawlCategory(context.Background(), news.CategoryCulture)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	require.Equal(t, "알 수 없음", drafts[0].Source)
}

// TestCrawlCategoryInvalidCategory rejects unmapped ids immediately.
func TestCrawlCategoryInvalidCategory(t *testing.T) {
	t.Parallel()

	renderer := &fakeRenderer{}
	st := newFakeStore()

	_, err := newCrawler(renderer, &fakeFetcher{}, st).CrawlCategory(context.Background(), news.Category(99))
	require.ErrorIs(t, err, news.ErrInvalidCategory)
	require.Empty(t, renderer.urls)
}

// TestCrawlCategoryRenderFailure surfaces the error without saving.
func TestCrawlCategoryRenderFailure(t *testing.T) {
	t.Parallel()

	renderer := &fakeRenderer{err: errors.New("browser gone")}
	st := newFakeStore()

	_, err := newCrawler(renderer, &fakeFetcher{}, st).CrawlCategory(context.Background(), news.CategoryPolitics)
	require.ErrorContains(t, err, "browser gone")
	require.Empty(t, st.saved)
}

// TestRunAllContinuesPastFailures crawls remaining categories after an error.
func TestRunAllContinuesPastFailures(t *testing.T) {
	t.Parallel()

	renderer := &fakeRenderer{html: listing(
		listingItem("https://n.example.com/a", "기사", "A사"),
	)}
	fetch := &fakeFetcher{pages: map[string]fakePage{
		"https://n.example.com/a": {body: "본문", publishedAt: at(crawlNow.Add(-time.Hour))},
	}}
	st := newFakeStore()
	st.err = errors.New("cache down")

	c := newCrawler(renderer, fetch, st)
	c.RunAll(context.Background())

	// Every category was attempted despite the store failing each save.
	require.Len(t, renderer.urls, len(news.AllCategories()))
}

// TestRunAllStopsOnCanceledContext abandons the run between categories.
func TestRunAllStopsOnCanceledContext(t *testing.T) {
	t.Parallel()

	renderer := &fakeRenderer{html: listing()}
	st := newFakeStore()
	c := newCrawler(renderer, &fakeFetcher{}, st)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.RunAll(ctx)

	require.Empty(t, renderer.urls)
}
