package news

import (
	"context"
	"time"
)

// Renderer drives a browser session against a category listing page,
// exhausting dynamic pagination, and returns the final DOM snapshot.
type Renderer interface {
	RenderListing(ctx context.Context, url string) (string, error)
}

// Fetcher retrieves a single article page and extracts the body markup and
// publish timestamp. Implementations never fail hard: on any error they
// return the sentinel values and the pipeline drops the article downstream.
type Fetcher interface {
	Fetch(ctx context.Context, articleURL string) (bodyHTML string, publishedAt string)
}

// Converter turns article body markup into normalized text markup.
type Converter interface {
	Convert(bodyHTML string) string
}

// Store persists per-category article sets and assigns article ids.
type Store interface {
	Save(ctx context.Context, category Category, drafts []Draft) error
	Load(ctx context.Context, category Category) ([]Article, error)
}

// Clock returns the current site-local time (useful for testing).
type Clock interface {
	Now() time.Time
	Location() *time.Location
}
