// Package news defines core types shared across the crawl pipeline.
package news

import "time"

// PublishedAtLayout is the timestamp format carried in the article page's
// data-date-time attribute.
const PublishedAtLayout = "2006-01-02 15:04:05"

// Candidate is a listing item harvested from a rendered category page. It is
// transient: either resolved into an Article or discarded by the recency gate.
type Candidate struct {
	URL       string
	Title     string
	Press     string
	Thumbnail string
}

// Draft is an article that survived fetching and filtering but has not yet
// been assigned an id. Ids are handed out by the store at save time.
type Draft struct {
	Title       string
	Source      string
	PublishedAt string
	Thumbnail   string
	Content     string
}

// Article is the persisted unit, one record in a category's cached list.
type Article struct {
	ArticleID   int64  `json:"articleId"`
	Title       string `json:"title"`
	Source      string `json:"source"`
	PublishedAt string `json:"publishedDate"`
	Thumbnail   string `json:"thumbnail"`
	Content     string `json:"content"`
}

// FromDraft builds an Article from a draft plus a freshly assigned id.
func FromDraft(id int64, d Draft) Article {
	return Article{
		ArticleID:   id,
		Title:       d.Title,
		Source:      d.Source,
		PublishedAt: d.PublishedAt,
		Thumbnail:   d.Thumbnail,
		Content:     d.Content,
	}
}

// ParsePublishedAt parses a site-local publish timestamp in the given location.
func ParsePublishedAt(value string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(PublishedAtLayout, value, loc)
}
