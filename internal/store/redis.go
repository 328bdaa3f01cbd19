// Package store persists per-category article sets in Redis.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/newsbrief/crawler/internal/news"
)

const (
	categoryKeyFormat = "articles:category:%d"
	// counterKey backs the global article id sequence. INCR is atomic on the
	// server, so concurrent saves never observe the same id. No expiry.
	counterKey = "article_id"

	connectTimeout = 2 * time.Second
)

// NewClient creates a Redis client and verifies connectivity.
func NewClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

// RedisStore implements news.Store. It is the sole writer of the per-category
// lists and the id counter; stored lists are treated as immutable by readers.
type RedisStore struct {
	client *redis.Client
	clock  news.Clock
	logger *zap.Logger
}

// New constructs a RedisStore.
func New(client *redis.Client, clock news.Clock, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{client: client, clock: clock, logger: logger}
}

// Save assigns ids to the drafts, appends them to the category's existing
// list, and writes the result back with an expiry at the next local midnight.
// A failed read of the existing list degrades to an empty baseline; only
// counter and write failures are reported to the caller.
func (s *RedisStore) Save(ctx context.Context, category news.Category, drafts []news.Draft) error {
	key := categoryKey(category)
	articles := s.loadExisting(ctx, key)

	for _, draft := range drafts {
		id, err := s.client.Incr(ctx, counterKey).Result()
		if err != nil {
			return fmt.Errorf("next article id: %w", err)
		}
		articles = append(articles, news.FromDraft(id, draft))
	}

	payload, err := json.Marshal(articles)
	if err != nil {
		return fmt.Errorf("encode category %d articles: %w", category, err)
	}

	ttl := untilNextMidnight(s.clock.Now())
	if err := s.client.SetEx(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("write category %d articles: %w", category, err)
	}

	s.logger.Info("category articles saved",
		zap.Int("category", int(category)),
		zap.Int("new", len(drafts)),
		zap.Int("total", len(articles)),
		zap.Duration("ttl", ttl))
	return nil
}

// Load returns the category's cached article list, or an empty list when the
// key is absent.
func (s *RedisStore) Load(ctx context.Context, category news.Category) ([]news.Article, error) {
	raw, err := s.client.Get(ctx, categoryKey(category)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read category %d articles: %w", category, err)
	}

	var articles []news.Article
	if err := json.Unmarshal([]byte(raw), &articles); err != nil {
		return nil, fmt.Errorf("decode category %d articles: %w", category, err)
	}
	return articles, nil
}

// loadExisting reads the current list, treating any failure as an empty
// baseline so a degraded cache never blocks a save.
func (s *RedisStore) loadExisting(ctx context.Context, key string) []news.Article {
	raw, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		s.logger.Warn("existing articles unreadable, starting empty", zap.String("key", key), zap.Error(err))
		return nil
	}

	var articles []news.Article
	if err := json.Unmarshal([]byte(raw), &articles); err != nil {
		s.logger.Warn("existing articles malformed, starting empty", zap.String("key", key), zap.Error(err))
		return nil
	}
	return articles
}

func categoryKey(category news.Category) string {
	return fmt.Sprintf(categoryKeyFormat, int(category))
}

// untilNextMidnight computes the rolling same-day window: the set silently
// resets once local midnight passes.
func untilNextMidnight(now time.Time) time.Duration {
	midnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
	ttl := midnight.Sub(now).Truncate(time.Second)
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}
