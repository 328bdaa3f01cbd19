package crawl

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TotalRuns tracks completed orchestrator passes over all categories.
	TotalRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "newscrawler_runs_total",
		Help: "The total number of full crawl runs.",
	})
	// TotalCategoryFailures tracks categories that failed and were skipped.
	TotalCategoryFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "newscrawler_category_failures_total",
		Help: "The total number of per-category crawl failures.",
	})
	// TotalCandidates tracks listing items harvested from rendered pages.
	TotalCandidates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "newscrawler_candidates_total",
		Help: "The total number of listing items seen.",
	})
	// TotalDuplicates tracks candidates skipped by in-run URL dedup.
	TotalDuplicates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "newscrawler_duplicates_skipped_total",
		Help: "The total number of candidates skipped as duplicate URLs.",
	})
	// TotalStale tracks articles excluded by the recency gate.
	TotalStale = promauto.NewCounter(prometheus.CounterOpts{
		Name: "newscrawler_stale_articles_total",
		Help: "The total number of articles outside the recency window.",
	})
	// TotalIncluded tracks articles that passed every gate and were stored.
	TotalIncluded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "newscrawler_articles_included_total",
		Help: "The total number of articles included in a category set.",
	})
)
