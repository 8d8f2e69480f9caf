package feeds

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	feedFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedwords_feed_fetches_total",
		Help: "The total number of feed fetches by outcome",
	}, []string{"outcome"})

	feedFetchAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feedwords_feed_fetch_attempts_total",
		Help: "The total number of HTTP attempts made while fetching feeds, retries included",
	})

	feedFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "feedwords_feed_fetch_duration_seconds",
		Help:    "Duration of feed fetches including retries",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // Start at 50ms, double each bucket, 10 buckets
	})

	feedArticles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feedwords_feed_articles_total",
		Help: "The total number of articles taken from fetched feeds",
	})
)
