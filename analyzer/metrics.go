package analyzer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	passes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedwords_analysis_passes_total",
		Help: "The total number of analysis passes by outcome",
	}, []string{"outcome"})

	passDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "feedwords_analysis_pass_duration_seconds",
		Help:    "Duration of analysis passes from settings snapshot to formatted result",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // Start at 100ms, double each bucket, 10 buckets
	})

	passArticles = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "feedwords_analysis_last_pass_articles",
		Help: "Number of articles analyzed by the most recent successful pass",
	})
)
