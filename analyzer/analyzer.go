// Package analyzer runs analysis passes: it snapshots the settings, fetches
// the selected feeds one after another and aggregates their words.
package analyzer

import (
	"context"
	"errors"
	"feedwords/analysis"
	"feedwords/feeds"
	"feedwords/models"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// ErrNoSettings is wrapped by pass errors caused by unreadable settings
var ErrNoSettings = errors.New("settings unavailable")

// DefaultHistoryWords is how many top words are kept with each recorded run
const DefaultHistoryWords = 10

type SettingsSource interface {
	Snapshot(ctx context.Context) (models.Settings, error)
}

type HistoryRecorder interface {
	RecordRun(ctx context.Context, run models.AnalysisRun) error
}

// Listener is called after every successful pass
type Listener func(event models.AnalysisEvent)

type Option func(*Analyzer)

func WithLimits(limits analysis.Limits) Option {
	return func(a *Analyzer) {
		a.limits = limits
	}
}

// WithHistory records a summary of each successful pass
func WithHistory(history HistoryRecorder) Option {
	return func(a *Analyzer) {
		a.history = history
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		a.now = now
	}
}

type Analyzer struct {
	fetcher  feeds.Fetcher
	settings SettingsSource
	history  HistoryRecorder
	limits   analysis.Limits
	now      func() time.Time

	mu        sync.RWMutex
	listeners []Listener
}

func New(fetcher feeds.Fetcher, settings SettingsSource, opts ...Option) *Analyzer {
	a := &Analyzer{
		fetcher:  fetcher,
		settings: settings,
		limits:   analysis.DefaultLimits(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// OnComplete registers a listener for finished passes
func (a *Analyzer) OnComplete(listener Listener) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, listener)
}

// Run performs one full pass. On error no partial result is returned.
func (a *Analyzer) Run(ctx context.Context) (*models.AnalysisResponse, error) {
	start := time.Now()
	defer func() {
		passDuration.Observe(time.Since(start).Seconds())
	}()

	result, err := a.aggregate(ctx)
	if err != nil {
		passes.WithLabelValues("error").Inc()
		log.WithError(err).Error("Analysis pass failed")
		return nil, err
	}

	response := analysis.Format(result, a.limits)
	passes.WithLabelValues("success").Inc()
	passArticles.Set(float64(result.TotalArticles))

	run := models.AnalysisRun{
		Id:            uuid.NewString(),
		CreatedAt:     result.Timestamp,
		TotalArticles: result.TotalArticles,
		UniqueWords:   result.UniqueWords,
		FeedCount:     len(result.Feeds),
		TopWords:      result.Global.Top(DefaultHistoryWords),
	}

	log.WithFields(log.Fields{
		"run":      run.Id,
		"feeds":    run.FeedCount,
		"articles": run.TotalArticles,
		"words":    run.UniqueWords,
		"latency":  time.Since(start),
	}).Info("Analysis pass finished")

	if a.history != nil {
		// The pass already succeeded, a failed write only loses history
		if err := a.history.RecordRun(ctx, run); err != nil {
			log.WithError(err).Error("Error recording analysis run")
		}
	}

	a.notify(models.AnalysisEvent{Run: run})

	return response, nil
}

func (a *Analyzer) aggregate(ctx context.Context) (*analysis.Result, error) {
	settings, err := a.settings.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoSettings, err)
	}

	stopwords := analysis.NewStopwordSet(settings.CustomStopwords)
	aggregator := analysis.NewAggregator(stopwords).WithClock(a.now)

	// Feeds are fetched strictly in selection order, one at a time
	for _, name := range settings.SelectedFeeds.Keys() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("analysis cancelled: %w", err)
		}
		url, _ := settings.SelectedFeeds.Get(name)

		log.WithFields(log.Fields{
			"feed": name,
			"url":  url,
		}).Info("Fetching feed")

		aggregator.AddFeed(name, a.fetcher.Fetch(ctx, name, url))
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis cancelled: %w", err)
	}

	return aggregator.Result(), nil
}

func (a *Analyzer) notify(event models.AnalysisEvent) {
	a.mu.RLock()
	listeners := make([]Listener, len(a.listeners))
	copy(listeners, a.listeners)
	a.mu.RUnlock()

	for _, listener := range listeners {
		listener(event)
	}
}
