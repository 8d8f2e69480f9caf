package analyzer_test

import (
	"context"
	"errors"
	"feedwords/analyzer"
	"feedwords/models"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

type fakeFetcher struct {
	mu       sync.Mutex
	articles map[string][]models.Article
	calls    []string
	onFetch  func(name string)
}

func (f *fakeFetcher) Fetch(ctx context.Context, name string, feedURL string) []models.Article {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
	if f.onFetch != nil {
		f.onFetch(name)
	}
	if articles, ok := f.articles[name]; ok {
		return articles
	}
	return []models.Article{}
}

type fakeSettings struct {
	settings models.Settings
	err      error
}

func (f *fakeSettings) Snapshot(ctx context.Context) (models.Settings, error) {
	return f.settings, f.err
}

type fakeHistory struct {
	runs []models.AnalysisRun
	err  error
}

func (f *fakeHistory) RecordRun(ctx context.Context, run models.AnalysisRun) error {
	f.runs = append(f.runs, run)
	return f.err
}

func selection(names ...string) *models.FeedList {
	feeds := models.NewOrderedMap[string]()
	for _, name := range names {
		feeds.Set(name, "http://example.com/"+name)
	}
	return feeds
}

func scenario() (*fakeFetcher, *fakeSettings) {
	fetcher := &fakeFetcher{articles: map[string][]models.Article{
		"A": {
			{Title: "Climate summit", Description: "Leaders discuss climate", Link: "a1", FeedName: "A"},
			{Title: "Markets rally", Description: "", Link: "a2", FeedName: "A"},
		},
		"B": {
			{Title: "Climate protest", Description: "Youth march", Link: "b1", FeedName: "B"},
		},
	}}
	settings := &fakeSettings{settings: models.Settings{
		SelectedFeeds:   selection("A", "B"),
		CustomStopwords: []string{"leaders"},
	}}
	return fetcher, settings
}

func TestRunAggregatesFeedsInSelectionOrder(t *testing.T) {
	fetcher, settings := scenario()
	a := analyzer.New(fetcher, settings, analyzer.WithClock(func() time.Time { return fixedTime }))

	response, err := a.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, fetcher.calls)
	assert.Equal(t, 3, response.TotalArticles)
	assert.Equal(t, "2024-01-02T03:04:05Z", response.Timestamp)
	assert.Equal(t, models.WordCount{Word: "climate", Frequency: 3}, response.WordFrequency[0])
	assert.Equal(t, []string{"A", "B"}, response.FeedWordCounts.Keys())

	sourcesA, _ := response.FeedWordSources.Get("A")
	_, ok := sourcesA.Get("leaders")
	assert.False(t, ok, "custom stopwords are filtered")
}

func TestRunSettingsFailureIsPassError(t *testing.T) {
	fetcher := &fakeFetcher{}
	history := &fakeHistory{}
	a := analyzer.New(fetcher, &fakeSettings{err: errors.New("disk on fire")}, analyzer.WithHistory(history))

	called := false
	a.OnComplete(func(models.AnalysisEvent) { called = true })

	response, err := a.Run(context.Background())
	assert.Nil(t, response)
	assert.ErrorIs(t, err, analyzer.ErrNoSettings)
	assert.ErrorContains(t, err, "disk on fire")
	assert.Empty(t, fetcher.calls)
	assert.Empty(t, history.runs)
	assert.False(t, called)
}

func TestRunRecordsHistoryAndNotifies(t *testing.T) {
	fetcher, settings := scenario()
	history := &fakeHistory{}
	a := analyzer.New(fetcher, settings,
		analyzer.WithHistory(history),
		analyzer.WithClock(func() time.Time { return fixedTime }),
	)

	var events []models.AnalysisEvent
	a.OnComplete(func(event models.AnalysisEvent) { events = append(events, event) })

	_, err := a.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, history.runs, 1)
	run := history.runs[0]
	assert.NotEmpty(t, run.Id)
	assert.Equal(t, fixedTime, run.CreatedAt)
	assert.Equal(t, 3, run.TotalArticles)
	assert.Equal(t, 2, run.FeedCount)
	assert.LessOrEqual(t, len(run.TopWords), analyzer.DefaultHistoryWords)
	assert.Equal(t, "climate", run.TopWords[0].Word)

	require.Len(t, events, 1)
	assert.Equal(t, run, events[0].Run)
}

func TestRunHistoryFailureIsNotFatal(t *testing.T) {
	fetcher, settings := scenario()
	a := analyzer.New(fetcher, settings, analyzer.WithHistory(&fakeHistory{err: errors.New("read only")}))

	response, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, response.TotalArticles)
}

func TestRunStopsWhenCancelled(t *testing.T) {
	fetcher, settings := scenario()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fetcher.onFetch = func(name string) { cancel() }

	response, err := analyzer.New(fetcher, settings).Run(ctx)
	assert.Nil(t, response)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"A"}, fetcher.calls)
}

func TestRunWithoutFeeds(t *testing.T) {
	a := analyzer.New(&fakeFetcher{}, &fakeSettings{settings: models.Settings{SelectedFeeds: selection()}})

	response, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, response.TotalArticles)
	assert.Empty(t, response.WordFrequency)
	assert.Equal(t, 0, response.FeedWordCounts.Len())
}
