package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"feedwords/analysis"
	"feedwords/feeds"
	"feedwords/models"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	feeds     *models.FeedList
	stopwords []string
	runs      []models.AnalysisRun
	err       error
	saves     int
}

func (f *fakeStore) SelectedFeeds(ctx context.Context) (*models.FeedList, error) {
	return f.feeds, f.err
}

func (f *fakeStore) SaveSelectedFeeds(ctx context.Context, feeds *models.FeedList) error {
	if f.err != nil {
		return f.err
	}
	f.saves++
	f.feeds = feeds
	return nil
}

func (f *fakeStore) CustomStopwords(ctx context.Context) ([]string, error) {
	return f.stopwords, f.err
}

func (f *fakeStore) SaveCustomStopwords(ctx context.Context, words []string) error {
	if f.err != nil {
		return f.err
	}
	f.saves++
	f.stopwords = words
	return nil
}

func (f *fakeStore) ListRuns(ctx context.Context, limit int) ([]models.AnalysisRun, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.runs) {
		return f.runs[:limit], nil
	}
	return f.runs, nil
}

type fakeRunner struct {
	response *models.AnalysisResponse
	err      error
}

func (f *fakeRunner) Run(ctx context.Context) (*models.AnalysisResponse, error) {
	return f.response, f.err
}

var testCatalog = []models.Feed{
	{Name: "Slashdot", URL: "http://s/rss", Category: "Technology & Science"},
	{Name: "BBC News", URL: "http://b/rss", Category: "News & Politics"},
	{Name: "Ars", URL: "http://a/feed", Category: "Technology & Science"},
}

func newApp(store *fakeStore, runner *fakeRunner) *fiber.App {
	return Server(&ServerConfig{
		Settings:    store,
		History:     store,
		Analyzer:    runner,
		Broadcaster: NewBroadcaster(),
		Catalog:     testCatalog,
	})
}

func feedList(pairs ...string) *models.FeedList {
	feeds := models.NewOrderedMap[string]()
	for i := 0; i+1 < len(pairs); i += 2 {
		feeds.Set(pairs[i], pairs[i+1])
	}
	return feeds
}

func do(t *testing.T, app *fiber.App, method, target, body string) (int, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(data)
}

func TestGetFeeds(t *testing.T) {
	store := &fakeStore{feeds: feedList("BBC News", "http://b/rss")}
	app := newApp(store, &fakeRunner{})

	status, body := do(t, app, http.MethodGet, "/api/feeds", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{
		"selected_feeds": {"BBC News": "http://b/rss"},
		"default_feeds": {"Slashdot": "http://s/rss", "BBC News": "http://b/rss", "Ars": "http://a/feed"}
	}`, body)
	// Catalog order is kept
	assert.Less(t, strings.Index(body, `"Slashdot"`), strings.Index(body, `"Ars"`))
}

func TestGetFeedsDefaultsToBuiltinCatalog(t *testing.T) {
	app := Server(&ServerConfig{Settings: &fakeStore{feeds: feedList()}, Analyzer: &fakeRunner{}})

	status, body := do(t, app, http.MethodGet, "/api/feeds", "")
	assert.Equal(t, http.StatusOK, status)

	var got struct {
		DefaultFeeds *models.FeedList `json:"default_feeds"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, feeds.DefaultCatalog().Keys(), got.DefaultFeeds.Keys())
}

func TestPostFeeds(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		status     int
		saves      int
		wantFeeds  []string
		wantErrKey bool
	}{
		{
			name:      "saves in body order",
			body:      `{"feeds": {"Zeta": "http://z/rss", "Alpha": "http://a/rss"}}`,
			status:    http.StatusOK,
			saves:     1,
			wantFeeds: []string{"Zeta", "Alpha"},
		},
		{
			name:      "missing feeds changes nothing",
			body:      `{}`,
			status:    http.StatusOK,
			wantFeeds: []string{"Old"},
		},
		{
			name:       "malformed json",
			body:       `{"feeds": `,
			status:     http.StatusBadRequest,
			wantFeeds:  []string{"Old"},
			wantErrKey: true,
		},
		{
			name:       "feeds must be an object",
			body:       `{"feeds": ["a"]}`,
			status:     http.StatusBadRequest,
			wantFeeds:  []string{"Old"},
			wantErrKey: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{feeds: feedList("Old", "http://o/rss")}
			app := newApp(store, &fakeRunner{})

			status, body := do(t, app, http.MethodPost, "/api/feeds", tt.body)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.saves, store.saves)
			assert.Equal(t, tt.wantFeeds, store.feeds.Keys())
			if tt.wantErrKey {
				assert.Contains(t, body, `"error"`)
			} else {
				assert.JSONEq(t, `{"status":"success"}`, body)
			}
		})
	}
}

func TestPostFeedsStoreFailure(t *testing.T) {
	app := newApp(&fakeStore{err: errors.New("database is locked")}, &fakeRunner{})

	status, body := do(t, app, http.MethodPost, "/api/feeds", `{"feeds": {}}`)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.JSONEq(t, `{"error":"database is locked"}`, body)
}

func TestStopwords(t *testing.T) {
	store := &fakeStore{}
	app := newApp(store, &fakeRunner{})

	status, body := do(t, app, http.MethodGet, "/api/stopwords", "")
	assert.Equal(t, http.StatusOK, status)
	var got stopwordsResponse
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, []string{}, got.CustomStopwords)
	assert.Equal(t, analysis.BuiltinStopwordCount(), got.DefaultCount)

	status, _ = do(t, app, http.MethodPost, "/api/stopwords", `{"stopwords": ["rust", "golang"]}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"rust", "golang"}, store.stopwords)

	status, _ = do(t, app, http.MethodPost, "/api/stopwords", `not json`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAnalyze(t *testing.T) {
	response := &models.AnalysisResponse{
		Articles:        []models.Article{},
		WordFrequency:   []models.WordCount{{Word: "climate", Frequency: 3}},
		FeedWordCounts:  models.NewOrderedMap[[]models.WordCount](),
		FeedWordSources: models.NewOrderedMap[*models.OrderedMap[[]models.SourceReference]](),
		TotalArticles:   3,
		Timestamp:       "2024-01-02T03:04:05Z",
	}
	app := newApp(&fakeStore{}, &fakeRunner{response: response})

	status, body := do(t, app, http.MethodGet, "/api/analyze", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{
		"articles": [],
		"word_frequency": [{"word": "climate", "frequency": 3}],
		"feed_word_counts": {},
		"feed_word_sources": {},
		"total_articles": 3,
		"total_unique_words": 0,
		"timestamp": "2024-01-02T03:04:05Z"
	}`, body)
}

func TestAnalyzeFailureIsSingleError(t *testing.T) {
	app := newApp(&fakeStore{}, &fakeRunner{err: errors.New("settings unavailable: boom")})

	status, body := do(t, app, http.MethodGet, "/api/analyze", "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.JSONEq(t, `{"error":"settings unavailable: boom"}`, body)
}

func TestHistory(t *testing.T) {
	runs := make([]models.AnalysisRun, 30)
	for i := range runs {
		runs[i] = models.AnalysisRun{Id: string(rune('a' + i%26)), TopWords: []models.WordCount{}}
	}
	app := newApp(&fakeStore{runs: runs}, &fakeRunner{})

	tests := []struct {
		target string
		want   int
	}{
		{target: "/api/history", want: models.DefaultHistoryLimit},
		{target: "/api/history?limit=5", want: 5},
		{target: "/api/history?limit=0", want: models.DefaultHistoryLimit},
		{target: "/api/history?limit=abc", want: models.DefaultHistoryLimit},
		{target: "/api/history?limit=1000", want: 30},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			status, body := do(t, app, http.MethodGet, tt.target, "")
			assert.Equal(t, http.StatusOK, status)
			var got []models.AnalysisRun
			require.NoError(t, json.Unmarshal([]byte(body), &got))
			assert.Len(t, got, tt.want)
		})
	}
}

func TestCatalog(t *testing.T) {
	app := newApp(&fakeStore{}, &fakeRunner{})

	status, body := do(t, app, http.MethodGet, "/api/catalog?category=Technology%20%26%20Science", "")
	assert.Equal(t, http.StatusOK, status)

	var got catalogResponse
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, []string{"Technology & Science", "News & Politics"}, got.Categories)
	require.Len(t, got.Feeds, 2)
	assert.Equal(t, "Slashdot", got.Feeds[0].Name)
	assert.Equal(t, "Ars", got.Feeds[1].Name)
}

func TestIndexAndMetrics(t *testing.T) {
	app := newApp(&fakeStore{}, &fakeRunner{})

	status, body := do(t, app, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "<title>feedwords</title>")

	status, body = do(t, app, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "go_goroutines")
}

func TestDeleteEventsRemovesClient(t *testing.T) {
	bc := NewBroadcaster()
	events := make(chan models.AnalysisEvent, 1)
	bc.AddClient("client-1", events)

	app := Server(&ServerConfig{Settings: &fakeStore{}, Analyzer: &fakeRunner{}, Broadcaster: bc})
	status, _ := do(t, app, http.MethodDelete, "/api/events?key=client-1", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, bc.ClientCount())

	_, ok := <-events
	assert.False(t, ok, "channel is closed")

	// Removing an unknown client is fine
	status, _ = do(t, app, http.MethodDelete, "/api/events?key=missing", "")
	assert.Equal(t, http.StatusOK, status)
}

func TestBroadcasterSkipsFullClients(t *testing.T) {
	bc := NewBroadcaster()
	fast := make(chan models.AnalysisEvent, 2)
	full := make(chan models.AnalysisEvent)
	bc.AddClient("fast", fast)
	bc.AddClient("full", full)

	bc.BroadcastAnalysis(models.AnalysisEvent{Run: models.AnalysisRun{Id: "run-1"}})

	require.Len(t, fast, 1)
	assert.Equal(t, "run-1", (<-fast).Run.Id)

	bc.Shutdown()
	assert.Equal(t, 0, bc.ClientCount())
}

func TestStreamEvents(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	events := make(chan models.AnalysisEvent, 1)
	pings := make(chan time.Time)

	events <- models.AnalysisEvent{Run: models.AnalysisRun{Id: "run-1", CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}}
	close(events)

	streamEvents(w, "client-1", events, pings)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "event: init\ndata: client-1\n\n"))
	assert.Contains(t, out, "event: analysis\ndata: {\"run\":{\"id\":\"run-1\",\"createdAt\":\"2024-01-02T03:04:05Z\"")
}
