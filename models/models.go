package models

import "time"

// Article is one syndication entry as handed to the analysis pipeline
type Article struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
	Published   string `json:"published"`
	FeedName    string `json:"feed_name"`
}

// Source returns the attribution record for the article
func (a Article) Source() SourceReference {
	return SourceReference{
		Title:     a.Title,
		Link:      a.Link,
		Published: a.Published,
	}
}

// SourceReference identifies an article that contributed a word
type SourceReference struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Published string `json:"published"`
}

type WordCount struct {
	Word      string `json:"word"`
	Frequency int    `json:"frequency"`
}

// Feed is a named syndication source
type Feed struct {
	Name     string `json:"name" toml:"name"`
	URL      string `json:"url" toml:"url"`
	Category string `json:"category,omitempty" toml:"category"`
}

// FeedList maps feed names to urls, keeping the selection order
type FeedList = OrderedMap[string]

// Settings is the read-only input of one analysis pass
type Settings struct {
	SelectedFeeds   *FeedList
	CustomStopwords []string
}

// AnalysisResponse is the payload served by the analyze endpoint
type AnalysisResponse struct {
	Articles         []Article                                   `json:"articles"`
	WordFrequency    []WordCount                                 `json:"word_frequency"`
	FeedWordCounts   *OrderedMap[[]WordCount]                    `json:"feed_word_counts"`
	FeedWordSources  *OrderedMap[*OrderedMap[[]SourceReference]] `json:"feed_word_sources"`
	TotalArticles    int                                         `json:"total_articles"`
	TotalUniqueWords int                                         `json:"total_unique_words"`
	Timestamp        string                                      `json:"timestamp"`
}

// ErrorResponse is returned instead of a result when a pass fails
type ErrorResponse struct {
	Error string `json:"error"`
}

// Bounds on how many analysis runs a history listing returns
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// AnalysisRun is the summary of a finished pass kept in history
type AnalysisRun struct {
	Id            string      `json:"id"`
	CreatedAt     time.Time   `json:"createdAt"`
	TotalArticles int         `json:"totalArticles"`
	UniqueWords   int         `json:"uniqueWords"`
	FeedCount     int         `json:"feedCount"`
	TopWords      []WordCount `json:"topWords"`
}

// AnalysisEvent fired when a pass completes
type AnalysisEvent struct {
	Run AnalysisRun `json:"run"`
}
