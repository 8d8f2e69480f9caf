package analysis

import (
	"feedwords/models"
	"time"
)

// Limits bound the size of a formatted result. A limit <= 0 disables that cap.
type Limits struct {
	Global  int
	PerFeed int
	Sources int
}

func DefaultLimits() Limits {
	return Limits{
		Global:  200,
		PerFeed: 50,
		Sources: 10,
	}
}

// Format turns a pass result into the transport structure, applying limits.
// Source lists keep the earliest fetched articles.
func Format(result *Result, limits Limits) *models.AnalysisResponse {
	response := &models.AnalysisResponse{
		Articles:        []models.Article{},
		WordFrequency:   []models.WordCount{},
		FeedWordCounts:  models.NewOrderedMap[[]models.WordCount](),
		FeedWordSources: models.NewOrderedMap[*models.OrderedMap[[]models.SourceReference]](),
	}
	if result == nil {
		response.Timestamp = time.Now().Format(time.RFC3339)
		return response
	}

	response.WordFrequency = result.Global.Top(limits.Global)
	response.TotalArticles = result.TotalArticles
	response.TotalUniqueWords = len(response.WordFrequency)
	response.Timestamp = result.Timestamp.Format(time.RFC3339)
	if result.Articles != nil {
		response.Articles = result.Articles
	}

	for _, feed := range result.Feeds {
		response.FeedWordCounts.Set(feed.Name, feed.Table.Top(limits.PerFeed))

		sources := models.NewOrderedMap[[]models.SourceReference]()
		for _, word := range feed.Sources.Keys() {
			refs, _ := feed.Sources.Get(word)
			sources.Set(word, head(refs, limits.Sources))
		}
		response.FeedWordSources.Set(feed.Name, sources)
	}

	return response
}

func head[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}
