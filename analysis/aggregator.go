package analysis

import (
	"feedwords/models"
	"time"

	"github.com/samber/lo"
)

// FeedResult is the per-feed part of a pass
type FeedResult struct {
	Name string

	// Frequencies of the feed's words after stopword filtering
	Table *FrequencyTable

	// Articles that contributed each surviving word, in fetch order
	Sources *models.OrderedMap[[]models.SourceReference]
}

// Result is the uncapped output of an aggregation pass
type Result struct {
	Global        *FrequencyTable
	Feeds         []FeedResult
	Articles      []models.Article
	TotalArticles int
	UniqueWords   int
	Timestamp     time.Time
}

// feedState collects one feed's raw words and attributions until Result is built
type feedState struct {
	name    string
	words   []string
	sources map[string][]models.SourceReference
}

// Aggregator builds frequency tables and the source index for a batch of
// feeds. Feeds are processed in the order they are added and articles in the
// order given. It is not safe for concurrent use; every pass owns its own.
type Aggregator struct {
	stopwords *StopwordSet
	feeds     []*feedState
	byName    map[string]*feedState
	articles  []models.Article

	// Raw words of every feed in processing order, the input of the global table
	allWords []string

	now func() time.Time
}

func NewAggregator(stopwords *StopwordSet) *Aggregator {
	return &Aggregator{
		stopwords: stopwords,
		byName:    make(map[string]*feedState),
		now:       time.Now,
	}
}

// WithClock replaces the clock used to stamp results
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// AddFeed records the articles fetched for one feed. A feed with no articles
// still shows up in the result with empty tables.
func (a *Aggregator) AddFeed(name string, articles []models.Article) {
	feed, ok := a.byName[name]
	if !ok {
		feed = &feedState{
			name:    name,
			sources: make(map[string][]models.SourceReference),
		}
		a.byName[name] = feed
		a.feeds = append(a.feeds, feed)
	}

	for _, article := range articles {
		words := ArticleWords(article)
		if len(words) > 0 {
			source := article.Source()
			for _, w := range lo.Uniq(words) {
				feed.sources[w] = append(feed.sources[w], source)
			}
			feed.words = append(feed.words, words...)
			a.allWords = append(a.allWords, words...)
		}
		a.articles = append(a.articles, article)
	}
}

// Result filters and counts everything added so far
func (a *Aggregator) Result() *Result {
	result := &Result{
		Global:        NewFrequencyTable(),
		Feeds:         make([]FeedResult, 0, len(a.feeds)),
		Articles:      a.articles,
		TotalArticles: len(a.articles),
		Timestamp:     a.now(),
	}
	if result.Articles == nil {
		result.Articles = []models.Article{}
	}

	// A pass without any article reports no feeds at all
	if len(a.articles) == 0 {
		return result
	}

	for _, feed := range a.feeds {
		table := NewFrequencyTable()
		table.AddAll(a.stopwords.Filter(feed.words))

		// Only words that survived filtering keep their attributions
		sources := models.NewOrderedMap[[]models.SourceReference]()
		for _, w := range table.Words() {
			if refs, ok := feed.sources[w]; ok {
				sources.Set(w, refs)
			}
		}

		result.Feeds = append(result.Feeds, FeedResult{
			Name:    feed.name,
			Table:   table,
			Sources: sources,
		})
	}

	result.Global.AddAll(a.stopwords.Filter(a.allWords))
	result.UniqueWords = result.Global.Len()

	return result
}

// ArticleWords returns the article's title tokens followed by its description
// tokens. The description is expected to be stripped of markup at intake.
func ArticleWords(article models.Article) []string {
	title := Tokenize(article.Title)
	description := Tokenize(article.Description)
	if len(description) == 0 {
		return title
	}
	return append(title, description...)
}
