// Package feeds fetches syndication feeds and turns their entries into
// articles for analysis. It also carries the built-in feed catalog.
package feeds

import (
	"context"
	"crypto/tls"
	"errors"
	"feedwords/analysis"
	"feedwords/models"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mmcdole/gofeed"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultMaxEntries = 50
	DefaultTimeout    = 30 * time.Second
	DefaultRetries    = 2
	DefaultUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Fetcher returns the articles of one feed. Implementations never fail the
// caller: any problem is logged and results in an empty list.
type Fetcher interface {
	Fetch(ctx context.Context, name string, feedURL string) []models.Article
}

// FetcherConfig holds configuration for fetching feeds
type FetcherConfig struct {
	// Only the first MaxEntries items of a feed are used
	MaxEntries int

	// Timeout for a single HTTP attempt
	Timeout time.Duration

	UserAgent string

	// Retries after the first failed attempt, 0 disables retrying
	Retries int

	// Wait before the first retry, grows exponentially
	RetryInterval time.Duration

	// Client overrides the HTTP client, mostly for tests
	Client *http.Client
}

func DefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		MaxEntries:    DefaultMaxEntries,
		Timeout:       DefaultTimeout,
		UserAgent:     DefaultUserAgent,
		Retries:       DefaultRetries,
		RetryInterval: 500 * time.Millisecond,
	}
}

type feedFetcher struct {
	parser *gofeed.Parser
	config FetcherConfig
}

// NewFetcher returns a Fetcher that parses RSS, Atom and JSON feeds with gofeed
func NewFetcher(config FetcherConfig) Fetcher {
	defaults := DefaultFetcherConfig()
	if config.MaxEntries <= 0 {
		config.MaxEntries = defaults.MaxEntries
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.UserAgent == "" {
		config.UserAgent = defaults.UserAgent
	}
	if config.Retries < 0 {
		config.Retries = 0
	}
	if config.RetryInterval <= 0 {
		config.RetryInterval = defaults.RetryInterval
	}

	parser := gofeed.NewParser()
	parser.UserAgent = config.UserAgent
	parser.Client = config.Client
	if parser.Client == nil {
		parser.Client = createHTTPClient(config.Timeout)
	}

	return &feedFetcher{
		parser: parser,
		config: config,
	}
}

func (f *feedFetcher) Fetch(ctx context.Context, name string, feedURL string) []models.Article {
	start := time.Now()
	defer func() {
		feedFetchDuration.Observe(time.Since(start).Seconds())
	}()

	logger := log.WithFields(log.Fields{
		"feed": name,
		"url":  feedURL,
	})

	if err := validateFeedURL(feedURL); err != nil {
		feedFetches.WithLabelValues("invalid").Inc()
		logger.WithError(err).Warn("Skipping feed with invalid url")
		return []models.Article{}
	}

	feed, err := f.parse(ctx, feedURL)
	if err != nil {
		feedFetches.WithLabelValues("error").Inc()
		logger.WithError(err).Warn("Error fetching feed")
		return []models.Article{}
	}

	articles := ToArticles(name, feed, f.config.MaxEntries)
	feedFetches.WithLabelValues("success").Inc()
	feedArticles.Add(float64(len(articles)))

	logger.WithFields(log.Fields{
		"title":    feed.Title,
		"items":    len(feed.Items),
		"articles": len(articles),
		"latency":  time.Since(start),
	}).Info("Fetched feed")

	return articles
}

// parse fetches and parses the feed, retrying transient failures
func (f *feedFetcher) parse(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.config.RetryInterval
	b.MaxInterval = 10 * time.Second
	b.Multiplier = 2
	b.MaxElapsedTime = 0 // Bounded by the retry count instead

	var feed *gofeed.Feed
	operation := func() error {
		feedFetchAttempts.Inc()

		attemptCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
		defer cancel()

		parsed, err := f.parser.ParseURLWithContext(feedURL, attemptCtx)
		if err != nil {
			if isPermanent(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		feed = parsed
		return nil
	}

	notify := func(err error, wait time.Duration) {
		log.WithFields(log.Fields{
			"url":   feedURL,
			"error": err,
			"wait":  wait,
		}).Info("Retrying feed fetch")
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(f.config.Retries)), ctx)
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return nil, err
	}
	return feed, nil
}

// isPermanent reports errors that retrying will not fix: client errors and
// documents that are not feeds at all.
func isPermanent(err error) bool {
	var httpErr gofeed.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= 400 && httpErr.StatusCode < 500 && httpErr.StatusCode != http.StatusTooManyRequests
	}
	return errors.Is(err, gofeed.ErrFeedTypeNotDetected)
}

// ToArticles converts the first maxEntries items of a parsed feed. Missing
// fields become empty strings and markup is stripped from descriptions.
func ToArticles(name string, feed *gofeed.Feed, maxEntries int) []models.Article {
	articles := []models.Article{}
	if feed == nil {
		return articles
	}

	for _, item := range feed.Items {
		if maxEntries > 0 && len(articles) >= maxEntries {
			break
		}
		if item == nil {
			continue
		}
		articles = append(articles, models.Article{
			Title:       item.Title,
			Description: analysis.StripTags(item.Description),
			Link:        item.Link,
			Published:   item.Published,
			FeedName:    name,
		})
	}

	return articles
}

// validateFeedURL performs basic validation on a feed URL before fetching it
func validateFeedURL(feedURL string) error {
	u, err := url.Parse(feedURL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %q (must be http or https)", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host in URL")
	}
	return nil
}

func createHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}
