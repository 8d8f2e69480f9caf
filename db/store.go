// Package db persists analyzer settings and the history of analysis passes in SQLite.
package db

import (
	"context"
	"database/sql"
	"errors"
	"feedwords/analysis"
	"feedwords/models"
	"fmt"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
	log "github.com/sirupsen/logrus"
)

const feedsConfiguredKey = "feeds_configured"

// Store reads and writes settings and run history.
// Run Migrate on the database before opening a Store.
type Store struct {
	db       *sql.DB
	defaults *models.FeedList
}

// NewStore opens the SQLite database. defaults is the feed selection
// reported until a selection has been saved.
func NewStore(database string, defaults *models.FeedList) (*Store, error) {
	db, err := connection(database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return &Store{
		db:       db,
		defaults: defaults.Clone(),
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Snapshot reads the selected feeds and custom stopwords in one transaction.
// The returned settings are a private copy owned by the caller.
func (s *Store) Snapshot(ctx context.Context) (models.Settings, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Settings{}, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	feeds, err := s.selectedFeeds(ctx, tx)
	if err != nil {
		return models.Settings{}, err
	}
	stopwords, err := customStopwords(ctx, tx)
	if err != nil {
		return models.Settings{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Settings{}, fmt.Errorf("error committing transaction: %w", err)
	}

	return models.Settings{
		SelectedFeeds:   feeds,
		CustomStopwords: stopwords,
	}, nil
}

// SelectedFeeds returns the saved feed selection in order, or the defaults
// when no selection was ever saved.
func (s *Store) SelectedFeeds(ctx context.Context) (*models.FeedList, error) {
	return s.selectedFeeds(ctx, s.db)
}

// SaveSelectedFeeds replaces the feed selection. Saving an empty list is
// remembered and does not bring the defaults back.
func (s *Store) SaveSelectedFeeds(ctx context.Context, feeds *models.FeedList) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := exec(ctx, tx, sqlbuilder.SQLite.NewDeleteBuilder().DeleteFrom("selected_feeds")); err != nil {
		return fmt.Errorf("error clearing selected feeds: %w", err)
	}

	if feeds.Len() > 0 {
		ib := sqlbuilder.SQLite.NewInsertBuilder()
		ib.InsertInto("selected_feeds").Cols("position", "name", "url")
		for i, name := range feeds.Keys() {
			url, _ := feeds.Get(name)
			ib.Values(i, name, url)
		}
		if err := exec(ctx, tx, ib); err != nil {
			return fmt.Errorf("error inserting selected feeds: %w", err)
		}
	}

	meta := sqlbuilder.SQLite.NewInsertBuilder()
	meta.ReplaceInto("settings_meta").Cols("key", "value").Values(feedsConfiguredKey, "true")
	if err := exec(ctx, tx, meta); err != nil {
		return fmt.Errorf("error updating settings meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}

	log.WithField("feeds", feeds.Len()).Info("Saved selected feeds")
	return nil
}

// CustomStopwords returns the saved custom stopwords in insertion order
func (s *Store) CustomStopwords(ctx context.Context) ([]string, error) {
	return customStopwords(ctx, s.db)
}

// SaveCustomStopwords replaces the custom stopwords. Words are trimmed,
// lowercased and deduplicated before they are stored.
func (s *Store) SaveCustomStopwords(ctx context.Context, words []string) error {
	words = analysis.NormalizeStopwords(words)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := exec(ctx, tx, sqlbuilder.SQLite.NewDeleteBuilder().DeleteFrom("custom_stopwords")); err != nil {
		return fmt.Errorf("error clearing custom stopwords: %w", err)
	}

	if len(words) > 0 {
		ib := sqlbuilder.SQLite.NewInsertBuilder()
		ib.InsertInto("custom_stopwords").Cols("position", "word")
		for i, word := range words {
			ib.Values(i, word)
		}
		if err := exec(ctx, tx, ib); err != nil {
			return fmt.Errorf("error inserting custom stopwords: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}

	log.WithField("stopwords", len(words)).Info("Saved custom stopwords")
	return nil
}

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type builder interface {
	Build() (string, []interface{})
}

func exec(ctx context.Context, q queryer, b builder) error {
	sql, args := b.Build()
	_, err := q.ExecContext(ctx, sql, args...)
	return err
}

func (s *Store) selectedFeeds(ctx context.Context, q queryer) (*models.FeedList, error) {
	configured, err := feedsConfigured(ctx, q)
	if err != nil {
		return nil, err
	}
	if !configured {
		return s.defaults.Clone(), nil
	}

	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("name", "url").From("selected_feeds").OrderBy("position").Asc()
	sql, args := sb.Build()

	rows, err := q.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying selected feeds: %w", err)
	}
	defer rows.Close()

	feeds := models.NewOrderedMap[string]()
	for rows.Next() {
		var name, url string
		if err := rows.Scan(&name, &url); err != nil {
			return nil, fmt.Errorf("error scanning selected feed: %w", err)
		}
		feeds.Set(name, url)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading selected feeds: %w", err)
	}

	return feeds, nil
}

func feedsConfigured(ctx context.Context, q queryer) (bool, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("value").From("settings_meta").Where(sb.Equal("key", feedsConfiguredKey))
	query, args := sb.Build()

	var value string
	err := q.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error reading settings meta: %w", err)
	}
	return value == "true", nil
}

func customStopwords(ctx context.Context, q queryer) ([]string, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("word").From("custom_stopwords").OrderBy("position").Asc()
	sql, args := sb.Build()

	rows, err := q.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying custom stopwords: %w", err)
	}
	defer rows.Close()

	words := []string{}
	for rows.Next() {
		var word string
		if err := rows.Scan(&word); err != nil {
			return nil, fmt.Errorf("error scanning custom stopword: %w", err)
		}
		words = append(words, word)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading custom stopwords: %w", err)
	}

	return words, nil
}
