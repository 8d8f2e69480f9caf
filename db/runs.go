package db

import (
	"context"
	"encoding/json"
	"feedwords/models"
	"fmt"
	"time"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
	log "github.com/sirupsen/logrus"
)

// RecordRun stores the summary of a finished analysis pass
func (s *Store) RecordRun(ctx context.Context, run models.AnalysisRun) error {
	topWords := run.TopWords
	if topWords == nil {
		topWords = []models.WordCount{}
	}
	encoded, err := json.Marshal(topWords)
	if err != nil {
		return fmt.Errorf("error encoding top words: %w", err)
	}

	ib := sqlbuilder.SQLite.NewInsertBuilder()
	ib.InsertInto("analysis_runs").
		Cols("id", "created_at", "total_articles", "unique_words", "feed_count", "top_words").
		Values(run.Id, run.CreatedAt.UnixMilli(), run.TotalArticles, run.UniqueWords, run.FeedCount, string(encoded))

	if err := exec(ctx, s.db, ib); err != nil {
		return fmt.Errorf("error inserting analysis run: %w", err)
	}

	log.WithFields(log.Fields{
		"id":       run.Id,
		"articles": run.TotalArticles,
	}).Debug("Recorded analysis run")

	return nil
}

// ListRuns returns the most recent runs first. The limit defaults to
// models.DefaultHistoryLimit and is capped at models.MaxHistoryLimit.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]models.AnalysisRun, error) {
	if limit <= 0 {
		limit = models.DefaultHistoryLimit
	}
	if limit > models.MaxHistoryLimit {
		limit = models.MaxHistoryLimit
	}

	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("id", "created_at", "total_articles", "unique_words", "feed_count", "top_words").
		From("analysis_runs").
		OrderBy("created_at").Desc().
		Limit(limit)
	sql, args := sb.Build()

	rows, err := s.db.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying analysis runs: %w", err)
	}
	defer rows.Close()

	runs := []models.AnalysisRun{}
	for rows.Next() {
		var (
			run       models.AnalysisRun
			createdAt int64
			topWords  string
		)
		if err := rows.Scan(&run.Id, &createdAt, &run.TotalArticles, &run.UniqueWords, &run.FeedCount, &topWords); err != nil {
			return nil, fmt.Errorf("error scanning analysis run: %w", err)
		}
		run.CreatedAt = time.UnixMilli(createdAt).UTC()
		if err := json.Unmarshal([]byte(topWords), &run.TopWords); err != nil {
			return nil, fmt.Errorf("error decoding top words of run %s: %w", run.Id, err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading analysis runs: %w", err)
	}

	return runs, nil
}
