package db

import (
	"context"
	"fmt"
	"time"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
	log "github.com/sirupsen/logrus"
)

// DefaultRetention is how long analysis runs are kept by default
const DefaultRetention = 90 * 24 * time.Hour

// Tidy removes analysis runs older than the retention period from the database
func Tidy(database string, retention time.Duration) (int64, error) {
	store, err := NewStore(database, nil)
	if err != nil {
		return 0, err
	}
	defer store.Close()

	return store.TidyRuns(context.Background(), retention)
}

// TidyRuns deletes runs created before now minus olderThan and returns how many were removed
func (s *Store) TidyRuns(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).UnixMilli()
	deleteRuns := sqlbuilder.SQLite.NewDeleteBuilder()
	sql, args := deleteRuns.DeleteFrom("analysis_runs").Where(deleteRuns.LessThan("created_at", cutoff)).Build()

	log.WithFields(log.Fields{
		"sql":  sql,
		"args": args,
	}).Info("Tidying database")

	result, err := s.db.ExecContext(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error deleting analysis runs: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return removed, nil
}
