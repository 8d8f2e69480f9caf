// Package scheduler runs a task on a cron schedule
package scheduler

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Scheduler runs one task on a cron spec such as "@every 1h" or "0 */6 * * *".
// A run that is still going when the next one is due causes that one to be skipped.
type Scheduler struct {
	mu      sync.Mutex
	cron    *cron.Cron
	entryID cron.EntryID
}

func New(location *time.Location) *Scheduler {
	if location == nil {
		location = time.UTC
	}
	logger := cronLogger{}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(location),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
	}
}

// Schedule replaces the scheduled task
func (s *Scheduler) Schedule(spec string, task func()) error {
	if task == nil {
		return errors.New("task must not be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.cron.AddFunc(spec, task)
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	if s.entryID != 0 {
		s.cron.Remove(s.entryID)
	}
	s.entryID = id

	log.WithField("schedule", spec).Info("Scheduled analysis")
	return nil
}

// Next returns when the task runs next, the zero time when nothing is scheduled or not started
func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entryID == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for a running task to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// cronLogger sends cron's own logging to logrus
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.WithFields(fields(keysAndValues)).Debug(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.WithFields(fields(keysAndValues)).WithError(err).Error(msg)
}

func fields(keysAndValues []interface{}) log.Fields {
	f := log.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		f[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return f
}
