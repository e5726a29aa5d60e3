// Package scheduler provides automated index rebuild scheduling and stale data monitoring
// for the drug mentions service. It handles cron-based rebuilds and publishes each new
// snapshot to the data container using dependency injection.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/giygas/drug-mentions/interfaces"
	"github.com/giygas/drug-mentions/logging"
	"github.com/giygas/drug-mentions/mentions"
	"github.com/giygas/drug-mentions/metrics"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

const staleAfter = 25 * time.Hour

// Scheduler handles index rebuilds and health monitoring using dependency injection
type Scheduler struct {
	dataStore interfaces.DataStore
	parser    interfaces.Parser
	validator interfaces.DataValidator
	refreshAt []string
	scheduler *gocron.Scheduler

	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler creates a new scheduler instance with injected dependencies.
// refreshAt holds the daily rebuild times as "HH:MM".
func NewScheduler(dataStore interfaces.DataStore, parser interfaces.Parser,
	validator interfaces.DataValidator, refreshAt []string) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		dataStore: dataStore,
		parser:    parser,
		validator: validator,
		refreshAt: refreshAt,
		scheduler: gocron.NewScheduler(time.Local),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start performs the initial build, then schedules the daily rebuilds and health monitoring
func (s *Scheduler) Start() error {
	// Initial load
	if err := s.updateData(s.ctx); err != nil {
		logging.Error("Failed to perform initial data load", "error", err)
		return fmt.Errorf("initial data load failed: %w", err)
	}

	if len(s.refreshAt) > 0 {
		_, err := s.scheduler.Every(1).Days().At(strings.Join(s.refreshAt, ";")).Do(func() {
			if err := s.updateData(s.ctx); err != nil {
				logging.Error("Failed to update data", "error", err)
			}
		})
		if err != nil {
			logging.Error("Failed to schedule updates", "error", err)
			return fmt.Errorf("failed to schedule updates: %w", err)
		}
		s.scheduler.StartAsync()
	} else {
		logging.Warn("No refresh time configured, the index will not be rebuilt")
	}

	s.startHealthMonitoring()

	return nil
}

// Stop stops the scheduler and cancels any build in progress
func (s *Scheduler) Stop() {
	s.cancel()
	s.scheduler.Stop()
}

// updateData performs a complete rebuild using injected dependencies
func (s *Scheduler) updateData(ctx context.Context) error {
	// Prevent concurrent updates
	if !s.dataStore.BeginUpdate() {
		logging.Info("Update already in progress, skipping...")
		return nil
	}
	defer s.dataStore.EndUpdate()

	logging.Info("Starting index rebuild", "at", time.Now().Format(time.RFC3339))

	snapshot, err := BuildSnapshot(ctx, s.parser, s.validator)
	if err != nil {
		metrics.IndexBuildFailures.Inc()
		return err
	}

	// Atomic update using injected data store (including report)
	s.dataStore.UpdateData(snapshot.Index, snapshot.DrugReport, snapshot.Quality)

	metrics.RecordBuild(snapshot.Index.Len(), snapshot.Index.TotalMentions(),
		len(mentions.JournalCoverageOf(snapshot.Index)), snapshot.Duration, time.Now())

	logging.Info("Index rebuild completed",
		"duration", snapshot.Duration.String(),
		"drug_count", snapshot.Index.Len(),
		"mention_count", snapshot.Index.TotalMentions(),
		"snapshot_id", s.dataStore.GetSnapshotID())

	return nil
}

// startHealthMonitoring warns when the published data goes stale
func (s *Scheduler) startHealthMonitoring() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				checkStaleness(s.dataStore.GetLastUpdated(), time.Now())
			}
		}
	}()
}

func checkStaleness(lastUpdate, now time.Time) bool {
	if now.Sub(lastUpdate) <= staleAfter {
		return false
	}
	logging.Warn("Data hasn't been updated in over 25 hours", "last_update", lastUpdate.Format(time.RFC3339))
	return true
}
