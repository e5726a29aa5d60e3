// Package data provides thread-safe storage for the published mention index.
// The DataContainer swaps whole snapshots atomically so readers never observe
// a partially rebuilt index.
package data

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/giygas/drug-mentions/interfaces"
	"github.com/giygas/drug-mentions/logging"
	"github.com/giygas/drug-mentions/publicationsparser/entities"
)

// Compile-time check to ensure DataContainer implements DataStore
var _ interfaces.DataStore = (*DataContainer)(nil)

// DataContainer holds the current snapshot behind a single pointer for zero-downtime updates
type DataContainer struct {
	snapshot        atomic.Pointer[interfaces.Snapshot]
	updating        atomic.Bool
	serverStartTime atomic.Value // time.Time
}

// NewDataContainer creates a new DataContainer holding an empty index
func NewDataContainer() *DataContainer {
	dc := &DataContainer{}
	dc.snapshot.Store(interfaces.NewSnapshot("", nil, nil, nil, time.Time{}))
	dc.serverStartTime.Store(time.Time{})
	return dc
}

// Thread-safe getters

// GetSnapshot returns the current snapshot. It is never nil.
func (dc *DataContainer) GetSnapshot() *interfaces.Snapshot {
	if snap := dc.snapshot.Load(); snap != nil {
		return snap
	}

	logging.Warn("Snapshot is empty or invalid")
	return interfaces.NewSnapshot("", nil, nil, nil, time.Time{})
}

// GetIndex returns the current mention index. It is never nil.
func (dc *DataContainer) GetIndex() *entities.MentionIndex {
	return dc.GetSnapshot().Index
}

// GetDrugReport returns the per-drug report of the current index, in index order
func (dc *DataContainer) GetDrugReport() []entities.DrugJournals {
	return dc.GetSnapshot().DrugReport
}

// GetDrugEntry returns the report entry of a single drug for O(1) lookups
func (dc *DataContainer) GetDrugEntry(drug string) (entities.DrugJournals, bool) {
	return dc.GetSnapshot().DrugEntry(drug)
}

// GetQualityReport returns the data quality report of the last build, or nil before the first one
func (dc *DataContainer) GetQualityReport() *interfaces.DataQualityReport {
	return dc.GetSnapshot().Quality
}

// GetSnapshotID returns the identifier of the current snapshot, empty before the first build
func (dc *DataContainer) GetSnapshotID() string {
	return dc.GetSnapshot().ID
}

// GetLastUpdated returns the timestamp of the last data update
func (dc *DataContainer) GetLastUpdated() time.Time {
	return dc.GetSnapshot().UpdatedAt
}

// IsUpdating returns true if a data update is currently in progress
func (dc *DataContainer) IsUpdating() bool {
	return dc.updating.Load()
}

// SetServerStartTime sets the server start time
func (dc *DataContainer) SetServerStartTime(startTime time.Time) {
	dc.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time
func (dc *DataContainer) GetServerStartTime() time.Time {
	if v := dc.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}

// UpdateData atomically publishes a new snapshot and gives it a fresh identifier.
// A nil index is ignored.
func (dc *DataContainer) UpdateData(idx *entities.MentionIndex, drugReport []entities.DrugJournals,
	report *interfaces.DataQualityReport) {
	if idx == nil {
		logging.Warn("Refusing to publish a nil mention index")
		return
	}

	// Atomic swap (zero downtime replacement)
	dc.snapshot.Store(interfaces.NewSnapshot(uuid.NewString(), idx, drugReport, report, time.Now()))
}

// BeginUpdate marks the start of a data update operation
// Returns true if update can proceed, false if another update is in progress
func (dc *DataContainer) BeginUpdate() bool {
	return dc.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the end of a data update operation
func (dc *DataContainer) EndUpdate() {
	dc.updating.Store(false)
}
