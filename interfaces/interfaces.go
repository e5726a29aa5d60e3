// Package interfaces defines core abstractions for the drug mentions service
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"context"
	"net/http"
	"time"

	"github.com/giygas/drug-mentions/publicationsparser/entities"
)

// DataQualityReport provides a summary of data quality issues found after a build
type DataQualityReport struct {
	DuplicateDrugs          []string               `json:"duplicate_drugs" yaml:"duplicate_drugs"`
	DrugsWithoutMentions    []string               `json:"drugs_without_mentions" yaml:"drugs_without_mentions"`
	DrugsWithoutPubmed      []string               `json:"drugs_without_pubmed" yaml:"drugs_without_pubmed"`
	UnmatchedClinicalTrials int                    `json:"unmatched_clinical_trials" yaml:"unmatched_clinical_trials"`
	UnmatchedArticles       int                    `json:"unmatched_articles" yaml:"unmatched_articles"`
	UnmatchedSample         []string               `json:"unmatched_sample" yaml:"unmatched_sample"` // First 10 record ids matching no drug
	Journals                int                    `json:"journals" yaml:"journals"`
	TotalMentions           int                    `json:"total_mentions" yaml:"total_mentions"`
	SkippedRows             int                    `json:"skipped_rows" yaml:"skipped_rows"`
	Sources                 []entities.SourceStats `json:"sources" yaml:"sources"`
}

// Snapshot is one published build. It is never modified once published, so a
// reader that loads it once sees the index, reports and id of the same build.
type Snapshot struct {
	ID         string
	Index      *entities.MentionIndex
	DrugReport []entities.DrugJournals
	Quality    *DataQualityReport // nil before the first build
	UpdatedAt  time.Time

	drugs map[string]entities.DrugJournals
}

// NewSnapshot assembles a snapshot and indexes its drug report by name.
// A nil index or report is replaced by an empty one.
func NewSnapshot(id string, idx *entities.MentionIndex, drugReport []entities.DrugJournals,
	quality *DataQualityReport, updatedAt time.Time) *Snapshot {
	if idx == nil {
		idx = entities.NewMentionIndex(nil, nil)
	}
	if drugReport == nil {
		drugReport = []entities.DrugJournals{}
	}

	drugs := make(map[string]entities.DrugJournals, len(drugReport))
	for _, entry := range drugReport {
		drugs[entry.Drug] = entry
	}

	return &Snapshot{
		ID:         id,
		Index:      idx,
		DrugReport: drugReport,
		Quality:    quality,
		UpdatedAt:  updatedAt,
		drugs:      drugs,
	}
}

// DrugEntry returns the report entry of a single drug
func (s *Snapshot) DrugEntry(drug string) (entities.DrugJournals, bool) {
	entry, ok := s.drugs[drug]
	return entry, ok
}

// DataStore defines the contract for data storage operations.
// It provides thread-safe access to the current mention index
// with atomic operations for zero-downtime updates.
type DataStore interface {
	// Data retrieval methods. GetSnapshot is the only way to read several
	// fields of the same build; the other getters each load the current one.
	GetSnapshot() *Snapshot
	GetIndex() *entities.MentionIndex
	GetDrugReport() []entities.DrugJournals
	GetDrugEntry(drug string) (entities.DrugJournals, bool)
	GetQualityReport() *DataQualityReport
	GetSnapshotID() string
	GetLastUpdated() time.Time
	IsUpdating() bool
	GetServerStartTime() time.Time

	// Data update methods
	UpdateData(idx *entities.MentionIndex, drugReport []entities.DrugJournals, report *DataQualityReport)
	BeginUpdate() bool
	EndUpdate()
}

// Parser defines the contract for loading the source records.
// It handles downloading, reading and cleaning the raw files.
type Parser interface {
	ParseAllRecords(ctx context.Context) (*entities.RecordSet, error)
}

// Scheduler defines the contract for job scheduling and health monitoring.
// It manages automated index rebuilds and stale data checks.
type Scheduler interface {
	Start() error
	Stop()
}

// HTTPHandler defines the contract for HTTP request handlers.
type HTTPHandler interface {
	ListDrugs(w http.ResponseWriter, r *http.Request)
	GetDrug(w http.ResponseWriter, r *http.Request)
	CoMentions(w http.ResponseWriter, r *http.Request)
	TopJournal(w http.ResponseWriter, r *http.Request)
	JournalCoverage(w http.ResponseWriter, r *http.Request)
	DataQuality(w http.ResponseWriter, r *http.Request)
	HealthCheck(w http.ResponseWriter, r *http.Request)
}

// HealthChecker defines the contract for health check functionality.
type HealthChecker interface {
	// HealthCheck returns the current status, its details and the HTTP status to answer with
	HealthCheck() (status string, details map[string]any, httpStatus int)

	// CalculateNextUpdate returns the next scheduled rebuild time
	CalculateNextUpdate() time.Time
}

// DataValidator defines the contract for data validation operations.
type DataValidator interface {
	// ValidateDataIntegrity rejects record sets no index should be built from
	ValidateDataIntegrity(records *entities.RecordSet) error

	// ReportDataQuality generates a data quality report with all issues found
	ReportDataQuality(records *entities.RecordSet, idx *entities.MentionIndex) *DataQualityReport

	// ValidateInput validates a drug name taken from user input
	ValidateInput(input string) error

	// ValidateDepth parses a traversal depth, returning fallback when raw is empty
	ValidateDepth(raw string, fallback int) (int, error)
}
