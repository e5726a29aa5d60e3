package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/giygas/drug-mentions/interfaces"
	"github.com/giygas/drug-mentions/logging"
	"github.com/giygas/drug-mentions/mentions"
	"github.com/giygas/drug-mentions/publicationsparser/entities"
)

// Snapshot is everything one build produces.
type Snapshot struct {
	Records    *entities.RecordSet
	Index      *entities.MentionIndex
	DrugReport []entities.DrugJournals
	Quality    *interfaces.DataQualityReport
	Duration   time.Duration
}

// BuildSnapshot parses the source records, validates them and builds the mention index
// with its per-drug report and quality report.
func BuildSnapshot(ctx context.Context, parser interfaces.Parser, validator interfaces.DataValidator) (*Snapshot, error) {
	start := time.Now()

	records, err := parser.ParseAllRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse records: %w", err)
	}

	if err := validator.ValidateDataIntegrity(records); err != nil {
		return nil, fmt.Errorf("records failed validation: %w", err)
	}

	idx, err := mentions.BuildIndex(records)
	if err != nil {
		return nil, fmt.Errorf("failed to build index: %w", err)
	}

	report := validator.ReportDataQuality(records, idx)
	logQualityReport(report)

	return &Snapshot{
		Records:    records,
		Index:      idx,
		DrugReport: mentions.DrugReport(idx),
		Quality:    report,
		Duration:   time.Since(start),
	}, nil
}

func logQualityReport(report *interfaces.DataQualityReport) {
	if len(report.DuplicateDrugs) > 0 {
		logging.Warn("Duplicate drugs detected",
			"total", len(report.DuplicateDrugs),
			"drug_list", report.DuplicateDrugs,
		)
	}

	if len(report.DrugsWithoutMentions) > 0 {
		logging.Warn("Drugs without mentions",
			"count", len(report.DrugsWithoutMentions),
			"drug_list", report.DrugsWithoutMentions,
		)
	}

	if unmatched := report.UnmatchedClinicalTrials + report.UnmatchedArticles; unmatched > 0 {
		logging.Warn("Publications matching no drug",
			"clinical_trials", report.UnmatchedClinicalTrials,
			"articles", report.UnmatchedArticles,
			"sample", report.UnmatchedSample,
		)
	}

	if report.SkippedRows > 0 {
		logging.Warn("Source rows skipped", "count", report.SkippedRows)
	}
}
