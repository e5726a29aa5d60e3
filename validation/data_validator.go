// Package validation checks parsed record sets before a build and user input before a query.
package validation

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/giygas/drug-mentions/interfaces"
	"github.com/giygas/drug-mentions/mentions"
	"github.com/giygas/drug-mentions/publicationsparser/entities"
)

// MaxDepth bounds the traversal depth accepted from user input.
const MaxDepth = 10

// maxSampleSize is the number of unmatched record ids kept in a quality report.
const maxSampleSize = 10

// maxInputLength bounds drug names taken from request paths and flags, in bytes.
const maxInputLength = 100

// DataValidatorImpl implements the interfaces.DataValidator interface
type DataValidatorImpl struct{}

// NewDataValidator creates a new data validator
func NewDataValidator() interfaces.DataValidator {
	return &DataValidatorImpl{}
}

// ValidateDataIntegrity rejects record sets that should never replace a published index:
// no drugs, unnamed drugs, no publications at all, or publications missing a field.
func (v *DataValidatorImpl) ValidateDataIntegrity(records *entities.RecordSet) error {
	if records == nil {
		return fmt.Errorf("record set is nil")
	}

	if len(records.Drugs) == 0 {
		return fmt.Errorf("no drugs found")
	}
	for i, d := range records.Drugs {
		if strings.TrimSpace(d.Name) == "" {
			return fmt.Errorf("drug at position %d has an empty name", i)
		}
	}

	if len(records.ClinicalTrials) == 0 && len(records.Articles) == 0 {
		return fmt.Errorf("no publications found")
	}
	for _, p := range records.Publications() {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("invalid publication: %w", err)
		}
	}

	return nil
}

// ReportDataQuality summarizes what a build produced. It never fails; an empty
// index only yields a report full of gaps.
func (v *DataValidatorImpl) ReportDataQuality(records *entities.RecordSet, idx *entities.MentionIndex) *interfaces.DataQualityReport {
	report := &interfaces.DataQualityReport{
		DuplicateDrugs:       []string{},
		DrugsWithoutMentions: []string{},
		DrugsWithoutPubmed:   []string{},
		UnmatchedSample:      []string{},
		Sources:              []entities.SourceStats{},
	}
	if records == nil {
		return report
	}

	// Check 1: duplicate drug names, each listed once
	seen := make(map[string]int, len(records.Drugs))
	for _, d := range records.Drugs {
		seen[d.Name]++
		if seen[d.Name] == 2 {
			report.DuplicateDrugs = append(report.DuplicateDrugs, d.Name)
		}
	}

	// Check 2: drugs never mentioned, and drugs absent from the co-mention graph
	if idx != nil {
		for _, d := range idx.Drugs() {
			if len(idx.Mentions(d)) == 0 {
				report.DrugsWithoutMentions = append(report.DrugsWithoutMentions, d)
			}
			if len(idx.PubmedJournals(d)) == 0 {
				report.DrugsWithoutPubmed = append(report.DrugsWithoutPubmed, d)
			}
		}
		report.Journals = len(mentions.JournalCoverageOf(idx))
		report.TotalMentions = idx.TotalMentions()
	}

	// Check 3: records matching no drug (store first 10 ids)
	names := records.DrugNames()
	for _, p := range records.Publications() {
		if matchesAny(p.MatchText(), names) {
			continue
		}
		switch p.Source() {
		case entities.SourceClinical:
			report.UnmatchedClinicalTrials++
		case entities.SourcePubmed:
			report.UnmatchedArticles++
		}
		if len(report.UnmatchedSample) < maxSampleSize {
			report.UnmatchedSample = append(report.UnmatchedSample, recordLabel(p))
		}
	}

	// Check 4: rows dropped while reading the source files
	for _, s := range records.Sources {
		report.SkippedRows += s.Skipped()
		report.Sources = append(report.Sources, s)
	}

	return report
}

func matchesAny(text string, drugs []string) bool {
	for _, d := range drugs {
		if d != "" && strings.Contains(text, d) {
			return true
		}
	}
	return false
}

func recordLabel(p entities.PublicationRecord) string {
	switch r := p.(type) {
	case entities.ClinicalTrialRecord:
		if r.ID != "" {
			return r.ID
		}
	case entities.ArticleRecord:
		if r.ID != "" {
			return string(entities.SourcePubmed) + ":" + r.ID
		}
	}
	return p.MatchText()
}

// ValidateInput validates a drug name taken from a request path or a flag.
// Any printable name is accepted; whether it exists is for the index to say.
func (v *DataValidatorImpl) ValidateInput(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("input cannot be empty")
	}

	if len(input) > maxInputLength {
		return fmt.Errorf("input too long: maximum %d characters", maxInputLength)
	}

	if !utf8.ValidString(input) {
		return fmt.Errorf("input is not valid UTF-8")
	}

	if strings.IndexFunc(input, unicode.IsControl) >= 0 {
		return fmt.Errorf("input contains control characters")
	}

	return nil
}

// ValidateDepth parses a traversal depth. An empty value yields fallback.
// No regex used - strconv.Atoi() validates numeric format for free
func (v *DataValidatorImpl) ValidateDepth(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}

	depth, err := strconv.Atoi(raw)
	if err != nil {
		return -1, fmt.Errorf("depth must be a whole number")
	}

	if depth < 1 || depth > MaxDepth {
		return -1, fmt.Errorf("depth must be between 1 and %d", MaxDepth)
	}

	return depth, nil
}
