package mentions

import (
	"github.com/giygas/drug-mentions/publicationsparser/entities"
)

// JournalCoverage maps a journal to the number of distinct drugs mentioned in it.
type JournalCoverage map[string]int

// CoverageResult is the answer to the top journal query.
type CoverageResult struct {
	Journal   string          `json:"journal" yaml:"journal"`
	DrugCount int             `json:"drug_count" yaml:"drug_count"`
	Coverage  JournalCoverage `json:"coverage" yaml:"coverage"`
}

// JournalCoverageOf counts, for each journal, how many drugs are mentioned in it.
// Both sources count, and a drug contributes at most 1 per journal.
func JournalCoverageOf(idx *entities.MentionIndex) JournalCoverage {
	coverage := make(JournalCoverage)
	if idx == nil {
		return coverage
	}
	for _, d := range idx.Drugs() {
		for _, j := range idx.Journals(d) {
			coverage[j]++
		}
	}
	return coverage
}

// TopJournal returns the journal mentioning the most distinct drugs.
// Ties go to the lexicographically smallest journal name.
func TopJournal(idx *entities.MentionIndex) (CoverageResult, error) {
	coverage := JournalCoverageOf(idx)
	if len(coverage) == 0 {
		return CoverageResult{Coverage: coverage}, ErrNoCoverageData
	}

	result := CoverageResult{Coverage: coverage}
	for journal, count := range coverage {
		if count > result.DrugCount || (count == result.DrugCount && journal < result.Journal) {
			result.Journal = journal
			result.DrugCount = count
		}
	}
	return result, nil
}
