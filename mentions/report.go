package mentions

import (
	"cmp"
	"errors"
	"slices"

	"github.com/giygas/drug-mentions/publicationsparser/entities"
)

// Analytics is the answer to both derived queries for one seed drug.
type Analytics struct {
	TopJournal     string   `json:"top_journal" yaml:"top_journal"`
	TopJournalHits int      `json:"top_journal_drug_count" yaml:"top_journal_drug_count"`
	Seed           string   `json:"seed" yaml:"seed"`
	Depth          int      `json:"depth" yaml:"depth"`
	CoMentioned    []string `json:"co_mentioned" yaml:"co_mentioned"`
}

// DrugReport flattens the index into one entry per drug, in index order.
// Journal/date pairs are de-duplicated once the source is dropped.
func DrugReport(idx *entities.MentionIndex) []entities.DrugJournals {
	if idx == nil {
		return []entities.DrugJournals{}
	}
	report := make([]entities.DrugJournals, 0, idx.Len())
	for _, d := range idx.Drugs() {
		report = append(report, DrugEntry(idx, d))
	}
	return report
}

// DrugEntry builds the report entry of a single drug.
func DrugEntry(idx *entities.MentionIndex, drug string) entities.DrugJournals {
	seen := make(map[entities.JournalMention]struct{})
	journals := make([]entities.JournalMention, 0)
	for _, m := range idx.Mentions(drug) {
		jm := entities.JournalMention{NameJournal: m.Journal, Date: m.Date}
		if _, dup := seen[jm]; dup {
			continue
		}
		seen[jm] = struct{}{}
		journals = append(journals, jm)
	}
	slices.SortFunc(journals, func(a, b entities.JournalMention) int {
		return cmp.Or(cmp.Compare(a.NameJournal, b.NameJournal), cmp.Compare(a.Date, b.Date))
	})
	return entities.DrugJournals{Drug: drug, Journals: journals}
}

// Analyze runs the coverage and co-mention queries. When the index has no mention at
// all, the co-mention result is still filled in and ErrNoCoverageData is returned so
// the caller can decide whether an empty top journal is acceptable.
func Analyze(idx *entities.MentionIndex, seed string, depth int) (Analytics, error) {
	out := Analytics{Seed: seed, Depth: depth}

	top, coverageErr := TopJournal(idx)
	if coverageErr != nil && !errors.Is(coverageErr, ErrNoCoverageData) {
		return out, coverageErr
	}
	out.TopJournal = top.Journal
	out.TopJournalHits = top.DrugCount

	drugs, err := CoMentioned(idx, seed, depth)
	if err != nil {
		return out, err
	}
	out.CoMentioned = drugs
	return out, coverageErr
}
