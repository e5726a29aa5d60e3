package entities

import (
	"errors"
	"fmt"
)

// ErrMissingField is returned by record validation when a required column is empty.
var ErrMissingField = errors.New("missing required field")

// Drug is one row of the drugs list. Name is the normalized match pattern.
type Drug struct {
	ATCCode string `json:"atccode"`
	Name    string `json:"drug"`
}

// RecordSet holds the three collections supplied by the record provider.
type RecordSet struct {
	Drugs          []Drug
	ClinicalTrials []ClinicalTrialRecord
	Articles       []ArticleRecord

	// Sources describes how each file was read. Empty for hand-built sets.
	Sources []SourceStats
}

// DrugNames returns the drug names in input order.
func (rs *RecordSet) DrugNames() []string {
	names := make([]string, 0, len(rs.Drugs))
	for _, d := range rs.Drugs {
		names = append(names, d.Name)
	}
	return names
}

// Publications returns every record of both corpora, clinical trials first.
func (rs *RecordSet) Publications() []PublicationRecord {
	records := make([]PublicationRecord, 0, len(rs.ClinicalTrials)+len(rs.Articles))
	for _, r := range rs.ClinicalTrials {
		records = append(records, r)
	}
	for _, r := range rs.Articles {
		records = append(records, r)
	}
	return records
}

func validateFields(kind, id, title, journal, date string) error {
	switch {
	case title == "":
		return fmt.Errorf("%s %q: title: %w", kind, id, ErrMissingField)
	case journal == "":
		return fmt.Errorf("%s %q: journal: %w", kind, id, ErrMissingField)
	case date == "":
		return fmt.Errorf("%s %q: date: %w", kind, id, ErrMissingField)
	}
	return nil
}
