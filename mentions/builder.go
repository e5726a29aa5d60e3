// Package mentions cross-references drug names against clinical trial and pubmed records.
// It builds the per-drug mention index and answers the journal coverage and co-mention
// queries over it. Nothing in this package performs I/O or mutates a published index.
package mentions

import (
	"errors"
	"fmt"
	"strings"

	"github.com/giygas/drug-mentions/publicationsparser/entities"
)

var (
	// ErrInvalidInput is returned for malformed builder or query input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoCoverageData is returned when no drug of the index has any mention.
	ErrNoCoverageData = errors.New("no coverage data")
)

// BuildIndex scans both corpora for every drug and returns the resulting index.
// A drug matches a record when its name is a substring of the record title.
// Input is validated before anything is indexed.
func BuildIndex(records *entities.RecordSet) (*entities.MentionIndex, error) {
	if records == nil {
		return nil, fmt.Errorf("%w: record set is nil", ErrInvalidInput)
	}

	drugs := records.DrugNames()
	for i, d := range drugs {
		if d == "" {
			return nil, fmt.Errorf("%w: drug at position %d has an empty name", ErrInvalidInput, i)
		}
	}

	publications := records.Publications()
	for _, p := range publications {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	}

	found := make(map[string]entities.MentionSet, len(drugs))
	for _, d := range drugs {
		set := found[d]
		if set == nil {
			set = entities.MentionSet{}
			found[d] = set
		}
		for _, p := range publications {
			if strings.Contains(p.MatchText(), d) {
				set[p.Mention()] = struct{}{}
			}
		}
	}

	return entities.NewMentionIndex(drugs, found), nil
}
