package entities

import (
	"cmp"
	"maps"
	"slices"
)

// Mention links a drug to a journal issue. Two mentions are equal when all three fields are.
type Mention struct {
	Source  Source `json:"source"`
	Journal string `json:"journal"`
	Date    string `json:"date"`
}

func compareMentions(a, b Mention) int {
	return cmp.Or(
		cmp.Compare(a.Source, b.Source),
		cmp.Compare(a.Journal, b.Journal),
		cmp.Compare(a.Date, b.Date),
	)
}

// MentionSet is a set of mentions.
type MentionSet map[Mention]struct{}

// MentionIndex maps every drug to its set of mentions.
// It is immutable once created and safe for concurrent readers.
type MentionIndex struct {
	drugs    []string
	mentions map[string]MentionSet

	// pubmed-only adjacency of the drug/journal graph, both sides sorted
	pubmedJournals map[string][]string
	journalDrugs   map[string][]string
}

// NewMentionIndex takes ownership of mentions and precomputes the pubmed adjacency.
// Drugs listed in drugs but absent from mentions get an empty set.
func NewMentionIndex(drugs []string, mentions map[string]MentionSet) *MentionIndex {
	idx := &MentionIndex{
		drugs:          make([]string, 0, len(drugs)),
		mentions:       make(map[string]MentionSet, len(drugs)),
		pubmedJournals: make(map[string][]string),
		journalDrugs:   make(map[string][]string),
	}

	for _, d := range drugs {
		if _, seen := idx.mentions[d]; seen {
			continue
		}
		idx.drugs = append(idx.drugs, d)
		set := mentions[d]
		if set == nil {
			set = MentionSet{}
		}
		idx.mentions[d] = set
	}

	for _, d := range idx.drugs {
		journals := make(map[string]struct{})
		for m := range idx.mentions[d] {
			if m.Source == SourcePubmed {
				journals[m.Journal] = struct{}{}
			}
		}
		if len(journals) == 0 {
			continue
		}
		idx.pubmedJournals[d] = slices.Sorted(maps.Keys(journals))
		for j := range journals {
			idx.journalDrugs[j] = append(idx.journalDrugs[j], d)
		}
	}
	for j := range idx.journalDrugs {
		slices.Sort(idx.journalDrugs[j])
	}

	return idx
}

// Drugs returns the indexed drug names in first-seen input order.
func (idx *MentionIndex) Drugs() []string {
	return slices.Clone(idx.drugs)
}

// Len returns the number of indexed drugs.
func (idx *MentionIndex) Len() int {
	return len(idx.drugs)
}

// Has reports whether drug was part of the build input.
func (idx *MentionIndex) Has(drug string) bool {
	_, ok := idx.mentions[drug]
	return ok
}

// Mentions returns the drug's mentions sorted by source, journal then date.
// An unknown drug yields an empty slice.
func (idx *MentionIndex) Mentions(drug string) []Mention {
	set := idx.mentions[drug]
	out := make([]Mention, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	slices.SortFunc(out, compareMentions)
	return out
}

// Journals returns the distinct journals the drug is mentioned in, across both sources.
func (idx *MentionIndex) Journals(drug string) []string {
	journals := make(map[string]struct{})
	for m := range idx.mentions[drug] {
		journals[m.Journal] = struct{}{}
	}
	return slices.Sorted(maps.Keys(journals))
}

// PubmedJournals returns the distinct journals of the drug's pubmed mentions.
func (idx *MentionIndex) PubmedJournals(drug string) []string {
	return slices.Clone(idx.pubmedJournals[drug])
}

// PubmedDrugs returns the drugs having at least one pubmed mention in journal.
func (idx *MentionIndex) PubmedDrugs(journal string) []string {
	return slices.Clone(idx.journalDrugs[journal])
}

// TotalMentions returns the number of mentions across all drugs.
func (idx *MentionIndex) TotalMentions() int {
	total := 0
	for _, set := range idx.mentions {
		total += len(set)
	}
	return total
}

// Equal reports whether both indexes hold the same drugs with the same mention sets.
// Drug order is ignored.
func (idx *MentionIndex) Equal(other *MentionIndex) bool {
	if idx == nil || other == nil {
		return idx == other
	}
	return maps.EqualFunc(idx.mentions, other.mentions, func(a, b MentionSet) bool {
		return maps.Equal(a, b)
	})
}
