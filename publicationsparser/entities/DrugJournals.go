package entities

// DrugJournals is the per-drug view of the structured report. The mention source is dropped.
type DrugJournals struct {
	Drug     string           `json:"drug" yaml:"drug"`
	Journals []JournalMention `json:"journals" yaml:"journals"`
}

// JournalMention is one (journal, date) pair of a drug.
type JournalMention struct {
	NameJournal string `json:"name_journal" yaml:"name_journal"`
	Date        string `json:"date" yaml:"date"`
}
