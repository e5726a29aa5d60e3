package entities

// Source tags which corpus a mention was found in.
type Source string

const (
	SourceClinical Source = "clinical"
	SourcePubmed   Source = "pubmed"
)

// PublicationRecord is implemented by the two record variants the builder scans.
type PublicationRecord interface {
	// Source returns the corpus the record belongs to.
	Source() Source
	// MatchText returns the field drug names are searched in.
	MatchText() string
	// Mention returns the mention produced when a drug matches this record.
	Mention() Mention
	// Validate reports a missing required field.
	Validate() error
}

// ClinicalTrialRecord is one row of the clinical trials corpus.
type ClinicalTrialRecord struct {
	ID      string `json:"id"`
	Title   string `json:"scientific_title"`
	Journal string `json:"journal"`
	Date    string `json:"date"`
}

// ArticleRecord is one row of the pubmed corpus.
type ArticleRecord struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Journal string `json:"journal"`
	Date    string `json:"date"`
}

func (r ClinicalTrialRecord) Source() Source    { return SourceClinical }
func (r ClinicalTrialRecord) MatchText() string { return r.Title }

func (r ClinicalTrialRecord) Mention() Mention {
	return Mention{Source: SourceClinical, Journal: r.Journal, Date: r.Date}
}

func (r ClinicalTrialRecord) Validate() error {
	return validateFields("clinical trial", r.ID, r.Title, r.Journal, r.Date)
}

func (r ArticleRecord) Source() Source    { return SourcePubmed }
func (r ArticleRecord) MatchText() string { return r.Title }

func (r ArticleRecord) Mention() Mention {
	return Mention{Source: SourcePubmed, Journal: r.Journal, Date: r.Date}
}

func (r ArticleRecord) Validate() error {
	return validateFields("article", r.ID, r.Title, r.Journal, r.Date)
}
