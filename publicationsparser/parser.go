package publicationsparser

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"github.com/giygas/drug-mentions/interfaces"
	"github.com/giygas/drug-mentions/logging"
	"github.com/giygas/drug-mentions/publicationsparser/entities"
)

// Compile-time check to ensure RecordsParser implements Parser interface
var _ interfaces.Parser = (*RecordsParser)(nil)

// RecordsParser reads the source files of a data directory, downloading them first
// when a base URL is configured.
type RecordsParser struct {
	dataDir string
	baseURL string
	client  *http.Client
}

// NewRecordsParser creates a parser for dataDir. An empty baseURL disables downloads.
func NewRecordsParser(dataDir, baseURL string) *RecordsParser {
	return &RecordsParser{
		dataDir: dataDir,
		baseURL: baseURL,
		client:  &http.Client{Timeout: downloadTimeout},
	}
}

// WithHTTPClient replaces the client used for downloads.
func (p *RecordsParser) WithHTTPClient(client *http.Client) *RecordsParser {
	p.client = client
	return p
}

// ParseAllRecords implements the Parser interface.
// drugs.csv and clinical_trials.csv are required. Either pubmed file may be missing;
// when both exist their articles are concatenated, csv first.
func (p *RecordsParser) ParseAllRecords(ctx context.Context) (*entities.RecordSet, error) {
	start := time.Now()

	if p.baseURL != "" {
		if err := downloadAll(ctx, p.client, p.dataDir, p.baseURL); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	drugs, drugStats, err := readFile(filepath.Join(p.dataDir, DrugsFile), false, readDrugs)
	if err != nil {
		return nil, err
	}
	trials, trialStats, err := readFile(filepath.Join(p.dataDir, ClinicalTrialsFile), false, readClinicalTrials)
	if err != nil {
		return nil, err
	}
	csvArticles, csvStats, err := readFile(filepath.Join(p.dataDir, PubmedCSVFile), true, readPubmedCSV)
	if err != nil {
		return nil, err
	}
	jsonArticles, jsonStats, err := readFile(filepath.Join(p.dataDir, PubmedJSONFile), true, readPubmedJSON)
	if err != nil {
		return nil, err
	}

	articles := make([]entities.ArticleRecord, 0, len(csvArticles)+len(jsonArticles))
	articles = append(articles, csvArticles...)
	articles = append(articles, jsonArticles...)

	records := &entities.RecordSet{
		Drugs:          drugs,
		ClinicalTrials: trials,
		Articles:       articles,
		Sources:        []entities.SourceStats{drugStats, trialStats, csvStats, jsonStats},
	}

	logging.Info("Source records parsed",
		"drugs", len(drugs),
		"clinical_trials", len(trials),
		"articles", len(articles),
		"duration", time.Since(start).String())

	return records, nil
}
