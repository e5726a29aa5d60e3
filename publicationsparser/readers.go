package publicationsparser

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/giygas/drug-mentions/logging"
	"github.com/giygas/drug-mentions/publicationsparser/entities"
)

func logStats(s entities.SourceStats) {
	if s.Skipped() == 0 {
		logging.Debug("Source file parsed", "file", s.File, "records_parsed", s.Parsed)
		return
	}
	logging.Info(s.File+" skip statistics",
		"empty_rows", s.EmptyRows,
		"missing_columns", s.MissingColumns,
		"missing_fields", s.MissingFields,
		"total_rows", s.TotalRows,
		"records_parsed", s.Parsed)
}

// stripTrailingCommas removes commas directly followed by a closing bracket or
// brace, along with the whitespace between them. String literals are copied as is.
func stripTrailingCommas(data []byte) []byte {
	out := make([]byte, 0, len(data))
	inString, escaped := false, false

	for i := 0; i < len(data); i++ {
		c := data[i]
		switch {
		case inString:
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
		case c == '"':
			inString = true
		case c == ',':
			j := i + 1
			for j < len(data) && isJSONSpace(data[j]) {
				j++
			}
			if j < len(data) && (data[j] == ']' || data[j] == '}') {
				i = j - 1
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

func isJSONSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// csvRows reads a CSV file with a header line and calls fn with each row keyed by
// lower-cased column name. Rows lacking a required column count as missing columns.
func csvRows(r io.Reader, file string, required []string, fn func(row map[string]string) bool) (entities.SourceStats, error) {
	stats := entities.SourceStats{File: file}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return stats, nil
	}
	if err != nil {
		return stats, fmt.Errorf("failed to read %s header: %w", file, err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			return stats, fmt.Errorf("%s: missing column %q", file, name)
		}
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("failed to read %s: %w", file, err)
		}
		stats.TotalRows++

		if blankRecord(record) {
			stats.EmptyRows++
			continue
		}

		row := make(map[string]string, len(columns))
		complete := true
		for name, i := range columns {
			if i >= len(record) {
				complete = false
				continue
			}
			row[name] = record[i]
		}
		if !complete {
			stats.MissingColumns++
			continue
		}

		if fn(row) {
			stats.Parsed++
		} else {
			stats.MissingFields++
		}
	}

	return stats, nil
}

func blankRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

func readDrugs(r io.Reader) ([]entities.Drug, entities.SourceStats, error) {
	var drugs []entities.Drug
	stats, err := csvRows(r, DrugsFile, []string{"atccode", "drug"}, func(row map[string]string) bool {
		name := CleanText(row["drug"])
		if name == "" {
			return false
		}
		drugs = append(drugs, entities.Drug{ATCCode: strings.TrimSpace(row["atccode"]), Name: name})
		return true
	})
	return drugs, stats, err
}

func readClinicalTrials(r io.Reader) ([]entities.ClinicalTrialRecord, entities.SourceStats, error) {
	var trials []entities.ClinicalTrialRecord
	stats, err := csvRows(r, ClinicalTrialsFile, []string{"id", "scientific_title", "date", "journal"}, func(row map[string]string) bool {
		trial := entities.ClinicalTrialRecord{
			ID:      strings.TrimSpace(row["id"]),
			Title:   CleanText(row["scientific_title"]),
			Journal: CleanText(row["journal"]),
			Date:    NormalizeDate(row["date"]),
		}
		if trial.Validate() != nil {
			return false
		}
		trials = append(trials, trial)
		return true
	})
	return trials, stats, err
}

func readPubmedCSV(r io.Reader) ([]entities.ArticleRecord, entities.SourceStats, error) {
	var articles []entities.ArticleRecord
	stats, err := csvRows(r, PubmedCSVFile, []string{"id", "title", "date", "journal"}, func(row map[string]string) bool {
		article := cleanArticle(row["id"], row["title"], row["journal"], row["date"])
		if article.Validate() != nil {
			return false
		}
		articles = append(articles, article)
		return true
	})
	return articles, stats, err
}

// pubmedJSONRow accepts ids written either as numbers or strings.
type pubmedJSONRow struct {
	ID      json.RawMessage `json:"id"`
	Title   string          `json:"title"`
	Date    string          `json:"date"`
	Journal string          `json:"journal"`
}

func readPubmedJSON(r io.Reader) ([]entities.ArticleRecord, entities.SourceStats, error) {
	stats := entities.SourceStats{File: PubmedJSONFile}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to read %s: %w", PubmedJSONFile, err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, stats, nil
	}

	var rows []pubmedJSONRow
	if err := json.Unmarshal(stripTrailingCommas(data), &rows); err != nil {
		return nil, stats, fmt.Errorf("failed to decode %s: %w", PubmedJSONFile, err)
	}

	articles := make([]entities.ArticleRecord, 0, len(rows))
	for _, row := range rows {
		stats.TotalRows++
		id := strings.Trim(string(row.ID), `"`)
		if id == "null" {
			id = ""
		}
		article := cleanArticle(id, row.Title, row.Journal, row.Date)
		if article.Validate() != nil {
			stats.MissingFields++
			continue
		}
		articles = append(articles, article)
		stats.Parsed++
	}
	return articles, stats, nil
}

func cleanArticle(id, title, journal, date string) entities.ArticleRecord {
	return entities.ArticleRecord{
		ID:      strings.TrimSpace(id),
		Title:   CleanText(title),
		Journal: CleanText(journal),
		Date:    NormalizeDate(date),
	}
}

// readFile opens path and hands it to read. A missing optional file yields
// empty results.
func readFile[T any](path string, optional bool, read func(io.Reader) ([]T, entities.SourceStats, error)) ([]T, entities.SourceStats, error) {
	f, err := os.Open(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			logging.Warn("Optional source file not found", "path", path)
			return nil, entities.SourceStats{File: filepath.Base(path)}, nil
		}
		return nil, entities.SourceStats{File: filepath.Base(path)}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("Failed to close source file", "path", path, "error", err)
		}
	}()

	out, stats, err := read(f)
	if err != nil {
		return nil, stats, err
	}
	logStats(stats)
	return out, stats, nil
}
