// Package report writes the drug mention report and its analytics to files or streams.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/giygas/drug-mentions/interfaces"
	"github.com/giygas/drug-mentions/mentions"
	"github.com/giygas/drug-mentions/publicationsparser/entities"
)

// Format is the encoding of a written document
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml and yml, case-insensitively
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported format %q: must be json or yaml", raw)
}

// FormatFromPath guesses the format from a file extension, falling back to fallback
func FormatFromPath(path string, fallback Format) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	}
	return fallback
}

// Document is everything produced by one build
type Document struct {
	GeneratedAt time.Time                     `json:"generated_at" yaml:"generated_at"`
	Drugs       []entities.DrugJournals       `json:"drugs" yaml:"drugs"`
	Analytics   *mentions.Analytics           `json:"analytics,omitempty" yaml:"analytics,omitempty"`
	Quality     *interfaces.DataQualityReport `json:"quality,omitempty" yaml:"quality,omitempty"`
}

// NewDocument builds the document of an index. Drugs is never nil.
func NewDocument(idx *entities.MentionIndex, analytics *mentions.Analytics, quality *interfaces.DataQualityReport) Document {
	return Document{
		GeneratedAt: time.Now().UTC(),
		Drugs:       mentions.DrugReport(idx),
		Analytics:   analytics,
		Quality:     quality,
	}
}

// Write encodes doc to w
func Write(w io.Writer, doc Document, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode json report: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode yaml report: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to encode yaml report: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
	return nil
}

// WriteFile writes doc to path through a temporary file so readers never see a partial report
func WriteFile(path string, doc Document, format Format) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.part")
	if err != nil {
		return fmt.Errorf("failed to create temporary report: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op once renamed

	if err := Write(tmp, doc, format); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary report: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move report into place: %w", err)
	}
	return nil
}

// PrintAnalytics writes a short human readable summary of a
func PrintAnalytics(w io.Writer, a mentions.Analytics) error {
	var b strings.Builder

	if a.TopJournal == "" {
		b.WriteString("Top journal: none (no journal mentions any drug)\n")
	} else {
		fmt.Fprintf(&b, "Top journal: %s (%d drugs)\n", a.TopJournal, a.TopJournalHits)
	}

	others := make([]string, 0, len(a.CoMentioned))
	for _, d := range a.CoMentioned {
		if d != a.Seed {
			others = append(others, d)
		}
	}
	fmt.Fprintf(&b, "Drugs co-mentioned with %s within %d hops: ", a.Seed, a.Depth)
	if len(others) == 0 {
		b.WriteString("none\n")
	} else {
		b.WriteString(strings.Join(others, ", ") + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
