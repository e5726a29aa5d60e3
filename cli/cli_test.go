package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/giygas/drug-mentions/config"
	"github.com/giygas/drug-mentions/publicationsparser"
)

func testConfig(dataDir string) *config.Config {
	return &config.Config{
		Port:              "8000",
		Address:           "127.0.0.1",
		Env:               config.EnvTest,
		LogLevel:          "error",
		LogRetentionWeeks: 4,
		MaxLogFileSize:    100 * 1024 * 1024,
		MaxRequestBody:    1024 * 1024,
		MaxHeaderSize:     1024 * 1024,
		DataDir:           dataDir,
		RefreshAt:         []string{"06:00"},
		SeedDrug:          "diphenhydramine",
		TraversalDepth:    2,
		CacheTTL:          time.Minute,
	}
}

func writeDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		publicationsparser.DrugsFile: "atccode,drug\n" +
			"A04AD,DIPHENHYDRAMINE\n" +
			"R01AA,XYLAZINE\n" +
			"G04BE,YOHIMBINE\n",
		publicationsparser.ClinicalTrialsFile: "id,scientific_title,date,journal\n" +
			"NCT01,Diphenhydramine as a sedative,1 January 2020,Journal of emergency nursing\n",
		publicationsparser.PubmedCSVFile: "id,title,date,journal\n" +
			"1,Diphenhydramine and xylazine in rats,01/01/2019,Journal A\n" +
			"2,Yohimbine reverses xylazine,02/01/2019,Journal B\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0600))
	}
	return dir
}

func run(t *testing.T, cfg *config.Config, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	deps := &Deps{LoadConfig: func() (*config.Config, error) {
		c := *cfg
		return &c, nil
	}}

	root := NewRootCommand(deps)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)

	err = root.Execute()
	return out.String(), errOut.String(), err
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := run(t, testConfig(t.TempDir()), "version")
	require.NoError(t, err)
	assert.Equal(t, "drug-mentions dev\n", stdout)
}

func TestReportCommand_Stdout(t *testing.T) {
	stdout, stderr, err := run(t, testConfig(writeDataDir(t)), "report")
	require.NoError(t, err)

	var doc struct {
		Drugs []struct {
			Drug     string           `json:"drug"`
			Journals []map[string]any `json:"journals"`
		} `json:"drugs"`
		Analytics struct {
			TopJournal  string   `json:"top_journal"`
			CoMentioned []string `json:"co_mentioned"`
		} `json:"analytics"`
		Quality map[string]any `json:"quality"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))

	require.Len(t, doc.Drugs, 3)
	assert.Equal(t, "diphenhydramine", doc.Drugs[0].Drug)
	assert.Len(t, doc.Drugs[0].Journals, 2)
	assert.Equal(t, "journal a", doc.Analytics.TopJournal)
	assert.Equal(t, []string{"diphenhydramine", "xylazine", "yohimbine"}, doc.Analytics.CoMentioned)
	assert.Nil(t, doc.Quality)

	assert.Contains(t, stderr, "Top journal: journal a (2 drugs)")
	assert.Contains(t, stderr, "xylazine, yohimbine")
}

func TestReportCommand_FileOutputAndFlags(t *testing.T) {
	output := filepath.Join(t.TempDir(), "out", "report.yaml")

	stdout, _, err := run(t, testConfig(writeDataDir(t)),
		"report", "--seed", "Xylazine", "--depth", "1", "--quality", "--output", output)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Drugs co-mentioned with xylazine within 1 hops: diphenhydramine, yohimbine")

	content, err := os.ReadFile(output)
	require.NoError(t, err)

	var doc struct {
		Analytics struct {
			Seed  string `yaml:"seed"`
			Depth int    `yaml:"depth"`
		} `yaml:"analytics"`
		Quality struct {
			TotalMentions int `yaml:"total_mentions"`
		} `yaml:"quality"`
	}
	require.NoError(t, yaml.Unmarshal(content, &doc))
	assert.Equal(t, "xylazine", doc.Analytics.Seed)
	assert.Equal(t, 1, doc.Analytics.Depth)
	assert.Equal(t, 5, doc.Quality.TotalMentions)
}

func TestReportCommand_SingleLetterSeed(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		publicationsparser.DrugsFile: "atccode,drug\n" +
			"A01,X\n" +
			"A02,Y\n" +
			"A03,R&D-7\n",
		publicationsparser.ClinicalTrialsFile: "id,scientific_title,date,journal\n" +
			"NCT01,R&D-7 first in human,1 January 2020,Journal C\n",
		publicationsparser.PubmedCSVFile: "id,title,date,journal\n" +
			"1,X with Y,01/01/2019,Journal A\n" +
			"2,Y alone,02/01/2019,Journal B\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0600))
	}

	stdout, _, err := run(t, testConfig(dir), "report", "--seed", "x", "--depth", "1")
	require.NoError(t, err)

	var doc struct {
		Analytics struct {
			Seed        string   `json:"seed"`
			CoMentioned []string `json:"co_mentioned"`
		} `json:"analytics"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, "x", doc.Analytics.Seed)
	assert.Equal(t, []string{"x", "y"}, doc.Analytics.CoMentioned)

	// punctuation is part of a name, not a reason to reject it
	_, _, err = run(t, testConfig(dir), "report", "--seed", "R&D-7")
	require.NoError(t, err)
}

func TestReportCommand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		dataDir string
		args    []string
		wantErr string
	}{
		{"invalid depth", "", []string{"report", "--depth", "0"}, "TRAVERSAL_DEPTH"},
		{"invalid format", "", []string{"report", "--format", "xml"}, "unsupported format"},
		{"control character in seed", "", []string{"report", "--seed", "xyla\x07zine"}, "invalid seed drug"},
		{"missing sources", "empty", []string{"report"}, "failed to parse records"},
		{"unexpected argument", "", []string{"report", "extra"}, "unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeDataDir(t)
			if tt.dataDir == "empty" {
				dir = t.TempDir()
			}

			_, _, err := run(t, testConfig(dir), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestServeCommand_InvalidFlags(t *testing.T) {
	_, _, err := run(t, testConfig(t.TempDir()), "serve", "--port", "80")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid PORT")
}
