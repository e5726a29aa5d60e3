package publicationsparser

import (
	"strings"
	"testing"
)

func TestReadDrugs(t *testing.T) {
	input := "atccode,drug\n" +
		"A04AD,DIPHENHYDRAMINE\n" +
		"S03AA, Tetracycline \n" +
		",,\n" +
		"V03AB,\n" +
		"R01AD\n"

	drugs, stats, err := readDrugs(strings.NewReader(input))
	if err != nil {
		t.Fatalf("readDrugs failed: %v", err)
	}

	if len(drugs) != 2 {
		t.Fatalf("Expected 2 drugs, got %d", len(drugs))
	}
	if drugs[0].Name != "diphenhydramine" || drugs[0].ATCCode != "A04AD" {
		t.Errorf("Unexpected first drug: %+v", drugs[0])
	}
	if drugs[1].Name != "tetracycline" {
		t.Errorf("Expected cleaned name tetracycline, got %q", drugs[1].Name)
	}

	if stats.TotalRows != 5 || stats.Parsed != 2 {
		t.Errorf("Unexpected totals: %+v", stats)
	}
	if stats.EmptyRows != 1 || stats.MissingFields != 1 || stats.MissingColumns != 1 {
		t.Errorf("Unexpected skip counts: %+v", stats)
	}
	if stats.Skipped() != 3 {
		t.Errorf("Expected 3 skipped rows, got %d", stats.Skipped())
	}
}

func TestReadDrugs_MissingHeaderColumn(t *testing.T) {
	_, _, err := readDrugs(strings.NewReader("code,name\nA04AD,aspirin\n"))
	if err == nil {
		t.Fatal("Expected an error for a header without the drug column")
	}
	if !strings.Contains(err.Error(), `missing column "atccode"`) {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestReadDrugs_EmptyFile(t *testing.T) {
	drugs, stats, err := readDrugs(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Empty file should not fail: %v", err)
	}
	if len(drugs) != 0 || stats.TotalRows != 0 {
		t.Errorf("Expected nothing parsed, got %d drugs and %+v", len(drugs), stats)
	}
}

func TestReadClinicalTrials(t *testing.T) {
	input := "id,scientific_title,date,journal\n" +
		"NCT01967433,\"Use of Diphenhydramine as an Adjunctive Sedative, in Colonoscopy\",1 January 2020,Journal of emergency nursing\n" +
		"NCT04189588,Phase 2 Study IV QUZYTTIR™ (Cetirizine Hydrochloride Injection),1 January 2020,\n" +
		",Glucagon Infusion in T1D Patients,25/05/2020, Journal of emergency nursing \n"

	trials, stats, err := readClinicalTrials(strings.NewReader(input))
	if err != nil {
		t.Fatalf("readClinicalTrials failed: %v", err)
	}

	if len(trials) != 2 {
		t.Fatalf("Expected 2 trials, got %d", len(trials))
	}
	first := trials[0]
	if first.Title != "use of diphenhydramine as an adjunctive sedative, in colonoscopy" {
		t.Errorf("Unexpected title %q", first.Title)
	}
	if first.Journal != "journal of emergency nursing" || first.Date != "01-01-2020" {
		t.Errorf("Unexpected trial: %+v", first)
	}
	if trials[1].ID != "" || trials[1].Date != "05-25-2020" {
		t.Errorf("Record without id should be kept: %+v", trials[1])
	}
	if stats.MissingFields != 1 {
		t.Errorf("Expected the trial without journal to be skipped: %+v", stats)
	}
}

func TestReadPubmedCSV(t *testing.T) {
	input := "id,title,date,journal\n" +
		"1,\"A 44-year-old man with erythema of the face diphenhydramine, pruritus, and low blood pressure.\",01/01/2019,Journal of emergency nursing\n" +
		"2,An evaluation of benadryl.,2020-01-01,The Journal of pediatrics\n"

	articles, stats, err := readPubmedCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("readPubmedCSV failed: %v", err)
	}
	if len(articles) != 2 || stats.Parsed != 2 {
		t.Fatalf("Expected 2 articles, got %d (%+v)", len(articles), stats)
	}
	if articles[0].Date != "01-01-2019" || articles[1].Date != "01-01-2020" {
		t.Errorf("Unexpected dates: %q, %q", articles[0].Date, articles[1].Date)
	}
	if articles[1].Journal != "the journal of pediatrics" {
		t.Errorf("Unexpected journal %q", articles[1].Journal)
	}
}

func TestReadPubmedJSON(t *testing.T) {
	input := `[
  {
    "id": 9,
    "title": "Gold nanoparticles synthesized from Epinephrine",
    "date": "01/01/2020",
    "journal": "Journal of food protection",
  },
  {
    "id": "10",
    "title": "Clinical implications of epinephrine",
    "date": "2020-01-01",
    "journal": "Journal of food protection"
  },
  {
    "id": "",
    "title": "No journal here",
    "date": "2020-01-01",
    "journal": ""
  },
]`

	articles, stats, err := readPubmedJSON(strings.NewReader(input))
	if err != nil {
		t.Fatalf("readPubmedJSON failed: %v", err)
	}

	if len(articles) != 2 {
		t.Fatalf("Expected 2 articles, got %d", len(articles))
	}
	if articles[0].ID != "9" || articles[1].ID != "10" {
		t.Errorf("Expected numeric and string ids to decode alike, got %q and %q", articles[0].ID, articles[1].ID)
	}
	if articles[0].Title != "gold nanoparticles synthesized from epinephrine" {
		t.Errorf("Unexpected title %q", articles[0].Title)
	}
	if stats.TotalRows != 3 || stats.MissingFields != 1 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

func TestReadPubmedJSON_CommaInsideTitle(t *testing.T) {
	input := `[{"id": 1, "title": "Epinephrine dose, ] revisited", "date": "2020-01-01", "journal": "J",},]`

	articles, _, err := readPubmedJSON(strings.NewReader(input))
	if err != nil {
		t.Fatalf("readPubmedJSON failed: %v", err)
	}
	if len(articles) != 1 || articles[0].Title != "epinephrine dose, ] revisited" {
		t.Errorf("Title should survive trailing comma removal, got %+v", articles)
	}
}

func TestReadPubmedJSON_Invalid(t *testing.T) {
	if _, _, err := readPubmedJSON(strings.NewReader(`{"id": 1`)); err == nil {
		t.Error("Expected a decode error for truncated JSON")
	}

	articles, _, err := readPubmedJSON(strings.NewReader("  \n"))
	if err != nil || len(articles) != 0 {
		t.Errorf("Blank file should yield nothing, got %d articles, err %v", len(articles), err)
	}
}

func TestStripTrailingCommas(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`[1, 2, ]`, `[1, 2]`},
		{"{\"a\": 1,\n}", `{"a": 1}`},
		{`[{"a": 1},]`, `[{"a": 1}]`},
		{`{"a": "x, y"}`, `{"a": "x, y"}`},
		{`{"title": "dose, ]", "journal": "j",}`, `{"title": "dose, ]", "journal": "j"}`},
		{`["a ,}", "b\", ]",]`, `["a ,}", "b\", ]"]`},
		{"[1 ,\r\n\t]", `[1 ]`},
		{`[1,2]`, `[1,2]`},
	}

	for _, tt := range tests {
		if got := string(stripTrailingCommas([]byte(tt.input))); got != tt.expected {
			t.Errorf("stripTrailingCommas(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
