package scheduler

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/giygas/drug-mentions/interfaces"
	"github.com/giygas/drug-mentions/logging"
	"github.com/giygas/drug-mentions/publicationsparser/entities"
	"github.com/giygas/drug-mentions/validation"
)

// mockSchedulerDataStore for testing scheduler
type mockSchedulerDataStore struct {
	index       *entities.MentionIndex
	drugReport  []entities.DrugJournals
	quality     *interfaces.DataQualityReport
	lastUpdated time.Time
	updating    bool
	updateCount int
}

func (m *mockSchedulerDataStore) GetSnapshot() *interfaces.Snapshot {
	return interfaces.NewSnapshot(m.GetSnapshotID(), m.index, m.drugReport, m.quality, m.lastUpdated)
}

func (m *mockSchedulerDataStore) GetIndex() *entities.MentionIndex {
	if m.index == nil {
		return entities.NewMentionIndex(nil, nil)
	}
	return m.index
}

func (m *mockSchedulerDataStore) GetDrugReport() []entities.DrugJournals { return m.drugReport }

func (m *mockSchedulerDataStore) GetDrugEntry(drug string) (entities.DrugJournals, bool) {
	for _, entry := range m.drugReport {
		if entry.Drug == drug {
			return entry, true
		}
	}
	return entities.DrugJournals{}, false
}

func (m *mockSchedulerDataStore) GetQualityReport() *interfaces.DataQualityReport { return m.quality }
func (m *mockSchedulerDataStore) GetSnapshotID() string                           { return "mock" }
func (m *mockSchedulerDataStore) GetLastUpdated() time.Time                       { return m.lastUpdated }
func (m *mockSchedulerDataStore) IsUpdating() bool                                { return m.updating }
func (m *mockSchedulerDataStore) GetServerStartTime() time.Time                   { return time.Time{} }

func (m *mockSchedulerDataStore) UpdateData(idx *entities.MentionIndex, drugReport []entities.DrugJournals, report *interfaces.DataQualityReport) {
	m.index = idx
	m.drugReport = drugReport
	m.quality = report
	m.lastUpdated = time.Now()
	m.updateCount++
}

func (m *mockSchedulerDataStore) BeginUpdate() bool {
	if m.updating {
		return false
	}
	m.updating = true
	return true
}

func (m *mockSchedulerDataStore) EndUpdate() {
	m.updating = false
}

// mockSchedulerParser for testing scheduler
type mockSchedulerParser struct {
	parseCount int
	err        error
	records    *entities.RecordSet
}

func (m *mockSchedulerParser) ParseAllRecords(ctx context.Context) (*entities.RecordSet, error) {
	m.parseCount++
	if m.err != nil {
		return nil, m.err
	}
	if m.records != nil {
		return m.records, nil
	}
	return &entities.RecordSet{
		Drugs: []entities.Drug{
			{ATCCode: "A04AD", Name: "diphenhydramine"},
			{ATCCode: "V03AB", Name: "ethanol"},
		},
		ClinicalTrials: []entities.ClinicalTrialRecord{
			{ID: "NCT01", Title: "diphenhydramine for colonoscopy", Journal: "journal of emergency nursing", Date: "01-01-2020"},
		},
		Articles: []entities.ArticleRecord{
			{ID: "1", Title: "ethanol and diphenhydramine", Journal: "psychopharmacology", Date: "01-01-2019"},
		},
	}, nil
}

func newTestScheduler(store interfaces.DataStore, parser interfaces.Parser) *Scheduler {
	logging.InitLogger("", "error", 0, 0)
	return NewScheduler(store, parser, validation.NewDataValidator(), []string{"06:00", "18:00"})
}

func TestScheduler_SuccessfulUpdate(t *testing.T) {
	mockDataStore := &mockSchedulerDataStore{}
	mockParser := &mockSchedulerParser{}

	scheduler := newTestScheduler(mockDataStore, mockParser)

	if err := scheduler.Start(); err != nil {
		t.Fatalf("Unexpected error during start: %v", err)
	}
	defer scheduler.Stop()

	if mockDataStore.updateCount != 1 {
		t.Errorf("Expected 1 update, got %d", mockDataStore.updateCount)
	}
	if mockParser.parseCount != 1 {
		t.Errorf("Expected 1 parse call, got %d", mockParser.parseCount)
	}

	idx := mockDataStore.GetIndex()
	if idx.Len() != 2 {
		t.Errorf("Expected 2 drugs, got %d", idx.Len())
	}
	if !slices.Equal(idx.PubmedDrugs("psychopharmacology"), []string{"diphenhydramine", "ethanol"}) {
		t.Errorf("Unexpected pubmed drugs: %v", idx.PubmedDrugs("psychopharmacology"))
	}
	if len(mockDataStore.drugReport) != 2 {
		t.Errorf("Expected 2 report entries, got %d", len(mockDataStore.drugReport))
	}
	if mockDataStore.quality == nil || mockDataStore.quality.TotalMentions != 3 {
		t.Errorf("Expected a quality report with 3 mentions, got %+v", mockDataStore.quality)
	}
	if mockDataStore.IsUpdating() {
		t.Error("Update flag should be released after the build")
	}
}

func TestScheduler_ParseFailure(t *testing.T) {
	mockDataStore := &mockSchedulerDataStore{}
	parseErr := errors.New("parse failed")
	mockParser := &mockSchedulerParser{err: parseErr}

	scheduler := newTestScheduler(mockDataStore, mockParser)

	err := scheduler.Start()
	if err == nil {
		t.Fatal("Expected error during start but got none")
	}
	if !errors.Is(err, parseErr) {
		t.Errorf("Expected the parse error to be wrapped, got %v", err)
	}
	if mockDataStore.updateCount != 0 {
		t.Errorf("Expected 0 updates due to failure, got %d", mockDataStore.updateCount)
	}
	if mockDataStore.IsUpdating() {
		t.Error("Update flag should be released after a failed build")
	}
}

func TestScheduler_ValidationFailureKeepsPreviousSnapshot(t *testing.T) {
	mockDataStore := &mockSchedulerDataStore{}
	mockParser := &mockSchedulerParser{}
	scheduler := newTestScheduler(mockDataStore, mockParser)

	if err := scheduler.updateData(context.Background()); err != nil {
		t.Fatalf("Initial update failed: %v", err)
	}
	previous := mockDataStore.index

	mockParser.records = &entities.RecordSet{}
	if err := scheduler.updateData(context.Background()); err == nil {
		t.Fatal("Expected an empty record set to be rejected")
	}

	if mockDataStore.index != previous {
		t.Error("A rejected build should not replace the published index")
	}
	if mockDataStore.updateCount != 1 {
		t.Errorf("Expected 1 update, got %d", mockDataStore.updateCount)
	}
}

func TestScheduler_ConcurrentUpdatePrevention(t *testing.T) {
	mockDataStore := &mockSchedulerDataStore{}
	mockParser := &mockSchedulerParser{}

	scheduler := newTestScheduler(mockDataStore, mockParser)

	// Simulate an update in progress
	mockDataStore.BeginUpdate()

	if err := scheduler.Start(); err != nil {
		t.Errorf("Unexpected error during start with concurrent update: %v", err)
	}
	defer scheduler.Stop()

	if mockDataStore.updateCount != 0 {
		t.Errorf("Expected 0 updates due to concurrent update, got %d", mockDataStore.updateCount)
	}
	if mockParser.parseCount != 0 {
		t.Errorf("Expected no parse while another update runs, got %d", mockParser.parseCount)
	}
}

func TestScheduler_NoRefreshTimes(t *testing.T) {
	logging.InitLogger("", "error", 0, 0)
	mockDataStore := &mockSchedulerDataStore{}

	scheduler := NewScheduler(mockDataStore, &mockSchedulerParser{}, validation.NewDataValidator(), nil)
	if err := scheduler.Start(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	scheduler.Stop()

	if mockDataStore.updateCount != 1 {
		t.Errorf("Expected the initial build to run, got %d updates", mockDataStore.updateCount)
	}
}

func TestScheduler_StopCancelsContext(t *testing.T) {
	scheduler := newTestScheduler(&mockSchedulerDataStore{}, &mockSchedulerParser{})
	scheduler.Stop()

	select {
	case <-scheduler.ctx.Done():
	default:
		t.Error("Stop should cancel the scheduler context")
	}
}

func TestBuildSnapshot(t *testing.T) {
	logging.InitLogger("", "error", 0, 0)

	snapshot, err := BuildSnapshot(context.Background(), &mockSchedulerParser{}, validation.NewDataValidator())
	if err != nil {
		t.Fatalf("BuildSnapshot failed: %v", err)
	}

	if snapshot.Records == nil || len(snapshot.Records.Drugs) != 2 {
		t.Error("Snapshot should keep the parsed records")
	}
	if snapshot.DrugReport[0].Drug != "diphenhydramine" || len(snapshot.DrugReport[0].Journals) != 2 {
		t.Errorf("Unexpected first report entry: %+v", snapshot.DrugReport[0])
	}
	if snapshot.Quality.Journals != 2 {
		t.Errorf("Expected 2 journals, got %d", snapshot.Quality.Journals)
	}
}

func TestCheckStaleness(t *testing.T) {
	logging.InitLogger("", "error", 0, 0)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	if checkStaleness(now.Add(-24*time.Hour), now) {
		t.Error("Data updated 24 hours ago should not be stale")
	}
	if !checkStaleness(now.Add(-26*time.Hour), now) {
		t.Error("Data updated 26 hours ago should be stale")
	}
}
