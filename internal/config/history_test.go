package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/nsynca/nsynca/internal/models"
)

func newTestRun(id, typ, status string, started time.Time) *models.Run {
	return &models.Run{
		ID:        id,
		Type:      typ,
		Updaters:  []models.UpdaterType{models.UpdaterType(typ)},
		StartedAt: started,
		Status:    status,
	}
}

func TestHistoryStoreSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	store := NewHistoryStore(dir)

	march := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	april := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)

	runs := []*models.Run{
		newTestRun("a", "task", models.RunStatusSuccess, march),
		newTestRun("b", "charge", models.RunStatusFailed, march.Add(time.Hour)),
		newTestRun("c", "deployment", models.RunStatusSuccess, april),
	}
	for _, r := range runs {
		if err := store.SaveRun(r); err != nil {
			t.Fatalf("SaveRun(%s): %v", r.ID, err)
		}
	}

	if _, err := os.Stat(filepath.Join(dir, "update_history_202503.json")); err != nil {
		t.Errorf("expected March history file: %v", err)
	}

	months, err := store.ListMonths()
	if err != nil {
		t.Fatalf("ListMonths: %v", err)
	}
	if want := []string{"2025-04", "2025-03"}; !reflect.DeepEqual(months, want) {
		t.Errorf("ListMonths() = %v, want %v", months, want)
	}

	got, err := store.LoadRuns("2025-03")
	if err != nil {
		t.Fatalf("LoadRuns: %v", err)
	}
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "a" {
		t.Errorf("LoadRuns order = %v, want [b a]", ids(got))
	}

	latest, err := store.LatestRun()
	if err != nil {
		t.Fatalf("LatestRun: %v", err)
	}
	if latest == nil || latest.ID != "c" {
		t.Errorf("LatestRun() = %v, want c", latest)
	}
}

func TestHistoryStoreReplacesRunByID(t *testing.T) {
	store := NewHistoryStore(t.TempDir())
	started := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	r := newTestRun("run-1", "all", models.RunStatusRunning, started)
	if err := store.SaveRun(r); err != nil {
		t.Fatal(err)
	}
	r.Finish(started.Add(time.Minute))
	if err := store.SaveRun(r); err != nil {
		t.Fatal(err)
	}

	got, err := store.LoadRuns("2025-05")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d runs, want 1", len(got))
	}
	if got[0].Status != models.RunStatusSuccess || got[0].CompletedAt == nil {
		t.Errorf("run not updated in place: %+v", got[0])
	}
}

func TestHistoryStoreEmpty(t *testing.T) {
	store := NewHistoryStore(filepath.Join(t.TempDir(), "missing"))
	months, err := store.ListMonths()
	if err != nil || len(months) != 0 {
		t.Errorf("ListMonths() = %v, %v; want empty", months, err)
	}
	latest, err := store.LatestRun()
	if err != nil || latest != nil {
		t.Errorf("LatestRun() = %v, %v; want nil", latest, err)
	}
	if _, err := store.LoadRuns("March"); err == nil {
		t.Error("LoadRuns with a bad month should fail")
	}
}

func TestFindRun(t *testing.T) {
	store := NewHistoryStore(t.TempDir())
	started := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for _, id := range []string{"abc-1", "abd-2"} {
		if err := store.SaveRun(newTestRun(id, "task", models.RunStatusSuccess, started)); err != nil {
			t.Fatal(err)
		}
	}

	if r, err := store.FindRun("abc"); err != nil || r.ID != "abc-1" {
		t.Errorf("FindRun(abc) = %v, %v", r, err)
	}
	if _, err := store.FindRun("ab"); err == nil {
		t.Error("FindRun(ab) should be ambiguous")
	}
	if _, err := store.FindRun("zzz"); err == nil {
		t.Error("FindRun(zzz) should not be found")
	}
}

func TestFilterRuns(t *testing.T) {
	now := time.Now()
	runs := []models.Run{
		*newTestRun("1", "task", models.RunStatusSuccess, now),
		*newTestRun("2", "charge", models.RunStatusFailed, now),
		{ID: "3", Type: "all", Updaters: models.AllUpdaterTypes(), Status: models.RunStatusFailed},
	}

	tests := []struct {
		name   string
		filter RunFilter
		want   []string
	}{
		{name: "no filter", filter: RunFilter{}, want: []string{"1", "2", "3"}},
		{name: "type task", filter: RunFilter{Type: "task"}, want: []string{"1", "3"}},
		{name: "type all", filter: RunFilter{Type: "all"}, want: []string{"3"}},
		{name: "failed", filter: RunFilter{Status: "FAILED"}, want: []string{"2", "3"}},
		{name: "charge success", filter: RunFilter{Type: "charge", Status: "success"}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(FilterRuns(runs, tt.filter))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FilterRuns(%+v) = %v, want %v", tt.filter, got, tt.want)
			}
		})
	}
}

func ids(runs []models.Run) []string {
	var out []string
	for _, r := range runs {
		out = append(out, r.ID)
	}
	return out
}

func TestHistoryMonth(t *testing.T) {
	tests := []struct {
		name  string
		month string
		ok    bool
	}{
		{"update_history_202504.json", "2025-04", true},
		{"/var/logs/update_history_202412.json", "2024-12", true},
		{"update_history_2025.json", "", false},
		{"update_history_202504.json.tmp", "", false},
		{"nsynca.log", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			month, ok := HistoryMonth(tt.name)
			if month != tt.month || ok != tt.ok {
				t.Errorf("HistoryMonth(%q) = %q, %v; want %q, %v", tt.name, month, ok, tt.month, tt.ok)
			}
		})
	}
}
