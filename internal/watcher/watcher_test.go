package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nsynca/nsynca/internal/config"
	"github.com/nsynca/nsynca/internal/models"
)

func TestClassify(t *testing.T) {
	dir := t.TempDir()
	settings := filepath.Join(dir, "home", "settings.yaml")
	w, err := New(filepath.Join(dir, "logs"), settings)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	tests := []struct {
		path  string
		typ   EventType
		month string
		ok    bool
	}{
		{filepath.Join(dir, "logs", "update_history_202504.json"), EventHistoryChanged, "2025-04", true},
		{filepath.Join(dir, "logs", "nsynca.log"), 0, "", false},
		{filepath.Join(dir, "other", "update_history_202504.json"), 0, "", false},
		{settings, EventSettingsChanged, "", true},
	}
	for _, tt := range tests {
		t.Run(filepath.Base(tt.path), func(t *testing.T) {
			ev, ok := w.classify(tt.path)
			if ok != tt.ok {
				t.Fatalf("classify ok = %v, want %v", ok, tt.ok)
			}
			if ok && (ev.Type != tt.typ || ev.Month != tt.month) {
				t.Errorf("event = %+v", ev)
			}
		})
	}
}

func TestWatcherSeesSavedRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	w, err := New(dir, "")
	if err != nil {
		t.Fatal(err)
	}
	w.Debounce = 10 * time.Millisecond
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("history dir not created: %v", err)
	}

	store := config.NewHistoryStore(dir)
	now := time.Date(2025, 4, 20, 12, 0, 0, 0, time.UTC)
	run := models.NewRun(models.AllSelection(), now)
	if err := store.SaveRun(run); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	select {
	case ev := <-w.Events():
		if ev.Type != EventHistoryChanged || ev.Month != "2025-04" {
			t.Errorf("event = %+v", ev)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no event received")
	}
}
