package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nsynca/nsynca/internal/config"
	"github.com/nsynca/nsynca/internal/models"
)

// isolate points every config lookup at a temp directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv(config.LogDirEnv, filepath.Join(dir, "logs"))
	for _, k := range []string{config.EnvNotionAPIKey, config.EnvDeploymentsDBID, config.EnvTasksDBID, config.EnvServicesDBID} {
		t.Setenv(k, "")
	}
	flagUpdaters, flagLogLevel, flagEnvFile = nil, "INFO", config.EnvFileName
	flagLogsMonth, flagLogsType, flagLogsStatus, flagLogsID, flagLogsJSON = "", "", "", "", false
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	err := rootCmd.Execute()
	return out.String(), err
}

func saveRun(t *testing.T, store *config.HistoryStore, sel models.Selection, start time.Time, failed bool) *models.Run {
	t.Helper()
	run := models.NewRun(sel, start)
	res := models.RecordResult{Updater: sel[0], Name: "API", Status: models.ResultSuccess, Action: models.ActionUpdated}
	if failed {
		res = models.RecordResult{Updater: sel[0], Name: "API", Status: models.ResultFailed, Error: "boom"}
	}
	run.Results = []models.RecordResult{res}
	run.Finish(start.Add(time.Second))
	if err := store.SaveRun(run); err != nil {
		t.Fatal(err)
	}
	return run
}

func TestRunMissingConfig(t *testing.T) {
	dir := isolate(t)
	_, err := execute(t, "--updaters", "task", "--env-file", filepath.Join(dir, "missing.env"))
	if !errors.Is(err, config.ErrMissing) {
		t.Fatalf("err = %v, want ErrMissing", err)
	}
	if !strings.Contains(err.Error(), config.EnvTasksDBID) || strings.Contains(err.Error(), config.EnvServicesDBID) {
		t.Errorf("err = %q, want only the task requirements", err)
	}
}

func TestRunUpdaterNames(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{
			name:    "trailing names",
			args:    []string{"--updaters", "task", "service"},
			want:    []string{config.EnvTasksDBID, config.EnvServicesDBID},
			notWant: []string{config.EnvDeploymentsDBID},
		},
		{
			name:    "comma list",
			args:    []string{"--updaters", "deployment,charge"},
			want:    []string{config.EnvDeploymentsDBID, config.EnvServicesDBID},
			notWant: []string{config.EnvTasksDBID},
		},
		{
			name:    "names without the flag",
			args:    []string{"tasks"},
			want:    []string{config.EnvTasksDBID},
			notWant: []string{config.EnvDeploymentsDBID, config.EnvServicesDBID},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			_, err := execute(t, append(tt.args, "--env-file", filepath.Join(dir, "missing.env"))...)
			if !errors.Is(err, config.ErrMissing) {
				t.Fatalf("err = %v, want ErrMissing", err)
			}
			for _, v := range tt.want {
				if !strings.Contains(err.Error(), v) {
					t.Errorf("err = %q, want %s", err, v)
				}
			}
			for _, v := range tt.notWant {
				if strings.Contains(err.Error(), v) {
					t.Errorf("err = %q, want no %s", err, v)
				}
			}
		})
	}

	t.Run("unknown name", func(t *testing.T) {
		dir := isolate(t)
		_, err := execute(t, "--updaters", "task", "invoices", "--env-file", filepath.Join(dir, "missing.env"))
		if err == nil || !strings.Contains(err.Error(), "unknown updater") {
			t.Fatalf("err = %v, want unknown updater", err)
		}
	})
}

func TestRunInvalidLogLevel(t *testing.T) {
	dir := isolate(t)
	_, err := execute(t, "logs", "--log-level", "LOUD", "--env-file", filepath.Join(dir, "missing.env"))
	if err == nil || !strings.Contains(err.Error(), "invalid log level") {
		t.Fatalf("err = %v, want invalid log level", err)
	}
}

func TestLogsCommand(t *testing.T) {
	dir := isolate(t)
	store := config.NewHistoryStore(filepath.Join(dir, "logs"))
	start := time.Date(2025, 4, 20, 12, 0, 0, 0, time.UTC)
	saveRun(t, store, models.AllSelection(), start, false)
	failed := saveRun(t, store, models.Selection{models.UpdaterTask}, start.Add(time.Hour), true)
	saveRun(t, store, models.Selection{models.UpdaterCharge}, start.AddDate(0, -1, 0), false)

	out, err := execute(t, "logs", "--json", "--status", "failed", "--env-file", filepath.Join(dir, "missing.env"))
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	var runs []models.Run
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(runs) != 1 || runs[0].ID != failed.ID {
		t.Errorf("runs = %+v, want the failed task run", runs)
	}

	flagLogsJSON, flagLogsStatus = false, ""
	out, err = execute(t, "logs", "--id", failed.ID[:8], "--env-file", filepath.Join(dir, "missing.env"))
	if err != nil {
		t.Fatalf("logs --id: %v", err)
	}
	if !strings.Contains(out, failed.ID) || !strings.Contains(out, "boom") {
		t.Errorf("detail output missing run:\n%s", out)
	}
}

func TestPrintRunSummary(t *testing.T) {
	start := time.Date(2025, 4, 20, 12, 0, 0, 0, time.UTC)
	run := models.NewRun(models.AllSelection(), start)
	run.Results = []models.RecordResult{
		{Updater: models.UpdaterTask, Name: "API", Status: models.ResultSuccess, Action: models.ActionUpdated},
		{Updater: models.UpdaterTask, Name: "App", Status: models.ResultFailed, Error: "validation failed"},
	}
	run.UpdaterErrors = []models.UpdaterError{{Updater: models.UpdaterCharge, Error: "query failed"}}
	run.Finish(start.Add(2 * time.Second))

	var buf bytes.Buffer
	printRunSummary(&buf, run)
	out := buf.String()
	for _, want := range []string{run.ID, "1 updated", "1 failed", "App: validation failed", "Charges updater failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
