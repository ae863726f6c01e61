package orchestrator

import (
	"log/slog"
	"time"

	"github.com/nsynca/nsynca/internal/models"
)

// Reporter receives progress while a run executes. Calls happen on the
// goroutine running the orchestrator.
type Reporter interface {
	OnUpdaterStart(t models.UpdaterType)
	OnPlanned(t models.UpdaterType, records int)
	OnResult(res models.RecordResult)
	OnUpdaterDone(t models.UpdaterType, err error)
	OnRunComplete(run *models.Run)
}

// NopReporter ignores progress.
type NopReporter struct{}

func (NopReporter) OnUpdaterStart(models.UpdaterType)       {}
func (NopReporter) OnPlanned(models.UpdaterType, int)       {}
func (NopReporter) OnResult(models.RecordResult)            {}
func (NopReporter) OnUpdaterDone(models.UpdaterType, error) {}
func (NopReporter) OnRunComplete(*models.Run)               {}

// LogReporter logs progress through slog.
type LogReporter struct{}

func (LogReporter) OnUpdaterStart(t models.UpdaterType) {
	slog.Info("Starting updater", "updater", t)
}

func (LogReporter) OnPlanned(t models.UpdaterType, n int) {
	slog.Info("Planned records", "updater", t, "records", n)
}

func (LogReporter) OnResult(res models.RecordResult) {
	if res.Failed() {
		slog.Error("Record failed", "updater", res.Updater, "name", res.Name, "id", res.RecordID, "err", res.Error)
		return
	}
	slog.Info("Record "+res.Action, "updater", res.Updater, "name", res.Name, "changes", len(res.Changes))
	for _, c := range res.Changes {
		slog.Debug("Changed", "name", res.Name, "change", c)
	}
}

func (LogReporter) OnUpdaterDone(t models.UpdaterType, err error) {
	if err != nil {
		slog.Error("Updater failed", "updater", t, "err", err)
		return
	}
	slog.Info("Updater complete", "updater", t)
}

func (LogReporter) OnRunComplete(run *models.Run) {
	attrs := []any{"run", run.ID, "type", run.Type, "summary", run.Summary(), "duration", run.Duration().Round(time.Millisecond)}
	if run.Status == models.RunStatusFailed {
		slog.Warn("Run failed", attrs...)
		return
	}
	slog.Info("Run complete", attrs...)
}

// MultiReporter fans progress out to several reporters.
type MultiReporter []Reporter

func (m MultiReporter) OnUpdaterStart(t models.UpdaterType) {
	for _, r := range m {
		r.OnUpdaterStart(t)
	}
}

func (m MultiReporter) OnPlanned(t models.UpdaterType, n int) {
	for _, r := range m {
		r.OnPlanned(t, n)
	}
}

func (m MultiReporter) OnResult(res models.RecordResult) {
	for _, r := range m {
		r.OnResult(res)
	}
}

func (m MultiReporter) OnUpdaterDone(t models.UpdaterType, err error) {
	for _, r := range m {
		r.OnUpdaterDone(t, err)
	}
}

func (m MultiReporter) OnRunComplete(run *models.Run) {
	for _, r := range m {
		r.OnRunComplete(run)
	}
}
