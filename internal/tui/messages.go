package tui

import (
	"github.com/nsynca/nsynca/internal/models"
)

// UpdaterStartMsg signals an updater started.
type UpdaterStartMsg struct {
	Updater models.UpdaterType
}

// PlannedMsg carries the number of records an updater will apply.
type PlannedMsg struct {
	Updater models.UpdaterType
	Records int
}

// ResultMsg carries the outcome of one record.
type ResultMsg struct {
	Result models.RecordResult
}

// UpdaterDoneMsg signals an updater finished.
type UpdaterDoneMsg struct {
	Updater models.UpdaterType
	Err     error
}

// RunFinishedMsg carries the finished run, or the error that prevented it.
type RunFinishedMsg struct {
	Run *models.Run
	Err error
}

// MonthsLoadedMsg carries the months that have history.
type MonthsLoadedMsg struct {
	Months []string
}

// RunsLoadedMsg carries the runs of a month.
type RunsLoadedMsg struct {
	Month string
	Runs  []models.Run
}

// HistoryChangedMsg signals a history file changed on disk.
type HistoryChangedMsg struct {
	Month string
}

// ErrorMsg carries an error to display.
type ErrorMsg struct {
	Err error
}

// ClearErrorMsg clears the error display.
type ClearErrorMsg struct{}
