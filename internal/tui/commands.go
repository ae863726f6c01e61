package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nsynca/nsynca/internal/models"
	"github.com/nsynca/nsynca/internal/orchestrator"
)

// Runner executes a run. *orchestrator.Orchestrator implements it.
type Runner interface {
	Run(ctx context.Context, sel models.Selection, rep orchestrator.Reporter) (*models.Run, error)
}

// History reads past runs. *config.HistoryStore implements it.
type History interface {
	ListMonths() ([]string, error)
	LoadRuns(month string) ([]models.Run, error)
}

// programReporter forwards orchestrator progress to the program.
type programReporter struct {
	program *programRef
}

func (r programReporter) OnUpdaterStart(t models.UpdaterType) {
	r.program.Send(UpdaterStartMsg{Updater: t})
}

func (r programReporter) OnPlanned(t models.UpdaterType, n int) {
	r.program.Send(PlannedMsg{Updater: t, Records: n})
}

func (r programReporter) OnResult(res models.RecordResult) {
	r.program.Send(ResultMsg{Result: res})
}

func (r programReporter) OnUpdaterDone(t models.UpdaterType, err error) {
	r.program.Send(UpdaterDoneMsg{Updater: t, Err: err})
}

func (r programReporter) OnRunComplete(*models.Run) {}

// runCmd executes the orchestrator in the background. Progress arrives as
// messages sent through the program; the returned message ends the run.
func runCmd(ctx context.Context, runner Runner, sel models.Selection, program *programRef) tea.Cmd {
	return func() tea.Msg {
		rep := orchestrator.MultiReporter{orchestrator.LogReporter{}, programReporter{program: program}}
		run, err := runner.Run(ctx, sel, rep)
		return RunFinishedMsg{Run: run, Err: err}
	}
}

func loadMonthsCmd(history History) tea.Cmd {
	return func() tea.Msg {
		months, err := history.ListMonths()
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return MonthsLoadedMsg{Months: months}
	}
}

func loadRunsCmd(history History, month string) tea.Cmd {
	return func() tea.Msg {
		runs, err := history.LoadRuns(month)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return RunsLoadedMsg{Month: month, Runs: runs}
	}
}

func clearErrorAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(_ time.Time) tea.Msg {
		return ClearErrorMsg{}
	})
}
