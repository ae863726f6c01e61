package tray

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/getlantern/systray"

	"github.com/nsynca/nsynca/internal/models"
	"github.com/nsynca/nsynca/internal/orchestrator"
)

//go:embed icon.png
var iconData []byte

var (
	runner  Runner
	history History
	runCtx  context.Context

	lastRunItem *systray.MenuItem
	actionItems []*systray.MenuItem
	quitItem    *systray.MenuItem

	runMu   sync.Mutex
	running bool
)

// Run starts the system tray. This blocks the calling goroutine (must be
// main) until Quit is clicked or ctx is cancelled.
func Run(c context.Context, r Runner, h History) {
	runCtx, runner, history = c, r, h
	go func() {
		<-runCtx.Done()
		systray.Quit()
	}()
	systray.Run(onReady, onQuit)
}

func onReady() {
	systray.SetTemplateIcon(iconData, iconData)
	systray.SetTitle("")
	systray.SetTooltip("Nsynca")

	header := systray.AddMenuItem("Nsynca", "")
	header.Disable()

	lastRunItem = systray.AddMenuItem("No runs yet", "")
	lastRunItem.Disable()

	systray.AddSeparator()

	actionItems = make([]*systray.MenuItem, len(menuActions))
	for i, a := range menuActions {
		actionItems[i] = systray.AddMenuItem(a.title, a.tooltip)
	}

	systray.AddSeparator()
	quitItem = systray.AddMenuItem("Quit", "Quit Nsynca")

	if history != nil {
		if run, err := history.LatestRun(); err != nil {
			slog.Warn("Failed to read run history", "err", err)
		} else {
			showRun(run, nil)
		}
	}

	for i := range actionItems {
		go handleAction(i)
	}
	go func() {
		<-quitItem.ClickedCh
		systray.Quit()
	}()
}

func onQuit() {
	slog.Info("Tray exiting")
}

func handleAction(i int) {
	for range actionItems[i].ClickedCh {
		startRun(menuActions[i])
	}
}

// startRun launches a run unless one is in flight.
func startRun(a menuAction) {
	runMu.Lock()
	if running {
		runMu.Unlock()
		slog.Info("Run already in progress", "action", a.title)
		return
	}
	running = true
	runMu.Unlock()

	setActionsEnabled(false)
	systray.SetTooltip("Nsynca: running " + a.sel.Label())
	lastRunItem.SetTitle("Running " + a.sel.Label() + "...")

	go func() {
		run, err := runner.Run(runCtx, a.sel, orchestrator.LogReporter{})
		showRun(run, err)
		setActionsEnabled(true)

		runMu.Lock()
		running = false
		runMu.Unlock()
	}()
}

func setActionsEnabled(enabled bool) {
	for _, item := range actionItems {
		if enabled {
			item.Enable()
		} else {
			item.Disable()
		}
	}
}

func showRun(run *models.Run, err error) {
	lastRunItem.SetTitle(formatLastRun(run, err))
	systray.SetTooltip(formatTooltip(run, err))
}

// formatLastRun renders the last-run menu line.
func formatLastRun(run *models.Run, err error) string {
	if run == nil {
		if err != nil {
			return "Last run failed: " + err.Error()
		}
		return "No runs yet"
	}
	icon := "✓"
	if run.Status != models.RunStatusSuccess {
		icon = "✗"
	}
	return fmt.Sprintf("%s Last run %s (%s): %d pages updated, %d failed",
		icon, run.StartedAt.Local().Format("Jan 2 15:04"), run.Type, run.PagesUpdated(), run.FailedCount())
}

func formatTooltip(run *models.Run, err error) string {
	switch {
	case run == nil && err != nil:
		return "Nsynca: last run failed"
	case run == nil:
		return "Nsynca"
	}
	ago := time.Since(run.StartedAt).Round(time.Minute)
	return fmt.Sprintf("Nsynca: %s %s ago", run.Status, ago)
}
