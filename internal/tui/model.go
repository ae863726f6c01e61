package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Tabs.
const (
	tabUpdate = 0
	tabLogs   = 1
)

// Model is the root Bubbletea model for the GUI.
type Model struct {
	ctx     context.Context
	runner  Runner
	history History
	program *programRef

	// UI state
	tab           int // tabUpdate, tabLogs
	focusedPanel  int // 0=left, 1=right
	activeOverlay overlayKind
	confirmMode   int
	splitRatio    float64
	width         int
	height        int
	historyDir    string

	// Status display
	err error

	// Child components
	actions   *ActionList
	runPanel  *RunPanel
	logViewer *LogViewer
	spinner   spinner.Model
}

// NewModel creates the initial GUI model.
func NewModel(ctx context.Context, runner Runner, history History, program *programRef) Model {
	return Model{
		ctx:        ctx,
		runner:     runner,
		history:    history,
		program:    program,
		splitRatio: 0.35,
		actions:    NewActionList(),
		runPanel:   NewRunPanel(),
		logViewer:  NewLogViewer(),
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(runningStyle)),
	}
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	return loadMonthsCmd(m.history)
}

// Update processes messages and returns an updated model and commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	// ── Window resize ──────────────────────────────────────────────
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateDimensions()
		return m, nil

	// ── Key events ─────────────────────────────────────────────────
	case tea.KeyMsg:
		return m, m.handleKey(msg)

	// ── Run progress ───────────────────────────────────────────────
	case UpdaterStartMsg:
		m.runPanel.UpdaterStarted(msg.Updater)
		return m, nil

	case PlannedMsg:
		m.runPanel.Planned(msg.Updater, msg.Records)
		return m, nil

	case ResultMsg:
		m.runPanel.AddResult(msg.Result)
		return m, nil

	case UpdaterDoneMsg:
		m.runPanel.UpdaterDone(msg.Updater, msg.Err)
		return m, nil

	case RunFinishedMsg:
		m.runPanel.Finish(msg.Run, msg.Err)
		m.actions.SetIdle()
		if msg.Run == nil && msg.Err != nil {
			m.err = msg.Err
			return m, tea.Batch(clearErrorAfter(8*time.Second), loadMonthsCmd(m.history))
		}
		return m, loadMonthsCmd(m.history)

	case spinner.TickMsg:
		if !m.runPanel.Running() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	// ── History ────────────────────────────────────────────────────
	case MonthsLoadedMsg:
		m.logViewer.SetMonths(msg.Months)
		if month := m.logViewer.Month(); month != "" {
			return m, loadRunsCmd(m.history, month)
		}
		return m, nil

	case RunsLoadedMsg:
		m.logViewer.SetRuns(msg.Month, msg.Runs)
		return m, nil

	case HistoryChangedMsg:
		if !m.logViewer.HasMonth(msg.Month) {
			return m, loadMonthsCmd(m.history)
		}
		if msg.Month == m.logViewer.Month() {
			return m, loadRunsCmd(m.history, msg.Month)
		}
		return m, nil

	// ── Error handling ─────────────────────────────────────────────
	case ErrorMsg:
		m.err = msg.Err
		return m, clearErrorAfter(5 * time.Second)

	case ClearErrorMsg:
		m.err = nil
		return m, nil
	}

	return m, nil
}

// handleKey processes key events.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.confirmMode != confirmNone {
		return m.handleConfirmKey(msg)
	}

	if m.activeOverlay != overlayNone {
		if key.Matches(msg, overlayClose) {
			m.activeOverlay = overlayNone
		}
		return nil
	}

	switch {
	case key.Matches(msg, globalKeys.Quit):
		if m.runPanel.Running() {
			m.confirmMode = confirmQuit
			return nil
		}
		return tea.Quit

	case key.Matches(msg, globalKeys.Help):
		m.activeOverlay = overlayHelp
		return nil

	case key.Matches(msg, globalKeys.Focus):
		m.focusedPanel = 1 - m.focusedPanel
		return nil

	case key.Matches(msg, globalKeys.Tab1):
		m.tab = tabUpdate
		return nil

	case key.Matches(msg, globalKeys.Tab2):
		m.tab = tabLogs
		return nil
	}

	if m.focusedPanel == 1 {
		return m.handleScrollKey(msg)
	}
	if m.tab == tabLogs {
		return m.handleLogKey(msg)
	}
	return m.handleActionKey(msg)
}

func (m *Model) handleActionKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, listKeys.Up):
		m.actions.MoveUp()
	case key.Matches(msg, listKeys.Down):
		m.actions.MoveDown()
	case key.Matches(msg, listKeys.Enter):
		return m.startRun()
	}
	return nil
}

// startRun launches the selected action unless a run is in flight.
func (m *Model) startRun() tea.Cmd {
	if m.runPanel.Running() {
		return nil
	}
	act := m.actions.Selected()
	m.actions.SetRunning()
	m.runPanel.Start(act.label, act.sel)
	return tea.Batch(
		runCmd(m.ctx, m.runner, act.sel, m.program),
		m.spinner.Tick,
	)
}

func (m *Model) handleLogKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, listKeys.Up):
		m.logViewer.MoveUp()
	case key.Matches(msg, listKeys.Down):
		m.logViewer.MoveDown()
	case key.Matches(msg, logKeys.PrevMonth):
		if m.logViewer.OlderMonth() {
			return loadRunsCmd(m.history, m.logViewer.Month())
		}
	case key.Matches(msg, logKeys.NextMonth):
		if m.logViewer.NewerMonth() {
			return loadRunsCmd(m.history, m.logViewer.Month())
		}
	case key.Matches(msg, logKeys.Filter):
		m.logViewer.CycleFilter()
	case key.Matches(msg, logKeys.Reload):
		return loadMonthsCmd(m.history)
	}
	return nil
}

func (m *Model) handleScrollKey(msg tea.KeyMsg) tea.Cmd {
	up, down := m.runPanel.ScrollUp, m.runPanel.ScrollDown
	if m.tab == tabLogs {
		up, down = m.logViewer.ScrollUp, m.logViewer.ScrollDown
	}
	switch {
	case key.Matches(msg, scrollKeys.Up):
		up(false)
	case key.Matches(msg, scrollKeys.Down):
		down(false)
	case key.Matches(msg, scrollKeys.PageUp):
		up(true)
	case key.Matches(msg, scrollKeys.PageDown):
		down(true)
	}
	return nil
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, confirmKeys.Yes):
		m.confirmMode = confirmNone
		return tea.Quit
	case key.Matches(msg, confirmKeys.No), key.Matches(msg, confirmKeys.Cancel):
		m.confirmMode = confirmNone
	}
	return nil
}

func (m *Model) updateDimensions() {
	layout := computeLayout(m.width, m.height, m.splitRatio)
	leftW, leftH := layout.panelInner(true)
	rightW, rightH := layout.panelInner(false)
	m.runPanel.SetSize(rightW, rightH)
	m.logViewer.SetSize(leftW, leftH, rightW, rightH)
}

// ── View ─────────────────────────────────────────────────────────

// View renders the GUI.
func (m Model) View() string {
	if m.width < 60 || m.height < 16 {
		sizeStr := fmt.Sprintf("%dx%d", m.width, m.height)
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(colorYellow).
			Render(lipgloss.JoinVertical(lipgloss.Center,
				"Terminal too small",
				dimStyle.Render("Need 60x16, have "+lipgloss.NewStyle().Bold(true).Render(sizeStr)),
			))
	}

	layout := computeLayout(m.width, m.height, m.splitRatio)
	leftW, _ := layout.panelInner(true)
	spin := m.spinner.View()

	header := renderHeader(m.tab, m.runPanel, spin, m.width)

	var panels string
	switch m.tab {
	case tabLogs:
		panels = renderPanels("Runs", m.logViewer.ListView(), "Detail", m.logViewer.DetailView(), layout, m.focusedPanel)
	default:
		panels = renderPanels("Actions", m.actions.View(leftW, spin), "Progress", m.runPanel.View(spin), layout, m.focusedPanel)
	}

	statusBar := renderStatusBar(&m, m.width)
	view := lipgloss.JoinVertical(lipgloss.Left, header, panels, statusBar)

	if m.activeOverlay == overlayHelp {
		view = renderOverlay(view, renderHelp(m.width), m.width, m.height)
	}
	return view
}
