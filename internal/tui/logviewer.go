package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/nsynca/nsynca/internal/config"
	"github.com/nsynca/nsynca/internal/models"
)

type runFilter struct {
	label  string
	filter config.RunFilter
}

// runFilters is the cycle walked by the filter key.
var runFilters = []runFilter{
	{"all runs", config.RunFilter{}},
	{"failed", config.RunFilter{Status: models.RunStatusFailed}},
	{"success", config.RunFilter{Status: models.RunStatusSuccess}},
	{"type: all", config.RunFilter{Type: models.SelectionAll}},
	{"type: deployment", config.RunFilter{Type: string(models.UpdaterDeployment)}},
	{"type: task", config.RunFilter{Type: string(models.UpdaterTask)}},
	{"type: service", config.RunFilter{Type: string(models.UpdaterService)}},
	{"type: charge", config.RunFilter{Type: string(models.UpdaterCharge)}},
}

// LogViewer browses past runs month by month, with list and detail views.
type LogViewer struct {
	months    []string // newest first
	monthIdx  int
	runs      []models.Run
	filtered  []models.Run
	filterIdx int

	selectedIndex int
	scrollOffset  int
	width         int
	height        int
	loaded        bool

	detail       viewport.Model
	detailWidth  int
	detailHeight int
}

// NewLogViewer creates a new log viewer.
func NewLogViewer() *LogViewer {
	return &LogViewer{detail: viewport.New(80, 24)}
}

// SetSize updates the list and detail dimensions.
func (l *LogViewer) SetSize(listWidth, listHeight, detailWidth, detailHeight int) {
	l.width = listWidth
	l.height = listHeight
	l.detailWidth = detailWidth
	l.detailHeight = detailHeight
	l.detail.Width = detailWidth
	l.detail.Height = detailHeight
	l.refreshDetail()
}

// SetMonths updates the available months, keeping the current month when
// it is still present.
func (l *LogViewer) SetMonths(months []string) {
	current := l.Month()
	l.months = months
	l.monthIdx = 0
	for i, m := range months {
		if m == current {
			l.monthIdx = i
			break
		}
	}
	if len(months) == 0 {
		l.loaded = true
		l.SetRuns("", nil)
	}
}

// Month returns the month being shown, or "" when there is no history.
func (l *LogViewer) Month() string {
	if l.monthIdx < 0 || l.monthIdx >= len(l.months) {
		return ""
	}
	return l.months[l.monthIdx]
}

// HasMonth reports whether month is known.
func (l *LogViewer) HasMonth(month string) bool {
	for _, m := range l.months {
		if m == month {
			return true
		}
	}
	return false
}

// OlderMonth moves to the previous month. It reports whether it moved.
func (l *LogViewer) OlderMonth() bool {
	if l.monthIdx+1 >= len(l.months) {
		return false
	}
	l.monthIdx++
	return true
}

// NewerMonth moves to the next month. It reports whether it moved.
func (l *LogViewer) NewerMonth() bool {
	if l.monthIdx == 0 {
		return false
	}
	l.monthIdx--
	return true
}

// SetRuns replaces the runs of the current month. Runs for another month
// are ignored.
func (l *LogViewer) SetRuns(month string, runs []models.Run) {
	if month != l.Month() {
		return
	}
	var selectedID string
	if r := l.SelectedRun(); r != nil {
		selectedID = r.ID
	}
	l.runs = runs
	l.loaded = true
	l.applyFilter(selectedID)
}

// CycleFilter advances to the next filter.
func (l *LogViewer) CycleFilter() {
	l.filterIdx = (l.filterIdx + 1) % len(runFilters)
	l.applyFilter("")
}

// FilterLabel describes the active filter.
func (l *LogViewer) FilterLabel() string {
	return runFilters[l.filterIdx].label
}

func (l *LogViewer) applyFilter(keepID string) {
	l.filtered = config.FilterRuns(l.runs, runFilters[l.filterIdx].filter)
	l.selectedIndex = 0
	for i, r := range l.filtered {
		if r.ID == keepID {
			l.selectedIndex = i
			break
		}
	}
	l.scrollOffset = 0
	l.ensureVisible()
	l.refreshDetail()
}

// SelectedRun returns the run under the cursor, or nil.
func (l *LogViewer) SelectedRun() *models.Run {
	if l.selectedIndex < 0 || l.selectedIndex >= len(l.filtered) {
		return nil
	}
	return &l.filtered[l.selectedIndex]
}

// MoveUp moves the cursor up.
func (l *LogViewer) MoveUp() {
	if l.selectedIndex > 0 {
		l.selectedIndex--
		l.ensureVisible()
		l.refreshDetail()
	}
}

// MoveDown moves the cursor down.
func (l *LogViewer) MoveDown() {
	if l.selectedIndex < len(l.filtered)-1 {
		l.selectedIndex++
		l.ensureVisible()
		l.refreshDetail()
	}
}

// ScrollUp scrolls the detail view up.
func (l *LogViewer) ScrollUp(half bool) {
	if half {
		l.detail.HalfViewUp()
		return
	}
	l.detail.LineUp(1)
}

// ScrollDown scrolls the detail view down.
func (l *LogViewer) ScrollDown(half bool) {
	if half {
		l.detail.HalfViewDown()
		return
	}
	l.detail.LineDown(1)
}

// listRows is the number of run rows that fit under the list header.
func (l *LogViewer) listRows() int {
	rows := l.height - 3
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (l *LogViewer) ensureVisible() {
	rows := l.listRows()
	if l.selectedIndex < l.scrollOffset {
		l.scrollOffset = l.selectedIndex
	}
	if l.selectedIndex >= l.scrollOffset+rows {
		l.scrollOffset = l.selectedIndex - rows + 1
	}
}

func (l *LogViewer) refreshDetail() {
	if r := l.SelectedRun(); r != nil {
		l.detail.SetContent(renderRunDetail(r, l.detailWidth))
	} else {
		l.detail.SetContent("")
	}
	l.detail.GotoTop()
}

// ListView renders the month header and the run list.
func (l *LogViewer) ListView() string {
	month := l.Month()
	if month == "" {
		month = "no history"
	}
	nav := dimStyle.Render("← ") + labelStyle.Render(month) + dimStyle.Render(" →")
	header := nav + "  " + dimStyle.Render(fmt.Sprintf("[%s] %d/%d", l.FilterLabel(), len(l.filtered), len(l.runs)))

	if !l.loaded {
		return header + "\n\n" + dimStyle.Render("Loading runs...")
	}
	if len(l.filtered) == 0 {
		msg := "No runs recorded yet."
		if len(l.runs) > 0 {
			msg = "No runs match the filter."
		}
		return header + "\n\n" + dimStyle.Render(msg)
	}

	lines := []string{header, ""}
	end := l.scrollOffset + l.listRows()
	if end > len(l.filtered) {
		end = len(l.filtered)
	}
	for i := l.scrollOffset; i < end; i++ {
		line := formatRunLine(&l.filtered[i])
		if i == l.selectedIndex {
			line = selectedItemStyle.Width(l.width).Render(line)
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	if end < len(l.filtered) {
		lines = append(lines, dimStyle.Render("  ▼ more"))
	}
	return strings.Join(lines, "\n")
}

// DetailView renders the selected run.
func (l *LogViewer) DetailView() string {
	if l.SelectedRun() == nil {
		return dimStyle.Width(l.detailWidth).Render("\nNo run selected.")
	}
	return l.detail.View()
}

// formatRunLine renders "2025-04-20 14:30  all  success  3 updated".
func formatRunLine(r *models.Run) string {
	return fmt.Sprintf("%s  %s  %s  %s",
		dimStyle.Render(r.StartedAt.Local().Format("2006-01-02 15:04")),
		labelStyle.Render(r.Type),
		statusStyle(r.Status).Render(r.Status),
		dimStyle.Render(fmt.Sprintf("%d pages", r.PagesUpdated())),
	)
}

func renderRunDetail(r *models.Run, width int) string {
	lines := []string{
		labelStyle.Render("Run " + r.ID),
		dimStyle.Render("Started   ") + r.StartedAt.Local().Format(time.DateTime),
	}
	if r.CompletedAt != nil {
		lines = append(lines,
			dimStyle.Render("Completed ")+r.CompletedAt.Local().Format(time.DateTime),
			dimStyle.Render("Duration  ")+r.Duration().Round(time.Millisecond).String())
	}
	lines = append(lines,
		dimStyle.Render("Type      ")+r.Type,
		dimStyle.Render("Status    ")+statusStyle(r.Status).Render(r.Status),
		dimStyle.Render("Summary   ")+r.Summary(),
	)
	if r.Error != "" {
		lines = append(lines, dimStyle.Render("Error     ")+failedStyle.Render(r.Error))
	}
	for _, ue := range r.UpdaterErrors {
		lines = append(lines, warnStyle.Render(fmt.Sprintf("%s updater failed: %s", ue.Updater.Label(), ue.Error)))
	}
	lines = append(lines, dimStyle.Render(strings.Repeat("─", max(width, 1))))
	for _, res := range r.Results {
		lines = append(lines, formatResult(res)...)
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}
