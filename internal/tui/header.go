package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nsynca/nsynca/internal/buildinfo"
	"github.com/nsynca/nsynca/internal/models"
)

var tabNames = []string{"Update", "Logs"}

func renderHeader(tab int, panel *RunPanel, spinner string, width int) string {
	dot := lipgloss.NewStyle().Foreground(colorCyan).Render("●")
	name := lipgloss.NewStyle().Bold(true).Render("Nsynca")
	version := dimStyle.Render(buildinfo.Version)

	left := fmt.Sprintf(" %s %s %s  %s", dot, name, version, renderTabs(tabNames, tab))
	right := renderRunBadge(panel, spinner) + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return headerStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

func renderTabs(tabs []string, active int) string {
	var parts []string
	for i, tab := range tabs {
		if i == active {
			parts = append(parts, activeTabStyle.Render(tab))
		} else {
			parts = append(parts, inactiveTabStyle.Render(tab))
		}
	}
	return strings.Join(parts, tabSepStyle.Render(" | "))
}

func renderRunBadge(panel *RunPanel, spinner string) string {
	switch {
	case panel.Running():
		return badgeRunningStyle.Render(spinner + " Running " + panel.label)
	case panel.run != nil && panel.run.Status == models.RunStatusFailed, panel.run == nil && panel.err != nil:
		return badgeFailedStyle.Render("● Last run failed")
	case panel.run != nil:
		return badgeRunningStyle.Render("● Last run ok")
	}
	return badgeIdleStyle.Render("● Idle")
}
