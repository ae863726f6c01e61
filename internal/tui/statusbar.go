package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// confirmMode values.
const (
	confirmNone = 0
	confirmQuit = 1
)

func renderStatusBar(m *Model, width int) string {
	if m.confirmMode == confirmQuit {
		return renderConfirmBar("Run in progress. Quit and cancel it? (y/n)", width)
	}
	if m.err != nil {
		return renderErrorBar(m.err.Error(), width)
	}

	left := " " + getKeyHints(m)
	right := ""
	if m.historyDir != "" {
		right = dimStyle.Render(m.historyDir) + " "
	}
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return statusBarStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

func getKeyHints(m *Model) string {
	if m.activeOverlay != overlayNone {
		return keyHint("Esc", "close")
	}

	base := keyHint("q", "quit") + "  " + keyHint("?", "help") + "  " + keyHint("Tab", "switch")

	if m.focusedPanel == 1 {
		return base + "  " + keyHint("j/k", "scroll") + "  " + keyHint("PgUp/PgDn", "page")
	}
	switch m.tab {
	case tabUpdate:
		if m.runPanel.Running() {
			return base + "  " + keyHint("", "running...")
		}
		return base + "  " + keyHint("j/k", "navigate") + "  " + keyHint("Enter", "run")
	case tabLogs:
		return base + "  " + keyHint("j/k", "navigate") + "  " + keyHint("←/→", "month") + "  " +
			keyHint("f", "filter") + "  " + keyHint("r", "reload")
	}
	return base
}

func keyHint(k, desc string) string {
	if k == "" {
		return hintStyle.Render(desc)
	}
	return keyStyle.Render(k) + " " + hintStyle.Render(desc)
}

func renderConfirmBar(msg string, width int) string {
	return statusBarStyle.
		Background(colorYellow).
		Foreground(lipgloss.AdaptiveColor{Light: "0", Dark: "0"}).
		Width(width).
		Render(" " + msg)
}

func renderErrorBar(msg string, width int) string {
	return statusBarStyle.
		Background(colorRed).
		Width(width).
		Render(" " + msg)
}
