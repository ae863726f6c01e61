package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// overlayKind is the modal drawn above the tabs.
type overlayKind int

const (
	overlayNone overlayKind = iota
	overlayHelp
)

// renderOverlay dims base and draws box centered over it. The base is padded
// to height rows so a short view still shows the whole box.
func renderOverlay(base, box string, width, height int) string {
	rows := strings.Split(base, "\n")
	for len(rows) < height {
		rows = append(rows, "")
	}
	for i, row := range rows {
		rows[i] = overlayDimStyle.Render(row)
	}

	boxRows := strings.Split(box, "\n")
	boxWidth := 0
	for _, r := range boxRows {
		boxWidth = max(boxWidth, lipgloss.Width(r))
	}
	top := centerOffset(height, len(boxRows))
	left := centerOffset(width, boxWidth)

	for i, r := range boxRows {
		if top+i >= len(rows) {
			break
		}
		rows[top+i] = spliceRow(rows[top+i], r, left)
	}
	return strings.Join(rows, "\n")
}

// centerOffset returns the start of a span of size inside total, at least 1
// so the box never touches the header border.
func centerOffset(total, size int) int {
	return max((total-size)/2, 1)
}

// spliceRow replaces the columns of bg starting at left with fg, keeping
// the background on both sides. Styles are reset around fg.
func spliceRow(bg, fg string, left int) string {
	bgWidth := lipgloss.Width(bg)
	head := ansi.Truncate(bg, left, "")
	if pad := left - lipgloss.Width(head); pad > 0 {
		head += strings.Repeat(" ", pad)
	}
	tail := ""
	if end := left + lipgloss.Width(fg); end < bgWidth {
		tail = ansi.Cut(bg, end, bgWidth)
	}
	return head + "\x1b[0m" + fg + "\x1b[0m" + tail
}
