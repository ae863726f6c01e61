package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"

	"github.com/nsynca/nsynca/internal/models"
)

type updaterProgress struct {
	updater models.UpdaterType
	state   string // pending, running, done, failed
	planned int
	applied int
	err     string
}

// RunPanel shows the progress of the current run and its results.
type RunPanel struct {
	viewport viewport.Model
	width    int
	height   int

	label    string
	progress []*updaterProgress
	results  []models.RecordResult
	run      *models.Run
	err      error
	running  bool
}

// NewRunPanel creates an empty run panel.
func NewRunPanel() *RunPanel {
	return &RunPanel{viewport: viewport.New(80, 20)}
}

// SetSize updates dimensions.
func (p *RunPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.viewport.Width = width
	p.viewport.Height = height
	p.refresh()
}

// Start resets the panel for a new run.
func (p *RunPanel) Start(label string, sel models.Selection) {
	p.label = label
	p.results = nil
	p.run = nil
	p.err = nil
	p.running = true
	p.progress = make([]*updaterProgress, len(sel))
	for i, t := range sel {
		p.progress[i] = &updaterProgress{updater: t, state: "pending"}
	}
	p.refresh()
}

// Running reports whether a run is in flight.
func (p *RunPanel) Running() bool {
	return p.running
}

func (p *RunPanel) find(t models.UpdaterType) *updaterProgress {
	for _, u := range p.progress {
		if u.updater == t {
			return u
		}
	}
	return nil
}

// UpdaterStarted marks t as running.
func (p *RunPanel) UpdaterStarted(t models.UpdaterType) {
	if u := p.find(t); u != nil {
		u.state = "running"
	}
	p.refresh()
}

// Planned records how many records t will apply.
func (p *RunPanel) Planned(t models.UpdaterType, n int) {
	if u := p.find(t); u != nil {
		u.planned = n
	}
	p.refresh()
}

// AddResult records one record outcome.
func (p *RunPanel) AddResult(res models.RecordResult) {
	p.results = append(p.results, res)
	if u := p.find(res.Updater); u != nil {
		u.applied++
	}
	p.refresh()
}

// UpdaterDone marks t as finished.
func (p *RunPanel) UpdaterDone(t models.UpdaterType, err error) {
	if u := p.find(t); u != nil {
		u.state = "done"
		if err != nil {
			u.state = "failed"
			u.err = err.Error()
		}
	}
	p.refresh()
}

// Finish records the end of the run.
func (p *RunPanel) Finish(run *models.Run, err error) {
	p.running = false
	p.run = run
	p.err = err
	p.refresh()
}

// ScrollUp scrolls the results up.
func (p *RunPanel) ScrollUp(half bool) {
	if half {
		p.viewport.HalfViewUp()
		return
	}
	p.viewport.LineUp(1)
}

// ScrollDown scrolls the results down.
func (p *RunPanel) ScrollDown(half bool) {
	if half {
		p.viewport.HalfViewDown()
		return
	}
	p.viewport.LineDown(1)
}

func (p *RunPanel) refresh() {
	p.viewport.SetContent(p.content())
	if p.running {
		p.viewport.GotoBottom()
	}
}

// View renders the panel. spinner animates running updaters.
func (p *RunPanel) View(spinner string) string {
	if p.label == "" {
		return dimStyle.Width(p.width).Render("\nSelect an action and press Enter to run it.")
	}
	header := p.header(spinner)
	vpHeight := p.height - strings.Count(header, "\n") - 1
	if vpHeight < 1 {
		vpHeight = 1
	}
	p.viewport.Height = vpHeight
	return header + "\n" + p.viewport.View()
}

func (p *RunPanel) header(spinner string) string {
	lines := []string{sectionHeaderStyle.Render("Run: " + p.label)}
	for _, u := range p.progress {
		var icon string
		switch u.state {
		case "running":
			icon = spinner
		case "done":
			icon = successStyle.Render("✓")
		case "failed":
			icon = failedStyle.Render("✗")
		default:
			icon = dimStyle.Render("·")
		}
		count := ""
		if u.state != "pending" {
			count = dimStyle.Render(fmt.Sprintf(" %d/%d", u.applied, u.planned))
		}
		line := fmt.Sprintf("%s %s%s", icon, labelStyle.Render(u.updater.Label()), count)
		if u.err != "" {
			line += " " + failedStyle.Render(u.err)
		}
		lines = append(lines, line)
	}
	if p.run != nil {
		lines = append(lines, "", statusStyle(p.run.Status).Render(p.run.Status)+"  "+p.run.Summary()+
			dimStyle.Render(fmt.Sprintf("  (%s)", p.run.Duration().Round(time.Millisecond))))
	}
	if p.err != nil {
		lines = append(lines, failedStyle.Render(p.err.Error()))
	}
	lines = append(lines, dimStyle.Render(strings.Repeat("─", max(p.width, 1))))
	return strings.Join(lines, "\n")
}

func (p *RunPanel) content() string {
	if len(p.results) == 0 {
		if p.running {
			return dimStyle.Render("Waiting for results...")
		}
		return dimStyle.Render("No records processed.")
	}
	var lines []string
	for _, res := range p.results {
		lines = append(lines, formatResult(res)...)
	}
	return strings.Join(lines, "\n")
}

// formatResult renders a record outcome and its changes.
func formatResult(res models.RecordResult) []string {
	if res.Failed() {
		return []string{
			failedStyle.Render("failed   ") + labelStyle.Render(res.Name),
			"         " + failedStyle.Render(res.Error),
		}
	}
	style := dimStyle
	switch res.Action {
	case models.ActionCreated:
		style = successStyle
	case models.ActionUpdated:
		style = runningStyle
	}
	lines := []string{style.Render(fmt.Sprintf("%-9s", res.Action)) + labelStyle.Render(res.Name)}
	for _, c := range res.Changes {
		lines = append(lines, "         "+dimStyle.Render(c))
	}
	return lines
}
