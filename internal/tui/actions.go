package tui

import (
	"strings"

	"github.com/nsynca/nsynca/internal/models"
)

// action is one entry of the Update tab.
type action struct {
	label string
	desc  string
	sel   models.Selection
}

var updateActions = []action{
	{"All", "Run every updater in order", models.AllSelection()},
	{"Deployments", "Latest dev and prod deploys per project", models.Selection{models.UpdaterDeployment}},
	{"Tasks", "Total and completed task counts per project", models.Selection{models.UpdaterTask}},
	{"Services", "Next due date and status of service profiles", models.Selection{models.UpdaterService}},
	{"Charges", "Create missing charge entries", models.Selection{models.UpdaterCharge}},
}

// ActionList is the left panel of the Update tab.
type ActionList struct {
	selected int
	running  int // index of the running action, -1 when idle
}

// NewActionList creates an idle action list.
func NewActionList() *ActionList {
	return &ActionList{running: -1}
}

// MoveUp moves the cursor up.
func (a *ActionList) MoveUp() {
	if a.selected > 0 {
		a.selected--
	}
}

// MoveDown moves the cursor down.
func (a *ActionList) MoveDown() {
	if a.selected < len(updateActions)-1 {
		a.selected++
	}
}

// Selected returns the action under the cursor.
func (a *ActionList) Selected() action {
	return updateActions[a.selected]
}

// SetRunning marks the selected action as running.
func (a *ActionList) SetRunning() {
	a.running = a.selected
}

// SetIdle clears the running marker.
func (a *ActionList) SetIdle() {
	a.running = -1
}

// View renders the list. spinner is drawn next to the running action.
func (a *ActionList) View(width int, spinner string) string {
	lines := []string{""}
	for i, act := range updateActions {
		marker := "  "
		if i == a.running {
			marker = spinner + " "
		}
		line := marker + labelStyle.Render(act.label)
		if i == a.selected {
			line = selectedItemStyle.Width(width).Render(line)
		}
		lines = append(lines, line)
	}
	lines = append(lines, "", dimStyle.Width(width).Render(a.Selected().desc))
	return strings.Join(lines, "\n")
}
