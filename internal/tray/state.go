// Package tray implements the system tray icon and menu for the desktop entry.
package tray

import (
	"context"

	"github.com/nsynca/nsynca/internal/models"
	"github.com/nsynca/nsynca/internal/orchestrator"
)

// Runner executes a run. *orchestrator.Orchestrator implements it.
type Runner interface {
	Run(ctx context.Context, sel models.Selection, rep orchestrator.Reporter) (*models.Run, error)
}

// History provides the last recorded run. *config.HistoryStore implements it.
type History interface {
	LatestRun() (*models.Run, error)
}

// menuAction is one runnable entry of the tray menu.
type menuAction struct {
	title   string
	tooltip string
	sel     models.Selection
}

var menuActions = []menuAction{
	{"Run All", "Run every updater", models.AllSelection()},
	{"Update Deployments", "Sync latest deployments to projects", models.Selection{models.UpdaterDeployment}},
	{"Update Tasks", "Sync task counts to projects", models.Selection{models.UpdaterTask}},
	{"Update Services", "Refresh service due dates and status", models.Selection{models.UpdaterService}},
	{"Create Charges", "Create missing charge entries", models.Selection{models.UpdaterCharge}},
}
