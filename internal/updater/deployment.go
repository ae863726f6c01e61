package updater

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nsynca/nsynca/internal/models"
	"github.com/nsynca/nsynca/internal/records"
)

// DeploymentUpdater writes the latest dev and prod deployment and release
// counters onto every project that has deployments.
type DeploymentUpdater struct {
	gw         Gateway
	databaseID string
	props      models.DeploymentProperties
}

// NewDeploymentUpdater returns an updater reading the deployments database.
func NewDeploymentUpdater(gw Gateway, databaseID string, props models.DeploymentProperties) *DeploymentUpdater {
	return &DeploymentUpdater{gw: gw, databaseID: databaseID, props: props}
}

// Type implements Updater.
func (u *DeploymentUpdater) Type() models.UpdaterType { return models.UpdaterDeployment }

// Plan implements Updater. It returns one record per project.
func (u *DeploymentUpdater) Plan(ctx context.Context) ([]Record, error) {
	pages, err := u.gw.QueryDatabaseAll(ctx, u.databaseID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deployments: %w", err)
	}

	deployments := make([]records.Deployment, 0, len(pages))
	for i := range pages {
		deployments = append(deployments, records.ParseDeployment(&pages[i], u.props))
	}
	groups, order := records.GroupDeploymentsByProject(deployments)
	slog.Info("Found deployments", "deployments", len(deployments), "projects", len(order))

	recs := make([]Record, 0, len(order))
	for _, projectID := range order {
		group := groups[projectID]
		slog.Debug("Project deployments", "project", projectID, "deployments", len(group))
		recs = append(recs, Record{
			Key:        PageKey(projectID),
			Properties: records.ProjectDeploymentUpdates(u.props, group),
		})
	}
	return recs, nil
}

var _ Updater = (*DeploymentUpdater)(nil)
