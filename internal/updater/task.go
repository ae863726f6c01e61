package updater

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nsynca/nsynca/internal/models"
	"github.com/nsynca/nsynca/internal/records"
)

// TaskUpdater writes task totals onto every project referenced by a task.
type TaskUpdater struct {
	gw         Gateway
	databaseID string
	props      models.TaskProperties
}

// NewTaskUpdater returns an updater reading the tasks database.
func NewTaskUpdater(gw Gateway, databaseID string, props models.TaskProperties) *TaskUpdater {
	return &TaskUpdater{gw: gw, databaseID: databaseID, props: props}
}

// Type implements Updater.
func (u *TaskUpdater) Type() models.UpdaterType { return models.UpdaterTask }

// Plan implements Updater. It returns one record per project.
func (u *TaskUpdater) Plan(ctx context.Context) ([]Record, error) {
	pages, err := u.gw.QueryDatabaseAll(ctx, u.databaseID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}

	tasks := make([]records.Task, 0, len(pages))
	for i := range pages {
		tasks = append(tasks, records.ParseTask(&pages[i], u.props))
	}
	groups, order := records.GroupTasksByProject(tasks)
	slog.Info("Found tasks", "tasks", len(tasks), "projects", len(order))

	recs := make([]Record, 0, len(order))
	for _, projectID := range order {
		group := groups[projectID]
		for _, t := range group {
			slog.Debug("Task", "project", projectID, "title", t.Title, "status", t.Status)
		}
		recs = append(recs, Record{
			Key:        PageKey(projectID),
			Properties: records.TaskUpdates(u.props, group),
		})
	}
	return recs, nil
}

var _ Updater = (*TaskUpdater)(nil)
