package records

import (
	"github.com/nsynca/nsynca/internal/models"
	"github.com/nsynca/nsynca/internal/notion"
)

// Task is a row of the tasks database.
type Task struct {
	ID         string
	Title      string
	Status     string
	ProjectIDs []string
}

// ParseTask reads a task row. The status may be a select or a status property.
func ParseTask(page *notion.Page, props models.TaskProperties) Task {
	title := notion.PageTitle(page)
	if title == "" {
		title = Untitled
	}
	return Task{
		ID:         page.ID,
		Title:      title,
		Status:     notion.SelectName(page, props.Status),
		ProjectIDs: notion.RelationIDs(page, props.Project),
	}
}

// Completed reports whether the task has the completed status.
func (t Task) Completed(completedStatus string) bool {
	return t.Status == completedStatus
}

// GroupTasksByProject groups tasks under every project they reference.
// Projects keep first-seen order.
func GroupTasksByProject(tasks []Task) (map[string][]Task, []string) {
	groups := make(map[string][]Task)
	var order []string
	for _, t := range tasks {
		seen := make(map[string]bool, len(t.ProjectIDs))
		for _, id := range t.ProjectIDs {
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			if _, ok := groups[id]; !ok {
				order = append(order, id)
			}
			groups[id] = append(groups[id], t)
		}
	}
	return groups, order
}

// TaskUpdates returns the project properties derived from its tasks.
func TaskUpdates(props models.TaskProperties, tasks []Task) notion.Properties {
	completed := 0
	for _, t := range tasks {
		if t.Completed(props.CompletedStatus) {
			completed++
		}
	}
	return notion.Properties{
		props.TotalTasks:     notion.Number(float64(len(tasks))),
		props.CompletedTasks: notion.Number(float64(completed)),
	}
}
