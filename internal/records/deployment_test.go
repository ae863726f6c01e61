package records

import (
	"testing"

	"github.com/nsynca/nsynca/internal/models"
	"github.com/nsynca/nsynca/internal/notion"
	"github.com/nsynca/nsynca/internal/notion/notiontest"
)

func deploymentPage(id, project, version, dev, prod string) *notion.Page {
	props := map[string]notion.PropertyValue{
		"Version": notiontest.TitleValue(version),
	}
	if project != "" {
		props["Project"] = notiontest.RelationValue(project)
	}
	if dev != "" {
		props["Dev Deployed Date"] = notiontest.DateValue(dev)
	}
	if prod != "" {
		props["Prod Deployed Date"] = notiontest.DateValue(prod)
	}
	return &notion.Page{ID: id, Properties: props}
}

func TestDeploymentUpdates(t *testing.T) {
	props := models.DefaultPropertyNames().Deployments
	pages := []*notion.Page{
		deploymentPage("d1", "p1", "v1.0", "2025-01-01", "2025-01-05"),
		deploymentPage("d2", "p1", "v1.1", "2025-02-01", ""),
		deploymentPage("d3", "p2", "v0.1", "", ""),
		deploymentPage("d4", "", "orphan", "2025-03-01", ""),
	}
	var deployments []Deployment
	for _, p := range pages {
		deployments = append(deployments, ParseDeployment(p, props))
	}

	groups, order := GroupDeploymentsByProject(deployments)
	if len(order) != 2 || order[0] != "p1" || order[1] != "p2" {
		t.Fatalf("project order = %v, want [p1 p2]", order)
	}

	updates := ProjectDeploymentUpdates(props, groups["p1"])
	checks := map[string]string{
		"Last Dev Deploy":   "2025-02-01",
		"Last Dev Version":  "v1.1",
		"Last Prod Deploy":  "2025-01-05",
		"Last Prod Version": "v1.0",
		"Nb Dev Releases":   "2",
		"Nb Prod Releases":  "1",
	}
	for name, want := range checks {
		got, ok := updates[name]
		if !ok {
			t.Errorf("missing update %q", name)
			continue
		}
		if got.String() != want {
			t.Errorf("%s = %q, want %q", name, got.String(), want)
		}
	}

	updates = ProjectDeploymentUpdates(props, groups["p2"])
	if _, ok := updates["Last Dev Deploy"]; ok {
		t.Error("project without dev deployments should not get Last Dev Deploy")
	}
	if updates["Nb Dev Releases"].String() != "0" || updates["Nb Prod Releases"].String() != "0" {
		t.Errorf("release counters = %v", updates)
	}
}
