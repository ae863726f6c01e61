package records

import (
	"time"

	"github.com/nsynca/nsynca/internal/models"
	"github.com/nsynca/nsynca/internal/notion"
)

// Deployment is a row of the deployments database.
type Deployment struct {
	ID        string
	ProjectID string
	Version   string

	DevDate     time.Time
	DevDateRaw  string
	ProdDate    time.Time
	ProdDateRaw string
}

// HasDev reports whether the deployment reached dev.
func (d Deployment) HasDev() bool { return d.DevDateRaw != "" }

// HasProd reports whether the deployment reached prod.
func (d Deployment) HasProd() bool { return d.ProdDateRaw != "" }

// ParseDeployment reads a deployment row. The project is the first relation.
func ParseDeployment(page *notion.Page, props models.DeploymentProperties) Deployment {
	d := Deployment{
		ID:      page.ID,
		Version: notion.PlainText(page, props.Version),
	}
	if ids := notion.RelationIDs(page, props.Project); len(ids) > 0 {
		d.ProjectID = ids[0]
	}
	d.DevDate, d.DevDateRaw, _ = notion.DateStart(page, props.DevDate)
	d.ProdDate, d.ProdDateRaw, _ = notion.DateStart(page, props.ProdDate)
	return d
}

// GroupDeploymentsByProject groups deployments by project. Deployments
// without a project are dropped. Projects keep first-seen order.
func GroupDeploymentsByProject(deployments []Deployment) (map[string][]Deployment, []string) {
	groups := make(map[string][]Deployment)
	var order []string
	for _, d := range deployments {
		if d.ProjectID == "" {
			continue
		}
		if _, ok := groups[d.ProjectID]; !ok {
			order = append(order, d.ProjectID)
		}
		groups[d.ProjectID] = append(groups[d.ProjectID], d)
	}
	return groups, order
}

// LatestDeployments returns the latest dev and prod deployments, or nil
// when none reached that environment.
func LatestDeployments(deployments []Deployment) (dev, prod *Deployment) {
	for i := range deployments {
		d := &deployments[i]
		if d.HasDev() && (dev == nil || d.DevDate.After(dev.DevDate)) {
			dev = d
		}
		if d.HasProd() && (prod == nil || d.ProdDate.After(prod.ProdDate)) {
			prod = d
		}
	}
	return dev, prod
}

// CountReleases counts deployments that reached dev and prod.
func CountReleases(deployments []Deployment) (dev, prod int) {
	for _, d := range deployments {
		if d.HasDev() {
			dev++
		}
		if d.HasProd() {
			prod++
		}
	}
	return dev, prod
}

// DeploymentUpdates returns the project properties derived from its
// deployments. Last deploy fields are only set when such a deployment exists.
func DeploymentUpdates(props models.DeploymentProperties, latestDev, latestProd *Deployment, devCount, prodCount int) notion.Properties {
	updates := notion.Properties{}
	if latestDev != nil && latestDev.HasDev() {
		updates[props.LastDevDeploy] = notion.Date(latestDev.DevDateRaw)
		updates[props.LastDevVersion] = notion.RichTextValue(latestDev.Version)
	}
	if latestProd != nil && latestProd.HasProd() {
		updates[props.LastProdDeploy] = notion.Date(latestProd.ProdDateRaw)
		updates[props.LastProdVersion] = notion.RichTextValue(latestProd.Version)
	}
	updates[props.DevReleases] = notion.Number(float64(devCount))
	updates[props.ProdReleases] = notion.Number(float64(prodCount))
	return updates
}

// ProjectDeploymentUpdates computes the updates for one project's deployments.
func ProjectDeploymentUpdates(props models.DeploymentProperties, deployments []Deployment) notion.Properties {
	dev, prod := LatestDeployments(deployments)
	devCount, prodCount := CountReleases(deployments)
	return DeploymentUpdates(props, dev, prod, devCount, prodCount)
}
