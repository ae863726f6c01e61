package updater

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nsynca/nsynca/internal/models"
	"github.com/nsynca/nsynca/internal/notion"
	"github.com/nsynca/nsynca/internal/records"
)

// ServiceUpdater writes the next due date and status of every service profile.
type ServiceUpdater struct {
	gw         Gateway
	databaseID string
	props      models.ServiceProperties

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewServiceUpdater returns an updater reading the services database.
func NewServiceUpdater(gw Gateway, databaseID string, props models.ServiceProperties) *ServiceUpdater {
	return &ServiceUpdater{gw: gw, databaseID: databaseID, props: props, Now: time.Now}
}

// Type implements Updater.
func (u *ServiceUpdater) Type() models.UpdaterType { return models.UpdaterService }

// Plan implements Updater. It returns one record per service profile.
func (u *ServiceUpdater) Plan(ctx context.Context) ([]Record, error) {
	pages, err := u.gw.QueryDatabaseAll(ctx, u.databaseID, &notion.QueryOptions{
		Filter: notion.SelectEquals(u.props.EntryType, u.props.ProfileEntry),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch services: %w", err)
	}
	slog.Info("Found service profiles", "services", len(pages))

	today := records.Day(u.Now().UTC())
	recs := make([]Record, 0, len(pages))
	for i := range pages {
		s := records.ParseService(&pages[i], u.props)
		recs = append(recs, Record{
			Key:        PageKey(s.ID),
			Name:       s.Name,
			Properties: records.ServiceUpdates(u.props, s, today),
		})
	}
	return recs, nil
}

var _ Updater = (*ServiceUpdater)(nil)
