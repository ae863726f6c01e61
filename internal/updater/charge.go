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

// ChargeUpdater creates the missing periodic charges of every service
// profile with a monthly or yearly billing cycle.
type ChargeUpdater struct {
	gw         Gateway
	databaseID string
	props      models.ServiceProperties

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewChargeUpdater returns an updater reading and writing the services database.
func NewChargeUpdater(gw Gateway, databaseID string, props models.ServiceProperties) *ChargeUpdater {
	return &ChargeUpdater{gw: gw, databaseID: databaseID, props: props, Now: time.Now}
}

// Type implements Updater.
func (u *ChargeUpdater) Type() models.UpdaterType { return models.UpdaterCharge }

// Plan implements Updater. It returns one create-only record per missing
// charge, keyed by the charge name among the service's charges, and one
// failed record per service whose charges cannot be extended.
func (u *ChargeUpdater) Plan(ctx context.Context) ([]Record, error) {
	profiles, err := u.gw.QueryDatabaseAll(ctx, u.databaseID, &notion.QueryOptions{
		Filter: notion.SelectEquals(u.props.EntryType, u.props.ProfileEntry),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch service profiles: %w", err)
	}

	var services []records.Service
	for i := range profiles {
		s := records.ParseService(&profiles[i], u.props)
		if s.Cycle() == records.CycleUnknown {
			continue
		}
		services = append(services, s)
	}
	slog.Info("Found billed service profiles", "services", len(services))
	if len(services) == 0 {
		slog.Warn("No service profiles with a monthly or yearly billing cycle")
		return nil, nil
	}

	chargePages, err := u.gw.QueryDatabaseAll(ctx, u.databaseID, &notion.QueryOptions{
		Filter: notion.SelectEquals(u.props.EntryType, u.props.ChargeEntry),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch charges: %w", err)
	}
	charges := make([]records.Charge, 0, len(chargePages))
	for i := range chargePages {
		charges = append(charges, records.ParseCharge(&chargePages[i], u.props))
	}
	slog.Info("Found existing charges", "charges", len(charges))

	today := records.Day(u.Now().UTC())
	var recs []Record
	for _, s := range services {
		linked := records.ChargesForService(s.ID, charges)
		planned, err := records.MissingCharges(u.props, s, linked, today)
		if err != nil {
			recs = append(recs, Record{Key: PageKey(s.ID), Name: s.Name, Err: err})
			continue
		}
		slog.Debug("Service charges", "service", s.Name, "existing", len(linked), "missing", len(planned))
		for _, pc := range planned {
			key := LookupKey(u.databaseID, u.props.Name, notion.KindTitle, pc.Name).Within(
				notion.SelectEquals(u.props.EntryType, u.props.ChargeEntry),
				notion.RelationContains(u.props.LinkedService, s.ID),
			)
			recs = append(recs, Record{
				Key:        key,
				Name:       pc.Name,
				Properties: pc.Properties,
				CreateOnly: true,
			})
		}
	}
	return recs, nil
}

var _ Updater = (*ChargeUpdater)(nil)
