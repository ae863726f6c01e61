package updater

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nsynca/nsynca/internal/models"
	"github.com/nsynca/nsynca/internal/notion"
	"github.com/nsynca/nsynca/internal/records"
)

// Outcome describes what applying a record did.
type Outcome struct {
	Action  string
	PageID  string
	Name    string
	Changes []notion.Change
}

// ChangeStrings renders the changes for display.
func (o Outcome) ChangeStrings() []string {
	if len(o.Changes) == 0 {
		return nil
	}
	out := make([]string, len(o.Changes))
	for i, c := range o.Changes {
		out[i] = c.String()
	}
	return out
}

// Applier upserts records: it creates the page when absent and updates it
// when present, writing only changed properties. Create-only records skip
// pages that already exist.
type Applier struct {
	gw Gateway
}

// NewApplier returns an Applier writing through gw.
func NewApplier(gw Gateway) *Applier {
	return &Applier{gw: gw}
}

// Apply upserts one record. It performs at most one write, and none when the
// page already holds the desired values.
func (a *Applier) Apply(ctx context.Context, r Record) (Outcome, error) {
	out := Outcome{Name: r.Name, PageID: r.Key.PageID}
	if r.Err != nil {
		return out, r.Err
	}
	if r.Key.IsLookup() {
		return a.applyLookup(ctx, r, out)
	}

	page, err := a.gw.GetPage(ctx, r.Key.PageID)
	if err != nil {
		if notion.IsNotFound(err) {
			return out, fmt.Errorf("page %s is missing or not shared with the integration: %w", r.Key.PageID, err)
		}
		return out, err
	}
	if out.Name == "" {
		out.Name = pageName(page)
	}
	return a.update(ctx, page, r.Properties, out)
}

func (a *Applier) applyLookup(ctx context.Context, r Record, out Outcome) (Outcome, error) {
	filter, err := r.Key.filter()
	if err != nil {
		return out, err
	}
	matches, err := a.gw.QueryDatabaseAll(ctx, r.Key.DatabaseID, &notion.QueryOptions{Filter: filter})
	if err != nil {
		return out, err
	}
	if out.Name == "" {
		out.Name = r.Key.Value
	}

	if len(matches) == 0 {
		props := notion.Properties{}
		for name, p := range r.Properties {
			props[name] = p
		}
		if _, ok := props[r.Key.Property]; !ok {
			props[r.Key.Property] = r.Key.identifier()
		}
		page, err := a.gw.CreatePage(ctx, r.Key.DatabaseID, props)
		if err != nil {
			return out, err
		}
		out.Action = models.ActionCreated
		out.PageID = page.ID
		_, out.Changes = notion.Diff(nil, props)
		return out, nil
	}

	if r.CreateOnly {
		out.Action = models.ActionSkipped
		out.PageID = matches[0].ID
		return out, nil
	}
	if len(matches) > 1 {
		slog.Warn("Multiple pages match record identifier, updating the first",
			"key", r.Key.String(), "matches", len(matches))
	}
	return a.update(ctx, &matches[0], r.Properties, out)
}

func (a *Applier) update(ctx context.Context, page *notion.Page, desired notion.Properties, out Outcome) (Outcome, error) {
	out.PageID = page.ID
	changed, changes := notion.Diff(page, desired)
	if len(changed) == 0 {
		out.Action = models.ActionUnchanged
		return out, nil
	}
	if _, err := a.gw.UpdatePage(ctx, page.ID, changed); err != nil {
		return out, err
	}
	out.Action = models.ActionUpdated
	out.Changes = changes
	return out, nil
}

func pageName(page *notion.Page) string {
	if title := notion.PageTitle(page); title != "" {
		return title
	}
	return records.Untitled
}
