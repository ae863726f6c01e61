// Package updater defines the updater variants that sync Notion rows into
// derived properties, and the Applier that upserts their records.
package updater

import (
	"context"
	"fmt"

	"github.com/nsynca/nsynca/internal/models"
	"github.com/nsynca/nsynca/internal/notion"
)

// Gateway is the subset of the Notion API the updaters use.
type Gateway interface {
	QueryDatabaseAll(ctx context.Context, databaseID string, opts *notion.QueryOptions) ([]notion.Page, error)
	GetPage(ctx context.Context, id string) (*notion.Page, error)
	CreatePage(ctx context.Context, databaseID string, props notion.Properties) (*notion.Page, error)
	UpdatePage(ctx context.Context, pageID string, props notion.Properties) (*notion.Page, error)
}

// Updater produces the records of one variant.
type Updater interface {
	Type() models.UpdaterType
	// Plan reads the source rows and returns one record per target page.
	// An error means the updater could not run at all.
	Plan(ctx context.Context) ([]Record, error)
}

// Key identifies the Notion page a record maps to. Either PageID is set, or
// the page is looked up in DatabaseID by the value of an identifier property.
type Key struct {
	PageID string

	DatabaseID string
	Property   string
	Kind       string
	Value      string

	// Scope narrows the lookup to rows also matching these filters.
	Scope []notion.Filter
}

// PageKey identifies a known page.
func PageKey(id string) Key {
	return Key{PageID: id}
}

// LookupKey identifies the page of databaseID whose property equals value.
// kind is the property kind: title, rich_text or select.
func LookupKey(databaseID, property, kind, value string) Key {
	return Key{DatabaseID: databaseID, Property: property, Kind: kind, Value: value}
}

// Within returns a copy of k whose lookup also requires every filter.
func (k Key) Within(filters ...notion.Filter) Key {
	k.Scope = append(append([]notion.Filter(nil), k.Scope...), filters...)
	return k
}

// IsLookup reports whether the key needs a lookup query.
func (k Key) IsLookup() bool {
	return k.PageID == ""
}

// String returns the stable identifier of the key.
func (k Key) String() string {
	if !k.IsLookup() {
		return k.PageID
	}
	return fmt.Sprintf("%s/%s=%s", k.DatabaseID, k.Property, k.Value)
}

// filter returns the query matching the key's identifier.
func (k Key) filter() (notion.Filter, error) {
	var f notion.Filter
	switch k.Kind {
	case notion.KindTitle:
		f = notion.TitleEquals(k.Property, k.Value)
	case notion.KindRichText:
		f = notion.RichTextEquals(k.Property, k.Value)
	case notion.KindSelect:
		f = notion.SelectEquals(k.Property, k.Value)
	default:
		return nil, fmt.Errorf("unsupported identifier kind %q", k.Kind)
	}
	if len(k.Scope) == 0 {
		return f, nil
	}
	return notion.And(append([]notion.Filter{f}, k.Scope...)...), nil
}

// identifier returns the property value that stores the key.
func (k Key) identifier() notion.Property {
	switch k.Kind {
	case notion.KindRichText:
		return notion.RichTextValue(k.Value)
	case notion.KindSelect:
		return notion.Select(k.Value)
	}
	return notion.Title(k.Value)
}

// Record is one unit of work: the properties a Notion page should have.
type Record struct {
	Key        Key
	Name       string
	Properties notion.Properties

	// CreateOnly leaves an existing matching page untouched.
	CreateOnly bool

	// Err is set when the record could not be planned. It is reported as a
	// failed result without touching Notion.
	Err error
}
