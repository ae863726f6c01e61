// Property value builders, readers and change detection.

package notion

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Property kinds supported for writes.
const (
	KindTitle    = "title"
	KindRichText = "rich_text"
	KindNumber   = "number"
	KindDate     = "date"
	KindSelect   = "select"
	KindStatus   = "status"
	KindRelation = "relation"
)

// DateLayout is the layout of date-only values.
const DateLayout = "2006-01-02"

// Property is a property value in a create or update request.
type Property struct {
	Kind      string
	Text      string
	Number    *float64
	Date      string
	Name      string
	Relations []string
}

// Properties maps property names to values for a create or update request.
type Properties map[string]Property

// Title returns a title property value.
func Title(s string) Property { return Property{Kind: KindTitle, Text: s} }

// RichTextValue returns a rich text property value.
func RichTextValue(s string) Property { return Property{Kind: KindRichText, Text: s} }

// Number returns a number property value.
func Number(n float64) Property { return Property{Kind: KindNumber, Number: &n} }

// Date returns a date property value. An empty start clears the date.
func Date(start string) Property { return Property{Kind: KindDate, Date: start} }

// DateOf returns a date-only property value for t.
func DateOf(t time.Time) Property { return Date(t.Format(DateLayout)) }

// Select returns a select property value. An empty name clears the select.
func Select(name string) Property { return Property{Kind: KindSelect, Name: name} }

// Status returns a status property value.
func Status(name string) Property { return Property{Kind: KindStatus, Name: name} }

// Relation returns a relation property value.
func Relation(ids ...string) Property { return Property{Kind: KindRelation, Relations: ids} }

type textObject struct {
	Type string      `json:"type"`
	Text TextContent `json:"text"`
}

func textArray(s string) []textObject {
	if s == "" {
		return []textObject{}
	}
	return []textObject{{Type: "text", Text: TextContent{Content: s}}}
}

// MarshalJSON encodes p in the request format of its kind.
func (p Property) MarshalJSON() ([]byte, error) {
	var v any
	switch p.Kind {
	case KindTitle:
		v = map[string]any{KindTitle: textArray(p.Text)}
	case KindRichText:
		v = map[string]any{KindRichText: textArray(p.Text)}
	case KindNumber:
		v = map[string]any{KindNumber: p.Number}
	case KindDate:
		if p.Date == "" {
			v = map[string]any{KindDate: nil}
		} else {
			v = map[string]any{KindDate: map[string]string{"start": p.Date}}
		}
	case KindSelect, KindStatus:
		if p.Name == "" {
			v = map[string]any{p.Kind: nil}
		} else {
			v = map[string]any{p.Kind: map[string]string{"name": p.Name}}
		}
	case KindRelation:
		rel := make([]RelationValue, 0, len(p.Relations))
		for _, id := range p.Relations {
			rel = append(rel, RelationValue{ID: id})
		}
		v = map[string]any{KindRelation: rel}
	default:
		return nil, fmt.Errorf("unsupported property kind %q", p.Kind)
	}
	return json.Marshal(v)
}

// String returns the display form of p.
func (p Property) String() string {
	switch p.Kind {
	case KindTitle, KindRichText:
		return p.Text
	case KindNumber:
		if p.Number == nil {
			return ""
		}
		return formatNumber(*p.Number)
	case KindDate:
		return p.Date
	case KindSelect, KindStatus:
		return p.Name
	case KindRelation:
		return strings.Join(p.Relations, ",")
	}
	return ""
}

// Equal reports whether the page value pv already holds p.
func (p Property) Equal(pv PropertyValue) bool {
	switch p.Kind {
	case KindTitle:
		return joinPlainText(pv.Title) == p.Text
	case KindRichText:
		return joinPlainText(pv.RichText) == p.Text
	case KindNumber:
		if p.Number == nil || pv.Number == nil {
			return p.Number == nil && pv.Number == nil
		}
		return math.Abs(*p.Number-*pv.Number) < 1e-9
	case KindDate:
		if pv.Date == nil {
			return p.Date == ""
		}
		return sameDate(pv.Date.Start, p.Date)
	case KindSelect:
		return pv.Select != nil && pv.Select.Name == p.Name || pv.Select == nil && p.Name == ""
	case KindStatus:
		return pv.Status != nil && pv.Status.Name == p.Name || pv.Status == nil && p.Name == ""
	case KindRelation:
		return sameIDs(relationIDs(pv.Relation), p.Relations)
	}
	return false
}

// Change describes one property whose value differs.
type Change struct {
	Property string
	From     string
	To       string
}

// String returns "Property: from -> to".
func (c Change) String() string {
	from := c.From
	if from == "" {
		from = "(empty)"
	}
	return fmt.Sprintf("%s: %s -> %s", c.Property, from, c.To)
}

// Diff returns the subset of desired that differs from page, and the list
// of changes sorted by property name. A nil page differs everywhere.
func Diff(page *Page, desired Properties) (Properties, []Change) {
	changed := Properties{}
	var changes []Change
	for name, want := range desired {
		var have PropertyValue
		var ok bool
		if page != nil {
			have, ok = page.Properties[name]
		}
		if ok && want.Equal(have) {
			continue
		}
		changed[name] = want
		from := ""
		if ok {
			from = DisplayValue(have)
		}
		changes = append(changes, Change{Property: name, From: from, To: want.String()})
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Property < changes[j].Property })
	return changed, changes
}

// Readers

// PageTitle returns the plain text of the page's title property.
func PageTitle(page *Page) string {
	if page == nil {
		return ""
	}
	for _, pv := range page.Properties {
		if pv.Type == KindTitle {
			return joinPlainText(pv.Title)
		}
	}
	return ""
}

// PlainText returns the text of a title or rich text property.
func PlainText(page *Page, name string) string {
	pv, ok := property(page, name)
	if !ok {
		return ""
	}
	switch pv.Type {
	case KindTitle:
		return joinPlainText(pv.Title)
	case KindRichText:
		return joinPlainText(pv.RichText)
	}
	return DisplayValue(pv)
}

// SelectName returns the option name of a select or status property.
func SelectName(page *Page, name string) string {
	pv, ok := property(page, name)
	if !ok {
		return ""
	}
	if pv.Select != nil && pv.Select.Name != "" {
		return pv.Select.Name
	}
	if pv.Status != nil {
		return pv.Status.Name
	}
	return ""
}

// DateStart returns the start of a date, formula date or rollup date property.
func DateStart(page *Page, name string) (time.Time, string, bool) {
	pv, ok := property(page, name)
	if !ok {
		return time.Time{}, "", false
	}
	return valueDate(pv)
}

// RelationIDs returns the page IDs of a relation property.
func RelationIDs(page *Page, name string) []string {
	pv, ok := property(page, name)
	if !ok {
		return nil
	}
	return relationIDs(pv.Relation)
}

// NumberValue returns a number, formula number or rollup number property.
func NumberValue(page *Page, name string) (float64, bool) {
	pv, ok := property(page, name)
	if !ok {
		return 0, false
	}
	switch {
	case pv.Number != nil:
		return *pv.Number, true
	case pv.Formula != nil && pv.Formula.Number != nil:
		return *pv.Formula.Number, true
	case pv.Rollup != nil && pv.Rollup.Number != nil:
		return *pv.Rollup.Number, true
	}
	return 0, false
}

// ParseDate parses a Notion date start, either date-only or RFC 3339.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// DisplayValue renders any property value as text.
func DisplayValue(pv PropertyValue) string {
	switch {
	case pv.Title != nil:
		return joinPlainText(pv.Title)
	case pv.RichText != nil:
		return joinPlainText(pv.RichText)
	case pv.Number != nil:
		return formatNumber(*pv.Number)
	case pv.Select != nil:
		return pv.Select.Name
	case pv.Status != nil:
		return pv.Status.Name
	case pv.Date != nil:
		return pv.Date.Start
	case pv.Relation != nil:
		return strings.Join(relationIDs(pv.Relation), ",")
	case pv.Checkbox != nil:
		return strconv.FormatBool(*pv.Checkbox)
	case pv.URL != nil:
		return *pv.URL
	case pv.Formula != nil && pv.Formula.String != nil:
		return *pv.Formula.String
	}
	return ""
}

func property(page *Page, name string) (PropertyValue, bool) {
	if page == nil {
		return PropertyValue{}, false
	}
	pv, ok := page.Properties[name]
	return pv, ok
}

func valueDate(pv PropertyValue) (time.Time, string, bool) {
	switch {
	case pv.Date != nil:
		return parseStart(pv.Date)
	case pv.Formula != nil && pv.Formula.Date != nil:
		return parseStart(pv.Formula.Date)
	case pv.Rollup != nil:
		return rollupDate(pv.Rollup)
	}
	return time.Time{}, "", false
}

func rollupDate(r *RollupValue) (time.Time, string, bool) {
	if r.Date != nil {
		return parseStart(r.Date)
	}
	var latest time.Time
	var raw string
	found := false
	for _, item := range r.Array {
		t, s, ok := valueDate(item)
		if ok && (!found || t.After(latest)) {
			latest, raw, found = t, s, true
		}
	}
	return latest, raw, found
}

func parseStart(d *DateValue) (time.Time, string, bool) {
	if d == nil || d.Start == "" {
		return time.Time{}, "", false
	}
	t, err := ParseDate(d.Start)
	if err != nil {
		return time.Time{}, "", false
	}
	return t, d.Start, true
}

func joinPlainText(rt []RichText) string {
	var sb strings.Builder
	for _, r := range rt {
		switch {
		case r.PlainText != "":
			sb.WriteString(r.PlainText)
		case r.Text != nil:
			sb.WriteString(r.Text.Content)
		}
	}
	return sb.String()
}

func relationIDs(rel []RelationValue) []string {
	ids := make([]string, 0, len(rel))
	for _, r := range rel {
		ids = append(ids, r.ID)
	}
	return ids
}

// NormalizeID strips dashes and lowercases a Notion ID so that the dashed
// and compact forms compare equal.
func NormalizeID(id string) string {
	return strings.ToLower(strings.ReplaceAll(id, "-", ""))
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, id := range a {
		seen[NormalizeID(id)]++
	}
	for _, id := range b {
		n := NormalizeID(id)
		if seen[n] == 0 {
			return false
		}
		seen[n]--
	}
	return true
}

// sameDate compares date starts, treating a date-only value and a midnight
// timestamp of the same day as equal.
func sameDate(have, want string) bool {
	if have == want {
		return true
	}
	ht, err1 := ParseDate(have)
	wt, err2 := ParseDate(want)
	if err1 != nil || err2 != nil {
		return false
	}
	return ht.Equal(wt)
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
