// Defines Notion API response types.

package notion

import (
	"time"
)

// PaginatedResponse is the common structure for paginated API responses.
type PaginatedResponse[T any] struct {
	Object     string  `json:"object"`
	Results    []T     `json:"results"`
	NextCursor *string `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}

// QueryResponse is the response from database query endpoint.
type QueryResponse = PaginatedResponse[Page]

// Parent represents the parent of a page.
type Parent struct {
	Type       string `json:"type"` // "database_id", "page_id", "workspace"
	DatabaseID string `json:"database_id,omitempty"`
	PageID     string `json:"page_id,omitempty"`
}

// Page represents a Notion page (including database rows).
type Page struct {
	Object         string                   `json:"object"`
	ID             string                   `json:"id"`
	CreatedTime    time.Time                `json:"created_time"`
	LastEditedTime time.Time                `json:"last_edited_time"`
	Parent         Parent                   `json:"parent"`
	Archived       bool                     `json:"archived"`
	Properties     map[string]PropertyValue `json:"properties"`
	URL            string                   `json:"url"`
}

// PropertyValue represents a property value on a page as returned by the API.
type PropertyValue struct {
	ID   string `json:"id,omitempty"`
	Type string `json:"type"`

	// Value fields based on type
	Title       []RichText      `json:"title,omitempty"`
	RichText    []RichText      `json:"rich_text,omitempty"`
	Number      *float64        `json:"number,omitempty"`
	Select      *SelectValue    `json:"select,omitempty"`
	MultiSelect []SelectValue   `json:"multi_select,omitempty"`
	Status      *SelectValue    `json:"status,omitempty"`
	Date        *DateValue      `json:"date,omitempty"`
	Checkbox    *bool           `json:"checkbox,omitempty"`
	URL         *string         `json:"url,omitempty"`
	Formula     *FormulaValue   `json:"formula,omitempty"`
	Relation    []RelationValue `json:"relation,omitempty"`
	Rollup      *RollupValue    `json:"rollup,omitempty"`
}

// RichText represents formatted text content.
type RichText struct {
	Type      string       `json:"type"` // "text", "mention", "equation"
	Text      *TextContent `json:"text,omitempty"`
	PlainText string       `json:"plain_text,omitempty"`
	Href      *string      `json:"href,omitempty"`
}

// TextContent represents plain text content.
type TextContent struct {
	Content string `json:"content"`
}

// SelectValue represents a select or status property value.
type SelectValue struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// DateValue represents a date property value.
type DateValue struct {
	Start    string  `json:"start"`
	End      *string `json:"end,omitempty"`
	TimeZone *string `json:"time_zone,omitempty"`
}

// FormulaValue represents a formula result.
type FormulaValue struct {
	Type    string     `json:"type"` // "string", "number", "boolean", "date"
	String  *string    `json:"string,omitempty"`
	Number  *float64   `json:"number,omitempty"`
	Boolean *bool      `json:"boolean,omitempty"`
	Date    *DateValue `json:"date,omitempty"`
}

// RelationValue represents a relation to another page.
type RelationValue struct {
	ID string `json:"id"`
}

// RollupValue represents a rollup result.
type RollupValue struct {
	Type     string          `json:"type"` // "number", "date", "array", "unsupported", "incomplete"
	Number   *float64        `json:"number,omitempty"`
	Date     *DateValue      `json:"date,omitempty"`
	Array    []PropertyValue `json:"array,omitempty"`
	Function string          `json:"function,omitempty"`
}
