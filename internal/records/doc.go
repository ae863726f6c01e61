// Package records holds typed views over Notion rows and the derived values
// each updater writes back.
package records

// Untitled is the display name of a page without a title.
const Untitled = "(No title)"
