// Package notion is the gateway to the Notion REST API used by the updaters.
//
// It covers:
//   - a rate-limited client (query with pagination, get, create, update)
//   - typed page and property values
//   - property value builders and readers
//   - database query filter builders
//   - change detection between a page and desired property values
package notion
