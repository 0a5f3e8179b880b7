// Package search dispatches keyword queries over the catalog.
//
// A query is sent to the full text index once per searchable type. The
// per-type hits are loaded from the database, unioned in a fixed type
// order, merged with external results when asked for, then narrowed by
// facet filters and by what the user may view. The result can finally be
// grouped by biological scale.
package search
