package search

import "github.com/doodlesbykumbi/seek-in-go/pkg/model"

// Records loads what the dispatcher needs from the database
type Records interface {
	// Load returns the items of a type with the given ids, in the order of
	// ids. Ids whose rows are gone are skipped.
	Load(itemType string, ids []uint) ([]model.Item, error)

	// Scales lists the scales, ordered by position.
	Scales() ([]model.Scale, error)

	// ScaleIDs returns the scale ids of each item, keyed by model.ItemKey.
	// Every item of a type that supports scales has an entry, empty when it
	// has none. Items of other types have no entry.
	ScaleIDs(items []model.Item) (map[string][]uint, error)

	// FacetValues returns the values of a facet field for each item, keyed
	// by model.ItemKey.
	FacetValues(field string, items []model.Item) (map[string][]string, error)

	// Document builds the index document of an item.
	Document(item model.Item) (Document, error)
}

// Viewer drops the items a user may not view
type Viewer interface {
	FilterViewable(user *model.User, items []model.Item) ([]model.Item, error)
}
