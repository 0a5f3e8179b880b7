package search

import (
	"context"
	"errors"
)

// ErrServiceUnavailable is returned when the full text index cannot be reached
var ErrServiceUnavailable = errors.New("search service unavailable")

// Document is the indexed form of an item
type Document struct {
	ItemType string
	ItemID   uint
	Title    string
	Content  string
}

// Index is a full text index keyed by (type, id)
type Index interface {
	// Search returns the ids of the items of a type matching query, best
	// match first, at most limit of them.
	Search(ctx context.Context, itemType, query string, limit int) ([]uint, error)

	// Count returns how many items of a type match query.
	Count(ctx context.Context, itemType, query string) (int, error)

	// Put adds or replaces documents.
	Put(ctx context.Context, docs ...Document) error

	// Remove drops the document of an item, if any.
	Remove(ctx context.Context, itemType string, itemID uint) error

	// Ready reports whether the index answers queries.
	Ready(ctx context.Context) error
}
