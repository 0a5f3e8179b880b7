package search

import (
	"context"

	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
)

// ExternalItem is a hit from a service outside the catalog
type ExternalItem struct {
	Source string `json:"source"`
	Key    string `json:"key"`
	Title  string `json:"title"`
	URL    string `json:"url"`
}

func (e *ExternalItem) ItemType() string  { return "ExternalItem" }
func (e *ExternalItem) ItemID() uint      { return 0 }
func (e *ExternalItem) ItemTitle() string { return e.Title }

// ResultKey identifies the hit across searches
func (e *ExternalItem) ResultKey() string {
	return e.Source + ":" + e.Key
}

// ExternalSearcher queries a service outside the catalog. itemType is the
// normalized search type, or "all".
type ExternalSearcher interface {
	SearchExternal(ctx context.Context, query, itemType string) ([]model.Item, error)
}

type resultKeyer interface {
	ResultKey() string
}

func resultKey(item model.Item) string {
	if k, ok := item.(resultKeyer); ok {
		return k.ResultKey()
	}
	return model.ItemKey(item)
}
