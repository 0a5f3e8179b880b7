package search

import (
	"context"
	"fmt"

	"github.com/doodlesbykumbi/seek-in-go/pkg/logging"
	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
)

// BatchSize is the number of documents pushed to the index at once
const BatchSize = 100

// Queue hands out the items waiting to be indexed
type Queue interface {
	// PopReindexQueue removes and returns up to limit queued items.
	PopReindexQueue(limit int) ([]model.ReindexingQueue, error)

	// IDs lists the ids of every item of a type.
	IDs(itemType string) ([]uint, error)
}

// Indexer keeps the index in step with the database
type Indexer struct {
	index   Index
	records Records
	queue   Queue
}

// NewIndexer creates an Indexer
func NewIndexer(index Index, records Records, queue Queue) *Indexer {
	return &Indexer{index: index, records: records, queue: queue}
}

// ProcessQueue indexes up to limit queued items. Items whose rows are gone
// are removed from the index. It returns the number of queue entries
// handled.
func (x *Indexer) ProcessQueue(ctx context.Context, limit int) (int, error) {
	entries, err := x.queue.PopReindexQueue(limit)
	if err != nil {
		return 0, fmt.Errorf("reading reindexing queue: %w", err)
	}

	byType := make(map[string][]uint)
	var order []string
	for _, e := range entries {
		if _, ok := byType[e.ItemType]; !ok {
			order = append(order, e.ItemType)
		}
		byType[e.ItemType] = append(byType[e.ItemType], e.ItemID)
	}

	for _, itemType := range order {
		if _, err := x.indexItems(ctx, itemType, byType[itemType]); err != nil {
			return 0, err
		}
	}
	return len(entries), nil
}

// Reindex pushes every item of the given types to the index
func (x *Indexer) Reindex(ctx context.Context, types []string) (int, error) {
	total := 0
	for _, itemType := range types {
		if !IsSearchable(itemType) {
			return total, fmt.Errorf("%s is not a searchable type", itemType)
		}
		ids, err := x.queue.IDs(itemType)
		if err != nil {
			return total, fmt.Errorf("listing %s ids: %w", itemType, err)
		}
		for start := 0; start < len(ids); start += BatchSize {
			end := start + BatchSize
			if end > len(ids) {
				end = len(ids)
			}
			n, err := x.indexItems(ctx, itemType, ids[start:end])
			total += n
			if err != nil {
				return total, err
			}
		}
		logging.Log.WithFields(logging.Fields{"type": itemType, "count": len(ids)}).Info("reindexed")
	}
	return total, nil
}

// indexItems indexes the items that still exist and removes the others
func (x *Indexer) indexItems(ctx context.Context, itemType string, ids []uint) (int, error) {
	if !IsSearchable(itemType) {
		logging.Log.WithField("type", itemType).Warn("skipping unsearchable type in reindexing queue")
		return 0, nil
	}
	items, err := x.records.Load(itemType, ids)
	if err != nil {
		return 0, fmt.Errorf("loading %s: %w", itemType, err)
	}

	found := make(map[uint]bool, len(items))
	docs := make([]Document, 0, len(items))
	for _, item := range items {
		doc, err := x.records.Document(item)
		if err != nil {
			return 0, fmt.Errorf("building document for %s: %w", model.ItemKey(item), err)
		}
		found[item.ItemID()] = true
		docs = append(docs, doc)
	}
	if len(docs) > 0 {
		if err := x.index.Put(ctx, docs...); err != nil {
			return 0, fmt.Errorf("indexing %s: %w", itemType, err)
		}
	}

	for _, id := range ids {
		if found[id] {
			continue
		}
		if err := x.index.Remove(ctx, itemType, id); err != nil {
			return len(docs), fmt.Errorf("removing %s:%d from index: %w", itemType, id, err)
		}
	}
	return len(docs), nil
}
