package search

import (
	"context"

	"github.com/doodlesbykumbi/seek-in-go/pkg/model"

	"github.com/stretchr/testify/mock"
)

type MockIndex struct {
	mock.Mock
}

func (m *MockIndex) Search(ctx context.Context, itemType, query string, limit int) ([]uint, error) {
	args := m.Called(ctx, itemType, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockIndex) Count(ctx context.Context, itemType, query string) (int, error) {
	args := m.Called(ctx, itemType, query)
	return args.Int(0), args.Error(1)
}

func (m *MockIndex) Put(ctx context.Context, docs ...Document) error {
	args := m.Called(ctx, docs)
	return args.Error(0)
}

func (m *MockIndex) Remove(ctx context.Context, itemType string, itemID uint) error {
	args := m.Called(ctx, itemType, itemID)
	return args.Error(0)
}

func (m *MockIndex) Ready(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockRecords struct {
	mock.Mock
}

func (m *MockRecords) Load(itemType string, ids []uint) ([]model.Item, error) {
	args := m.Called(itemType, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Item), args.Error(1)
}

func (m *MockRecords) Scales() ([]model.Scale, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Scale), args.Error(1)
}

func (m *MockRecords) ScaleIDs(items []model.Item) (map[string][]uint, error) {
	args := m.Called(items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]uint), args.Error(1)
}

func (m *MockRecords) FacetValues(field string, items []model.Item) (map[string][]string, error) {
	args := m.Called(field, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]string), args.Error(1)
}

func (m *MockRecords) Document(item model.Item) (Document, error) {
	args := m.Called(item)
	return args.Get(0).(Document), args.Error(1)
}

type MockQueue struct {
	mock.Mock
}

func (m *MockQueue) PopReindexQueue(limit int) ([]model.ReindexingQueue, error) {
	args := m.Called(limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ReindexingQueue), args.Error(1)
}

func (m *MockQueue) IDs(itemType string) ([]uint, error) {
	args := m.Called(itemType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

type MockExternal struct {
	mock.Mock
}

func (m *MockExternal) SearchExternal(ctx context.Context, query, itemType string) ([]model.Item, error) {
	args := m.Called(ctx, query, itemType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Item), args.Error(1)
}

// denyViewer hides the items whose keys it lists
type denyViewer map[string]bool

func (d denyViewer) FilterViewable(user *model.User, items []model.Item) ([]model.Item, error) {
	var out []model.Item
	for _, item := range items {
		if !d[model.ItemKey(item)] {
			out = append(out, item)
		}
	}
	return out, nil
}

func sop(id uint, title string) *model.Sop {
	return &model.Sop{Asset: model.Asset{ID: id, Title: title}}
}

func dataFile(id uint, title string) *model.DataFile {
	return &model.DataFile{Asset: model.Asset{ID: id, Title: title}}
}
