package search

import (
	"errors"
	"testing"

	"github.com/doodlesbykumbi/seek-in-go/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProcessQueueIndexesAndRemoves(t *testing.T) {
	idx := new(MockIndex)
	rec := new(MockRecords)
	queue := new(MockQueue)
	s := sop(5, "protocol")

	queue.On("PopReindexQueue", 50).Return([]model.ReindexingQueue{
		{ItemType: "Sop", ItemID: 5},
		{ItemType: "Sop", ItemID: 6},
	}, nil)
	rec.On("Load", "Sop", []uint{5, 6}).Return([]model.Item{s}, nil)
	rec.On("Document", s).Return(Document{ItemType: "Sop", ItemID: 5, Title: "protocol"}, nil)
	idx.On("Put", mock.Anything, []Document{{ItemType: "Sop", ItemID: 5, Title: "protocol"}}).Return(nil)
	idx.On("Remove", mock.Anything, "Sop", uint(6)).Return(nil)

	n, err := NewIndexer(idx, rec, queue).ProcessQueue(ctx(), 50)
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	idx.AssertExpectations(t)
	rec.AssertExpectations(t)
}

func TestProcessQueueSkipsUnsearchableTypes(t *testing.T) {
	idx := new(MockIndex)
	rec := new(MockRecords)
	queue := new(MockQueue)

	queue.On("PopReindexQueue", 50).Return([]model.ReindexingQueue{{ItemType: "Widget", ItemID: 1}}, nil)

	n, err := NewIndexer(idx, rec, queue).ProcessQueue(ctx(), 50)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	rec.AssertNotCalled(t, "Load", mock.Anything, mock.Anything)
}

func TestProcessQueueIndexError(t *testing.T) {
	idx := new(MockIndex)
	rec := new(MockRecords)
	queue := new(MockQueue)
	s := sop(5, "protocol")

	queue.On("PopReindexQueue", 50).Return([]model.ReindexingQueue{{ItemType: "Sop", ItemID: 5}}, nil)
	rec.On("Load", "Sop", []uint{5}).Return([]model.Item{s}, nil)
	rec.On("Document", s).Return(Document{ItemType: "Sop", ItemID: 5}, nil)
	idx.On("Put", mock.Anything, mock.Anything).Return(ErrServiceUnavailable)

	_, err := NewIndexer(idx, rec, queue).ProcessQueue(ctx(), 50)
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestReindexRejectsUnknownType(t *testing.T) {
	_, err := NewIndexer(new(MockIndex), new(MockRecords), new(MockQueue)).Reindex(ctx(), []string{"Widget"})
	assert.EqualError(t, err, "Widget is not a searchable type")
}

func TestReindexType(t *testing.T) {
	idx := new(MockIndex)
	rec := new(MockRecords)
	queue := new(MockQueue)
	a, b := dataFile(1, "a"), dataFile(2, "b")

	queue.On("IDs", "DataFile").Return([]uint{1, 2}, nil)
	rec.On("Load", "DataFile", []uint{1, 2}).Return([]model.Item{a, b}, nil)
	rec.On("Document", a).Return(Document{ItemType: "DataFile", ItemID: 1}, nil)
	rec.On("Document", b).Return(Document{ItemType: "DataFile", ItemID: 2}, nil)
	idx.On("Put", mock.Anything, mock.Anything).Return(nil)

	n, err := NewIndexer(idx, rec, queue).Reindex(ctx(), []string{"DataFile"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestReindexListError(t *testing.T) {
	queue := new(MockQueue)
	queue.On("IDs", "Sop").Return(nil, errors.New("boom"))

	_, err := NewIndexer(new(MockIndex), new(MockRecords), queue).Reindex(ctx(), []string{"Sop"})
	assert.EqualError(t, err, "listing Sop ids: boom")
}
