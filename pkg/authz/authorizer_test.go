package authz

import (
	"errors"
	"testing"

	"github.com/doodlesbykumbi/seek-in-go/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStore implements Store for testing using testify/mock
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Transaction(fn func(Store) error) error {
	m.Called()
	return fn(m)
}

func (m *MockStore) Subject(userID uint) (Subject, error) {
	args := m.Called(userID)
	return args.Get(0).(Subject), args.Error(1)
}

func (m *MockStore) Target(itemType string, itemID uint) (*Target, error) {
	args := m.Called(itemType, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Target), args.Error(1)
}

func (m *MockStore) Lookup(userID uint, itemType string, itemID uint) (*model.AuthLookup, error) {
	args := m.Called(userID, itemType, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthLookup), args.Error(1)
}

func (m *MockStore) SaveLookups(lookups []model.AuthLookup) error {
	return m.Called(lookups).Error(0)
}

func (m *MockStore) DeleteItemLookups(itemType string, itemID uint) error {
	return m.Called(itemType, itemID).Error(0)
}

func (m *MockStore) DeleteUserLookups(userIDs []uint) error {
	return m.Called(userIDs).Error(0)
}

func (m *MockStore) UserIDs() ([]uint, error) {
	args := m.Called()
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockStore) UserIDsForPerson(personID uint) ([]uint, error) {
	args := m.Called(personID)
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockStore) ItemIDs(itemType string) ([]uint, error) {
	args := m.Called(itemType)
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockStore) NextQueued(skip []uint) (*model.AuthLookupUpdateQueue, error) {
	args := m.Called(skip)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthLookupUpdateQueue), args.Error(1)
}

func (m *MockStore) DeleteQueued(entryID uint) error {
	return m.Called(entryID).Error(0)
}

func TestAuthorizeUsesCachedLookup(t *testing.T) {
	store := &MockStore{}
	store.On("Lookup", uint(2), "Sample", uint(9)).
		Return(&model.AuthLookup{UserID: 2, AssetType: "Sample", AssetID: 9, CanView: true}, nil)

	a := NewAuthorizer(store)
	user := &model.User{ID: 2}

	ok, err := a.Authorize(user, "Sample", 9, ActionView)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.Authorize(user, "Sample", 9, ActionEdit)
	require.NoError(t, err)
	assert.False(t, ok)

	store.AssertNotCalled(t, "Target", mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestAuthorizeComputesMissingLookup(t *testing.T) {
	store := &MockStore{}
	store.On("Lookup", uint(0), "Sample", uint(9)).Return(nil, nil)
	store.On("Subject", uint(0)).Return(Anonymous, nil)
	store.On("Target", "Sample", uint(9)).Return(&Target{
		ItemType: "Sample",
		ItemID:   9,
		Policy:   &model.Policy{SharingScope: model.SharingScopeEveryone, AccessType: model.AccessTypeView},
	}, nil)
	store.On("SaveLookups", mock.MatchedBy(func(l []model.AuthLookup) bool {
		return len(l) == 1 && l[0].UserID == 0 && l[0].CanView && !l[0].CanEdit
	})).Return(nil)

	ok, err := NewAuthorizer(store).Authorize(nil, "Sample", 9, ActionView)
	require.NoError(t, err)
	assert.True(t, ok)
	store.AssertExpectations(t)
}

func TestAuthorizeCacheWriteFailureStillDecides(t *testing.T) {
	store := &MockStore{}
	store.On("Lookup", uint(0), "Sample", uint(9)).Return(nil, nil)
	store.On("Subject", uint(0)).Return(Anonymous, nil)
	store.On("Target", "Sample", uint(9)).Return(&Target{ItemType: "Sample", ItemID: 9}, nil)
	store.On("SaveLookups", mock.Anything).Return(errors.New("read only"))

	ok, err := NewAuthorizer(store).Authorize(nil, "Sample", 9, ActionView)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthorizeMissingItem(t *testing.T) {
	store := &MockStore{}
	store.On("Lookup", uint(0), "Sample", uint(9)).Return(nil, nil)
	store.On("Subject", uint(0)).Return(Anonymous, nil)
	store.On("Target", "Sample", uint(9)).Return(nil, ErrItemNotFound)

	_, err := NewAuthorizer(store).Authorize(nil, "Sample", 9, ActionView)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestFilterViewable(t *testing.T) {
	store := &MockStore{}
	store.On("Lookup", uint(0), "Sample", uint(1)).Return(&model.AuthLookup{CanView: true}, nil)
	store.On("Lookup", uint(0), "Sample", uint(2)).Return(&model.AuthLookup{CanView: false}, nil)
	store.On("Lookup", uint(0), "Sample", uint(3)).Return(nil, nil)
	store.On("Subject", uint(0)).Return(Anonymous, nil)
	store.On("Target", "Sample", uint(3)).Return(nil, ErrItemNotFound)

	visible := &model.Sample{Asset: model.Asset{ID: 1}}
	hidden := &model.Sample{Asset: model.Asset{ID: 2}}
	gone := &model.Sample{Asset: model.Asset{ID: 3}}
	person := &model.Person{ID: 4}

	items, err := NewAuthorizer(store).FilterViewable(nil, []model.Item{visible, nil, hidden, person, gone})
	require.NoError(t, err)
	assert.Equal(t, []model.Item{visible, person}, items)
}

func TestRebuildItem(t *testing.T) {
	store := &MockStore{}
	store.On("UserIDs").Return([]uint{1, 2}, nil)
	store.On("Transaction").Return()
	store.On("DeleteItemLookups", "Node", uint(5)).Return(nil)
	store.On("Target", "Node", uint(5)).Return(&Target{
		ItemType:      "Node",
		ItemID:        5,
		ContributorID: uintPtr(10),
		Policy:        &model.Policy{SharingScope: model.SharingScopeAllUsers, AccessType: model.AccessTypeView},
	}, nil)
	store.On("Subject", uint(1)).Return(Subject{UserID: 1, PersonID: uintPtr(10)}, nil)
	store.On("Subject", uint(2)).Return(Subject{UserID: 2, PersonID: uintPtr(11)}, nil)
	store.On("SaveLookups", mock.MatchedBy(func(l []model.AuthLookup) bool {
		return len(l) == 3 &&
			l[0].UserID == 0 && !l[0].CanView &&
			l[1].UserID == 1 && l[1].CanDelete &&
			l[2].UserID == 2 && l[2].CanView && !l[2].CanEdit
	})).Return(nil)

	require.NoError(t, NewAuthorizer(store).RebuildItem("Node", 5))
	store.AssertExpectations(t)
}

func TestRebuildAllSkipsDeletedItems(t *testing.T) {
	store := &MockStore{}
	store.On("UserIDs").Return([]uint{}, nil)
	store.On("ItemIDs", "Sop").Return([]uint{1}, nil)
	store.On("Transaction").Return()
	store.On("DeleteItemLookups", "Sop", uint(1)).Return(nil)
	store.On("Target", "Sop", uint(1)).Return(nil, ErrItemNotFound)

	n, err := NewAuthorizer(store).RebuildAll([]string{"Sop"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	store.AssertNotCalled(t, "SaveLookups", mock.Anything)
}

func TestProcessQueue(t *testing.T) {
	store := &MockStore{}
	store.On("NextQueued", mock.Anything).Return(&model.AuthLookupUpdateQueue{ID: 1, ItemType: "Person", ItemID: 20}, nil).Once()
	store.On("NextQueued", mock.Anything).Return(&model.AuthLookupUpdateQueue{ID: 2, ItemType: "Person", ItemID: 21}, nil).Once()
	store.On("NextQueued", mock.Anything).Return(&model.AuthLookupUpdateQueue{ID: 3, ItemType: "Investigation", ItemID: 3}, nil).Once()
	store.On("NextQueued", mock.Anything).Return(nil, nil).Once()
	store.On("DeleteQueued", uint(1)).Return(nil)
	store.On("DeleteQueued", uint(2)).Return(nil)
	store.On("DeleteQueued", uint(3)).Return(nil)
	store.On("UserIDsForPerson", uint(20)).Return([]uint{7}, nil)
	store.On("UserIDsForPerson", uint(21)).Return([]uint{}, nil)
	store.On("DeleteUserLookups", []uint{7}).Return(nil)
	store.On("UserIDs").Return([]uint{}, nil)
	store.On("Transaction").Return()
	store.On("DeleteItemLookups", "Investigation", uint(3)).Return(nil)
	store.On("Target", "Investigation", uint(3)).Return(&Target{ItemType: "Investigation", ItemID: 3}, nil)
	store.On("SaveLookups", mock.Anything).Return(nil)

	n, err := NewAuthorizer(store).ProcessQueue(10)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	store.AssertExpectations(t)
}

func TestProcessQueueKeepsFailedEntries(t *testing.T) {
	queued := func(id uint) *model.AuthLookupUpdateQueue {
		return &model.AuthLookupUpdateQueue{ID: id, ItemType: "Sample", ItemID: id}
	}
	store := &MockStore{}
	store.On("Transaction").Return()
	store.On("NextQueued", []uint(nil)).Return(queued(1), nil).Once()
	store.On("NextQueued", []uint{1}).Return(queued(2), nil).Once()
	store.On("NextQueued", []uint{1}).Return(queued(3), nil).Once()
	store.On("NextQueued", []uint{1}).Return(nil, nil).Once()
	store.On("UserIDs").Return([]uint{}, nil)
	store.On("DeleteItemLookups", "Sample", mock.Anything).Return(nil)
	store.On("Target", "Sample", uint(1)).Return(nil, errors.New("connection reset"))
	store.On("Target", "Sample", uint(2)).Return(&Target{ItemType: "Sample", ItemID: 2}, nil)
	store.On("Target", "Sample", uint(3)).Return(&Target{ItemType: "Sample", ItemID: 3}, nil)
	store.On("SaveLookups", mock.Anything).Return(nil)
	store.On("DeleteQueued", uint(2)).Return(nil)
	store.On("DeleteQueued", uint(3)).Return(nil)

	n, err := NewAuthorizer(store).ProcessQueue(10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to process Sample 1: connection reset")
	assert.Equal(t, 2, n)
	store.AssertCalled(t, "DeleteItemLookups", "Sample", uint(2))
	store.AssertCalled(t, "DeleteItemLookups", "Sample", uint(3))
	store.AssertNotCalled(t, "DeleteQueued", uint(1))
	store.AssertExpectations(t)
}

func TestProcessQueueStopsAtLimit(t *testing.T) {
	store := &MockStore{}
	store.On("Transaction").Return()
	store.On("NextQueued", mock.Anything).Return(&model.AuthLookupUpdateQueue{ID: 4, ItemType: "User", ItemID: 9}, nil).Once()
	store.On("DeleteUserLookups", []uint{9}).Return(nil)
	store.On("DeleteQueued", uint(4)).Return(nil)

	n, err := NewAuthorizer(store).ProcessQueue(1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	store.AssertNumberOfCalls(t, "NextQueued", 1)
}

func TestInvalidateRecomputesFromCurrentPolicy(t *testing.T) {
	public := &model.Policy{SharingScope: model.SharingScopeEveryone, AccessType: model.AccessTypeView}
	cached := NewLookup(Anonymous, Target{ItemType: "Sample", ItemID: 6, Policy: public})

	store := &MockStore{}
	store.On("Lookup", uint(0), "Sample", uint(6)).Return(&cached, nil).Once()
	store.On("DeleteItemLookups", "Sample", uint(6)).Return(nil)
	store.On("Lookup", uint(0), "Sample", uint(6)).Return(nil, nil).Once()
	store.On("Subject", uint(0)).Return(Anonymous, nil)
	store.On("Target", "Sample", uint(6)).Return(&Target{ItemType: "Sample", ItemID: 6, Policy: model.NewPrivatePolicy()}, nil)
	store.On("SaveLookups", mock.Anything).Return(nil)

	a := NewAuthorizer(store)
	ok, err := a.Authorize(nil, "Sample", 6, ActionView)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, a.Invalidate("Sample", 6))

	ok, err = a.Authorize(nil, "Sample", 6, ActionView)
	require.NoError(t, err)
	assert.False(t, ok)
	store.AssertExpectations(t)
}
