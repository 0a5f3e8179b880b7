package endpoints

import (
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/seek-in-go/pkg/authz"
	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server/store"
)

type lookupKey struct {
	userID   uint
	itemType string
	itemID   uint
}

type targetKey struct {
	itemType string
	itemID   uint
}

// memoryAuthzStore keeps policies and cached decisions in maps
type memoryAuthzStore struct {
	mu       sync.Mutex
	targets  map[targetKey]authz.Target
	subjects map[uint]authz.Subject
	lookups  map[lookupKey]model.AuthLookup
}

func newMemoryAuthzStore() *memoryAuthzStore {
	return &memoryAuthzStore{
		targets:  map[targetKey]authz.Target{},
		subjects: map[uint]authz.Subject{},
		lookups:  map[lookupKey]model.AuthLookup{},
	}
}

func (m *memoryAuthzStore) setTarget(t authz.Target) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.targets[targetKey{t.ItemType, t.ItemID}] = t
}

func (m *memoryAuthzStore) Transaction(fn func(authz.Store) error) error { return fn(m) }

func (m *memoryAuthzStore) Subject(userID uint) (authz.Subject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.subjects[userID]; ok {
		return s, nil
	}
	return authz.Anonymous, nil
}

func (m *memoryAuthzStore) Target(itemType string, itemID uint) (*authz.Target, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.targets[targetKey{itemType, itemID}]
	if !ok {
		return nil, authz.ErrItemNotFound
	}
	return &t, nil
}

func (m *memoryAuthzStore) Lookup(userID uint, itemType string, itemID uint) (*model.AuthLookup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lookups[lookupKey{userID, itemType, itemID}]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (m *memoryAuthzStore) SaveLookups(lookups []model.AuthLookup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range lookups {
		m.lookups[lookupKey{l.UserID, l.AssetType, l.AssetID}] = l
	}
	return nil
}

func (m *memoryAuthzStore) DeleteItemLookups(itemType string, itemID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.lookups {
		if k.itemType == itemType && k.itemID == itemID {
			delete(m.lookups, k)
		}
	}
	return nil
}

func (m *memoryAuthzStore) DeleteUserLookups(userIDs []uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.lookups {
		for _, id := range userIDs {
			if k.userID == id {
				delete(m.lookups, k)
			}
		}
	}
	return nil
}

func (m *memoryAuthzStore) UserIDs() ([]uint, error) { return nil, nil }

func (m *memoryAuthzStore) UserIDsForPerson(uint) ([]uint, error) { return nil, nil }

func (m *memoryAuthzStore) ItemIDs(string) ([]uint, error) { return nil, nil }

func (m *memoryAuthzStore) NextQueued([]uint) (*model.AuthLookupUpdateQueue, error) { return nil, nil }

func (m *memoryAuthzStore) DeleteQueued(uint) error { return nil }

func TestSharingChangeTakesEffectImmediately(t *testing.T) {
	owner := registeredUser(4, 3)
	policyID := uint(30)
	public := &model.Policy{ID: policyID, SharingScope: model.SharingScopeEveryone, AccessType: model.AccessTypeView}

	authzStore := newMemoryAuthzStore()
	authzStore.subjects[owner.ID] = authz.Subject{UserID: owner.ID, PersonID: owner.PersonID}
	authzStore.setTarget(authz.Target{ItemType: "Sample", ItemID: 15, ContributorID: owner.PersonID, Policy: public})

	env := newTestEnvWithAuthorizer(t, nil, authz.NewAuthorizer(authzStore))
	st := strainType()
	sample := &model.Sample{
		Asset:        model.Asset{ID: 15, Title: "BY4741", ContributorID: owner.PersonID, PolicyID: &policyID},
		SampleTypeID: st.ID,
		SampleType:   st,
		JSONMetadata: `{"name":"BY4741","growth_rate":0.4}`,
	}
	env.samples.On("Sample", uint(15)).Return(sample, nil)
	env.expectRelations(4)
	env.assets.On("Update", mock.Anything, sample, mock.MatchedBy(func(l store.AssetLinks) bool {
		return l.Policy != nil && l.Policy.SharingScope == model.SharingScopePrivate
	})).Run(func(args mock.Arguments) {
		authzStore.setTarget(authz.Target{ItemType: "Sample", ItemID: 15, ContributorID: owner.PersonID,
			Policy: args.Get(2).(store.AssetLinks).Policy})
	}).Return(nil)

	w := env.do("GET", "/samples/15", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do("PATCH", "/samples/15", strings.NewReader(`{"data":{"type":"samples","id":"15",
		"attributes":{"policy":{"access":"no_access"}}}}`), owner)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do("GET", "/samples/15", nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do("GET", "/samples/15", nil, owner)
	assert.Equal(t, http.StatusOK, w.Code)
}
