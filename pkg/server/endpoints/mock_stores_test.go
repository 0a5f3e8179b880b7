package endpoints

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/doodlesbykumbi/seek-in-go/pkg/authz"
	"github.com/doodlesbykumbi/seek-in-go/pkg/bibliographic"
	"github.com/doodlesbykumbi/seek-in-go/pkg/blob"
	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
	"github.com/doodlesbykumbi/seek-in-go/pkg/search"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server/store"
)

// MockHealthStore is a mock implementation of store.HealthStore
type MockHealthStore struct {
	mock.Mock
}

func (m *MockHealthStore) CheckConnectivity(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockHealthStore) Counts(ctx context.Context, tables []string) (map[string]int64, error) {
	args := m.Called(ctx, tables)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

// MockUsersStore is a mock implementation of store.UsersStore
type MockUsersStore struct {
	mock.Mock
}

func (m *MockUsersStore) UserByID(id uint) (*model.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUsersStore) UserByLogin(login string) (*model.User, error) {
	args := m.Called(login)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUsersStore) CreateUser(user *model.User, person *model.Person) error {
	args := m.Called(user, person)
	return args.Error(0)
}

// MockAssetsStore is a mock implementation of store.AssetsStore
type MockAssetsStore struct {
	mock.Mock
}

func (m *MockAssetsStore) Find(itemType string, id uint) (model.Authorizable, error) {
	args := m.Called(itemType, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.Authorizable), args.Error(1)
}

func (m *MockAssetsStore) List(itemType string) ([]model.Item, error) {
	args := m.Called(itemType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Item), args.Error(1)
}

func (m *MockAssetsStore) Create(ctx context.Context, asset model.Authorizable, links store.AssetLinks) error {
	args := m.Called(ctx, asset, links)
	return args.Error(0)
}

func (m *MockAssetsStore) Update(ctx context.Context, asset model.Authorizable, links store.AssetLinks) error {
	args := m.Called(ctx, asset, links)
	return args.Error(0)
}

func (m *MockAssetsStore) Delete(ctx context.Context, asset model.Authorizable) error {
	args := m.Called(ctx, asset)
	return args.Error(0)
}

func (m *MockAssetsStore) Relations(asset model.Authorizable) (*store.AssetRelations, error) {
	args := m.Called(asset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.AssetRelations), args.Error(1)
}

func (m *MockAssetsStore) ChildIDs(itemType string, id uint) ([]uint, error) {
	args := m.Called(itemType, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

// MockProgrammesStore is a mock implementation of store.ProgrammesStore
type MockProgrammesStore struct {
	mock.Mock
}

func (m *MockProgrammesStore) ListProgrammes(includeInactive bool) ([]model.Programme, error) {
	args := m.Called(includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Programme), args.Error(1)
}

func (m *MockProgrammesStore) AwaitingActivation() ([]model.Programme, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Programme), args.Error(1)
}

func (m *MockProgrammesStore) Rejected() ([]model.Programme, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Programme), args.Error(1)
}

func (m *MockProgrammesStore) Programme(id uint) (*model.Programme, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Programme), args.Error(1)
}

func (m *MockProgrammesStore) SaveProgramme(ctx context.Context, p *model.Programme) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProgrammesStore) SetProjects(ctx context.Context, programmeID uint, projectIDs []uint) error {
	args := m.Called(ctx, programmeID, projectIDs)
	return args.Error(0)
}

func (m *MockProgrammesStore) DeleteProgramme(ctx context.Context, p *model.Programme) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProgrammesStore) Members(programmeID uint) (*store.ProgrammeMembers, error) {
	args := m.Called(programmeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.ProgrammeMembers), args.Error(1)
}

// MockMembershipsStore is a mock implementation of store.MembershipsStore
type MockMembershipsStore struct {
	mock.Mock
}

func (m *MockMembershipsStore) Membership(id uint) (*model.GroupMembership, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GroupMembership), args.Error(1)
}

func (m *MockMembershipsStore) UpdateMembership(ctx context.Context, gm *model.GroupMembership, projectRoleIDs *[]uint) error {
	args := m.Called(ctx, gm, projectRoleIDs)
	return args.Error(0)
}

func (m *MockMembershipsStore) IsProjectAdministrator(personID, projectID uint) (bool, error) {
	args := m.Called(personID, projectID)
	return args.Bool(0), args.Error(1)
}

// MockNodesStore is a mock implementation of store.NodesStore
type MockNodesStore struct {
	mock.Mock
}

func (m *MockNodesStore) Node(id uint) (*model.Node, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Node), args.Error(1)
}

func (m *MockNodesStore) AddVersion(ctx context.Context, node *model.Node, version *model.NodeVersion, blob *model.ContentBlob) error {
	args := m.Called(ctx, node, version, blob)
	return args.Error(0)
}

func (m *MockNodesStore) ContentBlob(nodeID uint, version int) (*model.ContentBlob, error) {
	args := m.Called(nodeID, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ContentBlob), args.Error(1)
}

func (m *MockNodesStore) ContentBlobs(nodeID uint) ([]model.ContentBlob, error) {
	args := m.Called(nodeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ContentBlob), args.Error(1)
}

// MockSamplesStore is a mock implementation of store.SamplesStore
type MockSamplesStore struct {
	mock.Mock
}

func (m *MockSamplesStore) SampleTypes() ([]model.SampleType, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SampleType), args.Error(1)
}

func (m *MockSamplesStore) SampleType(id uint) (*model.SampleType, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SampleType), args.Error(1)
}

func (m *MockSamplesStore) SampleTypeLinks(id uint) (*store.SampleTypeLinks, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.SampleTypeLinks), args.Error(1)
}

func (m *MockSamplesStore) Sample(id uint) (*model.Sample, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Sample), args.Error(1)
}

// MockPublicationsStore is a mock implementation of store.PublicationsStore
type MockPublicationsStore struct {
	mock.Mock
}

func (m *MockPublicationsStore) Publication(id uint) (*model.Publication, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Publication), args.Error(1)
}

func (m *MockPublicationsStore) TitleTaken(title string, projectIDs []uint) (bool, error) {
	args := m.Called(title, projectIDs)
	return args.Bool(0), args.Error(1)
}

func (m *MockPublicationsStore) SaveAuthors(ctx context.Context, publicationID uint, authors []model.PublicationAuthor) error {
	args := m.Called(ctx, publicationID, authors)
	return args.Error(0)
}

func (m *MockPublicationsStore) Export(q store.ExportQuery) ([]model.Publication, error) {
	args := m.Called(q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Publication), args.Error(1)
}

func (m *MockPublicationsStore) AuthorTypeahead(fullName string, limit int) ([]store.AuthorGroup, error) {
	args := m.Called(fullName, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.AuthorGroup), args.Error(1)
}

// MockAuthorizer is a mock implementation of server.Authorizer
type MockAuthorizer struct {
	mock.Mock
}

func (m *MockAuthorizer) Authorize(user *model.User, itemType string, itemID uint, action authz.Action) (bool, error) {
	args := m.Called(user, itemType, itemID, action)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuthorizer) FilterViewable(user *model.User, items []model.Item) ([]model.Item, error) {
	args := m.Called(user, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Item), args.Error(1)
}

func (m *MockAuthorizer) Invalidate(itemType string, itemID uint) error {
	args := m.Called(itemType, itemID)
	return args.Error(0)
}

// MockISAGraph is a mock implementation of server.ISAGraph
type MockISAGraph struct {
	mock.Mock
}

func (m *MockISAGraph) RelatedPeople(item model.Authorizable) ([]model.Person, error) {
	args := m.Called(item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Person), args.Error(1)
}

func (m *MockISAGraph) Investigations(item model.Item) ([]model.Investigation, error) {
	args := m.Called(item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Investigation), args.Error(1)
}

func (m *MockISAGraph) Studies(item model.Item) ([]model.Study, error) {
	args := m.Called(item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Study), args.Error(1)
}

func (m *MockISAGraph) Assays(item model.Item) ([]model.Assay, error) {
	args := m.Called(item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Assay), args.Error(1)
}

func (m *MockISAGraph) AssayTypeTitles(item model.Item) ([]string, error) {
	args := m.Called(item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockISAGraph) TechnologyTypeTitles(item model.Item) ([]string, error) {
	args := m.Called(item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockSearcher is a mock implementation of server.Searcher
type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) Search(ctx context.Context, req search.Request) (*search.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*search.Result), args.Error(1)
}

// MockFetcher is a mock implementation of server.Fetcher
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, protocol, key string) (*bibliographic.Record, error) {
	args := m.Called(ctx, protocol, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bibliographic.Record), args.Error(1)
}

// MockBlobStore is a mock implementation of blob.Store
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (blob.Info, error) {
	// drain so callers hashing through a TeeReader see the content
	n, _ := io.Copy(io.Discard, r)
	args := m.Called(ctx, key, contentType)
	info := args.Get(0).(blob.Info)
	if info.Size == 0 {
		info.Size = n
	}
	return info, args.Error(1)
}

func (m *MockBlobStore) Get(ctx context.Context, key string) (blob.Info, io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(1) == nil {
		return args.Get(0).(blob.Info), nil, args.Error(2)
	}
	return args.Get(0).(blob.Info), args.Get(1).(io.ReadCloser), args.Error(2)
}

func (m *MockBlobStore) Head(ctx context.Context, key string) (blob.Info, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(blob.Info), args.Error(1)
}

func (m *MockBlobStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockBlobStore) PresignURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, key, expiry)
	return args.String(0), args.Error(1)
}
