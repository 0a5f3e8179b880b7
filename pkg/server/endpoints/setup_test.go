package endpoints

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/seek-in-go/pkg/authz"
	"github.com/doodlesbykumbi/seek-in-go/pkg/config"
	"github.com/doodlesbykumbi/seek-in-go/pkg/jsonapi"
	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server/store"
)

// testEnv is a server whose stores and collaborators are all mocks
type testEnv struct {
	srv *server.Server

	health       *MockHealthStore
	users        *MockUsersStore
	assets       *MockAssetsStore
	programmes   *MockProgrammesStore
	memberships  *MockMembershipsStore
	nodes        *MockNodesStore
	samples      *MockSamplesStore
	publications *MockPublicationsStore
	authorizer   *MockAuthorizer
	isa          *MockISAGraph
}

func newTestEnv(t *testing.T, cfg *config.SeekConfig) *testEnv {
	t.Helper()
	return newTestEnvWithAuthorizer(t, cfg, nil)
}

// newTestEnvWithAuthorizer is newTestEnv with a real authorizer in place of
// the mock one. A nil authorizer keeps the mock.
func newTestEnvWithAuthorizer(t *testing.T, cfg *config.SeekConfig, authorizer server.Authorizer) *testEnv {
	t.Helper()
	if cfg == nil {
		cfg = config.NewDefault()
	}
	s, _, err := NewMockTestServer(cfg)
	require.NoError(t, err)

	env := &testEnv{
		srv:          s,
		health:       new(MockHealthStore),
		users:        new(MockUsersStore),
		assets:       new(MockAssetsStore),
		programmes:   new(MockProgrammesStore),
		memberships:  new(MockMembershipsStore),
		nodes:        new(MockNodesStore),
		samples:      new(MockSamplesStore),
		publications: new(MockPublicationsStore),
		authorizer:   new(MockAuthorizer),
		isa:          new(MockISAGraph),
	}
	s.HealthStore = env.health
	s.UsersStore = env.users
	s.AssetsStore = env.assets
	s.ProgrammesStore = env.programmes
	s.MembershipsStore = env.memberships
	s.NodesStore = env.nodes
	s.SamplesStore = env.samples
	s.PublicationsStore = env.publications
	s.Authorizer = env.authorizer
	if authorizer != nil {
		s.Authorizer = authorizer
	}
	env.authorizer.On("Invalidate", mock.Anything, mock.Anything).Return(nil).Maybe()
	s.ISA = env.isa

	RegisterAll(s)
	return env
}

// do sends a request through the router as user, who may be nil
func (e *testEnv) do(method, path string, body io.Reader, user *model.User) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", jsonapi.MediaType)
	}
	return e.send(req, user)
}

func (e *testEnv) send(req *http.Request, user *model.User) *httptest.ResponseRecorder {
	if user != nil {
		req = req.WithContext(model.WithCurrentUser(req.Context(), user))
	}
	w := httptest.NewRecorder()
	e.srv.Router.ServeHTTP(w, req)
	return w
}

// allow makes the authorizer answer one check
func (e *testEnv) allow(itemType string, id uint, action authz.Action, allowed bool) {
	e.authorizer.On("Authorize", mock.Anything, itemType, id, action).Return(allowed, nil)
}

// expectRelations stubs the linkage loaded when an asset is rendered
func (e *testEnv) expectRelations(projects ...uint) {
	e.assets.On("Relations", mock.Anything).Return(&store.AssetRelations{ProjectIDs: projects}, nil).Maybe()
	e.isa.On("RelatedPeople", mock.Anything).Return([]model.Person{}, nil).Maybe()
	e.isa.On("Investigations", mock.Anything).Return(nil, nil).Maybe()
	e.isa.On("Studies", mock.Anything).Return(nil, nil).Maybe()
	e.isa.On("Assays", mock.Anything).Return(nil, nil).Maybe()
	e.isa.On("AssayTypeTitles", mock.Anything).Return(nil, nil).Maybe()
	e.isa.On("TechnologyTypeTitles", mock.Anything).Return(nil, nil).Maybe()
}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

// document decodes a JSON:API response
type document struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Status string `json:"status"`
		Detail string `json:"detail"`
		Source *struct {
			Pointer string `json:"pointer"`
		} `json:"source"`
	} `json:"errors"`
	Meta map[string]interface{} `json:"meta"`
}

func decodeDocument(t *testing.T, w *httptest.ResponseRecorder) document {
	t.Helper()
	var doc document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc), w.Body.String())
	return doc
}

type resourceData struct {
	ID            string                 `json:"id"`
	Type          string                 `json:"type"`
	Attributes    map[string]interface{} `json:"attributes"`
	Relationships map[string]struct {
		Data json.RawMessage `json:"data"`
	} `json:"relationships"`
}

func (d document) single(t *testing.T) resourceData {
	t.Helper()
	var r resourceData
	require.NoError(t, json.Unmarshal(d.Data, &r))
	return r
}

func (d document) list(t *testing.T) []resourceData {
	t.Helper()
	var rs []resourceData
	require.NoError(t, json.Unmarshal(d.Data, &rs))
	return rs
}

func uintPtr(v uint) *uint { return &v }

func registeredUser(id, personID uint) *model.User {
	return &model.User{ID: id, Login: fmt.Sprintf("user%d", id), PersonID: uintPtr(personID)}
}

func adminUser() *model.User {
	return &model.User{ID: 1, Login: "admin", PersonID: uintPtr(1), IsAdmin: true}
}
