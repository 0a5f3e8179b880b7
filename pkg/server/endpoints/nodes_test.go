package endpoints

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/seek-in-go/pkg/authz"
	"github.com/doodlesbykumbi/seek-in-go/pkg/blob"
	"github.com/doodlesbykumbi/seek-in-go/pkg/config"
	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server/store"
)

const sbml = "<sbml/>"

func withBlobs(env *testEnv) *MockBlobStore {
	blobs := new(MockBlobStore)
	env.srv.Blobs = blobs
	return blobs
}

func pathwayNode() *model.Node {
	return &model.Node{Asset: model.Asset{ID: 5, Title: "Pathway", UUID: "c0ffee", ContributorID: uintPtr(3)}, Version: 1}
}

// nodeUploadRequest builds a multipart upload of sbml with data as the
// JSON:API document
func nodeUploadRequest(t *testing.T, path, data string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("data", data))
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="content_blob"; filename="model.xml"`)
	header.Set("Content-Type", "application/xml")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte(sbml))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestCreateNode(t *testing.T) {
	data := `{"data":{"type":"nodes","attributes":{"title":"Pathway","revision_comments":"first"},
		"relationships":{"projects":{"data":[{"id":"2","type":"projects"}]}}}}`

	t.Run("stores the upload and records version 1", func(t *testing.T) {
		env := newTestEnv(t, nil)
		blobs := withBlobs(env)
		blobs.On("Put", mock.Anything, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "node/")
		}), "application/xml").Return(blob.Info{}, nil)
		env.assets.On("Create", mock.Anything, mock.AnythingOfType("*model.Node"), mock.Anything).
			Run(func(args mock.Arguments) { args.Get(1).(*model.Node).ID = 5 }).
			Return(nil)
		env.nodes.On("AddVersion", mock.Anything, mock.AnythingOfType("*model.Node"),
			mock.MatchedBy(func(v *model.NodeVersion) bool {
				return v.Version == 1 && v.Title == "Pathway" && v.RevisionComments == "first" && *v.ContributorID == 3
			}),
			mock.MatchedBy(func(b *model.ContentBlob) bool {
				return b.OriginalFilename == "model.xml" && b.FileSize == int64(len(sbml)) &&
					b.MD5 == md5Hex(sbml) && strings.HasPrefix(b.StorageKey, "node/") && !b.IsRemote()
			})).Return(nil)
		env.expectRelations(2)
		env.nodes.On("ContentBlobs", uint(5)).Return([]model.ContentBlob{}, nil)

		w := env.send(nodeUploadRequest(t, "/nodes", data), registeredUser(4, 3))

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		res := decodeDocument(t, w).single(t)
		assert.Equal(t, "5", res.ID)
		assert.Equal(t, float64(1), res.Attributes["latest_version"])
		env.nodes.AssertExpectations(t)
		blobs.AssertExpectations(t)
	})

	t.Run("removes the stored blob when the rows are not written", func(t *testing.T) {
		env := newTestEnv(t, nil)
		blobs := withBlobs(env)
		blobs.On("Put", mock.Anything, mock.Anything, "application/xml").Return(blob.Info{}, nil)
		env.assets.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		env.nodes.On("AddVersion", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("disk full"))
		blobs.On("Delete", mock.Anything, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "node/")
		})).Return(nil)

		w := env.send(nodeUploadRequest(t, "/nodes", data), registeredUser(4, 3))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		blobs.AssertCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("records remote content", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.assets.On("Create", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { args.Get(1).(*model.Node).ID = 5 }).
			Return(nil)
		env.nodes.On("AddVersion", mock.Anything, mock.Anything, mock.Anything,
			mock.MatchedBy(func(b *model.ContentBlob) bool {
				return b.IsRemote() && *b.URL == "https://github.com/x/wf.cwl" && b.StorageKey == ""
			})).Return(nil)
		env.expectRelations(2)
		env.nodes.On("ContentBlobs", uint(5)).Return([]model.ContentBlob{}, nil)

		body := `{"data":{"type":"nodes","attributes":{"title":"Workflow",
			"content_blob":{"url":"https://github.com/x/wf.cwl","original_filename":"wf.cwl"}},
			"relationships":{"projects":{"data":[{"id":"2","type":"projects"}]}}}}`
		w := env.do("POST", "/nodes", strings.NewReader(body), registeredUser(4, 3))

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		env.nodes.AssertExpectations(t)
	})

	t.Run("requires projects", func(t *testing.T) {
		env := newTestEnv(t, nil)

		body := `{"data":{"type":"nodes","attributes":{"title":"Pathway"}}}`
		w := env.do("POST", "/nodes", strings.NewReader(body), registeredUser(4, 3))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "Projects can't be blank")
	})

	t.Run("lets virtual liver sites skip projects", func(t *testing.T) {
		cfg := config.NewDefault()
		cfg.IsVirtualLiver = true
		env := newTestEnv(t, cfg)
		env.assets.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		env.nodes.On("AddVersion", mock.Anything, mock.Anything, mock.Anything, (*model.ContentBlob)(nil)).Return(nil)
		env.expectRelations()
		env.nodes.On("ContentBlobs", uint(0)).Return([]model.ContentBlob{}, nil)

		body := `{"data":{"type":"nodes","attributes":{"title":"Pathway"}}}`
		w := env.do("POST", "/nodes", strings.NewReader(body), registeredUser(4, 3))

		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})

	t.Run("answers 503 for uploads without a blob store", func(t *testing.T) {
		env := newTestEnv(t, nil)

		w := env.send(nodeUploadRequest(t, "/nodes", data), registeredUser(4, 3))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		env.assets.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestNewNodeVersion(t *testing.T) {
	t.Run("adds the next version", func(t *testing.T) {
		env := newTestEnv(t, nil)
		blobs := withBlobs(env)
		node := pathwayNode()
		env.nodes.On("Node", uint(5)).Return(node, nil)
		env.allow("Node", 5, authz.ActionManage, true)
		blobs.On("Put", mock.Anything, mock.Anything, "application/xml").Return(blob.Info{}, nil)
		env.nodes.On("AddVersion", mock.Anything, node, mock.MatchedBy(func(v *model.NodeVersion) bool {
			return v.Version == 2 && v.Title == "Pathway v2"
		}), mock.Anything).Return(nil)
		env.expectRelations()
		env.nodes.On("ContentBlobs", uint(5)).Return([]model.ContentBlob{}, nil)

		data := `{"data":{"type":"nodes","attributes":{"title":"Pathway v2"}}}`
		w := env.send(nodeUploadRequest(t, "/nodes/5/versions", data), registeredUser(4, 3))

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		env.nodes.AssertExpectations(t)
	})

	t.Run("needs content", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.nodes.On("Node", uint(5)).Return(pathwayNode(), nil)
		env.allow("Node", 5, authz.ActionManage, true)

		w := env.do("POST", "/nodes/5/versions", strings.NewReader(`{"data":{"type":"nodes","attributes":{}}}`), registeredUser(4, 3))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "A new version needs content")
	})

	t.Run("needs manage rights", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.nodes.On("Node", uint(5)).Return(pathwayNode(), nil)
		env.allow("Node", 5, authz.ActionManage, false)

		w := env.do("POST", "/nodes/5/versions", strings.NewReader(`{"data":{"type":"nodes"}}`), registeredUser(4, 3))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestDownloadNodeContent(t *testing.T) {
	stored := &model.ContentBlob{AssetType: "Node", AssetID: 5, AssetVersion: 1, StorageKey: "node/abc",
		OriginalFilename: "model.xml", ContentType: "application/xml"}

	t.Run("redirects to remote content", func(t *testing.T) {
		env := newTestEnv(t, nil)
		url := "https://example.org/wf.cwl"
		env.nodes.On("Node", uint(5)).Return(pathwayNode(), nil)
		env.allow("Node", 5, authz.ActionDownload, true)
		env.nodes.On("ContentBlob", uint(5), 1).Return(&model.ContentBlob{URL: &url}, nil)

		w := env.do("GET", "/nodes/5/content_blobs/1/download", nil, nil)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, url, w.Header().Get("Location"))
	})

	t.Run("redirects to a presigned url", func(t *testing.T) {
		env := newTestEnv(t, nil)
		blobs := withBlobs(env)
		env.nodes.On("Node", uint(5)).Return(pathwayNode(), nil)
		env.allow("Node", 5, authz.ActionDownload, true)
		env.nodes.On("ContentBlob", uint(5), 1).Return(stored, nil)
		blobs.On("PresignURL", mock.Anything, "node/abc", blob.DefaultPresignExpiry).Return("https://s3.example.org/node/abc?sig=1", nil)

		w := env.do("GET", "/nodes/5/content_blobs/1/download", nil, nil)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "https://s3.example.org/node/abc?sig=1", w.Header().Get("Location"))
	})

	t.Run("streams when the store cannot presign", func(t *testing.T) {
		env := newTestEnv(t, nil)
		blobs := withBlobs(env)
		env.nodes.On("Node", uint(5)).Return(pathwayNode(), nil)
		env.allow("Node", 5, authz.ActionDownload, true)
		env.nodes.On("ContentBlob", uint(5), 1).Return(stored, nil)
		blobs.On("PresignURL", mock.Anything, "node/abc", mock.Anything).Return("", blob.ErrUnsupported)
		blobs.On("Get", mock.Anything, "node/abc").
			Return(blob.Info{Key: "node/abc", Size: int64(len(sbml))}, io.NopCloser(strings.NewReader(sbml)), nil)

		w := env.do("GET", "/nodes/5/content_blobs/1/download", nil, nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, sbml, w.Body.String())
		assert.Equal(t, "application/xml", w.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="model.xml"`, w.Header().Get("Content-Disposition"))
	})

	t.Run("answers 404 for a version without content", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.nodes.On("Node", uint(5)).Return(pathwayNode(), nil)
		env.allow("Node", 5, authz.ActionDownload, true)
		env.nodes.On("ContentBlob", uint(5), 3).Return(nil, store.ErrNotFound)

		w := env.do("GET", "/nodes/5/content_blobs/3/download", nil, nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "This version has no content")
	})

	t.Run("requires download permission", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.nodes.On("Node", uint(5)).Return(pathwayNode(), nil)
		env.allow("Node", 5, authz.ActionDownload, false)

		w := env.do("GET", "/nodes/5/content_blobs/1/download", nil, nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
		env.nodes.AssertNotCalled(t, "ContentBlob", mock.Anything, mock.Anything)
	})
}

func TestNodeTurtle(t *testing.T) {
	t.Run("serves the .ttl route", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.nodes.On("Node", uint(5)).Return(pathwayNode(), nil)
		env.allow("Node", 5, authz.ActionView, true)
		env.expectRelations(2)

		w := env.do("GET", "/nodes/5.ttl", nil, nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/turtle")
		assert.Contains(t, w.Body.String(), `"Pathway"`)
		assert.Contains(t, w.Body.String(), "<http://localhost:3000/projects/2>")
	})

	t.Run("follows the Accept header", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.nodes.On("Node", uint(5)).Return(pathwayNode(), nil)
		env.allow("Node", 5, authz.ActionView, true)
		env.expectRelations()

		req := httptest.NewRequest("GET", "/nodes/5", nil)
		req.Header.Set("Accept", "text/turtle")
		w := env.send(req, nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "jerm:Node")
	})
}
