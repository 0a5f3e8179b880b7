package endpoints

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/doodlesbykumbi/seek-in-go/pkg/audit"
	"github.com/doodlesbykumbi/seek-in-go/pkg/authz"
	"github.com/doodlesbykumbi/seek-in-go/pkg/blob"
	"github.com/doodlesbykumbi/seek-in-go/pkg/config"
	"github.com/doodlesbykumbi/seek-in-go/pkg/jsonapi"
	"github.com/doodlesbykumbi/seek-in-go/pkg/logging"
	"github.com/doodlesbykumbi/seek-in-go/pkg/metrics"
	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
	"github.com/doodlesbykumbi/seek-in-go/pkg/rdf"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server/middleware"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server/store"
)

const maxUploadMemory = 32 << 20

type nodeHandlers struct {
	*assetDeps
	nodes store.NodesStore
	cfg   *config.SeekConfig
	srv   *server.Server
}

// RegisterNodeEndpoints registers nodes, their versions and downloads
func RegisterNodeEndpoints(s *server.Server) {
	h := &nodeHandlers{assetDeps: newAssetDeps(s), nodes: s.NodesStore, cfg: s.Config, srv: s}

	s.Router.HandleFunc("/nodes", handleListAssets(h.assetDeps, "Node")).Methods("GET")
	s.Router.HandleFunc("/nodes/{id:[0-9]+}.ttl", h.handleTurtle()).Methods("GET")
	s.Router.HandleFunc("/nodes/{id:[0-9]+}", h.handleShow()).Methods("GET")
	s.Router.HandleFunc("/nodes/{id:[0-9]+}/content_blobs/{version:[0-9]+}/download", h.handleDownload()).Methods("GET")

	writes := s.Router.PathPrefix("/nodes").Subrouter()
	writes.Use(middleware.RequireUser)
	writes.HandleFunc("", h.handleCreate()).Methods("POST")
	writes.HandleFunc("/{id:[0-9]+}/versions", h.handleNewVersion()).Methods("POST")
}

// blobs is nil until a blob store is configured
func (h *nodeHandlers) blobs() blob.Store {
	return h.srv.Blobs
}

func (h *nodeHandlers) findNode(w http.ResponseWriter, r *http.Request) (*model.Node, bool) {
	id, ok := idVar(r, "id")
	if !ok {
		jsonapi.WriteErrors(w, jsonapi.NewError(http.StatusNotFound, "Not found"))
		return nil, false
	}
	node, err := h.nodes.Node(id)
	if err != nil {
		respondWithStoreError(w, err)
		return nil, false
	}
	return node, true
}

func (h *nodeHandlers) respondWithNode(w http.ResponseWriter, status int, node *model.Node) {
	rel, err := h.relations(node)
	if err != nil {
		respondWithStoreError(w, err)
		return
	}
	blobs, err := h.nodes.ContentBlobs(node.ID)
	if err != nil {
		respondWithStoreError(w, err)
		return
	}
	jsonapi.Write(w, status, jsonapi.Single(h.serializer.Node(node, blobs, rel), h.serializer.Meta()))
}

func (h *nodeHandlers) handleShow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		node, ok := h.findNode(w, r)
		if !ok || !h.authorize(w, r, node, authz.ActionView) {
			return
		}
		if strings.Contains(r.Header.Get("Accept"), rdf.MediaType) {
			h.writeTurtle(w, node)
			return
		}
		h.respondWithNode(w, http.StatusOK, node)
	}
}

func (h *nodeHandlers) handleTurtle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		node, ok := h.findNode(w, r)
		if !ok || !h.authorize(w, r, node, authz.ActionView) {
			return
		}
		h.writeTurtle(w, node)
	}
}

func (h *nodeHandlers) writeTurtle(w http.ResponseWriter, node *model.Node) {
	stored, err := h.assets.Relations(node)
	if err != nil {
		respondWithStoreError(w, err)
		return
	}
	w.Header().Set("Content-Type", rdf.MediaType+"; charset=utf-8")
	err = rdf.WriteNode(w, node, rdf.Asset{
		BaseURL:  h.serializer.BaseURL,
		Projects: stored.ProjectIDs,
		Creators: stored.CreatorIDs,
	})
	if err != nil {
		logging.Log.WithError(err).WithField("node_id", node.ID).Error("writing node rdf")
	}
}

// nodeUpload is a parsed create or new version request. Multipart requests
// carry the JSON:API document in the "data" field and the content in
// "content_blob".
type nodeUpload struct {
	res    *jsonapi.RequestResource
	attrs  jsonapi.NodeAttributes
	file   multipart.File
	header *multipart.FileHeader
}

func (u *nodeUpload) Close() {
	if u.file != nil {
		_ = u.file.Close()
	}
}

func readNodeUpload(r *http.Request, urlID string) (*nodeUpload, error) {
	var (
		body io.Reader = r.Body
		up             = &nodeUpload{}
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			return nil, jsonapi.Unprocessable("Invalid upload: " + err.Error())
		}
		body = strings.NewReader(r.FormValue("data"))
		file, header, err := r.FormFile("content_blob")
		switch {
		case err == nil:
			up.file, up.header = file, header
		case errors.Is(err, http.ErrMissingFile):
		default:
			return nil, jsonapi.Unprocessable("Invalid upload: " + err.Error())
		}
	}
	res, err := jsonapi.Parse(body, "nodes", urlID)
	if err != nil {
		up.Close()
		return nil, err
	}
	if err := res.DecodeAttributes(&up.attrs); err != nil {
		up.Close()
		return nil, err
	}
	up.res = res
	return up, nil
}

// storeContent saves the uploaded file, or records the remote url, as a
// content blob. It returns nil when the request carried no content.
func (h *nodeHandlers) storeContent(r *http.Request, up *nodeUpload) (*model.ContentBlob, error) {
	if up.file == nil {
		remote := up.attrs.ContentBlob
		if remote == nil {
			return nil, nil
		}
		url := remote.URL
		return &model.ContentBlob{
			UUID:             uuid.NewString(),
			OriginalFilename: remote.OriginalFilename,
			ContentType:      remote.ContentType,
			URL:              &url,
		}, nil
	}

	backend := h.blobs()
	if backend == nil {
		return nil, jsonapi.NewError(http.StatusServiceUnavailable, "Content storage is not configured")
	}
	blobUUID := uuid.NewString()
	key := blob.Key("Node", blobUUID)
	contentType := up.header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	hash := md5.New()
	info, err := backend.Put(r.Context(), key, io.TeeReader(up.file, hash), contentType)
	if err != nil {
		return nil, err
	}
	metrics.RecordBlobBytes("in", info.Size)
	return &model.ContentBlob{
		UUID:             blobUUID,
		StorageKey:       key,
		OriginalFilename: up.header.Filename,
		ContentType:      contentType,
		FileSize:         info.Size,
		MD5:              hex.EncodeToString(hash.Sum(nil)),
	}, nil
}

func (h *nodeHandlers) handleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireRegistered(w, r)
		if !ok {
			return
		}
		up, err := readNodeUpload(r, "")
		if err != nil {
			jsonapi.WriteErrors(w, jsonapi.AsErrors(err)...)
			return
		}
		defer up.Close()
		if err := up.res.Require("title"); err != nil {
			jsonapi.WriteErrors(w, jsonapi.AsErrors(err)...)
			return
		}

		node := &model.Node{Version: 1, VirtualLiver: h.cfg.IsVirtualLiver}
		up.attrs.Apply(node)
		node.SetContributorID(user.PersonID)
		links, err := readLinks(up.res, up.attrs.Policy)
		if err != nil {
			jsonapi.WriteErrors(w, jsonapi.AsErrors(err)...)
			return
		}
		if links.ProjectIDs != nil {
			for _, id := range *links.ProjectIDs {
				node.Projects = append(node.Projects, model.Project{ID: id})
			}
		}
		if err := node.Validate(); err != nil {
			jsonapi.WriteErrors(w, jsonapi.AsErrors(err)...)
			return
		}

		content, err := h.storeContent(r, up)
		if err != nil {
			respondWithStoreError(w, err)
			return
		}

		ctx := model.WithCurrentUser(r.Context(), user)
		err = h.assets.Create(ctx, node, links)
		if err == nil {
			err = h.nodes.AddVersion(ctx, node, &model.NodeVersion{
				Version:          1,
				Title:            node.Title,
				Description:      node.Description,
				RevisionComments: stringValue(up.attrs.RevisionComments),
				ContributorID:    user.PersonID,
			}, content)
		}
		h.auditChange(r, node, "create", err)
		if err != nil {
			h.discard(r, content)
			respondWithStoreError(w, err)
			return
		}
		h.respondWithNode(w, http.StatusCreated, node)
	}
}

func (h *nodeHandlers) handleNewVersion() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		node, ok := h.findNode(w, r)
		if !ok || !h.authorize(w, r, node, authz.ActionManage) {
			return
		}
		up, err := readNodeUpload(r, "")
		if err != nil {
			jsonapi.WriteErrors(w, jsonapi.AsErrors(err)...)
			return
		}
		defer up.Close()
		if up.file == nil && up.attrs.ContentBlob == nil {
			e := jsonapi.Unprocessable("A new version needs content")
			e.Source = &jsonapi.ErrorSource{Pointer: "/data/attributes/content_blob"}
			jsonapi.WriteErrors(w, e)
			return
		}

		content, err := h.storeContent(r, up)
		if err != nil {
			respondWithStoreError(w, err)
			return
		}
		version := &model.NodeVersion{
			Version:          node.Version + 1,
			Title:            node.Title,
			Description:      node.Description,
			RevisionComments: stringValue(up.attrs.RevisionComments),
			ContributorID:    currentUser(r).PersonID,
		}
		if up.attrs.Title != nil {
			version.Title = *up.attrs.Title
		}
		if up.attrs.Description != nil {
			version.Description = *up.attrs.Description
		}
		err = h.nodes.AddVersion(r.Context(), node, version, content)
		h.auditChange(r, node, "update", err)
		if err != nil {
			h.discard(r, content)
			respondWithStoreError(w, err)
			return
		}
		h.respondWithNode(w, http.StatusCreated, node)
	}
}

// discard removes stored content whose database rows were not written
func (h *nodeHandlers) discard(r *http.Request, content *model.ContentBlob) {
	if content == nil || content.StorageKey == "" || h.blobs() == nil {
		return
	}
	if err := h.blobs().Delete(r.Context(), content.StorageKey); err != nil {
		logging.Log.WithError(err).WithField("key", content.StorageKey).Warn("removing orphaned blob")
	}
}

func (h *nodeHandlers) handleDownload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		node, ok := h.findNode(w, r)
		if !ok || !h.authorize(w, r, node, authz.ActionDownload) {
			return
		}
		version, _ := strconv.Atoi(mux.Vars(r)["version"])
		event := audit.DownloadEvent{
			User:     auditUser(r),
			ClientIP: clientIP(r, h.proxies),
			ItemType: node.ItemType(),
			ItemID:   strconv.FormatUint(uint64(node.ID), 10),
			Version:  strconv.Itoa(version),
		}
		fail := func(status int, msg string, err error) {
			event.ErrorMessage = msg
			if err != nil {
				event.ErrorMessage = err.Error()
			}
			audit.Log(event)
			jsonapi.WriteErrors(w, jsonapi.NewError(status, msg))
		}

		content, err := h.nodes.ContentBlob(node.ID, version)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				fail(http.StatusNotFound, "This version has no content", nil)
				return
			}
			fail(http.StatusInternalServerError, "Unable to load content", err)
			return
		}

		if content.IsRemote() {
			event.Success = true
			audit.Log(event)
			http.Redirect(w, r, *content.URL, http.StatusFound)
			return
		}
		blobs := h.blobs()
		if blobs == nil {
			fail(http.StatusServiceUnavailable, "Content storage is not configured", nil)
			return
		}

		url, err := blobs.PresignURL(r.Context(), content.StorageKey, blob.DefaultPresignExpiry)
		if err == nil {
			event.Success = true
			audit.Log(event)
			http.Redirect(w, r, url, http.StatusFound)
			return
		}
		if !errors.Is(err, blob.ErrUnsupported) {
			logging.Log.WithError(err).WithField("key", content.StorageKey).Warn("presigning download, streaming instead")
		}

		info, body, err := blobs.Get(r.Context(), content.StorageKey)
		if err != nil {
			if errors.Is(err, blob.ErrNotFound) {
				fail(http.StatusNotFound, "Content is missing from storage", err)
				return
			}
			fail(http.StatusInternalServerError, "Unable to read content", err)
			return
		}
		defer body.Close()

		contentType := content.ContentType
		if contentType == "" {
			contentType = info.ContentType
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+strings.ReplaceAll(content.OriginalFilename, `"`, "")+`"`)
		if info.Size > 0 {
			w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
		}
		n, err := io.Copy(w, body)
		metrics.RecordBlobBytes("out", n)
		event.Success = err == nil
		if err != nil {
			event.ErrorMessage = err.Error()
		}
		audit.Log(event)
	}
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
