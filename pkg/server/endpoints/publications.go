package endpoints

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/samber/lo"

	"github.com/doodlesbykumbi/seek-in-go/pkg/audit"
	"github.com/doodlesbykumbi/seek-in-go/pkg/authz"
	"github.com/doodlesbykumbi/seek-in-go/pkg/bibliographic"
	"github.com/doodlesbykumbi/seek-in-go/pkg/jsonapi"
	"github.com/doodlesbykumbi/seek-in-go/pkg/logging"
	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server/middleware"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server/store"
)

const typeaheadLimit = 10

type publicationHandlers struct {
	*assetDeps
	publications store.PublicationsStore
	srv          *server.Server
}

// RegisterPublicationEndpoints registers publication lookup, creation and
// exports
func RegisterPublicationEndpoints(s *server.Server) {
	h := &publicationHandlers{assetDeps: newAssetDeps(s), publications: s.PublicationsStore, srv: s}

	s.Router.HandleFunc("/publications", handleListAssets(h.assetDeps, "Publication")).Methods("GET")
	s.Router.HandleFunc("/publications/export", h.handleExportQuery()).Methods("GET")
	s.Router.HandleFunc("/publications/query_authors_typeahead", h.handleAuthorTypeahead()).Methods("GET")
	s.Router.HandleFunc("/publications/{id:[0-9]+}.{format:enw|bibtex|embl}", h.handleExport()).Methods("GET")
	s.Router.HandleFunc("/publications/{id:[0-9]+}", h.handleShow()).Methods("GET")

	writes := s.Router.PathPrefix("/publications").Subrouter()
	writes.Use(middleware.RequireUser)
	writes.HandleFunc("", h.handleCreate()).Methods("POST")
	writes.HandleFunc("/fetch_preview", h.handleFetchPreview()).Methods("POST")
}

func (h *publicationHandlers) findPublication(w http.ResponseWriter, r *http.Request) (*model.Publication, bool) {
	id, ok := idVar(r, "id")
	if !ok {
		jsonapi.WriteErrors(w, jsonapi.NewError(http.StatusNotFound, "Not found"))
		return nil, false
	}
	p, err := h.publications.Publication(id)
	if err != nil {
		respondWithStoreError(w, err)
		return nil, false
	}
	return p, true
}

func (h *publicationHandlers) resource(p *model.Publication) (*jsonapi.Resource, error) {
	rel, err := h.relations(p)
	if err != nil {
		return nil, err
	}
	return h.serializer.Publication(p, rel), nil
}

func (h *publicationHandlers) handleShow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := h.findPublication(w, r)
		if !ok || !h.authorize(w, r, p, authz.ActionView) {
			return
		}
		res, err := h.resource(p)
		if err != nil {
			respondWithStoreError(w, err)
			return
		}
		jsonapi.Write(w, http.StatusOK, jsonapi.Single(res, h.serializer.Meta()))
	}
}

// fetch looks a key up, recording the attempt
func (h *publicationHandlers) fetch(r *http.Request, protocol, key string) (*bibliographic.Record, error) {
	event := audit.FetchEvent{
		User:     auditUser(r),
		ClientIP: clientIP(r, h.proxies),
		Protocol: protocol,
		Key:      key,
	}
	var (
		record *bibliographic.Record
		err    = errFetcherUnavailable
	)
	if h.srv.Fetcher != nil {
		record, err = h.srv.Fetcher.Fetch(r.Context(), protocol, key)
	}
	event.Success = err == nil
	if err != nil {
		event.ErrorMessage = err.Error()
	}
	audit.Log(event)
	return record, err
}

var errFetcherUnavailable = errors.New("publication lookups are not configured")

// FetchPreviewRequest asks for the details of a publication before it is
// registered
type FetchPreviewRequest struct {
	Key      string `json:"key"`
	Protocol string `json:"protocol"`
}

func (h *publicationHandlers) handleFetchPreview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req FetchPreviewRequest
		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				respondWithError(w, http.StatusBadRequest, "Invalid request body")
				return
			}
		} else {
			req.Key, req.Protocol = r.FormValue("key"), r.FormValue("protocol")
		}
		if strings.TrimSpace(req.Key) == "" {
			respondWithError(w, http.StatusInternalServerError, bibliographic.ErrBlankKey.Error())
			return
		}
		if req.Protocol == "" {
			req.Protocol = bibliographic.ProtocolPubMed
		}
		key := req.Key
		if req.Protocol == bibliographic.ProtocolDOI {
			key = bibliographic.NormalizeDOI(key)
		}

		record, err := h.fetch(r, req.Protocol, key)
		if err != nil {
			logging.Log.WithError(err).WithFields(logging.Fields{
				"protocol": req.Protocol,
				"key":      key,
			}).Warn("publication lookup failed")
			respondWithError(w, http.StatusInternalServerError, "An error has occurred: "+err.Error())
			return
		}
		respondWithJSON(w, http.StatusOK, record)
	}
}

// authorsFrom turns hand entered authors into rows, keeping their order
func authorsFrom(attrs []jsonapi.AuthorAttribute) []model.PublicationAuthor {
	authors := make([]model.PublicationAuthor, 0, len(attrs))
	for i, a := range attrs {
		first, last := a.FirstName, a.LastName
		if first == "" && last == "" {
			name := bibliographic.SplitName(a.FullName)
			first, last = name.FirstName, name.LastName
		}
		if first == "" && last == "" {
			continue
		}
		authors = append(authors, model.PublicationAuthor{
			FirstName:   first,
			LastName:    last,
			AuthorIndex: i,
			PersonID:    a.PersonID,
		})
	}
	return authors
}

func (h *publicationHandlers) handleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireRegistered(w, r)
		if !ok {
			return
		}
		res, err := jsonapi.Parse(r.Body, "publications", "")
		if err != nil {
			jsonapi.WriteErrors(w, jsonapi.AsErrors(err)...)
			return
		}
		var attrs jsonapi.PublicationAttributes
		if err := res.DecodeAttributes(&attrs); err != nil {
			jsonapi.WriteErrors(w, jsonapi.AsErrors(err)...)
			return
		}
		links, err := readLinks(res, attrs.Policy)
		if err != nil {
			jsonapi.WriteErrors(w, jsonapi.AsErrors(err)...)
			return
		}
		if links.ProjectIDs == nil || len(*links.ProjectIDs) == 0 {
			jsonapi.WriteErrors(w, jsonapi.FromValidation(model.ValidationErrors{{Field: "projects", Message: "Projects can't be blank"}})...)
			return
		}

		publication, authors, ok := h.buildPublication(w, r, res, &attrs)
		if !ok {
			return
		}

		taken, err := h.publications.TitleTaken(publication.Title, *links.ProjectIDs)
		if err != nil {
			respondWithStoreError(w, err)
			return
		}
		if taken {
			jsonapi.WriteErrors(w, jsonapi.FromValidation(model.ValidationErrors{{
				Field:   "title",
				Message: "You cannot register the same title within the same project",
			}})...)
			return
		}

		publication.SetContributorID(user.PersonID)
		ctx := model.WithCurrentUser(r.Context(), user)
		err = h.assets.Create(ctx, publication, links)
		if err == nil {
			err = h.publications.SaveAuthors(ctx, publication.ID, authors)
		}
		h.auditChange(r, publication, "create", err)
		if err != nil {
			respondWithStoreError(w, err)
			return
		}
		publication.PublicationAuthors = authors

		out, err := h.resource(publication)
		if err != nil {
			respondWithStoreError(w, err)
			return
		}
		jsonapi.Write(w, http.StatusCreated, jsonapi.Single(out, h.serializer.Meta()))
	}
}

// buildPublication fetches the details by PubMed ID or DOI, or takes them
// from the request
func (h *publicationHandlers) buildPublication(w http.ResponseWriter, r *http.Request, res *jsonapi.RequestResource, attrs *jsonapi.PublicationAttributes) (*model.Publication, []model.PublicationAuthor, bool) {
	var protocol, key string
	switch {
	case attrs.PubmedID != nil:
		protocol, key = bibliographic.ProtocolPubMed, strconv.Itoa(*attrs.PubmedID)
	case attrs.DOI != nil && strings.TrimSpace(*attrs.DOI) != "":
		protocol, key = bibliographic.ProtocolDOI, bibliographic.NormalizeDOI(*attrs.DOI)
	}

	if protocol == "" {
		if err := res.Require("title"); err != nil {
			jsonapi.WriteErrors(w, jsonapi.AsErrors(err)...)
			return nil, nil, false
		}
		p := &model.Publication{}
		if err := attrs.Apply(p); err != nil {
			e := jsonapi.Unprocessable("Published date is invalid")
			e.Source = &jsonapi.ErrorSource{Pointer: "/data/attributes/published_date"}
			jsonapi.WriteErrors(w, e)
			return nil, nil, false
		}
		return p, authorsFrom(attrs.Authors), true
	}

	record, err := h.fetch(r, protocol, key)
	if err != nil {
		if errors.Is(err, errFetcherUnavailable) {
			jsonapi.WriteErrors(w, jsonapi.NewError(http.StatusServiceUnavailable, err.Error()))
			return nil, nil, false
		}
		e := jsonapi.Unprocessable("An error has occurred: " + err.Error())
		e.Source = &jsonapi.ErrorSource{Pointer: "/data/attributes/" + map[string]string{
			bibliographic.ProtocolPubMed: "pubmed_id",
			bibliographic.ProtocolDOI:    "doi",
		}[protocol]}
		jsonapi.WriteErrors(w, e)
		return nil, nil, false
	}
	p := record.Publication()
	authors := p.PublicationAuthors
	p.PublicationAuthors = nil
	return p, authors, true
}

// exportRecord is what an export writes for p. PubMed publications are
// fetched again for their MEDLINE details.
func (h *publicationHandlers) exportRecord(r *http.Request, p *model.Publication) (*bibliographic.Record, error) {
	if p.PubmedID == nil {
		return bibliographic.FromPublication(p), nil
	}
	return h.fetch(r, bibliographic.ProtocolPubMed, strconv.Itoa(*p.PubmedID))
}

func (h *publicationHandlers) handleExport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := h.findPublication(w, r)
		if !ok || !h.authorize(w, r, p, authz.ActionView) {
			return
		}
		format := mux.Vars(r)["format"]
		event := audit.ExportEvent{
			User:     auditUser(r),
			ClientIP: clientIP(r, h.proxies),
			Format:   format,
			Count:    1,
		}

		record, err := h.exportRecord(r, p)
		if err != nil {
			event.ErrorMessage = err.Error()
			audit.Log(event)
			redirectBack(w, r, fmt.Sprintf("/publications/%d", p.ID), "error",
				"There was a problem communicating with PubMed to generate the requested "+strings.ToUpper(format))
			return
		}
		h.writeExport(w, format, &event, record)
	}
}

func (h *publicationHandlers) writeExport(w http.ResponseWriter, format string, event *audit.ExportEvent, records ...*bibliographic.Record) {
	var buf bytes.Buffer
	err := bibliographic.Write(&buf, format, records...)
	event.Success = err == nil
	if err != nil {
		event.ErrorMessage = err.Error()
	}
	audit.Log(*event)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", bibliographic.ContentTypes[format]+"; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// exportQuery reads the ransack style parameters of the export page
func exportQuery(params url.Values) store.ExportQuery {
	q := store.ExportQuery{
		TitleContains:      params.Get("query[title_cont]"),
		AuthorLastContains: params.Get("query[publication_authors_last_name_cont]"),
	}
	for _, raw := range params["query[projects_id_in][]"] {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil && id > 0 {
			q.ProjectIDs = append(q.ProjectIDs, uint(id))
		}
	}
	dirs := params["query[s][][dir]"]
	for i, name := range params["query[s][][name]"] {
		if name == "" {
			continue
		}
		sort := name
		if i < len(dirs) && dirs[i] != "" {
			sort += " " + dirs[i]
		}
		q.Sorts = append(q.Sorts, sort)
	}
	return q
}

func (h *publicationHandlers) handleExportQuery() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		publications, err := h.publications.Export(exportQuery(r.URL.Query()))
		if err != nil {
			respondWithStoreError(w, err)
			return
		}
		items := make([]model.Item, len(publications))
		for i := range publications {
			items[i] = &publications[i]
		}
		items, err = h.authorizer.FilterViewable(currentUser(r), items)
		if err != nil {
			respondWithStoreError(w, err)
			return
		}

		format := r.URL.Query().Get("format")
		if _, ok := bibliographic.ContentTypes[format]; ok {
			event := audit.ExportEvent{
				User:     auditUser(r),
				ClientIP: clientIP(r, h.proxies),
				Format:   format,
				Count:    len(items),
			}
			records := lo.Map(items, func(item model.Item, _ int) *bibliographic.Record {
				return bibliographic.FromPublication(item.(*model.Publication))
			})
			h.writeExport(w, format, &event, records...)
			return
		}

		resources := make([]*jsonapi.Resource, 0, len(items))
		for _, item := range items {
			res, err := h.resource(item.(*model.Publication))
			if err != nil {
				respondWithStoreError(w, err)
				return
			}
			resources = append(resources, res)
		}
		jsonapi.Write(w, http.StatusOK, jsonapi.List(resources, h.serializer.Meta()))
	}
}

func (h *publicationHandlers) handleAuthorTypeahead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fullName := strings.TrimSpace(r.URL.Query().Get("full_name"))
		if fullName == "" {
			respondWithJSON(w, http.StatusOK, []store.AuthorGroup{})
			return
		}
		groups, err := h.publications.AuthorTypeahead(fullName, typeaheadLimit)
		if err != nil {
			respondWithStoreError(w, err)
			return
		}
		if groups == nil {
			groups = []store.AuthorGroup{}
		}
		respondWithJSON(w, http.StatusOK, groups)
	}
}
