package endpoints

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/doodlesbykumbi/seek-in-go/pkg/authz"
	"github.com/doodlesbykumbi/seek-in-go/pkg/jsonapi"
	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server/middleware"
)

// isaKind describes one level of the ISA tree to the shared handlers
type isaKind struct {
	itemType     string
	resourceType string

	// parent is the to-one relationship naming the enclosing level, "" for
	// investigations
	parent     string
	parentType string
	children   string

	newItem func() model.Authorizable
	// decode applies the request attributes and returns the policy sent
	decode    func(res *jsonapi.RequestResource, item model.Authorizable) (*jsonapi.PolicyAttribute, error)
	setParent func(item model.Authorizable, id uint)
	parentID  func(item model.Authorizable) uint
	render    func(ser *jsonapi.Serializer, item model.Authorizable, rel jsonapi.Relations) *jsonapi.Resource
}

var investigationKind = &isaKind{
	itemType:     "Investigation",
	resourceType: "investigations",
	children:     "studies",
	newItem:      func() model.Authorizable { return &model.Investigation{} },
	decode: func(res *jsonapi.RequestResource, item model.Authorizable) (*jsonapi.PolicyAttribute, error) {
		var attrs jsonapi.InvestigationAttributes
		if err := res.DecodeAttributes(&attrs); err != nil {
			return nil, err
		}
		attrs.Apply(item.(*model.Investigation))
		return attrs.Policy, nil
	},
	render: func(ser *jsonapi.Serializer, item model.Authorizable, rel jsonapi.Relations) *jsonapi.Resource {
		return ser.Investigation(item.(*model.Investigation), rel)
	},
}

var studyKind = &isaKind{
	itemType:     "Study",
	resourceType: "studies",
	parent:       "investigation",
	parentType:   "Investigation",
	children:     "assays",
	newItem:      func() model.Authorizable { return &model.Study{} },
	decode: func(res *jsonapi.RequestResource, item model.Authorizable) (*jsonapi.PolicyAttribute, error) {
		var attrs jsonapi.StudyAttributes
		if err := res.DecodeAttributes(&attrs); err != nil {
			return nil, err
		}
		attrs.Apply(item.(*model.Study))
		return attrs.Policy, nil
	},
	setParent: func(item model.Authorizable, id uint) { item.(*model.Study).InvestigationID = id },
	parentID:  func(item model.Authorizable) uint { return item.(*model.Study).InvestigationID },
	render: func(ser *jsonapi.Serializer, item model.Authorizable, rel jsonapi.Relations) *jsonapi.Resource {
		return ser.Study(item.(*model.Study), rel)
	},
}

var assayKind = &isaKind{
	itemType:     "Assay",
	resourceType: "assays",
	parent:       "study",
	parentType:   "Study",
	newItem:      func() model.Authorizable { return &model.Assay{AssayClass: "EXP"} },
	decode: func(res *jsonapi.RequestResource, item model.Authorizable) (*jsonapi.PolicyAttribute, error) {
		var attrs jsonapi.AssayAttributes
		if err := res.DecodeAttributes(&attrs); err != nil {
			return nil, err
		}
		attrs.Apply(item.(*model.Assay))
		return attrs.Policy, nil
	},
	setParent: func(item model.Authorizable, id uint) { item.(*model.Assay).StudyID = id },
	parentID:  func(item model.Authorizable) uint { return item.(*model.Assay).StudyID },
	render: func(ser *jsonapi.Serializer, item model.Authorizable, rel jsonapi.Relations) *jsonapi.Resource {
		return ser.Assay(item.(*model.Assay), rel)
	},
}

// RegisterISAEndpoints registers the JSON:API endpoints of investigations,
// studies and assays
func RegisterISAEndpoints(s *server.Server) {
	deps := newAssetDeps(s)
	for _, kind := range []*isaKind{investigationKind, studyKind, assayKind} {
		registerISAKind(s.Router, deps, kind)
	}
}

func registerISAKind(router *mux.Router, deps *assetDeps, kind *isaKind) {
	prefix := "/" + kind.resourceType
	router.HandleFunc(prefix, handleListAssets(deps, kind.itemType)).Methods("GET")
	router.HandleFunc(prefix+"/{id:[0-9]+}", handleShowISA(deps, kind)).Methods("GET")

	writes := router.PathPrefix(prefix).Subrouter()
	writes.Use(middleware.RequireUser)
	writes.HandleFunc("", handleCreateISA(deps, kind)).Methods("POST")
	writes.HandleFunc("/{id:[0-9]+}", handleUpdateISA(deps, kind)).Methods("PATCH", "PUT")
	writes.HandleFunc("/{id:[0-9]+}", handleDeleteISA(deps, kind)).Methods("DELETE")
}

// handleListAssets lists the viewable items of a type as skeletons
func handleListAssets(deps *assetDeps, itemType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := deps.viewable(r, itemType)
		if err != nil {
			respondWithStoreError(w, err)
			return
		}
		jsonapi.Write(w, http.StatusOK, jsonapi.List(deps.serializer.Skeletons(items), deps.serializer.Meta()))
	}
}

func handleShowISA(deps *assetDeps, kind *isaKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, ok := deps.find(w, r, kind.itemType)
		if !ok || !deps.authorize(w, r, item, authz.ActionView) {
			return
		}
		respondWithISA(w, http.StatusOK, deps, kind, item)
	}
}

func respondWithISA(w http.ResponseWriter, status int, deps *assetDeps, kind *isaKind, item model.Authorizable) {
	rel, err := deps.relations(item)
	if err != nil {
		respondWithStoreError(w, err)
		return
	}
	rel.Extra = map[string]*jsonapi.Relationship{}
	if kind.parent != "" {
		parentID := kind.parentID(item)
		rel.Extra[kind.parent] = jsonapi.ToOne(jsonapi.ResourceType(kind.parentType), &parentID)
	}
	if kind.children != "" {
		childIDs, err := deps.assets.ChildIDs(kind.itemType, item.ItemID())
		if err != nil {
			respondWithStoreError(w, err)
			return
		}
		rel.Extra[kind.children] = jsonapi.ToMany(kind.children, childIDs)
	}
	jsonapi.Write(w, status, jsonapi.Single(kind.render(deps.serializer, item, rel), deps.serializer.Meta()))
}

// linkParent points item at the parent named in the request. The user must
// be able to edit the parent.
func linkParent(w http.ResponseWriter, r *http.Request, deps *assetDeps, kind *isaKind, res *jsonapi.RequestResource, item model.Authorizable) bool {
	if kind.parent == "" {
		return true
	}
	parentID, present, err := res.RelationshipID(kind.parent)
	if err != nil {
		jsonapi.WriteErrors(w, jsonapi.AsErrors(err)...)
		return false
	}
	if !present {
		return true
	}
	if parentID == nil {
		kind.setParent(item, 0)
		return true
	}
	parent, err := deps.assets.Find(kind.parentType, *parentID)
	if err != nil {
		e := jsonapi.Unprocessable(humanType(kind.parentType) + " not found")
		e.Source = &jsonapi.ErrorSource{Pointer: "/data/relationships/" + kind.parent}
		jsonapi.WriteErrors(w, e)
		return false
	}
	allowed, err := deps.authorizer.Authorize(currentUser(r), parent.ItemType(), parent.ItemID(), authz.ActionEdit)
	if err != nil {
		respondWithStoreError(w, err)
		return false
	}
	if !allowed {
		e := jsonapi.Unprocessable("You cannot link to a " + humanType(kind.parentType) + " you cannot edit")
		e.Source = &jsonapi.ErrorSource{Pointer: "/data/relationships/" + kind.parent}
		jsonapi.WriteErrors(w, e)
		return false
	}
	kind.setParent(item, *parentID)
	return true
}

func handleCreateISA(deps *assetDeps, kind *isaKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireRegistered(w, r)
		if !ok {
			return
		}
		res, err := jsonapi.Parse(r.Body, kind.resourceType, "")
		if err != nil {
			jsonapi.WriteErrors(w, jsonapi.AsErrors(err)...)
			return
		}
		if err := res.Require("title"); err != nil {
			jsonapi.WriteErrors(w, jsonapi.AsErrors(err)...)
			return
		}

		item := kind.newItem()
		policy, err := kind.decode(res, item)
		if err != nil {
			jsonapi.WriteErrors(w, jsonapi.AsErrors(err)...)
			return
		}
		if !linkParent(w, r, deps, kind, res, item) {
			return
		}
		links, err := readLinks(res, policy)
		if err != nil {
			jsonapi.WriteErrors(w, jsonapi.AsErrors(err)...)
			return
		}
		if kind.parent == "" && (links.ProjectIDs == nil || len(*links.ProjectIDs) == 0) {
			jsonapi.WriteErrors(w, jsonapi.FromValidation(model.ValidationErrors{{Field: "projects", Message: "Projects can't be blank"}})...)
			return
		}
		if setter, ok := item.(interface{ SetContributorID(*uint) }); ok {
			setter.SetContributorID(user.PersonID)
		}

		ctx := model.WithCurrentUser(r.Context(), user)
		err = deps.assets.Create(ctx, item, links)
		deps.auditChange(r, item, "create", err)
		if err != nil {
			respondWithStoreError(w, err)
			return
		}
		respondWithISA(w, http.StatusCreated, deps, kind, item)
	}
}

func handleUpdateISA(deps *assetDeps, kind *isaKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, ok := deps.find(w, r, kind.itemType)
		if !ok || !deps.authorize(w, r, item, authz.ActionEdit) {
			return
		}
		res, err := jsonapi.Parse(r.Body, kind.resourceType, mux.Vars(r)["id"])
		if err != nil {
			jsonapi.WriteErrors(w, jsonapi.AsErrors(err)...)
			return
		}
		policy, err := kind.decode(res, item)
		if err != nil {
			jsonapi.WriteErrors(w, jsonapi.AsErrors(err)...)
			return
		}
		if policy != nil && !deps.authorize(w, r, item, authz.ActionManage) {
			return
		}
		if !linkParent(w, r, deps, kind, res, item) {
			return
		}
		links, err := readLinks(res, policy)
		if err != nil {
			jsonapi.WriteErrors(w, jsonapi.AsErrors(err)...)
			return
		}
		if kind.parent != "" {
			// projects follow the investigation
			links.ProjectIDs = nil
		}

		ctx := model.WithCurrentUser(r.Context(), currentUser(r))
		err = deps.assets.Update(ctx, item, links)
		deps.auditChange(r, item, "update", err)
		if err != nil {
			respondWithStoreError(w, err)
			return
		}
		deps.invalidate(item)
		respondWithISA(w, http.StatusOK, deps, kind, item)
	}
}

func handleDeleteISA(deps *assetDeps, kind *isaKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, ok := deps.find(w, r, kind.itemType)
		if !ok || !deps.authorize(w, r, item, authz.ActionDelete) {
			return
		}
		if kind.children != "" {
			childIDs, err := deps.assets.ChildIDs(kind.itemType, item.ItemID())
			if err != nil {
				respondWithStoreError(w, err)
				return
			}
			if len(childIDs) > 0 {
				jsonapi.WriteErrors(w, jsonapi.NewError(http.StatusForbidden,
					"You cannot delete a "+humanType(kind.itemType)+" that still has "+kind.children))
				return
			}
		}

		err := deps.assets.Delete(r.Context(), item)
		deps.auditChange(r, item, "delete", err)
		if err != nil {
			respondWithStoreError(w, err)
			return
		}
		jsonapi.Write(w, http.StatusOK, &jsonapi.Document{Meta: deps.serializer.Meta()})
	}
}
