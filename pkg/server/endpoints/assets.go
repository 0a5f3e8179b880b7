package endpoints

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"github.com/samber/lo"

	"github.com/doodlesbykumbi/seek-in-go/pkg/audit"
	"github.com/doodlesbykumbi/seek-in-go/pkg/authz"
	"github.com/doodlesbykumbi/seek-in-go/pkg/jsonapi"
	"github.com/doodlesbykumbi/seek-in-go/pkg/logging"
	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server/middleware"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server/store"
)

// assetDeps is what the policy controlled endpoints share
type assetDeps struct {
	assets     store.AssetsStore
	authorizer server.Authorizer
	isa        server.ISAGraph
	serializer *jsonapi.Serializer
	proxies    middleware.ProxyTrust
}

func newAssetDeps(s *server.Server) *assetDeps {
	return &assetDeps{
		assets:     s.AssetsStore,
		authorizer: s.Authorizer,
		isa:        s.ISA,
		serializer: s.Serializer,
		proxies:    s.Config,
	}
}

// authorize checks action on item, writing a 403 or 500 when it is not
// allowed
func (d *assetDeps) authorize(w http.ResponseWriter, r *http.Request, item model.Authorizable, action authz.Action) bool {
	allowed, err := d.authorizer.Authorize(currentUser(r), item.ItemType(), item.ItemID(), action)
	if err != nil {
		logging.Log.WithError(err).WithFields(logging.Fields{
			"item_type": item.ItemType(),
			"item_id":   item.ItemID(),
		}).Error("authorization check failed")
		jsonapi.WriteErrors(w, jsonapi.NewError(http.StatusInternalServerError, "Authorization check failed"))
		return false
	}
	if action != authz.ActionView {
		audit.Log(audit.CheckEvent{
			User:      auditUser(r),
			ClientIP:  clientIP(r, d.proxies),
			ItemType:  item.ItemType(),
			ItemID:    strconv.FormatUint(uint64(item.ItemID()), 10),
			Privilege: string(action),
			Allowed:   allowed,
		})
	}
	if !allowed {
		jsonapi.WriteErrors(w, jsonapi.NewError(http.StatusForbidden,
			fmt.Sprintf("You are not authorized to %s this %s", action, humanType(item.ItemType()))))
		return false
	}
	return true
}

// find loads an item by the {id} route variable, writing a 404 when it
// does not exist
func (d *assetDeps) find(w http.ResponseWriter, r *http.Request, itemType string) (model.Authorizable, bool) {
	id, ok := idVar(r, "id")
	if !ok {
		jsonapi.WriteErrors(w, jsonapi.NewError(http.StatusNotFound, "Not found"))
		return nil, false
	}
	item, err := d.assets.Find(itemType, id)
	if err != nil {
		respondWithStoreError(w, err)
		return nil, false
	}
	return item, true
}

// relations loads the linkage every asset resource carries
func (d *assetDeps) relations(item model.Authorizable) (jsonapi.Relations, error) {
	stored, err := d.assets.Relations(item)
	if err != nil {
		return jsonapi.Relations{}, err
	}
	people, err := d.isa.RelatedPeople(item)
	if err != nil {
		return jsonapi.Relations{}, err
	}
	links, err := d.isaLinks(item)
	if err != nil {
		return jsonapi.Relations{}, err
	}
	return jsonapi.Relations{
		Policy:   stored.Policy,
		Projects: stored.ProjectIDs,
		Creators: stored.CreatorIDs,
		People:   lo.Map(people, func(p model.Person, _ int) uint { return p.ID }),
		ISA:      links,
	}, nil
}

// isaLinks places item in the investigation, study and assay tree
func (d *assetDeps) isaLinks(item model.Authorizable) (*jsonapi.ISALinks, error) {
	investigations, err := d.isa.Investigations(item)
	if err != nil {
		return nil, fmt.Errorf("failed to load investigations: %w", err)
	}
	studies, err := d.isa.Studies(item)
	if err != nil {
		return nil, fmt.Errorf("failed to load studies: %w", err)
	}
	assays, err := d.isa.Assays(item)
	if err != nil {
		return nil, fmt.Errorf("failed to load assays: %w", err)
	}
	assayTypes, err := d.isa.AssayTypeTitles(item)
	if err != nil {
		return nil, fmt.Errorf("failed to load assay types: %w", err)
	}
	technologyTypes, err := d.isa.TechnologyTypeTitles(item)
	if err != nil {
		return nil, fmt.Errorf("failed to load technology types: %w", err)
	}
	return &jsonapi.ISALinks{
		Investigations:  lo.Map(investigations, func(i model.Investigation, _ int) uint { return i.ID }),
		Studies:         lo.Map(studies, func(s model.Study, _ int) uint { return s.ID }),
		Assays:          lo.Map(assays, func(a model.Assay, _ int) uint { return a.ID }),
		AssayTypes:      assayTypes,
		TechnologyTypes: technologyTypes,
	}, nil
}

// invalidate drops the cached decisions on an item after its policy or
// linkage changed
func (d *assetDeps) invalidate(item model.Authorizable) {
	if err := d.authorizer.Invalidate(item.ItemType(), item.ItemID()); err != nil {
		logging.Log.WithError(err).WithFields(logging.Fields{
			"item_type": item.ItemType(),
			"item_id":   item.ItemID(),
		}).Warn("failed to invalidate auth lookups")
	}
}

// viewable lists the items of a type the current user can view
func (d *assetDeps) viewable(r *http.Request, itemType string) ([]model.Item, error) {
	items, err := d.assets.List(itemType)
	if err != nil {
		return nil, err
	}
	return d.authorizer.FilterViewable(currentUser(r), items)
}

// auditChange records a create, update or delete
func (d *assetDeps) auditChange(r *http.Request, item model.Item, operation string, err error) {
	event := audit.ChangeEvent{
		User:      auditUser(r),
		ClientIP:  clientIP(r, d.proxies),
		ItemType:  item.ItemType(),
		ItemID:    strconv.FormatUint(uint64(item.ItemID()), 10),
		Operation: operation,
		Success:   err == nil,
	}
	if err != nil {
		event.ErrorMessage = err.Error()
	}
	audit.Log(event)
}

// readLinks collects the projects, creators and policy sent with a create or
// update
func readLinks(res *jsonapi.RequestResource, policy *jsonapi.PolicyAttribute) (store.AssetLinks, error) {
	var links store.AssetLinks
	if policy != nil {
		p, err := policy.Policy()
		if err != nil {
			return links, err
		}
		links.Policy = p
	}
	projects, ok, err := res.RelationshipIDs("projects")
	if err != nil {
		return links, err
	}
	if ok {
		links.ProjectIDs = &projects
	}
	creators, ok, err := res.RelationshipIDs("creators")
	if err != nil {
		return links, err
	}
	if ok {
		links.CreatorIDs = &creators
	}
	return links, nil
}

// requireRegistered answers 403 for users without a profile
func requireRegistered(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	user := currentUser(r)
	if !user.IsRegistered() {
		jsonapi.WriteErrors(w, jsonapi.NewError(http.StatusForbidden, "You need to be a registered user with a profile"))
		return nil, false
	}
	return user, true
}

// humanType turns "SampleType" into "sample type"
func humanType(itemType string) string {
	var b strings.Builder
	for i, r := range itemType {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
