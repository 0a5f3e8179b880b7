package authz

import (
	"github.com/doodlesbykumbi/seek-in-go/pkg/model"

	"github.com/samber/lo"
)

// Action is something a user may attempt on an item
type Action string

const (
	ActionView     Action = "view"
	ActionDownload Action = "download"
	ActionEdit     Action = "edit"
	ActionManage   Action = "manage"
	ActionDelete   Action = "delete"
)

// Actions lists every action in increasing order of required access
var Actions = []Action{ActionView, ActionDownload, ActionEdit, ActionManage, ActionDelete}

// RequiredAccess is the minimum access type that permits the action
func (a Action) RequiredAccess() model.AccessType {
	switch a {
	case ActionView:
		return model.AccessTypeView
	case ActionDownload:
		return model.AccessTypeDownload
	case ActionEdit:
		return model.AccessTypeEdit
	default:
		return model.AccessTypeManage
	}
}

// Subject is the acting user together with the groups they currently belong to
type Subject struct {
	UserID         uint
	PersonID       *uint
	IsAdmin        bool
	ProjectIDs     []uint
	InstitutionIDs []uint
	ProgrammeIDs   []uint
}

// Anonymous is the subject of requests without a session
var Anonymous = Subject{}

// IsLoggedIn is false for the anonymous subject
func (s Subject) IsLoggedIn() bool {
	return s.UserID != 0
}

// Target is a policy controlled item with everything needed to decide on it
type Target struct {
	ItemType      string
	ItemID        uint
	ContributorID *uint
	CreatorIDs    []uint
	Policy        *model.Policy
}

// AccessLevel returns the highest access the subject holds on the target.
// Admins get no special treatment here.
func AccessLevel(s Subject, t Target) model.AccessType {
	if s.PersonID != nil {
		person := *s.PersonID
		if t.ContributorID != nil && *t.ContributorID == person {
			return model.AccessTypeManage
		}
		if lo.Contains(t.CreatorIDs, person) {
			return model.AccessTypeManage
		}
	}
	if t.Policy == nil {
		return model.AccessTypeNoAccess
	}

	level := model.AccessTypeNoAccess
	switch t.Policy.SharingScope {
	case model.SharingScopeEveryone:
		level = t.Policy.AccessType
	case model.SharingScopeAllUsers:
		if s.IsLoggedIn() {
			level = t.Policy.AccessType
		}
	}

	for _, p := range t.Policy.Permissions {
		if p.AccessType > level && s.holds(p) {
			level = p.AccessType
		}
	}
	return level
}

func (s Subject) holds(p model.Permission) bool {
	switch p.ContributorType {
	case model.ContributorPerson:
		return s.PersonID != nil && *s.PersonID == p.ContributorID
	case model.ContributorProject:
		return lo.Contains(s.ProjectIDs, p.ContributorID)
	case model.ContributorInstitution:
		return lo.Contains(s.InstitutionIDs, p.ContributorID)
	case model.ContributorProgramme:
		return lo.Contains(s.ProgrammeIDs, p.ContributorID)
	}
	return false
}

// Can reports whether the subject may perform the action on the target
func Can(s Subject, t Target, action Action) bool {
	return AccessLevel(s, t) >= action.RequiredAccess()
}

// NewLookup computes the cached decision row for the subject and target
func NewLookup(s Subject, t Target) model.AuthLookup {
	level := AccessLevel(s, t)
	return model.AuthLookup{
		UserID:      s.UserID,
		AssetType:   t.ItemType,
		AssetID:     t.ItemID,
		CanView:     level >= model.AccessTypeView,
		CanDownload: level >= model.AccessTypeDownload,
		CanEdit:     level >= model.AccessTypeEdit,
		CanManage:   level >= model.AccessTypeManage,
		CanDelete:   level >= model.AccessTypeManage,
	}
}

// Allows reads the decision for an action out of a cached row
func Allows(l *model.AuthLookup, action Action) bool {
	switch action {
	case ActionView:
		return l.CanView
	case ActionDownload:
		return l.CanDownload
	case ActionEdit:
		return l.CanEdit
	case ActionManage:
		return l.CanManage
	case ActionDelete:
		return l.CanDelete
	}
	return false
}
