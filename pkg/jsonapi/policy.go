package jsonapi

import (
	"fmt"
	"strconv"

	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
)

// PolicyAttribute is the policy as it appears in resource attributes
type PolicyAttribute struct {
	Access      string             `json:"access" validate:"required"`
	Permissions []PolicyPermission `json:"permissions" validate:"dive"`
}

// PolicyPermission grants access to one person, project, ...
type PolicyPermission struct {
	Resource Identifier `json:"resource"`
	Access   string     `json:"access" validate:"required"`
}

var contributorTypes = map[string]string{
	model.ContributorPerson:      "people",
	model.ContributorProject:     "projects",
	model.ContributorInstitution: "institutions",
	model.ContributorProgramme:   "programmes",
}

// ConvertPolicy renders a policy for the policy attribute
func ConvertPolicy(p *model.Policy) *PolicyAttribute {
	if p == nil {
		return nil
	}
	out := &PolicyAttribute{Access: p.AccessType.String(), Permissions: []PolicyPermission{}}
	for _, perm := range p.Permissions {
		out.Permissions = append(out.Permissions, PolicyPermission{
			Resource: Identifier{ID: strconv.FormatUint(uint64(perm.ContributorID), 10), Type: contributorTypes[perm.ContributorType]},
			Access:   perm.AccessType.String(),
		})
	}
	return out
}

// Policy builds an unsaved policy. Access other than no_access is granted
// to everyone.
func (a *PolicyAttribute) Policy() (*model.Policy, error) {
	access, err := model.AccessTypeString(a.Access)
	if err != nil {
		return nil, Unprocessable(fmt.Sprintf("Invalid policy access %q", a.Access))
	}
	p := &model.Policy{AccessType: access, SharingScope: model.SharingScopeEveryone}
	if access == model.AccessTypeNoAccess {
		p.SharingScope = model.SharingScopePrivate
	}
	for _, perm := range a.Permissions {
		permAccess, err := model.AccessTypeString(perm.Access)
		if err != nil {
			return nil, Unprocessable(fmt.Sprintf("Invalid permission access %q", perm.Access))
		}
		contributorType := ""
		for modelType, resourceType := range contributorTypes {
			if resourceType == perm.Resource.Type {
				contributorType = modelType
			}
		}
		if contributorType == "" {
			return nil, Unprocessable(fmt.Sprintf("Permissions cannot be granted to %s", perm.Resource.Type))
		}
		id, err := strconv.ParseUint(perm.Resource.ID, 10, 64)
		if err != nil {
			return nil, Unprocessable(fmt.Sprintf("Invalid permission resource id %q", perm.Resource.ID))
		}
		p.Permissions = append(p.Permissions, model.Permission{
			ContributorType: contributorType,
			ContributorID:   uint(id),
			AccessType:      permAccess,
		})
	}
	return p, nil
}
