package store

import (
	"context"

	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
)

// ProjectAdministratorRole is the project role allowed to manage members
const ProjectAdministratorRole = "Project administrator"

// MembershipsStore reads and writes group memberships
type MembershipsStore interface {
	// Membership loads a membership with its work group and roles.
	// Returns ErrNotFound for unknown ids.
	Membership(id uint) (*model.GroupMembership, error)

	// UpdateMembership saves the membership. Role ids replace the current
	// roles when not nil.
	UpdateMembership(ctx context.Context, m *model.GroupMembership, projectRoleIDs *[]uint) error

	// IsProjectAdministrator reports whether the person currently holds the
	// project administrator role in the project
	IsProjectAdministrator(personID, projectID uint) (bool, error)
}
