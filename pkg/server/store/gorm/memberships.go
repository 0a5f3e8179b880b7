package gorm

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server/store"
)

// Ensure MembershipsStore implements store.MembershipsStore
var _ store.MembershipsStore = (*MembershipsStore)(nil)

// MembershipsStore implements store.MembershipsStore using GORM
type MembershipsStore struct {
	db *gorm.DB
}

// NewMembershipsStore creates a new MembershipsStore
func NewMembershipsStore(db *gorm.DB) *MembershipsStore {
	return &MembershipsStore{db: db}
}

func (s *MembershipsStore) Membership(id uint) (*model.GroupMembership, error) {
	var m model.GroupMembership
	err := s.db.Preload("WorkGroup").Preload("ProjectRoles").Where("id = ?", id).Take(&m).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

// UpdateMembership saves through the model hooks, which queue auth lookup
// rebuilds for the old and new member
func (s *MembershipsStore) UpdateMembership(ctx context.Context, m *model.GroupMembership, projectRoleIDs *[]uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(m).Error; err != nil {
			return err
		}
		if projectRoleIDs == nil {
			return nil
		}
		if err := tx.Exec("DELETE FROM group_memberships_project_roles WHERE group_membership_id = ?", m.ID).Error; err != nil {
			return err
		}
		for _, roleID := range *projectRoleIDs {
			err := tx.Exec("INSERT INTO group_memberships_project_roles (group_membership_id, project_role_id) VALUES (?, ?)", m.ID, roleID).Error
			if err != nil {
				return err
			}
		}
		var roles []model.ProjectRole
		if len(*projectRoleIDs) > 0 {
			if err := tx.Where("id IN ?", *projectRoleIDs).Order("id").Find(&roles).Error; err != nil {
				return err
			}
		}
		m.ProjectRoles = roles
		return nil
	})
}

func (s *MembershipsStore) IsProjectAdministrator(personID, projectID uint) (bool, error) {
	var count int64
	err := s.db.Table("group_memberships").
		Joins("JOIN work_groups ON work_groups.id = group_memberships.work_group_id").
		Joins("JOIN group_memberships_project_roles ON group_memberships_project_roles.group_membership_id = group_memberships.id").
		Joins("JOIN project_roles ON project_roles.id = group_memberships_project_roles.project_role_id").
		Where("group_memberships.person_id = ? AND work_groups.project_id = ? AND project_roles.name = ?",
			personID, projectID, store.ProjectAdministratorRole).
		Where("group_memberships.time_left_at IS NULL OR group_memberships.time_left_at > NOW()").
		Count(&count).Error
	return count > 0, err
}
