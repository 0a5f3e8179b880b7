package gorm

import (
	"context"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server/store"
)

// Ensure ProgrammesStore implements store.ProgrammesStore
var _ store.ProgrammesStore = (*ProgrammesStore)(nil)

// ProgrammesStore implements store.ProgrammesStore using GORM
type ProgrammesStore struct {
	db *gorm.DB
}

// NewProgrammesStore creates a new ProgrammesStore
func NewProgrammesStore(db *gorm.DB) *ProgrammesStore {
	return &ProgrammesStore{db: db}
}

func (s *ProgrammesStore) ListProgrammes(includeInactive bool) ([]model.Programme, error) {
	q := s.db.Order("title, id")
	if !includeInactive {
		q = q.Where("is_activated = ?", true)
	}
	var programmes []model.Programme
	if err := q.Find(&programmes).Error; err != nil {
		return nil, err
	}
	return programmes, s.loadAdministrators(programmes)
}

func (s *ProgrammesStore) AwaitingActivation() ([]model.Programme, error) {
	return s.inactive("activation_rejection_reason IS NULL")
}

func (s *ProgrammesStore) Rejected() ([]model.Programme, error) {
	return s.inactive("activation_rejection_reason IS NOT NULL")
}

func (s *ProgrammesStore) inactive(reason string) ([]model.Programme, error) {
	var programmes []model.Programme
	err := s.db.Where("is_activated = ? AND "+reason, false).
		Order("created_at, id").
		Find(&programmes).Error
	if err != nil {
		return nil, err
	}
	return programmes, s.loadAdministrators(programmes)
}

func (s *ProgrammesStore) Programme(id uint) (*model.Programme, error) {
	var programme model.Programme
	if err := s.db.Where("id = ?", id).Take(&programme).Error; err != nil {
		return nil, notFound(err)
	}
	programmes := []model.Programme{programme}
	if err := s.loadAdministrators(programmes); err != nil {
		return nil, err
	}
	return &programmes[0], nil
}

// SaveProgramme runs the model hooks, which validate the title, set the
// activation state on create and sync the administrator roles
func (s *ProgrammesStore) SaveProgramme(ctx context.Context, p *model.Programme) error {
	db := s.db.WithContext(ctx).Omit(clause.Associations)
	if p.IsNewRecord() {
		return db.Create(p).Error
	}
	return db.Save(p).Error
}

func (s *ProgrammesStore) SetProjects(ctx context.Context, programmeID uint, projectIDs []uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&model.Project{}).Where("programme_id = ?", programmeID)
		if len(projectIDs) > 0 {
			q = q.Where("id NOT IN ?", projectIDs)
		}
		if err := q.Update("programme_id", nil).Error; err != nil {
			return err
		}
		if len(projectIDs) == 0 {
			return nil
		}
		return tx.Model(&model.Project{}).Where("id IN ?", projectIDs).Update("programme_id", programmeID).Error
	})
}

func (s *ProgrammesStore) DeleteProgramme(ctx context.Context, p *model.Programme) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Delete(p).Error
	})
}

func (s *ProgrammesStore) Members(programmeID uint) (*store.ProgrammeMembers, error) {
	members := &store.ProgrammeMembers{}
	if err := s.db.Model(&model.Project{}).
		Where("programme_id = ?", programmeID).
		Order("id").
		Pluck("id", &members.ProjectIDs).Error; err != nil {
		return nil, err
	}
	if len(members.ProjectIDs) == 0 {
		return members, nil
	}

	var rows []struct {
		PersonID      *uint
		InstitutionID uint
	}
	err := s.db.Table("group_memberships").
		Select("group_memberships.person_id, work_groups.institution_id").
		Joins("JOIN work_groups ON work_groups.id = group_memberships.work_group_id").
		Where("work_groups.project_id IN ?", members.ProjectIDs).
		Where("group_memberships.time_left_at IS NULL OR group_memberships.time_left_at > NOW()").
		Order("group_memberships.person_id, work_groups.institution_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row.PersonID != nil {
			members.PersonIDs = append(members.PersonIDs, *row.PersonID)
		}
		members.InstitutionIDs = append(members.InstitutionIDs, row.InstitutionID)
	}
	members.PersonIDs = lo.Uniq(members.PersonIDs)
	members.InstitutionIDs = lo.Uniq(members.InstitutionIDs)
	return members, nil
}

func (s *ProgrammesStore) loadAdministrators(programmes []model.Programme) error {
	if len(programmes) == 0 {
		return nil
	}
	ids := lo.Map(programmes, func(p model.Programme, _ int) uint { return p.ID })

	var roles []model.AdminDefinedRoleProgramme
	if err := s.db.Where("programme_id IN ? AND role = ?", ids, model.ProgrammeAdministratorRole).
		Order("person_id").
		Find(&roles).Error; err != nil {
		return err
	}
	byProgramme := lo.GroupBy(roles, func(r model.AdminDefinedRoleProgramme) uint { return r.ProgrammeID })
	for i := range programmes {
		admins := byProgramme[programmes[i].ID]
		programmes[i].AdministratorIDs = lo.Map(admins, func(r model.AdminDefinedRoleProgramme, _ int) uint { return r.PersonID })
	}
	return nil
}
