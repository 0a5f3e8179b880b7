package authz

import (
	"errors"
	"fmt"
	"time"

	"github.com/doodlesbykumbi/seek-in-go/pkg/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ensure GormStore implements Store
var _ Store = (*GormStore)(nil)

// GormStore implements Store on the catalog database
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStore creates a new GormStore.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, now: time.Now}
}

// Transaction wraps operations in a database transaction.
func (s *GormStore) Transaction(fn func(Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, now: s.now})
	})
}

// Subject resolves a user and the projects, institutions and programmes of
// their current memberships
func (s *GormStore) Subject(userID uint) (Subject, error) {
	if userID == 0 {
		return Anonymous, nil
	}
	var user model.User
	err := s.db.First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Anonymous, nil
	}
	if err != nil {
		return Anonymous, err
	}

	subject := Subject{UserID: user.ID, PersonID: user.PersonID, IsAdmin: user.IsAdmin}
	if user.PersonID == nil {
		return subject, nil
	}

	current := s.db.Model(&model.GroupMembership{}).
		Joins("JOIN work_groups ON work_groups.id = group_memberships.work_group_id").
		Where("group_memberships.person_id = ?", *user.PersonID).
		Where("(group_memberships.time_left_at IS NULL OR group_memberships.time_left_at > ?)", s.now())

	if err := current.Session(&gorm.Session{}).Distinct().
		Pluck("work_groups.project_id", &subject.ProjectIDs).Error; err != nil {
		return subject, fmt.Errorf("failed to load projects: %w", err)
	}
	if err := current.Session(&gorm.Session{}).Distinct().
		Pluck("work_groups.institution_id", &subject.InstitutionIDs).Error; err != nil {
		return subject, fmt.Errorf("failed to load institutions: %w", err)
	}
	if len(subject.ProjectIDs) > 0 {
		if err := s.db.Model(&model.Project{}).
			Where("id IN ? AND programme_id IS NOT NULL", subject.ProjectIDs).
			Distinct().
			Pluck("programme_id", &subject.ProgrammeIDs).Error; err != nil {
			return subject, fmt.Errorf("failed to load programmes: %w", err)
		}
	}
	return subject, nil
}

// Target loads an item with its creators and policy
func (s *GormStore) Target(itemType string, itemID uint) (*Target, error) {
	item, ok := model.NewAuthorizable(itemType)
	if !ok {
		return nil, fmt.Errorf("%s is not a policy controlled type", itemType)
	}
	err := s.db.First(item, itemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}

	target := &Target{
		ItemType:      itemType,
		ItemID:        itemID,
		ContributorID: item.ContributorPersonID(),
	}
	if err := s.db.Model(&model.AssetsCreator{}).
		Where("asset_type = ? AND asset_id = ?", itemType, itemID).
		Pluck("creator_id", &target.CreatorIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to load creators: %w", err)
	}

	if ref := item.PolicyRef(); ref != nil {
		var policy model.Policy
		err := s.db.Preload("Permissions").First(&policy, *ref).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to load policy: %w", err)
		}
		if err == nil {
			target.Policy = &policy
		}
	}
	return target, nil
}

// Lookup returns the cached decision, or nil when there is none
func (s *GormStore) Lookup(userID uint, itemType string, itemID uint) (*model.AuthLookup, error) {
	var lookup model.AuthLookup
	err := s.db.Where("user_id = ? AND asset_type = ? AND asset_id = ?", userID, itemType, itemID).
		Take(&lookup).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lookup, nil
}

// SaveLookups upserts cached decisions
func (s *GormStore) SaveLookups(lookups []model.AuthLookup) error {
	if len(lookups) == 0 {
		return nil
	}
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "asset_type"}, {Name: "asset_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"can_view", "can_download", "can_edit", "can_manage", "can_delete",
		}),
	}).Create(&lookups).Error
}

// DeleteItemLookups drops every cached decision on an item
func (s *GormStore) DeleteItemLookups(itemType string, itemID uint) error {
	return s.db.Where("asset_type = ? AND asset_id = ?", itemType, itemID).
		Delete(&model.AuthLookup{}).Error
}

// DeleteUserLookups drops every cached decision of the given users
func (s *GormStore) DeleteUserLookups(userIDs []uint) error {
	if len(userIDs) == 0 {
		return nil
	}
	return s.db.Where("user_id IN ?", userIDs).Delete(&model.AuthLookup{}).Error
}

// UserIDs lists every user
func (s *GormStore) UserIDs() ([]uint, error) {
	var ids []uint
	err := s.db.Model(&model.User{}).Order("id").Pluck("id", &ids).Error
	return ids, err
}

// UserIDsForPerson lists the accounts linked to a person
func (s *GormStore) UserIDsForPerson(personID uint) ([]uint, error) {
	var ids []uint
	err := s.db.Model(&model.User{}).Where("person_id = ?", personID).Pluck("id", &ids).Error
	return ids, err
}

// ItemIDs lists the ids of every item of a type
func (s *GormStore) ItemIDs(itemType string) ([]uint, error) {
	item, ok := model.NewAuthorizable(itemType)
	if !ok {
		return nil, fmt.Errorf("%s is not a policy controlled type", itemType)
	}
	var ids []uint
	err := s.db.Model(item).Order("id").Pluck("id", &ids).Error
	return ids, err
}

// NextQueued locks the highest priority queued item. Rows locked by other
// workers are skipped, so the lock lasts as long as the caller's transaction.
func (s *GormStore) NextQueued(skip []uint) (*model.AuthLookupUpdateQueue, error) {
	query := s.db.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Order("priority DESC, id")
	if len(skip) > 0 {
		query = query.Where("id NOT IN ?", skip)
	}
	var entry model.AuthLookupUpdateQueue
	err := query.Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeleteQueued removes a processed queue entry
func (s *GormStore) DeleteQueued(entryID uint) error {
	return s.db.Where("id = ?", entryID).Delete(&model.AuthLookupUpdateQueue{}).Error
}
