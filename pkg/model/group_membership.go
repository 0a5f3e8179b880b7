package model

import (
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

// GroupMembership places a person in a work group. A membership ends when
// TimeLeftAt is set and has passed.
type GroupMembership struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	PersonID     *uint         `gorm:"column:person_id" json:"person_id"`
	WorkGroupID  uint          `gorm:"column:work_group_id" json:"work_group_id" validate:"required"`
	TimeLeftAt   *time.Time    `gorm:"column:time_left_at" json:"time_left_at"`
	WorkGroup    *WorkGroup    `gorm:"foreignKey:WorkGroupID" json:"-"`
	ProjectRoles []ProjectRole `gorm:"many2many:group_memberships_project_roles;" json:"-"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`

	previousPersonID *uint
}

func (GroupMembership) TableName() string {
	return "group_memberships"
}

// SetHasLeft marks the membership as ended now, or reopens it
func (m *GroupMembership) SetHasLeft(left bool) {
	if left {
		now := time.Now()
		m.TimeLeftAt = &now
		return
	}
	m.TimeLeftAt = nil
}

// HasLeft reports whether the membership ended in the past
func (m *GroupMembership) HasLeft() bool {
	return m.TimeLeftAt != nil && m.TimeLeftAt.Before(time.Now())
}

// Validate checks the membership before save
func (m *GroupMembership) Validate() error {
	return validateStruct(m, map[string]string{
		"WorkGroupID": "A workgroup is required",
	}).Err()
}

func (m *GroupMembership) BeforeSave(tx *gorm.DB) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if m.ID != 0 {
		var prev GroupMembership
		err := tx.Session(&gorm.Session{NewDB: true}).
			Select("person_id").
			Where("id = ?", m.ID).
			Take(&prev).Error
		if err == nil {
			m.previousPersonID = prev.PersonID
		}
	}
	return nil
}

// AfterSave queues authorization lookup rebuilds for the member and for the
// previous member when the person changed. Runs inside the save transaction.
func (m *GroupMembership) AfterSave(tx *gorm.DB) error {
	return QueueAuthLookupUpdates(tx, "Person", m.affectedPersonIDs()...)
}

func (m *GroupMembership) AfterDelete(tx *gorm.DB) error {
	return QueueAuthLookupUpdates(tx, "Person", m.affectedPersonIDs()...)
}

func (m *GroupMembership) affectedPersonIDs() []uint {
	var ids []uint
	for _, id := range []*uint{m.PersonID, m.previousPersonID} {
		if id != nil {
			ids = append(ids, *id)
		}
	}
	return lo.Uniq(ids)
}
