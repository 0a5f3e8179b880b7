package model

//go:generate go run github.com/dmarkham/enumer -type AccessType -trimprefix AccessType -transform snake -yaml -output access_type.gen.go
//go:generate go run github.com/dmarkham/enumer -type SharingScope -trimprefix SharingScope -transform snake -yaml -output sharing_scope.gen.go

import "time"

// AccessType is the level of access a policy or permission grants. Levels
// are ordered: each includes the ones below it.
type AccessType int

const (
	AccessTypeNoAccess AccessType = iota
	AccessTypeView
	AccessTypeDownload
	AccessTypeEdit
	AccessTypeManage
)

// SharingScope says who a policy's access type applies to
type SharingScope int

const (
	SharingScopePrivate  SharingScope = 0
	SharingScopeAllUsers SharingScope = 2
	SharingScopeEveryone SharingScope = 4
)

// Contributor types a permission can be granted to
const (
	ContributorPerson      = "Person"
	ContributorProject     = "Project"
	ContributorInstitution = "Institution"
	ContributorProgramme   = "Programme"
)

// Policy is the sharing setting of an asset
type Policy struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	Name         string       `gorm:"column:name" json:"name"`
	SharingScope SharingScope `gorm:"column:sharing_scope" json:"sharing_scope"`
	AccessType   AccessType   `gorm:"column:access_type" json:"access_type"`
	Permissions  []Permission `gorm:"foreignKey:PolicyID" json:"permissions"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

func (Policy) TableName() string {
	return "policies"
}

// NewPrivatePolicy returns a policy nobody but the contributor can use
func NewPrivatePolicy() *Policy {
	return &Policy{Name: "private", SharingScope: SharingScopePrivate, AccessType: AccessTypeNoAccess}
}

// Permission grants a contributor (person, project, ...) access under a policy
type Permission struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	PolicyID        uint       `gorm:"column:policy_id;not null" json:"policy_id"`
	ContributorType string     `gorm:"column:contributor_type;not null" json:"contributor_type"`
	ContributorID   uint       `gorm:"column:contributor_id;not null" json:"contributor_id"`
	AccessType      AccessType `gorm:"column:access_type" json:"access_type"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (Permission) TableName() string {
	return "permissions"
}
