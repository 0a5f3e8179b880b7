package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Item is anything that can be listed, searched and linked to
type Item interface {
	ItemType() string
	ItemID() uint
	ItemTitle() string
}

// Authorizable is an item governed by a policy
type Authorizable interface {
	Item
	ContributorPersonID() *uint
	PolicyRef() *uint
}

// Asset holds the columns shared by every policy controlled record
type Asset struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"column:title;not null" json:"title" validate:"required"`
	Description   string    `gorm:"column:description" json:"description"`
	UUID          string    `gorm:"column:uuid" json:"uuid"`
	ContributorID *uint     `gorm:"column:contributor_id" json:"contributor_id"`
	PolicyID      *uint     `gorm:"column:policy_id" json:"policy_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (a *Asset) ItemID() uint { return a.ID }
func (a *Asset) ItemTitle() string { return a.Title }
func (a *Asset) ContributorPersonID() *uint { return a.ContributorID }
func (a *Asset) PolicyRef() *uint { return a.PolicyID }
func (a *Asset) ItemDescription() string { return a.Description }

// SetPolicyID points the asset at a saved policy
func (a *Asset) SetPolicyID(id uint) { a.PolicyID = &id }

// SetContributorID records who submitted the asset
func (a *Asset) SetContributorID(personID *uint) { a.ContributorID = personID }

func (a *Asset) ensureUUID() {
	if a.UUID == "" {
		a.UUID = uuid.NewString()
	}
}

func (a *Asset) validate() ValidationErrors {
	return validateStruct(a, map[string]string{
		"Title": "Title can't be blank",
	})
}

// AssetsCreator links an asset to one of the people credited as its creators
type AssetsCreator struct {
	ID        uint   `gorm:"primaryKey"`
	AssetType string `gorm:"column:asset_type;not null"`
	AssetID   uint   `gorm:"column:asset_id;not null"`
	CreatorID uint   `gorm:"column:creator_id;not null"`
	Pos       int    `gorm:"column:pos"`
}

func (AssetsCreator) TableName() string {
	return "assets_creators"
}

// DataFile is an uploaded data set
type DataFile struct {
	Asset
	LicenseName string    `gorm:"column:license" json:"license"`
	Version     int       `gorm:"column:version;default:1" json:"version"`
	Projects    []Project `gorm:"many2many:data_files_projects;" json:"-"`
}

func (DataFile) TableName() string { return "data_files" }
func (*DataFile) ItemType() string { return "DataFile" }

func (d *DataFile) BeforeSave(tx *gorm.DB) error {
	d.ensureUUID()
	return d.validate().Err()
}

// Sop is a standard operating procedure
type Sop struct {
	Asset
	Version  int       `gorm:"column:version;default:1" json:"version"`
	Projects []Project `gorm:"many2many:projects_sops;" json:"-"`
}

func (Sop) TableName() string { return "sops" }
func (*Sop) ItemType() string { return "Sop" }

func (s *Sop) BeforeSave(tx *gorm.DB) error {
	s.ensureUUID()
	return s.validate().Err()
}

// Model is a computational model asset
type Model struct {
	Asset
	Version  int       `gorm:"column:version;default:1" json:"version"`
	Projects []Project `gorm:"many2many:models_projects;" json:"-"`
}

func (Model) TableName() string { return "models" }
func (*Model) ItemType() string { return "Model" }

func (m *Model) BeforeSave(tx *gorm.DB) error {
	m.ensureUUID()
	return m.validate().Err()
}

// Presentation is a slide deck or poster
type Presentation struct {
	Asset
	Projects []Project `gorm:"many2many:presentations_projects;" json:"-"`
}

func (Presentation) TableName() string { return "presentations" }
func (*Presentation) ItemType() string { return "Presentation" }

// Event is a meeting or workshop
type Event struct {
	Asset
	StartDate *time.Time `gorm:"column:start_date" json:"start_date"`
	EndDate   *time.Time `gorm:"column:end_date" json:"end_date"`
	Projects  []Project  `gorm:"many2many:events_projects;" json:"-"`
}

func (Event) TableName() string { return "events" }
func (*Event) ItemType() string { return "Event" }

// Organism is a public reference record
type Organism struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"column:title;not null" json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Organism) TableName() string { return "organisms" }
func (o *Organism) ItemType() string { return "Organism" }
func (o *Organism) ItemID() uint { return o.ID }
func (o *Organism) ItemTitle() string { return o.Title }

// Strain is a variant of an organism
type Strain struct {
	Asset
	OrganismID *uint `gorm:"column:organism_id" json:"organism_id"`
}

func (Strain) TableName() string { return "strains" }
func (*Strain) ItemType() string { return "Strain" }

// SavedSearch is a stored query, visible only to its owner
type SavedSearch struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	UserID                uint      `gorm:"column:user_id;not null" json:"user_id"`
	SearchQuery           string    `gorm:"column:search_query" json:"search_query"`
	SearchType            string    `gorm:"column:search_type" json:"search_type"`
	IncludeExternalSearch bool      `gorm:"column:include_external_search" json:"include_external_search"`
	CreatedAt             time.Time `json:"created_at"`
}

func (SavedSearch) TableName() string { return "saved_searches" }
func (s *SavedSearch) ItemType() string { return "SavedSearch" }
func (s *SavedSearch) ItemID() uint { return s.ID }
func (s *SavedSearch) ItemTitle() string { return s.SearchQuery }

// HasCreators is true for assets that credit creators besides the contributor
func (a *Asset) HasCreators() bool { return true }

func (*Event) HasCreators() bool  { return false }
func (*Strain) HasCreators() bool { return false }
