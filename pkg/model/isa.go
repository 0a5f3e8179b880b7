package model

import (
	"gorm.io/gorm"
)

// Investigation is the top of the ISA tree
type Investigation struct {
	Asset
	OtherCreators string    `gorm:"column:other_creators" json:"other_creators"`
	Position      int       `gorm:"column:position" json:"position"`
	Projects      []Project `gorm:"many2many:investigations_projects;" json:"-"`
	Studies       []Study   `gorm:"foreignKey:InvestigationID" json:"-"`
}

func (Investigation) TableName() string { return "investigations" }
func (*Investigation) ItemType() string { return "Investigation" }

func (i *Investigation) BeforeSave(tx *gorm.DB) error {
	i.ensureUUID()
	return i.validate().Err()
}

// Study belongs to an investigation
type Study struct {
	Asset
	InvestigationID  uint           `gorm:"column:investigation_id;not null" json:"investigation_id"`
	Experimentalists string         `gorm:"column:experimentalists" json:"experimentalists"`
	OtherCreators    string         `gorm:"column:other_creators" json:"other_creators"`
	Position         int            `gorm:"column:position" json:"position"`
	Investigation    *Investigation `gorm:"foreignKey:InvestigationID" json:"-"`
	Assays           []Assay        `gorm:"foreignKey:StudyID" json:"-"`
}

func (Study) TableName() string { return "studies" }
func (*Study) ItemType() string { return "Study" }

func (s *Study) BeforeSave(tx *gorm.DB) error {
	s.ensureUUID()
	errs := s.validate()
	if s.InvestigationID == 0 {
		errs.Add("investigation", "Investigation can't be blank")
	}
	return errs.Err()
}

// Assay belongs to a study and links to assets through AssayAsset
type Assay struct {
	Asset
	StudyID             uint         `gorm:"column:study_id;not null" json:"study_id"`
	AssayClass          string       `gorm:"column:assay_class" json:"assay_class"`
	AssayTypeLabel      *string      `gorm:"column:assay_type_label" json:"assay_type_label"`
	TechnologyTypeLabel *string      `gorm:"column:technology_type_label" json:"technology_type_label"`
	Position            int          `gorm:"column:position" json:"position"`
	Study               *Study       `gorm:"foreignKey:StudyID" json:"-"`
	AssayAssets         []AssayAsset `gorm:"foreignKey:AssayID" json:"-"`
}

func (Assay) TableName() string { return "assays" }
func (*Assay) ItemType() string { return "Assay" }

func (a *Assay) BeforeSave(tx *gorm.DB) error {
	a.ensureUUID()
	errs := a.validate()
	if a.StudyID == 0 {
		errs.Add("study", "Study can't be blank")
	}
	return errs.Err()
}

// AssayAsset is the polymorphic link between an assay and any asset
type AssayAsset struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	AssayID   uint   `gorm:"column:assay_id;not null" json:"assay_id"`
	AssetType string `gorm:"column:asset_type;not null" json:"asset_type"`
	AssetID   uint   `gorm:"column:asset_id;not null" json:"asset_id"`
	Direction int    `gorm:"column:direction" json:"direction"`
	Assay     *Assay `gorm:"foreignKey:AssayID" json:"-"`
}

func (AssayAsset) TableName() string {
	return "assay_assets"
}

// InvestigationIDs is the investigation itself
func (i *Investigation) InvestigationIDs() []uint { return []uint{i.ID} }

// InvestigationIDs is the parent investigation
func (s *Study) InvestigationIDs() []uint { return []uint{s.InvestigationID} }

// StudyIDs is the study itself
func (s *Study) StudyIDs() []uint { return []uint{s.ID} }

// StudyIDs is the parent study
func (a *Assay) StudyIDs() []uint { return []uint{a.StudyID} }

// AssayIDs is the assay itself
func (a *Assay) AssayIDs() []uint { return []uint{a.ID} }
