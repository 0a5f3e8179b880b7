package isa

import (
	"github.com/doodlesbykumbi/seek-in-go/pkg/model"

	"gorm.io/gorm"
)

// Ensure GormStore implements Store
var _ Store = (*GormStore)(nil)

// GormStore implements Store on the catalog database
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GormStore.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Investigations(ids []uint) ([]model.Investigation, error) {
	var out []model.Investigation
	if len(ids) == 0 {
		return out, nil
	}
	err := s.db.Where("id IN ?", ids).Order("id").Find(&out).Error
	return out, err
}

func (s *GormStore) Studies(ids []uint) ([]model.Study, error) {
	var out []model.Study
	if len(ids) == 0 {
		return out, nil
	}
	err := s.db.Where("id IN ?", ids).Order("id").Find(&out).Error
	return out, err
}

func (s *GormStore) Assays(ids []uint) ([]model.Assay, error) {
	var out []model.Assay
	if len(ids) == 0 {
		return out, nil
	}
	err := s.db.Where("id IN ?", ids).Order("id").Find(&out).Error
	return out, err
}

func (s *GormStore) StudiesOfInvestigations(investigationIDs []uint) ([]model.Study, error) {
	var out []model.Study
	if len(investigationIDs) == 0 {
		return out, nil
	}
	err := s.db.Where("investigation_id IN ?", investigationIDs).Order("position, id").Find(&out).Error
	return out, err
}

func (s *GormStore) AssaysOfStudies(studyIDs []uint) ([]model.Assay, error) {
	var out []model.Assay
	if len(studyIDs) == 0 {
		return out, nil
	}
	err := s.db.Where("study_id IN ?", studyIDs).Order("position, id").Find(&out).Error
	return out, err
}

func (s *GormStore) AssaysLinkedTo(itemType string, itemID uint) ([]model.Assay, error) {
	var out []model.Assay
	err := s.db.Where("id IN (?)",
		s.db.Model(&model.AssayAsset{}).
			Select("assay_id").
			Where("asset_type = ? AND asset_id = ?", itemType, itemID),
	).Order("id").Find(&out).Error
	return out, err
}

func (s *GormStore) AssetsOfAssays(assayIDs []uint) ([]model.AssayAsset, error) {
	var out []model.AssayAsset
	if len(assayIDs) == 0 {
		return out, nil
	}
	err := s.db.Where("assay_id IN ?", assayIDs).Order("id").Find(&out).Error
	return out, err
}

func (s *GormStore) CreatorIDs(itemType string, itemID uint) ([]uint, error) {
	var ids []uint
	err := s.db.Model(&model.AssetsCreator{}).
		Where("asset_type = ? AND asset_id = ?", itemType, itemID).
		Order("pos").
		Pluck("creator_id", &ids).Error
	return ids, err
}

func (s *GormStore) People(ids []uint) ([]model.Person, error) {
	var out []model.Person
	if len(ids) == 0 {
		return out, nil
	}
	err := s.db.Where("id IN ?", ids).Order("id").Find(&out).Error
	return out, err
}
