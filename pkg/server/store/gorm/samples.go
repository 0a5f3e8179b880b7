package gorm

import (
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server/store"
)

// Ensure SamplesStore implements store.SamplesStore
var _ store.SamplesStore = (*SamplesStore)(nil)

// SamplesStore implements store.SamplesStore using GORM
type SamplesStore struct {
	db *gorm.DB
}

// NewSamplesStore creates a new SamplesStore
func NewSamplesStore(db *gorm.DB) *SamplesStore {
	return &SamplesStore{db: db}
}

func (s *SamplesStore) SampleTypes() ([]model.SampleType, error) {
	var types []model.SampleType
	err := s.db.Order("title, id").Find(&types).Error
	return types, err
}

func (s *SamplesStore) SampleType(id uint) (*model.SampleType, error) {
	var sampleType model.SampleType
	if err := s.withAttributes(s.db).Where("id = ?", id).Take(&sampleType).Error; err != nil {
		return nil, notFound(err)
	}
	return &sampleType, nil
}

func (s *SamplesStore) SampleTypeLinks(id uint) (*store.SampleTypeLinks, error) {
	links := &store.SampleTypeLinks{}
	if err := s.db.Model(&model.Sample{}).
		Where("sample_type_id = ?", id).
		Order("id").
		Pluck("id", &links.SampleIDs).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&model.SampleAttribute{}).
		Where("linked_sample_type_id = ?", id).
		Order("id").
		Pluck("id", &links.LinkedSampleAttributeIDs).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&model.Annotation{}).
		Where("annotatable_type = ? AND annotatable_id = ? AND attribute_name = ?", "SampleType", id, "tag").
		Order("tag_id").
		Pluck("tag_id", &links.TagIDs).Error; err != nil {
		return nil, err
	}
	links.TagIDs = lo.Uniq(links.TagIDs)
	return links, nil
}

func (s *SamplesStore) Sample(id uint) (*model.Sample, error) {
	var sample model.Sample
	err := s.db.Preload("SampleType", func(db *gorm.DB) *gorm.DB {
		return s.withAttributes(db)
	}).Where("id = ?", id).Take(&sample).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &sample, nil
}

func (s *SamplesStore) withAttributes(db *gorm.DB) *gorm.DB {
	return db.Preload("SampleAttributes", func(db *gorm.DB) *gorm.DB {
		return db.Order("pos, id")
	}).
		Preload("SampleAttributes.SampleAttributeType").
		Preload("SampleAttributes.Unit")
}
