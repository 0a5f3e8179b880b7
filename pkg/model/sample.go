package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/seek-in-go/pkg/logging"
)

// SampleType describes the attributes a family of samples carries
type SampleType struct {
	ID               uint              `gorm:"primaryKey" json:"id"`
	Title            string            `gorm:"column:title;not null" json:"title" validate:"required"`
	Description      string            `gorm:"column:description" json:"description"`
	UploadedTemplate bool              `gorm:"column:uploaded_template" json:"uploaded_template"`
	ContributorID    *uint             `gorm:"column:contributor_id" json:"contributor_id"`
	SampleAttributes []SampleAttribute `gorm:"foreignKey:SampleTypeID" json:"-"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

func (SampleType) TableName() string { return "sample_types" }
func (t *SampleType) ItemType() string { return "SampleType" }
func (t *SampleType) ItemID() uint { return t.ID }
func (t *SampleType) ItemTitle() string { return t.Title }

func (t *SampleType) BeforeSave(tx *gorm.DB) error {
	return validateStruct(t, map[string]string{"Title": "Title can't be blank"}).Err()
}

// TitleAttribute returns the attribute flagged as the sample title
func (t *SampleType) TitleAttribute() *SampleAttribute {
	for i := range t.SampleAttributes {
		if t.SampleAttributes[i].IsTitle {
			return &t.SampleAttributes[i]
		}
	}
	return nil
}

// SampleAttributeType is the base type of an attribute (String, Integer, ...)
type SampleAttributeType struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Title    string `gorm:"column:title;not null" json:"title"`
	BaseType string `gorm:"column:base_type" json:"base_type"`
	Regexp   string `gorm:"column:regexp" json:"regexp"`
}

func (SampleAttributeType) TableName() string {
	return "sample_attribute_types"
}

// Unit is a measurement unit
type Unit struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Title  string `gorm:"column:title" json:"title"`
	Symbol string `gorm:"column:symbol" json:"symbol"`
}

func (Unit) TableName() string {
	return "units"
}

// SampleAttribute is one column of a sample type
type SampleAttribute struct {
	ID                    uint                 `gorm:"primaryKey" json:"id"`
	Title                 string               `gorm:"column:title;not null" json:"title"`
	SampleTypeID          uint                 `gorm:"column:sample_type_id;not null" json:"sample_type_id"`
	SampleAttributeTypeID uint                 `gorm:"column:sample_attribute_type_id" json:"sample_attribute_type_id"`
	SampleAttributeType   *SampleAttributeType `gorm:"foreignKey:SampleAttributeTypeID" json:"-"`
	UnitID                *uint                `gorm:"column:unit_id" json:"unit_id"`
	Unit                  *Unit                `gorm:"foreignKey:UnitID" json:"-"`
	Required              bool                 `gorm:"column:required" json:"required"`
	IsTitle               bool                 `gorm:"column:is_title" json:"is_title"`
	Pos                   int                  `gorm:"column:pos" json:"pos"`
	LinkedSampleTypeID    *uint                `gorm:"column:linked_sample_type_id" json:"linked_sample_type_id"`
}

func (SampleAttribute) TableName() string {
	return "sample_attributes"
}

// AccessorName is the key the attribute's value is stored under
func (a *SampleAttribute) AccessorName() string {
	var sb strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(strings.TrimSpace(a.Title)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			sb.WriteRune('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(sb.String(), "_")
}

// IsSeekSample is true for attributes that link to samples of another type
func (a *SampleAttribute) IsSeekSample() bool {
	return a.LinkedSampleTypeID != nil
}

// Sample is an instance of a sample type. Attribute values are held as JSON.
type Sample struct {
	Asset
	SampleTypeID uint        `gorm:"column:sample_type_id;not null" json:"sample_type_id"`
	JSONMetadata string      `gorm:"column:json_metadata;type:text" json:"-"`
	SampleType   *SampleType `gorm:"foreignKey:SampleTypeID" json:"-"`
	Projects     []Project   `gorm:"many2many:projects_samples;" json:"-"`
}

func (Sample) TableName() string { return "samples" }
func (*Sample) ItemType() string { return "Sample" }

// Data decodes the attribute values. Stored values that cannot be decoded
// are logged and read as empty.
func (s *Sample) Data() map[string]interface{} {
	data, err := s.ParseData()
	if err != nil {
		logging.Log.WithError(err).WithField("sample_id", s.ID).
			Warn("failed to decode sample attribute values")
		return map[string]interface{}{}
	}
	return data
}

// ParseData decodes the attribute values
func (s *Sample) ParseData() (map[string]interface{}, error) {
	data := map[string]interface{}{}
	if s.JSONMetadata == "" {
		return data, nil
	}
	if err := json.Unmarshal([]byte(s.JSONMetadata), &data); err != nil {
		return nil, fmt.Errorf("invalid attribute values: %w", err)
	}
	return data, nil
}

// SetData replaces every attribute value. Attributes of the sample type that
// are absent from values are stored as null, and the title is taken from the
// title attribute when there is one. SampleType must be loaded.
func (s *Sample) SetData(values map[string]interface{}) error {
	data := map[string]interface{}{}
	var errs ValidationErrors
	if s.SampleType != nil {
		for _, attr := range s.SampleType.SampleAttributes {
			key := attr.AccessorName()
			v, ok := values[key]
			if !ok || v == "" {
				v = nil
			}
			if v == nil && attr.Required {
				errs.Add(key, attr.Title+" can't be blank")
			}
			data[key] = v
			if attr.IsTitle && v != nil {
				if title, ok := v.(string); ok {
					s.Title = title
				}
			}
		}
	}
	if err := errs.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	s.JSONMetadata = string(raw)
	return nil
}

func (s *Sample) BeforeSave(tx *gorm.DB) error {
	s.ensureUUID()
	errs := s.validate()
	if _, err := s.ParseData(); err != nil {
		errs.Add("attribute_map", "Attribute values are not valid JSON")
	}
	return errs.Err()
}
