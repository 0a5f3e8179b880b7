package model

// Scale is a biological scale (organism, tissue, cell ...) items can be
// tagged with
type Scale struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Title string `gorm:"column:title;not null" json:"title"`
	Key   string `gorm:"column:key;not null" json:"key"`
	Pos   int    `gorm:"column:pos" json:"pos"`
}

func (Scale) TableName() string {
	return "scales"
}

// scalableTypes can be tagged with scales
var scalableTypes = map[string]bool{
	"Investigation": true,
	"Study":         true,
	"Assay":         true,
	"DataFile":      true,
	"Model":         true,
	"Sop":           true,
	"Publication":   true,
	"Presentation":  true,
}

// SupportsScales reports whether items of a type can carry scales
func SupportsScales(itemType string) bool {
	return scalableTypes[itemType]
}

// ScaleAssignment tags an item with a scale
type ScaleAssignment struct {
	ID       uint   `gorm:"primaryKey"`
	ScaleID  uint   `gorm:"column:scale_id;not null"`
	ItemType string `gorm:"column:item_type;not null"`
	ItemID   uint   `gorm:"column:item_id;not null"`
}

func (ScaleAssignment) TableName() string {
	return "scale_assignments"
}

// Tag is a free text label
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Text string `gorm:"column:text;not null" json:"text"`
}

func (Tag) TableName() string {
	return "tags"
}

// Annotation attaches a tag to an item under an attribute name ("tag",
// "expertise", ...)
type Annotation struct {
	ID              uint   `gorm:"primaryKey"`
	AnnotatableType string `gorm:"column:annotatable_type;not null"`
	AnnotatableID   uint   `gorm:"column:annotatable_id;not null"`
	AttributeName   string `gorm:"column:attribute_name;not null"`
	TagID           uint   `gorm:"column:tag_id;not null"`
	Tag             *Tag   `gorm:"foreignKey:TagID"`
}

func (Annotation) TableName() string {
	return "annotations"
}
