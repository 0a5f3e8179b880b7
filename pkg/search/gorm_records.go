package search

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/doodlesbykumbi/seek-in-go/pkg/isa"
	"github.com/doodlesbykumbi/seek-in-go/pkg/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// assayLabels resolves the assay and technology type labels of an item
// through the assays it belongs to
type assayLabels interface {
	AssayTypeTitles(item model.Item) ([]string, error)
	TechnologyTypeTitles(item model.Item) ([]string, error)
}

// GormRecords implements Records and Queue on a gorm database
type GormRecords struct {
	db    *gorm.DB
	assay assayLabels
}

var (
	_ Records = (*GormRecords)(nil)
	_ Queue   = (*GormRecords)(nil)
)

// NewGormRecords creates a new GormRecords
func NewGormRecords(db *gorm.DB) *GormRecords {
	return &GormRecords{db: db, assay: isa.NewGraph(isa.NewGormStore(db))}
}

func (r *GormRecords) Load(itemType string, ids []uint) ([]model.Item, error) {
	proto, ok := model.NewItem(itemType)
	if !ok {
		return nil, fmt.Errorf("unknown item type %q", itemType)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	rows := reflect.New(reflect.SliceOf(reflect.TypeOf(proto).Elem()))
	if err := r.db.Where("id IN ?", ids).Find(rows.Interface()).Error; err != nil {
		return nil, err
	}

	byID := make(map[uint]model.Item, rows.Elem().Len())
	for i := 0; i < rows.Elem().Len(); i++ {
		item := rows.Elem().Index(i).Addr().Interface().(model.Item)
		byID[item.ItemID()] = item
	}
	items := make([]model.Item, 0, len(byID))
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			items = append(items, item)
		}
	}
	return items, nil
}

func (r *GormRecords) Scales() ([]model.Scale, error) {
	var scales []model.Scale
	err := r.db.Order("pos, id").Find(&scales).Error
	return scales, err
}

func (r *GormRecords) ScaleIDs(items []model.Item) (map[string][]uint, error) {
	out := make(map[string][]uint)
	for itemType, ids := range idsByType(items) {
		if !model.SupportsScales(itemType) {
			continue
		}
		for _, id := range ids {
			out[fmt.Sprintf("%s:%d", itemType, id)] = []uint{}
		}
		var rows []model.ScaleAssignment
		if err := r.db.Where("item_type = ? AND item_id IN ?", itemType, ids).
			Order("scale_id").Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, row := range rows {
			key := fmt.Sprintf("%s:%d", row.ItemType, row.ItemID)
			out[key] = append(out[key], row.ScaleID)
		}
	}
	return out, nil
}

type facetRow struct {
	ItemID uint
	Value  string
}

func (r *GormRecords) FacetValues(field string, items []model.Item) (map[string][]string, error) {
	if field == FacetAssayType || field == FacetTechnologyType {
		return r.assayFacetValues(field, items)
	}
	out := make(map[string][]string)
	for itemType, ids := range idsByType(items) {
		rows, err := r.facetRows(field, itemType, ids)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			key := fmt.Sprintf("%s:%d", itemType, row.ItemID)
			out[key] = append(out[key], row.Value)
		}
	}
	return out, nil
}

func (r *GormRecords) facetRows(field, itemType string, ids []uint) ([]facetRow, error) {
	var rows []facetRow
	switch field {
	case FacetProject:
		if itemType == "Project" {
			err := r.db.Table("projects").Select("id AS item_id, title AS value").
				Where("id IN ?", ids).Scan(&rows).Error
			return rows, err
		}
		table, column, ok := model.ProjectJoin(itemType)
		if !ok {
			return nil, nil
		}
		err := r.db.Table(table).
			Select(fmt.Sprintf("%s.%s AS item_id, projects.title AS value", table, column)).
			Joins(fmt.Sprintf("JOIN projects ON projects.id = %s.project_id", table)).
			Where(fmt.Sprintf("%s.%s IN ?", table, column), ids).
			Scan(&rows).Error
		return rows, err
	case FacetTag:
		err := r.db.Table("annotations").
			Select("annotations.annotatable_id AS item_id, tags.text AS value").
			Joins("JOIN tags ON tags.id = annotations.tag_id").
			Where("annotations.annotatable_type = ? AND annotations.annotatable_id IN ? AND annotations.attribute_name = ?", itemType, ids, "tag").
			Scan(&rows).Error
		return rows, err
	}
	return nil, fmt.Errorf("unknown facet %q", field)
}

// assayFacetValues labels assays with their own types and other assets
// with the types of the assays they are linked to
func (r *GormRecords) assayFacetValues(field string, items []model.Item) (map[string][]string, error) {
	titles := r.assay.AssayTypeTitles
	if field == FacetTechnologyType {
		titles = r.assay.TechnologyTypeTitles
	}
	out := make(map[string][]string)
	for _, item := range items {
		if _, ok := item.(model.Authorizable); !ok {
			continue
		}
		values, err := titles(item)
		if err != nil {
			return nil, fmt.Errorf("loading %s of %s: %w", field, model.ItemKey(item), err)
		}
		if len(values) > 0 {
			out[model.ItemKey(item)] = values
		}
	}
	return out, nil
}

type describer interface {
	ItemDescription() string
}

func (r *GormRecords) Document(item model.Item) (Document, error) {
	doc := Document{
		ItemType: item.ItemType(),
		ItemID:   item.ItemID(),
		Title:    item.ItemTitle(),
	}
	parts := []string{}
	if d, ok := item.(describer); ok {
		parts = append(parts, d.ItemDescription())
	}

	switch v := item.(type) {
	case *model.Programme:
		var titles []string
		if err := r.db.Table("institutions").
			Distinct("institutions.title").
			Joins("JOIN work_groups ON work_groups.institution_id = institutions.id").
			Joins("JOIN projects ON projects.id = work_groups.project_id").
			Where("projects.programme_id = ?", v.ID).
			Order("institutions.title").
			Pluck("institutions.title", &titles).Error; err != nil {
			return doc, err
		}
		parts = append(parts, v.Description, v.FundingDetails)
		parts = append(parts, titles...)
	case *model.Project:
		parts = append(parts, v.Description)
	case *model.Institution:
		parts = append(parts, v.City, v.Country)
	case *model.Person:
		parts = append(parts, v.Email)
	case *model.SampleType:
		parts = append(parts, v.Description)
	case *model.Assay:
		if v.AssayTypeLabel != nil {
			parts = append(parts, *v.AssayTypeLabel)
		}
		if v.TechnologyTypeLabel != nil {
			parts = append(parts, *v.TechnologyTypeLabel)
		}
	case *model.Publication:
		var authors []model.PublicationAuthor
		if err := r.db.Where("publication_id = ?", v.ID).Order("author_index").Find(&authors).Error; err != nil {
			return doc, err
		}
		parts = append(parts, v.Abstract, v.Journal)
		for _, a := range authors {
			parts = append(parts, a.FullName())
		}
	case *model.Sample:
		data, err := v.ParseData()
		if err != nil {
			return doc, fmt.Errorf("sample %d: %w", v.ID, err)
		}
		keys := make([]string, 0, len(data))
		for k := range data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if data[k] != nil {
				parts = append(parts, fmt.Sprint(data[k]))
			}
		}
	}

	var content []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			content = append(content, p)
		}
	}
	doc.Content = strings.Join(content, "\n")
	return doc, nil
}

func (r *GormRecords) IDs(itemType string) ([]uint, error) {
	proto, ok := model.NewItem(itemType)
	if !ok {
		return nil, fmt.Errorf("unknown item type %q", itemType)
	}
	var ids []uint
	err := r.db.Model(proto).Order("id").Pluck("id", &ids).Error
	return ids, err
}

func (r *GormRecords) PopReindexQueue(limit int) ([]model.ReindexingQueue, error) {
	var entries []model.ReindexingQueue
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Order("id").Limit(limit).Find(&entries).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		ids := make([]uint, len(entries))
		for i, e := range entries {
			ids[i] = e.ID
		}
		return tx.Where("id IN ?", ids).Delete(&model.ReindexingQueue{}).Error
	})
	return entries, err
}

func idsByType(items []model.Item) map[string][]uint {
	out := make(map[string][]uint)
	for _, item := range items {
		if _, ok := model.NewItem(item.ItemType()); !ok {
			continue
		}
		out[item.ItemType()] = append(out[item.ItemType()], item.ItemID())
	}
	return out
}
