package gorm

import (
	"context"
	"strings"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server/store"
)

// Ensure PublicationsStore implements store.PublicationsStore
var _ store.PublicationsStore = (*PublicationsStore)(nil)

// PublicationsStore implements store.PublicationsStore using GORM
type PublicationsStore struct {
	db *gorm.DB
}

// NewPublicationsStore creates a new PublicationsStore
func NewPublicationsStore(db *gorm.DB) *PublicationsStore {
	return &PublicationsStore{db: db}
}

var exportSortColumns = map[string]bool{
	"title":          true,
	"published_date": true,
	"journal":        true,
	"created_at":     true,
}

func (s *PublicationsStore) Publication(id uint) (*model.Publication, error) {
	var publication model.Publication
	err := s.withAuthors(s.db).Where("id = ?", id).Take(&publication).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &publication, nil
}

func (s *PublicationsStore) TitleTaken(title string, projectIDs []uint) (bool, error) {
	if len(projectIDs) == 0 {
		return false, nil
	}
	var count int64
	err := s.db.Model(&model.Publication{}).
		Joins("JOIN projects_publications ON projects_publications.publication_id = publications.id").
		Where("publications.title = ? AND projects_publications.project_id IN ?", title, projectIDs).
		Count(&count).Error
	return count > 0, err
}

func (s *PublicationsStore) SaveAuthors(ctx context.Context, publicationID uint, authors []model.PublicationAuthor) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("publication_id = ?", publicationID).Delete(&model.PublicationAuthor{}).Error; err != nil {
			return err
		}
		for i := range authors {
			authors[i].ID = 0
			authors[i].PublicationID = publicationID
		}
		if len(authors) > 0 {
			if err := tx.Create(&authors).Error; err != nil {
				return err
			}
		}

		var creatorIDs []uint
		for _, a := range authors {
			if a.PersonID != nil {
				creatorIDs = append(creatorIDs, *a.PersonID)
			}
		}
		creatorIDs = lo.Uniq(creatorIDs)
		if err := tx.Where("asset_type = ? AND asset_id = ?", "Publication", publicationID).
			Delete(&model.AssetsCreator{}).Error; err != nil {
			return err
		}
		if len(creatorIDs) > 0 {
			rows := make([]model.AssetsCreator, len(creatorIDs))
			for i, id := range creatorIDs {
				rows[i] = model.AssetsCreator{AssetType: "Publication", AssetID: publicationID, CreatorID: id, Pos: i}
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		if err := model.QueueAuthLookupUpdates(tx, "Publication", publicationID); err != nil {
			return err
		}
		return model.QueueReindex(tx, "Publication", publicationID)
	})
}

func (s *PublicationsStore) Export(q store.ExportQuery) ([]model.Publication, error) {
	db := s.withAuthors(s.db).Model(&model.Publication{})
	if q.TitleContains != "" {
		db = db.Where("publications.title ILIKE ?", "%"+escapeLike(q.TitleContains)+"%")
	}
	if len(q.ProjectIDs) > 0 {
		db = db.Where("publications.id IN (?)", s.db.Table("projects_publications").
			Select("publication_id").
			Where("project_id IN ?", q.ProjectIDs))
	}
	if q.AuthorLastContains != "" {
		db = db.Where("publications.id IN (?)", s.db.Model(&model.PublicationAuthor{}).
			Select("publication_id").
			Where("last_name ILIKE ?", "%"+escapeLike(q.AuthorLastContains)+"%"))
	}
	for _, sort := range q.Sorts {
		column, dir := parseSort(sort)
		if column == "" {
			continue
		}
		db = db.Order("publications." + column + " " + dir)
	}
	db = db.Order("publications.id")

	var publications []model.Publication
	err := db.Find(&publications).Error
	return publications, err
}

func (s *PublicationsStore) AuthorTypeahead(fullName string, limit int) ([]store.AuthorGroup, error) {
	var groups []store.AuthorGroup
	err := s.db.Model(&model.PublicationAuthor{}).
		Select("first_name, last_name, person_id, COUNT(*) AS count").
		Where("CONCAT(first_name, ' ', last_name) ILIKE ?", "%"+escapeLike(fullName)+"%").
		Group("first_name, last_name, person_id").
		Order("count DESC, last_name, first_name").
		Limit(limit).
		Scan(&groups).Error
	return groups, err
}

func (s *PublicationsStore) withAuthors(db *gorm.DB) *gorm.DB {
	return db.Preload("PublicationAuthors", func(db *gorm.DB) *gorm.DB {
		return db.Order("author_index, id")
	})
}

// parseSort accepts "column" or "column dir" on a known column
func parseSort(sort string) (column, dir string) {
	fields := strings.Fields(strings.ToLower(sort))
	if len(fields) == 0 || !exportSortColumns[fields[0]] {
		return "", ""
	}
	dir = "asc"
	if len(fields) > 1 && fields[1] == "desc" {
		dir = "desc"
	}
	return fields[0], dir
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
