package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Publication is a paper, either fetched from PubMed/CrossRef or entered by hand
type Publication struct {
	Asset
	Abstract           string              `gorm:"column:abstract" json:"abstract"`
	Journal            string              `gorm:"column:journal" json:"journal"`
	PublishedDate      *time.Time          `gorm:"column:published_date" json:"published_date"`
	PubmedID           *int                `gorm:"column:pubmed_id" json:"pubmed_id"`
	DOI                *string             `gorm:"column:doi" json:"doi"`
	Citation           string              `gorm:"column:citation" json:"citation"`
	Volume             string              `gorm:"column:volume" json:"volume"`
	Issue              string              `gorm:"column:issue" json:"issue"`
	Pages              string              `gorm:"column:pages" json:"pages"`
	PublicationType    string              `gorm:"column:publication_type" json:"publication_type"`
	Projects           []Project           `gorm:"many2many:projects_publications;" json:"-"`
	PublicationAuthors []PublicationAuthor `gorm:"foreignKey:PublicationID" json:"-"`
}

func (Publication) TableName() string { return "publications" }
func (*Publication) ItemType() string { return "Publication" }

func (p *Publication) BeforeSave(tx *gorm.DB) error {
	p.ensureUUID()
	return p.validate().Err()
}

// IsPrePrint is true for publications without a journal
func (p *Publication) IsPrePrint() bool {
	return p.PublicationType == "preprint" || (p.Journal == "" && p.PubmedID == nil)
}

// PublicationAuthor is an author as printed. PersonID links the author to a profile.
type PublicationAuthor struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	PublicationID uint   `gorm:"column:publication_id;not null" json:"publication_id"`
	FirstName     string `gorm:"column:first_name" json:"first_name"`
	LastName      string `gorm:"column:last_name" json:"last_name"`
	AuthorIndex   int    `gorm:"column:author_index" json:"author_index"`
	PersonID      *uint  `gorm:"column:person_id" json:"person_id"`
}

func (PublicationAuthor) TableName() string {
	return "publication_authors"
}

// FullName is "First Last"
func (a *PublicationAuthor) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}
