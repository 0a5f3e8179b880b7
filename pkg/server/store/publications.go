package store

import (
	"context"

	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
)

// ExportQuery filters the publications export
type ExportQuery struct {
	TitleContains      string
	ProjectIDs         []uint
	AuthorLastContains string
	// Sorts are "column asc" or "column desc" on title or published_date
	Sorts []string
}

// AuthorGroup is one suggestion of the author typeahead
type AuthorGroup struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	PersonID  *uint  `json:"person_id"`
	Count     int    `json:"count"`
}

// PublicationsStore reads and writes publications with their authors
type PublicationsStore interface {
	// Publication loads a publication with its authors. Returns ErrNotFound.
	Publication(id uint) (*model.Publication, error)

	// TitleTaken reports whether a publication in any of the projects
	// already uses the title
	TitleTaken(title string, projectIDs []uint) (bool, error)

	// SaveAuthors replaces the authors of a publication. Authors linked to
	// a person become creators of the publication.
	SaveAuthors(ctx context.Context, publicationID uint, authors []model.PublicationAuthor) error

	// Export returns the publications matching q with their authors
	Export(q ExportQuery) ([]model.Publication, error)

	// AuthorTypeahead groups the authors whose full name contains the
	// text, most frequent first
	AuthorTypeahead(fullName string, limit int) ([]AuthorGroup, error)
}
