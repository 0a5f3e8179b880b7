package bibliographic

import (
	"strconv"
	"strings"
	"time"

	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
)

// Author is a publication author as printed
type Author struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	// Initials without dots or spaces, e.g. "WA"
	Initials string `json:"initials,omitempty"`
}

// FullName is "First Last"
func (a Author) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// initials falls back to the first letters of the first name
func (a Author) initials() string {
	if a.Initials != "" {
		return a.Initials
	}
	var b strings.Builder
	for _, part := range strings.FieldsFunc(a.FirstName, func(r rune) bool {
		return r == ' ' || r == '.' || r == '-'
	}) {
		b.WriteString(strings.ToUpper(string([]rune(part)[0])))
	}
	return b.String()
}

// dotted renders initials as "W. A."
func (a Author) dotted(sep string) string {
	letters := strings.Split(a.initials(), "")
	if len(letters) == 0 || letters[0] == "" {
		return ""
	}
	return strings.Join(letters, "."+sep) + "."
}

// Record is publication metadata independent of where it came from
type Record struct {
	PubmedID        int        `json:"pubmed_id,omitempty"`
	DOI             string     `json:"doi,omitempty"`
	Title           string     `json:"title"`
	Abstract        string     `json:"abstract,omitempty"`
	Journal         string     `json:"journal,omitempty"`
	PublishedDate   *time.Time `json:"published_date,omitempty"`
	Year            int        `json:"year,omitempty"`
	Volume          string     `json:"volume,omitempty"`
	Issue           string     `json:"issue,omitempty"`
	Pages           string     `json:"pages,omitempty"`
	PublicationType string     `json:"publication_type,omitempty"`
	Authors         []Author   `json:"authors"`
	MeshTerms       []string   `json:"mesh_terms,omitempty"`
}

// IsPrePrint is true for records with no journal
func (r *Record) IsPrePrint() bool {
	return r.PublicationType == "preprint" || (r.Journal == "" && r.PubmedID == 0)
}

// URL is the PubMed page for PubMed records, the DOI resolver otherwise
func (r *Record) URL() string {
	if r.PubmedID != 0 {
		return "http://www.ncbi.nlm.nih.gov/pubmed/" + strconv.Itoa(r.PubmedID)
	}
	if r.DOI != "" {
		return DOIURL(r.DOI)
	}
	return ""
}

// Citation is the short "Journal Vol(Issue):Pages" form
func (r *Record) Citation() string {
	var b strings.Builder
	b.WriteString(r.Journal)
	if r.Volume != "" {
		b.WriteString(" " + r.Volume)
	}
	if r.Issue != "" {
		b.WriteString("(" + r.Issue + ")")
	}
	if r.Pages != "" {
		b.WriteString(":" + r.Pages)
	}
	return strings.TrimSpace(b.String())
}

// Publication builds an unsaved publication from the record
func (r *Record) Publication() *model.Publication {
	p := &model.Publication{
		Asset:           model.Asset{Title: r.Title},
		Abstract:        r.Abstract,
		Journal:         r.Journal,
		PublishedDate:   r.PublishedDate,
		Volume:          r.Volume,
		Issue:           r.Issue,
		Pages:           r.Pages,
		Citation:        r.Citation(),
		PublicationType: r.PublicationType,
	}
	if r.PubmedID != 0 {
		id := r.PubmedID
		p.PubmedID = &id
	}
	if r.DOI != "" {
		doi := r.DOI
		p.DOI = &doi
	}
	for i, a := range r.Authors {
		p.PublicationAuthors = append(p.PublicationAuthors, model.PublicationAuthor{
			FirstName:   a.FirstName,
			LastName:    a.LastName,
			AuthorIndex: i,
		})
	}
	return p
}

// FromPublication is the record of a stored publication, for exporting
// publications that were entered by hand or fetched by DOI
func FromPublication(p *model.Publication) *Record {
	r := &Record{
		Title:           p.Title,
		Abstract:        p.Abstract,
		Journal:         p.Journal,
		PublishedDate:   p.PublishedDate,
		Volume:          p.Volume,
		Issue:           p.Issue,
		Pages:           p.Pages,
		PublicationType: p.PublicationType,
	}
	if p.PubmedID != nil {
		r.PubmedID = *p.PubmedID
	}
	if p.DOI != nil {
		r.DOI = *p.DOI
	}
	if p.PublishedDate != nil {
		r.Year = p.PublishedDate.Year()
	}
	for _, a := range p.PublicationAuthors {
		r.Authors = append(r.Authors, Author{FirstName: a.FirstName, LastName: a.LastName})
	}
	return r
}

// SplitName splits a full name on its last space. "Herbert Van de Sompel"
// keeps "Herbert Van de" as the first name, so FullName round trips.
func SplitName(full string) Author {
	full = strings.Join(strings.Fields(full), " ")
	i := strings.LastIndex(full, " ")
	if i < 0 {
		return Author{LastName: full}
	}
	return Author{FirstName: full[:i], LastName: full[i+1:]}
}
