package jsonapi

import (
	"time"

	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
)

// InvestigationAttributes are the writable attributes of an investigation
type InvestigationAttributes struct {
	Title         *string          `json:"title" validate:"omitnil,min=1,max=255"`
	Description   *string          `json:"description"`
	OtherCreators *string          `json:"other_creators"`
	Position      *int             `json:"position" validate:"omitnil,min=0"`
	Policy        *PolicyAttribute `json:"policy"`
}

// Apply copies the attributes that were sent onto inv
func (a *InvestigationAttributes) Apply(inv *model.Investigation) {
	applyAsset(&inv.Asset, a.Title, a.Description)
	setString(&inv.OtherCreators, a.OtherCreators)
	setInt(&inv.Position, a.Position)
}

// StudyAttributes are the writable attributes of a study
type StudyAttributes struct {
	Title            *string          `json:"title" validate:"omitnil,min=1,max=255"`
	Description      *string          `json:"description"`
	Experimentalists *string          `json:"experimentalists"`
	OtherCreators    *string          `json:"other_creators"`
	Position         *int             `json:"position" validate:"omitnil,min=0"`
	Policy           *PolicyAttribute `json:"policy"`
}

// Apply copies the attributes that were sent onto study
func (a *StudyAttributes) Apply(study *model.Study) {
	applyAsset(&study.Asset, a.Title, a.Description)
	setString(&study.Experimentalists, a.Experimentalists)
	setString(&study.OtherCreators, a.OtherCreators)
	setInt(&study.Position, a.Position)
}

// Label is an ontology term reference such as the assay type
type Label struct {
	Label *string `json:"label"`
	URI   *string `json:"uri" validate:"omitnil,url"`
}

// AssayAttributes are the writable attributes of an assay
type AssayAttributes struct {
	Title          *string          `json:"title" validate:"omitnil,min=1,max=255"`
	Description    *string          `json:"description"`
	AssayClass     *string          `json:"assay_class" validate:"omitnil,oneof=EXP MODEL"`
	AssayType      *Label           `json:"assay_type"`
	TechnologyType *Label           `json:"technology_type"`
	Position       *int             `json:"position" validate:"omitnil,min=0"`
	Policy         *PolicyAttribute `json:"policy"`
}

// Apply copies the attributes that were sent onto assay
func (a *AssayAttributes) Apply(assay *model.Assay) {
	applyAsset(&assay.Asset, a.Title, a.Description)
	setString(&assay.AssayClass, a.AssayClass)
	if a.AssayType != nil {
		assay.AssayTypeLabel = a.AssayType.Label
	}
	if a.TechnologyType != nil {
		assay.TechnologyTypeLabel = a.TechnologyType.Label
	}
	setInt(&assay.Position, a.Position)
}

// ProgrammeAttributes are the writable attributes of a programme
type ProgrammeAttributes struct {
	Title          *string `json:"title" validate:"omitnil,min=1,max=255"`
	Description    *string `json:"description"`
	WebPage        *string `json:"web_page" validate:"omitnil,omitempty,url"`
	FundingDetails *string `json:"funding_details"`
}

// Apply copies the attributes that were sent onto p
func (a *ProgrammeAttributes) Apply(p *model.Programme) {
	setString(&p.Title, a.Title)
	setString(&p.Description, a.Description)
	setString(&p.WebPage, a.WebPage)
	setString(&p.FundingDetails, a.FundingDetails)
}

// ContentBlobAttribute points a node version at remote content
type ContentBlobAttribute struct {
	URL              string `json:"url" validate:"required,url"`
	OriginalFilename string `json:"original_filename"`
	ContentType      string `json:"content_type"`
}

// NodeAttributes are the writable attributes of a node and of its new
// versions
type NodeAttributes struct {
	Title            *string               `json:"title" validate:"omitnil,min=1,max=255"`
	Description      *string               `json:"description"`
	RevisionComments *string               `json:"revision_comments"`
	ContentBlob      *ContentBlobAttribute `json:"content_blob"`
	Policy           *PolicyAttribute      `json:"policy"`
}

// Apply copies the attributes that were sent onto n
func (a *NodeAttributes) Apply(n *model.Node) {
	applyAsset(&n.Asset, a.Title, a.Description)
}

// AuthorAttribute is one author of a publication entered by hand. A
// full_name is split on its last space when first and last are absent.
type AuthorAttribute struct {
	FullName  string `json:"full_name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	PersonID  *uint  `json:"person_id"`
}

// PublicationAttributes are the writable attributes of a publication.
// Either pubmed_id or doi fetches the details, otherwise title is needed.
type PublicationAttributes struct {
	PubmedID        *int              `json:"pubmed_id" validate:"omitnil,min=1"`
	DOI             *string           `json:"doi"`
	Title           *string           `json:"title" validate:"omitnil,min=1,max=255"`
	Abstract        *string           `json:"abstract"`
	Journal         *string           `json:"journal"`
	PublishedDate   *string           `json:"published_date" validate:"omitnil,datetime=2006-01-02"`
	Volume          *string           `json:"volume"`
	Issue           *string           `json:"issue"`
	Pages           *string           `json:"pages"`
	PublicationType *string           `json:"publication_type"`
	Authors         []AuthorAttribute `json:"authors" validate:"dive"`
	Policy          *PolicyAttribute  `json:"policy"`
}

// Apply copies the details that were sent onto p
func (a *PublicationAttributes) Apply(p *model.Publication) error {
	applyAsset(&p.Asset, a.Title, nil)
	setString(&p.Abstract, a.Abstract)
	setString(&p.Journal, a.Journal)
	setString(&p.Volume, a.Volume)
	setString(&p.Issue, a.Issue)
	setString(&p.Pages, a.Pages)
	setString(&p.PublicationType, a.PublicationType)
	if a.PublishedDate != nil {
		d, err := time.Parse("2006-01-02", *a.PublishedDate)
		if err != nil {
			return err
		}
		p.PublishedDate = &d
	}
	return nil
}

// SampleAttributes are the writable attributes of a sample
type SampleAttributes struct {
	AttributeMap map[string]interface{} `json:"attribute_map"`
	Policy       *PolicyAttribute       `json:"policy"`
}

func applyAsset(asset *model.Asset, title, description *string) {
	setString(&asset.Title, title)
	setString(&asset.Description, description)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
