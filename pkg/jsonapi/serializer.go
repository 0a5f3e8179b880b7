package jsonapi

import (
	"sort"
	"strconv"
	"strings"

	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
)

// ResourceType is the JSON:API type of a catalog item type, e.g.
// "SampleType" is "sample_types" and "Person" is "people"
func ResourceType(itemType string) string {
	return pluralize(underscore(itemType))
}

func underscore(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func pluralize(s string) string {
	switch {
	case s == "person" || strings.HasSuffix(s, "_person"):
		return strings.TrimSuffix(s, "person") + "people"
	case len(s) > 1 && strings.HasSuffix(s, "y") && !strings.ContainsAny(s[len(s)-2:len(s)-1], "aeiou"):
		return s[:len(s)-1] + "ies"
	case strings.HasSuffix(s, "s"), strings.HasSuffix(s, "x"), strings.HasSuffix(s, "ch"), strings.HasSuffix(s, "sh"):
		return s + "es"
	default:
		return s + "s"
	}
}

// Relations carries what a serializer cannot read from the record itself
type Relations struct {
	Policy   *model.Policy
	People   []uint
	Projects []uint
	Creators []uint
	// ISA is rendered when set
	ISA *ISALinks
	// Extra relationships by name, e.g. "studies"
	Extra map[string]*Relationship
}

// ISALinks place an asset in the investigation, study and assay tree
type ISALinks struct {
	Investigations  []uint
	Studies         []uint
	Assays          []uint
	AssayTypes      []string
	TechnologyTypes []string
}

// Serializer renders catalog records as resources with links under BaseURL
type Serializer struct {
	BaseURL    string
	APIVersion string
}

// Meta is the document meta every response carries
func (s *Serializer) Meta() map[string]interface{} {
	return map[string]interface{}{
		"base_url":    s.BaseURL,
		"api_version": s.APIVersion,
	}
}

// Self is the url of an item
func (s *Serializer) Self(itemType string, id uint) string {
	return strings.TrimRight(s.BaseURL, "/") + "/" + ResourceType(itemType) + "/" + strconv.FormatUint(uint64(id), 10)
}

// Skeleton is the short form used in lists and search results
func (s *Serializer) Skeleton(item model.Item) *Resource {
	return &Resource{
		ID:         strconv.FormatUint(uint64(item.ItemID()), 10),
		Type:       ResourceType(item.ItemType()),
		Attributes: map[string]interface{}{"title": item.ItemTitle()},
		Links:      map[string]string{"self": s.Self(item.ItemType(), item.ItemID())},
	}
}

// Skeletons renders items in order. Items without an id are skipped.
func (s *Serializer) Skeletons(items []model.Item) []*Resource {
	out := make([]*Resource, 0, len(items))
	for _, item := range items {
		if item == nil || item.ItemID() == 0 {
			continue
		}
		out = append(out, s.Skeleton(item))
	}
	return out
}

func (s *Serializer) resource(item model.Item, attrs map[string]interface{}) *Resource {
	r := s.Skeleton(item)
	for k, v := range attrs {
		r.Attributes[k] = v
	}
	r.Relationships = map[string]*Relationship{}
	return r
}

// asset adds what every policy controlled record has
func (s *Serializer) asset(r *Resource, a *model.Asset, rel Relations) {
	r.Attributes["description"] = a.Description
	if rel.Policy != nil {
		r.Attributes["policy"] = ConvertPolicy(rel.Policy)
	}
	var submitter []uint
	if a.ContributorID != nil {
		submitter = []uint{*a.ContributorID}
	}
	r.Relationships["submitter"] = ToMany("people", submitter)
	r.Relationships["people"] = ToMany("people", rel.People)
	r.Relationships["projects"] = ToMany("projects", rel.Projects)
	r.Relationships["creators"] = ToMany("people", rel.Creators)
	if isa := rel.ISA; isa != nil {
		// a level of the tree does not list itself
		for name, ids := range map[string][]uint{
			"investigations": isa.Investigations,
			"studies":        isa.Studies,
			"assays":         isa.Assays,
		} {
			if name != r.Type {
				r.Relationships[name] = ToMany(name, ids)
			}
		}
		r.Attributes["assay_type_titles"] = titles(isa.AssayTypes)
		r.Attributes["technology_type_titles"] = titles(isa.TechnologyTypes)
	}
	for name, extra := range rel.Extra {
		r.Relationships[name] = extra
	}
	r.Meta = map[string]interface{}{
		"created":  a.CreatedAt,
		"modified": a.UpdatedAt,
		"uuid":     a.UUID,
		"base_url": s.BaseURL,
	}
}

// Investigation renders an investigation
func (s *Serializer) Investigation(inv *model.Investigation, rel Relations) *Resource {
	r := s.resource(inv, map[string]interface{}{
		"other_creators": inv.OtherCreators,
		"position":       inv.Position,
	})
	s.asset(r, &inv.Asset, rel)
	return r
}

// Study renders a study
func (s *Serializer) Study(study *model.Study, rel Relations) *Resource {
	r := s.resource(study, map[string]interface{}{
		"experimentalists": study.Experimentalists,
		"other_creators":   study.OtherCreators,
		"position":         study.Position,
	})
	s.asset(r, &study.Asset, rel)
	investigationID := study.InvestigationID
	r.Relationships["investigation"] = ToOne("investigations", &investigationID)
	return r
}

// Assay renders an assay
func (s *Serializer) Assay(assay *model.Assay, rel Relations) *Resource {
	r := s.resource(assay, map[string]interface{}{
		"assay_class":     assay.AssayClass,
		"assay_type":      labelAttribute(assay.AssayTypeLabel),
		"technology_type": labelAttribute(assay.TechnologyTypeLabel),
		"position":        assay.Position,
	})
	s.asset(r, &assay.Asset, rel)
	studyID := assay.StudyID
	r.Relationships["study"] = ToOne("studies", &studyID)
	return r
}

func titles(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func labelAttribute(label *string) map[string]interface{} {
	if label == nil {
		return map[string]interface{}{"label": nil}
	}
	return map[string]interface{}{"label": *label}
}

// SampleTypeRelations are the linkage of a sample type
type SampleTypeRelations struct {
	Samples                []uint
	LinkedSampleAttributes []uint
	Tags                   []uint
}

// SampleType renders a sample type. Attributes must be loaded.
func (s *Serializer) SampleType(st *model.SampleType, rel SampleTypeRelations) *Resource {
	r := s.resource(st, map[string]interface{}{
		"description":       st.Description,
		"uploaded_template": st.UploadedTemplate,
	})
	attrIDs := make([]uint, 0, len(st.SampleAttributes))
	for _, a := range st.SampleAttributes {
		attrIDs = append(attrIDs, a.ID)
	}
	r.Relationships["samples"] = ToMany("samples", rel.Samples)
	r.Relationships["sample_attributes"] = ToMany("sample_attributes", attrIDs)
	r.Relationships["linked_sample_attributes"] = ToMany("sample_attributes", rel.LinkedSampleAttributes)
	r.Relationships["tags"] = ToMany("tags", rel.Tags)
	return r
}

// Sample renders a sample with its attribute values
func (s *Serializer) Sample(sample *model.Sample, rel Relations) *Resource {
	r := s.resource(sample, map[string]interface{}{
		"attribute_map": sample.Data(),
	})
	s.asset(r, &sample.Asset, rel)
	delete(r.Attributes, "description")
	sampleTypeID := sample.SampleTypeID
	r.Relationships["sample_type"] = ToOne("sample_types", &sampleTypeID)
	return r
}

// ProgrammeRelations are the linkage of a programme
type ProgrammeRelations struct {
	Administrators []uint
	Projects       []uint
	People         []uint
	Institutions   []uint
}

// Programme renders a programme
func (s *Serializer) Programme(p *model.Programme, rel ProgrammeRelations) *Resource {
	r := s.resource(p, map[string]interface{}{
		"description":     p.Description,
		"web_page":        p.WebPage,
		"funding_details": p.FundingDetails,
		"is_activated":    p.IsActivated,
	})
	if p.IsRejected() {
		r.Attributes["activation_rejection_reason"] = *p.ActivationRejectionReason
	}
	r.Relationships["programme_administrators"] = ToMany("people", rel.Administrators)
	r.Relationships["projects"] = ToMany("projects", rel.Projects)
	r.Relationships["people"] = ToMany("people", rel.People)
	r.Relationships["institutions"] = ToMany("institutions", rel.Institutions)
	return r
}

// Publication renders a publication. Authors must be loaded.
func (s *Serializer) Publication(p *model.Publication, rel Relations) *Resource {
	authors := append([]model.PublicationAuthor(nil), p.PublicationAuthors...)
	sort.SliceStable(authors, func(i, j int) bool { return authors[i].AuthorIndex < authors[j].AuthorIndex })
	names := make([]string, 0, len(authors))
	for _, a := range authors {
		names = append(names, a.FullName())
	}
	r := s.resource(p, map[string]interface{}{
		"abstract":         p.Abstract,
		"journal":          p.Journal,
		"citation":         p.Citation,
		"pubmed_id":        p.PubmedID,
		"doi":              p.DOI,
		"published_date":   formatDate(p),
		"authors":          names,
		"publication_type": p.PublicationType,
	})
	s.asset(r, &p.Asset, rel)
	return r
}

func formatDate(p *model.Publication) interface{} {
	if p.PublishedDate == nil {
		return nil
	}
	return p.PublishedDate.Format("2006-01-02")
}

// Node renders a node with its versions. Versions and blobs are optional.
func (s *Serializer) Node(n *model.Node, blobs []model.ContentBlob, rel Relations) *Resource {
	self := s.Self(n.ItemType(), n.ID)
	versions := make([]map[string]interface{}, 0, len(n.Versions))
	for _, v := range n.Versions {
		entry := map[string]interface{}{
			"version": v.Version,
			"url":     self + "?version=" + strconv.Itoa(v.Version),
		}
		if v.DOI != nil {
			entry["doi"] = *v.DOI
		}
		versions = append(versions, entry)
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i]["version"].(int) < versions[j]["version"].(int) })

	contentBlobs := make([]map[string]interface{}, 0, len(blobs))
	for _, b := range blobs {
		entry := map[string]interface{}{
			"original_filename": b.OriginalFilename,
			"content_type":      b.ContentType,
			"size":              b.FileSize,
			"md5sum":            b.MD5,
			"link":              self + "/content_blobs/" + strconv.Itoa(b.AssetVersion),
		}
		if b.URL != nil {
			entry["url"] = *b.URL
		}
		contentBlobs = append(contentBlobs, entry)
	}

	r := s.resource(n, map[string]interface{}{
		"latest_version": n.Version,
		"versions":       versions,
		"content_blobs":  contentBlobs,
		"dois":           n.DOIs(),
	})
	s.asset(r, &n.Asset, rel)
	return r
}

// Person renders a profile
func (s *Serializer) Person(p *model.Person, projects, institutions []uint) *Resource {
	r := s.resource(p, map[string]interface{}{
		"first_name": p.FirstName,
		"last_name":  p.LastName,
	})
	r.Relationships["projects"] = ToMany("projects", projects)
	r.Relationships["institutions"] = ToMany("institutions", institutions)
	return r
}
