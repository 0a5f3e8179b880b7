package isa

import (
	"fmt"

	"github.com/doodlesbykumbi/seek-in-go/pkg/model"

	"github.com/samber/lo"
)

// InvestigationsProvider is implemented by items that declare their investigation
type InvestigationsProvider interface {
	InvestigationIDs() []uint
}

// StudiesProvider is implemented by items that declare their study
type StudiesProvider interface {
	StudyIDs() []uint
}

// AssaysProvider is implemented by items that are assays
type AssaysProvider interface {
	AssayIDs() []uint
}

// CreatorsProvider is implemented by items that may credit creators
type CreatorsProvider interface {
	HasCreators() bool
}

// Graph answers association questions over the ISA tree
type Graph struct {
	store Store
}

// NewGraph creates a Graph backed by store
func NewGraph(store Store) *Graph {
	return &Graph{store: store}
}

// Assays returns the assays of an item. Investigations and studies yield the
// assays below them, assays yield themselves and any other item yields the
// assays linked to it through assay_assets.
func (g *Graph) Assays(item model.Item) ([]model.Assay, error) {
	if p, ok := item.(AssaysProvider); ok {
		return g.store.Assays(p.AssayIDs())
	}
	if p, ok := item.(StudiesProvider); ok {
		return g.store.AssaysOfStudies(p.StudyIDs())
	}
	if p, ok := item.(InvestigationsProvider); ok {
		studies, err := g.store.StudiesOfInvestigations(p.InvestigationIDs())
		if err != nil {
			return nil, err
		}
		return g.store.AssaysOfStudies(studyIDs(studies))
	}
	return g.store.AssaysLinkedTo(item.ItemType(), item.ItemID())
}

// Studies returns the studies of an item, falling back to the unique
// studies of its assays
func (g *Graph) Studies(item model.Item) ([]model.Study, error) {
	if p, ok := item.(StudiesProvider); ok {
		return g.store.Studies(lo.Uniq(p.StudyIDs()))
	}
	if p, ok := item.(InvestigationsProvider); ok {
		return g.store.StudiesOfInvestigations(p.InvestigationIDs())
	}
	assays, err := g.Assays(item)
	if err != nil {
		return nil, err
	}
	ids := lo.Uniq(lo.Map(assays, func(a model.Assay, _ int) uint { return a.StudyID }))
	if len(ids) == 0 {
		return nil, nil
	}
	return g.store.Studies(ids)
}

// Investigations returns the investigations of an item, falling back to the
// unique investigations of its studies
func (g *Graph) Investigations(item model.Item) ([]model.Investigation, error) {
	if p, ok := item.(InvestigationsProvider); ok {
		return g.store.Investigations(lo.Uniq(p.InvestigationIDs()))
	}
	studies, err := g.Studies(item)
	if err != nil {
		return nil, err
	}
	ids := lo.Uniq(lo.Map(studies, func(s model.Study, _ int) uint { return s.InvestigationID }))
	if len(ids) == 0 {
		return nil, nil
	}
	return g.store.Investigations(ids)
}

// Assets returns the assay_assets rows below an item, grouped by asset type
func (g *Graph) Assets(item model.Item) (map[string][]uint, error) {
	assays, err := g.Assays(item)
	if err != nil {
		return nil, err
	}
	if len(assays) == 0 {
		return map[string][]uint{}, nil
	}
	links, err := g.store.AssetsOfAssays(lo.Map(assays, func(a model.Assay, _ int) uint { return a.ID }))
	if err != nil {
		return nil, err
	}
	out := map[string][]uint{}
	for _, l := range links {
		if !lo.Contains(out[l.AssetType], l.AssetID) {
			out[l.AssetType] = append(out[l.AssetType], l.AssetID)
		}
	}
	return out, nil
}

// RelatedPeople is the contributor together with the creators of an item
// that credits creators, without duplicates
func (g *Graph) RelatedPeople(item model.Authorizable) ([]model.Person, error) {
	var ids []uint
	if c := item.ContributorPersonID(); c != nil {
		ids = append(ids, *c)
	}
	if p, ok := item.(CreatorsProvider); ok && p.HasCreators() {
		creators, err := g.store.CreatorIDs(item.ItemType(), item.ItemID())
		if err != nil {
			return nil, fmt.Errorf("failed to load creators: %w", err)
		}
		ids = append(ids, creators...)
	}
	ids = lo.Uniq(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	return g.store.People(ids)
}

// AssayTypeTitles lists the distinct assay type labels of an item's assays
func (g *Graph) AssayTypeTitles(item model.Item) ([]string, error) {
	assays, err := g.Assays(item)
	if err != nil {
		return nil, err
	}
	return labels(assays, func(a model.Assay) *string { return a.AssayTypeLabel }), nil
}

// TechnologyTypeTitles lists the distinct technology type labels of an
// item's assays
func (g *Graph) TechnologyTypeTitles(item model.Item) ([]string, error) {
	assays, err := g.Assays(item)
	if err != nil {
		return nil, err
	}
	return labels(assays, func(a model.Assay) *string { return a.TechnologyTypeLabel }), nil
}

func labels(assays []model.Assay, get func(model.Assay) *string) []string {
	var out []string
	for _, a := range assays {
		if l := get(a); l != nil && *l != "" && !lo.Contains(out, *l) {
			out = append(out, *l)
		}
	}
	return out
}

func studyIDs(studies []model.Study) []uint {
	return lo.Map(studies, func(s model.Study, _ int) uint { return s.ID })
}
