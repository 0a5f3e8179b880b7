package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
)

// Facet fields a search can be filtered on
const (
	FacetType           = "type"
	FacetProject        = "project"
	FacetTag            = "tag"
	FacetAssayType      = "assay_type"
	FacetTechnologyType = "technology_type"
)

var facetFields = map[string]bool{
	FacetType:           true,
	FacetProject:        true,
	FacetTag:            true,
	FacetAssayType:      true,
	FacetTechnologyType: true,
}

// ParseFilters reads filter[<field>]=v1,v2 query parameters
func ParseFilters(params map[string][]string) map[string][]string {
	filters := make(map[string][]string)
	for name, values := range params {
		if !strings.HasPrefix(name, "filter[") || !strings.HasSuffix(name, "]") {
			continue
		}
		field := name[len("filter[") : len(name)-1]
		for _, v := range values {
			for _, part := range strings.Split(v, ",") {
				if part = strings.TrimSpace(part); part != "" {
					filters[field] = append(filters[field], part)
				}
			}
		}
	}
	return filters
}

// applyFilters keeps the items matching every filtered field. Within a field
// any of the listed values matches.
func (s *Searcher) applyFilters(items []model.Item, filters map[string][]string) ([]model.Item, error) {
	fields := make([]string, 0, len(filters))
	for field := range filters {
		if !facetFields[field] {
			return nil, &InvalidSearchError{Message: fmt.Sprintf("%s is not a valid filter", field)}
		}
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		accepted := make(map[string]bool, len(filters[field]))
		for _, v := range filters[field] {
			accepted[strings.ToLower(v)] = true
		}

		var values map[string][]string
		if field == FacetType {
			values = make(map[string][]string, len(items))
			for _, item := range items {
				values[model.ItemKey(item)] = []string{item.ItemType()}
			}
		} else {
			var err error
			values, err = s.records.FacetValues(field, items)
			if err != nil {
				return nil, fmt.Errorf("loading %s facet: %w", field, err)
			}
		}

		kept := items[:0:0]
		for _, item := range items {
			for _, v := range values[model.ItemKey(item)] {
				if accepted[strings.ToLower(v)] {
					kept = append(kept, item)
					break
				}
			}
		}
		items = kept
	}
	return items, nil
}
