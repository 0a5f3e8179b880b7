package search

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/doodlesbykumbi/seek-in-go/pkg/logging"
	"github.com/doodlesbykumbi/seek-in-go/pkg/metrics"
	"github.com/doodlesbykumbi/seek-in-go/pkg/model"

	"golang.org/x/sync/errgroup"
)

// AllTypes is the search_type covering every searchable type
const AllTypes = "all"

// AllScales is the scale key holding every result
const AllScales = "all"

const defaultPageSize = 30

// Config switches parts of the dispatcher on and off
type Config struct {
	Enabled         bool
	ExternalEnabled bool
	FacetsEnabled   bool

	// PageSize is the number of hits asked for per type before widening
	// the page to the full hit count
	PageSize int

	// Concurrency bounds the per-type index queries in flight
	Concurrency int
}

// Request is a search as submitted by a user
type Request struct {
	// Query is the q parameter, SearchQuery the legacy search_query one
	Query       string
	SearchQuery string

	// Type is the search_type parameter, blank for all types
	Type string

	// JSON is set when the response is rendered as JSON
	JSON bool

	IncludeExternal bool

	// Filters maps a facet field to the accepted values
	Filters map[string][]string

	// Scale selects a scale group, blank for all
	Scale string

	User *model.User
}

// Result holds the visible matches of a search
type Result struct {
	// Query is the filtered query as shown back to the user
	Query string
	Type  string

	// All holds every visible match, in type order
	All []model.Item

	// Scaled groups All by scale key, including AllScales
	Scaled map[string][]model.Item

	// ScaleKey is the selected group and Items its content
	ScaleKey string
	Items    []model.Item
}

// Notice is the message summarizing the result
func (r *Result) Notice() string {
	q := html.EscapeString(r.Query)
	switch n := len(r.Items); n {
	case 0:
		return fmt.Sprintf("No matches found for '<b>%s</b>'.", q)
	case 1:
		return fmt.Sprintf("1 item matched '<b>%s</b>' within their title or content.", q)
	default:
		return fmt.Sprintf("%d items matched '<b>%s</b>' within their title or content.", n, q)
	}
}

// Searcher runs searches against an index and the database
type Searcher struct {
	config   Config
	index    Index
	records  Records
	viewer   Viewer
	external ExternalSearcher
}

// NewSearcher creates a Searcher. external may be nil.
func NewSearcher(config Config, index Index, records Records, viewer Viewer, external ExternalSearcher) *Searcher {
	if config.PageSize <= 0 {
		config.PageSize = defaultPageSize
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 4
	}
	return &Searcher{
		config:   config,
		index:    index,
		records:  records,
		viewer:   viewer,
		external: external,
	}
}

// Search runs req. It returns an *InvalidSearchError for a blank query or an
// unknown type, ErrSearchDisabled when search is off and an error wrapping
// ErrServiceUnavailable when the index is down.
func (s *Searcher) Search(ctx context.Context, req Request) (*Result, error) {
	if !s.config.Enabled {
		return nil, ErrSearchDisabled
	}

	raw := req.Query
	if raw == "" {
		raw = req.SearchQuery
	}
	query := FilterTerms(raw)
	keywords := strings.ToLower(query)
	if strings.TrimSpace(keywords) == "" {
		return nil, &InvalidSearchError{Message: "Query string is empty or blank"}
	}

	searchType := strings.ToLower(strings.TrimSpace(req.Type))
	if searchType == "" {
		searchType = AllTypes
	}

	var types []string
	if searchType == AllTypes {
		types = SearchableTypes(req.JSON)
	} else {
		name := TypeName(searchType)
		if !IsSearchable(name) {
			return nil, &InvalidSearchError{Message: fmt.Sprintf("%s is not a valid search type", searchType)}
		}
		types = []string{name}
	}

	items, err := s.searchTypes(ctx, types, keywords)
	if err != nil {
		return nil, err
	}

	if req.IncludeExternal && s.config.ExternalEnabled && s.external != nil {
		externalType := searchType
		if externalType != AllTypes {
			externalType = types[0]
		}
		found, err := s.external.SearchExternal(ctx, keywords, externalType)
		if err != nil {
			logging.Log.WithError(err).WithFields(logging.Fields{
				"query": keywords,
				"type":  externalType,
			}).Warn("external search failed")
		} else {
			items = union(items, found)
		}
	}

	if s.config.FacetsEnabled && len(req.Filters) > 0 {
		items, err = s.applyFilters(items, req.Filters)
		if err != nil {
			return nil, err
		}
	}

	items = ownedByUser(items, req.User)
	items, err = s.viewer.FilterViewable(req.User, items)
	if err != nil {
		return nil, fmt.Errorf("filtering viewable results: %w", err)
	}

	scaled, err := s.groupByScale(items)
	if err != nil {
		return nil, err
	}

	key := req.Scale
	if key == "" {
		key = AllScales
	}
	return &Result{
		Query:    query,
		Type:     searchType,
		All:      items,
		Scaled:   scaled,
		ScaleKey: key,
		Items:    scaled[key],
	}, nil
}

// searchTypes queries the index for each type concurrently and unions the
// loaded records in the order of types.
func (s *Searcher) searchTypes(ctx context.Context, types []string, keywords string) ([]model.Item, error) {
	perType := make([][]model.Item, len(types))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Concurrency)
	for i, itemType := range types {
		i, itemType := i, itemType
		g.Go(func() error {
			ids, err := s.searchType(gctx, itemType, keywords)
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				return nil
			}
			items, err := s.records.Load(itemType, ids)
			if err != nil {
				return fmt.Errorf("loading %s results: %w", itemType, err)
			}
			perType[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var items []model.Item
	for _, found := range perType {
		items = union(items, found)
	}
	return items, nil
}

// searchType asks for one page of hits and widens it to every hit when the
// first page is full.
func (s *Searcher) searchType(ctx context.Context, itemType, keywords string) ([]uint, error) {
	start := time.Now()
	ids, err := s.index.Search(ctx, itemType, keywords, s.config.PageSize)
	if err == nil && len(ids) >= s.config.PageSize {
		var total int
		total, err = s.index.Count(ctx, itemType, keywords)
		if err == nil && total > s.config.PageSize {
			ids, err = s.index.Search(ctx, itemType, keywords, total)
		}
	}
	metrics.RecordSearch(itemType, time.Since(start), len(ids), err)

	if err != nil {
		if errors.Is(err, ErrServiceUnavailable) {
			logging.Log.WithError(err).WithField("type", itemType).Error("An error with search occurred, index connection refused.")
			return nil, err
		}
		return nil, fmt.Errorf("searching %s: %w", itemType, err)
	}
	return ids, nil
}

// union appends the items of b missing from a, keeping order. Nil items are
// dropped.
func union(a, b []model.Item) []model.Item {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]model.Item, 0, len(a)+len(b))
	for _, list := range [][]model.Item{a, b} {
		for _, item := range list {
			if item == nil {
				continue
			}
			key := resultKey(item)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, item)
		}
	}
	return out
}

// ownedByUser drops saved searches belonging to someone else
func ownedByUser(items []model.Item, user *model.User) []model.Item {
	out := items[:0:0]
	for _, item := range items {
		if saved, ok := item.(*model.SavedSearch); ok {
			if user == nil || saved.UserID != user.ID {
				continue
			}
		}
		out = append(out, item)
	}
	return out
}

func (s *Searcher) groupByScale(items []model.Item) (map[string][]model.Item, error) {
	scaled := map[string][]model.Item{AllScales: items}
	scales, err := s.records.Scales()
	if err != nil {
		return nil, fmt.Errorf("loading scales: %w", err)
	}
	if len(scales) == 0 {
		return scaled, nil
	}

	assigned, err := s.records.ScaleIDs(items)
	if err != nil {
		return nil, fmt.Errorf("loading scale assignments: %w", err)
	}
	// items of types without scale support belong to every group
	for _, scale := range scales {
		group := make([]model.Item, 0, len(items))
		for _, item := range items {
			ids, ok := assigned[model.ItemKey(item)]
			if !ok || containsID(ids, scale.ID) {
				group = append(group, item)
			}
		}
		scaled[scale.Key] = group
	}
	return scaled, nil
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
