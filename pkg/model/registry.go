package model

import (
	"fmt"
	"sort"
)

var authorizableTypes = map[string]func() Authorizable{
	"Investigation": func() Authorizable { return &Investigation{} },
	"Study":         func() Authorizable { return &Study{} },
	"Assay":         func() Authorizable { return &Assay{} },
	"DataFile":      func() Authorizable { return &DataFile{} },
	"Sop":           func() Authorizable { return &Sop{} },
	"Model":         func() Authorizable { return &Model{} },
	"Presentation":  func() Authorizable { return &Presentation{} },
	"Event":         func() Authorizable { return &Event{} },
	"Strain":        func() Authorizable { return &Strain{} },
	"Node":          func() Authorizable { return &Node{} },
	"Publication":   func() Authorizable { return &Publication{} },
	"Sample":        func() Authorizable { return &Sample{} },
}

// NewAuthorizable returns an empty record of the named policy controlled type
func NewAuthorizable(itemType string) (Authorizable, bool) {
	f, ok := authorizableTypes[itemType]
	if !ok {
		return nil, false
	}
	return f(), true
}

// AuthorizableTypes lists every policy controlled type name, sorted
func AuthorizableTypes() []string {
	types := make([]string, 0, len(authorizableTypes))
	for t := range authorizableTypes {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

var itemTypes = map[string]func() Item{
	"Person":      func() Item { return &Person{} },
	"Project":     func() Item { return &Project{} },
	"Institution": func() Item { return &Institution{} },
	"Programme":   func() Item { return &Programme{} },
	"Organism":    func() Item { return &Organism{} },
	"SavedSearch": func() Item { return &SavedSearch{} },
	"SampleType":  func() Item { return &SampleType{} },
}

// NewItem returns an empty record of any listable type, policy controlled or not
func NewItem(itemType string) (Item, bool) {
	if a, ok := NewAuthorizable(itemType); ok {
		return a, true
	}
	f, ok := itemTypes[itemType]
	if !ok {
		return nil, false
	}
	return f(), true
}

// ItemKey is the "Type:id" key used to group and deduplicate items
func ItemKey(item Item) string {
	return fmt.Sprintf("%s:%d", item.ItemType(), item.ItemID())
}

// projectJoins maps a type to its project join table and item column
var projectJoins = map[string][2]string{
	"Investigation": {"investigations_projects", "investigation_id"},
	"DataFile":      {"data_files_projects", "data_file_id"},
	"Sop":           {"projects_sops", "sop_id"},
	"Model":         {"models_projects", "model_id"},
	"Presentation":  {"presentations_projects", "presentation_id"},
	"Event":         {"events_projects", "event_id"},
	"Node":          {"nodes_projects", "node_id"},
	"Sample":        {"projects_samples", "sample_id"},
	"Publication":   {"projects_publications", "publication_id"},
}

// ProjectJoin returns the project join table of a type and its item column.
// Studies and assays have none: they belong to their investigation's
// projects.
func ProjectJoin(itemType string) (table, column string, ok bool) {
	j, ok := projectJoins[itemType]
	return j[0], j[1], ok
}
