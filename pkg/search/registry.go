package search

import (
	"strings"
	"unicode"
)

// AssetOrder is the order searchable types are listed in
var AssetOrder = []string{
	"Person",
	"Project",
	"Institution",
	"Investigation",
	"Study",
	"Assay",
	"Strain",
	"DataFile",
	"Model",
	"Sop",
	"Publication",
	"Presentation",
	"SavedSearch",
	"Organism",
	"Event",
	"Programme",
	"Sample",
	"SampleType",
	"Node",
}

// excludedFromJSON are left out of "all" searches answered as JSON
var excludedFromJSON = map[string]bool{
	"Strain": true,
	"Sample": true,
}

// SearchableTypes returns the types an "all" search covers
func SearchableTypes(json bool) []string {
	types := make([]string, 0, len(AssetOrder))
	for _, t := range AssetOrder {
		if json && excludedFromJSON[t] {
			continue
		}
		types = append(types, t)
	}
	return types
}

// IsSearchable reports whether a type name is in AssetOrder
func IsSearchable(itemType string) bool {
	for _, t := range AssetOrder {
		if t == itemType {
			return true
		}
	}
	return false
}

// TypeName turns a search_type parameter ("data_files", "people", "Sop")
// into a type name ("DataFile", "Person", "Sop").
func TypeName(param string) string {
	return camelize(singularize(strings.TrimSpace(param)))
}

var irregularSingulars = map[string]string{
	"people": "person",
	"People": "Person",
}

func singularize(word string) string {
	if word == "" {
		return word
	}
	// only the last segment of a compound word is plural
	head, last := "", word
	if i := strings.LastIndex(word, "_"); i >= 0 {
		head, last = word[:i+1], word[i+1:]
	}
	if s, ok := irregularSingulars[last]; ok {
		return head + s
	}
	switch {
	case strings.HasSuffix(last, "ies") && len(last) > 3:
		last = last[:len(last)-3] + "y"
	case strings.HasSuffix(last, "ches"), strings.HasSuffix(last, "shes"),
		strings.HasSuffix(last, "sses"), strings.HasSuffix(last, "xes"):
		last = last[:len(last)-2]
	case strings.HasSuffix(last, "ss"), strings.HasSuffix(last, "us"):
	case strings.HasSuffix(last, "s"):
		last = last[:len(last)-1]
	}
	return head + last
}

func camelize(word string) string {
	var b strings.Builder
	upper := true
	for _, r := range word {
		if r == '_' || r == ' ' || r == '-' {
			upper = true
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
