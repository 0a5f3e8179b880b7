package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeName(t *testing.T) {
	tests := map[string]string{
		"data_files":     "DataFile",
		"people":         "Person",
		"studies":        "Study",
		"assays":         "Assay",
		"sops":           "Sop",
		"Sop":            "Sop",
		"saved_searches": "SavedSearch",
		"sample_types":   "SampleType",
		"programmes":     "Programme",
		"nodes":          "Node",
		"investigation":  "Investigation",
		"institutions":   "Institution",
		"widgets":        "Widget",
	}
	for in, want := range tests {
		assert.Equal(t, want, TypeName(in), in)
	}
}

func TestSearchableTypes(t *testing.T) {
	all := SearchableTypes(false)
	assert.Equal(t, AssetOrder, all)
	assert.Equal(t, "Person", all[0])

	json := SearchableTypes(true)
	assert.NotContains(t, json, "Strain")
	assert.NotContains(t, json, "Sample")
	assert.Len(t, json, len(AssetOrder)-2)

	assert.True(t, IsSearchable("DataFile"))
	assert.False(t, IsSearchable("Widget"))
}
