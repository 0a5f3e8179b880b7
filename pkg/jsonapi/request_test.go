package jsonapi

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		urlID        string
		expectDetail string
	}{
		{
			name:         "invalid json",
			body:         `{"data":`,
			expectDetail: "Invalid JSON",
		},
		{
			name:         "no data",
			body:         `{}`,
			expectDetail: "A POST/PUT request must have a data record",
		},
		{
			name:         "no type",
			body:         `{"data":{"attributes":{"title":"x"}}}`,
			expectDetail: "A POST/PUT request must specify a data:type",
		},
		{
			name:         "wrong type",
			body:         `{"data":{"type":"wrong","attributes":{"title":"x"}}}`,
			expectDetail: "The specified data:type does not match the URL's object (wrong vs. investigations)",
		},
		{
			name:         "id on create",
			body:         `{"data":{"type":"investigations","id":"3"}}`,
			expectDetail: "A POST request is not allowed to specify an id",
		},
		{
			name:         "id mismatch on update",
			body:         `{"data":{"type":"investigations","id":"4"}}`,
			urlID:        "3",
			expectDetail: "id specified by the PUT request does not match object-id in the JSON input",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tc.body), "investigations", tc.urlID)
			require.Error(t, err)
			errs := AsErrors(err)
			require.Len(t, errs, 1)
			assert.Equal(t, "422", errs[0].Status)
			assert.Contains(t, errs[0].Detail, tc.expectDetail)
		})
	}
}

func TestParseUpdateAcceptsMatchingOrMissingID(t *testing.T) {
	r, err := Parse(strings.NewReader(`{"data":{"type":"studies","id":3}}`), "studies", "3")
	require.NoError(t, err)
	assert.Equal(t, "3", r.IDString())

	r, err = Parse(strings.NewReader(`{"data":{"type":"studies"}}`), "studies", "3")
	require.NoError(t, err)
	assert.Equal(t, "", r.IDString())
}

func TestRelationshipIDs(t *testing.T) {
	body := `{"data":{"type":"studies","attributes":{},"relationships":{
		"investigation":{"data":{"id":"7","type":"investigations"}},
		"people":{"data":[{"id":"1","type":"people"},{"id":"2","type":"people"}]},
		"projects":{"data":null},
		"submitter":{"data":[{"id":"x","type":"people"}]}
	}}}`
	r, err := Parse(strings.NewReader(body), "studies", "")
	require.NoError(t, err)

	inv, ok, err := r.RelationshipID("investigation")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint(7), *inv)

	people, ok, err := r.RelationshipIDs("people")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []uint{1, 2}, people)

	projects, ok, err := r.RelationshipIDs("projects")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, projects)

	_, ok, err = r.RelationshipIDs("assays")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = r.RelationshipIDs("submitter")
	require.Error(t, err)
	assert.Equal(t, "/data/relationships/submitter", AsErrors(err)[0].Source.Pointer)
}

func TestRequire(t *testing.T) {
	r, err := Parse(strings.NewReader(`{"data":{"type":"investigations","attributes":{"title":"  ","description":"d"}}}`), "investigations", "")
	require.NoError(t, err)

	err = r.Require("title", "other_creators", "description")
	require.Error(t, err)
	errs := AsErrors(err)
	require.Len(t, errs, 2)
	assert.Equal(t, "Title can't be blank", errs[0].Detail)
	assert.Equal(t, "/data/attributes/title", errs[0].Source.Pointer)
	assert.Equal(t, "Other creators can't be blank", errs[1].Detail)
}

func TestDecodeAttributes(t *testing.T) {
	t.Run("patch leaves missing attributes nil", func(t *testing.T) {
		r, err := Parse(strings.NewReader(`{"data":{"type":"assays","attributes":{"assay_class":"EXP","assay_type":{"label":"Metabolomics"}}}}`), "assays", "")
		require.NoError(t, err)

		var attrs AssayAttributes
		require.NoError(t, r.DecodeAttributes(&attrs))
		assert.Nil(t, attrs.Title)
		assert.Equal(t, "EXP", *attrs.AssayClass)
		assert.Equal(t, "Metabolomics", *attrs.AssayType.Label)
	})

	t.Run("validation failures point at attributes", func(t *testing.T) {
		r, err := Parse(strings.NewReader(`{"data":{"type":"assays","attributes":{"title":"","assay_class":"OTHER"}}}`), "assays", "")
		require.NoError(t, err)

		var attrs AssayAttributes
		err = r.DecodeAttributes(&attrs)
		require.Error(t, err)
		errs := AsErrors(err)
		require.Len(t, errs, 2)
		assert.Equal(t, "Title can't be blank", errs[0].Detail)
		assert.Equal(t, "/data/attributes/title", errs[0].Source.Pointer)
		assert.Equal(t, "Assay class must be one of EXP MODEL", errs[1].Detail)
	})

	t.Run("wrong attribute type", func(t *testing.T) {
		r, err := Parse(strings.NewReader(`{"data":{"type":"investigations","attributes":{"position":"first"}}}`), "investigations", "")
		require.NoError(t, err)

		var attrs InvestigationAttributes
		err = r.DecodeAttributes(&attrs)
		require.Error(t, err)
		assert.Equal(t, "/data/attributes/position", AsErrors(err)[0].Source.Pointer)
	})
}
