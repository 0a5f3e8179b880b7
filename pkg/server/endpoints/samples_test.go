package endpoints

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/seek-in-go/pkg/authz"
	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server/store"
)

func strainType() *model.SampleType {
	return &model.SampleType{
		ID:          2,
		Title:       "Strain",
		Description: "A *yeast* strain",
		SampleAttributes: []model.SampleAttribute{
			{ID: 1, Title: "Name", IsTitle: true, Required: true, SampleAttributeType: &model.SampleAttributeType{Title: "String"}},
			{ID: 2, Title: "Growth rate", Unit: &model.Unit{Symbol: "h-1"}, SampleAttributeType: &model.SampleAttributeType{Title: "Real number"}},
		},
	}
}

func TestShowSampleType(t *testing.T) {
	links := &store.SampleTypeLinks{SampleIDs: []uint{7, 8}, TagIDs: []uint{3}}

	t.Run("renders the attributes as HTML", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.samples.On("SampleType", uint(2)).Return(strainType(), nil)
		env.samples.On("SampleTypeLinks", uint(2)).Return(links, nil)

		w := env.do("GET", "/sample_types/2", nil, nil)

		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "<em>yeast</em>")
		assert.Contains(t, body, "Name (String)")
		assert.Contains(t, body, "( h-1 )")
		assert.Contains(t, body, "2 samples")
	})

	t.Run("answers JSON:API with its samples", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.samples.On("SampleType", uint(2)).Return(strainType(), nil)
		env.samples.On("SampleTypeLinks", uint(2)).Return(links, nil)

		w := env.do("GET", "/sample_types/2?format=json", nil, nil)

		require.Equal(t, http.StatusOK, w.Code)
		res := decodeDocument(t, w).single(t)
		assert.Equal(t, "sample_types", res.Type)
		assert.JSONEq(t, `[{"id":"7","type":"samples"},{"id":"8","type":"samples"}]`, string(res.Relationships["samples"].Data))
	})

	t.Run("answers 404 for unknown ids", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.samples.On("SampleType", uint(9)).Return(nil, store.ErrNotFound)

		w := env.do("GET", "/sample_types/9", nil, nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestListSampleTypes(t *testing.T) {
	env := newTestEnv(t, nil)
	env.samples.On("SampleTypes").Return([]model.SampleType{*strainType()}, nil)

	w := env.do("GET", "/sample_types", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	items := decodeDocument(t, w).list(t)
	require.Len(t, items, 1)
	assert.Equal(t, "Strain", items[0].Attributes["title"])
}

func TestCreateSample(t *testing.T) {
	body := func(attrs string) *strings.Reader {
		return strings.NewReader(`{"data":{"type":"samples","attributes":{"attribute_map":` + attrs + `},
			"relationships":{"sample_type":{"data":{"id":"2","type":"sample_types"}},
			"projects":{"data":[{"id":"4","type":"projects"}]}}}}`)
	}

	t.Run("takes the title from the title attribute", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.samples.On("SampleType", uint(2)).Return(strainType(), nil)
		env.assets.On("Create", mock.Anything, mock.AnythingOfType("*model.Sample"), mock.Anything).
			Run(func(args mock.Arguments) { args.Get(1).(*model.Sample).ID = 15 }).
			Return(nil)
		env.expectRelations(4)

		w := env.do("POST", "/samples", body(`{"name":"BY4741","growth_rate":0.4}`), registeredUser(4, 3))

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		res := decodeDocument(t, w).single(t)
		assert.Equal(t, "15", res.ID)
		assert.Equal(t, "BY4741", res.Attributes["title"])
		assert.Equal(t, map[string]interface{}{"name": "BY4741", "growth_rate": 0.4}, res.Attributes["attribute_map"])
		assert.JSONEq(t, `{"id":"2","type":"sample_types"}`, string(res.Relationships["sample_type"].Data))
	})

	t.Run("reports missing required values", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.samples.On("SampleType", uint(2)).Return(strainType(), nil)

		w := env.do("POST", "/samples", body(`{"growth_rate":0.4}`), registeredUser(4, 3))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "Name can't be blank")
		env.assets.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("requires a sample type", func(t *testing.T) {
		env := newTestEnv(t, nil)

		w := env.do("POST", "/samples", strings.NewReader(`{"data":{"type":"samples","attributes":{}}}`), registeredUser(4, 3))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		doc := decodeDocument(t, w)
		require.Len(t, doc.Errors, 1)
		assert.Equal(t, "/data/relationships/sample_type", doc.Errors[0].Source.Pointer)
	})

	t.Run("reports an unknown sample type", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.samples.On("SampleType", uint(2)).Return(nil, store.ErrNotFound)

		w := env.do("POST", "/samples", body(`{}`), registeredUser(4, 3))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "Sample type not found")
	})
}

func TestUpdateSample(t *testing.T) {
	existing := func() *model.Sample {
		st := strainType()
		return &model.Sample{Asset: model.Asset{ID: 15, Title: "BY4741"}, SampleTypeID: st.ID, SampleType: st,
			JSONMetadata: `{"name":"BY4741","growth_rate":0.4}`}
	}

	t.Run("refuses to change the sample type", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.samples.On("Sample", uint(15)).Return(existing(), nil)
		env.allow("Sample", 15, authz.ActionEdit, true)

		w := env.do("PATCH", "/samples/15", strings.NewReader(`{"data":{"type":"samples","id":"15",
			"relationships":{"sample_type":{"data":{"id":"3","type":"sample_types"}}}}}`), registeredUser(4, 3))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "The sample type of a sample cannot be changed")
	})

	t.Run("replaces the values", func(t *testing.T) {
		env := newTestEnv(t, nil)
		sample := existing()
		env.samples.On("Sample", uint(15)).Return(sample, nil)
		env.allow("Sample", 15, authz.ActionEdit, true)
		env.assets.On("Update", mock.Anything, sample, mock.Anything).Return(nil)
		env.expectRelations(4)

		w := env.do("PATCH", "/samples/15", strings.NewReader(`{"data":{"type":"samples","id":"15",
			"attributes":{"attribute_map":{"name":"W303"}}}}`), registeredUser(4, 3))

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		res := decodeDocument(t, w).single(t)
		assert.Equal(t, "W303", res.Attributes["title"])
		assert.Equal(t, map[string]interface{}{"name": "W303", "growth_rate": nil}, res.Attributes["attribute_map"])
		env.authorizer.AssertCalled(t, "Invalidate", "Sample", uint(15))
	})

	t.Run("requires edit permission", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.samples.On("Sample", uint(15)).Return(existing(), nil)
		env.allow("Sample", 15, authz.ActionEdit, false)

		w := env.do("PATCH", "/samples/15", strings.NewReader(`{"data":{"type":"samples","id":"15"}}`), registeredUser(4, 3))

		assert.Equal(t, http.StatusForbidden, w.Code)
		env.assets.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestShowSamplePlacesItInTheISATree(t *testing.T) {
	env := newTestEnv(t, nil)
	st := strainType()
	sample := &model.Sample{Asset: model.Asset{ID: 15, Title: "BY4741"}, SampleTypeID: st.ID, SampleType: st}
	env.samples.On("Sample", uint(15)).Return(sample, nil)
	env.allow("Sample", 15, authz.ActionView, true)
	env.assets.On("Relations", sample).Return(&store.AssetRelations{ProjectIDs: []uint{4}}, nil)
	env.isa.On("RelatedPeople", sample).Return([]model.Person{}, nil)
	env.isa.On("Investigations", sample).Return([]model.Investigation{{Asset: model.Asset{ID: 1}}}, nil)
	env.isa.On("Studies", sample).Return([]model.Study{{Asset: model.Asset{ID: 2}}}, nil)
	env.isa.On("Assays", sample).Return([]model.Assay{{Asset: model.Asset{ID: 3}}, {Asset: model.Asset{ID: 6}}}, nil)
	env.isa.On("AssayTypeTitles", sample).Return([]string{"Metabolomics"}, nil)
	env.isa.On("TechnologyTypeTitles", sample).Return(nil, nil)

	w := env.do("GET", "/samples/15", nil, nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decodeDocument(t, w).single(t)
	assert.JSONEq(t, `[{"id":"1","type":"investigations"}]`, string(res.Relationships["investigations"].Data))
	assert.JSONEq(t, `[{"id":"2","type":"studies"}]`, string(res.Relationships["studies"].Data))
	assert.JSONEq(t, `[{"id":"3","type":"assays"},{"id":"6","type":"assays"}]`, string(res.Relationships["assays"].Data))
	assert.Equal(t, []interface{}{"Metabolomics"}, res.Attributes["assay_type_titles"])
	assert.Equal(t, []interface{}{}, res.Attributes["technology_type_titles"])
	env.isa.AssertExpectations(t)
}

func TestShowSampleFailsWhenTheISATreeCannotBeRead(t *testing.T) {
	env := newTestEnv(t, nil)
	st := strainType()
	sample := &model.Sample{Asset: model.Asset{ID: 15, Title: "BY4741"}, SampleTypeID: st.ID, SampleType: st}
	env.samples.On("Sample", uint(15)).Return(sample, nil)
	env.allow("Sample", 15, authz.ActionView, true)
	env.assets.On("Relations", sample).Return(&store.AssetRelations{}, nil)
	env.isa.On("RelatedPeople", sample).Return([]model.Person{}, nil)
	env.isa.On("Investigations", sample).Return(nil, errors.New("connection refused"))

	w := env.do("GET", "/samples/15", nil, nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
