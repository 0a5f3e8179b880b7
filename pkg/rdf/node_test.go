package rdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
)

func TestWriteNode(t *testing.T) {
	contributor := uint(2)
	doi := "10.5072/abc"
	node := &model.Node{
		Asset: model.Asset{
			ID:            5,
			Title:         `The "big" node`,
			Description:   "line one\nline two",
			ContributorID: &contributor,
			CreatedAt:     time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC),
		},
		Version:  2,
		Versions: []model.NodeVersion{{Version: 1, DOI: &doi}, {Version: 2}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteNode(&buf, node, Asset{
		BaseURL:  "http://localhost:3000/",
		Projects: []uint{1, 3},
		Creators: []uint{7},
	}))

	expected := `@prefix dc: <http://purl.org/dc/terms/> .
@prefix jerm: <http://jermontology.org/ontology/JERMOntology#> .
@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .

<http://localhost:3000/nodes/5>
    a jerm:Node ;
    dc:title "The \"big\" node" ;
    dc:description "line one\nline two" ;
    dc:created "2021-03-04T05:06:07Z"^^xsd:dateTime ;
    jerm:version "2"^^xsd:integer ;
    jerm:hasContributor <http://localhost:3000/people/2> ;
    jerm:hasCreator <http://localhost:3000/people/7> ;
    jerm:hasProject <http://localhost:3000/projects/1>, <http://localhost:3000/projects/3> ;
    rdfs:seeAlso <https://doi.org/10.5072/abc> .
`
	assert.Equal(t, expected, buf.String())
}

func TestGraphDropsEmptyLiterals(t *testing.T) {
	g := NewGraph()
	g.Add("http://x/1", "dc:title", String(""))
	g.Add("http://x/1", "dc:title", String("t"))
	g.Add("http://x/1", "a", Name("jerm:Assay"))

	assert.Equal(t, 2, g.Len())

	var buf bytes.Buffer
	_, err := g.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "<http://x/1>\n    a jerm:Assay ;\n    dc:title \"t\" .\n")
}
