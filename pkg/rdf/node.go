package rdf

import (
	"io"
	"strconv"
	"strings"

	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
)

// Asset is what the asset writers need besides the record
type Asset struct {
	// BaseURL is the site root, e.g. "https://fairdomhub.org"
	BaseURL  string
	Projects []uint
	Creators []uint
}

func (a Asset) iri(kind string, id uint) IRI {
	return IRI(strings.TrimRight(a.BaseURL, "/") + "/" + kind + "/" + strconv.FormatUint(uint64(id), 10))
}

// NodeGraph describes a node, its versions and its people
func NodeGraph(n *model.Node, a Asset) *Graph {
	g := NewGraph()
	subject := a.iri("nodes", n.ID)

	g.Add(subject, "a", Name("jerm:Node"))
	g.Add(subject, "dc:title", String(n.Title))
	g.Add(subject, "dc:description", String(n.Description))
	g.Add(subject, "dc:identifier", String(n.UUID))
	if !n.CreatedAt.IsZero() {
		g.Add(subject, "dc:created", DateTime(n.CreatedAt))
	}
	if !n.UpdatedAt.IsZero() {
		g.Add(subject, "dc:modified", DateTime(n.UpdatedAt))
	}
	g.Add(subject, "jerm:version", Integer(n.Version))
	if n.ContributorID != nil {
		g.Add(subject, "jerm:hasContributor", a.iri("people", *n.ContributorID))
	}
	for _, id := range a.Creators {
		g.Add(subject, "jerm:hasCreator", a.iri("people", id))
	}
	for _, id := range a.Projects {
		g.Add(subject, "jerm:hasProject", a.iri("projects", id))
	}
	for _, doi := range n.DOIs() {
		g.Add(subject, "rdfs:seeAlso", IRI("https://doi.org/"+doi))
	}
	return g
}

// WriteNode writes a node as Turtle
func WriteNode(w io.Writer, n *model.Node, a Asset) error {
	_, err := NodeGraph(n, a).WriteTo(w)
	return err
}
