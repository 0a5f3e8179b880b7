package rdf

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// MediaType is the Turtle content type
const MediaType = "text/turtle"

// Prefixes written at the top of every document
var Prefixes = []struct{ Name, IRI string }{
	{"dc", "http://purl.org/dc/terms/"},
	{"jerm", "http://jermontology.org/ontology/JERMOntology#"},
	{"rdf", "http://www.w3.org/1999/02/22-rdf-syntax-ns#"},
	{"rdfs", "http://www.w3.org/2000/01/rdf-schema#"},
	{"xsd", "http://www.w3.org/2001/XMLSchema#"},
}

// Term is an object in a triple: an IRI, a prefixed name or a literal
type Term interface {
	turtle() string
}

// IRI is an absolute IRI
type IRI string

func (i IRI) turtle() string { return "<" + escapeIRI(string(i)) + ">" }

// Name is a prefixed name such as jerm:Node
type Name string

func (n Name) turtle() string { return string(n) }

// Literal is a plain or typed literal
type Literal struct {
	Value    string
	Datatype Name
}

func (l Literal) turtle() string {
	s := `"` + escapeString(l.Value) + `"`
	if l.Datatype != "" {
		s += "^^" + string(l.Datatype)
	}
	return s
}

// String is a plain string literal
func String(s string) Literal { return Literal{Value: s} }

// DateTime is an xsd:dateTime literal in UTC
func DateTime(t time.Time) Literal {
	return Literal{Value: t.UTC().Format(time.RFC3339), Datatype: "xsd:dateTime"}
}

// Integer is an xsd:integer literal
func Integer(i int) Literal {
	return Literal{Value: fmt.Sprint(i), Datatype: "xsd:integer"}
}

// Graph collects statements about subjects. Subjects and predicates are
// written in insertion order.
type Graph struct {
	subjects []IRI
	stmts    map[IRI][]statement
}

type statement struct {
	predicate Name
	object    Term
}

// NewGraph returns an empty graph
func NewGraph() *Graph {
	return &Graph{stmts: map[IRI][]statement{}}
}

// Add records a triple. Empty literals are dropped.
func (g *Graph) Add(subject IRI, predicate Name, object Term) {
	if l, ok := object.(Literal); ok && l.Value == "" {
		return
	}
	if _, seen := g.stmts[subject]; !seen {
		g.subjects = append(g.subjects, subject)
	}
	g.stmts[subject] = append(g.stmts[subject], statement{predicate, object})
}

// Len is the number of triples
func (g *Graph) Len() int {
	n := 0
	for _, s := range g.stmts {
		n += len(s)
	}
	return n
}

// WriteTo writes the graph as Turtle
func (g *Graph) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	for _, p := range Prefixes {
		fmt.Fprintf(&b, "@prefix %s: <%s> .\n", p.Name, p.IRI)
	}
	for _, subject := range g.subjects {
		b.WriteString("\n")
		b.WriteString(subject.turtle())
		stmts := groupByPredicate(g.stmts[subject])
		for i, group := range stmts {
			sep := " ;"
			if i == len(stmts)-1 {
				sep = " ."
			}
			objects := make([]string, len(group.objects))
			for j, o := range group.objects {
				objects[j] = o.turtle()
			}
			fmt.Fprintf(&b, "\n    %s %s%s", group.predicate, strings.Join(objects, ", "), sep)
		}
		b.WriteString("\n")
	}
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

type predicateGroup struct {
	predicate Name
	objects   []Term
}

// groupByPredicate keeps "a" first and otherwise the first appearance order
func groupByPredicate(stmts []statement) []predicateGroup {
	var groups []predicateGroup
	index := map[Name]int{}
	for _, s := range stmts {
		i, ok := index[s.predicate]
		if !ok {
			i = len(groups)
			index[s.predicate] = i
			groups = append(groups, predicateGroup{predicate: s.predicate})
		}
		groups[i].objects = append(groups[i].objects, s.object)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].predicate == "a" && groups[j].predicate != "a"
	})
	return groups
}

var stringEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func escapeString(s string) string {
	return stringEscaper.Replace(s)
}

var iriEscaper = strings.NewReplacer(
	"<", "%3C",
	">", "%3E",
	`"`, "%22",
	" ", "%20",
	"{", "%7B",
	"}", "%7D",
	"|", "%7C",
	`\`, "%5C",
	"^", "%5E",
	"`", "%60",
)

func escapeIRI(s string) string {
	return iriEscaper.Replace(s)
}
