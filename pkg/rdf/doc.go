// Package rdf writes catalog records as Turtle using the JERM ontology and
// Dublin Core terms.
package rdf
