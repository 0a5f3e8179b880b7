package jsonapi

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// MediaType is the JSON:API content type
const MediaType = "application/vnd.api+json"

// Document is a top level JSON:API document
type Document struct {
	Data     interface{}            `json:"data,omitempty"`
	Included []*Resource            `json:"included,omitempty"`
	Errors   []*Error               `json:"errors,omitempty"`
	Meta     map[string]interface{} `json:"meta,omitempty"`
	Links    map[string]string      `json:"links,omitempty"`
	JSONAPI  map[string]string      `json:"jsonapi,omitempty"`
}

// Resource is a resource object
type Resource struct {
	ID            string                   `json:"id,omitempty"`
	Type          string                   `json:"type"`
	Attributes    map[string]interface{}   `json:"attributes,omitempty"`
	Relationships map[string]*Relationship `json:"relationships,omitempty"`
	Links         map[string]string        `json:"links,omitempty"`
	Meta          map[string]interface{}   `json:"meta,omitempty"`
}

// Identifier is a resource identifier object
type Identifier struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Relationship holds linkage: a list for to-many, one identifier or null
// for to-one
type Relationship struct {
	Data interface{} `json:"data"`
}

// ToMany is a relationship over ids of one type. An empty list is kept as [].
func ToMany(resourceType string, ids []uint) *Relationship {
	data := make([]Identifier, 0, len(ids))
	for _, id := range ids {
		data = append(data, Identifier{ID: strconv.FormatUint(uint64(id), 10), Type: resourceType})
	}
	return &Relationship{Data: data}
}

// ToOne is a relationship to a single resource, or null
func ToOne(resourceType string, id *uint) *Relationship {
	if id == nil || *id == 0 {
		return &Relationship{Data: nil}
	}
	return &Relationship{Data: Identifier{ID: strconv.FormatUint(uint64(*id), 10), Type: resourceType}}
}

// Single wraps one resource
func Single(r *Resource, meta map[string]interface{}) *Document {
	return &Document{Data: r, Meta: meta, JSONAPI: map[string]string{"version": "1.0"}}
}

// List wraps a collection. A nil slice is written as [].
func List(rs []*Resource, meta map[string]interface{}) *Document {
	if rs == nil {
		rs = []*Resource{}
	}
	return &Document{Data: rs, Meta: meta, JSONAPI: map[string]string{"version": "1.0"}}
}

// Write sends a document with the JSON:API media type
func Write(w http.ResponseWriter, status int, doc *Document) {
	response, _ := json.Marshal(doc)

	w.Header().Set("Content-Type", MediaType)
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

// WriteErrors sends an error document. The status is taken from the first
// error.
func WriteErrors(w http.ResponseWriter, errs ...*Error) {
	status := http.StatusInternalServerError
	if len(errs) > 0 && errs[0].Status != "" {
		if code, err := strconv.Atoi(errs[0].Status); err == nil {
			status = code
		}
	}
	Write(w, status, &Document{Errors: errs})
}
