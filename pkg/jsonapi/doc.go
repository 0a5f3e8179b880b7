// Package jsonapi reads and writes JSON:API documents.
//
// Requests are parsed with Parse, which checks data:type and id against the
// URL before anything is decoded. Attribute payloads are decoded into
// per-type structs and checked with go-playground/validator; failures come
// back as Errors with a source pointer into the request document.
//
// Serializer builds the response resources for each catalog type.
package jsonapi
