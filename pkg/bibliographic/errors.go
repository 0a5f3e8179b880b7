package bibliographic

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the service has no record for the key
	ErrNotFound = errors.New("no publication found for the given identifier")
	// ErrBlankKey is returned for a lookup without a DOI or PubMed ID
	ErrBlankKey = errors.New("An error has occurred. Please enter either a DOI or a PubMed ID for the publication.")
)

// ServiceError is a failed call to PubMed or CrossRef
type ServiceError struct {
	Service    string
	StatusCode int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s request failed: %v", e.Service, e.Err)
	}
	return fmt.Sprintf("%s request failed with status %d", e.Service, e.StatusCode)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// ParseError is a response that could not be read
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s response: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var errInvalidJSON = errors.New("invalid JSON")
