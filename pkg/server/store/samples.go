package store

import "github.com/doodlesbykumbi/seek-in-go/pkg/model"

// SampleTypeLinks are the ids a sample type serializer links to
type SampleTypeLinks struct {
	SampleIDs                []uint
	LinkedSampleAttributeIDs []uint
	TagIDs                   []uint
}

// SamplesStore reads sample types. Samples are written through
// AssetsStore.
type SamplesStore interface {
	// SampleTypes lists sample types ordered by title
	SampleTypes() ([]model.SampleType, error)

	// SampleType loads a sample type with its attributes, their types and
	// units, ordered by position. Returns ErrNotFound.
	SampleType(id uint) (*model.SampleType, error)

	// SampleTypeLinks lists the samples of a type, the attributes of other
	// types linking to it and its tags
	SampleTypeLinks(id uint) (*SampleTypeLinks, error)

	// Sample loads a sample with its sample type and attributes.
	// Returns ErrNotFound.
	Sample(id uint) (*model.Sample, error)
}
