package isa

import "github.com/doodlesbykumbi/seek-in-go/pkg/model"

// Store loads the records the graph walks over
type Store interface {
	Investigations(ids []uint) ([]model.Investigation, error)
	Studies(ids []uint) ([]model.Study, error)
	Assays(ids []uint) ([]model.Assay, error)

	StudiesOfInvestigations(investigationIDs []uint) ([]model.Study, error)
	AssaysOfStudies(studyIDs []uint) ([]model.Assay, error)

	// AssaysLinkedTo returns the assays with an assay_assets row for the item
	AssaysLinkedTo(itemType string, itemID uint) ([]model.Assay, error)

	// AssetsOfAssays returns the assay_assets rows of the given assays
	AssetsOfAssays(assayIDs []uint) ([]model.AssayAsset, error)

	CreatorIDs(itemType string, itemID uint) ([]uint, error)
	People(ids []uint) ([]model.Person, error)
}
