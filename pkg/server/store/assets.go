package store

import (
	"context"

	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
)

// AssetLinks are the associations written alongside an asset. Nil fields
// are left as they are.
type AssetLinks struct {
	Policy     *model.Policy
	ProjectIDs *[]uint
	CreatorIDs *[]uint
}

// AssetRelations are the associations read back for serialization
type AssetRelations struct {
	Policy     *model.Policy
	ProjectIDs []uint
	CreatorIDs []uint
}

// AssetsStore writes policy controlled assets. Every write queues auth
// lookup and reindexing updates for the asset in the same transaction.
type AssetsStore interface {
	// Find loads an asset. Returns ErrNotFound when the row is gone.
	Find(itemType string, id uint) (model.Authorizable, error)

	// List returns every asset of a type ordered by id
	List(itemType string) ([]model.Item, error)

	// Create saves a new asset. Without a policy the asset is private.
	Create(ctx context.Context, asset model.Authorizable, links AssetLinks) error

	// Update saves the asset and the links that are set
	Update(ctx context.Context, asset model.Authorizable, links AssetLinks) error

	// Delete removes the asset with its policy, links and cached decisions
	Delete(ctx context.Context, asset model.Authorizable) error

	// Relations loads policy, projects and creators. Studies and assays
	// report the projects of their investigation.
	Relations(asset model.Authorizable) (*AssetRelations, error)

	// ChildIDs lists the studies of an investigation or the assays of a
	// study, and nothing for other types
	ChildIDs(itemType string, id uint) ([]uint, error)
}
