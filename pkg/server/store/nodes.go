package store

import (
	"context"

	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
)

// NodesStore reads and writes node versions and their content blobs.
// Node rows themselves are written through AssetsStore.
type NodesStore interface {
	// Node loads a node with its versions. Returns ErrNotFound.
	Node(id uint) (*model.Node, error)

	// AddVersion saves a new version, its blob and bumps the node version
	// in one transaction. The first version is created with the node.
	AddVersion(ctx context.Context, node *model.Node, version *model.NodeVersion, blob *model.ContentBlob) error

	// ContentBlob returns the blob of a version. Returns ErrNotFound.
	ContentBlob(nodeID uint, version int) (*model.ContentBlob, error)

	// ContentBlobs lists the blobs of every version, oldest first
	ContentBlobs(nodeID uint) ([]model.ContentBlob, error)
}
