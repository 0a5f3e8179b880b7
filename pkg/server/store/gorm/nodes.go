package gorm

import (
	"context"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server/store"
)

// Ensure NodesStore implements store.NodesStore
var _ store.NodesStore = (*NodesStore)(nil)

// NodesStore implements store.NodesStore using GORM
type NodesStore struct {
	db *gorm.DB
}

// NewNodesStore creates a new NodesStore
func NewNodesStore(db *gorm.DB) *NodesStore {
	return &NodesStore{db: db}
}

func (s *NodesStore) Node(id uint) (*model.Node, error) {
	var node model.Node
	err := s.db.Preload("Versions", func(db *gorm.DB) *gorm.DB {
		return db.Order("version")
	}).Where("id = ?", id).Take(&node).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &node, nil
}

func (s *NodesStore) AddVersion(ctx context.Context, node *model.Node, version *model.NodeVersion, blob *model.ContentBlob) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		version.NodeID = node.ID
		if err := tx.Create(version).Error; err != nil {
			return err
		}
		if blob != nil {
			blob.AssetType = node.ItemType()
			blob.AssetID = node.ID
			blob.AssetVersion = version.Version
			if err := tx.Create(blob).Error; err != nil {
				return err
			}
		}
		if version.Version > node.Version {
			node.Version = version.Version
			if err := tx.Model(&model.Node{}).Where("id = ?", node.ID).Update("version", node.Version).Error; err != nil {
				return err
			}
		}
		node.Versions = append(node.Versions, *version)
		return model.QueueReindex(tx, node.ItemType(), node.ID)
	})
}

func (s *NodesStore) ContentBlob(nodeID uint, version int) (*model.ContentBlob, error) {
	var blob model.ContentBlob
	err := s.db.Where("asset_type = ? AND asset_id = ? AND asset_version = ?", "Node", nodeID, version).
		Order("id desc").
		Take(&blob).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &blob, nil
}

func (s *NodesStore) ContentBlobs(nodeID uint) ([]model.ContentBlob, error) {
	var blobs []model.ContentBlob
	err := s.db.Where("asset_type = ? AND asset_id = ?", "Node", nodeID).
		Order("asset_version, id").
		Find(&blobs).Error
	return blobs, err
}
