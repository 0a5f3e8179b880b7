package gorm

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server/store"
)

// Ensure AssetsStore implements store.AssetsStore
var _ store.AssetsStore = (*AssetsStore)(nil)

// AssetsStore implements store.AssetsStore using GORM
type AssetsStore struct {
	db *gorm.DB
}

// NewAssetsStore creates a new AssetsStore
func NewAssetsStore(db *gorm.DB) *AssetsStore {
	return &AssetsStore{db: db}
}

type policySetter interface {
	SetPolicyID(id uint)
}

func (s *AssetsStore) Find(itemType string, id uint) (model.Authorizable, error) {
	asset, ok := model.NewAuthorizable(itemType)
	if !ok {
		return nil, fmt.Errorf("%s is not a policy controlled type", itemType)
	}
	if err := s.db.Where("id = ?", id).Take(asset).Error; err != nil {
		return nil, notFound(err)
	}
	return asset, nil
}

func (s *AssetsStore) List(itemType string) ([]model.Item, error) {
	proto, ok := model.NewItem(itemType)
	if !ok {
		return nil, fmt.Errorf("unknown item type %q", itemType)
	}
	rows := reflect.New(reflect.SliceOf(reflect.TypeOf(proto).Elem()))
	if err := s.db.Order("id").Find(rows.Interface()).Error; err != nil {
		return nil, err
	}
	items := make([]model.Item, rows.Elem().Len())
	for i := range items {
		items[i] = rows.Elem().Index(i).Addr().Interface().(model.Item)
	}
	return items, nil
}

func (s *AssetsStore) Create(ctx context.Context, asset model.Authorizable, links store.AssetLinks) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		policy := links.Policy
		if policy == nil {
			policy = model.NewPrivatePolicy()
		}
		if err := tx.Create(policy).Error; err != nil {
			return fmt.Errorf("failed to save policy: %w", err)
		}
		if setter, ok := asset.(policySetter); ok {
			setter.SetPolicyID(policy.ID)
		}
		if err := tx.Omit(clause.Associations).Create(asset).Error; err != nil {
			return err
		}
		if err := writeLinks(tx, asset, links); err != nil {
			return err
		}
		return queueAsset(tx, asset)
	})
}

func (s *AssetsStore) Update(ctx context.Context, asset model.Authorizable, links store.AssetLinks) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if links.Policy != nil {
			if err := replacePolicy(tx, asset, links.Policy); err != nil {
				return err
			}
		}
		if err := tx.Omit(clause.Associations).Save(asset).Error; err != nil {
			return err
		}
		if err := writeLinks(tx, asset, links); err != nil {
			return err
		}
		return queueAsset(tx, asset)
	})
}

func (s *AssetsStore) Delete(ctx context.Context, asset model.Authorizable) error {
	itemType, id := asset.ItemType(), asset.ItemID()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if table, column, ok := model.ProjectJoin(itemType); ok {
			if err := tx.Exec("DELETE FROM "+table+" WHERE "+column+" = ?", id).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("asset_type = ? AND asset_id = ?", itemType, id).Delete(&model.AssetsCreator{}).Error; err != nil {
			return err
		}
		if err := tx.Where("asset_type = ? AND asset_id = ?", itemType, id).Delete(&model.AssayAsset{}).Error; err != nil {
			return err
		}
		if err := tx.Where("asset_type = ? AND asset_id = ?", itemType, id).Delete(&model.AuthLookup{}).Error; err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Delete(asset).Error; err != nil {
			return err
		}
		if ref := asset.PolicyRef(); ref != nil {
			if err := tx.Where("policy_id = ?", *ref).Delete(&model.Permission{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id = ?", *ref).Delete(&model.Policy{}).Error; err != nil {
				return err
			}
		}
		return model.QueueReindex(tx, itemType, id)
	})
}

func (s *AssetsStore) Relations(asset model.Authorizable) (*store.AssetRelations, error) {
	rel := &store.AssetRelations{}
	itemType, id := asset.ItemType(), asset.ItemID()

	if ref := asset.PolicyRef(); ref != nil {
		var policy model.Policy
		err := s.db.Preload("Permissions").Where("id = ?", *ref).Take(&policy).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to load policy: %w", err)
		}
		if err == nil {
			rel.Policy = &policy
		}
	}

	projectIDs, err := s.projectIDs(asset)
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}
	rel.ProjectIDs = projectIDs

	if err := s.db.Model(&model.AssetsCreator{}).
		Where("asset_type = ? AND asset_id = ?", itemType, id).
		Order("pos, id").
		Pluck("creator_id", &rel.CreatorIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to load creators: %w", err)
	}
	return rel, nil
}

func (s *AssetsStore) projectIDs(asset model.Authorizable) ([]uint, error) {
	var ids []uint
	switch a := asset.(type) {
	case *model.Study:
		return s.investigationProjectIDs(a.InvestigationID)
	case *model.Assay:
		var investigationID uint
		err := s.db.Model(&model.Study{}).Where("id = ?", a.StudyID).Pluck("investigation_id", &investigationID).Error
		if err != nil {
			return nil, err
		}
		return s.investigationProjectIDs(investigationID)
	}
	table, column, ok := model.ProjectJoin(asset.ItemType())
	if !ok {
		return nil, nil
	}
	err := s.db.Table(table).Where(column+" = ?", asset.ItemID()).Order("project_id").Pluck("project_id", &ids).Error
	return ids, err
}

func (s *AssetsStore) investigationProjectIDs(investigationID uint) ([]uint, error) {
	var ids []uint
	err := s.db.Table("investigations_projects").
		Where("investigation_id = ?", investigationID).
		Order("project_id").
		Pluck("project_id", &ids).Error
	return ids, err
}

func (s *AssetsStore) ChildIDs(itemType string, id uint) ([]uint, error) {
	var ids []uint
	switch itemType {
	case "Investigation":
		err := s.db.Model(&model.Study{}).Where("investigation_id = ?", id).Order("id").Pluck("id", &ids).Error
		return ids, err
	case "Study":
		err := s.db.Model(&model.Assay{}).Where("study_id = ?", id).Order("id").Pluck("id", &ids).Error
		return ids, err
	}
	return nil, nil
}

// replacePolicy overwrites the asset's policy in place, or creates one
// when the asset has none
func replacePolicy(tx *gorm.DB, asset model.Authorizable, policy *model.Policy) error {
	ref := asset.PolicyRef()
	if ref == nil {
		if err := tx.Create(policy).Error; err != nil {
			return fmt.Errorf("failed to save policy: %w", err)
		}
		if setter, ok := asset.(policySetter); ok {
			setter.SetPolicyID(policy.ID)
		}
		return nil
	}

	policy.ID = *ref
	if err := tx.Model(&model.Policy{}).Where("id = ?", *ref).Updates(map[string]interface{}{
		"sharing_scope": policy.SharingScope,
		"access_type":   policy.AccessType,
	}).Error; err != nil {
		return fmt.Errorf("failed to save policy: %w", err)
	}
	if err := tx.Where("policy_id = ?", *ref).Delete(&model.Permission{}).Error; err != nil {
		return err
	}
	for i := range policy.Permissions {
		policy.Permissions[i].ID = 0
		policy.Permissions[i].PolicyID = *ref
	}
	if len(policy.Permissions) > 0 {
		if err := tx.Create(&policy.Permissions).Error; err != nil {
			return fmt.Errorf("failed to save permissions: %w", err)
		}
	}
	return nil
}

func writeLinks(tx *gorm.DB, asset model.Authorizable, links store.AssetLinks) error {
	itemType, id := asset.ItemType(), asset.ItemID()

	if links.ProjectIDs != nil {
		if table, column, ok := model.ProjectJoin(itemType); ok {
			if err := tx.Exec("DELETE FROM "+table+" WHERE "+column+" = ?", id).Error; err != nil {
				return err
			}
			for _, projectID := range lo.Uniq(*links.ProjectIDs) {
				err := tx.Exec("INSERT INTO "+table+" ("+column+", project_id) VALUES (?, ?)", id, projectID).Error
				if err != nil {
					return fmt.Errorf("failed to save projects: %w", err)
				}
			}
		}
	}

	if links.CreatorIDs != nil {
		if err := tx.Where("asset_type = ? AND asset_id = ?", itemType, id).Delete(&model.AssetsCreator{}).Error; err != nil {
			return err
		}
		if len(*links.CreatorIDs) > 0 {
			rows := make([]model.AssetsCreator, len(*links.CreatorIDs))
			for i, creatorID := range *links.CreatorIDs {
				rows[i] = model.AssetsCreator{AssetType: itemType, AssetID: id, CreatorID: creatorID, Pos: i}
			}
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("failed to save creators: %w", err)
			}
		}
	}
	return nil
}

func queueAsset(tx *gorm.DB, asset model.Authorizable) error {
	if err := model.QueueAuthLookupUpdates(tx, asset.ItemType(), asset.ItemID()); err != nil {
		return err
	}
	return model.QueueReindex(tx, asset.ItemType(), asset.ItemID())
}
