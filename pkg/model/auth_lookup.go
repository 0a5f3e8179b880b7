package model

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AuthLookup caches the authorization decisions of one user on one item.
// UserID 0 holds the anonymous decision.
type AuthLookup struct {
	UserID      uint   `gorm:"column:user_id;primaryKey"`
	AssetType   string `gorm:"column:asset_type;primaryKey"`
	AssetID     uint   `gorm:"column:asset_id;primaryKey"`
	CanView     bool   `gorm:"column:can_view"`
	CanDownload bool   `gorm:"column:can_download"`
	CanEdit     bool   `gorm:"column:can_edit"`
	CanManage   bool   `gorm:"column:can_manage"`
	CanDelete   bool   `gorm:"column:can_delete"`
}

func (AuthLookup) TableName() string {
	return "auth_lookups"
}

// AuthLookupUpdateQueue holds items (people or assets) whose lookups are stale
type AuthLookupUpdateQueue struct {
	ID        uint      `gorm:"primaryKey"`
	ItemType  string    `gorm:"column:item_type;not null;uniqueIndex:idx_auth_lookup_queue_item"`
	ItemID    uint      `gorm:"column:item_id;not null;uniqueIndex:idx_auth_lookup_queue_item"`
	Priority  int       `gorm:"column:priority"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (AuthLookupUpdateQueue) TableName() string {
	return "auth_lookup_update_queues"
}

// ReindexingQueue holds items that must be pushed to the search index
type ReindexingQueue struct {
	ID        uint      `gorm:"primaryKey"`
	ItemType  string    `gorm:"column:item_type;not null;uniqueIndex:idx_reindexing_queue_item"`
	ItemID    uint      `gorm:"column:item_id;not null;uniqueIndex:idx_reindexing_queue_item"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (ReindexingQueue) TableName() string {
	return "reindexing_queues"
}

// QueueAuthLookupUpdates enqueues items for an auth lookup rebuild and
// drops their cached decisions in the same transaction, so reads made before
// the rebuild recompute from the current policy. For people the cached rows
// of their user accounts are dropped. Already queued items are left alone.
func QueueAuthLookupUpdates(tx *gorm.DB, itemType string, ids ...uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := DropAuthLookups(tx, itemType, ids...); err != nil {
		return err
	}
	rows := make([]AuthLookupUpdateQueue, len(ids))
	for i, id := range ids {
		rows[i] = AuthLookupUpdateQueue{ItemType: itemType, ItemID: id}
	}
	return tx.Session(&gorm.Session{NewDB: true}).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

// DropAuthLookups deletes the cached decisions on the given items
func DropAuthLookups(tx *gorm.DB, itemType string, ids ...uint) error {
	db := tx.Session(&gorm.Session{NewDB: true})
	if itemType == "Person" {
		users := tx.Session(&gorm.Session{NewDB: true}).
			Model(&User{}).Select("id").Where("person_id IN ?", ids)
		return db.Where("user_id IN (?)", users).Delete(&AuthLookup{}).Error
	}
	return db.Where("asset_type = ? AND asset_id IN ?", itemType, ids).
		Delete(&AuthLookup{}).Error
}

// QueueReindex enqueues items for the search indexer
func QueueReindex(tx *gorm.DB, itemType string, ids ...uint) error {
	if len(ids) == 0 {
		return nil
	}
	rows := make([]ReindexingQueue, len(ids))
	for i, id := range ids {
		rows[i] = ReindexingQueue{ItemType: itemType, ItemID: id}
	}
	return tx.Session(&gorm.Session{NewDB: true}).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}
