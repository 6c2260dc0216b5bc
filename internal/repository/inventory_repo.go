package repository

import (
	"context"

	"rpgserver/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) Create(ctx context.Context, tx *gorm.DB, inventory *model.Inventory) error {
	err := conn(r.db, tx).WithContext(ctx).Create(inventory).Error
	return translate(err, ErrInventoryNotFound)
}

func (r *InventoryRepository) GetByCharacterID(ctx context.Context, tx *gorm.DB, characterID int64) (*model.Inventory, error) {
	var inventory model.Inventory
	err := conn(r.db, tx).WithContext(ctx).Where("character_id = ?", characterID).First(&inventory).Error
	if err != nil {
		return nil, translate(err, ErrInventoryNotFound)
	}
	return &inventory, nil
}

func (r *InventoryRepository) GetItem(ctx context.Context, tx *gorm.DB, inventoryID, itemCode int64) (*model.InventoryItem, error) {
	var line model.InventoryItem
	err := conn(r.db, tx).WithContext(ctx).
		Where("inventory_id = ? AND item_code = ?", inventoryID, itemCode).
		First(&line).Error
	if err != nil {
		return nil, translate(err, ErrInventoryItemNotFound)
	}
	return &line, nil
}

// AddQuantity 增加物品数量，没有记录时插入
func (r *InventoryRepository) AddQuantity(ctx context.Context, tx *gorm.DB, inventoryID, itemCode int64, itemName string, n int64) error {
	line := &model.InventoryItem{
		InventoryID: inventoryID,
		ItemCode:    itemCode,
		ItemName:    itemName,
		Quantity:    n,
	}
	return conn(r.db, tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "inventory_id"}, {Name: "item_code"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity": gorm.Expr("inventory_items.quantity + ?", n),
			}),
		}).
		Create(line).Error
}

// RemoveQuantity 扣减物品数量，数量不足时返回 ErrQuantityNotEnough
func (r *InventoryRepository) RemoveQuantity(ctx context.Context, tx *gorm.DB, inventoryID, itemCode, n int64) error {
	result := conn(r.db, tx).WithContext(ctx).
		Model(&model.InventoryItem{}).
		Where("inventory_id = ? AND item_code = ? AND quantity >= ?", inventoryID, itemCode, n).
		Update("quantity", gorm.Expr("quantity - ?", n))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrQuantityNotEnough
	}
	return nil
}

// ListItems 返回数量大于 0 的物品
func (r *InventoryRepository) ListItems(ctx context.Context, inventoryID int64) ([]*model.InventoryItem, error) {
	var lines []*model.InventoryItem
	err := r.db.WithContext(ctx).
		Where("inventory_id = ? AND quantity > 0", inventoryID).
		Order("item_code ASC").
		Find(&lines).Error
	return lines, err
}

// DeleteByCharacterID 删除角色背包和其中的物品
func (r *InventoryRepository) DeleteByCharacterID(ctx context.Context, tx *gorm.DB, characterID int64) error {
	db := conn(r.db, tx).WithContext(ctx)
	sub := db.Model(&model.Inventory{}).Select("id").Where("character_id = ?", characterID)
	if err := db.Where("inventory_id IN (?)", sub).Delete(&model.InventoryItem{}).Error; err != nil {
		return err
	}
	return db.Where("character_id = ?", characterID).Delete(&model.Inventory{}).Error
}
