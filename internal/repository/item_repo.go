package repository

import (
	"context"

	"rpgserver/internal/model"

	"gorm.io/gorm"
)

type ItemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// Create 物品名重复时返回 ErrDuplicateKey
func (r *ItemRepository) Create(ctx context.Context, item *model.Item) error {
	return translate(r.db.WithContext(ctx).Create(item).Error, ErrItemNotFound)
}

func (r *ItemRepository) GetByCode(ctx context.Context, tx *gorm.DB, code int64) (*model.Item, error) {
	var item model.Item
	err := conn(r.db, tx).WithContext(ctx).Where("code = ?", code).First(&item).Error
	if err != nil {
		return nil, translate(err, ErrItemNotFound)
	}
	return &item, nil
}

func (r *ItemRepository) NameExists(ctx context.Context, tx *gorm.DB, name string, excludeCode int64) (bool, error) {
	var count int64
	err := conn(r.db, tx).WithContext(ctx).
		Model(&model.Item{}).
		Where("name = ? AND code <> ?", name, excludeCode).
		Count(&count).Error
	return count > 0, err
}

func (r *ItemRepository) List(ctx context.Context) ([]*model.Item, error) {
	var items []*model.Item
	err := r.db.WithContext(ctx).Order("code ASC").Find(&items).Error
	return items, err
}

// Update 按列名更新，updates 为空时不执行
func (r *ItemRepository) Update(ctx context.Context, tx *gorm.DB, code int64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	result := conn(r.db, tx).WithContext(ctx).
		Model(&model.Item{}).
		Where("code = ?", code).
		Updates(updates)
	if result.Error != nil {
		return translate(result.Error, ErrItemNotFound)
	}
	if result.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *ItemRepository) CreateHistories(ctx context.Context, tx *gorm.DB, histories []*model.ItemHistory) error {
	if len(histories) == 0 {
		return nil
	}
	return conn(r.db, tx).WithContext(ctx).Create(&histories).Error
}

func (r *ItemRepository) ListHistories(ctx context.Context, code int64) ([]*model.ItemHistory, error) {
	var histories []*model.ItemHistory
	err := r.db.WithContext(ctx).
		Where("item_code = ?", code).
		Order("id ASC").
		Find(&histories).Error
	return histories, err
}
