package repository

import (
	"context"

	"rpgserver/internal/model"

	"gorm.io/gorm"
)

type EquipmentRepository struct {
	db *gorm.DB
}

func NewEquipmentRepository(db *gorm.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

// Create 同一角色同一部位已有装备时返回 ErrDuplicateKey
func (r *EquipmentRepository) Create(ctx context.Context, tx *gorm.DB, equipment *model.Equipment) error {
	err := conn(r.db, tx).WithContext(ctx).Create(equipment).Error
	return translate(err, ErrEquipmentNotFound)
}

func (r *EquipmentRepository) GetByPart(ctx context.Context, tx *gorm.DB, characterID int64, part string) (*model.Equipment, error) {
	var equipment model.Equipment
	err := conn(r.db, tx).WithContext(ctx).
		Where("character_id = ? AND part = ?", characterID, part).
		First(&equipment).Error
	if err != nil {
		return nil, translate(err, ErrEquipmentNotFound)
	}
	return &equipment, nil
}

func (r *EquipmentRepository) GetByItemCode(ctx context.Context, tx *gorm.DB, characterID, itemCode int64) (*model.Equipment, error) {
	var equipment model.Equipment
	err := conn(r.db, tx).WithContext(ctx).
		Where("character_id = ? AND item_code = ?", characterID, itemCode).
		First(&equipment).Error
	if err != nil {
		return nil, translate(err, ErrEquipmentNotFound)
	}
	return &equipment, nil
}

func (r *EquipmentRepository) Delete(ctx context.Context, tx *gorm.DB, id int64) error {
	result := conn(r.db, tx).WithContext(ctx).Where("id = ?", id).Delete(&model.Equipment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEquipmentNotFound
	}
	return nil
}

func (r *EquipmentRepository) ListByCharacterID(ctx context.Context, characterID int64) ([]*model.Equipment, error) {
	var equipments []*model.Equipment
	err := r.db.WithContext(ctx).
		Where("character_id = ?", characterID).
		Order("id ASC").
		Find(&equipments).Error
	return equipments, err
}

func (r *EquipmentRepository) DeleteByCharacterID(ctx context.Context, tx *gorm.DB, characterID int64) error {
	return conn(r.db, tx).WithContext(ctx).Where("character_id = ?", characterID).Delete(&model.Equipment{}).Error
}
