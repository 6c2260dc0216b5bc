package repository

import (
	"context"

	"rpgserver/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CharacterRepository struct {
	db *gorm.DB
}

func NewCharacterRepository(db *gorm.DB) *CharacterRepository {
	return &CharacterRepository{db: db}
}

func (r *CharacterRepository) Create(ctx context.Context, tx *gorm.DB, character *model.Character) error {
	err := conn(r.db, tx).WithContext(ctx).Omit("Info").Create(character).Error
	return translate(err, ErrCharacterNotFound)
}

// CreateInfo 昵称重复时返回 ErrDuplicateKey
func (r *CharacterRepository) CreateInfo(ctx context.Context, tx *gorm.DB, info *model.CharacterInfo) error {
	err := conn(r.db, tx).WithContext(ctx).Create(info).Error
	return translate(err, ErrCharacterNotFound)
}

// GetByID 查询角色并带出属性
func (r *CharacterRepository) GetByID(ctx context.Context, id int64) (*model.Character, error) {
	var character model.Character
	err := r.db.WithContext(ctx).Preload("Info").Where("id = ?", id).First(&character).Error
	if err != nil {
		return nil, translate(err, ErrCharacterNotFound)
	}
	return &character, nil
}

func (r *CharacterRepository) NicknameExists(ctx context.Context, nickname string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.CharacterInfo{}).Where("nickname = ?", nickname).Count(&count).Error
	return count > 0, err
}

// GetInfoForUpdate 在事务内锁定角色属性行
func (r *CharacterRepository) GetInfoForUpdate(ctx context.Context, tx *gorm.DB, characterID int64) (*model.CharacterInfo, error) {
	var info model.CharacterInfo
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("character_id = ?", characterID).
		First(&info).Error
	if err != nil {
		return nil, translate(err, ErrCharacterNotFound)
	}
	return &info, nil
}

// AddStats 增减体力和攻击力，delta 可以为负
func (r *CharacterRepository) AddStats(ctx context.Context, tx *gorm.DB, characterID, health, power int64) error {
	result := conn(r.db, tx).WithContext(ctx).
		Model(&model.CharacterInfo{}).
		Where("character_id = ?", characterID).
		Updates(map[string]interface{}{
			"health": gorm.Expr("health + ?", health),
			"power":  gorm.Expr("power + ?", power),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCharacterNotFound
	}
	return nil
}

// AddMoney 增减金币，余额不能变为负数
func (r *CharacterRepository) AddMoney(ctx context.Context, tx *gorm.DB, characterID, delta int64) error {
	result := conn(r.db, tx).WithContext(ctx).
		Model(&model.CharacterInfo{}).
		Where("character_id = ? AND money + ? >= 0", characterID, delta).
		Update("money", gorm.Expr("money + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMoneyNotEnough
	}
	return nil
}

// Delete 删除角色及其属性，装备和背包由调用方先行删除
func (r *CharacterRepository) Delete(ctx context.Context, tx *gorm.DB, characterID int64) error {
	db := conn(r.db, tx).WithContext(ctx)
	if err := db.Where("character_id = ?", characterID).Delete(&model.CharacterInfo{}).Error; err != nil {
		return err
	}
	result := db.Where("id = ?", characterID).Delete(&model.Character{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCharacterNotFound
	}
	return nil
}
