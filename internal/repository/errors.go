package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrAccountNotFound       = errors.New("账户不存在")
	ErrTokenNotFound         = errors.New("refresh token 不存在或已过期")
	ErrCharacterNotFound     = errors.New("角色不存在")
	ErrItemNotFound          = errors.New("物品不存在")
	ErrInventoryNotFound     = errors.New("背包不存在")
	ErrInventoryItemNotFound = errors.New("背包中没有该物品")
	ErrEquipmentNotFound     = errors.New("未装备该物品")
	ErrTransactionNotFound   = errors.New("流水不存在")
	ErrMoneyNotEnough        = errors.New("金币不足")
	ErrQuantityNotEnough     = errors.New("物品数量不足")
	ErrDuplicateKey          = errors.New("唯一键冲突")
)

// conn 在 tx 为空时使用默认连接
func conn(db, tx *gorm.DB) *gorm.DB {
	if tx == nil {
		return db
	}
	return tx
}

// translate 把 gorm 的错误转换成仓储层的错误
func translate(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateKey
	default:
		return err
	}
}
