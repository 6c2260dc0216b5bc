package model

import (
	"time"
)

// 装备部位。PartNone / PartConsumable 之外的部位都可以装备
const (
	PartNone       = "none"
	PartConsumable = "consumable"
	PartWeapon     = "weapon"
	PartHead       = "head"
	PartArmor      = "armor"
	PartGloves     = "gloves"
	PartShoes      = "shoes"
	PartAccessory  = "accessory"
)

var validParts = map[string]bool{
	PartNone:       true,
	PartConsumable: true,
	PartWeapon:     true,
	PartHead:       true,
	PartArmor:      true,
	PartGloves:     true,
	PartShoes:      true,
	PartAccessory:  true,
}

// IsValidPart 判断部位名称是否合法
func IsValidPart(part string) bool {
	return validParts[part]
}

// IsEquippablePart 判断该部位的物品能否装备
func IsEquippablePart(part string) bool {
	return IsValidPart(part) && part != PartNone && part != PartConsumable
}

// Item 物品目录，不归属任何角色
// Price 创建后不可修改
type Item struct {
	Code        int64     `gorm:"primaryKey;autoIncrement" json:"item_code"`
	Name        string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"item_name"`
	Part        string    `gorm:"type:varchar(16);not null" json:"item_part"`
	Health      int64     `gorm:"not null;default:0" json:"item_health"`
	Power       int64     `gorm:"not null;default:0" json:"item_power"`
	Price       int64     `gorm:"not null" json:"item_price"`
	Description string    `gorm:"type:varchar(512)" json:"item_desc"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"-"`
}

func (Item) TableName() string {
	return "items"
}

// Equippable 判断物品能否装备
func (i *Item) Equippable() bool {
	return IsEquippablePart(i.Part)
}

// ItemHistory 物品修改审计记录，每个变更字段一行
type ItemHistory struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ItemCode     int64     `gorm:"index;not null" json:"item_code"`
	ChangedField string    `gorm:"type:varchar(32);not null" json:"changed_field"`
	OldValue     string    `gorm:"type:varchar(512)" json:"old_value"`
	NewValue     string    `gorm:"type:varchar(512)" json:"new_value"`
	AccountID    int64     `gorm:"not null" json:"account_id"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ItemHistory) TableName() string {
	return "item_histories"
}
