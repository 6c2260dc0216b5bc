package model

import (
	"time"
)

// Character 角色，一个账户可以拥有多个角色
type Character struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"charactersId"`
	AccountID int64          `gorm:"index;not null" json:"accountsId"`
	Info      *CharacterInfo `gorm:"foreignKey:CharacterID" json:"characterInfo,omitempty"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (Character) TableName() string {
	return "characters"
}

// OwnedBy 判断角色是否属于指定账户
func (c *Character) OwnedBy(accountID int64) bool {
	return c != nil && c.AccountID == accountID
}

// CharacterInfo 角色属性
// Money 永远不为负数，所有变动都伴随一条 GoldTransaction
type CharacterInfo struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"-"`
	CharacterID int64     `gorm:"uniqueIndex;not null" json:"-"`
	Nickname    string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"nickname"`
	Health      int64     `gorm:"not null" json:"health"`
	Power       int64     `gorm:"not null" json:"power"`
	Money       int64     `gorm:"not null;default:0" json:"money"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"-"`
}

func (CharacterInfo) TableName() string {
	return "character_infos"
}
