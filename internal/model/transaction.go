package model

import (
	"time"
)

// 金币流水类型
const (
	GoldTxPurchase = "PURCHASE" // 购买物品（扣款）
	GoldTxSell     = "SELL"     // 出售物品（入账）
	GoldTxRoot     = "ROOT"     // 领取奖励（入账）
)

// GoldTransaction 角色金币流水
// 只追加不修改，BalanceAfter = BalanceBefore + Amount
type GoldTransaction struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionNo string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"transaction_no"`
	CharacterID   int64     `gorm:"index;not null" json:"charactersId"`
	Type          string    `gorm:"type:varchar(20);not null" json:"type"`
	ItemCode      int64     `gorm:"not null;default:0" json:"item_code,omitempty"`
	Quantity      int64     `gorm:"not null;default:0" json:"quantity,omitempty"`
	Amount        int64     `gorm:"not null" json:"amount"` // 正数入账，负数出账
	BalanceBefore int64     `gorm:"not null" json:"balance_before"`
	BalanceAfter  int64     `gorm:"not null" json:"balance_after"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (GoldTransaction) TableName() string {
	return "gold_transactions"
}
