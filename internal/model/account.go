package model

import (
	"time"
)

const (
	RolePlayer = "player"
	RoleAdmin  = "admin"
)

// Account 登录账户
// 注册后 LoginID 不再变化，密码只保存 bcrypt 哈希
type Account struct {
	ID        int64        `gorm:"primaryKey;autoIncrement" json:"accountsId"`
	LoginID   string       `gorm:"type:varchar(32);uniqueIndex;not null" json:"userId"`
	Password  string       `gorm:"type:varchar(72);not null" json:"-"`
	Role      string       `gorm:"type:varchar(16);not null;default:player" json:"role"`
	Info      *AccountInfo `gorm:"foreignKey:AccountID" json:"info,omitempty"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}

// HasRole 判断账户是否拥有指定角色，admin 拥有全部角色
func (a *Account) HasRole(role string) bool {
	if a == nil {
		return false
	}
	return a.Role == role || a.Role == RoleAdmin
}

// AccountInfo 账户资料，与 Account 一对一
type AccountInfo struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"-"`
	AccountID int64  `gorm:"uniqueIndex;not null" json:"-"`
	Name      string `gorm:"type:varchar(64);not null" json:"name"`
	Age       int    `gorm:"not null;default:0" json:"age"`
}

func (AccountInfo) TableName() string {
	return "account_infos"
}

// RefreshToken 已签发的 refresh token
// 只追加不更新：过期后在下次登录时签发新记录，登出或清理任务时删除
type RefreshToken struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID int64     `gorm:"index;not null" json:"account_id"`
	Token     string    `gorm:"type:varchar(512);uniqueIndex;not null" json:"-"`
	IP        string    `gorm:"type:varchar(45)" json:"ip"`
	UserAgent string    `gorm:"type:varchar(255)" json:"user_agent"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// Expired 判断 token 在 now 时刻是否已过期
func (t *RefreshToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
