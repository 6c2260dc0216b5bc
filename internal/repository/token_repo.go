package repository

import (
	"context"
	"time"

	"rpgserver/internal/model"

	"gorm.io/gorm"
)

type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	return translate(r.db.WithContext(ctx).Create(token).Error, ErrTokenNotFound)
}

// GetUsableByAccountID 返回账户最新的未过期 token
func (r *TokenRepository) GetUsableByAccountID(ctx context.Context, accountID int64, now time.Time) (*model.RefreshToken, error) {
	var token model.RefreshToken
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND expires_at > ?", accountID, now).
		Order("expires_at DESC").
		First(&token).Error
	if err != nil {
		return nil, translate(err, ErrTokenNotFound)
	}
	return &token, nil
}

// GetUsable 按 token 字符串查找，要求账户匹配且未过期
func (r *TokenRepository) GetUsable(ctx context.Context, token string, accountID int64, now time.Time) (*model.RefreshToken, error) {
	var rt model.RefreshToken
	err := r.db.WithContext(ctx).
		Where("token = ? AND account_id = ? AND expires_at > ?", token, accountID, now).
		First(&rt).Error
	if err != nil {
		return nil, translate(err, ErrTokenNotFound)
	}
	return &rt, nil
}

func (r *TokenRepository) DeleteByToken(ctx context.Context, token string) (int64, error) {
	result := r.db.WithContext(ctx).Where("token = ?", token).Delete(&model.RefreshToken{})
	return result.RowsAffected, result.Error
}

// DeleteExpired 删除 before 之前过期的 token，返回删除条数
func (r *TokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at <= ?", before).Delete(&model.RefreshToken{})
	return result.RowsAffected, result.Error
}
