package repository

import (
	"context"

	"rpgserver/internal/model"

	"gorm.io/gorm"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create 创建账户，LoginID 重复时返回 ErrDuplicateKey
func (r *AccountRepository) Create(ctx context.Context, tx *gorm.DB, account *model.Account) error {
	err := conn(r.db, tx).WithContext(ctx).Omit("Info").Create(account).Error
	return translate(err, ErrAccountNotFound)
}

func (r *AccountRepository) CreateInfo(ctx context.Context, tx *gorm.DB, info *model.AccountInfo) error {
	err := conn(r.db, tx).WithContext(ctx).Create(info).Error
	return translate(err, ErrAccountNotFound)
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&account).Error
	if err != nil {
		return nil, translate(err, ErrAccountNotFound)
	}
	return &account, nil
}

func (r *AccountRepository) GetByLoginID(ctx context.Context, loginID string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).Where("login_id = ?", loginID).First(&account).Error
	if err != nil {
		return nil, translate(err, ErrAccountNotFound)
	}
	return &account, nil
}

func (r *AccountRepository) ExistsByLoginID(ctx context.Context, loginID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Account{}).Where("login_id = ?", loginID).Count(&count).Error
	return count > 0, err
}

func (r *AccountRepository) UpdateRole(ctx context.Context, loginID, role string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("login_id = ?", loginID).
		Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}
