package repository

import (
	"context"

	"rpgserver/internal/model"

	"gorm.io/gorm"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *gorm.DB, trans *model.GoldTransaction) error {
	return conn(r.db, tx).WithContext(ctx).Create(trans).Error
}

func (r *TransactionRepository) GetByTransactionNo(ctx context.Context, transactionNo string) (*model.GoldTransaction, error) {
	var trans model.GoldTransaction
	err := r.db.WithContext(ctx).Where("transaction_no = ?", transactionNo).First(&trans).Error
	if err != nil {
		return nil, translate(err, ErrTransactionNotFound)
	}
	return &trans, nil
}

// ListByCharacterID 分页查询，最新的在前
func (r *TransactionRepository) ListByCharacterID(ctx context.Context, characterID int64, page, pageSize int) ([]*model.GoldTransaction, int64, error) {
	var transactions []*model.GoldTransaction
	var total int64

	query := r.db.WithContext(ctx).Model(&model.GoldTransaction{}).Where("character_id = ?", characterID)

	err := query.Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&transactions).Error

	return transactions, total, err
}
