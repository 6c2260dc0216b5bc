package service

import (
	"context"
	"log/slog"

	"rpgserver/internal/config"
	"rpgserver/internal/metrics"
	"rpgserver/internal/model"
	"rpgserver/internal/repository"
	"rpgserver/pkg/idgen"

	"gorm.io/gorm"
)

// RootService 领取金币奖励
type RootService struct {
	db            *gorm.DB
	characterRepo *repository.CharacterRepository
	ledger        *goldLedger
	events        *eventWriter
	rootGold      int64
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

func NewRootService(db *gorm.DB, cfg *config.Config, ids *idgen.Snowflake, m *metrics.Metrics, logger *slog.Logger) *RootService {
	return &RootService{
		db:            db,
		characterRepo: repository.NewCharacterRepository(db),
		ledger:        newGoldLedger(db, ids),
		events:        newEventWriter(db, cfg.Kafka.Topic.GameEvent, cfg.Kafka.Enabled),
		rootGold:      cfg.Game.RootGold,
		metrics:       m,
		logger:        logger,
	}
}

type GrantResult struct {
	Amount        int64  `json:"amount"`
	Money         int64  `json:"money"`
	TransactionNo string `json:"transaction_no"`
}

// Grant 给自己的角色发放固定数量的金币
func (s *RootService) Grant(ctx context.Context, accountID, characterID int64) (*GrantResult, error) {
	if _, err := loadOwned(ctx, s.characterRepo, accountID, characterID); err != nil {
		return nil, wrap("root", err, "查询角色失败", "character_id", characterID)
	}

	result := &GrantResult{Amount: s.rootGold}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		info, err := lockInfo(ctx, s.characterRepo, tx, characterID)
		if err != nil {
			return err
		}
		trans, err := s.ledger.apply(ctx, tx, info, model.GoldTxRoot, s.rootGold, 0, 0)
		if err != nil {
			return err
		}
		result.Money = trans.BalanceAfter
		result.TransactionNo = trans.TransactionNo

		return s.events.write(ctx, tx, model.EventGoldGranted, characterID, result)
	}, txOptions)
	if err != nil {
		return nil, wrap("root", err, "发放金币失败", "character_id", characterID)
	}

	s.metrics.RecordGold(model.GoldTxRoot, s.rootGold)
	s.logger.InfoContext(ctx, "金币已发放", "character_id", characterID, "amount", s.rootGold, "money", result.Money)
	return result, nil
}
