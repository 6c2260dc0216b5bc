package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"rpgserver/internal/model"
	"rpgserver/internal/repository"
	"rpgserver/pkg/idgen"

	"gorm.io/gorm"
)

// txOptions 所有写事务使用 READ COMMITTED，角色属性行另外加行锁
var txOptions = &sql.TxOptions{Isolation: sql.LevelReadCommitted}

// loadOwned 加载角色并校验归属
func loadOwned(ctx context.Context, characters *repository.CharacterRepository, accountID, characterID int64) (*model.Character, error) {
	character, err := characters.GetByID(ctx, characterID)
	if err != nil {
		if errors.Is(err, repository.ErrCharacterNotFound) {
			return nil, ErrCharacterNotFound
		}
		return nil, err
	}
	if !character.OwnedBy(accountID) {
		return nil, ErrNotOwner
	}
	return character, nil
}

// lockInfo 在事务内锁住角色属性行
// 角色在 loadOwned 之后被删除时同样返回 ErrCharacterNotFound
func lockInfo(ctx context.Context, characters *repository.CharacterRepository, tx *gorm.DB, characterID int64) (*model.CharacterInfo, error) {
	info, err := characters.GetInfoForUpdate(ctx, tx, characterID)
	if errors.Is(err, repository.ErrCharacterNotFound) {
		return nil, ErrCharacterNotFound
	}
	return info, err
}

// goldLedger 金币变动和流水必须在同一事务内写入
type goldLedger struct {
	characterRepo   *repository.CharacterRepository
	transactionRepo *repository.TransactionRepository
	ids             *idgen.Snowflake
}

func newGoldLedger(db *gorm.DB, ids *idgen.Snowflake) *goldLedger {
	return &goldLedger{
		characterRepo:   repository.NewCharacterRepository(db),
		transactionRepo: repository.NewTransactionRepository(db),
		ids:             ids,
	}
}

// apply 调用方需先用 lockInfo 锁住 info
func (l *goldLedger) apply(ctx context.Context, tx *gorm.DB, info *model.CharacterInfo, txType string, amount, itemCode, quantity int64) (*model.GoldTransaction, error) {
	if info.Money+amount < 0 {
		return nil, ErrInsufficientFunds
	}
	if err := l.characterRepo.AddMoney(ctx, tx, info.CharacterID, amount); err != nil {
		if errors.Is(err, repository.ErrMoneyNotEnough) {
			return nil, ErrInsufficientFunds
		}
		return nil, err
	}

	trans := &model.GoldTransaction{
		TransactionNo: l.ids.TransactionNo(),
		CharacterID:   info.CharacterID,
		Type:          txType,
		ItemCode:      itemCode,
		Quantity:      quantity,
		Amount:        amount,
		BalanceBefore: info.Money,
		BalanceAfter:  info.Money + amount,
	}
	if err := l.transactionRepo.Create(ctx, tx, trans); err != nil {
		return nil, err
	}
	info.Money = trans.BalanceAfter
	return trans, nil
}

// eventWriter 把游戏事件写入 outbox，未启用 Kafka 时不写
type eventWriter struct {
	outboxRepo *repository.OutboxRepository
	topic      string
	enabled    bool
}

func newEventWriter(db *gorm.DB, topic string, enabled bool) *eventWriter {
	return &eventWriter{
		outboxRepo: repository.NewOutboxRepository(db),
		topic:      topic,
		enabled:    enabled,
	}
}

type gameEvent struct {
	Type        string      `json:"type"`
	CharacterID int64       `json:"charactersId"`
	Data        interface{} `json:"data,omitempty"`
	OccurredAt  string      `json:"occurred_at"`
}

// write 以角色 ID 作为消息 key，同一角色的事件保持顺序
func (w *eventWriter) write(ctx context.Context, tx *gorm.DB, eventType string, characterID int64, data interface{}) error {
	if w == nil || !w.enabled {
		return nil
	}
	payload, err := json.Marshal(gameEvent{
		Type:        eventType,
		CharacterID: characterID,
		Data:        data,
		OccurredAt:  time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return w.outboxRepo.Create(ctx, tx, &model.OutboxMessage{
		MessageKey: strconv.FormatInt(characterID, 10),
		EventType:  eventType,
		Topic:      w.topic,
		Payload:    string(payload),
		Status:     model.OutboxStatusPending,
	})
}
