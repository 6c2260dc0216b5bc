package service

import (
	"context"
	"errors"
	"log/slog"

	"rpgserver/internal/config"
	"rpgserver/internal/metrics"
	"rpgserver/internal/model"
	"rpgserver/internal/repository"
	"rpgserver/pkg/idgen"

	"gorm.io/gorm"
)

const (
	minTradeQuantity = 1
	maxTradeQuantity = 999
)

type InventoryService struct {
	db              *gorm.DB
	characterRepo   *repository.CharacterRepository
	itemRepo        *repository.ItemRepository
	inventoryRepo   *repository.InventoryRepository
	ledger          *goldLedger
	events          *eventWriter
	sellRatePercent int64
	metrics         *metrics.Metrics
	logger          *slog.Logger
}

func NewInventoryService(db *gorm.DB, cfg *config.Config, ids *idgen.Snowflake, m *metrics.Metrics, logger *slog.Logger) *InventoryService {
	return &InventoryService{
		db:              db,
		characterRepo:   repository.NewCharacterRepository(db),
		itemRepo:        repository.NewItemRepository(db),
		inventoryRepo:   repository.NewInventoryRepository(db),
		ledger:          newGoldLedger(db, ids),
		events:          newEventWriter(db, cfg.Kafka.Topic.GameEvent, cfg.Kafka.Enabled),
		sellRatePercent: cfg.Game.SellRatePercent,
		metrics:         m,
		logger:          logger,
	}
}

// TradeResult 买卖结果，Amount 为花费或回收的金币
type TradeResult struct {
	ItemCode      int64  `json:"item_code"`
	ItemName      string `json:"item_name"`
	Quantity      int64  `json:"quantity"`
	Amount        int64  `json:"amount"`
	Money         int64  `json:"money"`
	TransactionNo string `json:"transaction_no"`
}

// SellRefund 出售回收金额，按整数运算向下取整
func SellRefund(price, quantity, ratePercent int64) int64 {
	return price * quantity * ratePercent / 100
}

// NormalizeQuantity 未传数量时默认为 1
func NormalizeQuantity(quantity int64) (int64, error) {
	if quantity == 0 {
		return 1, nil
	}
	if quantity < minTradeQuantity || quantity > maxTradeQuantity {
		return 0, invalid("quantity", "quantity 必须在 1-999 之间")
	}
	return quantity, nil
}

func (s *InventoryService) loadItem(ctx context.Context, itemCode int64) (*model.Item, error) {
	item, err := s.itemRepo.GetByCode(ctx, nil, itemCode)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

// Purchase 购买物品，花费 = 单价 × 数量
func (s *InventoryService) Purchase(ctx context.Context, accountID, characterID, itemCode, quantity int64) (*TradeResult, error) {
	quantity, err := NormalizeQuantity(quantity)
	if err != nil {
		return nil, err
	}
	if _, err := loadOwned(ctx, s.characterRepo, accountID, characterID); err != nil {
		return nil, wrap("inventory", err, "查询角色失败", "character_id", characterID)
	}
	item, err := s.loadItem(ctx, itemCode)
	if err != nil {
		return nil, wrap("inventory", err, "查询物品失败", "item_code", itemCode)
	}

	cost := item.Price * quantity
	result := &TradeResult{ItemCode: item.Code, ItemName: item.Name, Quantity: quantity, Amount: cost}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		info, err := lockInfo(ctx, s.characterRepo, tx, characterID)
		if err != nil {
			return err
		}
		if info.Money < cost {
			return ErrInsufficientFunds
		}

		inventory, err := s.inventoryRepo.GetByCharacterID(ctx, tx, characterID)
		if err != nil {
			return err
		}
		if err := s.inventoryRepo.AddQuantity(ctx, tx, inventory.ID, item.Code, item.Name, quantity); err != nil {
			return err
		}

		trans, err := s.ledger.apply(ctx, tx, info, model.GoldTxPurchase, -cost, item.Code, quantity)
		if err != nil {
			return err
		}
		result.Money = trans.BalanceAfter
		result.TransactionNo = trans.TransactionNo

		return s.events.write(ctx, tx, model.EventItemPurchased, characterID, result)
	}, txOptions)
	if err != nil {
		return nil, wrap("inventory", err, "购买物品失败", "character_id", characterID, "item_code", itemCode)
	}

	if s.metrics != nil {
		s.metrics.ItemsPurchased.WithLabelValues(item.Name).Add(float64(quantity))
		s.metrics.RecordGold(model.GoldTxPurchase, cost)
	}
	s.logger.InfoContext(ctx, "购买成功",
		"character_id", characterID, "item_code", itemCode, "quantity", quantity, "cost", cost)
	return result, nil
}

// Sell 出售背包中的物品，回收金额见 SellRefund
func (s *InventoryService) Sell(ctx context.Context, accountID, characterID, itemCode, quantity int64) (*TradeResult, error) {
	quantity, err := NormalizeQuantity(quantity)
	if err != nil {
		return nil, err
	}
	if _, err := loadOwned(ctx, s.characterRepo, accountID, characterID); err != nil {
		return nil, wrap("inventory", err, "查询角色失败", "character_id", characterID)
	}
	item, err := s.loadItem(ctx, itemCode)
	if err != nil {
		return nil, wrap("inventory", err, "查询物品失败", "item_code", itemCode)
	}

	refund := SellRefund(item.Price, quantity, s.sellRatePercent)
	result := &TradeResult{ItemCode: item.Code, ItemName: item.Name, Quantity: quantity, Amount: refund}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		info, err := lockInfo(ctx, s.characterRepo, tx, characterID)
		if err != nil {
			return err
		}

		inventory, err := s.inventoryRepo.GetByCharacterID(ctx, tx, characterID)
		if err != nil {
			return err
		}
		if _, err := s.inventoryRepo.GetItem(ctx, tx, inventory.ID, item.Code); err != nil {
			if errors.Is(err, repository.ErrInventoryItemNotFound) {
				return ErrItemNotInInventory
			}
			return err
		}
		if err := s.inventoryRepo.RemoveQuantity(ctx, tx, inventory.ID, item.Code, quantity); err != nil {
			if errors.Is(err, repository.ErrQuantityNotEnough) {
				return ErrInsufficientQuantity
			}
			return err
		}

		trans, err := s.ledger.apply(ctx, tx, info, model.GoldTxSell, refund, item.Code, quantity)
		if err != nil {
			return err
		}
		result.Money = trans.BalanceAfter
		result.TransactionNo = trans.TransactionNo

		return s.events.write(ctx, tx, model.EventItemSold, characterID, result)
	}, txOptions)
	if err != nil {
		return nil, wrap("inventory", err, "出售物品失败", "character_id", characterID, "item_code", itemCode)
	}

	if s.metrics != nil {
		s.metrics.ItemsSold.WithLabelValues(item.Name).Add(float64(quantity))
		s.metrics.RecordGold(model.GoldTxSell, refund)
	}
	s.logger.InfoContext(ctx, "出售成功",
		"character_id", characterID, "item_code", itemCode, "quantity", quantity, "refund", refund)
	return result, nil
}

// List 背包中数量大于 0 的物品，只有拥有者可以查看
func (s *InventoryService) List(ctx context.Context, accountID, characterID int64) ([]*model.InventoryItem, error) {
	if _, err := loadOwned(ctx, s.characterRepo, accountID, characterID); err != nil {
		return nil, wrap("inventory", err, "查询角色失败", "character_id", characterID)
	}
	inventory, err := s.inventoryRepo.GetByCharacterID(ctx, nil, characterID)
	if err != nil {
		return nil, wrap("inventory", err, "查询背包失败", "character_id", characterID)
	}
	lines, err := s.inventoryRepo.ListItems(ctx, inventory.ID)
	if err != nil {
		return nil, wrap("inventory", err, "查询背包物品失败", "character_id", characterID)
	}
	return lines, nil
}
