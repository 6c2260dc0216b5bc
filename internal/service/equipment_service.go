package service

import (
	"context"
	"errors"
	"log/slog"

	"rpgserver/internal/metrics"
	"rpgserver/internal/model"
	"rpgserver/internal/repository"

	"gorm.io/gorm"
)

type EquipmentService struct {
	db            *gorm.DB
	characterRepo *repository.CharacterRepository
	itemRepo      *repository.ItemRepository
	inventoryRepo *repository.InventoryRepository
	equipmentRepo *repository.EquipmentRepository
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

func NewEquipmentService(db *gorm.DB, m *metrics.Metrics, logger *slog.Logger) *EquipmentService {
	return &EquipmentService{
		db:            db,
		characterRepo: repository.NewCharacterRepository(db),
		itemRepo:      repository.NewItemRepository(db),
		inventoryRepo: repository.NewInventoryRepository(db),
		equipmentRepo: repository.NewEquipmentRepository(db),
		metrics:       m,
		logger:        logger,
	}
}

// EquipResult 装备或卸下后的角色状态
type EquipResult struct {
	ItemCode int64  `json:"item_code"`
	ItemName string `json:"item_name"`
	ItemPart string `json:"item_part"`
	Health   int64  `json:"health"`
	Power    int64  `json:"power"`
}

// EquippedItem 公开的装备列表项
type EquippedItem struct {
	ItemCode int64  `json:"item_code"`
	ItemName string `json:"item_name"`
	ItemPart string `json:"item_part"`
}

// Equip 从背包取出一件物品装备到对应部位
// 同一事务内：写装备记录、背包数量 -1、属性加上物品属性
func (s *EquipmentService) Equip(ctx context.Context, accountID, characterID, itemCode int64) (*EquipResult, error) {
	if _, err := loadOwned(ctx, s.characterRepo, accountID, characterID); err != nil {
		return nil, wrap("equipment", err, "查询角色失败", "character_id", characterID)
	}

	item, err := s.itemRepo.GetByCode(ctx, nil, itemCode)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, wrap("equipment", err, "查询物品失败", "item_code", itemCode)
	}
	if !item.Equippable() {
		return nil, ErrItemNotEquippable
	}

	result := &EquipResult{ItemCode: item.Code, ItemName: item.Name, ItemPart: item.Part}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		info, err := lockInfo(ctx, s.characterRepo, tx, characterID)
		if err != nil {
			return err
		}

		inventory, err := s.inventoryRepo.GetByCharacterID(ctx, tx, characterID)
		if err != nil {
			return err
		}
		line, err := s.inventoryRepo.GetItem(ctx, tx, inventory.ID, itemCode)
		if errors.Is(err, repository.ErrInventoryItemNotFound) || (err == nil && line.Quantity < 1) {
			return ErrItemNotInInventory
		}
		if err != nil {
			return err
		}

		_, err = s.equipmentRepo.GetByPart(ctx, tx, characterID, item.Part)
		if err == nil {
			return ErrSlotOccupied
		}
		if !errors.Is(err, repository.ErrEquipmentNotFound) {
			return err
		}

		equipment := &model.Equipment{
			CharacterID: characterID,
			Part:        item.Part,
			ItemCode:    item.Code,
			ItemName:    item.Name,
			Health:      item.Health,
			Power:       item.Power,
		}
		if err := s.equipmentRepo.Create(ctx, tx, equipment); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				return ErrSlotOccupied
			}
			return err
		}

		if err := s.inventoryRepo.RemoveQuantity(ctx, tx, inventory.ID, itemCode, 1); err != nil {
			if errors.Is(err, repository.ErrQuantityNotEnough) {
				return ErrItemNotInInventory
			}
			return err
		}

		if err := s.characterRepo.AddStats(ctx, tx, characterID, item.Health, item.Power); err != nil {
			return err
		}
		result.Health = info.Health + item.Health
		result.Power = info.Power + item.Power
		return nil
	}, txOptions)
	if err != nil {
		return nil, wrap("equipment", err, "装备失败", "character_id", characterID, "item_code", itemCode)
	}

	s.recordOp("equip")
	s.logger.InfoContext(ctx, "装备成功", "character_id", characterID, "item_code", itemCode, "part", item.Part)
	return result, nil
}

// Unequip 卸下装备放回背包，属性按装备时的快照扣减
func (s *EquipmentService) Unequip(ctx context.Context, accountID, characterID, itemCode int64) (*EquipResult, error) {
	if _, err := loadOwned(ctx, s.characterRepo, accountID, characterID); err != nil {
		return nil, wrap("equipment", err, "查询角色失败", "character_id", characterID)
	}

	result := &EquipResult{ItemCode: itemCode}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		info, err := lockInfo(ctx, s.characterRepo, tx, characterID)
		if err != nil {
			return err
		}

		equipment, err := s.equipmentRepo.GetByItemCode(ctx, tx, characterID, itemCode)
		if err != nil {
			if errors.Is(err, repository.ErrEquipmentNotFound) {
				return ErrNotEquipped
			}
			return err
		}
		if err := s.equipmentRepo.Delete(ctx, tx, equipment.ID); err != nil {
			return err
		}

		inventory, err := s.inventoryRepo.GetByCharacterID(ctx, tx, characterID)
		if err != nil {
			return err
		}
		if err := s.inventoryRepo.AddQuantity(ctx, tx, inventory.ID, itemCode, equipment.ItemName, 1); err != nil {
			return err
		}

		if err := s.characterRepo.AddStats(ctx, tx, characterID, -equipment.Health, -equipment.Power); err != nil {
			return err
		}

		result.ItemName = equipment.ItemName
		result.ItemPart = equipment.Part
		result.Health = info.Health - equipment.Health
		result.Power = info.Power - equipment.Power
		return nil
	}, txOptions)
	if err != nil {
		return nil, wrap("equipment", err, "卸下装备失败", "character_id", characterID, "item_code", itemCode)
	}

	s.recordOp("unequip")
	s.logger.InfoContext(ctx, "卸下装备成功", "character_id", characterID, "item_code", itemCode)
	return result, nil
}

// List 公开查询角色当前装备
func (s *EquipmentService) List(ctx context.Context, characterID int64) ([]EquippedItem, error) {
	if _, err := s.characterRepo.GetByID(ctx, characterID); err != nil {
		if errors.Is(err, repository.ErrCharacterNotFound) {
			return nil, ErrCharacterNotFound
		}
		return nil, wrap("equipment", err, "查询角色失败", "character_id", characterID)
	}

	equipments, err := s.equipmentRepo.ListByCharacterID(ctx, characterID)
	if err != nil {
		return nil, wrap("equipment", err, "查询装备失败", "character_id", characterID)
	}

	list := make([]EquippedItem, 0, len(equipments))
	for _, e := range equipments {
		list = append(list, EquippedItem{ItemCode: e.ItemCode, ItemName: e.ItemName, ItemPart: e.Part})
	}
	return list, nil
}

func (s *EquipmentService) recordOp(op string) {
	if s.metrics != nil {
		s.metrics.EquipOperations.WithLabelValues(op).Inc()
	}
}
