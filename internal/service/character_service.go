package service

import (
	"context"
	"errors"
	"log/slog"
	"unicode/utf8"

	"rpgserver/internal/config"
	"rpgserver/internal/model"
	"rpgserver/internal/repository"

	"gorm.io/gorm"
)

const maxNicknameLength = 20

type CharacterService struct {
	db              *gorm.DB
	characterRepo   *repository.CharacterRepository
	inventoryRepo   *repository.InventoryRepository
	equipmentRepo   *repository.EquipmentRepository
	transactionRepo *repository.TransactionRepository
	events          *eventWriter
	game            config.GameConfig
	logger          *slog.Logger
}

func NewCharacterService(db *gorm.DB, cfg *config.Config, logger *slog.Logger) *CharacterService {
	return &CharacterService{
		db:              db,
		characterRepo:   repository.NewCharacterRepository(db),
		inventoryRepo:   repository.NewInventoryRepository(db),
		equipmentRepo:   repository.NewEquipmentRepository(db),
		transactionRepo: repository.NewTransactionRepository(db),
		events:          newEventWriter(db, cfg.Kafka.Topic.GameEvent, cfg.Kafka.Enabled),
		game:            cfg.Game,
		logger:          logger,
	}
}

// CharacterView 角色详情，Money 只对角色拥有者返回
type CharacterView struct {
	Character CharacterRef      `json:"character"`
	Info      CharacterInfoView `json:"characterInfo"`
}

type CharacterRef struct {
	ID int64 `json:"charactersId"`
}

type CharacterInfoView struct {
	Nickname string `json:"nickname"`
	Health   int64  `json:"health"`
	Power    int64  `json:"power"`
	Money    *int64 `json:"money,omitempty"`
}

func validateNickname(nickname string) error {
	n := utf8.RuneCountInString(nickname)
	if n == 0 || n > maxNicknameLength {
		return invalid("nickname", "nickname 长度必须在 1-20 之间")
	}
	return nil
}

// Create 创建角色、角色属性和默认背包
func (s *CharacterService) Create(ctx context.Context, accountID int64, nickname string) (*model.Character, error) {
	if err := validateNickname(nickname); err != nil {
		return nil, err
	}

	exists, err := s.characterRepo.NicknameExists(ctx, nickname)
	if err != nil {
		return nil, wrap("character", err, "查询昵称失败", "nickname", nickname)
	}
	if exists {
		return nil, ErrDuplicateNickname
	}

	character := &model.Character{AccountID: accountID}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.characterRepo.Create(ctx, tx, character); err != nil {
			return err
		}

		info := &model.CharacterInfo{
			CharacterID: character.ID,
			Nickname:    nickname,
			Health:      s.game.StartingHealth,
			Power:       s.game.StartingPower,
			Money:       s.game.StartingMoney,
		}
		if err := s.characterRepo.CreateInfo(ctx, tx, info); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				return ErrDuplicateNickname
			}
			return err
		}
		character.Info = info

		inventory := &model.Inventory{
			CharacterID: character.ID,
			Name:        model.DefaultInventoryName,
			Size:        s.game.InventorySize,
		}
		if err := s.inventoryRepo.Create(ctx, tx, inventory); err != nil {
			return err
		}

		return s.events.write(ctx, tx, model.EventCharacterCreated, character.ID, map[string]interface{}{
			"accountsId": accountID,
			"nickname":   nickname,
		})
	}, txOptions)
	if err != nil {
		return nil, wrap("character", err, "创建角色失败", "account_id", accountID)
	}

	s.logger.InfoContext(ctx, "角色创建成功", "account_id", accountID, "character_id", character.ID)
	return character, nil
}

// Get 任何登录用户都可以查看，非拥有者看不到金币
func (s *CharacterService) Get(ctx context.Context, viewerID, characterID int64) (*CharacterView, error) {
	character, err := s.characterRepo.GetByID(ctx, characterID)
	if err != nil {
		if errors.Is(err, repository.ErrCharacterNotFound) {
			return nil, ErrCharacterNotFound
		}
		return nil, wrap("character", err, "查询角色失败", "character_id", characterID)
	}
	if character.Info == nil {
		return nil, ErrCharacterNotFound
	}

	view := &CharacterView{
		Character: CharacterRef{ID: character.ID},
		Info: CharacterInfoView{
			Nickname: character.Info.Nickname,
			Health:   character.Info.Health,
			Power:    character.Info.Power,
		},
	}
	if character.OwnedBy(viewerID) {
		money := character.Info.Money
		view.Info.Money = &money
	}
	return view, nil
}

// Delete 删除角色的装备、背包、属性和角色本身
// 金币流水保留，用于审计
func (s *CharacterService) Delete(ctx context.Context, accountID, characterID int64) error {
	if _, err := loadOwned(ctx, s.characterRepo, accountID, characterID); err != nil {
		return wrap("character", err, "查询角色失败", "character_id", characterID)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.equipmentRepo.DeleteByCharacterID(ctx, tx, characterID); err != nil {
			return err
		}
		if err := s.inventoryRepo.DeleteByCharacterID(ctx, tx, characterID); err != nil {
			return err
		}
		if err := s.characterRepo.Delete(ctx, tx, characterID); err != nil {
			if errors.Is(err, repository.ErrCharacterNotFound) {
				return ErrCharacterNotFound
			}
			return err
		}
		return s.events.write(ctx, tx, model.EventCharacterDeleted, characterID, map[string]interface{}{
			"accountsId": accountID,
		})
	}, txOptions)
	if err != nil {
		return wrap("character", err, "删除角色失败", "character_id", characterID)
	}

	s.logger.InfoContext(ctx, "角色已删除", "account_id", accountID, "character_id", characterID)
	return nil
}

// Page 分页结果
type Page[T any] struct {
	List     []T   `json:"list"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// Transactions 角色金币流水，只有拥有者可以查看
func (s *CharacterService) Transactions(ctx context.Context, accountID, characterID int64, page, pageSize int) (*Page[*model.GoldTransaction], error) {
	if _, err := loadOwned(ctx, s.characterRepo, accountID, characterID); err != nil {
		return nil, wrap("character", err, "查询角色失败", "character_id", characterID)
	}

	page, pageSize = normalizePage(page, pageSize)
	list, total, err := s.transactionRepo.ListByCharacterID(ctx, characterID, page, pageSize)
	if err != nil {
		return nil, wrap("character", err, "查询金币流水失败", "character_id", characterID)
	}
	return &Page[*model.GoldTransaction]{List: list, Total: total, Page: page, PageSize: pageSize}, nil
}
