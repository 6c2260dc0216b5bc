package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"strconv"
	"unicode/utf8"

	"rpgserver/internal/model"
	"rpgserver/internal/repository"

	"gorm.io/gorm"
)

const (
	maxItemNameLength = 64
	maxItemDescLength = 512
	maxItemPrice      = 1_000_000_000
)

type ItemService struct {
	db       *gorm.DB
	itemRepo *repository.ItemRepository
	logger   *slog.Logger
}

func NewItemService(db *gorm.DB, logger *slog.Logger) *ItemService {
	return &ItemService{
		db:       db,
		itemRepo: repository.NewItemRepository(db),
		logger:   logger,
	}
}

type CreateItemInput struct {
	Name        string
	Part        string
	Health      int64
	Power       int64
	Price       int64
	Description string
}

func (in *CreateItemInput) validate() error {
	if err := validateItemName(in.Name); err != nil {
		return err
	}
	if !model.IsValidPart(in.Part) {
		return invalid("item_part", "未知的部位: "+in.Part)
	}
	if in.Price < 0 || in.Price > maxItemPrice {
		return invalid("item_price", "item_price 必须在 0-1000000000 之间")
	}
	return validateItemDesc(in.Description)
}

func validateItemName(name string) error {
	n := utf8.RuneCountInString(name)
	if n == 0 || n > maxItemNameLength {
		return invalid("item_name", "item_name 长度必须在 1-64 之间")
	}
	return nil
}

func validateItemDesc(desc string) error {
	if utf8.RuneCountInString(desc) > maxItemDescLength {
		return invalid("item_desc", "item_desc 不能超过 512 个字符")
	}
	return nil
}

// Create 新增物品，需要管理员权限
func (s *ItemService) Create(ctx context.Context, accountID int64, in *CreateItemInput) (*model.Item, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	exists, err := s.itemRepo.NameExists(ctx, nil, in.Name, 0)
	if err != nil {
		return nil, wrap("item", err, "查询物品失败", "item_name", in.Name)
	}
	if exists {
		return nil, ErrDuplicateItem
	}

	item := &model.Item{
		Name:        in.Name,
		Part:        in.Part,
		Health:      in.Health,
		Power:       in.Power,
		Price:       in.Price,
		Description: in.Description,
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDuplicateItem
		}
		return nil, wrap("item", err, "创建物品失败", "item_name", in.Name)
	}

	s.logger.InfoContext(ctx, "物品已创建", "account_id", accountID, "item_code", item.Code, "item_name", item.Name)
	return item, nil
}

// ItemPatch 可修改的字段，nil 表示不修改
type ItemPatch struct {
	Name        *string
	Health      *int64
	Power       *int64
	Description *string
}

func (p *ItemPatch) empty() bool {
	return p.Name == nil && p.Health == nil && p.Power == nil && p.Description == nil
}

// ParseItemPatch 按白名单解析 PATCH 请求体
// 只接受 item_name / item_stat{health,power} / item_desc，
// item_price 不可修改，其它字段视为未知字段
func ParseItemPatch(body []byte) (*ItemPatch, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, invalid("", "请求体必须是 JSON 对象")
	}
	if _, ok := raw["item_price"]; ok {
		return nil, ErrPriceImmutable
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	patch := &ItemPatch{}
	for _, key := range keys {
		value := raw[key]
		switch key {
		case "item_name":
			var name string
			if err := strictUnmarshal(value, &name); err != nil {
				return nil, invalid(key, "item_name 必须是字符串")
			}
			if err := validateItemName(name); err != nil {
				return nil, err
			}
			patch.Name = &name
		case "item_desc":
			var desc string
			if err := strictUnmarshal(value, &desc); err != nil {
				return nil, invalid(key, "item_desc 必须是字符串")
			}
			if err := validateItemDesc(desc); err != nil {
				return nil, err
			}
			patch.Description = &desc
		case "item_stat":
			var stat struct {
				Health *int64 `json:"health"`
				Power  *int64 `json:"power"`
			}
			if err := strictUnmarshal(value, &stat); err != nil {
				return nil, invalid(key, "item_stat 只能包含整数字段 health 和 power")
			}
			patch.Health = stat.Health
			patch.Power = stat.Power
		default:
			return nil, invalid(key, "未知字段: "+key)
		}
	}

	if patch.empty() {
		return nil, ErrEmptyPatch
	}
	return patch, nil
}

func strictUnmarshal(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// Patch 修改物品，每个实际变化的字段写一条修改记录
func (s *ItemService) Patch(ctx context.Context, accountID, code int64, patch *ItemPatch) (*model.Item, error) {
	if patch == nil || patch.empty() {
		return nil, ErrEmptyPatch
	}

	var updated *model.Item
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.itemRepo.GetByCode(ctx, tx, code)
		if err != nil {
			if errors.Is(err, repository.ErrItemNotFound) {
				return ErrItemNotFound
			}
			return err
		}

		updates := map[string]interface{}{}
		var histories []*model.ItemHistory
		record := func(column, field, oldValue, newValue string, value interface{}) {
			if oldValue == newValue {
				return
			}
			updates[column] = value
			histories = append(histories, &model.ItemHistory{
				ItemCode:     code,
				ChangedField: field,
				OldValue:     oldValue,
				NewValue:     newValue,
				AccountID:    accountID,
			})
		}

		if patch.Name != nil {
			if *patch.Name != item.Name {
				exists, err := s.itemRepo.NameExists(ctx, tx, *patch.Name, code)
				if err != nil {
					return err
				}
				if exists {
					return ErrDuplicateItem
				}
			}
			record("name", "item_name", item.Name, *patch.Name, *patch.Name)
			item.Name = *patch.Name
		}
		if patch.Health != nil {
			record("health", "item_health", strconv.FormatInt(item.Health, 10), strconv.FormatInt(*patch.Health, 10), *patch.Health)
			item.Health = *patch.Health
		}
		if patch.Power != nil {
			record("power", "item_power", strconv.FormatInt(item.Power, 10), strconv.FormatInt(*patch.Power, 10), *patch.Power)
			item.Power = *patch.Power
		}
		if patch.Description != nil {
			record("description", "item_desc", item.Description, *patch.Description, *patch.Description)
			item.Description = *patch.Description
		}

		if err := s.itemRepo.Update(ctx, tx, code, updates); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				return ErrDuplicateItem
			}
			return err
		}
		if err := s.itemRepo.CreateHistories(ctx, tx, histories); err != nil {
			return err
		}
		updated = item
		return nil
	}, txOptions)
	if err != nil {
		return nil, wrap("item", err, "修改物品失败", "item_code", code)
	}

	s.logger.InfoContext(ctx, "物品已修改", "account_id", accountID, "item_code", code)
	return updated, nil
}

// ItemSummary 物品列表项
type ItemSummary struct {
	Code  int64  `json:"item_code"`
	Name  string `json:"item_name"`
	Price int64  `json:"item_price"`
}

func (s *ItemService) List(ctx context.Context) ([]ItemSummary, error) {
	items, err := s.itemRepo.List(ctx)
	if err != nil {
		return nil, wrap("item", err, "查询物品列表失败")
	}
	list := make([]ItemSummary, 0, len(items))
	for _, item := range items {
		list = append(list, ItemSummary{Code: item.Code, Name: item.Name, Price: item.Price})
	}
	return list, nil
}

func (s *ItemService) Get(ctx context.Context, code int64) (*model.Item, error) {
	item, err := s.itemRepo.GetByCode(ctx, nil, code)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, wrap("item", err, "查询物品失败", "item_code", code)
	}
	return item, nil
}

// Histories 物品修改记录
func (s *ItemService) Histories(ctx context.Context, code int64) ([]*model.ItemHistory, error) {
	if _, err := s.Get(ctx, code); err != nil {
		return nil, err
	}
	histories, err := s.itemRepo.ListHistories(ctx, code)
	if err != nil {
		return nil, wrap("item", err, "查询物品修改记录失败", "item_code", code)
	}
	return histories, nil
}
