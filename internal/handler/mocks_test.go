package handler

import (
	"context"

	"rpgserver/internal/model"
	"rpgserver/internal/service"

	"github.com/stretchr/testify/mock"
)

type mockAccounts struct {
	mock.Mock
}

func (m *mockAccounts) Register(ctx context.Context, in *service.RegisterInput) (*model.Account, error) {
	args := m.Called(ctx, in)
	a, _ := args.Get(0).(*model.Account)
	return a, args.Error(1)
}

func (m *mockAccounts) Login(ctx context.Context, in *service.LoginInput) (*service.LoginResult, error) {
	args := m.Called(ctx, in)
	r, _ := args.Get(0).(*service.LoginResult)
	return r, args.Error(1)
}

func (m *mockAccounts) Logout(ctx context.Context, refreshToken string) error {
	return m.Called(ctx, refreshToken).Error(0)
}

func (m *mockAccounts) Authenticate(ctx context.Context, accessToken string) (*model.Account, error) {
	args := m.Called(ctx, accessToken)
	a, _ := args.Get(0).(*model.Account)
	return a, args.Error(1)
}

func (m *mockAccounts) Refresh(ctx context.Context, refreshToken string) (*model.Account, string, error) {
	args := m.Called(ctx, refreshToken)
	a, _ := args.Get(0).(*model.Account)
	return a, args.String(1), args.Error(2)
}

type mockCharacters struct {
	mock.Mock
}

func (m *mockCharacters) Create(ctx context.Context, accountID int64, nickname string) (*model.Character, error) {
	args := m.Called(ctx, accountID, nickname)
	c, _ := args.Get(0).(*model.Character)
	return c, args.Error(1)
}

func (m *mockCharacters) Get(ctx context.Context, viewerID, characterID int64) (*service.CharacterView, error) {
	args := m.Called(ctx, viewerID, characterID)
	v, _ := args.Get(0).(*service.CharacterView)
	return v, args.Error(1)
}

func (m *mockCharacters) Delete(ctx context.Context, accountID, characterID int64) error {
	return m.Called(ctx, accountID, characterID).Error(0)
}

func (m *mockCharacters) Transactions(ctx context.Context, accountID, characterID int64, page, pageSize int) (*service.Page[*model.GoldTransaction], error) {
	args := m.Called(ctx, accountID, characterID, page, pageSize)
	p, _ := args.Get(0).(*service.Page[*model.GoldTransaction])
	return p, args.Error(1)
}

type mockItems struct {
	mock.Mock
}

func (m *mockItems) Create(ctx context.Context, accountID int64, in *service.CreateItemInput) (*model.Item, error) {
	args := m.Called(ctx, accountID, in)
	i, _ := args.Get(0).(*model.Item)
	return i, args.Error(1)
}

func (m *mockItems) Patch(ctx context.Context, accountID, code int64, patch *service.ItemPatch) (*model.Item, error) {
	args := m.Called(ctx, accountID, code, patch)
	i, _ := args.Get(0).(*model.Item)
	return i, args.Error(1)
}

func (m *mockItems) List(ctx context.Context) ([]service.ItemSummary, error) {
	args := m.Called(ctx)
	l, _ := args.Get(0).([]service.ItemSummary)
	return l, args.Error(1)
}

func (m *mockItems) Get(ctx context.Context, code int64) (*model.Item, error) {
	args := m.Called(ctx, code)
	i, _ := args.Get(0).(*model.Item)
	return i, args.Error(1)
}

func (m *mockItems) Histories(ctx context.Context, code int64) ([]*model.ItemHistory, error) {
	args := m.Called(ctx, code)
	l, _ := args.Get(0).([]*model.ItemHistory)
	return l, args.Error(1)
}

type mockInventory struct {
	mock.Mock
}

func (m *mockInventory) Purchase(ctx context.Context, accountID, characterID, itemCode, quantity int64) (*service.TradeResult, error) {
	args := m.Called(ctx, accountID, characterID, itemCode, quantity)
	r, _ := args.Get(0).(*service.TradeResult)
	return r, args.Error(1)
}

func (m *mockInventory) Sell(ctx context.Context, accountID, characterID, itemCode, quantity int64) (*service.TradeResult, error) {
	args := m.Called(ctx, accountID, characterID, itemCode, quantity)
	r, _ := args.Get(0).(*service.TradeResult)
	return r, args.Error(1)
}

func (m *mockInventory) List(ctx context.Context, accountID, characterID int64) ([]*model.InventoryItem, error) {
	args := m.Called(ctx, accountID, characterID)
	l, _ := args.Get(0).([]*model.InventoryItem)
	return l, args.Error(1)
}

type mockEquipment struct {
	mock.Mock
}

func (m *mockEquipment) Equip(ctx context.Context, accountID, characterID, itemCode int64) (*service.EquipResult, error) {
	args := m.Called(ctx, accountID, characterID, itemCode)
	r, _ := args.Get(0).(*service.EquipResult)
	return r, args.Error(1)
}

func (m *mockEquipment) Unequip(ctx context.Context, accountID, characterID, itemCode int64) (*service.EquipResult, error) {
	args := m.Called(ctx, accountID, characterID, itemCode)
	r, _ := args.Get(0).(*service.EquipResult)
	return r, args.Error(1)
}

func (m *mockEquipment) List(ctx context.Context, characterID int64) ([]service.EquippedItem, error) {
	args := m.Called(ctx, characterID)
	l, _ := args.Get(0).([]service.EquippedItem)
	return l, args.Error(1)
}

type mockRoots struct {
	mock.Mock
}

func (m *mockRoots) Grant(ctx context.Context, accountID, characterID int64) (*service.GrantResult, error) {
	args := m.Called(ctx, accountID, characterID)
	r, _ := args.Get(0).(*service.GrantResult)
	return r, args.Error(1)
}
