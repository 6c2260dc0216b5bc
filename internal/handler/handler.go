package handler

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"rpgserver/internal/model"
	"rpgserver/internal/service"
	"rpgserver/pkg/response"

	"github.com/gin-gonic/gin"
)

// 以下接口由 internal/service 中的同名服务实现，测试时可替换

type AccountService interface {
	Register(ctx context.Context, in *service.RegisterInput) (*model.Account, error)
	Login(ctx context.Context, in *service.LoginInput) (*service.LoginResult, error)
	Logout(ctx context.Context, refreshToken string) error
}

// Authenticator 供 AuthMiddleware 使用
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*model.Account, error)
	Refresh(ctx context.Context, refreshToken string) (*model.Account, string, error)
}

type CharacterService interface {
	Create(ctx context.Context, accountID int64, nickname string) (*model.Character, error)
	Get(ctx context.Context, viewerID, characterID int64) (*service.CharacterView, error)
	Delete(ctx context.Context, accountID, characterID int64) error
	Transactions(ctx context.Context, accountID, characterID int64, page, pageSize int) (*service.Page[*model.GoldTransaction], error)
}

type ItemService interface {
	Create(ctx context.Context, accountID int64, in *service.CreateItemInput) (*model.Item, error)
	Patch(ctx context.Context, accountID, code int64, patch *service.ItemPatch) (*model.Item, error)
	List(ctx context.Context) ([]service.ItemSummary, error)
	Get(ctx context.Context, code int64) (*model.Item, error)
	Histories(ctx context.Context, code int64) ([]*model.ItemHistory, error)
}

type InventoryService interface {
	Purchase(ctx context.Context, accountID, characterID, itemCode, quantity int64) (*service.TradeResult, error)
	Sell(ctx context.Context, accountID, characterID, itemCode, quantity int64) (*service.TradeResult, error)
	List(ctx context.Context, accountID, characterID int64) ([]*model.InventoryItem, error)
}

type EquipmentService interface {
	Equip(ctx context.Context, accountID, characterID, itemCode int64) (*service.EquipResult, error)
	Unequip(ctx context.Context, accountID, characterID, itemCode int64) (*service.EquipResult, error)
	List(ctx context.Context, characterID int64) ([]service.EquippedItem, error)
}

type RootService interface {
	Grant(ctx context.Context, accountID, characterID int64) (*service.GrantResult, error)
}

// Services 路由依赖的全部服务
type Services struct {
	Accounts   AccountService
	Auth       Authenticator
	Characters CharacterService
	Items      ItemService
	Inventory  InventoryService
	Equipment  EquipmentService
	Roots      RootService
}

// CookieConfig refresh token cookie 设置
type CookieConfig struct {
	Secure     bool
	RefreshTTL time.Duration
}

// Handler 统一处理器，包含所有服务依赖
type Handler struct {
	svc    *Services
	cookie CookieConfig
	logger *slog.Logger
}

func NewHandler(svc *Services, cookie CookieConfig, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, cookie: cookie, logger: logger}
}

// pathID 解析路径中的正整数 ID，失败时直接返回 400
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.ParamError(c, "数据格式不正确")
		return 0, false
	}
	return id, true
}
