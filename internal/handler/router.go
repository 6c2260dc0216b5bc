package handler

import (
	"log/slog"
	"net/http"

	"rpgserver/internal/metrics"
	"rpgserver/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterOptions 路由配置
type RouterOptions struct {
	Mode     string // gin 模式，为空时使用 release
	Cookie   CookieConfig
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer // /metrics 数据来源，为空时不注册
	Logger   *slog.Logger
}

// SetupRouter 配置路由
func SetupRouter(svc *Services, opts RouterOptions) *gin.Engine {
	mode := opts.Mode
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)
	registerValidators()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()

	// 注册中间件
	r.Use(RecoveryMiddleware(logger))
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(logger))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
	}
	r.Use(CORSMiddleware())

	h := NewHandler(svc, opts.Cookie, logger)
	authn := AuthMiddleware(svc.Auth, logger)

	api := r.Group("/api")
	{
		accounts := api.Group("/accounts")
		{
			accounts.POST("/regist", h.Register)
			accounts.POST("/log-in", h.Login)
			accounts.GET("/log-out", h.Logout)
		}

		characters := api.Group("/characters", authn)
		{
			characters.POST("", h.CreateCharacter)
			characters.GET("/:charactersId", h.GetCharacter)
			characters.DELETE("/:charactersId", h.DeleteCharacter)
			characters.GET("/:charactersId/transactions", h.ListTransactions)
		}

		equipments := api.Group("/equipments")
		{
			equipments.POST("/equip/:charactersId", authn, h.Equip)
			equipments.POST("/unequip/:charactersId", authn, h.Unequip)
			equipments.GET("/:charactersId", h.ListEquipment)
		}

		inventories := api.Group("/inventories", authn)
		{
			inventories.POST("/purchase/:charactersId", h.Purchase)
			inventories.POST("/sell/:charactersId", h.Sell)
			inventories.GET("/:charactersId", h.ListInventory)
		}

		items := api.Group("/items")
		{
			items.POST("", authn, RequireRole(model.RoleAdmin), h.CreateItem)
			items.PATCH("/:itemCode", authn, RequireRole(model.RoleAdmin), h.PatchItem)
			items.GET("", h.ListItems)
			items.GET("/:itemCode", h.GetItem)
			items.GET("/:itemCode/histories", authn, RequireRole(model.RoleAdmin), h.ListItemHistories)
		}

		api.GET("/roots/:charactersId", authn, h.GrantGold)
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	return r
}
