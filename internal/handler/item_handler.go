package handler

import (
	"io"

	"rpgserver/internal/model"
	"rpgserver/internal/service"
	"rpgserver/pkg/response"

	"github.com/gin-gonic/gin"
)

const maxPatchBodyBytes = 16 << 10

type itemStat struct {
	Health int64 `json:"health"`
	Power  int64 `json:"power"`
}

type createItemRequest struct {
	Name        string   `json:"item_name" binding:"required"`
	Part        string   `json:"item_part" binding:"required"`
	Stat        itemStat `json:"item_stat"`
	Price       *int64   `json:"item_price" binding:"required"`
	Description string   `json:"item_desc"`
}

// itemView 物品详情
type itemView struct {
	Code        int64    `json:"item_code"`
	Name        string   `json:"item_name"`
	Part        string   `json:"item_part"`
	Stat        itemStat `json:"item_stat"`
	Price       int64    `json:"item_price"`
	Description string   `json:"item_desc"`
}

func newItemView(item *model.Item) itemView {
	return itemView{
		Code:        item.Code,
		Name:        item.Name,
		Part:        item.Part,
		Stat:        itemStat{Health: item.Health, Power: item.Power},
		Price:       item.Price,
		Description: item.Description,
	}
}

// CreateItem 新增物品（管理员）
// POST /api/items
func (h *Handler) CreateItem(c *gin.Context) {
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, bindErrorMessage(err))
		return
	}

	item, err := h.svc.Items.Create(c.Request.Context(), CurrentAccount(c).ID, &service.CreateItemInput{
		Name:        req.Name,
		Part:        req.Part,
		Health:      req.Stat.Health,
		Power:       req.Stat.Power,
		Price:       *req.Price,
		Description: req.Description,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Created(c, "物品创建成功", newItemView(item))
}

// PatchItem 修改物品（管理员），价格不可修改
// PATCH /api/items/:itemCode
func (h *Handler) PatchItem(c *gin.Context) {
	code, ok := pathID(c, "itemCode")
	if !ok {
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPatchBodyBytes))
	if err != nil {
		response.ParamError(c, "请求体格式不正确")
		return
	}
	patch, err := service.ParseItemPatch(body)
	if err != nil {
		h.respondError(c, err)
		return
	}

	item, err := h.svc.Items.Patch(c.Request.Context(), CurrentAccount(c).ID, code, patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, newItemView(item))
}

// ListItems 物品列表
// GET /api/items
func (h *Handler) ListItems(c *gin.Context) {
	items, err := h.svc.Items.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, items)
}

// GetItem 物品详情
// GET /api/items/:itemCode
func (h *Handler) GetItem(c *gin.Context) {
	code, ok := pathID(c, "itemCode")
	if !ok {
		return
	}

	item, err := h.svc.Items.Get(c.Request.Context(), code)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, newItemView(item))
}

// ListItemHistories 物品修改记录（管理员）
// GET /api/items/:itemCode/histories
func (h *Handler) ListItemHistories(c *gin.Context) {
	code, ok := pathID(c, "itemCode")
	if !ok {
		return
	}

	histories, err := h.svc.Items.Histories(c.Request.Context(), code)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, histories)
}
