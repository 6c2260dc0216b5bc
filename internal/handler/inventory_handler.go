package handler

import (
	"rpgserver/pkg/response"

	"github.com/gin-gonic/gin"
)

type tradeRequest struct {
	ItemCode int64 `json:"item_code" binding:"required,gt=0"`
	Quantity int64 `json:"quantity" binding:"gte=0,lte=999"`
}

// Purchase 购买物品
// POST /api/inventories/purchase/:charactersId
func (h *Handler) Purchase(c *gin.Context) {
	id, ok := pathID(c, "charactersId")
	if !ok {
		return
	}
	var req tradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, bindErrorMessage(err))
		return
	}

	result, err := h.svc.Inventory.Purchase(c.Request.Context(), CurrentAccount(c).ID, id, req.ItemCode, req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Created(c, "购买成功", result)
}

// Sell 出售物品
// POST /api/inventories/sell/:charactersId
func (h *Handler) Sell(c *gin.Context) {
	id, ok := pathID(c, "charactersId")
	if !ok {
		return
	}
	var req tradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, bindErrorMessage(err))
		return
	}

	result, err := h.svc.Inventory.Sell(c.Request.Context(), CurrentAccount(c).ID, id, req.ItemCode, req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Created(c, "出售成功", result)
}

// ListInventory 背包物品
// GET /api/inventories/:charactersId
func (h *Handler) ListInventory(c *gin.Context) {
	id, ok := pathID(c, "charactersId")
	if !ok {
		return
	}

	lines, err := h.svc.Inventory.List(c.Request.Context(), CurrentAccount(c).ID, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, lines)
}
