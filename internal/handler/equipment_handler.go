package handler

import (
	"rpgserver/pkg/response"

	"github.com/gin-gonic/gin"
)

type equipRequest struct {
	ItemCode int64 `json:"item_code" binding:"required,gt=0"`
}

// Equip 装备物品
// POST /api/equipments/equip/:charactersId
func (h *Handler) Equip(c *gin.Context) {
	id, ok := pathID(c, "charactersId")
	if !ok {
		return
	}
	var req equipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, bindErrorMessage(err))
		return
	}

	result, err := h.svc.Equipment.Equip(c.Request.Context(), CurrentAccount(c).ID, id, req.ItemCode)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Created(c, result.ItemName+" 装备成功", result)
}

// Unequip 卸下装备
// POST /api/equipments/unequip/:charactersId
func (h *Handler) Unequip(c *gin.Context) {
	id, ok := pathID(c, "charactersId")
	if !ok {
		return
	}
	var req equipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, bindErrorMessage(err))
		return
	}

	result, err := h.svc.Equipment.Unequip(c.Request.Context(), CurrentAccount(c).ID, id, req.ItemCode)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Created(c, result.ItemName+" 已卸下", result)
}

// ListEquipment 公开查询角色装备
// GET /api/equipments/:charactersId
func (h *Handler) ListEquipment(c *gin.Context) {
	id, ok := pathID(c, "charactersId")
	if !ok {
		return
	}

	list, err := h.svc.Equipment.List(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, list)
}
