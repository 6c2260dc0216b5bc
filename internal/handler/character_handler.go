package handler

import (
	"net/http"
	"strconv"

	"rpgserver/pkg/response"

	"github.com/gin-gonic/gin"
)

type createCharacterRequest struct {
	Nickname string `json:"nickname" binding:"required"`
}

// CreateCharacter 创建角色
// POST /api/characters
func (h *Handler) CreateCharacter(c *gin.Context) {
	var req createCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, bindErrorMessage(err))
		return
	}

	account := CurrentAccount(c)
	character, err := h.svc.Characters.Create(c.Request.Context(), account.ID, req.Nickname)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Created(c, req.Nickname+" 角色创建成功", gin.H{"charactersId": character.ID})
}

// GetCharacter 角色详情，非拥有者看不到 money
// GET /api/characters/:charactersId
func (h *Handler) GetCharacter(c *gin.Context) {
	id, ok := pathID(c, "charactersId")
	if !ok {
		return
	}

	view, err := h.svc.Characters.Get(c.Request.Context(), CurrentAccount(c).ID, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, view)
}

// DeleteCharacter 删除角色
// DELETE /api/characters/:charactersId
func (h *Handler) DeleteCharacter(c *gin.Context) {
	id, ok := pathID(c, "charactersId")
	if !ok {
		return
	}

	if err := h.svc.Characters.Delete(c.Request.Context(), CurrentAccount(c).ID, id); err != nil {
		h.respondError(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, "角色已删除", nil)
}

// ListTransactions 金币流水
// GET /api/characters/:charactersId/transactions?page=1&page_size=20
func (h *Handler) ListTransactions(c *gin.Context) {
	id, ok := pathID(c, "charactersId")
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.svc.Characters.Transactions(c.Request.Context(), CurrentAccount(c).ID, id, page, pageSize)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, result)
}
