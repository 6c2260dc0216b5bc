package handler

import (
	"fmt"
	"net/http"

	"rpgserver/pkg/response"

	"github.com/gin-gonic/gin"
)

// GrantGold 领取金币
// GET /api/roots/:charactersId
func (h *Handler) GrantGold(c *gin.Context) {
	id, ok := pathID(c, "charactersId")
	if !ok {
		return
	}

	result, err := h.svc.Roots.Grant(c.Request.Context(), CurrentAccount(c).ID, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fmt.Sprintf("角色获得 %d 金币", result.Amount), result)
}
