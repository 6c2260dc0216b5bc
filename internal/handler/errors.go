package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"rpgserver/internal/service"
	"rpgserver/pkg/response"

	"github.com/gin-gonic/gin"
)

// errorStatus 业务错误到 HTTP 状态码的映射，按顺序匹配
var errorStatus = []struct {
	err    error
	status int
}{
	{service.ErrItemNotEquippable, http.StatusBadRequest},
	{service.ErrInvalidCredentials, http.StatusUnauthorized},
	{service.ErrUnauthenticated, http.StatusUnauthorized},
	{service.ErrNotOwner, http.StatusForbidden},
	{service.ErrAccountNotFound, http.StatusNotFound},
	{service.ErrCharacterNotFound, http.StatusNotFound},
	{service.ErrItemNotFound, http.StatusNotFound},
	{service.ErrItemNotInInventory, http.StatusNotFound},
	{service.ErrDuplicateLoginID, http.StatusConflict},
	{service.ErrDuplicateNickname, http.StatusConflict},
	{service.ErrDuplicateItem, http.StatusConflict},
	{service.ErrSlotOccupied, http.StatusConflict},
	{service.ErrNotEquipped, http.StatusConflict},
	{service.ErrInsufficientFunds, http.StatusConflict},
	{service.ErrInsufficientQuantity, http.StatusConflict},
	{service.ErrTooManyAttempts, http.StatusTooManyRequests},
}

// respondError 所有 handler 的错误出口
// 未知错误只记录日志，客户端只看到统一的 500 信息
func (h *Handler) respondError(c *gin.Context, err error) {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		response.ParamError(c, ve.Error())
		return
	}
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			response.Error(c, e.status, e.err.Error())
			return
		}
	}

	h.logger.ErrorContext(c.Request.Context(), "请求处理失败",
		slog.String("method", c.Request.Method),
		slog.String("path", c.FullPath()),
		slog.Any("error", err))
	response.ServerError(c)
}

func isUnauthenticated(err error) bool {
	return errors.Is(err, service.ErrUnauthenticated)
}
