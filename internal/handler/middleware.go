package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"rpgserver/internal/auth"
	"rpgserver/internal/logging"
	"rpgserver/internal/model"
	"rpgserver/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	headerRequestID     = "X-Request-ID"
	headerAuthorization = "Authorization"
	cookieRefreshToken  = "refreshToken"
	cookieAuthorization = "authorization"
	ctxAccountKey       = "account"
)

// RequestIDMiddleware 透传或生成请求 ID，并放入 context 供日志使用
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Header(headerRequestID, id)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// LoggerMiddleware 日志中间件
func LoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "HTTP",
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("ip", c.ClientIP()),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
		)
	}
}

// RecoveryMiddleware 恢复中间件，防止 panic 导致服务崩溃
func RecoveryMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.ErrorContext(c.Request.Context(), "PANIC",
					slog.Any("error", err),
					slog.String("stack", string(debug.Stack())))
				response.ServerError(c)
			}
		}()
		c.Next()
	}
}

// CORSMiddleware 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "Authorization, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// AuthMiddleware 校验 Authorization: Bearer <token>
//
// 没有 header 或 access token 过期时尝试用 refreshToken cookie 换新的 access token，
// 成功后通过响应头 Authorization 返回并继续处理请求。
func AuthMiddleware(authn Authenticator, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		header := c.GetHeader(headerAuthorization)

		if header == "" {
			if !refresh(c, authn) {
				response.Unauthorized(c, "请先登录")
			}
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || scheme != "Bearer" || token == "" {
			response.ParamError(c, "Authorization 格式应为 Bearer <token>")
			return
		}

		account, err := authn.Authenticate(ctx, token)
		switch {
		case err == nil:
			setAccount(c, account)
			c.Next()
		case errors.Is(err, auth.ErrTokenExpired):
			if !refresh(c, authn) {
				response.Unauthorized(c, "登录已过期，请重新登录")
			}
		case errors.Is(err, auth.ErrTokenInvalid), errors.Is(err, auth.ErrTokenMalformed):
			response.Unauthorized(c, "token 无效")
		default:
			if !isUnauthenticated(err) {
				logger.ErrorContext(ctx, "认证失败", slog.Any("error", err))
				response.ServerError(c)
				return
			}
			response.Unauthorized(c, "账户不存在")
		}
	}
}

// refresh 用 cookie 中的 refresh token 换取 access token，成功时继续处理请求
func refresh(c *gin.Context, authn Authenticator) bool {
	refreshToken, err := c.Cookie(cookieRefreshToken)
	if err != nil || refreshToken == "" {
		return false
	}
	account, accessToken, err := authn.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		return false
	}
	c.Header(headerAuthorization, "Bearer "+accessToken)
	setAccount(c, account)
	c.Next()
	return true
}

func setAccount(c *gin.Context, account *model.Account) {
	c.Set(ctxAccountKey, account)
}

// CurrentAccount 返回 AuthMiddleware 放入的账户，未认证时为 nil
func CurrentAccount(c *gin.Context) *model.Account {
	v, ok := c.Get(ctxAccountKey)
	if !ok {
		return nil
	}
	account, _ := v.(*model.Account)
	return account
}

// RequireRole 必须在 AuthMiddleware 之后使用
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentAccount(c).HasRole(role) {
			response.Forbidden(c, "没有权限")
			return
		}
		c.Next()
	}
}
