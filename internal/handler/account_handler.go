package handler

import (
	"net/http"

	"rpgserver/internal/service"
	"rpgserver/pkg/response"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	UserID          string `json:"userId" binding:"required,max=32,loginid"`
	Password        string `json:"password" binding:"required,min=6,max=72,bcryptlen"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password"`
	Name            string `json:"name" binding:"required,max=64"`
	Age             int    `json:"age" binding:"gte=0,lte=150"`
}

// Register 注册账户
// POST /api/accounts/regist
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, bindErrorMessage(err))
		return
	}

	account, err := h.svc.Accounts.Register(c.Request.Context(), &service.RegisterInput{
		LoginID:  req.UserID,
		Password: req.Password,
		Name:     req.Name,
		Age:      req.Age,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Created(c, "注册成功", gin.H{
		"userId": account.LoginID,
		"name":   req.Name,
		"age":    req.Age,
	})
}

type loginRequest struct {
	UserID   string `json:"userId" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 登录，access token 在响应体中返回，refresh token 写入 cookie
// POST /api/accounts/log-in
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, bindErrorMessage(err))
		return
	}

	result, err := h.svc.Accounts.Login(c.Request.Context(), &service.LoginInput{
		LoginID:   req.UserID,
		Password:  req.Password,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookieRefreshToken, result.RefreshToken, int(h.cookie.RefreshTTL.Seconds()), "/", "", h.cookie.Secure, true)

	response.Success(c, gin.H{
		"userId":      result.Account.LoginID,
		"accessToken": result.AccessToken,
	})
}

// Logout 删除 refresh token 并清除 cookie
// GET /api/accounts/log-out
func (h *Handler) Logout(c *gin.Context) {
	refreshToken, _ := c.Cookie(cookieRefreshToken)
	if err := h.svc.Accounts.Logout(c.Request.Context(), refreshToken); err != nil {
		h.respondError(c, err)
		return
	}

	c.SetCookie(cookieRefreshToken, "", -1, "/", "", h.cookie.Secure, true)
	c.SetCookie(cookieAuthorization, "", -1, "/", "", h.cookie.Secure, true)
	response.JSON(c, http.StatusOK, "已退出登录", nil)
}
