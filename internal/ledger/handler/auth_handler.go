package handler

import (
	"github.com/KhaledMKhaled/shipledger/internal/ledger/service"
	"github.com/gin-gonic/gin"
)

// AuthHandler serves login, refresh and account endpoints.
type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Login POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "بيانات غير صالحة: "+err.Error())
		return
	}

	pair, err := h.svc.Login(c.Request.Context(), &req)
	if err != nil {
		Error(c, 40100, err.Error())
		return
	}
	Success(c, pair)
}

// Refresh POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "بيانات غير صالحة: "+err.Error())
		return
	}

	pair, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		Error(c, 40100, err.Error())
		return
	}
	Success(c, pair)
}

// Logout POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "بيانات غير صالحة: "+err.Error())
		return
	}

	h.svc.Logout(c.Request.Context(), req.RefreshToken)
	Success(c, nil)
}

// Me GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.svc.Me(c.Request.Context(), GetUserID(c))
	if err != nil {
		NotFound(c, "المستخدم غير موجود")
		return
	}
	Success(c, user)
}

// ListUsers GET /users (manager only)
func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context())
	if err != nil {
		InternalError(c, "فشل تحميل المستخدمين: "+err.Error())
		return
	}
	Success(c, users)
}

// CreateUser POST /users (manager only)
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req service.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "بيانات غير صالحة: "+err.Error())
		return
	}

	user, err := h.svc.CreateUser(c.Request.Context(), &req)
	if err != nil {
		ServiceError(c, err, "فشل إنشاء المستخدم")
		return
	}
	Created(c, user)
}
