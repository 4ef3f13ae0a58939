package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/stocklens/catalog-api/internal/middleware"
	"github.com/stocklens/catalog-api/internal/service"
	"github.com/stocklens/catalog-api/internal/utils"
)

type AuthHandler struct {
	authService *service.AuthService
	rateLimiter *middleware.InvalidAuthRateLimiter
}

func NewAuthHandler(authService *service.AuthService, rateLimiter *middleware.InvalidAuthRateLimiter) *AuthHandler {
	return &AuthHandler{authService: authService, rateLimiter: rateLimiter}
}

// Login handles POST /v1/auth/login. Failed attempts are rate limited
// per client IP.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	ip := c.ClientIP()
	if !h.rateLimiter.Allow(ip) {
		utils.Error(c, 429, "TOO_MANY_ATTEMPTS", "Too many login attempts, try again later")
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, utils.ErrAccountInactive) {
			utils.Error(c, 403, "ACCOUNT_INACTIVE", "Account is inactive")
			return
		}
		utils.Error(c, 401, "INVALID_CREDENTIALS", "Invalid email or password")
		return
	}

	h.rateLimiter.Reset(ip)
	utils.Success(c, 200, "Login successful", gin.H{
		"token": token,
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
			"role":  user.Role,
		},
	})
}

// Register handles POST /v1/auth/register. The account stays inactive
// until an admin approves it.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
		Name     string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, 201, "Registration successful, awaiting admin approval", gin.H{
		"userId": user.ID,
		"status": "pending_approval",
	})
}

// PendingUsers handles GET /v1/admin/users/pending.
func (h *AuthHandler) PendingUsers(c *gin.Context) {
	users, err := h.authService.ListPendingUsers(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, 200, "Pending users fetched", users)
}

// ApproveUser handles PUT /v1/admin/users/:userId/approve.
func (h *AuthHandler) ApproveUser(c *gin.Context) {
	user, err := h.authService.ApproveUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, 200, "User approved", user)
}

// RejectUser handles DELETE /v1/admin/users/:userId.
func (h *AuthHandler) RejectUser(c *gin.Context) {
	if err := h.authService.RejectUser(c.Request.Context(), c.Param("userId")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, 200, "User rejected", nil)
}
