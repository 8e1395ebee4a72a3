package handler

import (
	"net/http"

	"github.com/devlink/devlink-backend/internal/common"
	"github.com/devlink/devlink-backend/internal/domain"
	"github.com/devlink/devlink-backend/internal/middleware"
	"github.com/devlink/devlink-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	service service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Register handles POST /auth/register
// @Summary Create an account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body domain.RegisterRequest true "signup payload"
// @Success 200 {object} common.APIResponse{data=domain.TokenResponse}
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := h.service.Register(&req)
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, result, nil)
}

// Login handles POST /auth/login
// @Summary Log in with username and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body domain.LoginRequest true "credentials"
// @Success 200 {object} common.APIResponse{data=domain.TokenResponse}
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := h.service.Login(&req)
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, result, nil)
}

// Refresh handles POST /auth/refresh
// @Summary Exchange a refresh token for a fresh pair
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} common.APIResponse{data=domain.TokenResponse}
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := h.service.Refresh(req.RefreshToken)
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, result, nil)
}

// UsernameAvailable handles GET /auth/username-available
// @Summary Check whether a username is free
// @Tags auth
// @Produce json
// @Param username query string true "username to check"
// @Router /auth/username-available [get]
func (h *AuthHandler) UsernameAvailable(c *gin.Context) {
	username := c.Query("username")
	available, err := h.service.UsernameAvailable(username)
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"username": username, "available": available}, nil)
}

// GithubLink handles GET /members/:user_id/github
// @Summary Report whether a member has a linked GitHub account
// @Tags members
// @Produce json
// @Param user_id path string true "member user id"
// @Success 200 {object} common.APIResponse{data=domain.GithubLinkResponse}
// @Router /members/{user_id}/github [get]
func (h *AuthHandler) GithubLink(c *gin.Context) {
	if middleware.GetUserID(c) == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	result, err := h.service.GithubLink(c.Param("user_id"))
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, result, nil)
}
