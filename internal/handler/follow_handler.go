package handler

import (
	"net/http"

	"github.com/devlink/devlink-backend/internal/common"
	"github.com/devlink/devlink-backend/internal/middleware"
	"github.com/devlink/devlink-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	service service.FollowService
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(service service.FollowService) *FollowHandler {
	return &FollowHandler{service: service}
}

// Follow handles POST /follows/:user_id
// @Summary Follow a user
// @Tags follows
// @Produce json
// @Param user_id path string true "user id to follow"
// @Router /follows/{user_id} [post]
func (h *FollowHandler) Follow(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	if err := h.service.Follow(userID, c.Param("user_id")); err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"following": true}, nil)
}

// Unfollow handles DELETE /follows/:user_id
// @Summary Unfollow a user
// @Tags follows
// @Produce json
// @Param user_id path string true "user id to unfollow"
// @Router /follows/{user_id} [delete]
func (h *FollowHandler) Unfollow(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	if err := h.service.Unfollow(userID, c.Param("user_id")); err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"following": false}, nil)
}

// IsMutual handles GET /follows/:user_id/mutual
// @Summary Check whether the caller and a user follow each other
// @Tags follows
// @Produce json
// @Param user_id path string true "other user id"
// @Router /follows/{user_id}/mutual [get]
func (h *FollowHandler) IsMutual(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	mutual, err := h.service.IsMutual(userID, c.Param("user_id"))
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"mutual": mutual}, nil)
}
