package handler

import (
	"net/http"
	"strconv"

	"github.com/devlink/devlink-backend/internal/common"
	"github.com/devlink/devlink-backend/internal/middleware"
	"github.com/devlink/devlink-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// FeedHandler handles trending feed HTTP requests
type FeedHandler struct {
	service service.FeedService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(service service.FeedService) *FeedHandler {
	return &FeedHandler{service: service}
}

// Trending handles GET /feed/trending
// @Summary List the highest-engagement posts
// @Tags feed
// @Produce json
// @Param limit query int false "max entries"
// @Success 200 {object} common.APIResponse{data=[]service.TrendingItem}
// @Router /feed/trending [get]
func (h *FeedHandler) Trending(c *gin.Context) {
	limit := 20
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 {
		limit = l
	}

	items, err := h.service.Trending(c.Request.Context(), limit)
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, items, nil)
}

// RecordEngagement handles POST /feed/engagement
// @Summary Record an engagement signal for trending aggregation
// @Tags feed
// @Accept json
// @Produce json
// @Router /feed/engagement [post]
func (h *FeedHandler) RecordEngagement(c *gin.Context) {
	if middleware.GetUserID(c) == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	var req struct {
		PostID string  `json:"post_id" binding:"required"`
		Weight float64 `json:"weight"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Weight <= 0 {
		req.Weight = 1
	}

	if err := h.service.RecordEngagement(c.Request.Context(), req.PostID, req.Weight); err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"ok": true}, nil)
}
