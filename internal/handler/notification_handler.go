package handler

import (
	"net/http"
	"strconv"

	"github.com/devlink/devlink-backend/internal/common"
	"github.com/devlink/devlink-backend/internal/middleware"
	"github.com/devlink/devlink-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// NotificationHandler handles notification HTTP requests
type NotificationHandler struct {
	service *service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(service *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// GetList handles GET /notifications
// @Summary List the caller's notifications
// @Tags notifications
// @Produce json
// @Param page query int false "page"
// @Param limit query int false "page size"
// @Success 200 {object} common.APIResponse{data=domain.NotificationListResponse}
// @Router /notifications [get]
func (h *NotificationHandler) GetList(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	page := 1
	if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 0 {
		page = p
	}
	limit := 20
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 {
		limit = l
	}

	result, err := h.service.GetList(userID, page, limit)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list notifications", err)
		return
	}
	common.SuccessResponse(c, result, nil)
}

// GetUnreadCount handles GET /notifications/unread-count
// @Summary Count the caller's unread notifications
// @Tags notifications
// @Produce json
// @Success 200 {object} common.APIResponse{data=domain.NotificationSummaryResponse}
// @Router /notifications/unread-count [get]
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	result, err := h.service.GetUnreadCount(userID)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to count notifications", err)
		return
	}
	common.SuccessResponse(c, result, nil)
}

// MarkAsRead handles POST /notifications/:id/read
// @Summary Mark one notification as read
// @Tags notifications
// @Produce json
// @Param id path int true "notification id"
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid notification id", err)
		return
	}

	if err := h.service.MarkAsRead(userID, id); err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"ok": true}, nil)
}

// MarkAllAsRead handles POST /notifications/read-all
// @Summary Mark all of the caller's notifications as read
// @Tags notifications
// @Produce json
// @Router /notifications/read-all [post]
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	if err := h.service.MarkAllAsRead(userID); err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to mark notifications", err)
		return
	}
	common.SuccessResponse(c, gin.H{"ok": true}, nil)
}

// Delete handles DELETE /notifications/:id
// @Summary Delete one notification
// @Tags notifications
// @Produce json
// @Param id path int true "notification id"
// @Router /notifications/{id} [delete]
func (h *NotificationHandler) Delete(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid notification id", err)
		return
	}

	if err := h.service.Delete(userID, id); err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"deleted": true}, nil)
}
