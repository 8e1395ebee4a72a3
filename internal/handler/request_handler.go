package handler

import (
	"net/http"
	"strconv"

	"github.com/devlink/devlink-backend/internal/common"
	"github.com/devlink/devlink-backend/internal/domain"
	"github.com/devlink/devlink-backend/internal/middleware"
	"github.com/devlink/devlink-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// RequestHandler handles message request HTTP requests
type RequestHandler struct {
	service service.RequestService
}

// NewRequestHandler creates a new RequestHandler
func NewRequestHandler(service service.RequestService) *RequestHandler {
	return &RequestHandler{service: service}
}

// Send handles POST /message-requests
// @Summary Send a message request
// @Tags message-requests
// @Accept json
// @Produce json
// @Param request body domain.SendRequestRequest true "request payload"
// @Success 200 {object} common.APIResponse{data=domain.MessageRequestResponse}
// @Router /message-requests [post]
func (h *RequestHandler) Send(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	var req domain.SendRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := h.service.SendRequest(userID, &req)
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, result, nil)
}

// ListPending handles GET /message-requests
// @Summary List the caller's pending message requests
// @Tags message-requests
// @Produce json
// @Param page query int false "page"
// @Param limit query int false "page size"
// @Success 200 {object} common.APIResponse{data=[]domain.MessageRequestResponse}
// @Router /message-requests [get]
func (h *RequestHandler) ListPending(c *gin.Context) {
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

	requests, meta, err := h.service.ListPending(userID, page, limit)
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, requests, meta)
}

// Accept handles POST /message-requests/:request_id/accept
// @Summary Accept a pending message request
// @Tags message-requests
// @Produce json
// @Param request_id path string true "request id"
// @Success 200 {object} common.APIResponse{data=domain.MessageRequestResponse}
// @Router /message-requests/{request_id}/accept [post]
func (h *RequestHandler) Accept(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	result, err := h.service.AcceptRequest(c.Param("request_id"), userID)
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, result, nil)
}

// Reject handles POST /message-requests/:request_id/reject
// @Summary Reject a pending message request
// @Tags message-requests
// @Produce json
// @Param request_id path string true "request id"
// @Router /message-requests/{request_id}/reject [post]
func (h *RequestHandler) Reject(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	if err := h.service.RejectRequest(c.Param("request_id"), userID); err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"rejected": true}, nil)
}

// Delete handles DELETE /message-requests/:request_id
// @Summary Delete a message request
// @Tags message-requests
// @Produce json
// @Param request_id path string true "request id"
// @Router /message-requests/{request_id} [delete]
func (h *RequestHandler) Delete(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	if err := h.service.DeleteRequest(c.Param("request_id"), userID); err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"deleted": true}, nil)
}
