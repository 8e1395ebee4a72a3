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

// ChatHandler handles thread and message HTTP requests
type ChatHandler struct {
	chatService service.ChatService
	listService service.ChatListService
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(chatService service.ChatService, listService service.ChatListService) *ChatHandler {
	return &ChatHandler{chatService: chatService, listService: listService}
}

// ListConversations handles GET /threads
// @Summary List the caller's conversations, most recent first
// @Tags chat
// @Produce json
// @Success 200 {object} common.APIResponse{data=[]domain.Conversation}
// @Router /threads [get]
func (h *ChatHandler) ListConversations(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	conversations, err := h.listService.ListConversations(userID)
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, conversations, nil)
}

// EnsureDirectThread handles POST /threads/direct
// @Summary Open (or return) the direct thread with another user
// @Tags chat
// @Accept json
// @Produce json
// @Success 200 {object} common.APIResponse{data=domain.ThreadResponse}
// @Router /threads/direct [post]
func (h *ChatHandler) EnsureDirectThread(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	var req struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	thread, err := h.chatService.EnsureDirectThread(userID, req.UserID)
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, thread, nil)
}

// CreateGroupThread handles POST /threads/group
// @Summary Create a group thread
// @Tags chat
// @Accept json
// @Produce json
// @Param request body domain.CreateGroupThreadRequest true "group settings"
// @Success 200 {object} common.APIResponse{data=domain.ThreadResponse}
// @Router /threads/group [post]
func (h *ChatHandler) CreateGroupThread(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	var req domain.CreateGroupThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	thread, err := h.chatService.CreateGroupThread(userID, &req)
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, thread, nil)
}

// GetThread handles GET /threads/:thread_id
// @Summary Fetch one thread
// @Tags chat
// @Produce json
// @Param thread_id path string true "thread id"
// @Success 200 {object} common.APIResponse{data=domain.ThreadResponse}
// @Router /threads/{thread_id} [get]
func (h *ChatHandler) GetThread(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	thread, err := h.chatService.GetThread(c.Param("thread_id"), userID)
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, thread, nil)
}

// GetMessages handles GET /threads/:thread_id/messages
// @Summary Page through a thread's messages, newest first
// @Tags chat
// @Produce json
// @Param thread_id path string true "thread id"
// @Param page query int false "page"
// @Param limit query int false "page size"
// @Success 200 {object} common.APIResponse{data=[]domain.MessageResponse}
// @Router /threads/{thread_id}/messages [get]
func (h *ChatHandler) GetMessages(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	page := 1
	if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 0 {
		page = p
	}
	limit := 30
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 {
		limit = l
	}

	messages, meta, err := h.chatService.GetMessages(c.Param("thread_id"), userID, page, limit)
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, messages, meta)
}

// SendMessage handles POST /threads/:thread_id/messages
// @Summary Send a message
// @Tags chat
// @Accept json
// @Produce json
// @Param thread_id path string true "thread id"
// @Param request body domain.SendMessageRequest true "message content"
// @Success 200 {object} common.APIResponse{data=domain.MessageResponse}
// @Router /threads/{thread_id}/messages [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	var req domain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	msg, err := h.chatService.SendMessage(c.Param("thread_id"), userID, &req)
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	go h.listService.NotifyUpdated(userID)
	common.SuccessResponse(c, msg, nil)
}

// EditMessage handles PUT /messages/:message_id
// @Summary Edit the caller's own message
// @Tags chat
// @Accept json
// @Produce json
// @Param message_id path string true "message id"
// @Success 200 {object} common.APIResponse{data=domain.MessageResponse}
// @Router /messages/{message_id} [put]
func (h *ChatHandler) EditMessage(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	msg, err := h.chatService.EditMessage(c.Param("message_id"), userID, req.Text)
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, msg, nil)
}

// MarkDelivered handles POST /threads/:thread_id/delivered
// @Summary Acknowledge delivery of a thread's messages
// @Tags chat
// @Produce json
// @Param thread_id path string true "thread id"
// @Router /threads/{thread_id}/delivered [post]
func (h *ChatHandler) MarkDelivered(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	if err := h.chatService.MarkDelivered(c.Param("thread_id"), userID); err != nil {
		common.ServiceError(c, err)
		return
	}
	go h.listService.NotifyUpdated(userID)
	common.SuccessResponse(c, gin.H{"ok": true}, nil)
}

// MarkRead handles POST /threads/:thread_id/read
// @Summary Mark a thread's recent messages as read
// @Tags chat
// @Produce json
// @Param thread_id path string true "thread id"
// @Router /threads/{thread_id}/read [post]
func (h *ChatHandler) MarkRead(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	if err := h.chatService.MarkRead(c.Param("thread_id"), userID); err != nil {
		common.ServiceError(c, err)
		return
	}
	go h.listService.NotifyUpdated(userID)
	common.SuccessResponse(c, gin.H{"ok": true}, nil)
}

// PinThread handles POST /threads/:thread_id/pin
// @Summary Pin a thread in the caller's chat list
// @Tags chat
// @Produce json
// @Param thread_id path string true "thread id"
// @Router /threads/{thread_id}/pin [post]
func (h *ChatHandler) PinThread(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	if err := h.listService.PinThread(userID, c.Param("thread_id"), true); err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"pinned": true}, nil)
}

// UnpinThread handles DELETE /threads/:thread_id/pin
// @Summary Unpin a thread in the caller's chat list
// @Tags chat
// @Produce json
// @Param thread_id path string true "thread id"
// @Router /threads/{thread_id}/pin [delete]
func (h *ChatHandler) UnpinThread(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	if err := h.listService.PinThread(userID, c.Param("thread_id"), false); err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"pinned": false}, nil)
}

// DeleteThread handles DELETE /threads/:thread_id
// @Summary Permanently delete a thread and its history
// @Tags chat
// @Produce json
// @Param thread_id path string true "thread id"
// @Router /threads/{thread_id} [delete]
func (h *ChatHandler) DeleteThread(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	if err := h.chatService.DeleteThreadPermanently(c.Param("thread_id"), userID); err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"deleted": true}, nil)
}
