package handler

import (
	"net/http"
	"time"

	"github.com/devlink/devlink-backend/internal/common"
	"github.com/devlink/devlink-backend/internal/middleware"
	"github.com/devlink/devlink-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// PresenceHandler handles presence HTTP requests
type PresenceHandler struct {
	service *service.PresenceService

	// Cadence advertised to clients in heartbeat responses
	heartbeatInterval time.Duration
}

// NewPresenceHandler creates a new PresenceHandler
func NewPresenceHandler(service *service.PresenceService, heartbeatInterval time.Duration) *PresenceHandler {
	if heartbeatInterval <= 0 {
		heartbeatInterval = 45 * time.Second
	}
	return &PresenceHandler{service: service, heartbeatInterval: heartbeatInterval}
}

// Heartbeat handles POST /presence/heartbeat
// @Summary Re-stamp the caller's last-seen time
// @Tags presence
// @Produce json
// @Router /presence/heartbeat [post]
func (h *PresenceHandler) Heartbeat(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	if err := h.service.Heartbeat(userID); err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{
		"ok":               true,
		"interval_seconds": int(h.heartbeatInterval.Seconds()),
	}, nil)
}

// Online handles POST /presence/online — app foregrounded
// @Summary Mark the caller online
// @Tags presence
// @Produce json
// @Router /presence/online [post]
func (h *PresenceHandler) Online(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	if err := h.service.SetOnline(userID); err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"ok": true}, nil)
}

// Offline handles POST /presence/offline — app backgrounded
// @Summary Mark the caller offline
// @Tags presence
// @Produce json
// @Router /presence/offline [post]
func (h *PresenceHandler) Offline(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	if err := h.service.SetOffline(userID); err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"ok": true}, nil)
}

// Status handles GET /presence/:user_id
// @Summary Get a user's derived presence classification
// @Tags presence
// @Produce json
// @Param user_id path string true "user id"
// @Success 200 {object} common.APIResponse{data=domain.PresenceResponse}
// @Router /presence/{user_id} [get]
func (h *PresenceHandler) Status(c *gin.Context) {
	if middleware.GetUserID(c) == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	targetID := c.Param("user_id")

	// Viewers self-heal stale flags on profiles they look at
	h.service.Reconcile(targetID) //nolint:errcheck

	status, err := h.service.Status(targetID)
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, status, nil)
}
