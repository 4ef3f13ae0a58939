package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/stocklens/catalog-api/internal/models"
	"github.com/stocklens/catalog-api/internal/service"
	"github.com/stocklens/catalog-api/internal/utils"
)

// NotificationHandler handles review notification endpoints.
type NotificationHandler struct {
	notificationService *service.NotificationService
}

// NewNotificationHandler constructs a NotificationHandler.
func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// Create handles POST /v1/notification.
func (h *NotificationHandler) Create(c *gin.Context) {
	var req service.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	n, err := h.notificationService.Create(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, 201, "Notification created", n)
}

// ListByType handles GET /v1/notification?type=.
func (h *NotificationHandler) ListByType(c *gin.Context) {
	notifications, err := h.notificationService.ListByType(c.Request.Context(), c.Query("type"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, 200, "Notifications retrieved", notifications)
}

// ApprovalNotify handles GET /v1/approvalNotify — the admin review
// inbox, newest first.
func (h *NotificationHandler) ApprovalNotify(c *gin.Context) {
	notifications, err := h.notificationService.ListByType(c.Request.Context(), models.NotificationTypeEditing)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, 200, "Review notifications retrieved", notifications)
}

// DeleteMatchingRequest is the body of DELETE /v1/notification.
type DeleteMatchingRequest struct {
	RelatedID string `json:"relatedId" binding:"required"`
	SenderID  string `json:"senderId" binding:"required"`
	Type      string `json:"type" binding:"required"`
}

// DeleteMatching handles DELETE /v1/notification — removes every
// notification matching the correlation triple. Matching none still
// succeeds.
func (h *NotificationHandler) DeleteMatching(c *gin.Context) {
	var req DeleteMatchingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	if err := h.notificationService.DeleteMatching(c.Request.Context(), req.RelatedID, req.SenderID, req.Type); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, 200, "Notifications deleted", nil)
}

// MarkRead handles PUT /v1/notification/:id/read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.notificationService.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, 200, "Notification marked as read", nil)
}
