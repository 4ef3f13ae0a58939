package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/stocklens/catalog-api/internal/models"
	"github.com/stocklens/catalog-api/internal/utils"
	"github.com/stocklens/catalog-api/pkg/validation"
)

// NotificationStore is the storage surface for review notifications.
// Implemented by repository.NotificationRepository.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	DeleteMatching(ctx context.Context, relatedID, senderID, notifType string) (int64, error)
	ListByType(ctx context.Context, notifType string) ([]models.Notification, error)
	MarkRead(ctx context.Context, id string) (int64, error)
}

// CreateNotificationRequest carries the five required notification
// fields. SenderID must parse as a store identifier.
type CreateNotificationRequest struct {
	Message      string `json:"message" validate:"required"`
	Type         string `json:"type" validate:"required"`
	SenderID     string `json:"senderId" validate:"required,uuid_string"`
	ReceiverRole string `json:"receiverRole" validate:"required"`
	RelatedID    string `json:"relatedId" validate:"required"`
}

// NotificationService emits and retracts review notifications addressed
// to a role.
type NotificationService struct {
	notifications NotificationStore
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(notifications NotificationStore) *NotificationService {
	return &NotificationService{notifications: notifications}
}

// Create validates and persists a notification. All five fields are
// required and senderId must be a well-formed identifier; nothing is
// written when validation fails.
func (s *NotificationService) Create(ctx context.Context, req *CreateNotificationRequest) (*models.Notification, error) {
	if errs := validation.ValidateStruct(req); errs != nil {
		return nil, utils.InvalidArgument("INVALID_NOTIFICATION", validation.Describe(errs))
	}

	n := &models.Notification{
		ID:           uuid.New().String(),
		Message:      req.Message,
		Type:         req.Type,
		SenderID:     req.SenderID,
		ReceiverRole: req.ReceiverRole,
		RelatedID:    req.RelatedID,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return nil, utils.Internal("create-notification", err)
	}
	return n, nil
}

// DeleteMatching retracts every notification correlated with
// (relatedID, senderID, type). Matching nothing is not an error, so the
// compensation can be re-run safely after a partial failure.
func (s *NotificationService) DeleteMatching(ctx context.Context, relatedID, senderID, notifType string) error {
	n, err := s.notifications.DeleteMatching(ctx, relatedID, senderID, notifType)
	if err != nil {
		return utils.Internal("delete-notification", err)
	}
	if n == 0 {
		log.Debug().Str("related_id", relatedID).Str("sender_id", senderID).Str("type", notifType).Msg("no notification matched for delete")
	}
	return nil
}

// ListByType returns notifications of one type, most recent first.
func (s *NotificationService) ListByType(ctx context.Context, notifType string) ([]models.Notification, error) {
	if notifType == "" {
		return nil, utils.InvalidArgument("MISSING_TYPE", "notification type is required")
	}
	notifications, err := s.notifications.ListByType(ctx, notifType)
	if err != nil {
		return nil, utils.Internal("", err)
	}
	return notifications, nil
}

// MarkRead flags a notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	n, err := s.notifications.MarkRead(ctx, id)
	if err != nil {
		return utils.Internal("", err)
	}
	if n == 0 {
		return utils.NotFound("NOTIFICATION_NOT_FOUND", "no notification with id "+id)
	}
	return nil
}
