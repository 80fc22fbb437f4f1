package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/havenline/vent-api/apperrors"
	"github.com/havenline/vent-api/models"
	"gorm.io/gorm"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 100
)

// Notice is a notification about to be stored. Empty related fields are stored as NULL.
type Notice struct {
	RecipientID string
	Text        string
	RelatedType models.RelatedContentType
	RelatedID   string
}

// Notifier stores exactly one notification per call.
type Notifier interface {
	Notify(ctx context.Context, notice Notice) error
}

// ListNotificationsParams filters and pages a user's notifications.
type ListNotificationsParams struct {
	Skip   int
	Limit  int
	IsRead *bool
}

// NotificationService writes notifications for the workflow and serves the
// recipient-facing notification API.
type NotificationService struct {
	db *gorm.DB
}

// NewNotificationService creates a notification service backed by db
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// Notify stores one notification for its recipient.
func (s *NotificationService) Notify(ctx context.Context, notice Notice) error {
	notification := models.Notification{
		UserID:  notice.RecipientID,
		Message: notice.Text,
	}
	if notice.RelatedType != "" {
		relatedType := notice.RelatedType
		notification.RelatedContentType = &relatedType
	}
	if notice.RelatedID != "" {
		relatedID := notice.RelatedID
		notification.RelatedContentID = &relatedID
	}

	if err := s.db.WithContext(ctx).Create(&notification).Error; err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}
	return nil
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string, params ListNotificationsParams) ([]models.Notification, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}
	skip := params.Skip
	if skip < 0 {
		skip = 0
	}

	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if params.IsRead != nil {
		query = query.Where("is_read = ?", *params.IsRead)
	}

	notifications := make([]models.Notification, 0)
	if err := query.Order("created_at DESC").Offset(skip).Limit(limit).Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// UnreadCount returns how many of userID's notifications are unread.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return count, nil
}

// MarkRead flips one of the user's notifications to read. Another user's
// notification is reported as not found.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) (*models.Notification, error) {
	notification, err := s.find(ctx, userID, notificationID)
	if err != nil {
		return nil, err
	}
	if notification.IsRead {
		return notification, nil
	}

	if err := s.db.WithContext(ctx).Model(notification).Update("is_read", true).Error; err != nil {
		return nil, fmt.Errorf("failed to mark notification read: %w", err)
	}
	notification.IsRead = true
	return notification, nil
}

// MarkAllRead returns how many notifications changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	result := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Delete removes a notification owned by userID.
func (s *NotificationService) Delete(ctx context.Context, userID, notificationID string) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Delete(&models.Notification{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete notification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound(apperrors.CodeNotificationNotFound, "Notification not found")
	}
	return nil
}

func (s *NotificationService) find(ctx context.Context, userID, notificationID string) (*models.Notification, error) {
	var notification models.Notification
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", notificationID, userID).
		First(&notification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(apperrors.CodeNotificationNotFound, "Notification not found")
		}
		return nil, fmt.Errorf("failed to load notification: %w", err)
	}
	return &notification, nil
}
