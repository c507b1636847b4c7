package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/sujalbistaa/suara/internal/apierror"
	"github.com/sujalbistaa/suara/internal/models"
)

// NotificationList is a page of the actor's notifications.
type NotificationList struct {
	Notifications []models.Notification `json:"notifications"`
	Unread        int64                 `json:"unreadCount"`
	Total         int64                 `json:"total"`
	Page          Page                  `json:"page"`
}

// createNotification stores one notification inside tx. The caller pushes
// it after commit.
func (s *Service) createNotification(tx *gorm.DB, n models.Notification) (*models.Notification, error) {
	n.CreatedAt = s.now()
	n.IsRead = false
	if err := tx.Create(&n).Error; err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	return &n, nil
}

// ListNotifications returns the actor's notifications, newest first.
func (s *Service) ListNotifications(ctx context.Context, actor *models.User, page Page) (*NotificationList, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	page = page.normalize()

	db := s.db.WithContext(ctx)
	out := &NotificationList{Notifications: make([]models.Notification, 0), Page: page}
	if err := db.Model(&models.Notification{}).Where("user_id = ?", actor.ID).Count(&out.Total).Error; err != nil {
		return nil, fmt.Errorf("count notifications: %w", err)
	}
	if err := db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", actor.ID, false).
		Count(&out.Unread).Error; err != nil {
		return nil, fmt.Errorf("count unread notifications: %w", err)
	}
	err := db.Where("user_id = ?", actor.ID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&out.Notifications).Error
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

// MarkNotificationRead flags one notification as read. Only its recipient
// may do so.
func (s *Service) MarkNotificationRead(ctx context.Context, actor *models.User, id string) (*models.Notification, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}

	var n models.Notification
	if err := s.db.WithContext(ctx).Take(&n, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "notification")
	}
	if n.UserID != actor.ID {
		return nil, apierror.NotFound("notification")
	}
	if n.IsRead {
		return &n, nil
	}
	if err := s.db.WithContext(ctx).Model(&n).UpdateColumn("is_read", true).Error; err != nil {
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	n.IsRead = true
	return &n, nil
}

// MarkAllNotificationsRead flags every unread notification of the actor and
// reports how many changed.
func (s *Service) MarkAllNotificationsRead(ctx context.Context, actor *models.User) (int64, error) {
	if err := requireUser(actor); err != nil {
		return 0, err
	}
	res := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", actor.ID, false).
		UpdateColumn("is_read", true)
	if res.Error != nil {
		return 0, fmt.Errorf("mark notifications read: %w", res.Error)
	}
	return res.RowsAffected, nil
}
