package services

import (
	"log"
	"time"

	"gorm.io/gorm"

	"graduation-project-api/config"
	"graduation-project-api/models"
)

// NotificationService inserts in-app notification rows. Inserts join
// the caller's unit of work: if the surrounding transaction rolls
// back, the notification goes with it. Email mirroring is
// fire-and-forget and never part of the transaction.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// Notify inserts one notification row using the given handle, which
// may be a transaction.
func (s *NotificationService) Notify(tx *gorm.DB, recipientID int, role models.UserRole, title, message string, relatedURL *string, relatedProjectID *int) error {
	n := models.Notification{
		RecipientID:      recipientID,
		RecipientRole:    role,
		Title:            title,
		Message:          message,
		Type:             "info",
		RelatedURL:       relatedURL,
		RelatedProjectID: relatedProjectID,
		IsRead:           false,
		CreateAt:         time.Now(),
	}
	return tx.Create(&n).Error
}

// NotifyAdmins fans out one row per admin account.
func (s *NotificationService) NotifyAdmins(tx *gorm.DB, title, message string, relatedURL *string, relatedProjectID *int) error {
	var admins []models.Admin
	if err := tx.Where("delete_at IS NULL").Find(&admins).Error; err != nil {
		return err
	}
	for _, a := range admins {
		if err := s.Notify(tx, a.AdminID, models.RoleAdmin, title, message, relatedURL, relatedProjectID); err != nil {
			return err
		}
	}
	return nil
}

// List returns the recipient's notifications, newest first.
func (s *NotificationService) List(recipientID int, role models.UserRole, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	q := s.db.Where("recipient_id = ? AND recipient_role = ?", recipientID, role)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}

	var items []models.Notification
	err := q.Order("create_at DESC, notification_id DESC").
		Limit(limit).Offset(offset).Find(&items).Error
	return items, err
}

// UnreadCount returns the recipient's unread notification count.
func (s *NotificationService) UnreadCount(recipientID int, role models.UserRole) (int64, error) {
	var n int64
	err := s.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND recipient_role = ? AND is_read = ?", recipientID, role, false).
		Count(&n).Error
	return n, err
}

// MarkRead flips is_read on a single notification owned by the caller.
// is_read is the only mutable field on a notification.
func (s *NotificationService) MarkRead(notificationID, recipientID int, role models.UserRole) error {
	return s.db.Model(&models.Notification{}).
		Where("notification_id = ? AND recipient_id = ? AND recipient_role = ?", notificationID, recipientID, role).
		Update("is_read", true).Error
}

// MarkAllRead flips every unread notification for the caller.
func (s *NotificationService) MarkAllRead(recipientID int, role models.UserRole) error {
	return s.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND recipient_role = ? AND is_read = ?", recipientID, role, false).
		Update("is_read", true).Error
}

// EmailAsync mirrors a notification to email without blocking the
// caller. Failures are logged, never surfaced.
func (s *NotificationService) EmailAsync(to, subject, body string) {
	if to == "" {
		return
	}
	go func() {
		if err := config.SendMail([]string{to}, subject, body); err != nil {
			log.Printf("notification email send failed (subject=%q to=%s): %v", subject, to, err)
		}
	}()
}
