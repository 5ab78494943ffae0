package models

import "time"

type Notification struct {
	NotificationID   int       `gorm:"primaryKey;column:notification_id" json:"notification_id"`
	RecipientID      int       `gorm:"column:recipient_id" json:"recipient_id"`
	RecipientRole    UserRole  `gorm:"column:recipient_role" json:"recipient_role"`
	Title            string    `gorm:"column:title" json:"title"`
	Message          string    `gorm:"column:message" json:"message"`
	Type             string    `gorm:"column:type" json:"type"` // info|success|warning|error
	RelatedURL       *string   `gorm:"column:related_url" json:"related_url,omitempty"`
	RelatedProjectID *int      `gorm:"column:related_project_id" json:"related_project_id,omitempty"`
	IsRead           bool      `gorm:"column:is_read" json:"is_read"`
	CreateAt         time.Time `gorm:"column:create_at" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
