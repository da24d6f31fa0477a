package models

import "time"

const (
	NotificationTypeInfo    = "info"
	NotificationTypeSuccess = "success"
	NotificationTypeWarning = "warning"
	NotificationTypeError   = "error"
)

type Notification struct {
	NotificationID       int        `gorm:"primaryKey;column:notification_id" json:"notification_id"`
	UserID               int        `gorm:"column:user_id;index" json:"user_id"`
	Title                string     `gorm:"column:title" json:"title"`
	Message              string     `gorm:"column:message;type:text" json:"message"`
	Type                 string     `gorm:"column:type" json:"type"` // info|success|warning|error
	RelatedPublicationID *string    `gorm:"column:related_publication_id;size:12" json:"related_publication_id,omitempty"`
	IsRead               bool       `gorm:"column:is_read;default:false" json:"is_read"`
	CreateAt             time.Time  `gorm:"column:create_at;autoCreateTime" json:"created_at"`
	UpdateAt             *time.Time `gorm:"column:update_at" json:"-"`
}

func (Notification) TableName() string { return "notifications" }
