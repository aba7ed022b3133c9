package models

import "time"

// NotificationLevel classifies a user-facing notification.
type NotificationLevel string

// Notification levels.
const (
	NotificationSuccess NotificationLevel = "success"
	NotificationError   NotificationLevel = "error"
	NotificationInfo    NotificationLevel = "info"
)

// Notification is a short-lived, dismissable user-facing message.
type Notification struct {
	ID        string            `json:"id"`
	Level     NotificationLevel `json:"type"`
	Message   string            `json:"message"`
	CreatedAt time.Time         `json:"created_at"`
}
