package models

import (
	"time"
)

// Notification is a stored message surfaced by polling endpoints. Rows are
// produced by the status watcher on derived-phase transitions; there is no
// push delivery.
type Notification struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;index" json:"user"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Read      bool      `gorm:"default:false;index" json:"read"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
